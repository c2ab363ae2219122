package documents

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phonestore-crm/internal/core"
)

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "1,250.00 EUR", FormatMoney(decimal.NewFromInt(1250), "EUR"))
	assert.Equal(t, "50.50 MKD", FormatMoney(decimal.RequireFromString("50.5"), "MKD"))
	assert.Equal(t, "0.00 MKD", FormatMoney(decimal.Zero, "MKD"))
}

func TestRenderInvoice(t *testing.T) {
	client := 7
	order := &core.Order{
		ID:         12,
		ClientID:   &client,
		ClientName: "Marko Petrov",
		Status:     core.StatusPending,
		CreatedAt:  time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		Items: []core.OrderItem{
			{ProductName: "Galaxy S24", Category: core.CategorySmartphones, Quantity: 2, Price: decimal.NewFromInt(500)},
			{ProductName: "USB-C Charger", Category: core.CategoryAccessories, Quantity: 1, Price: decimal.NewFromInt(50)},
		},
	}

	out, err := RenderInvoice(Store{Name: "Phone Store", Address: "Skopje"}, order)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")), "output should be a PDF")
}

func TestRenderDebtReport(t *testing.T) {
	debts := []core.ClientDebt{
		{UserID: 7, Name: "Marko Petrov", Email: "marko@example.com", EURDebt: decimal.NewFromInt(1000), MKDDebt: decimal.Zero},
	}
	out, err := RenderDebtReport(Store{Name: "Phone Store"}, debts, time.Now())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))

	empty, err := RenderDebtReport(Store{Name: "Phone Store"}, nil, time.Now())
	require.NoError(t, err)
	assert.NotEmpty(t, empty)
}
