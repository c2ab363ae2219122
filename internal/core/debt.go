package core

import (
	"github.com/shopspring/decimal"
)

// TotalsByCurrency sums quantity × price of items, grouped by the currency of each
// item's category. Currencies with no lines are absent from the map.
func TotalsByCurrency(items []OrderItem) map[Currency]decimal.Decimal {
	totals := make(map[Currency]decimal.Decimal)
	for _, it := range items {
		c := it.Currency()
		totals[c] = totals[c].Add(it.LineTotal())
	}
	return totals
}

// SumLineTotals adds every line total regardless of currency.
func SumLineTotals(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}
	return total
}

// isCents reports whether amount has at most two decimal places, the precision
// prices, totals, and ledger amounts are stored with.
func isCents(amount decimal.Decimal) bool {
	return amount.Equal(amount.Round(2))
}

// DebtFromBalance turns a ledger sum into a debt figure: max(0, −sum).
func DebtFromBalance(sum decimal.Decimal) decimal.Decimal {
	debt := sum.Neg()
	if debt.IsNegative() {
		return decimal.Zero
	}
	return debt
}

// FoldDebt reduces a user's ledger entries to their current debt.
// Each currency is folded and clamped independently.
func FoldDebt(userID int, entries []DebtAdjustment) DebtSummary {
	sums := make(map[Currency]decimal.Decimal)
	for _, e := range entries {
		sums[e.Currency] = sums[e.Currency].Add(e.Amount)
	}
	return summaryFromSums(userID, sums)
}

func summaryFromSums(userID int, sums map[Currency]decimal.Decimal) DebtSummary {
	eur := DebtFromBalance(sums[CurrencyEUR])
	mkd := DebtFromBalance(sums[CurrencyMKD])
	return DebtSummary{
		UserID:    userID,
		EURDebt:   eur,
		MKDDebt:   mkd,
		TotalDebt: eur.Add(mkd),
	}
}

// debtEntry describes the ledger rows to write for one set of per-currency totals.
type debtEntry struct {
	userID    int
	orderID   *int
	increase  bool // true writes negative amounts
	adjType   string
	notes     string
	createdBy int
}

// build returns one adjustment per currency with a nonzero total, in Currencies order.
func (d debtEntry) build(totals map[Currency]decimal.Decimal) []DebtAdjustment {
	var out []DebtAdjustment
	for _, c := range Currencies {
		amt, ok := totals[c]
		if !ok || amt.IsZero() {
			continue
		}
		if d.increase {
			amt = amt.Neg()
		}
		out = append(out, DebtAdjustment{
			UserID:    d.userID,
			Amount:    amt,
			Currency:  c,
			Type:      d.adjType,
			Notes:     d.notes,
			OrderID:   d.orderID,
			CreatedBy: nullIfZero(d.createdBy),
		})
	}
	return out
}
