package documents

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatMoney renders amount with thousands grouping and two decimals, followed by the
// ISO code, e.g. "1,250.00 EUR". Unknown codes are printed as given.
func FormatMoney(amount decimal.Decimal, code string) string {
	unit, err := currency.ParseISO(code)
	if err == nil {
		code = unit.String()
	}
	f, _ := amount.Round(2).Float64()
	return printer.Sprintf("%.2f %s", f, code)
}
