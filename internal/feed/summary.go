package feed

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/McBride-Ryan/websocket-hss/internal/domain/transaction"
)

var usdPrinter = message.NewPrinter(language.AmericanEnglish)

// Sum accumulates the amounts of the given transactions as exact decimals.
// Records whose amount was malformed on the wire carry a zero amount and so
// cannot fault or skew the total.
func Sum(txns []transaction.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, txn := range txns {
		total = total.Add(txn.Amount)
	}
	return total.Round(2)
}

// FormatUSD renders an amount as a localized US dollar string, e.g. $1,234.50.
func FormatUSD(amount decimal.Decimal) string {
	f, _ := amount.Round(2).Float64()
	return usdPrinter.Sprintf("$%.2f", f)
}
