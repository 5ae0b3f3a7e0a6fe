package Reports

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var rupiah = message.NewPrinter(language.Indonesian)

// FormatRupiah writes an amount the way it is printed on receipts: whole
// rupiah with dots between thousands, e.g. "Rp 25.000".
func FormatRupiah(amount float64) string {
	whole := decimal.NewFromFloat(amount).Round(0).IntPart()
	if whole < 0 {
		return rupiah.Sprintf("-Rp %d", -whole)
	}
	return rupiah.Sprintf("Rp %d", whole)
}
