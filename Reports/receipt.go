package Reports

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"CafePOS/Config"
	"CafePOS/Models"
)

// receiptWidth fits a 58mm thermal printer.
const receiptWidth = 32

type ReceiptLine struct {
	Product  string  `json:"product"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
	Subtotal float64 `json:"subtotal"`
}

type Receipt struct {
	StoreName     string               `json:"store_name"`
	StoreAddress  string               `json:"store_address"`
	StorePhone    string               `json:"store_phone"`
	Footer        string               `json:"footer"`
	ReceiptNo     string               `json:"receipt_no"`
	Timestamp     time.Time            `json:"timestamp"`
	Cashier       string               `json:"cashier"`
	Lines         []ReceiptLine        `json:"lines"`
	Total         float64              `json:"total"`
	PaymentMethod Models.PaymentMethod `json:"payment_method"`
	AmountPaid    float64              `json:"amount_paid"`
	Change        float64              `json:"change"`
}

// NewReceipt builds a receipt from a sale loaded with its items and employee.
func NewReceipt(sale Models.Transaction, store Config.StoreConfig) *Receipt {
	r := &Receipt{
		StoreName:     store.Name,
		StoreAddress:  store.Address,
		StorePhone:    store.Phone,
		Footer:        store.ReceiptFooter,
		ReceiptNo:     sale.ReceiptNo,
		Timestamp:     sale.Timestamp,
		Total:         sale.TotalAmount,
		PaymentMethod: sale.PaymentMethod,
		AmountPaid:    sale.AmountPaid,
		Change:        sale.Change,
	}
	if sale.Employee != nil {
		r.Cashier = sale.Employee.Name
	}
	for _, item := range sale.Items {
		r.Lines = append(r.Lines, ReceiptLine{
			Product:  item.ProductName,
			Quantity: item.Quantity,
			Price:    item.Price,
			Subtotal: item.Subtotal,
		})
	}
	return r
}

func (r *Receipt) FileName() string {
	return fmt.Sprintf("receipt_%s.txt", r.ReceiptNo)
}

func center(text string) string {
	n := utf8.RuneCountInString(text)
	if n >= receiptWidth {
		return text
	}
	return strings.Repeat(" ", (receiptWidth-n)/2) + text
}

func leftRight(left, right string) string {
	gap := receiptWidth - utf8.RuneCountInString(left) - utf8.RuneCountInString(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

// Text renders the receipt as plain text for download or printing.
func (r *Receipt) Text() string {
	rule := strings.Repeat("-", receiptWidth)
	var lines []string

	lines = append(lines, center(r.StoreName))
	if r.StoreAddress != "" {
		lines = append(lines, center(r.StoreAddress))
	}
	if r.StorePhone != "" {
		lines = append(lines, center(r.StorePhone))
	}
	lines = append(lines, rule,
		"No    : "+r.ReceiptNo,
		"Date  : "+r.Timestamp.Format("2006-01-02 15:04:05"),
	)
	if r.Cashier != "" {
		lines = append(lines, "Kasir : "+r.Cashier)
	}
	lines = append(lines, rule)

	for _, l := range r.Lines {
		lines = append(lines, l.Product)
		lines = append(lines, leftRight(
			fmt.Sprintf("  %d x %s", l.Quantity, FormatRupiah(l.Price)),
			FormatRupiah(l.Subtotal)))
	}

	lines = append(lines, rule,
		leftRight("TOTAL", FormatRupiah(r.Total)),
		leftRight(string(r.PaymentMethod), FormatRupiah(r.AmountPaid)),
	)
	if r.PaymentMethod == Models.PaymentCash {
		lines = append(lines, leftRight("Kembali", FormatRupiah(r.Change)))
	}
	lines = append(lines, rule)
	if r.Footer != "" {
		lines = append(lines, center(r.Footer))
	}
	return strings.Join(lines, "\n") + "\n"
}
