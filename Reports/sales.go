package Reports

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"

	"CafePOS/Models"
)

type SalesFilter struct {
	From       time.Time
	To         time.Time
	EmployeeID uint
}

type ProductSales struct {
	Product  string  `json:"product"`
	Quantity int     `json:"quantity"`
	Revenue  float64 `json:"revenue"`
}

type DailySales struct {
	Date         string  `json:"date"`
	Transactions int     `json:"transactions"`
	Revenue      float64 `json:"revenue"`
}

type PaymentSales struct {
	PaymentMethod Models.PaymentMethod `json:"payment_method"`
	Transactions  int                  `json:"transactions"`
	Revenue       float64              `json:"revenue"`
}

type SalesSummary struct {
	From         time.Time      `json:"from"`
	To           time.Time      `json:"to"`
	Revenue      float64        `json:"revenue"`
	Transactions int            `json:"transactions"`
	ItemsSold    int            `json:"items_sold"`
	ByProduct    []ProductSales `json:"by_product"`
	Daily        []DailySales   `json:"daily"`
	ByPayment    []PaymentSales `json:"by_payment"`
}

// Sales summarises the sales made in [From, To). Zero bounds are open.
func Sales(db *gorm.DB, f SalesFilter) (*SalesSummary, error) {
	query := db.Preload("Items").Order("timestamp asc")
	if !f.From.IsZero() {
		query = query.Where("timestamp >= ?", f.From)
	}
	if !f.To.IsZero() {
		query = query.Where("timestamp < ?", f.To)
	}
	if f.EmployeeID != 0 {
		query = query.Where("employee_id = ?", f.EmployeeID)
	}
	var sales []Models.Transaction
	if err := query.Find(&sales).Error; err != nil {
		return nil, err
	}

	type bucket struct {
		count   int
		qty     int
		revenue decimal.Decimal
	}
	add := func(m map[string]*bucket, key string) *bucket {
		b, ok := m[key]
		if !ok {
			b = &bucket{revenue: decimal.Zero}
			m[key] = b
		}
		return b
	}

	products := make(map[string]*bucket)
	days := make(map[string]*bucket)
	methods := make(map[string]*bucket)
	total := decimal.Zero
	summary := &SalesSummary{From: f.From, To: f.To, Transactions: len(sales)}

	for _, sale := range sales {
		amount := decimal.NewFromFloat(sale.TotalAmount)
		total = total.Add(amount)

		day := add(days, sale.Timestamp.Format("2006-01-02"))
		day.count++
		day.revenue = day.revenue.Add(amount)

		method := add(methods, string(sale.PaymentMethod))
		method.count++
		method.revenue = method.revenue.Add(amount)

		for _, item := range sale.Items {
			p := add(products, item.ProductName)
			p.qty += item.Quantity
			p.revenue = p.revenue.Add(decimal.NewFromFloat(item.Subtotal))
			summary.ItemsSold += item.Quantity
		}
	}
	summary.Revenue = total.Round(2).InexactFloat64()

	for name, b := range products {
		summary.ByProduct = append(summary.ByProduct, ProductSales{Product: name, Quantity: b.qty, Revenue: b.revenue.Round(2).InexactFloat64()})
	}
	slices.SortFunc(summary.ByProduct, func(a, b ProductSales) int {
		if a.Revenue != b.Revenue {
			if a.Revenue > b.Revenue {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Product, b.Product)
	})

	for date, b := range days {
		summary.Daily = append(summary.Daily, DailySales{Date: date, Transactions: b.count, Revenue: b.revenue.Round(2).InexactFloat64()})
	}
	slices.SortFunc(summary.Daily, func(a, b DailySales) int {
		return strings.Compare(a.Date, b.Date)
	})

	for method, b := range methods {
		summary.ByPayment = append(summary.ByPayment, PaymentSales{PaymentMethod: Models.PaymentMethod(method), Transactions: b.count, Revenue: b.revenue.Round(2).InexactFloat64()})
	}
	slices.SortFunc(summary.ByPayment, func(a, b PaymentSales) int {
		return strings.Compare(string(a.PaymentMethod), string(b.PaymentMethod))
	})

	return summary, nil
}

// Table lists revenue per product.
func (s *SalesSummary) Table() *Table {
	t := &Table{Name: "Sales", Headers: []string{"Product", "Quantity", "Revenue"}}
	for _, p := range s.ByProduct {
		t.Append(p.Product, p.Quantity, p.Revenue)
	}
	return t
}

func (s *SalesSummary) DailyTable() *Table {
	t := &Table{Name: "Daily Sales", Headers: []string{"Date", "Transactions", "Revenue"}}
	for _, d := range s.Daily {
		t.Append(d.Date, d.Transactions, d.Revenue)
	}
	return t
}

// ShareText is the plain text summary sent over WhatsApp.
func (s *SalesSummary) ShareText(storeName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s* sales report\n", storeName)
	switch {
	case !s.From.IsZero() && !s.To.IsZero():
		fmt.Fprintf(&b, "%s to %s\n", s.From.Format("02 Jan 2006"), s.To.Add(-time.Second).Format("02 Jan 2006"))
	case !s.From.IsZero():
		fmt.Fprintf(&b, "Since %s\n", s.From.Format("02 Jan 2006"))
	}
	fmt.Fprintf(&b, "Revenue: %s\n", FormatRupiah(s.Revenue))
	fmt.Fprintf(&b, "Transactions: %d\n", s.Transactions)
	fmt.Fprintf(&b, "Items sold: %d\n", s.ItemsSold)
	for i, p := range s.ByProduct {
		if i == 5 {
			break
		}
		fmt.Fprintf(&b, "%d. %s x%d %s\n", i+1, p.Product, p.Quantity, FormatRupiah(p.Revenue))
	}
	return strings.TrimRight(b.String(), "\n")
}
