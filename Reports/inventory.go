package Reports

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"CafePOS/Inventory"
	"CafePOS/Models"
)

// HPPTable is the cost sheet export, saved as hpp_data.csv.
func HPPTable(lines []Inventory.CostLine) *Table {
	t := &Table{Name: "HPP", Headers: []string{"Product", "Category", "Price", "HPP", "Profit", "Margin %"}}
	for _, l := range lines {
		t.Append(l.Product, l.Category, l.Price, l.HPP, l.Profit, l.Margin)
	}
	return t
}

type StockLine struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Unit        string  `json:"unit"`
	Stock       float64 `json:"stock"`
	CostPerUnit float64 `json:"cost_per_unit"`
	Value       float64 `json:"value"`
	Threshold   float64 `json:"threshold"`
	Low         bool    `json:"low"`
}

type StockSummary struct {
	Lines      []StockLine `json:"lines"`
	TotalValue float64     `json:"total_value"`
	LowCount   int         `json:"low_count"`
}

// Stock values every ingredient and flags the ones under their threshold.
func Stock(db *gorm.DB, defaultThreshold float64) (*StockSummary, error) {
	var ingredients []Models.Ingredient
	if err := db.Order("name asc").Find(&ingredients).Error; err != nil {
		return nil, err
	}

	summary := &StockSummary{}
	total := decimal.Zero
	for _, ing := range ingredients {
		threshold := ing.LowStockThreshold
		if threshold <= 0 {
			threshold = defaultThreshold
		}
		line := StockLine{
			ID:          ing.ID,
			Name:        ing.Name,
			Unit:        ing.Unit,
			Stock:       ing.Stock,
			CostPerUnit: ing.CostPerUnit,
			Value:       Inventory.StockValue(ing),
			Threshold:   threshold,
			Low:         ing.Stock < threshold,
		}
		if line.Low {
			summary.LowCount++
		}
		total = total.Add(decimal.NewFromFloat(line.Value))
		summary.Lines = append(summary.Lines, line)
	}
	summary.TotalValue = total.Round(2).InexactFloat64()
	return summary, nil
}

func (s *StockSummary) Table() *Table {
	t := &Table{Name: "Stock", Headers: []string{"Ingredient", "Unit", "Stock", "Cost per unit", "Value", "Low"}}
	for _, l := range s.Lines {
		t.Append(l.Name, l.Unit, l.Stock, l.CostPerUnit, l.Value, l.Low)
	}
	return t
}

type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

type ExpenseSummary struct {
	From       time.Time        `json:"from"`
	To         time.Time        `json:"to"`
	Total      float64          `json:"total"`
	ByCategory []CategoryTotal  `json:"by_category"`
	Expenses   []Models.Expense `json:"expenses"`
}

// Expenses totals expenses dated in [from, to).
func Expenses(db *gorm.DB, from, to time.Time) (*ExpenseSummary, error) {
	query := db.Order("date asc, id asc")
	if !from.IsZero() {
		query = query.Where("date >= ?", datatypes.Date(from))
	}
	if !to.IsZero() {
		query = query.Where("date < ?", datatypes.Date(to))
	}
	var expenses []Models.Expense
	if err := query.Find(&expenses).Error; err != nil {
		return nil, err
	}

	summary := &ExpenseSummary{From: from, To: to, Expenses: expenses}
	total := decimal.Zero
	index := make(map[string]int)
	for _, e := range expenses {
		amount := decimal.NewFromFloat(e.Amount)
		total = total.Add(amount)
		i, ok := index[e.Category]
		if !ok {
			i = len(summary.ByCategory)
			index[e.Category] = i
			summary.ByCategory = append(summary.ByCategory, CategoryTotal{Category: e.Category})
		}
		summary.ByCategory[i].Total = decimal.NewFromFloat(summary.ByCategory[i].Total).Add(amount).Round(2).InexactFloat64()
	}
	summary.Total = total.Round(2).InexactFloat64()
	return summary, nil
}

func (s *ExpenseSummary) Table() *Table {
	t := &Table{Name: "Expenses", Headers: []string{"Date", "Category", "Description", "Payment", "Amount"}}
	for _, e := range s.Expenses {
		t.Append(time.Time(e.Date).Format("2006-01-02"), e.Category, e.Description, string(e.PaymentMethod), e.Amount)
	}
	return t
}
