package Reports_test

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"CafePOS/Config"
	"CafePOS/Inventory"
	"CafePOS/Models"
	"CafePOS/Reports"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Models.Open("sqlite", filepath.Join(t.TempDir(), "reports.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	require.NoError(t, Models.Migrate(db))
	return db
}

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t, goldie.WithFixtureDir("testdata/golden"), goldie.WithNameSuffix(".golden"))
}

func TestFormatRupiah(t *testing.T) {
	assert.Equal(t, "Rp 25.000", Reports.FormatRupiah(25000))
	assert.Equal(t, "Rp 1.250.000", Reports.FormatRupiah(1250000))
	assert.Equal(t, "Rp 0", Reports.FormatRupiah(0))
	assert.Equal(t, "Rp 1.001", Reports.FormatRupiah(1000.6))
	assert.Equal(t, "-Rp 5.000", Reports.FormatRupiah(-5000))
}

func TestHPPExportCSV(t *testing.T) {
	lines := []Inventory.CostLine{
		{Product: "Blend", Category: "Coffee", Price: 100, HPP: 35, Profit: 65, Margin: 65},
		{Product: "Tea, Iced", Category: "Tea", Price: 8000, HPP: 0, Profit: 8000, Margin: 100},
	}
	data, contentType, filename, err := Reports.HPPTable(lines).Export("csv", "hpp_data")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", contentType)
	assert.Equal(t, "hpp_data.csv", filename)

	newGoldie(t).Assert(t, "hpp_data", data)
}

func TestExportXLSX(t *testing.T) {
	table := &Reports.Table{Name: "Daily: Sales/2024", Headers: []string{"Date", "Revenue"}}
	table.Append("2024-03-01", 60000.0)
	table.Append(time.Date(2024, 3, 2, 0, 0, 0, 0, time.Local), 12000.0)

	data, _, filename, err := table.Export("xlsx", "sales_report")
	require.NoError(t, err)
	assert.Equal(t, "sales_report.xlsx", filename)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Daily- Sales-2024"}, f.GetSheetList())
	rows, err := f.GetRows("Daily- Sales-2024")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Date", "Revenue"}, rows[0])
	assert.Equal(t, "2024-03-02 00:00:00", rows[2][0])
}

func TestExportXLSXTruncatesLongSheetNameByRune(t *testing.T) {
	table := &Reports.Table{Name: strings.Repeat("a", 30) + "ééé", Headers: []string{"Kopi"}}
	table.Append("Latte")

	data, _, _, err := table.Export("xlsx", "menu")
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	require.Len(t, sheets, 1)
	assert.Equal(t, strings.Repeat("a", 30)+"é", sheets[0])
	assert.True(t, utf8.ValidString(sheets[0]))
}

func TestExportUnknownFormat(t *testing.T) {
	_, _, _, err := (&Reports.Table{}).Export("pdf", "x")
	assert.ErrorIs(t, err, Models.ErrValidation)
}

func TestReceiptText(t *testing.T) {
	sale := Models.Transaction{
		ReceiptNo:     "INV-20240301-ABCDEF12",
		Timestamp:     time.Date(2024, 3, 1, 10, 30, 0, 0, time.Local),
		TotalAmount:   60000,
		PaymentMethod: Models.PaymentCash,
		AmountPaid:    100000,
		Change:        40000,
		Employee:      &Models.Employee{Name: "Sari"},
		Items: []Models.TransactionItem{
			{ProductName: "Latte", Quantity: 2, Price: 25000, Subtotal: 50000},
			{ProductName: "Espresso", Quantity: 1, Price: 10000, Subtotal: 10000},
		},
	}
	store := Config.StoreConfig{
		Name:          "Kopi Senja",
		Address:       "Jl. Merdeka 1",
		Phone:         "0812-3456-789",
		ReceiptFooter: "Terima kasih!",
	}
	receipt := Reports.NewReceipt(sale, store)
	assert.Equal(t, "receipt_INV-20240301-ABCDEF12.txt", receipt.FileName())

	newGoldie(t).Assert(t, "receipt_cash", []byte(receipt.Text()))
}

func TestReceiptWithoutChangeLine(t *testing.T) {
	sale := Models.Transaction{ReceiptNo: "R1", TotalAmount: 10000, PaymentMethod: Models.PaymentQRIS, AmountPaid: 10000}
	text := Reports.NewReceipt(sale, Config.StoreConfig{Name: "Cafe"}).Text()
	assert.NotContains(t, text, "Kembali")
	assert.Contains(t, text, "QRIS")
}

func TestSalesSummary(t *testing.T) {
	db := openTestDB(t)
	sales := []Models.Transaction{
		{ReceiptNo: "A", Timestamp: time.Date(2024, 3, 1, 9, 0, 0, 0, time.Local), TotalAmount: 35000, PaymentMethod: Models.PaymentCash,
			Items: []Models.TransactionItem{
				{ProductName: "Latte", Quantity: 1, Price: 25000, Subtotal: 25000},
				{ProductName: "Espresso", Quantity: 1, Price: 10000, Subtotal: 10000},
			}},
		{ReceiptNo: "B", Timestamp: time.Date(2024, 3, 2, 9, 0, 0, 0, time.Local), TotalAmount: 50000, PaymentMethod: Models.PaymentQRIS,
			Items: []Models.TransactionItem{{ProductName: "Latte", Quantity: 2, Price: 25000, Subtotal: 50000}}},
		{ReceiptNo: "C", Timestamp: time.Date(2024, 4, 1, 9, 0, 0, 0, time.Local), TotalAmount: 10000, PaymentMethod: Models.PaymentCash,
			Items: []Models.TransactionItem{{ProductName: "Espresso", Quantity: 1, Price: 10000, Subtotal: 10000}}},
	}
	require.NoError(t, db.Create(&sales).Error)

	summary, err := Reports.Sales(db, Reports.SalesFilter{
		From: time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local),
		To:   time.Date(2024, 4, 1, 0, 0, 0, 0, time.Local),
	})
	require.NoError(t, err)
	assert.Equal(t, 85000.0, summary.Revenue)
	assert.Equal(t, 2, summary.Transactions)
	assert.Equal(t, 4, summary.ItemsSold)
	require.Len(t, summary.ByProduct, 2)
	assert.Equal(t, Reports.ProductSales{Product: "Latte", Quantity: 3, Revenue: 75000}, summary.ByProduct[0])
	require.Len(t, summary.Daily, 2)
	assert.Equal(t, "2024-03-01", summary.Daily[0].Date)
	require.Len(t, summary.ByPayment, 2)
	assert.Equal(t, Models.PaymentCash, summary.ByPayment[0].PaymentMethod)

	text := summary.ShareText("Kopi Senja")
	assert.Contains(t, text, "*Kopi Senja* sales report")
	assert.Contains(t, text, "01 Mar 2024 to 31 Mar 2024")
	assert.Contains(t, text, "Revenue: Rp 85.000")
	assert.Contains(t, text, "1. Latte x3 Rp 75.000")

	table := summary.Table()
	assert.Equal(t, []string{"Product", "Quantity", "Revenue"}, table.Headers)
	assert.Len(t, table.Rows, 2)
}

func TestStockAndExpenseSummaries(t *testing.T) {
	db := openTestDB(t)
	ingredients := []Models.Ingredient{
		{Name: "Beans", Unit: "gr", CostPerUnit: 100, Stock: 50},
		{Name: "Milk", Unit: "ml", CostPerUnit: 20, Stock: 1000, LowStockThreshold: 2000},
		{Name: "Sugar", Unit: "gr", CostPerUnit: 15, Stock: 500},
	}
	require.NoError(t, db.Create(&ingredients).Error)

	stock, err := Reports.Stock(db, 100)
	require.NoError(t, err)
	assert.Equal(t, 2, stock.LowCount)
	assert.Equal(t, 5000.0+20000.0+7500.0, stock.TotalValue)
	assert.True(t, stock.Lines[0].Low)
	assert.False(t, stock.Lines[2].Low)

	day := func(d int) datatypes.Date { return datatypes.Date(time.Date(2024, 3, d, 0, 0, 0, 0, time.Local)) }
	expenses := []Models.Expense{
		{Date: day(1), Category: "Operational", Description: "Listrik", Amount: 250000, PaymentMethod: Models.PaymentCash},
		{Date: day(2), Category: "Other", Description: "Sabun", Amount: 15000, PaymentMethod: Models.PaymentCash},
		{Date: day(3), Category: "Operational", Description: "Air", Amount: 50000, PaymentMethod: Models.PaymentCard},
	}
	require.NoError(t, db.Create(&expenses).Error)

	summary, err := Reports.Expenses(db, time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local), time.Date(2024, 3, 3, 0, 0, 0, 0, time.Local))
	require.NoError(t, err)
	assert.Equal(t, 265000.0, summary.Total)
	assert.Equal(t, []Reports.CategoryTotal{{Category: "Operational", Total: 250000}, {Category: "Other", Total: 15000}}, summary.ByCategory)

	table := summary.Table()
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "2024-03-01", table.Rows[0][0])
}
