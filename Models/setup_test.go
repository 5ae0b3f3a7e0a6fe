package Models_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"CafePOS/Models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Models.Open("sqlite", filepath.Join(t.TempDir(), "cafe.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// snapshot loads every row the domain stores, with associations.
type snapshot struct {
	employees   []Models.Employee
	ingredients []Models.Ingredient
	products    []Models.Product
	sales       []Models.Transaction
	expenses    []Models.Expense
	shifts      []Models.Attendance
	entries     []Models.JournalEntry
	accounts    []Models.Account
}

func takeSnapshot(t *testing.T, db *gorm.DB) snapshot {
	t.Helper()
	var s snapshot
	require.NoError(t, db.Order("id").Find(&s.employees).Error)
	require.NoError(t, db.Order("id").Find(&s.ingredients).Error)
	require.NoError(t, db.Preload("Recipe").Order("id").Find(&s.products).Error)
	require.NoError(t, db.Preload("Items.Consumption").Order("id").Find(&s.sales).Error)
	require.NoError(t, db.Order("id").Find(&s.expenses).Error)
	require.NoError(t, db.Order("id").Find(&s.shifts).Error)
	require.NoError(t, db.Preload("Items").Order("id").Find(&s.entries).Error)
	require.NoError(t, db.Order("id").Find(&s.accounts).Error)
	return s
}

func TestMigrateTwiceChangesNothing(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Models.Migrate(db))

	cashier := Models.Employee{Name: "Sari", Role: Models.RoleOperator, Active: true, WageAmount: 100000, WagePeriod: Models.WagePerDay}
	require.NoError(t, db.Create(&cashier).Error)
	milk := Models.Ingredient{Name: "Milk", Unit: "ml", PackWeight: 1000, PackPrice: 20000, Stock: 850.5}
	require.NoError(t, db.Create(&milk).Error)
	latte := Models.Product{Name: "Latte", Price: 25000, Category: "Coffee", Recipe: []Models.Recipe{
		{IngredientID: milk.ID, QtyPerUnit: 150},
	}}
	require.NoError(t, db.Create(&latte).Error)

	at := time.Date(2024, 3, 1, 10, 30, 0, 0, time.Local)
	sale := Models.Transaction{
		ReceiptNo:     "INV-20240301-0000CAFE",
		Timestamp:     at,
		TotalAmount:   25000,
		PaymentMethod: Models.PaymentCash,
		AmountPaid:    30000,
		Change:        5000,
		EmployeeID:    cashier.ID,
		Items: []Models.TransactionItem{{
			ProductID: latte.ID, ProductName: "Latte", Quantity: 1, Price: 25000, Subtotal: 25000,
			Consumption: []Models.TransactionItemIngredient{
				{IngredientID: milk.ID, QtyPerUnit: 150, Quantity: 150, UnitCost: 20},
			},
		}},
	}
	require.NoError(t, db.Create(&sale).Error)
	require.NoError(t, db.Create(&Models.Expense{
		Date: datatypes.Date(at), Category: "Operational", Description: "Listrik",
		Amount: 250000, PaymentMethod: Models.PaymentCard,
	}).Error)
	require.NoError(t, db.Create(&Models.Attendance{EmployeeID: cashier.ID, CheckIn: at}).Error)

	var cash, sales Models.Account
	require.NoError(t, db.Where("code = ?", Models.AccountCodeCash).First(&cash).Error)
	require.NoError(t, db.Where("code = ?", Models.AccountCodeSales).First(&sales).Error)
	require.NoError(t, db.Create(&Models.JournalEntry{
		Date: at, Description: "Sale " + sale.ReceiptNo, TransactionID: &sale.ID,
		Items: []Models.JournalItem{
			{AccountID: cash.ID, Debit: 25000},
			{AccountID: sales.ID, Credit: 25000},
		},
	}).Error)

	before := takeSnapshot(t, db)
	require.Len(t, before.sales, 1)
	require.Len(t, before.sales[0].Items, 1)
	require.Len(t, before.products[0].Recipe, 1)
	require.Len(t, before.entries, 1)
	require.Len(t, before.shifts, 1)
	assert.Len(t, before.accounts, len(Models.DefaultAccounts()))

	require.NoError(t, Models.Migrate(db))
	after := takeSnapshot(t, db)

	assert.Equal(t, before.employees, after.employees)
	assert.Equal(t, before.ingredients, after.ingredients)
	assert.Equal(t, before.products, after.products)
	assert.Equal(t, before.sales, after.sales)
	assert.Equal(t, before.expenses, after.expenses)
	assert.Equal(t, before.shifts, after.shifts)
	assert.Equal(t, before.entries, after.entries)
	assert.Equal(t, before.accounts, after.accounts)
}

func TestMigrateCarriesLegacyTables(t *testing.T) {
	db := openTestDB(t)

	statements := []string{
		`CREATE TABLE products (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT NOT NULL UNIQUE, price REAL NOT NULL)`,
		`CREATE TABLE employees (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT NOT NULL UNIQUE, hourly_wage REAL)`,
		`CREATE TABLE attendance (id INTEGER PRIMARY KEY AUTOINCREMENT, employee_id INTEGER NOT NULL, check_in TEXT NOT NULL, check_out TEXT)`,
		`CREATE TABLE sales (id INTEGER PRIMARY KEY AUTOINCREMENT, product_id INTEGER, qty INTEGER, date TEXT)`,
		`CREATE TABLE operational_costs (id INTEGER PRIMARY KEY AUTOINCREMENT, description TEXT, amount REAL, date TEXT)`,
		`INSERT INTO products (name, price) VALUES ('Espresso', 10000)`,
		`INSERT INTO employees (name, hourly_wage) VALUES ('Budi', 15000)`,
		`INSERT INTO attendance (employee_id, check_in, check_out) VALUES (1, '2024-01-02 08:00:00', '')`,
		`INSERT INTO sales (product_id, qty, date) VALUES (1, 3, '2024-01-02')`,
		`INSERT INTO sales (product_id, qty, date) VALUES (1, 1, 'yesterday')`,
		`INSERT INTO operational_costs (description, amount, date) VALUES ('Listrik', 250000, '2024-01-05')`,
	}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error, stmt)
	}

	require.NoError(t, Models.Migrate(db))

	var budi Models.Employee
	require.NoError(t, db.Where("name = ?", "Budi").First(&budi).Error)
	assert.Equal(t, 15000.0, budi.WageAmount)
	assert.Equal(t, Models.WagePerHour, budi.WagePeriod)
	assert.False(t, db.Migrator().HasColumn(&Models.Employee{}, "hourly_wage"))

	var sales []Models.Transaction
	require.NoError(t, db.Preload("Items").Find(&sales).Error)
	require.Len(t, sales, 1, "rows with unreadable dates are skipped")
	assert.Equal(t, 30000.0, sales[0].TotalAmount)
	require.Len(t, sales[0].Items, 1)
	assert.Equal(t, "Espresso", sales[0].Items[0].ProductName)
	assert.True(t, db.Migrator().HasTable("legacy_sales"))

	var expenses []Models.Expense
	require.NoError(t, db.Find(&expenses).Error)
	require.Len(t, expenses, 1)
	assert.Equal(t, Models.ExpenseOperational, expenses[0].Category)
	assert.Equal(t, 250000.0, expenses[0].Amount)

	var open int64
	require.NoError(t, db.Model(&Models.Attendance{}).Where("check_out IS NULL").Count(&open).Error)
	assert.EqualValues(t, 1, open)

	// a second run finds nothing left to carry over
	require.NoError(t, Models.Migrate(db))
	var count int64
	require.NoError(t, db.Model(&Models.Transaction{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestSeedLoadsCatalogOnce(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Models.Migrate(db))

	catalog, err := Models.ParseCatalog([]byte(`{
		// json5 allows comments
		ingredients: [{name: "Beans", unit: "gr", cost_per_unit: 100, stock: 500}],
		products: [{name: "Espresso", price: 10000, category: "Coffee", recipe: {"Beans": 18}}],
		employees: [{name: "Sari", role: "kasir", wage_amount: 12000, wage_period: "hour", password: "sari"}]
	}`), ".json5")
	require.NoError(t, err)

	require.NoError(t, Models.Seed(db, catalog))
	require.NoError(t, Models.Seed(db, catalog))

	var products []Models.Product
	require.NoError(t, db.Preload("Recipe").Find(&products).Error)
	require.Len(t, products, 1)
	require.Len(t, products[0].Recipe, 1)
	assert.Equal(t, 18.0, products[0].Recipe[0].QtyPerUnit)

	var sari Models.Employee
	require.NoError(t, db.Where("name = ?", "Sari").First(&sari).Error)
	assert.Equal(t, Models.RoleOperator, sari.Role)
	assert.True(t, sari.CheckPassword("sari"))
}

func TestSeedRejectsUnknownRecipeIngredient(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Models.Migrate(db))

	catalog := &Models.Catalog{
		Products: []Models.SeedProduct{{Name: "Mystery", Price: 1, Recipe: map[string]float64{"Nothing": 1}}},
	}
	err := Models.Seed(db, catalog)
	assert.ErrorIs(t, err, Models.ErrValidation)
}

func TestDefaultCatalogParses(t *testing.T) {
	catalog, err := Models.DefaultCatalog()
	require.NoError(t, err)
	assert.NotEmpty(t, catalog.Ingredients)
	assert.NotEmpty(t, catalog.Products)
}

func TestEnsureAdmin(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Models.Migrate(db))

	require.NoError(t, Models.EnsureAdmin(db, "admin", "123"))
	require.NoError(t, Models.EnsureAdmin(db, "other", "456"))

	var admins []Models.Employee
	require.NoError(t, db.Where("role = ?", Models.RoleAdmin).Find(&admins).Error)
	require.Len(t, admins, 1)
	assert.Equal(t, "admin", admins[0].Name)
	assert.True(t, admins[0].CheckPassword("123"))
}

func TestParseHelpers(t *testing.T) {
	method, err := Models.ParsePaymentMethod(" qris ")
	require.NoError(t, err)
	assert.Equal(t, Models.PaymentQRIS, method)

	_, err = Models.ParsePaymentMethod("bitcoin")
	assert.ErrorIs(t, err, Models.ErrValidation)

	role, err := Models.ParseRole("MANAGER")
	require.NoError(t, err)
	assert.Equal(t, Models.RoleManager, role)

	assert.Equal(t, 0.0, Models.UnitCost(1000, 0))
	assert.InDelta(t, 6.0, Models.UnitCost(6000, 1000), 1e-9)
}
