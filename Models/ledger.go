package Models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	ExpenseOperational = "Operational"
	ExpenseOther       = "Other"
	ExpenseWages       = "Wages"
)

type Expense struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	Date          datatypes.Date `json:"date" gorm:"not null;index"`
	Category      string         `json:"category" gorm:"index"`
	Description   string         `json:"description" gorm:"not null"`
	Amount        float64        `json:"amount" gorm:"not null"`
	PaymentMethod PaymentMethod  `json:"payment_method"`
	AccountID     *uint          `json:"account_id"`
	Account       *Account       `json:"account,omitempty" gorm:"foreignKey:AccountID"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

type AccountType string

const (
	AccountAsset     AccountType = "ASSET"
	AccountLiability AccountType = "LIABILITY"
	AccountEquity    AccountType = "EQUITY"
	AccountRevenue   AccountType = "REVENUE"
	AccountExpense   AccountType = "EXPENSE"
)

// Codes of the default chart of accounts.
const (
	AccountCodeCash         = "1000"
	AccountCodeBank         = "1010"
	AccountCodeInventory    = "1200"
	AccountCodeEquity       = "3000"
	AccountCodeSales        = "4000"
	AccountCodeCOGS         = "5000"
	AccountCodeOperating    = "6000"
	AccountCodeWages        = "6100"
	AccountCodeOtherExpense = "6900"
)

type Account struct {
	ID        uint        `json:"id" gorm:"primaryKey"`
	Code      string      `json:"code" gorm:"not null;uniqueIndex"`
	Name      string      `json:"name" gorm:"not null;uniqueIndex"`
	Type      AccountType `json:"type" gorm:"not null"`
	CreatedAt time.Time   `json:"created_at"`
}

// NormalDebit reports whether the account grows on the debit side.
func (a Account) NormalDebit() bool {
	return a.Type == AccountAsset || a.Type == AccountExpense
}

func DefaultAccounts() []Account {
	return []Account{
		{Code: AccountCodeCash, Name: "Cash", Type: AccountAsset},
		{Code: AccountCodeBank, Name: "Bank", Type: AccountAsset},
		{Code: AccountCodeInventory, Name: "Inventory", Type: AccountAsset},
		{Code: AccountCodeEquity, Name: "Owner's Equity", Type: AccountEquity},
		{Code: AccountCodeSales, Name: "Sales Revenue", Type: AccountRevenue},
		{Code: AccountCodeCOGS, Name: "Cost of Goods Sold", Type: AccountExpense},
		{Code: AccountCodeOperating, Name: "Operating Expenses", Type: AccountExpense},
		{Code: AccountCodeWages, Name: "Wages Expense", Type: AccountExpense},
		{Code: AccountCodeOtherExpense, Name: "Other Expenses", Type: AccountExpense},
	}
}

type JournalEntry struct {
	ID            uint          `json:"id" gorm:"primaryKey"`
	Date          time.Time     `json:"date" gorm:"not null;index"`
	Description   string        `json:"description"`
	Reference     string        `json:"reference" gorm:"index"`
	TransactionID *uint         `json:"transaction_id,omitempty" gorm:"index"`
	ExpenseID     *uint         `json:"expense_id,omitempty" gorm:"index"`
	Items         []JournalItem `json:"items" gorm:"foreignKey:EntryID"`
	CreatedAt     time.Time     `json:"created_at"`
}

type JournalItem struct {
	ID        uint     `json:"id" gorm:"primaryKey"`
	EntryID   uint     `json:"entry_id" gorm:"not null;index"`
	AccountID uint     `json:"account_id" gorm:"not null;index"`
	Account   *Account `json:"account,omitempty" gorm:"foreignKey:AccountID"`
	Debit     float64  `json:"debit" gorm:"not null;default:0"`
	Credit    float64  `json:"credit" gorm:"not null;default:0"`
}
