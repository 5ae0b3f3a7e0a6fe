package Ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"CafePOS/Models"
)

// Tolerance is the largest debit/credit gap still accepted as rounding.
var Tolerance = decimal.NewFromFloat(0.01)

type Line struct {
	AccountID   uint
	AccountCode string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
}

// Draft is a journal entry that has not been validated or stored yet.
type Draft struct {
	Date          time.Time
	Description   string
	Reference     string
	TransactionID *uint
	ExpenseID     *uint
	Lines         []Line
}

func NewDraft(date time.Time, description, reference string) *Draft {
	return &Draft{Date: date, Description: description, Reference: reference}
}

func money(amount float64) decimal.Decimal {
	return decimal.NewFromFloat(amount).Round(2)
}

func (d *Draft) Debit(code string, amount float64) *Draft {
	d.Lines = append(d.Lines, Line{AccountCode: code, Debit: money(amount)})
	return d
}

func (d *Draft) Credit(code string, amount float64) *Draft {
	d.Lines = append(d.Lines, Line{AccountCode: code, Credit: money(amount)})
	return d
}

func (d *Draft) Totals() (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, line := range d.Lines {
		debit = debit.Add(line.Debit)
		credit = credit.Add(line.Credit)
	}
	return debit, credit
}

// UnbalancedEntryError is returned when debits and credits differ by more
// than Tolerance.
type UnbalancedEntryError struct {
	Debit      decimal.Decimal
	Credit     decimal.Decimal
	Difference decimal.Decimal
}

func (e *UnbalancedEntryError) Error() string {
	return fmt.Sprintf("unbalanced journal entry: debit %s, credit %s, difference %s",
		e.Debit.StringFixed(2), e.Credit.StringFixed(2), e.Difference.StringFixed(2))
}

func (e *UnbalancedEntryError) Is(target error) bool {
	return target == Models.ErrBusinessRule
}

// Validate checks the shape of the entry and the balance invariant.
func (d *Draft) Validate() error {
	if len(d.Lines) < 2 {
		return Models.Invalidf("a journal entry needs at least two lines")
	}
	for i, line := range d.Lines {
		if line.AccountID == 0 && line.AccountCode == "" {
			return Models.Invalidf("line %d has no account", i+1)
		}
		if line.Debit.IsNegative() || line.Credit.IsNegative() {
			return Models.Invalidf("line %d has a negative amount", i+1)
		}
		if line.Debit.IsZero() == line.Credit.IsZero() {
			return Models.Invalidf("line %d must have either a debit or a credit", i+1)
		}
	}

	debit, credit := d.Totals()
	if debit.IsZero() {
		return Models.Invalidf("a journal entry cannot be empty")
	}
	diff := debit.Sub(credit).Abs()
	if diff.GreaterThan(Tolerance) {
		return &UnbalancedEntryError{Debit: debit, Credit: credit, Difference: diff}
	}
	return nil
}

// Post validates the draft and stores it inside tx.
func Post(tx *gorm.DB, d *Draft) (*Models.JournalEntry, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	accounts, err := resolveAccounts(tx, d.Lines)
	if err != nil {
		return nil, err
	}

	entry := Models.JournalEntry{
		Date:          d.Date,
		Description:   d.Description,
		Reference:     d.Reference,
		TransactionID: d.TransactionID,
		ExpenseID:     d.ExpenseID,
	}
	if entry.Date.IsZero() {
		entry.Date = time.Now()
	}
	for i, line := range d.Lines {
		entry.Items = append(entry.Items, Models.JournalItem{
			AccountID: accounts[i],
			Debit:     line.Debit.InexactFloat64(),
			Credit:    line.Credit.InexactFloat64(),
		})
	}

	if err := tx.Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("storing journal entry: %w", err)
	}
	return &entry, nil
}

// resolveAccounts returns the account id of every line, in order.
func resolveAccounts(tx *gorm.DB, lines []Line) ([]uint, error) {
	var accounts []Models.Account
	if err := tx.Find(&accounts).Error; err != nil {
		return nil, err
	}
	byCode := make(map[string]uint, len(accounts))
	byID := make(map[uint]bool, len(accounts))
	for _, acc := range accounts {
		byCode[acc.Code] = acc.ID
		byID[acc.ID] = true
	}

	ids := make([]uint, len(lines))
	for i, line := range lines {
		if line.AccountID != 0 {
			if !byID[line.AccountID] {
				return nil, Models.Invalidf("unknown account id %d", line.AccountID)
			}
			ids[i] = line.AccountID
			continue
		}
		id, ok := byCode[line.AccountCode]
		if !ok {
			return nil, Models.Invalidf("unknown account code %s", line.AccountCode)
		}
		ids[i] = id
	}
	return ids, nil
}

// CashAccountFor maps a payment method to the asset account it moves.
func CashAccountFor(method Models.PaymentMethod) string {
	if method == Models.PaymentCash || method == "" {
		return Models.AccountCodeCash
	}
	return Models.AccountCodeBank
}

func deleteEntries(tx *gorm.DB, column string, id uint) error {
	entryIDs := tx.Model(&Models.JournalEntry{}).Select("id").Where(column+" = ?", id)
	if err := tx.Where("entry_id IN (?)", entryIDs).Delete(&Models.JournalItem{}).Error; err != nil {
		return err
	}
	return tx.Where(column+" = ?", id).Delete(&Models.JournalEntry{}).Error
}

// DeleteForTransaction removes every journal entry posted for a sale.
func DeleteForTransaction(tx *gorm.DB, transactionID uint) error {
	return deleteEntries(tx, "transaction_id", transactionID)
}

func DeleteForExpense(tx *gorm.DB, expenseID uint) error {
	return deleteEntries(tx, "expense_id", expenseID)
}

// DeleteEntry removes a manual entry with its lines.
func DeleteEntry(tx *gorm.DB, entryID uint) error {
	if err := tx.Where("entry_id = ?", entryID).Delete(&Models.JournalItem{}).Error; err != nil {
		return err
	}
	res := tx.Delete(&Models.JournalEntry{}, entryID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return Models.NotFoundf("journal entry %d", entryID)
	}
	return nil
}
