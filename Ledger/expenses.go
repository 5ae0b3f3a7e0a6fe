package Ledger

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"CafePOS/Models"
)

func (d *Draft) DebitAccount(accountID uint, amount float64) *Draft {
	d.Lines = append(d.Lines, Line{AccountID: accountID, Debit: money(amount)})
	return d
}

func (d *Draft) CreditAccount(accountID uint, amount float64) *Draft {
	d.Lines = append(d.Lines, Line{AccountID: accountID, Credit: money(amount)})
	return d
}

// ExpenseAccountFor picks the default expense account of a category.
func ExpenseAccountFor(category string) string {
	switch strings.ToLower(category) {
	case "other", "lainnya":
		return Models.AccountCodeOtherExpense
	case "wages", "gaji":
		return Models.AccountCodeWages
	default:
		return Models.AccountCodeOperating
	}
}

// PostExpense replaces the journal entry of an expense: debit the expense
// account, credit cash or bank.
func PostExpense(tx *gorm.DB, expense *Models.Expense) (*Models.JournalEntry, error) {
	if err := DeleteForExpense(tx, expense.ID); err != nil {
		return nil, err
	}

	id := expense.ID
	draft := NewDraft(time.Time(expense.Date), expense.Description, fmt.Sprintf("expense:%d", expense.ID))
	draft.ExpenseID = &id
	if expense.AccountID != nil {
		draft.DebitAccount(*expense.AccountID, expense.Amount)
	} else {
		draft.Debit(ExpenseAccountFor(expense.Category), expense.Amount)
	}
	draft.Credit(CashAccountFor(expense.PaymentMethod), expense.Amount)

	return Post(tx, draft)
}
