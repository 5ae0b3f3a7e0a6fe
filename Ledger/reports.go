package Ledger

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"CafePOS/Models"
)

type AccountBalance struct {
	AccountID uint               `json:"account_id"`
	Code      string             `json:"code"`
	Name      string             `json:"name"`
	Type      Models.AccountType `json:"type"`
	Debit     float64            `json:"debit"`
	Credit    float64            `json:"credit"`
	Balance   float64            `json:"balance"`
}

type TrialBalance struct {
	Accounts    []AccountBalance `json:"accounts"`
	TotalDebit  float64          `json:"total_debit"`
	TotalCredit float64          `json:"total_credit"`
	Balanced    bool             `json:"balanced"`
}

type ProfitAndLoss struct {
	From        time.Time `json:"from"`
	To          time.Time `json:"to"`
	Revenue     float64   `json:"revenue"`
	COGS        float64   `json:"cogs"`
	GrossProfit float64   `json:"gross_profit"`
	Expenses    float64   `json:"expenses"`
	NetProfit   float64   `json:"net_profit"`
}

// Period bounds used when a report has no explicit range.
var (
	beginningOfTime = time.Date(1970, 1, 1, 0, 0, 0, 0, time.Local)
	endOfTime       = time.Date(9999, 12, 31, 0, 0, 0, 0, time.Local)
)

func bounds(from, to time.Time) (time.Time, time.Time) {
	if from.IsZero() {
		from = beginningOfTime
	}
	if to.IsZero() {
		to = endOfTime
	}
	return from, to
}

// Balances sums journal lines per account for entries dated in [from, to).
func Balances(db *gorm.DB, from, to time.Time) (*TrialBalance, error) {
	from, to = bounds(from, to)

	type row struct {
		AccountID uint
		Code      string
		Name      string
		Type      Models.AccountType
		Debit     float64
		Credit    float64
	}
	var rows []row
	err := db.Raw(`
		SELECT a.id AS account_id, a.code AS code, a.name AS name, a.type AS type,
			COALESCE(SUM(t.debit), 0) AS debit, COALESCE(SUM(t.credit), 0) AS credit
		FROM accounts a
		LEFT JOIN (
			SELECT ji.account_id, ji.debit, ji.credit
			FROM journal_items ji
			JOIN journal_entries je ON je.id = ji.entry_id
			WHERE je.date >= ? AND je.date < ?
		) t ON t.account_id = a.id
		GROUP BY a.id, a.code, a.name, a.type
		ORDER BY a.code`, from, to).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	tb := &TrialBalance{}
	totalDebit, totalCredit := decimal.Zero, decimal.Zero
	for _, r := range rows {
		debit, credit := money(r.Debit), money(r.Credit)
		balance := debit.Sub(credit)
		if !(Models.Account{Type: r.Type}).NormalDebit() {
			balance = credit.Sub(debit)
		}
		tb.Accounts = append(tb.Accounts, AccountBalance{
			AccountID: r.AccountID,
			Code:      r.Code,
			Name:      r.Name,
			Type:      r.Type,
			Debit:     debit.InexactFloat64(),
			Credit:    credit.InexactFloat64(),
			Balance:   balance.InexactFloat64(),
		})
		totalDebit = totalDebit.Add(debit)
		totalCredit = totalCredit.Add(credit)
	}
	tb.TotalDebit = totalDebit.InexactFloat64()
	tb.TotalCredit = totalCredit.InexactFloat64()
	tb.Balanced = totalDebit.Sub(totalCredit).Abs().LessThanOrEqual(Tolerance)
	return tb, nil
}

func ProfitAndLossFor(db *gorm.DB, from, to time.Time) (*ProfitAndLoss, error) {
	tb, err := Balances(db, from, to)
	if err != nil {
		return nil, err
	}

	revenue, cogs, expenses := decimal.Zero, decimal.Zero, decimal.Zero
	for _, acc := range tb.Accounts {
		balance := decimal.NewFromFloat(acc.Balance)
		switch {
		case acc.Type == Models.AccountRevenue:
			revenue = revenue.Add(balance)
		case acc.Code == Models.AccountCodeCOGS:
			cogs = cogs.Add(balance)
		case acc.Type == Models.AccountExpense:
			expenses = expenses.Add(balance)
		}
	}
	gross := revenue.Sub(cogs)

	pl := &ProfitAndLoss{
		From:        from,
		To:          to,
		Revenue:     revenue.InexactFloat64(),
		COGS:        cogs.InexactFloat64(),
		GrossProfit: gross.InexactFloat64(),
		Expenses:    expenses.InexactFloat64(),
		NetProfit:   gross.Sub(expenses).InexactFloat64(),
	}
	return pl, nil
}

// Entries lists journal entries with their lines, newest first.
func Entries(db *gorm.DB, from, to time.Time) ([]Models.JournalEntry, error) {
	from, to = bounds(from, to)
	var entries []Models.JournalEntry
	err := db.Preload("Items.Account").
		Where("date >= ? AND date < ?", from, to).
		Order("date desc, id desc").
		Find(&entries).Error
	return entries, err
}
