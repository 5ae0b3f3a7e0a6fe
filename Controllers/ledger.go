package Controllers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"CafePOS/Ledger"
	"CafePOS/Models"
)

type LedgerController struct {
	DB *gorm.DB
}

func NewLedgerController(db *gorm.DB) *LedgerController {
	return &LedgerController{DB: db}
}

func (c *LedgerController) GetAccounts(ctx *fiber.Ctx) error {
	var accounts []Models.Account
	if err := c.DB.Order("code asc").Find(&accounts).Error; err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(accounts)
}

type accountInput struct {
	Code string `json:"code" validate:"required,numeric,max=10"`
	Name string `json:"name" validate:"required,max=100"`
	Type string `json:"type" validate:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE asset liability equity revenue expense"`
}

func (c *LedgerController) CreateAccount(ctx *fiber.Ctx) error {
	var input accountInput
	if err := parseBody(ctx, &input); err != nil {
		return respondError(ctx, err)
	}
	account := Models.Account{
		Code: input.Code,
		Name: input.Name,
		Type: Models.AccountType(strings.ToUpper(input.Type)),
	}
	if err := c.DB.Create(&account).Error; err != nil {
		return respondError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(account)
}

func (c *LedgerController) GetEntries(ctx *fiber.Ctx) error {
	from, to, err := parseRange(ctx)
	if err != nil {
		return respondError(ctx, err)
	}
	entries, err := Ledger.Entries(c.DB, from, to)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(entries)
}

type journalLineInput struct {
	AccountCode string  `json:"account_code" validate:"required"`
	Debit       float64 `json:"debit" validate:"gte=0"`
	Credit      float64 `json:"credit" validate:"gte=0"`
}

type journalInput struct {
	Date        string             `json:"date"`
	Description string             `json:"description" validate:"required,max=200"`
	Reference   string             `json:"reference" validate:"max=100"`
	Lines       []journalLineInput `json:"lines" validate:"required,min=2,dive"`
}

// CreateEntry posts a manual journal entry. Unbalanced entries are refused.
func (c *LedgerController) CreateEntry(ctx *fiber.Ctx) error {
	var input journalInput
	if err := parseBody(ctx, &input); err != nil {
		return respondError(ctx, err)
	}
	date := time.Now()
	if input.Date != "" {
		t, err := time.ParseInLocation(dateLayout, input.Date, time.Local)
		if err != nil {
			return respondError(ctx, Models.Invalidf("date must look like %s", dateLayout))
		}
		date = t
	}

	draft := Ledger.NewDraft(date, input.Description, input.Reference)
	for _, line := range input.Lines {
		if line.Debit > 0 {
			draft.Debit(line.AccountCode, line.Debit)
		}
		if line.Credit > 0 {
			draft.Credit(line.AccountCode, line.Credit)
		}
		if line.Debit == 0 && line.Credit == 0 {
			return respondError(ctx, Models.Invalidf("line for %s has no amount", line.AccountCode))
		}
	}

	var entry *Models.JournalEntry
	err := c.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		entry, err = Ledger.Post(tx, draft)
		return err
	})
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(entry)
}

// DeleteEntry removes a manual entry. Entries of sales and expenses go away
// with their source document only.
func (c *LedgerController) DeleteEntry(ctx *fiber.Ctx) error {
	id, err := paramID(ctx)
	if err != nil {
		return respondError(ctx, err)
	}
	err = c.DB.Transaction(func(tx *gorm.DB) error {
		var entry Models.JournalEntry
		if err := tx.First(&entry, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return Models.NotFoundf("journal entry %d", id)
			}
			return err
		}
		if entry.TransactionID != nil || entry.ExpenseID != nil {
			return Models.Rulef("journal entry %d belongs to a sale or expense", id)
		}
		return Ledger.DeleteEntry(tx, id)
	})
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(fiber.Map{"message": "Journal entry deleted successfully"})
}

func (c *LedgerController) GetTrialBalance(ctx *fiber.Ctx) error {
	from, to, err := parseRange(ctx)
	if err != nil {
		return respondError(ctx, err)
	}
	tb, err := Ledger.Balances(c.DB, from, to)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(tb)
}

func (c *LedgerController) GetProfitAndLoss(ctx *fiber.Ctx) error {
	from, to, err := parseRange(ctx)
	if err != nil {
		return respondError(ctx, err)
	}
	pl, err := Ledger.ProfitAndLossFor(c.DB, from, to)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(pl)
}
