package Controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"CafePOS/Ledger"
	"CafePOS/Models"
	"CafePOS/Reports"
)

type ExpenseController struct {
	DB *gorm.DB
}

func NewExpenseController(db *gorm.DB) *ExpenseController {
	return &ExpenseController{DB: db}
}

type expenseInput struct {
	Date          string  `json:"date" validate:"required"`
	Category      string  `json:"category" validate:"required,max=50"`
	Description   string  `json:"description" validate:"required,max=200"`
	Amount        float64 `json:"amount" validate:"gt=0"`
	PaymentMethod string  `json:"payment_method"`
	AccountID     *uint   `json:"account_id"`
}

func (in expenseInput) apply(tx *gorm.DB, expense *Models.Expense) error {
	date, err := time.ParseInLocation(dateLayout, in.Date, time.Local)
	if err != nil {
		return Models.Invalidf("date must look like %s", dateLayout)
	}
	method := Models.PaymentCash
	if in.PaymentMethod != "" {
		if method, err = Models.ParsePaymentMethod(in.PaymentMethod); err != nil {
			return err
		}
	}
	if in.AccountID != nil {
		var account Models.Account
		if err := tx.First(&account, *in.AccountID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return Models.Invalidf("unknown account %d", *in.AccountID)
			}
			return err
		}
		if account.Type != Models.AccountExpense {
			return Models.Invalidf("account %s is not an expense account", account.Code)
		}
	}
	expense.Date = datatypes.Date(date)
	expense.Category = in.Category
	expense.Description = in.Description
	expense.Amount = in.Amount
	expense.PaymentMethod = method
	expense.AccountID = in.AccountID
	return nil
}

func (c *ExpenseController) GetExpenses(ctx *fiber.Ctx) error {
	from, to, err := parseRange(ctx)
	if err != nil {
		return respondError(ctx, err)
	}
	summary, err := Reports.Expenses(c.DB, from, to)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(summary.Expenses)
}

func (c *ExpenseController) GetExpense(ctx *fiber.Ctx) error {
	id, err := paramID(ctx)
	if err != nil {
		return respondError(ctx, err)
	}
	var expense Models.Expense
	if err := c.DB.Preload("Account").First(&expense, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respondError(ctx, Models.NotFoundf("expense %d", id))
		}
		return respondError(ctx, err)
	}
	return ctx.JSON(expense)
}

// CreateExpense stores the expense and books it in the same transaction.
func (c *ExpenseController) CreateExpense(ctx *fiber.Ctx) error {
	var input expenseInput
	if err := parseBody(ctx, &input); err != nil {
		return respondError(ctx, err)
	}
	var expense Models.Expense
	err := c.DB.Transaction(func(tx *gorm.DB) error {
		if err := input.apply(tx, &expense); err != nil {
			return err
		}
		if err := tx.Create(&expense).Error; err != nil {
			return err
		}
		_, err := Ledger.PostExpense(tx, &expense)
		return err
	})
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(expense)
}

func (c *ExpenseController) UpdateExpense(ctx *fiber.Ctx) error {
	id, err := paramID(ctx)
	if err != nil {
		return respondError(ctx, err)
	}
	var input expenseInput
	if err := parseBody(ctx, &input); err != nil {
		return respondError(ctx, err)
	}
	var expense Models.Expense
	err = c.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&expense, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return Models.NotFoundf("expense %d", id)
			}
			return err
		}
		if err := input.apply(tx, &expense); err != nil {
			return err
		}
		if err := tx.Save(&expense).Error; err != nil {
			return err
		}
		_, err := Ledger.PostExpense(tx, &expense)
		return err
	})
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(expense)
}

func (c *ExpenseController) DeleteExpense(ctx *fiber.Ctx) error {
	id, err := paramID(ctx)
	if err != nil {
		return respondError(ctx, err)
	}
	err = c.DB.Transaction(func(tx *gorm.DB) error {
		if err := Ledger.DeleteForExpense(tx, id); err != nil {
			return err
		}
		res := tx.Delete(&Models.Expense{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return Models.NotFoundf("expense %d", id)
		}
		return nil
	})
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(fiber.Map{"message": "Expense deleted successfully"})
}
