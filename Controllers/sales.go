package Controllers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"CafePOS/Config"
	"CafePOS/Models"
	"CafePOS/Reports"
	"CafePOS/Sales"
	"CafePOS/middleware"
)

type SalesController struct {
	DB        *gorm.DB
	Processor *Sales.Processor
	Store     Config.StoreConfig
}

func NewSalesController(db *gorm.DB, processor *Sales.Processor, store Config.StoreConfig) *SalesController {
	return &SalesController{DB: db, Processor: processor, Store: store}
}

type saleInput struct {
	Items         map[string]int `json:"items" validate:"required,min=1,dive,keys,required,endkeys,gt=0"`
	PaymentMethod string         `json:"payment_method" validate:"required"`
	AmountPaid    float64        `json:"amount_paid" validate:"gte=0"`
}

// CreateSale sells a cart sent in the body, bypassing the session cart.
func (c *SalesController) CreateSale(ctx *fiber.Ctx) error {
	var input saleInput
	if err := parseBody(ctx, &input); err != nil {
		return respondError(ctx, err)
	}
	user, _ := middleware.CurrentUser(ctx)

	result, err := c.Processor.Process(ctx.UserContext(), Sales.Request{
		Items:         input.Items,
		PaymentMethod: Models.PaymentMethod(input.PaymentMethod),
		EmployeeID:    user.ID,
		AmountPaid:    input.AmountPaid,
	})
	middleware.RecordSale(input.PaymentMethod, result.Total, err)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(result)
}

// ownSalesOnly is true when the caller may only see the sales they rang up.
func ownSalesOnly(user Models.Employee) bool {
	return !middleware.Can(user.Role, middleware.PermViewSales)
}

func (c *SalesController) GetSales(ctx *fiber.Ctx) error {
	from, to, err := parseRange(ctx)
	if err != nil {
		return respondError(ctx, err)
	}
	filter := Sales.Filter{From: from, To: to, Limit: ctx.QueryInt("limit", 0)}
	if method := ctx.Query("payment_method"); method != "" {
		if filter.PaymentMethod, err = Models.ParsePaymentMethod(method); err != nil {
			return respondError(ctx, err)
		}
	}
	user, _ := middleware.CurrentUser(ctx)
	if ownSalesOnly(user) {
		filter.EmployeeID = user.ID
	} else if employeeID := ctx.QueryInt("employee_id", 0); employeeID > 0 {
		filter.EmployeeID = uint(employeeID)
	}

	sales, err := Sales.List(c.DB, filter)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(sales)
}

func (c *SalesController) load(ctx *fiber.Ctx) (*Models.Transaction, error) {
	id, err := paramID(ctx)
	if err != nil {
		return nil, err
	}
	sale, err := Sales.Get(c.DB, id)
	if err != nil {
		return nil, err
	}
	user, _ := middleware.CurrentUser(ctx)
	if ownSalesOnly(user) && sale.EmployeeID != user.ID {
		return nil, Models.NotFoundf("sale %d", id)
	}
	return sale, nil
}

func (c *SalesController) GetSale(ctx *fiber.Ctx) error {
	sale, err := c.load(ctx)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(sale)
}

// ReverseSale deletes a sale and returns its ingredients to stock.
func (c *SalesController) ReverseSale(ctx *fiber.Ctx) error {
	id, err := paramID(ctx)
	if err != nil {
		return respondError(ctx, err)
	}
	reversal, err := c.Processor.Reverse(ctx.UserContext(), id)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(reversal)
}

// GetReceipt serves ?format=txt (download, default), html (printable) or
// json.
func (c *SalesController) GetReceipt(ctx *fiber.Ctx) error {
	sale, err := c.load(ctx)
	if err != nil {
		return respondError(ctx, err)
	}
	receipt := Reports.NewReceipt(*sale, c.Store)

	switch ctx.Query("format", "txt") {
	case "json":
		return ctx.JSON(receipt)
	case "html":
		return ctx.Render("receipt", fiber.Map{"Receipt": receipt})
	case "txt", "text":
		return sendFile(ctx, []byte(receipt.Text()), "text/plain; charset=utf-8", receipt.FileName())
	}
	return respondError(ctx, Models.Invalidf("unsupported receipt format %q", ctx.Query("format")))
}
