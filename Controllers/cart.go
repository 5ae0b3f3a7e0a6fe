package Controllers

import (
	"github.com/gofiber/fiber/v2"

	"CafePOS/Models"
	"CafePOS/Sales"
	"CafePOS/middleware"
)

// CartController keeps the cashier's cart between requests. Carts belong to
// the login session, not the employee.
type CartController struct {
	Carts     *Sales.CartStore
	Processor *Sales.Processor
}

func NewCartController(carts *Sales.CartStore, processor *Sales.Processor) *CartController {
	return &CartController{Carts: carts, Processor: processor}
}

type cartItemInput struct {
	Product  string `json:"product" validate:"required"`
	Quantity int    `json:"quantity" validate:"gte=0"`
}

type checkoutInput struct {
	PaymentMethod string  `json:"payment_method" validate:"required"`
	AmountPaid    float64 `json:"amount_paid" validate:"gte=0"`
}

func cartResponse(cart map[string]int) fiber.Map {
	count := 0
	for _, qty := range cart {
		count += qty
	}
	return fiber.Map{"items": cart, "count": count}
}

func (c *CartController) GetCart(ctx *fiber.Ctx) error {
	return ctx.JSON(cartResponse(c.Carts.Get(middleware.SessionID(ctx))))
}

func (c *CartController) AddItem(ctx *fiber.Ctx) error {
	var input cartItemInput
	if err := parseBody(ctx, &input); err != nil {
		return respondError(ctx, err)
	}
	if input.Quantity == 0 {
		input.Quantity = 1
	}
	cart, err := c.Carts.Add(middleware.SessionID(ctx), input.Product, input.Quantity)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(cartResponse(cart))
}

func (c *CartController) SetItem(ctx *fiber.Ctx) error {
	var input cartItemInput
	if err := parseBody(ctx, &input); err != nil {
		return respondError(ctx, err)
	}
	cart, err := c.Carts.Set(middleware.SessionID(ctx), input.Product, input.Quantity)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(cartResponse(cart))
}

func (c *CartController) RemoveItem(ctx *fiber.Ctx) error {
	product := ctx.Query("product")
	if product == "" {
		return respondError(ctx, Models.Invalidf("product is required"))
	}
	return ctx.JSON(cartResponse(c.Carts.Remove(middleware.SessionID(ctx), product)))
}

func (c *CartController) ClearCart(ctx *fiber.Ctx) error {
	c.Carts.Clear(middleware.SessionID(ctx))
	return ctx.JSON(cartResponse(nil))
}

// Checkout sells the session cart and empties it when the sale goes through.
func (c *CartController) Checkout(ctx *fiber.Ctx) error {
	var input checkoutInput
	if err := parseBody(ctx, &input); err != nil {
		return respondError(ctx, err)
	}
	user, _ := middleware.CurrentUser(ctx)
	session := middleware.SessionID(ctx)

	result, err := c.Processor.Process(ctx.UserContext(), Sales.Request{
		Items:         c.Carts.Get(session),
		PaymentMethod: Models.PaymentMethod(input.PaymentMethod),
		EmployeeID:    user.ID,
		AmountPaid:    input.AmountPaid,
	})
	middleware.RecordSale(input.PaymentMethod, result.Total, err)
	if err != nil {
		return respondError(ctx, err)
	}
	c.Carts.Clear(session)
	return ctx.Status(fiber.StatusCreated).JSON(result)
}
