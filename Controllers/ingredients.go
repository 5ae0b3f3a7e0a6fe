package Controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"CafePOS/Inventory"
	"CafePOS/Models"
)

type IngredientController struct {
	DB                *gorm.DB
	LowStockThreshold float64
}

func NewIngredientController(db *gorm.DB, lowStockThreshold float64) *IngredientController {
	return &IngredientController{DB: db, LowStockThreshold: lowStockThreshold}
}

type ingredientInput struct {
	Name              string  `json:"name" validate:"required,max=100"`
	Unit              string  `json:"unit" validate:"required,max=20"`
	CostPerUnit       float64 `json:"cost_per_unit" validate:"gte=0"`
	Stock             float64 `json:"stock" validate:"gte=0"`
	PackWeight        float64 `json:"pack_weight" validate:"gte=0"`
	PackPrice         float64 `json:"pack_price" validate:"gte=0"`
	LowStockThreshold float64 `json:"low_stock_threshold" validate:"gte=0"`
}

func (in ingredientInput) apply(ingredient *Models.Ingredient) {
	ingredient.Name = in.Name
	ingredient.Unit = in.Unit
	ingredient.CostPerUnit = in.CostPerUnit
	ingredient.Stock = in.Stock
	ingredient.PackWeight = in.PackWeight
	ingredient.PackPrice = in.PackPrice
	ingredient.LowStockThreshold = in.LowStockThreshold
}

func (c *IngredientController) find(id uint) (*Models.Ingredient, error) {
	var ingredient Models.Ingredient
	if err := c.DB.First(&ingredient, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, Models.NotFoundf("ingredient %d", id)
		}
		return nil, err
	}
	return &ingredient, nil
}

func (c *IngredientController) GetIngredients(ctx *fiber.Ctx) error {
	var ingredients []Models.Ingredient
	if err := c.DB.Order("name asc").Find(&ingredients).Error; err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(ingredients)
}

func (c *IngredientController) GetIngredient(ctx *fiber.Ctx) error {
	id, err := paramID(ctx)
	if err != nil {
		return respondError(ctx, err)
	}
	ingredient, err := c.find(id)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(ingredient)
}

func (c *IngredientController) CreateIngredient(ctx *fiber.Ctx) error {
	var input ingredientInput
	if err := parseBody(ctx, &input); err != nil {
		return respondError(ctx, err)
	}
	var ingredient Models.Ingredient
	input.apply(&ingredient)
	if err := c.DB.Create(&ingredient).Error; err != nil {
		return respondError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(ingredient)
}

func (c *IngredientController) UpdateIngredient(ctx *fiber.Ctx) error {
	id, err := paramID(ctx)
	if err != nil {
		return respondError(ctx, err)
	}
	ingredient, err := c.find(id)
	if err != nil {
		return respondError(ctx, err)
	}
	var input ingredientInput
	if err := parseBody(ctx, &input); err != nil {
		return respondError(ctx, err)
	}
	input.apply(ingredient)
	if err := c.DB.Save(ingredient).Error; err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(ingredient)
}

// DeleteIngredient refuses to remove an ingredient still used by a recipe.
func (c *IngredientController) DeleteIngredient(ctx *fiber.Ctx) error {
	id, err := paramID(ctx)
	if err != nil {
		return respondError(ctx, err)
	}
	ingredient, err := c.find(id)
	if err != nil {
		return respondError(ctx, err)
	}
	var used int64
	if err := c.DB.Model(&Models.Recipe{}).Where("ingredient_id = ?", id).Count(&used).Error; err != nil {
		return respondError(ctx, err)
	}
	if used > 0 {
		return respondError(ctx, Models.Rulef("%s is used by %d recipes", ingredient.Name, used))
	}
	if err := c.DB.Delete(&Models.Ingredient{}, id).Error; err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(fiber.Map{"message": "Ingredient deleted successfully"})
}

type restockInput struct {
	Quantity      float64 `json:"quantity" validate:"gt=0"`
	Cost          float64 `json:"cost" validate:"gte=0"`
	PaymentMethod string  `json:"payment_method"`
	Post          bool    `json:"post"`
}

func (c *IngredientController) Restock(ctx *fiber.Ctx) error {
	id, err := paramID(ctx)
	if err != nil {
		return respondError(ctx, err)
	}
	var input restockInput
	if err := parseBody(ctx, &input); err != nil {
		return respondError(ctx, err)
	}
	method := Models.PaymentCash
	if input.PaymentMethod != "" {
		if method, err = Models.ParsePaymentMethod(input.PaymentMethod); err != nil {
			return respondError(ctx, err)
		}
	}
	ingredient, err := Inventory.Restock(c.DB, Inventory.RestockRequest{
		IngredientID:  id,
		Quantity:      input.Quantity,
		Cost:          input.Cost,
		PaymentMethod: method,
		Post:          input.Post,
	})
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(ingredient)
}

type adjustInput struct {
	Delta  float64 `json:"delta" validate:"required"`
	Reason string  `json:"reason" validate:"max=200"`
}

func (c *IngredientController) Adjust(ctx *fiber.Ctx) error {
	id, err := paramID(ctx)
	if err != nil {
		return respondError(ctx, err)
	}
	var input adjustInput
	if err := parseBody(ctx, &input); err != nil {
		return respondError(ctx, err)
	}
	ingredient, err := Inventory.Adjust(c.DB, id, input.Delta, input.Reason)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(ingredient)
}

func (c *IngredientController) LowStock(ctx *fiber.Ctx) error {
	threshold := ctx.QueryFloat("threshold", c.LowStockThreshold)
	ingredients, err := Inventory.LowStock(c.DB, threshold)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(ingredients)
}

// Import takes an XLSX upload in the "file" form field.
func (c *IngredientController) Import(ctx *fiber.Ctx) error {
	file, err := ctx.FormFile("file")
	if err != nil {
		return respondError(ctx, Models.Invalidf("no file provided, upload an xlsx workbook"))
	}
	src, err := file.Open()
	if err != nil {
		return respondError(ctx, err)
	}
	defer src.Close()

	result, err := Inventory.ImportIngredients(c.DB, src)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(result)
}
