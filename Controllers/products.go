package Controllers

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"CafePOS/Inventory"
	"CafePOS/Models"
)

// maxImageSide is the longest edge a product picture is stored with.
const maxImageSide = 800

type ProductController struct {
	DB        *gorm.DB
	UploadDir string
}

func NewProductController(db *gorm.DB, uploadDir string) *ProductController {
	return &ProductController{DB: db, UploadDir: uploadDir}
}

type productInput struct {
	Name     string  `json:"name" validate:"required,max=100"`
	Price    float64 `json:"price" validate:"gte=0"`
	Category string  `json:"category" validate:"max=50"`
}

func (c *ProductController) find(id uint) (*Models.Product, error) {
	var product Models.Product
	if err := c.DB.Preload("Recipe.Ingredient").First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, Models.NotFoundf("product %d", id)
		}
		return nil, err
	}
	return &product, nil
}

// GetProducts lists the menu, optionally filtered by ?category=.
func (c *ProductController) GetProducts(ctx *fiber.Ctx) error {
	query := c.DB.Order("category asc, name asc")
	if category := ctx.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	var products []Models.Product
	if err := query.Find(&products).Error; err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(products)
}

func (c *ProductController) GetProduct(ctx *fiber.Ctx) error {
	id, err := paramID(ctx)
	if err != nil {
		return respondError(ctx, err)
	}
	product, err := c.find(id)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(product)
}

func (c *ProductController) CreateProduct(ctx *fiber.Ctx) error {
	var input productInput
	if err := parseBody(ctx, &input); err != nil {
		return respondError(ctx, err)
	}
	product := Models.Product{Name: input.Name, Price: input.Price, Category: input.Category}
	if err := c.DB.Create(&product).Error; err != nil {
		return respondError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(product)
}

// UpdateProduct changes name, price and category. Past sales keep the price
// they were sold at.
func (c *ProductController) UpdateProduct(ctx *fiber.Ctx) error {
	id, err := paramID(ctx)
	if err != nil {
		return respondError(ctx, err)
	}
	product, err := c.find(id)
	if err != nil {
		return respondError(ctx, err)
	}
	var input productInput
	if err := parseBody(ctx, &input); err != nil {
		return respondError(ctx, err)
	}
	err = c.DB.Model(&Models.Product{}).Where("id = ?", product.ID).Updates(map[string]interface{}{
		"name":     input.Name,
		"price":    input.Price,
		"category": input.Category,
	}).Error
	if err != nil {
		return respondError(ctx, err)
	}
	product.Name, product.Price, product.Category = input.Name, input.Price, input.Category
	return ctx.JSON(product)
}

func (c *ProductController) DeleteProduct(ctx *fiber.Ctx) error {
	id, err := paramID(ctx)
	if err != nil {
		return respondError(ctx, err)
	}
	product, err := c.find(id)
	if err != nil {
		return respondError(ctx, err)
	}
	err = c.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", product.ID).Delete(&Models.Recipe{}).Error; err != nil {
			return err
		}
		return tx.Delete(&Models.Product{}, product.ID).Error
	})
	if err != nil {
		return respondError(ctx, err)
	}
	if product.ImagePath != "" {
		os.Remove(filepath.Join(c.UploadDir, filepath.Base(product.ImagePath)))
	}
	return ctx.JSON(fiber.Map{"message": "Product deleted successfully"})
}

func (c *ProductController) GetRecipe(ctx *fiber.Ctx) error {
	id, err := paramID(ctx)
	if err != nil {
		return respondError(ctx, err)
	}
	if _, err := c.find(id); err != nil {
		return respondError(ctx, err)
	}
	recipe, err := Inventory.Recipe(c.DB, id)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(recipe)
}

type recipeLineInput struct {
	IngredientID uint    `json:"ingredient_id" validate:"required"`
	QtyPerUnit   float64 `json:"qty_per_unit"`
}

type recipeInput struct {
	Lines []recipeLineInput `json:"lines" validate:"dive"`
}

// SetRecipe replaces the whole recipe. Lines with qty 0 are dropped.
func (c *ProductController) SetRecipe(ctx *fiber.Ctx) error {
	id, err := paramID(ctx)
	if err != nil {
		return respondError(ctx, err)
	}
	var input recipeInput
	if err := parseBody(ctx, &input); err != nil {
		return respondError(ctx, err)
	}
	lines := make(map[uint]float64, len(input.Lines))
	for _, line := range input.Lines {
		lines[line.IngredientID] += line.QtyPerUnit
	}
	recipe, err := Inventory.SetRecipe(c.DB, id, lines)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(recipe)
}

func (c *ProductController) GetHPP(ctx *fiber.Ctx) error {
	id, err := paramID(ctx)
	if err != nil {
		return respondError(ctx, err)
	}
	cost, err := Inventory.ProductCost(c.DB, id)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(cost)
}

// UploadImage stores a resized JPEG of the "image" form field.
func (c *ProductController) UploadImage(ctx *fiber.Ctx) error {
	id, err := paramID(ctx)
	if err != nil {
		return respondError(ctx, err)
	}
	product, err := c.find(id)
	if err != nil {
		return respondError(ctx, err)
	}

	file, err := ctx.FormFile("image")
	if err != nil {
		return respondError(ctx, Models.Invalidf("no image provided"))
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
		return respondError(ctx, Models.Invalidf("image must be a jpg or png"))
	}
	src, err := file.Open()
	if err != nil {
		return respondError(ctx, err)
	}
	defer src.Close()

	img, err := imaging.Decode(src, imaging.AutoOrientation(true))
	if err != nil {
		return respondError(ctx, Models.Invalidf("cannot decode image: %v", err))
	}
	img = imaging.Fit(img, maxImageSide, maxImageSide, imaging.Lanczos)

	if err := os.MkdirAll(c.UploadDir, 0755); err != nil {
		return respondError(ctx, err)
	}
	name := fmt.Sprintf("product_%d_%s.jpg", product.ID, uuid.NewString()[:8])
	if err := imaging.Save(img, filepath.Join(c.UploadDir, name), imaging.JPEGQuality(85)); err != nil {
		return respondError(ctx, err)
	}

	old := product.ImagePath
	product.ImagePath = "/uploads/" + name
	if err := c.DB.Model(&Models.Product{}).Where("id = ?", product.ID).Update("image_path", product.ImagePath).Error; err != nil {
		return respondError(ctx, err)
	}
	if old != "" {
		os.Remove(filepath.Join(c.UploadDir, filepath.Base(old)))
	}
	return ctx.JSON(product)
}
