package Inventory

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"CafePOS/Models"
)

// CostLine is the HPP (cost of goods per unit) breakdown of one product.
type CostLine struct {
	ProductID uint    `json:"product_id"`
	Product   string  `json:"product"`
	Category  string  `json:"category"`
	Price     float64 `json:"price"`
	HPP       float64 `json:"hpp"`
	Profit    float64 `json:"profit"`
	Margin    float64 `json:"margin"`
}

func newCostLine(id uint, name, category string, price, hpp float64) CostLine {
	cost := decimal.NewFromFloat(hpp).Round(2)
	profit := decimal.NewFromFloat(price).Sub(cost)
	line := CostLine{
		ProductID: id,
		Product:   name,
		Category:  category,
		Price:     price,
		HPP:       cost.InexactFloat64(),
		Profit:    profit.InexactFloat64(),
	}
	if price > 0 {
		line.Margin = profit.Div(decimal.NewFromFloat(price)).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
	}
	return line
}

// HPP sums qty_per_unit * cost_per_unit over the product's recipe. A product
// without recipe lines costs 0.
func HPP(db *gorm.DB, productID uint) (float64, error) {
	var hpp float64
	err := db.Raw(`
		SELECT COALESCE(SUM(r.qty_per_unit * i.cost_per_unit), 0)
		FROM recipes r
		JOIN ingredients i ON i.id = r.ingredient_id
		WHERE r.product_id = ?`, productID).Scan(&hpp).Error
	if err != nil {
		return 0, err
	}
	return decimal.NewFromFloat(hpp).Round(2).InexactFloat64(), nil
}

func ProductCost(db *gorm.DB, productID uint) (*CostLine, error) {
	var product Models.Product
	if err := db.First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, Models.NotFoundf("product %d", productID)
		}
		return nil, err
	}
	hpp, err := HPP(db, product.ID)
	if err != nil {
		return nil, err
	}
	line := newCostLine(product.ID, product.Name, product.Category, product.Price, hpp)
	return &line, nil
}

// CostSheet lists every product with its HPP, profit and margin.
func CostSheet(db *gorm.DB) ([]CostLine, error) {
	type row struct {
		ID       uint
		Name     string
		Category string
		Price    float64
		HPP      float64
	}
	var rows []row
	err := db.Raw(`
		SELECT p.id AS id, p.name AS name, p.category AS category, p.price AS price,
			COALESCE(SUM(r.qty_per_unit * i.cost_per_unit), 0) AS hpp
		FROM products p
		LEFT JOIN recipes r ON r.product_id = p.id
		LEFT JOIN ingredients i ON i.id = r.ingredient_id
		GROUP BY p.id, p.name, p.category, p.price
		ORDER BY p.category, p.name`).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	lines := make([]CostLine, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, newCostLine(r.ID, r.Name, r.Category, r.Price, r.HPP))
	}
	return lines, nil
}

// SetRecipe replaces the recipe of a product. Lines with a zero quantity are
// dropped, negative quantities are rejected.
func SetRecipe(db *gorm.DB, productID uint, lines map[uint]float64) ([]Models.Recipe, error) {
	for ingredientID, qty := range lines {
		if qty < 0 {
			return nil, Models.Invalidf("quantity for ingredient %d cannot be negative", ingredientID)
		}
	}

	var recipe []Models.Recipe
	err := db.Transaction(func(tx *gorm.DB) error {
		var product Models.Product
		if err := tx.First(&product, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return Models.NotFoundf("product %d", productID)
			}
			return err
		}

		ids := make([]uint, 0, len(lines))
		for ingredientID, qty := range lines {
			if qty > 0 {
				ids = append(ids, ingredientID)
			}
		}
		if len(ids) > 0 {
			var found int64
			if err := tx.Model(&Models.Ingredient{}).Where("id IN ?", ids).Count(&found).Error; err != nil {
				return err
			}
			if int(found) != len(ids) {
				return Models.Invalidf("recipe references an unknown ingredient")
			}
		}

		if err := tx.Where("product_id = ?", product.ID).Delete(&Models.Recipe{}).Error; err != nil {
			return fmt.Errorf("clearing recipe: %w", err)
		}
		for _, ingredientID := range ids {
			recipe = append(recipe, Models.Recipe{
				ProductID:    product.ID,
				IngredientID: ingredientID,
				QtyPerUnit:   lines[ingredientID],
			})
		}
		if len(recipe) == 0 {
			return nil
		}
		return tx.Create(&recipe).Error
	})
	if err != nil {
		return nil, err
	}
	return Recipe(db, productID)
}

// Recipe returns the recipe lines of a product with their ingredients.
func Recipe(db *gorm.DB, productID uint) ([]Models.Recipe, error) {
	var recipe []Models.Recipe
	err := db.Preload("Ingredient").
		Where("product_id = ?", productID).
		Order("ingredient_id").
		Find(&recipe).Error
	return recipe, err
}
