package Inventory

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"CafePOS/Ledger"
	"CafePOS/Models"
)

type RestockRequest struct {
	IngredientID  uint
	Quantity      float64
	Cost          float64
	PaymentMethod Models.PaymentMethod
	// Post records the purchase in the ledger when Cost is positive.
	Post bool
}

func findIngredient(tx *gorm.DB, id uint) (*Models.Ingredient, error) {
	var ingredient Models.Ingredient
	if err := tx.First(&ingredient, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, Models.NotFoundf("ingredient %d", id)
		}
		return nil, err
	}
	return &ingredient, nil
}

// Restock adds a delivery to stock and optionally books it against cash or
// bank.
func Restock(db *gorm.DB, req RestockRequest) (*Models.Ingredient, error) {
	if req.Quantity <= 0 {
		return nil, Models.Invalidf("restock quantity must be positive")
	}
	if req.Cost < 0 {
		return nil, Models.Invalidf("restock cost cannot be negative")
	}

	var updated *Models.Ingredient
	err := db.Transaction(func(tx *gorm.DB) error {
		ingredient, err := findIngredient(tx, req.IngredientID)
		if err != nil {
			return err
		}
		if _, _, err := Models.MoveStock(tx, ingredient.ID, decimal.NewFromFloat(req.Quantity)); err != nil {
			return fmt.Errorf("restocking %s: %w", ingredient.Name, err)
		}

		if req.Post && req.Cost > 0 {
			draft := Ledger.NewDraft(time.Now(),
				fmt.Sprintf("Restock %g %s %s", req.Quantity, ingredient.Unit, ingredient.Name),
				fmt.Sprintf("restock:%d", ingredient.ID))
			draft.Debit(Models.AccountCodeInventory, req.Cost).
				Credit(Ledger.CashAccountFor(req.PaymentMethod), req.Cost)
			if _, err := Ledger.Post(tx, draft); err != nil {
				return err
			}
		}

		updated, err = findIngredient(tx, ingredient.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	log.Printf("Restocked %s by %g, stock now %g", updated.Name, req.Quantity, updated.Stock)
	return updated, nil
}

// Adjust applies a signed correction to stock. Stock never goes below zero.
func Adjust(db *gorm.DB, ingredientID uint, delta float64, reason string) (*Models.Ingredient, error) {
	if decimal.NewFromFloat(delta).Round(Models.StockPlaces).IsZero() {
		return nil, Models.Invalidf("adjustment cannot be zero")
	}

	var updated *Models.Ingredient
	err := db.Transaction(func(tx *gorm.DB) error {
		ingredient, err := findIngredient(tx, ingredientID)
		if err != nil {
			return err
		}

		current, ok, err := Models.MoveStock(tx, ingredient.ID, decimal.NewFromFloat(delta))
		if err != nil {
			return err
		}
		if !ok {
			return Models.Rulef("adjusting %s by %g would take stock below zero (have %s)",
				ingredient.Name, delta, current)
		}

		updated, err = findIngredient(tx, ingredient.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	log.Printf("Adjusted %s by %g (%s), stock now %g", updated.Name, delta, reason, updated.Stock)
	return updated, nil
}

// LowStock returns ingredients under their own threshold, or under the given
// default when they have none, lowest stock first.
func LowStock(db *gorm.DB, threshold float64) ([]Models.Ingredient, error) {
	var ingredients []Models.Ingredient
	err := db.Where("stock < CASE WHEN low_stock_threshold > 0 THEN low_stock_threshold ELSE ? END", threshold).
		Order("stock asc, name asc").
		Find(&ingredients).Error
	return ingredients, err
}

// StockValue is stock * cost_per_unit, rounded to cents.
func StockValue(ingredient Models.Ingredient) float64 {
	return decimal.NewFromFloat(ingredient.Stock).
		Mul(decimal.NewFromFloat(ingredient.CostPerUnit)).
		Round(2).InexactFloat64()
}
