package Sales

import (
	"fmt"
	"strings"

	"CafePOS/Models"
)

// Shortage describes one ingredient the cart needs more of than is in stock.
type Shortage struct {
	IngredientID uint     `json:"ingredient_id"`
	Ingredient   string   `json:"ingredient"`
	Unit         string   `json:"unit"`
	Products     []string `json:"products"`
	Required     float64  `json:"required"`
	Available    float64  `json:"available"`
}

type InsufficientStockError struct {
	Shortages []Shortage
}

func (e *InsufficientStockError) Error() string {
	parts := make([]string, 0, len(e.Shortages))
	for _, s := range e.Shortages {
		parts = append(parts, fmt.Sprintf("%s for %s (need %g %s, have %g)",
			s.Ingredient, strings.Join(s.Products, ", "), s.Required, s.Unit, s.Available))
	}
	return "insufficient stock: " + strings.Join(parts, "; ")
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == Models.ErrBusinessRule
}
