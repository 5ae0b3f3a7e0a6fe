package Models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StockPlaces is the number of decimal places stock quantities are kept to.
const StockPlaces = 6

type Ingredient struct {
	ID                uint      `json:"id" gorm:"primaryKey"`
	Name              string    `json:"name" gorm:"not null;uniqueIndex"`
	Unit              string    `json:"unit"`
	CostPerUnit       float64   `json:"cost_per_unit"`
	Stock             float64   `json:"stock" gorm:"not null;default:0"`
	PackWeight        float64   `json:"pack_weight" gorm:"default:0"`
	PackPrice         float64   `json:"pack_price" gorm:"default:0"`
	LowStockThreshold float64   `json:"low_stock_threshold" gorm:"default:0"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// BeforeSave keeps cost_per_unit derived from the pack price and weight.
func (i *Ingredient) BeforeSave(tx *gorm.DB) error {
	if i.PackWeight > 0 {
		i.CostPerUnit = UnitCost(i.PackPrice, i.PackWeight)
	}
	return nil
}

// StockAmount is the ingredient's stock at StockPlaces.
func (i Ingredient) StockAmount() decimal.Decimal {
	return decimal.NewFromFloat(i.Stock).Round(StockPlaces)
}

// Consumption is how much of an ingredient units of a product use up.
func Consumption(qtyPerUnit float64, units int) decimal.Decimal {
	return decimal.NewFromFloat(qtyPerUnit).Mul(decimal.NewFromInt(int64(units))).Round(StockPlaces)
}

// MoveStock adds delta to an ingredient's stock, negative to deduct, and
// stores the result rounded to StockPlaces. The update only applies while the
// stock still holds the value it was computed from. A deduction larger than
// the stock on hand changes nothing and reports false with the current stock.
func MoveStock(tx *gorm.DB, id uint, delta decimal.Decimal) (decimal.Decimal, bool, error) {
	delta = delta.Round(StockPlaces)
	for attempt := 0; attempt < 3; attempt++ {
		var current Ingredient
		if err := tx.Select("id", "stock").First(&current, id).Error; err != nil {
			return decimal.Zero, false, err
		}
		stock := current.StockAmount()
		if delta.IsZero() {
			return stock, true, nil
		}
		next := stock.Add(delta)
		if next.IsNegative() {
			return stock, false, nil
		}
		res := tx.Model(&Ingredient{}).
			Where("id = ? AND stock = ?", id, current.Stock).
			UpdateColumn("stock", next.InexactFloat64())
		if res.Error != nil {
			return decimal.Zero, false, res.Error
		}
		if res.RowsAffected == 1 {
			return next, true, nil
		}
	}
	return decimal.Zero, false, fmt.Errorf("stock of ingredient %d changed during update", id)
}

func UnitCost(packPrice, packWeight float64) float64 {
	if packWeight <= 0 {
		return 0
	}
	return packPrice / packWeight
}

type Product struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null;uniqueIndex"`
	Price     float64   `json:"price" gorm:"not null"`
	Category  string    `json:"category"`
	ImagePath string    `json:"image_path"`
	Recipe    []Recipe  `json:"recipe,omitempty" gorm:"foreignKey:ProductID"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Recipe is one ingredient line of a product: how much of the ingredient one
// unit of the product consumes.
type Recipe struct {
	ProductID    uint        `json:"product_id" gorm:"primaryKey;autoIncrement:false"`
	IngredientID uint        `json:"ingredient_id" gorm:"primaryKey;autoIncrement:false"`
	QtyPerUnit   float64     `json:"qty_per_unit" gorm:"not null"`
	Ingredient   *Ingredient `json:"ingredient,omitempty" gorm:"foreignKey:IngredientID"`
}
