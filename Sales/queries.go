package Sales

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"CafePOS/Models"
)

type Filter struct {
	From          time.Time
	To            time.Time
	EmployeeID    uint
	PaymentMethod Models.PaymentMethod
	Limit         int
}

// List returns sale headers with their lines, newest first.
func List(db *gorm.DB, f Filter) ([]Models.Transaction, error) {
	query := db.Preload("Items").Preload("Employee").Order("timestamp desc, id desc")
	if !f.From.IsZero() {
		query = query.Where("timestamp >= ?", f.From)
	}
	if !f.To.IsZero() {
		query = query.Where("timestamp < ?", f.To)
	}
	if f.EmployeeID != 0 {
		query = query.Where("employee_id = ?", f.EmployeeID)
	}
	if f.PaymentMethod != "" {
		query = query.Where("payment_method = ?", f.PaymentMethod)
	}
	if f.Limit > 0 {
		query = query.Limit(f.Limit)
	}
	var sales []Models.Transaction
	err := query.Find(&sales).Error
	return sales, err
}

// Get loads one sale with lines, consumption snapshots and cashier.
func Get(db *gorm.DB, id uint) (*Models.Transaction, error) {
	var sale Models.Transaction
	err := db.Preload("Items.Consumption").Preload("Employee").First(&sale, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, Models.NotFoundf("sale %d", id)
		}
		return nil, err
	}
	return &sale, nil
}
