package Models

import (
	"strings"
	"time"
)

type PaymentMethod string

const (
	PaymentCash PaymentMethod = "Cash"
	PaymentQRIS PaymentMethod = "QRIS"
	PaymentCard PaymentMethod = "Card"
)

// ParsePaymentMethod accepts any casing of Cash, QRIS and Card.
func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "cash":
		return PaymentCash, nil
	case "qris":
		return PaymentQRIS, nil
	case "card", "debit", "credit":
		return PaymentCard, nil
	}
	return "", Invalidf("unknown payment method %q, use Cash, QRIS or Card", raw)
}

// Transaction is a sale header.
type Transaction struct {
	ID            uint              `json:"id" gorm:"primaryKey"`
	ReceiptNo     string            `json:"receipt_no" gorm:"not null;uniqueIndex"`
	Timestamp     time.Time         `json:"timestamp" gorm:"not null;index"`
	TotalAmount   float64           `json:"total_amount" gorm:"not null"`
	PaymentMethod PaymentMethod     `json:"payment_method" gorm:"not null;index"`
	AmountPaid    float64           `json:"amount_paid"`
	Change        float64           `json:"change"`
	EmployeeID    uint              `json:"employee_id" gorm:"index"`
	Employee      *Employee         `json:"employee,omitempty" gorm:"foreignKey:EmployeeID"`
	Items         []TransactionItem `json:"items,omitempty" gorm:"foreignKey:TransactionID"`
	CreatedAt     time.Time         `json:"created_at"`
}

// TransactionItem snapshots the product name and price at the time of sale.
type TransactionItem struct {
	ID            uint                        `json:"id" gorm:"primaryKey"`
	TransactionID uint                        `json:"transaction_id" gorm:"not null;index"`
	ProductID     uint                        `json:"product_id" gorm:"index"`
	ProductName   string                      `json:"product_name"`
	Quantity      int                         `json:"quantity" gorm:"not null"`
	Price         float64                     `json:"price" gorm:"not null"`
	Subtotal      float64                     `json:"subtotal" gorm:"not null"`
	Consumption   []TransactionItemIngredient `json:"consumption,omitempty" gorm:"foreignKey:ItemID"`
}

// TransactionItemIngredient records what a sale line actually took out of
// stock, so a reversal can put back exactly the same amounts.
type TransactionItemIngredient struct {
	ID           uint    `json:"id" gorm:"primaryKey"`
	ItemID       uint    `json:"item_id" gorm:"not null;index"`
	IngredientID uint    `json:"ingredient_id" gorm:"not null;index"`
	QtyPerUnit   float64 `json:"qty_per_unit"`
	Quantity     float64 `json:"quantity"`
	UnitCost     float64 `json:"unit_cost"`
}
