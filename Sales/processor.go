package Sales

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"

	"CafePOS/Ledger"
	"CafePOS/Models"
)

// Request is a checkout: product name to quantity, how it is paid and who
// rings it up.
type Request struct {
	Items         map[string]int
	PaymentMethod Models.PaymentMethod
	EmployeeID    uint
	AmountPaid    float64
}

type Result struct {
	Success       bool    `json:"success"`
	Message       string  `json:"message"`
	TransactionID uint    `json:"transaction_id,omitempty"`
	ReceiptNo     string  `json:"receipt_no,omitempty"`
	Total         float64 `json:"total"`
	AmountPaid    float64 `json:"amount_paid"`
	Change        float64 `json:"change"`
	COGS          float64 `json:"cogs"`
}

type Reversal struct {
	TransactionID uint               `json:"transaction_id"`
	ReceiptNo     string             `json:"receipt_no"`
	Restored      map[string]float64 `json:"restored"`
}

type Processor struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewProcessor(db *gorm.DB) *Processor {
	return &Processor{DB: db, Now: time.Now}
}

// requirement is the total amount of one ingredient a cart consumes.
type requirement struct {
	ingredient Models.Ingredient
	amount     decimal.Decimal
	products   []string
}

func (r requirement) shortage(available float64) Shortage {
	return Shortage{
		IngredientID: r.ingredient.ID,
		Ingredient:   r.ingredient.Name,
		Unit:         r.ingredient.Unit,
		Products:     r.products,
		Required:     r.amount.InexactFloat64(),
		Available:    available,
	}
}

// Process records a sale, deducts recipe stock and posts the journal entry in
// one database transaction. Nothing is written when it returns an error.
func (p *Processor) Process(ctx context.Context, req Request) (*Result, error) {
	result, err := p.process(ctx, req)
	if err != nil {
		return &Result{Success: false, Message: err.Error()}, err
	}
	return result, nil
}

func (p *Processor) process(ctx context.Context, req Request) (*Result, error) {
	if len(req.Items) == 0 {
		return nil, Models.Invalidf("cart is empty")
	}
	names := make([]string, 0, len(req.Items))
	for name, qty := range req.Items {
		if strings.TrimSpace(name) == "" {
			return nil, Models.Invalidf("product name is required")
		}
		if qty <= 0 {
			return nil, Models.Invalidf("quantity for %s must be positive", name)
		}
		names = append(names, name)
	}
	slices.Sort(names)

	method, err := Models.ParsePaymentMethod(string(req.PaymentMethod))
	if err != nil {
		return nil, err
	}

	var result *Result
	err = p.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var employee Models.Employee
		if err := tx.First(&employee, req.EmployeeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return Models.NotFoundf("employee %d", req.EmployeeID)
			}
			return err
		}
		if !employee.Active {
			return Models.Rulef("employee %s is not active", employee.Name)
		}

		var products []Models.Product
		if err := tx.Preload("Recipe.Ingredient").Where("name IN ?", names).Find(&products).Error; err != nil {
			return err
		}
		byName := make(map[string]Models.Product, len(products))
		for _, product := range products {
			byName[product.Name] = product
		}
		for _, name := range names {
			if _, ok := byName[name]; !ok {
				return Models.Invalidf("unknown product %q", name)
			}
		}

		needs := requirements(names, req.Items, byName)
		var shortages []Shortage
		for _, need := range needs {
			if need.ingredient.StockAmount().LessThan(need.amount) {
				shortages = append(shortages, need.shortage(need.ingredient.Stock))
			}
		}
		if len(shortages) > 0 {
			return &InsufficientStockError{Shortages: shortages}
		}

		total := decimal.Zero
		items := make([]Models.TransactionItem, 0, len(names))
		for _, name := range names {
			product := byName[name]
			qty := req.Items[name]
			subtotal := decimal.NewFromFloat(product.Price).Mul(decimal.NewFromInt(int64(qty))).Round(2)
			total = total.Add(subtotal)

			item := Models.TransactionItem{
				ProductID:   product.ID,
				ProductName: product.Name,
				Quantity:    qty,
				Price:       product.Price,
				Subtotal:    subtotal.InexactFloat64(),
			}
			for _, line := range product.Recipe {
				if line.Ingredient == nil || line.QtyPerUnit <= 0 {
					continue
				}
				item.Consumption = append(item.Consumption, Models.TransactionItemIngredient{
					IngredientID: line.IngredientID,
					QtyPerUnit:   line.QtyPerUnit,
					Quantity:     Models.Consumption(line.QtyPerUnit, qty).InexactFloat64(),
					UnitCost:     line.Ingredient.CostPerUnit,
				})
			}
			items = append(items, item)
		}

		paid, change, err := settle(method, total, req.AmountPaid)
		if err != nil {
			return err
		}

		now := p.Now()
		sale := Models.Transaction{
			ReceiptNo:     newReceiptNo(now),
			Timestamp:     now,
			TotalAmount:   total.InexactFloat64(),
			PaymentMethod: method,
			AmountPaid:    paid.InexactFloat64(),
			Change:        change.InexactFloat64(),
			EmployeeID:    employee.ID,
			Items:         items,
		}
		if err := tx.Create(&sale).Error; err != nil {
			return fmt.Errorf("storing sale: %w", err)
		}

		cogs := decimal.Zero
		for _, need := range needs {
			current, ok, err := Models.MoveStock(tx, need.ingredient.ID, need.amount.Neg())
			if err != nil {
				return fmt.Errorf("deducting %s: %w", need.ingredient.Name, err)
			}
			if !ok {
				// stock moved between the check and the update
				return &InsufficientStockError{Shortages: []Shortage{need.shortage(current.InexactFloat64())}}
			}
			cost := need.amount.Mul(decimal.NewFromFloat(need.ingredient.CostPerUnit))
			cogs = cogs.Add(cost)
		}
		cogs = cogs.Round(2)

		saleID := sale.ID
		draft := Ledger.NewDraft(now, "Sale "+sale.ReceiptNo, fmt.Sprintf("sale:%d", sale.ID))
		draft.TransactionID = &saleID
		if total.IsPositive() {
			draft.Debit(Ledger.CashAccountFor(method), total.InexactFloat64()).
				Credit(Models.AccountCodeSales, total.InexactFloat64())
		}
		if cogs.IsPositive() {
			draft.Debit(Models.AccountCodeCOGS, cogs.InexactFloat64()).
				Credit(Models.AccountCodeInventory, cogs.InexactFloat64())
		}
		if len(draft.Lines) > 0 {
			if _, err := Ledger.Post(tx, draft); err != nil {
				return err
			}
		}

		result = &Result{
			Success:       true,
			Message:       fmt.Sprintf("Sale %s recorded", sale.ReceiptNo),
			TransactionID: sale.ID,
			ReceiptNo:     sale.ReceiptNo,
			Total:         sale.TotalAmount,
			AmountPaid:    sale.AmountPaid,
			Change:        sale.Change,
			COGS:          cogs.InexactFloat64(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// requirements aggregates recipe consumption per ingredient, ordered by
// ingredient id.
func requirements(names []string, quantities map[string]int, products map[string]Models.Product) []requirement {
	byIngredient := make(map[uint]*requirement)
	var order []uint
	for _, name := range names {
		product := products[name]
		qty := quantities[name]
		for _, line := range product.Recipe {
			if line.Ingredient == nil || line.QtyPerUnit <= 0 {
				continue
			}
			need, ok := byIngredient[line.IngredientID]
			if !ok {
				need = &requirement{ingredient: *line.Ingredient, amount: decimal.Zero}
				byIngredient[line.IngredientID] = need
				order = append(order, line.IngredientID)
			}
			need.amount = need.amount.Add(Models.Consumption(line.QtyPerUnit, qty))
			need.products = append(need.products, product.Name)
		}
	}
	slices.Sort(order)

	out := make([]requirement, 0, len(order))
	for _, id := range order {
		out = append(out, *byIngredient[id])
	}
	return out
}

// settle works out what was paid and the change. Only cash gives change; an
// amount of zero means the exact total was handed over.
func settle(method Models.PaymentMethod, total decimal.Decimal, amountPaid float64) (decimal.Decimal, decimal.Decimal, error) {
	if method != Models.PaymentCash || amountPaid == 0 {
		return total, decimal.Zero, nil
	}
	paid := decimal.NewFromFloat(amountPaid).Round(2)
	if paid.LessThan(total) {
		return decimal.Zero, decimal.Zero, Models.Invalidf("amount paid %s is less than the total %s",
			paid.StringFixed(2), total.StringFixed(2))
	}
	return paid, paid.Sub(total), nil
}

func newReceiptNo(at time.Time) string {
	return fmt.Sprintf("INV-%s-%s", at.Format("20060102"), strings.ToUpper(uuid.NewString()[:8]))
}

// Reverse deletes a sale and puts its ingredient consumption back into
// stock. Lines carrying a recipe snapshot are restored from it; older lines
// fall back to the product's current recipe.
func (p *Processor) Reverse(ctx context.Context, id uint) (*Reversal, error) {
	var reversal *Reversal
	err := p.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sale Models.Transaction
		if err := tx.Preload("Items.Consumption").First(&sale, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return Models.NotFoundf("sale %d", id)
			}
			return err
		}

		restore := make(map[uint]decimal.Decimal)
		for _, item := range sale.Items {
			if len(item.Consumption) > 0 {
				for _, used := range item.Consumption {
					restore[used.IngredientID] = restore[used.IngredientID].Add(decimal.NewFromFloat(used.Quantity))
				}
				continue
			}
			var recipe []Models.Recipe
			if err := tx.Where("product_id = ?", item.ProductID).Find(&recipe).Error; err != nil {
				return err
			}
			for _, line := range recipe {
				restore[line.IngredientID] = restore[line.IngredientID].Add(Models.Consumption(line.QtyPerUnit, item.Quantity))
			}
		}

		ids := make([]uint, 0, len(restore))
		for ingredientID := range restore {
			ids = append(ids, ingredientID)
		}
		slices.Sort(ids)

		var ingredients []Models.Ingredient
		if len(ids) > 0 {
			if err := tx.Where("id IN ?", ids).Find(&ingredients).Error; err != nil {
				return err
			}
		}
		names := make(map[uint]string, len(ingredients))
		for _, ingredient := range ingredients {
			names[ingredient.ID] = ingredient.Name
		}

		reversal = &Reversal{TransactionID: sale.ID, ReceiptNo: sale.ReceiptNo, Restored: make(map[string]float64)}
		for _, ingredientID := range ids {
			name, ok := names[ingredientID]
			if !ok {
				log.Printf("Ingredient %d no longer exists, %s not restored for sale %s",
					ingredientID, restore[ingredientID], sale.ReceiptNo)
				continue
			}
			if _, _, err := Models.MoveStock(tx, ingredientID, restore[ingredientID]); err != nil {
				return fmt.Errorf("restoring %s: %w", name, err)
			}
			reversal.Restored[name] = restore[ingredientID].Round(Models.StockPlaces).InexactFloat64()
		}

		if err := Ledger.DeleteForTransaction(tx, sale.ID); err != nil {
			return err
		}
		itemIDs := tx.Model(&Models.TransactionItem{}).Select("id").Where("transaction_id = ?", sale.ID)
		if err := tx.Where("item_id IN (?)", itemIDs).Delete(&Models.TransactionItemIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("transaction_id = ?", sale.ID).Delete(&Models.TransactionItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&Models.Transaction{}, sale.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return reversal, nil
}
