package Models

import (
	"fmt"
	"log"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type legacyMigration struct {
	name string
	run  func(db *gorm.DB) error
}

// Steps that carry data from the single-file schema of earlier releases.
// Each one is a no-op once its source table or column is gone.
var legacyMigrations = []legacyMigration{
	{name: "employees.hourly_wage", run: migrateHourlyWage},
	{name: "sales", run: migrateLegacySales},
	{name: "operational_costs", run: migrateLegacyExpenses("operational_costs", ExpenseOperational)},
	{name: "other_expenses", run: migrateLegacyExpenses("other_expenses", ExpenseOther)},
}

const legacyDateLayout = "2006-01-02"

// normalizeLegacyAttendance turns the empty-string check_out of the old schema
// into NULL before the column type is migrated.
func normalizeLegacyAttendance(db *gorm.DB) error {
	if db.Dialector.Name() != "sqlite" || !db.Migrator().HasTable("attendance") {
		return nil
	}
	return db.Exec("UPDATE attendance SET check_out = NULL WHERE check_out = ''").Error
}

func migrateHourlyWage(db *gorm.DB) error {
	if !db.Migrator().HasColumn(&Employee{}, "hourly_wage") {
		return nil
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`UPDATE employees SET wage_amount = hourly_wage, wage_period = ?
			WHERE hourly_wage IS NOT NULL`, WagePerHour).Error; err != nil {
			return err
		}
		return tx.Migrator().DropColumn(&Employee{}, "hourly_wage")
	})
}

type legacySale struct {
	ID          uint
	ProductID   uint
	Qty         int
	Date        string
	ProductName *string
	Price       *float64
}

func migrateLegacySales(db *gorm.DB) error {
	if !db.Migrator().HasTable("sales") || !db.Migrator().HasColumn("sales", "product_id") {
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var rows []legacySale
		if err := tx.Table("sales").
			Select("sales.id AS id, sales.product_id AS product_id, sales.qty AS qty, sales.date AS date, products.name AS product_name, products.price AS price").
			Joins("LEFT JOIN products ON products.id = sales.product_id").
			Order("sales.id").
			Scan(&rows).Error; err != nil {
			return err
		}

		for _, row := range rows {
			timestamp, err := time.ParseInLocation(legacyDateLayout, row.Date, time.Local)
			if err != nil {
				log.Printf("Skipping legacy sale %d with unreadable date %q", row.ID, row.Date)
				continue
			}
			name := fmt.Sprintf("product #%d", row.ProductID)
			if row.ProductName != nil {
				name = *row.ProductName
			}
			var price float64
			if row.Price != nil {
				price = *row.Price
			}
			total := price * float64(row.Qty)

			sale := Transaction{
				ReceiptNo:     fmt.Sprintf("LEGACY-%d", row.ID),
				Timestamp:     timestamp,
				TotalAmount:   total,
				PaymentMethod: PaymentCash,
				AmountPaid:    total,
				Items: []TransactionItem{{
					ProductID:   row.ProductID,
					ProductName: name,
					Quantity:    row.Qty,
					Price:       price,
					Subtotal:    total,
				}},
			}
			if err := tx.Create(&sale).Error; err != nil {
				return err
			}
		}

		log.Printf("Migrated %d legacy sales rows", len(rows))
		return tx.Migrator().RenameTable("sales", "legacy_sales")
	})
}

type legacyExpense struct {
	ID          uint
	Description string
	Amount      float64
	Date        string
}

func migrateLegacyExpenses(table, category string) func(db *gorm.DB) error {
	return func(db *gorm.DB) error {
		if !db.Migrator().HasTable(table) {
			return nil
		}

		return db.Transaction(func(tx *gorm.DB) error {
			var rows []legacyExpense
			if err := tx.Table(table).Select("id, description, amount, date").Order("id").Scan(&rows).Error; err != nil {
				return err
			}

			for _, row := range rows {
				date, err := time.ParseInLocation(legacyDateLayout, row.Date, time.Local)
				if err != nil {
					log.Printf("Skipping legacy %s row %d with unreadable date %q", table, row.ID, row.Date)
					continue
				}
				expense := Expense{
					Date:          datatypes.Date(date),
					Category:      category,
					Description:   row.Description,
					Amount:        row.Amount,
					PaymentMethod: PaymentCash,
				}
				if err := tx.Create(&expense).Error; err != nil {
					return err
				}
			}

			log.Printf("Migrated %d rows from %s", len(rows), table)
			return tx.Migrator().RenameTable(table, "legacy_"+table)
		})
	}
}
