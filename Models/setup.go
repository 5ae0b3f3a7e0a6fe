package Models

import (
	"fmt"
	"log"
	"strings"

	"CafePOS/Config"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Open connects to the configured database. sqlite is the default engine, the
// other drivers are there for deployments that already run a server.
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(driver) {
	case "", "sqlite", "sqlite3":
		if dsn == "" {
			dsn = "cafe.db"
		}
		if !strings.Contains(dsn, "?") {
			dsn += "?_busy_timeout=5000"
		}
		dialector = sqlite.Open(dsn)
	case "mysql":
		cfg, err := mysqlDriver.ParseDSN(dsn)
		if err != nil {
			return nil, fmt.Errorf("invalid mysql dsn: %w", err)
		}
		cfg.ParseTime = true
		dialector = mysql.Open(cfg.FormatDSN())
	case "postgres", "postgresql":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	return gorm.Open(dialector, &gorm.Config{
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   logger.Default.LogMode(logger.Warn),
	})
}

// Connect opens the database, runs migrations and seeds the admin account and
// demo catalogue. The handle is also kept in DB for the middleware.
func Connect(cfg *Config.Config) (*gorm.DB, error) {
	connection, err := Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	DB = connection

	if err := Migrate(connection); err != nil {
		return nil, err
	}

	if err := EnsureAdmin(connection, cfg.Defaults.AdminName, cfg.Defaults.AdminPassword); err != nil {
		return nil, err
	}

	if cfg.Defaults.SeedDemoData {
		catalog, err := DefaultCatalog()
		if err != nil {
			return nil, err
		}
		if err := Seed(connection, catalog); err != nil {
			return nil, err
		}
	}

	return connection, nil
}

// Migrate brings the schema up to date. Every step checks the current state
// first, so running it again on a migrated database changes nothing.
func Migrate(db *gorm.DB) error {
	if err := normalizeLegacyAttendance(db); err != nil {
		return err
	}

	// 1. Catalogue and people, no dependencies
	if err := db.AutoMigrate(
		&Ingredient{},
		&Product{},
		&Employee{},
		&Account{},
	); err != nil {
		return fmt.Errorf("migrating base tables: %w", err)
	}

	// 2. Tables that reference the ones above
	if err := db.AutoMigrate(
		&Recipe{},
		&Attendance{},
		&Expense{},
	); err != nil {
		return fmt.Errorf("migrating dependent tables: %w", err)
	}

	// 3. Sales and the ledger
	if err := db.AutoMigrate(
		&Transaction{},
		&TransactionItem{},
		&TransactionItemIngredient{},
		&JournalEntry{},
		&JournalItem{},
	); err != nil {
		return fmt.Errorf("migrating sales and ledger tables: %w", err)
	}

	for _, step := range legacyMigrations {
		if err := step.run(db); err != nil {
			return fmt.Errorf("legacy migration %q: %w", step.name, err)
		}
	}

	if err := ensureOpenShiftIndex(db); err != nil {
		log.Printf("Warning: open shift index not created, relying on application checks: %v", err)
	}

	return SeedAccounts(db)
}

// SeedAccounts inserts any missing account of the default chart.
func SeedAccounts(db *gorm.DB) error {
	for _, account := range DefaultAccounts() {
		acc := account
		if err := db.Where(Account{Code: acc.Code}).FirstOrCreate(&acc).Error; err != nil {
			return fmt.Errorf("seeding account %s: %w", acc.Code, err)
		}
	}
	return nil
}

func ensureOpenShiftIndex(db *gorm.DB) error {
	switch db.Dialector.Name() {
	case "sqlite", "postgres":
		return db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_attendance_open_shift
			ON attendance (employee_id) WHERE check_out IS NULL`).Error
	}
	return nil
}
