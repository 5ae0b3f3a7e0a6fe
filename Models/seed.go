package Models

import (
	_ "embed"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yosuke-furukawa/json5/encoding/json5"
	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

//go:embed seed/catalog.yaml
var defaultCatalog []byte

// Catalog is the demo data loaded into an empty database.
type Catalog struct {
	Ingredients []SeedIngredient `yaml:"ingredients" json:"ingredients"`
	Products    []SeedProduct    `yaml:"products" json:"products"`
	Employees   []SeedEmployee   `yaml:"employees" json:"employees"`
	Expenses    []SeedExpense    `yaml:"expenses" json:"expenses"`
}

type SeedIngredient struct {
	Name        string  `yaml:"name" json:"name"`
	Unit        string  `yaml:"unit" json:"unit"`
	CostPerUnit float64 `yaml:"cost_per_unit" json:"cost_per_unit"`
	Stock       float64 `yaml:"stock" json:"stock"`
	PackWeight  float64 `yaml:"pack_weight" json:"pack_weight"`
	PackPrice   float64 `yaml:"pack_price" json:"pack_price"`
}

type SeedProduct struct {
	Name     string             `yaml:"name" json:"name"`
	Price    float64            `yaml:"price" json:"price"`
	Category string             `yaml:"category" json:"category"`
	Recipe   map[string]float64 `yaml:"recipe" json:"recipe"`
}

type SeedEmployee struct {
	Name       string  `yaml:"name" json:"name"`
	WageAmount float64 `yaml:"wage_amount" json:"wage_amount"`
	WagePeriod string  `yaml:"wage_period" json:"wage_period"`
	Role       string  `yaml:"role" json:"role"`
	Password   string  `yaml:"password" json:"password"`
}

type SeedExpense struct {
	Date        string  `yaml:"date" json:"date"`
	Category    string  `yaml:"category" json:"category"`
	Description string  `yaml:"description" json:"description"`
	Amount      float64 `yaml:"amount" json:"amount"`
}

func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalog, ".yaml")
}

// LoadCatalog reads a catalogue file. YAML and JSON5 are accepted.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseCatalog(data, filepath.Ext(path))
}

func ParseCatalog(data []byte, ext string) (*Catalog, error) {
	var catalog Catalog
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &catalog); err != nil {
			return nil, fmt.Errorf("parsing catalog yaml: %w", err)
		}
	case ".json5", ".json":
		if err := json5.Unmarshal(data, &catalog); err != nil {
			return nil, fmt.Errorf("parsing catalog json5: %w", err)
		}
	default:
		return nil, Invalidf("unsupported catalog format %q", ext)
	}
	return &catalog, nil
}

// Seed loads the catalogue when no product exists yet.
func Seed(db *gorm.DB, catalog *Catalog) error {
	var count int64
	if err := db.Model(&Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	log.Println("Database is empty, loading the demo catalog...")

	return db.Transaction(func(tx *gorm.DB) error {
		ingredientIDs := make(map[string]uint)
		for _, item := range catalog.Ingredients {
			ingredient := Ingredient{
				Name:        item.Name,
				Unit:        item.Unit,
				CostPerUnit: item.CostPerUnit,
				Stock:       item.Stock,
				PackWeight:  item.PackWeight,
				PackPrice:   item.PackPrice,
			}
			if err := tx.Where(Ingredient{Name: item.Name}).FirstOrCreate(&ingredient).Error; err != nil {
				return fmt.Errorf("seeding ingredient %s: %w", item.Name, err)
			}
			ingredientIDs[ingredient.Name] = ingredient.ID
		}

		for _, item := range catalog.Products {
			product := Product{Name: item.Name, Price: item.Price, Category: item.Category}
			for name, qty := range item.Recipe {
				id, ok := ingredientIDs[name]
				if !ok {
					return Invalidf("recipe of %s uses unknown ingredient %s", item.Name, name)
				}
				if qty > 0 {
					product.Recipe = append(product.Recipe, Recipe{IngredientID: id, QtyPerUnit: qty})
				}
			}
			if err := tx.Create(&product).Error; err != nil {
				return fmt.Errorf("seeding product %s: %w", item.Name, err)
			}
		}

		for _, item := range catalog.Employees {
			var existing int64
			tx.Model(&Employee{}).Where("name = ?", item.Name).Count(&existing)
			if existing > 0 {
				continue
			}
			role, err := ParseRole(item.Role)
			if err != nil {
				return err
			}
			employee := Employee{
				Name:       item.Name,
				WageAmount: item.WageAmount,
				WagePeriod: WagePeriod(item.WagePeriod),
				Role:       role,
				Active:     true,
			}
			if item.Password != "" {
				if err := employee.SetPassword(item.Password); err != nil {
					return err
				}
			}
			if err := tx.Create(&employee).Error; err != nil {
				return fmt.Errorf("seeding employee %s: %w", item.Name, err)
			}
		}

		for _, item := range catalog.Expenses {
			date, err := time.ParseInLocation(legacyDateLayout, item.Date, time.Local)
			if err != nil {
				return Invalidf("expense %s has invalid date %q", item.Description, item.Date)
			}
			expense := Expense{
				Date:          datatypes.Date(date),
				Category:      item.Category,
				Description:   item.Description,
				Amount:        item.Amount,
				PaymentMethod: PaymentCash,
			}
			if err := tx.Create(&expense).Error; err != nil {
				return fmt.Errorf("seeding expense %s: %w", item.Description, err)
			}
		}

		return nil
	})
}

// EnsureAdmin creates the first Admin account when none exists.
func EnsureAdmin(db *gorm.DB, name, password string) error {
	var admins int64
	if err := db.Model(&Employee{}).Where("role = ?", RoleAdmin).Count(&admins).Error; err != nil {
		return err
	}
	if admins > 0 {
		return nil
	}

	var admin Employee
	err := db.Where("name = ?", name).First(&admin).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	admin.Name = name
	admin.Role = RoleAdmin
	admin.Active = true
	admin.WagePeriod = WagePerMonth
	if err := admin.SetPassword(password); err != nil {
		return err
	}
	if err := db.Save(&admin).Error; err != nil {
		return fmt.Errorf("creating admin account: %w", err)
	}
	log.Printf("Created admin account %q", name)
	return nil
}
