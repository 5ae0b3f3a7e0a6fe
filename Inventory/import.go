package Inventory

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"CafePOS/Models"
)

type ImportResult struct {
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Skipped []string `json:"skipped,omitempty"`
}

// ImportIngredients upserts ingredients by name from the first sheet of an
// XLSX workbook. The first row holds the column names; only "name" is
// required, the other recognised columns are unit, cost_per_unit,
// pack_weight, pack_price, stock and low_stock_threshold.
func ImportIngredients(db *gorm.DB, r io.Reader) (*ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, Models.Invalidf("cannot read workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, Models.Invalidf("cannot read sheet: %v", err)
	}
	if len(rows) < 2 {
		return nil, Models.Invalidf("workbook has no data rows")
	}

	columns := make(map[string]int)
	for i, header := range rows[0] {
		key := strings.ToLower(strings.TrimSpace(header))
		key = strings.ReplaceAll(key, " ", "_")
		columns[key] = i
	}
	if _, ok := columns["name"]; !ok {
		return nil, Models.Invalidf("workbook needs a name column")
	}

	result := &ImportResult{}
	err = db.Transaction(func(tx *gorm.DB) error {
		for n, row := range rows[1:] {
			line := n + 2
			get := func(column string) string {
				i, ok := columns[column]
				if !ok || i >= len(row) {
					return ""
				}
				return strings.TrimSpace(row[i])
			}
			number := func(column string) (float64, bool, error) {
				raw := get(column)
				if raw == "" {
					return 0, false, nil
				}
				v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
				if err != nil {
					return 0, false, Models.Invalidf("row %d: %s %q is not a number", line, column, raw)
				}
				if v < 0 {
					return 0, false, Models.Invalidf("row %d: %s cannot be negative", line, column)
				}
				return v, true, nil
			}

			name := get("name")
			if name == "" {
				result.Skipped = append(result.Skipped, fmt.Sprintf("row %d: empty name", line))
				continue
			}

			var ingredient Models.Ingredient
			err := tx.Where("name = ?", name).First(&ingredient).Error
			exists := err == nil
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			ingredient.Name = name
			if unit := get("unit"); unit != "" {
				ingredient.Unit = unit
			}

			fields := []struct {
				column string
				target *float64
			}{
				{"cost_per_unit", &ingredient.CostPerUnit},
				{"pack_weight", &ingredient.PackWeight},
				{"pack_price", &ingredient.PackPrice},
				{"stock", &ingredient.Stock},
				{"low_stock_threshold", &ingredient.LowStockThreshold},
			}
			for _, field := range fields {
				v, ok, err := number(field.column)
				if err != nil {
					return err
				}
				if ok {
					*field.target = v
				}
			}

			if err := tx.Save(&ingredient).Error; err != nil {
				return fmt.Errorf("row %d: %w", line, err)
			}
			if exists {
				result.Updated++
			} else {
				result.Created++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
