package Attendance

import (
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"

	"CafePOS/Models"
)

type PayrollLine struct {
	EmployeeID uint              `json:"employee_id"`
	Employee   string            `json:"employee"`
	WageAmount float64           `json:"wage_amount"`
	WagePeriod Models.WagePeriod `json:"wage_period"`
	Shifts     int               `json:"shifts"`
	Hours      float64           `json:"hours"`
	Days       int               `json:"days"`
	Months     int               `json:"months"`
	Due        float64           `json:"due"`
}

// Payroll works out wages from closed shifts that started in [from, to).
// Hourly wages pay worked hours, daily wages pay distinct worked days and
// monthly wages pay distinct worked months.
func Payroll(db *gorm.DB, from, to time.Time) ([]PayrollLine, error) {
	var shifts []Models.Attendance
	query := db.Preload("Employee").Where("check_out IS NOT NULL")
	if !from.IsZero() {
		query = query.Where("check_in >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("check_in < ?", to)
	}
	if err := query.Order("check_in asc").Find(&shifts).Error; err != nil {
		return nil, err
	}

	type tally struct {
		line   PayrollLine
		hours  decimal.Decimal
		days   map[string]bool
		months map[string]bool
	}
	byEmployee := make(map[uint]*tally)
	var order []uint
	for _, shift := range shifts {
		if shift.Employee == nil {
			continue
		}
		t, ok := byEmployee[shift.EmployeeID]
		if !ok {
			t = &tally{
				line: PayrollLine{
					EmployeeID: shift.EmployeeID,
					Employee:   shift.Employee.Name,
					WageAmount: shift.Employee.WageAmount,
					WagePeriod: shift.Employee.WagePeriod,
				},
				hours:  decimal.Zero,
				days:   make(map[string]bool),
				months: make(map[string]bool),
			}
			byEmployee[shift.EmployeeID] = t
			order = append(order, shift.EmployeeID)
		}
		t.line.Shifts++
		t.hours = t.hours.Add(decimal.NewFromFloat(shift.Hours()))
		t.days[shift.CheckIn.Format("2006-01-02")] = true
		t.months[shift.CheckIn.Format("2006-01")] = true
	}
	slices.Sort(order)

	lines := make([]PayrollLine, 0, len(order))
	for _, id := range order {
		t := byEmployee[id]
		line := t.line
		line.Hours = t.hours.Round(2).InexactFloat64()
		line.Days = len(t.days)
		line.Months = len(t.months)

		wage := decimal.NewFromFloat(line.WageAmount)
		var due decimal.Decimal
		switch line.WagePeriod {
		case Models.WagePerDay:
			due = wage.Mul(decimal.NewFromInt(int64(line.Days)))
		case Models.WagePerMonth:
			due = wage.Mul(decimal.NewFromInt(int64(line.Months)))
		default:
			due = wage.Mul(t.hours)
		}
		line.Due = due.Round(2).InexactFloat64()
		lines = append(lines, line)
	}
	return lines, nil
}
