package Attendance

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"CafePOS/Models"
)

// TimeLayout is how check in and check out times are written by hand.
const TimeLayout = "2006-01-02 15:04:05"

func findEmployee(tx *gorm.DB, id uint) (*Models.Employee, error) {
	var employee Models.Employee
	if err := tx.First(&employee, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, Models.NotFoundf("employee %d", id)
		}
		return nil, err
	}
	return &employee, nil
}

func findShift(tx *gorm.DB, id uint) (*Models.Attendance, error) {
	var shift Models.Attendance
	if err := tx.Preload("Employee").First(&shift, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, Models.NotFoundf("attendance %d", id)
		}
		return nil, err
	}
	return &shift, nil
}

func openShift(tx *gorm.DB, employeeID uint) (*Models.Attendance, error) {
	var shift Models.Attendance
	err := tx.Where("employee_id = ? AND check_out IS NULL", employeeID).
		Order("check_in desc").
		First(&shift).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &shift, nil
}

// CheckIn opens a shift. An employee can only have one open shift.
func CheckIn(db *gorm.DB, employeeID uint, at time.Time) (*Models.Attendance, error) {
	var shift *Models.Attendance
	err := db.Transaction(func(tx *gorm.DB) error {
		employee, err := findEmployee(tx, employeeID)
		if err != nil {
			return err
		}
		if !employee.Active {
			return Models.Rulef("employee %s is not active", employee.Name)
		}
		open, err := openShift(tx, employee.ID)
		if err != nil {
			return err
		}
		if open != nil {
			return Models.Rulef("%s is already checked in since %s", employee.Name, open.CheckIn.Format(TimeLayout))
		}

		shift = &Models.Attendance{EmployeeID: employee.ID, CheckIn: at}
		if err := tx.Create(shift).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return Models.Rulef("%s is already checked in", employee.Name)
			}
			return err
		}
		shift.Employee = employee
		return nil
	})
	if err != nil {
		return nil, err
	}
	return shift, nil
}

// CheckOut closes the open shift of an employee.
func CheckOut(db *gorm.DB, employeeID uint, at time.Time) (*Models.Attendance, error) {
	var shift *Models.Attendance
	err := db.Transaction(func(tx *gorm.DB) error {
		employee, err := findEmployee(tx, employeeID)
		if err != nil {
			return err
		}
		open, err := openShift(tx, employee.ID)
		if err != nil {
			return err
		}
		if open == nil {
			return Models.Rulef("%s is not checked in", employee.Name)
		}
		if err := closeShift(tx, open, at); err != nil {
			return err
		}
		open.Employee = employee
		shift = open
		return nil
	})
	if err != nil {
		return nil, err
	}
	return shift, nil
}

// CheckOutByID closes a specific shift.
func CheckOutByID(db *gorm.DB, id uint, at time.Time) (*Models.Attendance, error) {
	var shift *Models.Attendance
	err := db.Transaction(func(tx *gorm.DB) error {
		found, err := findShift(tx, id)
		if err != nil {
			return err
		}
		if found.CheckOut != nil {
			return Models.Rulef("attendance %d is already checked out", id)
		}
		if err := closeShift(tx, found, at); err != nil {
			return err
		}
		shift = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return shift, nil
}

func closeShift(tx *gorm.DB, shift *Models.Attendance, at time.Time) error {
	if at.Before(shift.CheckIn) {
		return Models.Invalidf("check out %s is before check in %s", at.Format(TimeLayout), shift.CheckIn.Format(TimeLayout))
	}
	if err := tx.Model(&Models.Attendance{}).Where("id = ?", shift.ID).Update("check_out", at).Error; err != nil {
		return err
	}
	shift.CheckOut = &at
	return nil
}

// Update rewrites both times of a shift. An empty check out reopens it.
func Update(db *gorm.DB, id uint, checkIn, checkOut string) (*Models.Attendance, error) {
	in, err := time.ParseInLocation(TimeLayout, strings.TrimSpace(checkIn), time.Local)
	if err != nil {
		return nil, Models.Invalidf("check in must look like %s", TimeLayout)
	}
	var out *time.Time
	if strings.TrimSpace(checkOut) != "" {
		t, err := time.ParseInLocation(TimeLayout, strings.TrimSpace(checkOut), time.Local)
		if err != nil {
			return nil, Models.Invalidf("check out must look like %s", TimeLayout)
		}
		if t.Before(in) {
			return nil, Models.Invalidf("check out is before check in")
		}
		out = &t
	}

	var shift *Models.Attendance
	err = db.Transaction(func(tx *gorm.DB) error {
		found, err := findShift(tx, id)
		if err != nil {
			return err
		}
		if out == nil {
			open, err := openShift(tx, found.EmployeeID)
			if err != nil {
				return err
			}
			if open != nil && open.ID != found.ID {
				return Models.Rulef("employee already has an open shift")
			}
		}
		if err := tx.Model(&Models.Attendance{}).Where("id = ?", found.ID).Updates(map[string]interface{}{
			"check_in":  in,
			"check_out": out,
		}).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return Models.Rulef("employee already has an open shift")
			}
			return err
		}
		found.CheckIn = in
		found.CheckOut = out
		shift = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return shift, nil
}

func Delete(db *gorm.DB, id uint) error {
	res := db.Delete(&Models.Attendance{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return Models.NotFoundf("attendance %d", id)
	}
	return nil
}

type Filter struct {
	From       time.Time
	To         time.Time
	EmployeeID uint
}

// List returns shifts that started in [From, To), newest first.
func List(db *gorm.DB, f Filter) ([]Models.Attendance, error) {
	query := db.Preload("Employee").Order("check_in desc")
	if !f.From.IsZero() {
		query = query.Where("check_in >= ?", f.From)
	}
	if !f.To.IsZero() {
		query = query.Where("check_in < ?", f.To)
	}
	if f.EmployeeID != 0 {
		query = query.Where("employee_id = ?", f.EmployeeID)
	}
	var shifts []Models.Attendance
	if err := query.Find(&shifts).Error; err != nil {
		return nil, fmt.Errorf("listing attendance: %w", err)
	}
	return shifts, nil
}

// Open returns everyone currently clocked in.
func Open(db *gorm.DB) ([]Models.Attendance, error) {
	var shifts []Models.Attendance
	err := db.Preload("Employee").
		Where("check_out IS NULL").
		Order("check_in asc").
		Find(&shifts).Error
	return shifts, err
}
