package Attendance_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"CafePOS/Attendance"
	"CafePOS/Models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Models.Open("sqlite", filepath.Join(t.TempDir(), "attendance.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	require.NoError(t, Models.Migrate(db))
	return db
}

func createEmployee(t *testing.T, db *gorm.DB, name string, wage float64, period Models.WagePeriod) Models.Employee {
	t.Helper()
	employee := Models.Employee{Name: name, Role: Models.RoleOperator, WageAmount: wage, WagePeriod: period, Active: true}
	require.NoError(t, db.Create(&employee).Error)
	return employee
}

func at(day, hour int) time.Time {
	return time.Date(2024, 3, day, hour, 0, 0, 0, time.Local)
}

func TestShiftLifecycle(t *testing.T) {
	db := openTestDB(t)
	sari := createEmployee(t, db, "Sari", 15000, Models.WagePerHour)

	_, err := Attendance.CheckOut(db, sari.ID, at(1, 9))
	assert.ErrorIs(t, err, Models.ErrBusinessRule, "cannot check out without checking in")

	shift, err := Attendance.CheckIn(db, sari.ID, at(1, 9))
	require.NoError(t, err)
	assert.Nil(t, shift.CheckOut)

	_, err = Attendance.CheckIn(db, sari.ID, at(1, 10))
	assert.ErrorIs(t, err, Models.ErrBusinessRule, "only one open shift")

	open, err := Attendance.Open(db)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "Sari", open[0].Employee.Name)

	_, err = Attendance.CheckOut(db, sari.ID, at(1, 8))
	assert.ErrorIs(t, err, Models.ErrValidation, "check out before check in")

	closed, err := Attendance.CheckOut(db, sari.ID, at(1, 17))
	require.NoError(t, err)
	require.NotNil(t, closed.CheckOut)
	assert.Equal(t, 8.0, closed.Hours())

	_, err = Attendance.CheckOutByID(db, closed.ID, at(1, 18))
	assert.ErrorIs(t, err, Models.ErrBusinessRule)

	// a new shift can start once the last one is closed
	_, err = Attendance.CheckIn(db, sari.ID, at(2, 9))
	require.NoError(t, err)
}

func TestInactiveEmployeeCannotCheckIn(t *testing.T) {
	db := openTestDB(t)
	budi := createEmployee(t, db, "Budi", 0, Models.WagePerHour)
	require.NoError(t, db.Model(&budi).Update("active", false).Error)

	_, err := Attendance.CheckIn(db, budi.ID, at(1, 9))
	assert.ErrorIs(t, err, Models.ErrBusinessRule)

	_, err = Attendance.CheckIn(db, 999, at(1, 9))
	assert.ErrorIs(t, err, Models.ErrNotFound)
}

func TestUpdateShift(t *testing.T) {
	db := openTestDB(t)
	sari := createEmployee(t, db, "Sari", 15000, Models.WagePerHour)

	first, err := Attendance.CheckIn(db, sari.ID, at(1, 9))
	require.NoError(t, err)
	_, err = Attendance.CheckOut(db, sari.ID, at(1, 17))
	require.NoError(t, err)

	updated, err := Attendance.Update(db, first.ID, "2024-03-01 08:00:00", "2024-03-01 16:30:00")
	require.NoError(t, err)
	assert.Equal(t, 8.5, updated.Hours())

	_, err = Attendance.Update(db, first.ID, "2024-03-01 08:00:00", "2024-03-01 07:00:00")
	assert.ErrorIs(t, err, Models.ErrValidation)
	_, err = Attendance.Update(db, first.ID, "yesterday", "")
	assert.ErrorIs(t, err, Models.ErrValidation)

	_, err = Attendance.CheckIn(db, sari.ID, at(2, 9))
	require.NoError(t, err)
	_, err = Attendance.Update(db, first.ID, "2024-03-01 08:00:00", "")
	assert.ErrorIs(t, err, Models.ErrBusinessRule, "reopening would give two open shifts")

	require.NoError(t, Attendance.Delete(db, first.ID))
	assert.ErrorIs(t, Attendance.Delete(db, first.ID), Models.ErrNotFound)
}

func TestListFilters(t *testing.T) {
	db := openTestDB(t)
	sari := createEmployee(t, db, "Sari", 0, Models.WagePerHour)
	budi := createEmployee(t, db, "Budi", 0, Models.WagePerHour)

	for _, id := range []uint{sari.ID, budi.ID} {
		_, err := Attendance.CheckIn(db, id, at(1, 9))
		require.NoError(t, err)
		_, err = Attendance.CheckOut(db, id, at(1, 12))
		require.NoError(t, err)
	}
	_, err := Attendance.CheckIn(db, sari.ID, at(5, 9))
	require.NoError(t, err)

	all, err := Attendance.List(db, Attendance.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	mine, err := Attendance.List(db, Attendance.Filter{EmployeeID: sari.ID})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	firstDay, err := Attendance.List(db, Attendance.Filter{From: at(1, 0), To: at(2, 0)})
	require.NoError(t, err)
	assert.Len(t, firstDay, 2)
}

func TestPayroll(t *testing.T) {
	db := openTestDB(t)
	hourly := createEmployee(t, db, "Hourly", 15000, Models.WagePerHour)
	daily := createEmployee(t, db, "Daily", 100000, Models.WagePerDay)
	monthly := createEmployee(t, db, "Monthly", 3000000, Models.WagePerMonth)

	shifts := []struct {
		employee uint
		day      int
		in, out  int
	}{
		{hourly.ID, 1, 9, 13},
		{hourly.ID, 2, 9, 12},
		{daily.ID, 1, 8, 12},
		{daily.ID, 1, 14, 18},
		{daily.ID, 3, 8, 16},
		{monthly.ID, 4, 8, 16},
	}
	for _, s := range shifts {
		_, err := Attendance.CheckIn(db, s.employee, at(s.day, s.in))
		require.NoError(t, err)
		_, err = Attendance.CheckOut(db, s.employee, at(s.day, s.out))
		require.NoError(t, err)
	}
	// open shifts are not paid yet
	_, err := Attendance.CheckIn(db, hourly.ID, at(5, 9))
	require.NoError(t, err)

	lines, err := Attendance.Payroll(db, time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, lines, 3)

	assert.Equal(t, "Hourly", lines[0].Employee)
	assert.Equal(t, 2, lines[0].Shifts)
	assert.Equal(t, 7.0, lines[0].Hours)
	assert.Equal(t, 105000.0, lines[0].Due)

	assert.Equal(t, 3, lines[1].Shifts)
	assert.Equal(t, 2, lines[1].Days)
	assert.Equal(t, 200000.0, lines[1].Due)

	assert.Equal(t, 1, lines[2].Months)
	assert.Equal(t, 3000000.0, lines[2].Due)

	firstDay, err := Attendance.Payroll(db, at(1, 0), at(2, 0))
	require.NoError(t, err)
	require.Len(t, firstDay, 2)
	assert.Equal(t, 60000.0, firstDay[0].Due)
}
