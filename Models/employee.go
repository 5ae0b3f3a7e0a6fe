package Models

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type Role string

const (
	RoleAdmin    Role = "Admin"
	RoleManager  Role = "Manager"
	RoleOperator Role = "Operator"
)

func ParseRole(raw string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "admin":
		return RoleAdmin, nil
	case "manager":
		return RoleManager, nil
	case "operator", "kasir", "cashier":
		return RoleOperator, nil
	}
	return "", Invalidf("unknown role %q, use Admin, Manager or Operator", raw)
}

type WagePeriod string

const (
	WagePerHour  WagePeriod = "hour"
	WagePerDay   WagePeriod = "day"
	WagePerMonth WagePeriod = "month"
)

type Employee struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	Name         string     `json:"name" gorm:"not null;uniqueIndex"`
	WageAmount   float64    `json:"wage_amount" gorm:"default:0"`
	WagePeriod   WagePeriod `json:"wage_period" gorm:"default:'hour'"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role" gorm:"default:'Operator'"`
	Active       bool       `json:"active" gorm:"not null;default:true"`
	Phone        string     `json:"phone"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Attendance is one shift. A nil CheckOut means the employee is still clocked in.
type Attendance struct {
	ID         uint       `json:"id" gorm:"primaryKey"`
	EmployeeID uint       `json:"employee_id" gorm:"not null;index"`
	Employee   *Employee  `json:"employee,omitempty" gorm:"foreignKey:EmployeeID"`
	CheckIn    time.Time  `json:"check_in" gorm:"not null;index"`
	CheckOut   *time.Time `json:"check_out"`
}

func (Attendance) TableName() string {
	return "attendance"
}

// Hours returns the length of a closed shift, zero while it is open.
func (a Attendance) Hours() float64 {
	if a.CheckOut == nil {
		return 0
	}
	return a.CheckOut.Sub(a.CheckIn).Hours()
}

// SetPassword stores a bcrypt hash of the given password.
func (e *Employee) SetPassword(password string) error {
	if len(password) < 3 {
		return Invalidf("password must be at least 3 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	e.PasswordHash = string(hash)
	return nil
}

func (e Employee) CheckPassword(password string) bool {
	if e.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(e.PasswordHash), []byte(password)) == nil
}
