package Controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"CafePOS/Models"
)

type EmployeeController struct {
	DB *gorm.DB
}

func NewEmployeeController(db *gorm.DB) *EmployeeController {
	return &EmployeeController{DB: db}
}

type employeeInput struct {
	Name       string  `json:"name" validate:"required,max=100"`
	WageAmount float64 `json:"wage_amount" validate:"gte=0"`
	WagePeriod string  `json:"wage_period" validate:"omitempty,oneof=hour day month"`
	Role       string  `json:"role" validate:"required"`
	Active     *bool   `json:"active"`
	Phone      string  `json:"phone" validate:"omitempty,max=20"`
	Password   string  `json:"password" validate:"omitempty,min=3"`
}

func (in employeeInput) apply(employee *Models.Employee) error {
	role, err := Models.ParseRole(in.Role)
	if err != nil {
		return err
	}
	employee.Name = in.Name
	employee.WageAmount = in.WageAmount
	switch {
	case in.WagePeriod != "":
		employee.WagePeriod = Models.WagePeriod(in.WagePeriod)
	case employee.WagePeriod == "":
		employee.WagePeriod = Models.WagePerHour
	}
	employee.Role = role
	employee.Phone = in.Phone
	if in.Active != nil {
		employee.Active = *in.Active
	}
	if in.Password != "" {
		return employee.SetPassword(in.Password)
	}
	return nil
}

func (c *EmployeeController) find(id uint) (*Models.Employee, error) {
	var employee Models.Employee
	if err := c.DB.First(&employee, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, Models.NotFoundf("employee %d", id)
		}
		return nil, err
	}
	return &employee, nil
}

func (c *EmployeeController) GetEmployees(ctx *fiber.Ctx) error {
	query := c.DB.Order("name asc")
	if ctx.QueryBool("active_only", false) {
		query = query.Where("active = ?", true)
	}
	var employees []Models.Employee
	if err := query.Find(&employees).Error; err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(employees)
}

func (c *EmployeeController) GetEmployee(ctx *fiber.Ctx) error {
	id, err := paramID(ctx)
	if err != nil {
		return respondError(ctx, err)
	}
	employee, err := c.find(id)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(employee)
}

func (c *EmployeeController) CreateEmployee(ctx *fiber.Ctx) error {
	var input employeeInput
	if err := parseBody(ctx, &input); err != nil {
		return respondError(ctx, err)
	}
	employee := Models.Employee{Active: true}
	if err := input.apply(&employee); err != nil {
		return respondError(ctx, err)
	}
	inactive := !employee.Active
	err := c.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&employee).Error; err != nil {
			return err
		}
		// the column default would turn a false Active back on
		if inactive {
			return tx.Model(&employee).Update("active", false).Error
		}
		return nil
	})
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(employee)
}

func (c *EmployeeController) UpdateEmployee(ctx *fiber.Ctx) error {
	id, err := paramID(ctx)
	if err != nil {
		return respondError(ctx, err)
	}
	employee, err := c.find(id)
	if err != nil {
		return respondError(ctx, err)
	}
	var input employeeInput
	if err := parseBody(ctx, &input); err != nil {
		return respondError(ctx, err)
	}
	if err := input.apply(employee); err != nil {
		return respondError(ctx, err)
	}
	if err := c.DB.Save(employee).Error; err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(employee)
}

// DeleteEmployee removes an employee without sales. Anyone with sales on
// record has to be deactivated instead so receipts keep their cashier.
func (c *EmployeeController) DeleteEmployee(ctx *fiber.Ctx) error {
	id, err := paramID(ctx)
	if err != nil {
		return respondError(ctx, err)
	}
	employee, err := c.find(id)
	if err != nil {
		return respondError(ctx, err)
	}
	var sales int64
	if err := c.DB.Model(&Models.Transaction{}).Where("employee_id = ?", id).Count(&sales).Error; err != nil {
		return respondError(ctx, err)
	}
	if sales > 0 {
		return respondError(ctx, Models.Rulef("%s has %d sales, deactivate the account instead", employee.Name, sales))
	}
	err = c.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("employee_id = ?", id).Delete(&Models.Attendance{}).Error; err != nil {
			return err
		}
		return tx.Delete(&Models.Employee{}, id).Error
	})
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(fiber.Map{"message": "Employee deleted successfully"})
}

type passwordInput struct {
	Password string `json:"password" validate:"required,min=3"`
}

func (c *EmployeeController) SetPassword(ctx *fiber.Ctx) error {
	id, err := paramID(ctx)
	if err != nil {
		return respondError(ctx, err)
	}
	employee, err := c.find(id)
	if err != nil {
		return respondError(ctx, err)
	}
	var input passwordInput
	if err := parseBody(ctx, &input); err != nil {
		return respondError(ctx, err)
	}
	if err := employee.SetPassword(input.Password); err != nil {
		return respondError(ctx, err)
	}
	if err := c.DB.Model(&Models.Employee{}).Where("id = ?", employee.ID).Update("password_hash", employee.PasswordHash).Error; err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(fiber.Map{"message": "Password updated"})
}
