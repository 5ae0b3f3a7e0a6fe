package Controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"CafePOS/Attendance"
	"CafePOS/Models"
	"CafePOS/middleware"
)

type AttendanceController struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewAttendanceController(db *gorm.DB) *AttendanceController {
	return &AttendanceController{DB: db, Now: time.Now}
}

type clockInput struct {
	EmployeeID uint `json:"employee_id"`
}

// subject picks whose attendance a request is about. Operators can only
// clock themselves.
func subject(ctx *fiber.Ctx, requested uint) (uint, error) {
	user, _ := middleware.CurrentUser(ctx)
	if requested == 0 || requested == user.ID {
		return user.ID, nil
	}
	if !middleware.Can(user.Role, middleware.PermManageAttendance) {
		return 0, Models.Rulef("you can only record your own attendance")
	}
	return requested, nil
}

func (c *AttendanceController) CheckIn(ctx *fiber.Ctx) error {
	var input clockInput
	if len(ctx.Body()) > 0 {
		if err := parseBody(ctx, &input); err != nil {
			return respondError(ctx, err)
		}
	}
	employeeID, err := subject(ctx, input.EmployeeID)
	if err != nil {
		return respondError(ctx, err)
	}
	shift, err := Attendance.CheckIn(c.DB, employeeID, c.Now())
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(shift)
}

func (c *AttendanceController) CheckOut(ctx *fiber.Ctx) error {
	var input clockInput
	if len(ctx.Body()) > 0 {
		if err := parseBody(ctx, &input); err != nil {
			return respondError(ctx, err)
		}
	}
	employeeID, err := subject(ctx, input.EmployeeID)
	if err != nil {
		return respondError(ctx, err)
	}
	shift, err := Attendance.CheckOut(c.DB, employeeID, c.Now())
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(shift)
}

// CheckOutShift closes a given shift by id, for managers fixing a missed
// check out.
func (c *AttendanceController) CheckOutShift(ctx *fiber.Ctx) error {
	id, err := paramID(ctx)
	if err != nil {
		return respondError(ctx, err)
	}
	shift, err := Attendance.CheckOutByID(c.DB, id, c.Now())
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(shift)
}

func (c *AttendanceController) GetAttendance(ctx *fiber.Ctx) error {
	from, to, err := parseRange(ctx)
	if err != nil {
		return respondError(ctx, err)
	}
	employeeID := uint(ctx.QueryInt("employee_id", 0))
	if user, _ := middleware.CurrentUser(ctx); !middleware.Can(user.Role, middleware.PermManageAttendance) {
		employeeID = user.ID
	}

	shifts, err := Attendance.List(c.DB, Attendance.Filter{From: from, To: to, EmployeeID: employeeID})
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(shifts)
}

func (c *AttendanceController) GetOpen(ctx *fiber.Ctx) error {
	shifts, err := Attendance.Open(c.DB)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(shifts)
}

func (c *AttendanceController) GetPayroll(ctx *fiber.Ctx) error {
	from, to, err := parseRange(ctx)
	if err != nil {
		return respondError(ctx, err)
	}
	lines, err := Attendance.Payroll(c.DB, from, to)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(lines)
}

type attendanceUpdateInput struct {
	CheckIn  string `json:"check_in" validate:"required"`
	CheckOut string `json:"check_out"`
}

func (c *AttendanceController) UpdateAttendance(ctx *fiber.Ctx) error {
	id, err := paramID(ctx)
	if err != nil {
		return respondError(ctx, err)
	}
	var input attendanceUpdateInput
	if err := parseBody(ctx, &input); err != nil {
		return respondError(ctx, err)
	}
	shift, err := Attendance.Update(c.DB, id, input.CheckIn, input.CheckOut)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(shift)
}

func (c *AttendanceController) DeleteAttendance(ctx *fiber.Ctx) error {
	id, err := paramID(ctx)
	if err != nil {
		return respondError(ctx, err)
	}
	if err := Attendance.Delete(c.DB, id); err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(fiber.Map{"message": "Attendance deleted successfully"})
}
