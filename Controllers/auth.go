package Controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"CafePOS/Models"
	"CafePOS/Sales"
	"CafePOS/middleware"
)

type AuthController struct {
	DB    *gorm.DB
	Auth  *middleware.Auth
	Carts *Sales.CartStore
}

func NewAuthController(db *gorm.DB, auth *middleware.Auth, carts *Sales.CartStore) *AuthController {
	return &AuthController{DB: db, Auth: auth, Carts: carts}
}

type loginInput struct {
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (c *AuthController) Login(ctx *fiber.Ctx) error {
	var input loginInput
	if err := parseBody(ctx, &input); err != nil {
		return respondError(ctx, err)
	}

	var employee Models.Employee
	if err := c.DB.Where("name = ?", input.Name).First(&employee).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid name or password"})
		}
		return respondError(ctx, err)
	}
	if !employee.CheckPassword(input.Password) {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid name or password"})
	}
	if !employee.Active {
		return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Account is disabled"})
	}

	token, claims, err := c.Auth.GenerateToken(employee)
	if err != nil {
		return respondError(ctx, err)
	}

	ctx.Cookie(&fiber.Cookie{
		Name:     middleware.CookieName,
		Value:    token,
		Expires:  claims.ExpiresAt.Time,
		HTTPOnly: true,
		SameSite: "Lax",
	})

	return ctx.JSON(fiber.Map{
		"token":       token,
		"user":        employee,
		"permissions": middleware.Permissions(employee.Role),
	})
}

func (c *AuthController) Logout(ctx *fiber.Ctx) error {
	if session := middleware.SessionID(ctx); session != "" {
		c.Carts.Clear(session)
	}
	ctx.Cookie(&fiber.Cookie{
		Name:     middleware.CookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
	})
	return ctx.JSON(fiber.Map{"message": "Logged out"})
}

func (c *AuthController) Me(ctx *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(ctx)
	return ctx.JSON(fiber.Map{
		"user":        user,
		"permissions": middleware.Permissions(user.Role),
	})
}
