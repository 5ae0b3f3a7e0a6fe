package middleware

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"CafePOS/Config"
	"CafePOS/Models"
)

const (
	CookieName = "jwt"
	userKey    = "user"
	sessionKey = "session"
)

// Claims carries the role next to the registered claims. The employee id is
// the issuer, the session id is the token id.
type Claims struct {
	Role Models.Role `json:"role"`
	jwt.RegisteredClaims
}

type Auth struct {
	DB     *gorm.DB
	Secret []byte
	TTL    time.Duration
}

func NewAuth(db *gorm.DB, cfg *Config.Config) *Auth {
	ttl := time.Duration(cfg.Server.JWTExpirationHours) * time.Hour
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Auth{DB: db, Secret: []byte(cfg.Server.JWTSecret), TTL: ttl}
}

// GenerateToken signs a session token for an employee.
func (a *Auth) GenerateToken(employee Models.Employee) (string, *Claims, error) {
	now := time.Now()
	claims := &Claims{
		Role: employee.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    strconv.Itoa(int(employee.ID)),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.TTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.Secret)
	if err != nil {
		return "", nil, err
	}
	return token, claims, nil
}

func (a *Auth) parse(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.Secret, nil
	})
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func tokenFrom(c *fiber.Ctx) string {
	if cookie := c.Cookies(CookieName); cookie != "" {
		return cookie
	}
	header := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}

// Verify authenticates the request and checks the employee's role against
// the capability table. An empty permission only requires a valid login.
func (a *Auth) Verify(permission Permission) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := tokenFrom(c)
		if raw == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Not Logged In.",
			})
		}

		claims, err := a.parse(raw)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
			})
		}

		var user Models.Employee
		if err := a.DB.Where("id = ?", claims.Issuer).First(&user).Error; err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "User not found",
			})
		}
		if !user.Active {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Account is disabled",
			})
		}

		c.Locals(userKey, user)
		c.Locals(sessionKey, claims.ID)

		if permission == "" || Can(user.Role, permission) {
			return c.Next()
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "Insufficient permissions to access this resource",
		})
	}
}

// CurrentUser returns the employee stored by Verify.
func CurrentUser(c *fiber.Ctx) (Models.Employee, bool) {
	user, ok := c.Locals(userKey).(Models.Employee)
	return user, ok
}

func SessionID(c *fiber.Ctx) string {
	session, _ := c.Locals(sessionKey).(string)
	return session
}
