package FiberConfig_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"CafePOS/Config"
	"CafePOS/FiberConfig"
	"CafePOS/Models"
)

type server struct {
	app *fiber.App
	db  *gorm.DB
}

func newServer(t *testing.T) *server {
	t.Helper()
	dir := t.TempDir()
	db, err := Models.Open("sqlite", filepath.Join(dir, "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	require.NoError(t, Models.Migrate(db))
	require.NoError(t, Models.EnsureAdmin(db, "admin", "123"))

	cashier := Models.Employee{Name: "sari", Role: Models.RoleOperator, Active: true}
	require.NoError(t, cashier.SetPassword("sari123"))
	require.NoError(t, db.Create(&cashier).Error)

	milk := Models.Ingredient{Name: "Milk", Unit: "ml", CostPerUnit: 2, Stock: 300}
	require.NoError(t, db.Create(&milk).Error)
	latte := Models.Product{Name: "Latte", Price: 25000, Category: "Coffee", Recipe: []Models.Recipe{
		{IngredientID: milk.ID, QtyPerUnit: 150},
	}}
	require.NoError(t, db.Create(&latte).Error)

	cfg := Config.Default()
	cfg.Server.JWTSecret = "test-secret"
	cfg.Store.Name = "Kopi Senja"
	cfg.Paths.LogDir = filepath.Join(dir, "logs")
	cfg.Paths.UploadDir = filepath.Join(dir, "uploads")
	cfg.Paths.ExportDir = filepath.Join(dir, "exports")

	return &server{app: FiberConfig.NewApp(db, cfg), db: db}
}

func (s *server) do(t *testing.T, method, path, token string, body interface{}) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func (s *server) login(t *testing.T, name, password string) string {
	t.Helper()
	resp, body := s.do(t, http.MethodPost, "/api/login", "", map[string]string{"name": name, "password": password})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var out struct {
		Token       string   `json:"token"`
		Permissions []string `json:"permissions"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	require.NotEmpty(t, out.Token)
	return out.Token
}

func TestLogin(t *testing.T) {
	s := newServer(t)

	resp, _ := s.do(t, http.MethodPost, "/api/login", "", map[string]string{"name": "sari", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = s.do(t, http.MethodPost, "/api/login", "", map[string]string{"name": "sari"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	token := s.login(t, "sari", "sari123")
	resp, body := s.do(t, http.MethodGet, "/api/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"name":"sari"`)

	resp, _ = s.do(t, http.MethodGet, "/api/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp, _ = s.do(t, http.MethodGet, "/api/me", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestOperatorSellsAndIsLimited(t *testing.T) {
	s := newServer(t)
	token := s.login(t, "sari", "sari123")

	resp, body := s.do(t, http.MethodPost, "/api/sales", token, map[string]interface{}{
		"items":          map[string]int{"Latte": 1},
		"payment_method": "cash",
		"amount_paid":    30000,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var result struct {
		Success       bool    `json:"success"`
		TransactionID uint    `json:"transaction_id"`
		Change        float64 `json:"change"`
	}
	require.NoError(t, json.Unmarshal(body, &result))
	assert.True(t, result.Success)
	assert.Equal(t, 5000.0, result.Change)

	resp, body = s.do(t, http.MethodPost, "/api/sales", token, map[string]interface{}{
		"items":          map[string]int{"Latte": 5},
		"payment_method": "QRIS",
	})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	var failure struct {
		Error     string `json:"error"`
		Shortages []struct {
			Ingredient string  `json:"ingredient"`
			Required   float64 `json:"required"`
			Available  float64 `json:"available"`
		} `json:"shortages"`
	}
	require.NoError(t, json.Unmarshal(body, &failure))
	require.Len(t, failure.Shortages, 1)
	assert.Equal(t, "Milk", failure.Shortages[0].Ingredient)
	assert.Equal(t, 750.0, failure.Shortages[0].Required)
	assert.Equal(t, 150.0, failure.Shortages[0].Available)

	resp, _ = s.do(t, http.MethodGet, "/api/reports/hpp", token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = s.do(t, http.MethodDelete, fmt.Sprintf("/api/sales/%d", result.TransactionID), token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = s.do(t, http.MethodPost, "/api/products", token, map[string]interface{}{"name": "Mocha", "price": 1})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body = s.do(t, http.MethodGet, fmt.Sprintf("/api/sales/%d/receipt", result.TransactionID), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "receipt_INV-")
	assert.Contains(t, string(body), "Kopi Senja")
	assert.Contains(t, string(body), "Kembali")
}

func TestCartCheckout(t *testing.T) {
	s := newServer(t)
	token := s.login(t, "sari", "sari123")

	resp, body := s.do(t, http.MethodPost, "/api/cart/checkout", token, map[string]string{"payment_method": "Cash"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "empty cart")

	resp, body = s.do(t, http.MethodPost, "/api/cart/items", token, map[string]interface{}{"product": "Latte", "quantity": 2})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Contains(t, string(body), `"count":2`)

	resp, body = s.do(t, http.MethodPost, "/api/cart/checkout", token, map[string]string{"payment_method": "Card"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	assert.Contains(t, string(body), `"total":50000`)

	resp, body = s.do(t, http.MethodGet, "/api/cart", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"count":0`)

	var milk Models.Ingredient
	require.NoError(t, s.db.Where("name = ?", "Milk").First(&milk).Error)
	assert.Equal(t, 0.0, milk.Stock)
}

func TestManagerReportsAndReversal(t *testing.T) {
	s := newServer(t)
	admin := s.login(t, "admin", "123")

	resp, body := s.do(t, http.MethodPost, "/api/sales", admin, map[string]interface{}{
		"items":          map[string]int{"Latte": 1},
		"payment_method": "Cash",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var result struct {
		TransactionID uint `json:"transaction_id"`
	}
	require.NoError(t, json.Unmarshal(body, &result))

	resp, body = s.do(t, http.MethodGet, "/api/reports/hpp?format=csv", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "hpp_data.csv")
	assert.True(t, strings.HasPrefix(string(body), "Product,Category,Price,HPP,Profit,Margin %\n"))
	assert.Contains(t, string(body), "Latte,Coffee,25000.00,300.00,24700.00,98.80")

	resp, body = s.do(t, http.MethodGet, "/api/ledger/trial-balance", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"balanced":true`)

	resp, body = s.do(t, http.MethodGet, "/api/reports/sales/share?phone=08123456789", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "https://wa.me/628123456789?text=")

	resp, _ = s.do(t, http.MethodPost, "/api/ledger/entries", admin, map[string]interface{}{
		"description": "Bad entry",
		"lines": []map[string]interface{}{
			{"account_code": "1000", "debit": 100},
			{"account_code": "3000", "credit": 90},
		},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp, body = s.do(t, http.MethodDelete, fmt.Sprintf("/api/sales/%d", result.TransactionID), admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Contains(t, string(body), `"Milk":150`)

	resp, _ = s.do(t, http.MethodGet, fmt.Sprintf("/api/sales/%d", result.TransactionID), admin, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	s := newServer(t)
	resp, body := s.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"status":"ok"`)
}

func TestRequestLogs(t *testing.T) {
	s := newServer(t)
	operator := s.login(t, "sari", "sari123")
	admin := s.login(t, "admin", "123")

	resp, _ := s.do(t, http.MethodGet, "/api/logs", operator, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := s.do(t, http.MethodGet, "/api/logs", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var logs struct {
		Groups []struct {
			Method      string  `json:"method"`
			Path        string  `json:"path"`
			Count       int     `json:"count"`
			SuccessRate float64 `json:"success_rate"`
		} `json:"groups"`
		TotalLogs int `json:"total_logs"`
	}
	require.NoError(t, json.Unmarshal(body, &logs))
	assert.Equal(t, 3, logs.TotalLogs)
	require.NotEmpty(t, logs.Groups)
	assert.Equal(t, "POST", logs.Groups[0].Method)
	assert.Equal(t, "/api/login", logs.Groups[0].Path)
	assert.Equal(t, 2, logs.Groups[0].Count)
	assert.Equal(t, 100.0, logs.Groups[0].SuccessRate)

	resp, body = s.do(t, http.MethodGet, "/api/logs?file=errors&username=sari", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Contains(t, string(body), `"total_logs":1`)
	assert.Contains(t, string(body), `"status":403`)

	resp, body = s.do(t, http.MethodGet, "/api/logs/stats?method=post", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Contains(t, string(body), `"total_requests":2`)

	resp, _ = s.do(t, http.MethodGet, "/api/logs?from=2024-13-01", admin, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestEmployeeCreateAndPartialUpdate(t *testing.T) {
	s := newServer(t)
	admin := s.login(t, "admin", "123")

	resp, body := s.do(t, http.MethodPost, "/api/employees", admin, map[string]interface{}{
		"name":        "budi",
		"role":        "Manager",
		"wage_amount": 3000000,
		"wage_period": "month",
		"active":      false,
		"password":    "budi123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var budi Models.Employee
	require.NoError(t, s.db.Where("name = ?", "budi").First(&budi).Error)
	assert.False(t, budi.Active)
	assert.Equal(t, Models.WagePerMonth, budi.WagePeriod)

	resp, body = s.do(t, http.MethodPut, fmt.Sprintf("/api/employees/%d", budi.ID), admin, map[string]interface{}{
		"name":        "budi",
		"role":        "Manager",
		"wage_amount": 3500000,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	require.NoError(t, s.db.First(&budi, budi.ID).Error)
	assert.Equal(t, Models.WagePerMonth, budi.WagePeriod)
	assert.Equal(t, 3500000.0, budi.WageAmount)
	assert.False(t, budi.Active)

	resp, body = s.do(t, http.MethodPost, "/api/employees", admin, map[string]interface{}{
		"name": "dewi",
		"role": "Operator",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var dewi Models.Employee
	require.NoError(t, s.db.Where("name = ?", "dewi").First(&dewi).Error)
	assert.True(t, dewi.Active)
	assert.Equal(t, Models.WagePerHour, dewi.WagePeriod)
}

func TestLedgerWritesNeedManagePermission(t *testing.T) {
	s := newServer(t)
	operator := s.login(t, "sari", "sari123")
	admin := s.login(t, "admin", "123")

	entry := map[string]interface{}{
		"description": "Owner top up",
		"lines": []map[string]interface{}{
			{"account_code": "1000", "debit": 100000},
			{"account_code": "3000", "credit": 100000},
		},
	}
	resp, _ := s.do(t, http.MethodPost, "/api/ledger/entries", operator, entry)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = s.do(t, http.MethodPost, "/api/ledger/accounts", operator, map[string]string{"code": "6200", "name": "Rent", "type": "EXPENSE"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := s.do(t, http.MethodPost, "/api/ledger/entries", admin, entry)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var created struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(body, &created))

	resp, _ = s.do(t, http.MethodDelete, fmt.Sprintf("/api/ledger/entries/%d", created.ID), operator, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = s.do(t, http.MethodDelete, fmt.Sprintf("/api/ledger/entries/%d", created.ID), admin, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
