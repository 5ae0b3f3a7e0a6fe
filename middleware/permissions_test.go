package middleware_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"CafePOS/Models"
	"CafePOS/middleware"
)

func TestCapabilityTable(t *testing.T) {
	tests := []struct {
		role    Models.Role
		allowed []middleware.Permission
		denied  []middleware.Permission
	}{
		{
			role:    Models.RoleOperator,
			allowed: []middleware.Permission{middleware.PermSell, middleware.PermViewCatalog, middleware.PermViewOwnSales, middleware.PermOwnAttendance},
			denied: []middleware.Permission{middleware.PermManageCatalog, middleware.PermManageInventory, middleware.PermViewSales,
				middleware.PermReverseSales, middleware.PermManageExpenses, middleware.PermViewLedger, middleware.PermManageLedger,
				middleware.PermViewReports, middleware.PermManageEmployees, middleware.PermManageAttendance},
		},
		{
			role: Models.RoleManager,
			allowed: []middleware.Permission{middleware.PermSell, middleware.PermManageCatalog, middleware.PermManageInventory,
				middleware.PermViewSales, middleware.PermReverseSales, middleware.PermManageExpenses, middleware.PermViewLedger,
				middleware.PermManageLedger, middleware.PermViewReports, middleware.PermManageAttendance},
			denied: []middleware.Permission{middleware.PermManageEmployees, middleware.PermViewLogs},
		},
		{
			role:    Models.RoleAdmin,
			allowed: []middleware.Permission{middleware.PermManageEmployees, middleware.PermViewLogs, middleware.PermReverseSales, middleware.PermSell},
		},
		{
			role:   Models.Role("Guest"),
			denied: []middleware.Permission{middleware.PermSell, middleware.PermViewCatalog},
		},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			for _, p := range tt.allowed {
				assert.True(t, middleware.Can(tt.role, p), "%s should hold %s", tt.role, p)
			}
			for _, p := range tt.denied {
				assert.False(t, middleware.Can(tt.role, p), "%s should not hold %s", tt.role, p)
			}
		})
	}
}

func TestPermissionsListing(t *testing.T) {
	admin := middleware.Permissions(Models.RoleAdmin)
	assert.Contains(t, admin, middleware.PermManageEmployees)
	assert.Len(t, admin, len(middleware.Permissions(Models.RoleManager))+2)
	assert.Len(t, middleware.Permissions(Models.RoleOperator), 4)
	assert.Empty(t, middleware.Permissions(Models.Role("Guest")))

	// callers get their own copy
	ops := middleware.Permissions(Models.RoleOperator)
	ops[0] = middleware.PermManageEmployees
	assert.False(t, middleware.Can(Models.RoleOperator, middleware.PermManageEmployees))
}
