package middleware

import (
	"CafePOS/Models"
)

type Permission string

const (
	PermSell             Permission = "sales:create"
	PermViewCatalog      Permission = "catalog:view"
	PermManageCatalog    Permission = "catalog:manage"
	PermManageInventory  Permission = "inventory:manage"
	PermViewOwnSales     Permission = "sales:view_own"
	PermViewSales        Permission = "sales:view"
	PermReverseSales     Permission = "sales:reverse"
	PermOwnAttendance    Permission = "attendance:self"
	PermManageAttendance Permission = "attendance:manage"
	PermManageEmployees  Permission = "employees:manage"
	PermManageExpenses   Permission = "expenses:manage"
	PermViewLedger       Permission = "ledger:view"
	PermViewReports      Permission = "reports:view"
	PermManageLedger     Permission = "ledger:manage"
	PermViewLogs         Permission = "logs:view"
)

var operatorPermissions = []Permission{
	PermSell,
	PermViewCatalog,
	PermViewOwnSales,
	PermOwnAttendance,
}

var managerPermissions = append([]Permission{
	PermManageCatalog,
	PermManageInventory,
	PermViewSales,
	PermReverseSales,
	PermManageAttendance,
	PermManageExpenses,
	PermViewLedger,
	PermManageLedger,
	PermViewReports,
}, operatorPermissions...)

// capabilities is the static role table. Admin is allowed everything.
var capabilities = map[Models.Role][]Permission{
	Models.RoleManager:  managerPermissions,
	Models.RoleOperator: operatorPermissions,
}

// Can reports whether a role holds a permission.
func Can(role Models.Role, permission Permission) bool {
	if role == Models.RoleAdmin {
		return true
	}
	for _, p := range capabilities[role] {
		if p == permission {
			return true
		}
	}
	return false
}

func Permissions(role Models.Role) []Permission {
	if role == Models.RoleAdmin {
		return append(append([]Permission{}, managerPermissions...), PermManageEmployees, PermViewLogs)
	}
	return append([]Permission{}, capabilities[role]...)
}
