package auth

import "caterconnect_backend/internal/models"

// Разрешения, которые проверяют маршруты
const (
	PermJobsWrite         = "jobs:write"
	PermApplicationsApply = "applications:apply"
	PermApplicationsOwner = "applications:manage"
)

// Permissions - RBAC по ролям профиля
var Permissions = map[models.UserRole][]string{
	models.UserRoleOwner: {
		PermJobsWrite,
		PermApplicationsOwner,
	},
	models.UserRoleWorker: {
		PermApplicationsApply,
	},
}

// HasPermission проверяет есть ли у роли указанное разрешение
func HasPermission(role models.UserRole, permission string) bool {
	for _, p := range Permissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}
