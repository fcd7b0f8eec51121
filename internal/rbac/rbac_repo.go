package rbac

import (
	"gorm.io/gorm"
)

type EmployeeRole struct {
	EmployeeID string
	RoleID     string
}

type RolePermission struct {
	RoleID   string
	Resource string
	Action   string
}

//go:generate mockgen -source=rbac_repo.go -destination=mock/rbac_repo_mock.go -package=mock
type Repository interface {
	GetEmployeeRoles() ([]EmployeeRole, error)
	GetRolePermissions() ([]RolePermission, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetEmployeeRoles() ([]EmployeeRole, error) {
	var roles []EmployeeRole
	err := r.db.
		Table("employee_roles").
		Select("employee_id::text AS employee_id, role_id::text AS role_id").
		Scan(&roles).Error
	return roles, err
}

func (r *repository) GetRolePermissions() ([]RolePermission, error) {
	var perms []RolePermission
	query := `
SELECT
	role_permissions.role_id::text AS role_id,
	permissions.resource,
	permissions.action
FROM role_permissions
JOIN permissions ON permissions.id = role_permissions.permission_id
`
	err := r.db.Raw(query).Scan(&perms).Error
	return perms, err
}
