package rbac

import (
	"context"

	"gorm.io/gorm"
)

//go:generate mockgen -source=rbac_repo.go -destination=mock/rbac_repo_mock.go -package=mock
type Repository interface {
	ListRolePermissions(ctx context.Context) ([]RolePermissionRow, error)
	ListRoleParents(ctx context.Context) ([]RoleParentRow, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

type RolePermissionRow struct {
	Role     string
	Resource string
	Action   string
}

// RoleParentRow makes Role inherit every permission of Parent.
type RoleParentRow struct {
	Role   string
	Parent string
}

func (r *repository) ListRolePermissions(ctx context.Context) ([]RolePermissionRow, error) {
	var result []RolePermissionRow
	err := r.db.WithContext(ctx).
		Table("role_permissions").
		Select("role, resource, action").
		Order("role, resource, action").
		Scan(&result).Error
	return result, err
}

func (r *repository) ListRoleParents(ctx context.Context) ([]RoleParentRow, error) {
	var result []RoleParentRow
	err := r.db.WithContext(ctx).
		Table("role_parents").
		Select("role, parent").
		Order("role, parent").
		Scan(&result).Error
	return result, err
}
