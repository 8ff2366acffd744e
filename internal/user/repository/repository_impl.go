package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/routewise/routewise/internal/auth/domain"
	"github.com/routewise/routewise/internal/user/domain"
	"github.com/routewise/routewise/pkg/db/option"
	"github.com/routewise/routewise/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, user *authdomain.User) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO users (id, email, display_name, password_hash, role, is_active, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Email,
		user.DisplayName,
		user.PasswordHash,
		user.Role,
		user.IsActive,
		user.Metadata,
		user.CreatedAt,
		user.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, user *authdomain.User) error {
	return db.WithContext(ctx).Exec(
		`UPDATE users SET display_name = ?, password_hash = ?, role = ?, is_active = ?, updated_at = ?
		 WHERE id = ?`,
		user.DisplayName,
		user.PasswordHash,
		user.Role,
		user.IsActive,
		user.UpdatedAt,
		user.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*authdomain.User, error) {
	var user authdomain.User
	err := db.WithContext(ctx).Raw(
		`SELECT id, email, display_name, password_hash, role, is_active, metadata, created_at, updated_at
		 FROM users WHERE id = ?`,
		id,
	).Scan(&user).Error
	if err != nil {
		return nil, err
	}
	if user.ID == 0 {
		return nil, nil
	}
	return &user, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListUserFilter, page pagination.Pagination) ([]*authdomain.User, error) {
	var users []*authdomain.User
	stmt := db.WithContext(ctx).Model(&authdomain.User{})
	if filter.Email != "" {
		stmt = stmt.Where("email = ?", filter.Email)
	}
	if filter.Role != "" {
		stmt = stmt.Where("role = ?", filter.Role)
	}
	if filter.IsActive != nil {
		stmt = stmt.Where("is_active = ?", *filter.IsActive)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *repo) FindPermission(ctx context.Context, db *gorm.DB, userID snowflake.ID, permission string) (*domain.UserPermission, error) {
	var grant domain.UserPermission
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, permission, is_active, granted_by, created_at, updated_at
		 FROM user_permissions WHERE user_id = ? AND permission = ?`,
		userID,
		permission,
	).Scan(&grant).Error
	if err != nil {
		return nil, err
	}
	if grant.ID == 0 {
		return nil, nil
	}
	return &grant, nil
}

func (r *repo) UpsertPermission(ctx context.Context, db *gorm.DB, grant *domain.UserPermission) error {
	res := db.WithContext(ctx).Exec(
		`UPDATE user_permissions SET is_active = ?, granted_by = ?, updated_at = ?
		 WHERE user_id = ? AND permission = ?`,
		grant.IsActive,
		grant.GrantedBy,
		grant.UpdatedAt,
		grant.UserID,
		grant.Permission,
	)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	return db.WithContext(ctx).Exec(
		`INSERT INTO user_permissions (id, user_id, permission, is_active, granted_by, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		grant.ID,
		grant.UserID,
		grant.Permission,
		grant.IsActive,
		grant.GrantedBy,
		grant.CreatedAt,
		grant.UpdatedAt,
	).Error
}

func (r *repo) ListPermissions(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]*domain.UserPermission, error) {
	var grants []*domain.UserPermission
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, permission, is_active, granted_by, created_at, updated_at
		 FROM user_permissions WHERE user_id = ? ORDER BY permission ASC`,
		userID,
	).Scan(&grants).Error
	if err != nil {
		return nil, err
	}
	return grants, nil
}
