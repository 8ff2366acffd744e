package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/routewise/routewise/internal/auth/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.User, error) {
	var user domain.User
	err := db.WithContext(ctx).Raw(
		`SELECT id, email, display_name, password_hash, role, is_active, metadata, created_at, updated_at
		 FROM users WHERE email = ?`,
		email,
	).Scan(&user).Error
	if err != nil {
		return nil, err
	}
	if user.ID == 0 {
		return nil, nil
	}
	return &user, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.User, error) {
	var user domain.User
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

func (r *repo) ActiveTenantIDs(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]snowflake.ID, error) {
	var rows []struct {
		TenantID snowflake.ID
	}
	err := db.WithContext(ctx).Raw(
		`SELECT tu.tenant_id
		 FROM tenant_users tu
		 JOIN tenants t ON t.id = tu.tenant_id
		 WHERE tu.user_id = ? AND tu.is_active AND t.is_active
		 ORDER BY tu.created_at ASC, tu.id ASC`,
		userID,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	ids := make([]snowflake.ID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.TenantID)
	}
	return ids, nil
}
