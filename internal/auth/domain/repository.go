package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*User, error)
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*User, error)
	// ActiveTenantIDs returns the caller's active tenant memberships ordered
	// by membership creation time, then ID, so the first entry is stable.
	ActiveTenantIDs(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]snowflake.ID, error)
}
