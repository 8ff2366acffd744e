package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/routewise/routewise/internal/auth/domain"
	"github.com/routewise/routewise/pkg/db/pagination"
	"gorm.io/gorm"
)

type CreateUserRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
	Role        string `json:"role"`
}

type UpdateUserRequest struct {
	ID          string
	DisplayName *string `json:"display_name"`
	Role        *string `json:"role"`
	IsActive    *bool   `json:"is_active"`
	Password    *string `json:"password"`
}

type GetUserRequest struct {
	ID string
}

type ListUserRequest struct {
	PageToken string
	PageSize  int32
	Email     string
	Role      string
	IsActive  *bool
}

type ListUserFilter struct {
	Email    string
	Role     string
	IsActive *bool
}

type ListUserResponse struct {
	pagination.PageInfo
	Users []authdomain.User `json:"users"`
}

type GrantPermissionRequest struct {
	UserID     string
	Permission string `json:"permission"`
	GrantedBy  snowflake.ID
}

type RevokePermissionRequest struct {
	UserID     string
	Permission string `json:"permission"`
}

type ListPermissionsRequest struct {
	UserID string
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, user *authdomain.User) error
	Update(ctx context.Context, db *gorm.DB, user *authdomain.User) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*authdomain.User, error)
	List(ctx context.Context, db *gorm.DB, filter ListUserFilter, page pagination.Pagination) ([]*authdomain.User, error)

	FindPermission(ctx context.Context, db *gorm.DB, userID snowflake.ID, permission string) (*UserPermission, error)
	UpsertPermission(ctx context.Context, db *gorm.DB, grant *UserPermission) error
	ListPermissions(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]*UserPermission, error)
}

type Service interface {
	Create(context.Context, CreateUserRequest) (authdomain.User, error)
	Update(context.Context, UpdateUserRequest) (authdomain.User, error)
	GetByID(context.Context, GetUserRequest) (authdomain.User, error)
	List(context.Context, ListUserRequest) (ListUserResponse, error)

	GrantPermission(context.Context, GrantPermissionRequest) (UserPermission, error)
	RevokePermission(context.Context, RevokePermissionRequest) (UserPermission, error)
	ListPermissions(context.Context, ListPermissionsRequest) ([]UserPermission, error)
}

var (
	ErrInvalidEmail      = errors.New("invalid_email")
	ErrInvalidPassword   = errors.New("invalid_password")
	ErrInvalidRole       = errors.New("invalid_role")
	ErrInvalidID         = errors.New("invalid_id")
	ErrInvalidPermission = errors.New("invalid_permission")
	ErrEmailTaken        = errors.New("email_taken")
	ErrNotFound          = errors.New("not_found")
	ErrGrantMissing      = errors.New("grant_missing")
)
