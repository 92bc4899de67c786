package users

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/karimelbaz/sallati-backend/pkg/db"
	"github.com/karimelbaz/sallati-backend/pkg/db/models"
	"github.com/karimelbaz/sallati-backend/pkg/enums"
	pkgerrors "github.com/karimelbaz/sallati-backend/pkg/errors"
)

// Repo provides persistence for user accounts.
type Repo struct {
	client *db.Client
}

func NewRepo(client *db.Client) *Repo {
	return &Repo{client: client}
}

// Create inserts the user row.
func (r *Repo) Create(ctx context.Context, user *models.User) error {
	if err := r.client.DB().WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "email already registered")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating user")
	}
	return nil
}

// FindByEmail returns the user with the given email.
func (r *Repo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.client.DB().WithContext(ctx).
		Where("email = ?", email).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "finding user by email")
	}
	return &user, nil
}

// FindByID returns the user with the given id.
func (r *Repo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.client.DB().WithContext(ctx).
		Where("id = ?", id).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "finding user by id")
	}
	return &user, nil
}

// RoleByID returns just the role column for the user.
func (r *Repo) RoleByID(ctx context.Context, id uuid.UUID) (enums.UserRole, error) {
	var role enums.UserRole
	err := r.client.DB().WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Pluck("role", &role).Error
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "looking up user role")
	}
	if role == "" {
		return "", pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return role, nil
}
