package suppliers

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/karimelbaz/sallati-backend/pkg/db"
	"github.com/karimelbaz/sallati-backend/pkg/db/models"
	"github.com/karimelbaz/sallati-backend/pkg/enums"
	pkgerrors "github.com/karimelbaz/sallati-backend/pkg/errors"
)

// Repo provides persistence for supplier storefronts.
type Repo struct {
	client *db.Client
}

func NewRepo(client *db.Client) *Repo {
	return &Repo{client: client}
}

// ListPendingBefore returns suppliers still pending review that were created
// before the cutoff.
func (r *Repo) ListPendingBefore(ctx context.Context, cutoff time.Time) ([]models.Supplier, error) {
	var suppliers []models.Supplier
	err := r.client.DB().WithContext(ctx).
		Where("status = ? AND created_at < ?", enums.SupplierStatusPending, cutoff).
		Order("created_at ASC").
		Find(&suppliers).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing pending suppliers")
	}
	return suppliers, nil
}

// ListApproved returns approved suppliers for the storefront directory.
func (r *Repo) ListApproved(ctx context.Context) ([]models.Supplier, error) {
	var suppliers []models.Supplier
	err := r.client.DB().WithContext(ctx).
		Where("status = ?", enums.SupplierStatusApproved).
		Order("created_at DESC").
		Find(&suppliers).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing suppliers")
	}
	return suppliers, nil
}

// FindByID loads one supplier with its owner account.
func (r *Repo) FindByID(ctx context.Context, id uuid.UUID) (*models.Supplier, error) {
	var supplier models.Supplier
	err := r.client.DB().WithContext(ctx).
		Where("id = ?", id).
		Preload("Owner").
		First(&supplier).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "supplier not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "finding supplier")
	}
	return &supplier, nil
}

// UpdateStatus moves the supplier to a new review status.
func (r *Repo) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.SupplierStatus) error {
	result := r.client.DB().WithContext(ctx).
		Model(&models.Supplier{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, result.Error, "updating supplier status")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
	}
	return nil
}
