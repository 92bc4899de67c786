package suppliers

import (
	"context"

	"github.com/google/uuid"

	"github.com/karimelbaz/sallati-backend/pkg/db/models"
	"github.com/karimelbaz/sallati-backend/pkg/enums"
)

type repo interface {
	ListApproved(ctx context.Context) ([]models.Supplier, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Supplier, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.SupplierStatus) error
}

// Service exposes the supplier directory.
type Service struct {
	repo repo
}

func NewService(repo repo) *Service {
	return &Service{repo: repo}
}

// ListApproved returns the public supplier directory.
func (s *Service) ListApproved(ctx context.Context) ([]models.Supplier, error) {
	return s.repo.ListApproved(ctx)
}

// Get loads one supplier.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Supplier, error) {
	return s.repo.FindByID(ctx, id)
}
