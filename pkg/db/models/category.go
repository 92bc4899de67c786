package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/karimelbaz/sallati-backend/pkg/types"
)

// Category is a browse bucket on the storefront home screen.
type Category struct {
	ID        uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Slug      string              `gorm:"column:slug;not null;uniqueIndex"`
	Name      types.LocalizedText `gorm:"column:name;type:jsonb;not null"`
	ImageURL  *string             `gorm:"column:image_url"`
	Position  int                 `gorm:"column:position;not null;default:0"`
	IsActive  bool                `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
