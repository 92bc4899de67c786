package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/karimelbaz/sallati-backend/pkg/types"
)

// Product is a storefront listing owned by one supplier.
type Product struct {
	ID                 uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SupplierID         uuid.UUID            `gorm:"column:supplier_id;type:uuid;not null"`
	CategoryID         uuid.UUID            `gorm:"column:category_id;type:uuid;not null"`
	Name               types.LocalizedText  `gorm:"column:name;type:jsonb;not null"`
	Description        *types.LocalizedText `gorm:"column:description;type:jsonb"`
	PriceCents         int64                `gorm:"column:price_cents;not null"`
	DiscountPriceCents *int64               `gorm:"column:discount_price_cents"`
	MaxQtyPerOrder     *int                 `gorm:"column:max_qty_per_order"`
	Tags               pq.StringArray       `gorm:"column:tags;type:text[];not null;default:ARRAY[]::text[]"`
	ImageURL           *string              `gorm:"column:image_url"`
	IsActive           bool                 `gorm:"column:is_active;not null;default:true"`
	IsFeatured         bool                 `gorm:"column:is_featured;not null;default:false"`
	Supplier           *Supplier            `gorm:"foreignKey:SupplierID"`
	CreatedAt          time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
