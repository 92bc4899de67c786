package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/karimelbaz/sallati-backend/pkg/enums"
	"github.com/karimelbaz/sallati-backend/pkg/types"
)

// Supplier is a vendor storefront listed in the marketplace directory.
type Supplier struct {
	ID               uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerUserID      uuid.UUID            `gorm:"column:owner_user_id;type:uuid;not null"`
	Name             types.LocalizedText  `gorm:"column:name;type:jsonb;not null"`
	Email            string               `gorm:"column:email;not null"`
	DeliveryFeeCents int64                `gorm:"column:delivery_fee_cents;not null;default:0"`
	Status           enums.SupplierStatus `gorm:"column:status;type:supplier_status;not null;default:'pending'"`
	LogoURL          *string              `gorm:"column:logo_url"`
	Owner            *User                `gorm:"foreignKey:OwnerUserID"`
	CreatedAt        time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
