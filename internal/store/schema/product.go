package schema

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Product represents the products table - a finished garment and its tokenization state
type Product struct {
	ID   int64   `gorm:"column:id;primaryKey;autoIncrement"`
	Name string  `gorm:"column:name;not null;type:text"`
	Type *string `gorm:"column:type;type:text"`
	// ArtisanID is the owning artisan (nil for products registered without one)
	ArtisanID *int64 `gorm:"column:artisan_id;index"`
	// ProcessingCertificateID links the product to its CTPSFS, if any
	ProcessingCertificateID *int64 `gorm:"column:processing_certificate_id;index"`
	OriginLocality          string `gorm:"column:origin_locality;type:text"`
	Techniques              string `gorm:"column:techniques;type:text"`
	Dimensions              string `gorm:"column:dimensions;type:text"`
	ElaborationTime         string `gorm:"column:elaboration_time;type:text"`
	// FiberMassGrams is the stored fiber mass, used when no transformation entry is available
	FiberMassGrams *decimal.Decimal `gorm:"column:fiber_mass_grams;type:numeric(14,3)"`
	// Photos is the ordered list of photo references
	Photos datatypes.JSONSlice[string] `gorm:"column:photos;type:jsonb;not null;default:'[]'"`

	// Tokenization state. HasToken implies TransactionHash is set; TokenID may lag.
	HasToken        bool    `gorm:"column:has_token;not null;default:false"`
	TokenID         *string `gorm:"column:token_id;type:text"`
	TransactionHash *string `gorm:"column:transaction_hash;type:text"`

	CreatedAt time.Time `gorm:"column:created_at;not null;default:now()"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now()"`
}

// TableName specifies the table name for the Product model
func (Product) TableName() string {
	return "products"
}
