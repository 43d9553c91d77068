package schema

import (
	"strings"
	"time"
)

// Cooperative represents the cooperatives table - a named collective of artisans
type Cooperative struct {
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// Name is the registered name of the cooperative
	Name string `gorm:"column:name;not null;type:text"`
	// Community is the community the cooperative belongs to
	Community string `gorm:"column:community;not null;type:text"`
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now()"`
}

// TableName specifies the table name for the Cooperative model
func (Cooperative) TableName() string {
	return "cooperatives"
}

// Artisan represents the artisans table - people authorized on certificates and owning products
type Artisan struct {
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// IdentityNumber is the national identity document number
	IdentityNumber string `gorm:"column:identity_number;not null;uniqueIndex;type:text"`
	FirstName      string `gorm:"column:first_name;not null;type:text"`
	LastName       string `gorm:"column:last_name;not null;type:text"`
	Residence      string `gorm:"column:residence;type:text"`
	Phone          string `gorm:"column:phone;type:text"`
	// PhotoURL is a reference to the uploaded photo, if any
	PhotoURL *string `gorm:"column:photo_url;type:text"`
	// CooperativeID links the artisan to at most one cooperative
	CooperativeID *int64    `gorm:"column:cooperative_id;index"`
	CreatedAt     time.Time `gorm:"column:created_at;not null;default:now()"`

	Cooperative *Cooperative `gorm:"foreignKey:CooperativeID"`
}

// TableName specifies the table name for the Artisan model
func (Artisan) TableName() string {
	return "artisans"
}

// FullName returns "first last" with surrounding whitespace removed
func (a Artisan) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(a.FirstName) + " " + strings.TrimSpace(a.LastName))
}

// ExtractionSite represents the extraction_sites table - a chaku where raw fiber is harvested
type ExtractionSite struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Name      string    `gorm:"column:name;not null;type:text"`
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now()"`
}

// TableName specifies the table name for the ExtractionSite model
func (ExtractionSite) TableName() string {
	return "extraction_sites"
}
