package schema

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProvenanceKind describes how the raw fiber was obtained
type ProvenanceKind string

const (
	ProvenanceKindWild  ProvenanceKind = "wild"
	ProvenanceKindOther ProvenanceKind = "other"
)

// Destination is the declared use of the fiber covered by an origin certificate
type Destination string

const (
	DestinationTransformation    Destination = "transformation"
	DestinationCommercialization Destination = "commercialization"
)

// OriginCertificate represents the origin_certificates table (COLT).
// It records one custody event of raw fiber for an authorized artisan.
type OriginCertificate struct {
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// Number is the certificate number printed on the document
	Number string `gorm:"column:number;not null;uniqueIndex;type:text"`
	// ArtisanID is the artisan authorized by the certificate
	ArtisanID int64 `gorm:"column:artisan_id;not null;index:idx_origin_certificates_artisan_site_year,priority:1"`
	// QuantityKg is the raw fiber mass in kilograms
	QuantityKg     decimal.Decimal `gorm:"column:quantity_kg;not null;type:numeric(12,3)"`
	Species        string          `gorm:"column:species;not null;type:text"`
	ProvenanceKind ProvenanceKind  `gorm:"column:provenance_kind;not null;type:text"`
	// ExtractionSiteID is the chaku where the fiber was harvested, if recorded
	ExtractionSiteID *int64 `gorm:"column:extraction_site_id;index:idx_origin_certificates_artisan_site_year,priority:2"`
	Year             *int   `gorm:"column:year;index:idx_origin_certificates_artisan_site_year,priority:3"`
	// DocumentationRef references the supporting documentation
	DocumentationRef string      `gorm:"column:documentation_ref;type:text"`
	Destination      Destination `gorm:"column:destination;not null;type:text"`
	IssuedAt         time.Time   `gorm:"column:issued_at;not null"`
	CreatedAt        time.Time   `gorm:"column:created_at;not null;default:now()"`
}

// TableName specifies the table name for the OriginCertificate model
func (OriginCertificate) TableName() string {
	return "origin_certificates"
}

// ProcessingCertificate represents the processing_certificates table (CTPSFS).
// It authorizes a transformation program made of one or more transformation entries.
type ProcessingCertificate struct {
	ID                 int64  `gorm:"column:id;primaryKey;autoIncrement"`
	Number             string `gorm:"column:number;not null;uniqueIndex;type:text"`
	ProductDescription string `gorm:"column:product_description;type:text"`
	// ExtractionSiteID is the chaku the processed fiber comes from, if recorded
	ExtractionSiteID *int64 `gorm:"column:extraction_site_id"`
	Year             *int   `gorm:"column:year"`
	// OriginDocumentationRef references the origin documentation presented for the program
	OriginDocumentationRef string    `gorm:"column:origin_documentation_ref;type:text"`
	CreatedAt              time.Time `gorm:"column:created_at;not null;default:now()"`

	// Associations
	Entries []TransformationEntry `gorm:"foreignKey:ProcessingCertificateID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the ProcessingCertificate model
func (ProcessingCertificate) TableName() string {
	return "processing_certificates"
}

// TransformationEntry represents the transformation_entries table.
// Entries are replaced as a set whenever their certificate is edited.
type TransformationEntry struct {
	ID                      int64  `gorm:"column:id;primaryKey;autoIncrement"`
	ProcessingCertificateID int64  `gorm:"column:processing_certificate_id;not null;index"`
	Description             string `gorm:"column:description;type:text"`
	// QuantityKg is the transformed fiber mass in kilograms
	QuantityKg decimal.Decimal `gorm:"column:quantity_kg;not null;type:numeric(12,3)"`
	Unit       string          `gorm:"column:unit;not null;type:text;default:'kg'"`
	// TenureDocumentationRef references the tenure documentation of the fiber
	TenureDocumentationRef string    `gorm:"column:tenure_documentation_ref;type:text"`
	CertifiedAt            time.Time `gorm:"column:certified_at;not null"`
	// ArtisanID is the artisan authorized for this transformation
	ArtisanID *int64    `gorm:"column:artisan_id"`
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now()"`
}

// TableName specifies the table name for the TransformationEntry model
func (TransformationEntry) TableName() string {
	return "transformation_entries"
}
