package dto

import (
	"time"

	"github.com/vicuna-trace/ledger/internal/domain"
)

// ProductResponse is a product with its tokenization state
type ProductResponse struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	Type            *string `json:"type,omitempty"`
	HasToken        bool    `json:"has_token"`
	TokenID         *string `json:"token_id,omitempty"`
	TransactionHash *string `json:"transaction_hash,omitempty"`
}

// ArtisanResponse is the artisan owning a product
type ArtisanResponse struct {
	ID             int64   `json:"id"`
	FullName       string  `json:"full_name"`
	IdentityNumber string  `json:"identity_number"`
	Cooperative    *string `json:"cooperative,omitempty"`
}

// TransformationEntryResponse is one entry of a processing certificate
type TransformationEntryResponse struct {
	ID          int64     `json:"id"`
	Description string    `json:"description,omitempty"`
	QuantityKg  string    `json:"quantity_kg"`
	CertifiedAt time.Time `json:"certified_at"`
}

// ProcessingCertificateResponse is the CTPSFS linked to a product
type ProcessingCertificateResponse struct {
	ID               int64                         `json:"id"`
	Number           string                        `json:"number"`
	ExtractionSiteID *int64                        `json:"extraction_site_id,omitempty"`
	Year             *int                          `json:"year,omitempty"`
	Entries          []TransformationEntryResponse `json:"entries"`
}

// OriginCertificateResponse is the COLT resolved for a product
type OriginCertificateResponse struct {
	ID               int64     `json:"id"`
	Number           string    `json:"number"`
	QuantityKg       string    `json:"quantity_kg"`
	Species          string    `json:"species"`
	ExtractionSiteID *int64    `json:"extraction_site_id,omitempty"`
	Year             *int      `json:"year,omitempty"`
	Destination      string    `json:"destination"`
	IssuedAt         time.Time `json:"issued_at"`
}

// MassResponse is the attributable fiber mass; Grams is absent when unknown
type MassResponse struct {
	Grams  *string `json:"grams,omitempty"`
	Known  bool    `json:"known"`
	Source string  `json:"source"`
}

// ProvenanceResponse is the resolved certification chain of a product.
// Null certificates mean none is linked or none matched.
type ProvenanceResponse struct {
	Product               ProductResponse                `json:"product"`
	Artisan               *ArtisanResponse               `json:"artisan"`
	ProcessingCertificate *ProcessingCertificateResponse `json:"processing_certificate"`
	OriginCertificate     *OriginCertificateResponse     `json:"origin_certificate"`
	Mass                  MassResponse                   `json:"mass"`
	Attributes            domain.MintAttributes          `json:"attributes"`
	MissingAttributes     []string                       `json:"missing_attributes,omitempty"`
}
