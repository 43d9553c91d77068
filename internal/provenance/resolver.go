package provenance

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/vicuna-trace/ledger/internal/domain"
	"github.com/vicuna-trace/ledger/internal/logger"
	"github.com/vicuna-trace/ledger/internal/store"
	"github.com/vicuna-trace/ledger/internal/store/schema"
)

// Config holds origin resolution options
type Config struct {
	// RequireTransformationDestination keeps only origin certificates declared for transformation
	RequireTransformationDestination bool
}

// Provenance is the resolved certification chain of a product.
// A nil certificate means none was linked or none matched.
type Provenance struct {
	Product               *schema.Product
	Artisan               *schema.Artisan
	ProcessingCertificate *schema.ProcessingCertificate
	OriginCertificate     *schema.OriginCertificate
	Mass                  Mass
}

// Resolver resolves the provenance chain of products
type Resolver struct {
	store store.Store
	cfg   Config
}

// NewResolver creates a provenance resolver
func NewResolver(st store.Store, cfg Config) *Resolver {
	return &Resolver{store: st, cfg: cfg}
}

// Resolve loads the product, its processing certificate, artisan, origin certificate and mass.
// Products without certification history resolve without error.
func (r *Resolver) Resolve(ctx context.Context, productID int64) (*Provenance, error) {
	product, err := r.store.GetProductByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}

	p := &Provenance{Product: product}

	if product.ProcessingCertificateID != nil {
		cert, err := r.store.GetProcessingCertificateByID(ctx, *product.ProcessingCertificateID)
		if err != nil {
			return nil, fmt.Errorf("failed to load processing certificate: %w", err)
		}
		if cert == nil {
			logger.WarnCtx(ctx, "Product references a missing processing certificate",
				zap.Int64("product_id", productID),
				zap.Int64("processing_certificate_id", *product.ProcessingCertificateID))
		}
		p.ProcessingCertificate = cert
	}

	if product.ArtisanID != nil {
		artisan, err := r.store.GetArtisanByID(ctx, *product.ArtisanID)
		if err != nil {
			return nil, fmt.Errorf("failed to load artisan: %w", err)
		}
		p.Artisan = artisan
	}

	origin, err := r.ResolveOrigin(ctx, product, p.ProcessingCertificate)
	if err != nil {
		return nil, err
	}
	p.OriginCertificate = origin
	p.Mass = ComputeMass(p.ProcessingCertificate, product)

	return p, nil
}

// ResolveOrigin selects the single most applicable origin certificate for the product.
//
// Candidates are the certificates of the product's artisan, narrowed to the processing
// certificate's extraction site and year when those are set. The latest issued candidate
// wins, the highest id breaking ties. Nil is returned when the product has no artisan or
// processing certificate, or when narrowing leaves nothing; there is no unfiltered fallback.
func (r *Resolver) ResolveOrigin(ctx context.Context, product *schema.Product, cert *schema.ProcessingCertificate) (*schema.OriginCertificate, error) {
	if product == nil || product.ArtisanID == nil || cert == nil {
		return nil, nil
	}

	candidates, err := r.store.GetOriginCertificates(ctx, store.OriginCertificateFilter{
		ArtisanID:        *product.ArtisanID,
		ExtractionSiteID: cert.ExtractionSiteID,
		Year:             cert.Year,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load origin certificates: %w", err)
	}

	var selected *schema.OriginCertificate
	for i := range candidates {
		c := &candidates[i]
		if !r.matches(c, *product.ArtisanID, cert) {
			continue
		}
		if selected == nil ||
			c.IssuedAt.After(selected.IssuedAt) ||
			(c.IssuedAt.Equal(selected.IssuedAt) && c.ID > selected.ID) {
			selected = c
		}
	}

	if selected == nil {
		logger.DebugCtx(ctx, "No origin certificate matched",
			zap.Int64("product_id", product.ID),
			zap.Int("candidates", len(candidates)))
		return nil, nil
	}

	return selected, nil
}

// matches re-applies the narrowing in memory so the selection never depends on the store's filtering
func (r *Resolver) matches(c *schema.OriginCertificate, artisanID int64, cert *schema.ProcessingCertificate) bool {
	if c.ArtisanID != artisanID {
		return false
	}
	if cert.ExtractionSiteID != nil && (c.ExtractionSiteID == nil || *c.ExtractionSiteID != *cert.ExtractionSiteID) {
		return false
	}
	if cert.Year != nil && (c.Year == nil || *c.Year != *cert.Year) {
		return false
	}
	if r.cfg.RequireTransformationDestination && c.Destination != schema.DestinationTransformation {
		return false
	}
	return true
}

// Attributes assembles the human-readable attributes written on-chain for a product.
// Missing values are left empty; callers validate them with MissingFields.
func (r *Resolver) Attributes(ctx context.Context, productID int64) (domain.MintAttributes, *Provenance, error) {
	p, err := r.Resolve(ctx, productID)
	if err != nil {
		return domain.MintAttributes{}, nil, err
	}

	attrs := domain.MintAttributes{
		ProductID:   p.Product.ID,
		ProductName: p.Product.Name,
	}
	if p.Artisan != nil {
		attrs.ArtisanName = p.Artisan.FullName()
	}
	if p.ProcessingCertificate != nil {
		attrs.CertificateNumber = p.ProcessingCertificate.Number
	}
	if grams, err := p.Mass.Uint64(); err == nil {
		attrs.MassGrams = grams
	}

	return attrs, p, nil
}
