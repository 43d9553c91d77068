package provenance

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/vicuna-trace/ledger/internal/domain"
	"github.com/vicuna-trace/ledger/internal/store/schema"
)

// MassSource tells where a mass figure came from
type MassSource string

const (
	MassSourceTransformationEntry MassSource = "transformation_entry"
	MassSourceProduct             MassSource = "product"
	MassSourceUnknown             MassSource = "unknown"
)

var (
	gramsPerKilogram = decimal.NewFromInt(domain.GRAMS_PER_KILOGRAM)
	maxUint64        = decimal.RequireFromString("18446744073709551615")

	// ErrMassUnknown is returned when an unknown mass is converted to its on-chain value
	ErrMassUnknown = errors.New("mass unknown")
)

// Mass is the attributable fiber mass of a product in grams.
// Unknown is distinct from zero: a zero Known mass is a measured value.
type Mass struct {
	Grams  decimal.Decimal
	Known  bool
	Source MassSource
	// EntryID is the transformation entry the mass was taken from
	EntryID *int64
}

// UnknownMass returns a mass with no data behind it
func UnknownMass() Mass {
	return Mass{Source: MassSourceUnknown}
}

// String formats the mass for logs and operator output
func (m Mass) String() string {
	if !m.Known {
		return "unknown"
	}
	return m.Grams.String() + " g"
}

// Uint64 converts the mass to the whole grams sent on-chain, rounding half up
func (m Mass) Uint64() (uint64, error) {
	if !m.Known {
		return 0, ErrMassUnknown
	}
	rounded := m.Grams.Round(0)
	if rounded.IsNegative() {
		return 0, fmt.Errorf("negative mass: %s", m.Grams)
	}
	if rounded.GreaterThan(maxUint64) {
		return 0, fmt.Errorf("mass out of range: %s", m.Grams)
	}
	return rounded.BigInt().Uint64(), nil
}

// ComputeMass returns the mass of the latest-certified transformation entry converted to grams.
// Without a certificate or entries it falls back to the product's stored fiber mass, then to unknown.
// Entries certified at the same instant resolve to the highest entry id.
func ComputeMass(cert *schema.ProcessingCertificate, product *schema.Product) Mass {
	if cert != nil {
		if entry := latestEntry(cert.Entries); entry != nil {
			id := entry.ID
			return Mass{
				Grams:   entry.QuantityKg.Mul(gramsPerKilogram),
				Known:   true,
				Source:  MassSourceTransformationEntry,
				EntryID: &id,
			}
		}
	}

	if product != nil && product.FiberMassGrams != nil {
		return Mass{
			Grams:  *product.FiberMassGrams,
			Known:  true,
			Source: MassSourceProduct,
		}
	}

	return UnknownMass()
}

func latestEntry(entries []schema.TransformationEntry) *schema.TransformationEntry {
	var latest *schema.TransformationEntry
	for i := range entries {
		e := &entries[i]
		if latest == nil ||
			e.CertifiedAt.After(latest.CertifiedAt) ||
			(e.CertifiedAt.Equal(latest.CertifiedAt) && e.ID > latest.ID) {
			latest = e
		}
	}
	return latest
}
