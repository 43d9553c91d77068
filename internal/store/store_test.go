package store

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/vicuna-trace/ledger/internal/domain"
	"github.com/vicuna-trace/ledger/internal/store/schema"
)

// seedFunc inserts fixture rows into the store under test
type seedFunc func(t *testing.T, records ...interface{})

// =============================================================================
// Test Data Builders
// =============================================================================

func int64Ptr(v int64) *int64 {
	return &v
}

func intPtr(v int) *int {
	return &v
}

func stringPtr(v string) *string {
	return &v
}

func buildTestArtisan(id int64, first, last string) *schema.Artisan {
	return &schema.Artisan{
		ID:             id,
		IdentityNumber: "DNI-" + first + last,
		FirstName:      first,
		LastName:       last,
		Residence:      "Lucanas",
	}
}

func buildTestOriginCertificate(id int64, number string, artisanID int64, site *int64, year *int, issuedAt time.Time) *schema.OriginCertificate {
	return &schema.OriginCertificate{
		ID:               id,
		Number:           number,
		ArtisanID:        artisanID,
		QuantityKg:       decimal.RequireFromString("4.5"),
		Species:          domain.SPECIES_VICUNA,
		ProvenanceKind:   schema.ProvenanceKindWild,
		ExtractionSiteID: site,
		Year:             year,
		Destination:      schema.DestinationTransformation,
		IssuedAt:         issuedAt,
	}
}

func buildTestProduct(id int64, name string, artisanID *int64, certID *int64) *schema.Product {
	return &schema.Product{
		ID:                      id,
		Name:                    name,
		ArtisanID:               artisanID,
		ProcessingCertificateID: certID,
		Photos:                  datatypes.JSONSlice[string]{"photos/front.jpg"},
	}
}

func buildTestMintAttempt(id string, productID int64, state schema.MintAttemptState, txHash *string) *schema.MintAttempt {
	return &schema.MintAttempt{
		ID:               id,
		ProductID:        productID,
		State:            state,
		Network:          domain.NetworkEthereumSepolia.CAIP2(),
		Recipient:        "0x1234567890123456789012345678901234567890",
		TransactionHash:  txHash,
		Attributes:       datatypes.JSON(`{"product_id":1}`),
		AttributesDigest: "0xdigest",
	}
}

// =============================================================================
// Catalog reads
// =============================================================================

func testGetProductByID(t *testing.T, store Store, seed seedFunc) {
	ctx := context.Background()
	artisan := buildTestArtisan(1001, "Maria", "Lopez")
	seed(t, artisan, buildTestProduct(2001, "Chalina", int64Ptr(artisan.ID), nil))

	product, err := store.GetProductByID(ctx, 2001)
	require.NoError(t, err)
	require.NotNil(t, product)
	assert.Equal(t, "Chalina", product.Name)
	assert.False(t, product.HasToken)
	assert.Nil(t, product.TokenID)
	assert.Nil(t, product.TransactionHash)
	assert.Equal(t, []string{"photos/front.jpg"}, []string(product.Photos))

	missing, err := store.GetProductByID(ctx, 999999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func testGetArtisanByID(t *testing.T, store Store, seed seedFunc) {
	ctx := context.Background()
	coop := &schema.Cooperative{ID: 1101, Name: "Asociación Lucanas", Community: "Lucanas"}
	artisan := buildTestArtisan(1001, "Maria", "Lopez")
	artisan.CooperativeID = int64Ptr(coop.ID)
	seed(t, coop, artisan)

	got, err := store.GetArtisanByID(ctx, artisan.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Maria Lopez", got.FullName())
	require.NotNil(t, got.Cooperative)
	assert.Equal(t, "Asociación Lucanas", got.Cooperative.Name)

	missing, err := store.GetArtisanByID(ctx, 999999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func testGetProcessingCertificateByID(t *testing.T, store Store, seed seedFunc) {
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	cert := &schema.ProcessingCertificate{
		ID:     3001,
		Number: "CTPSFS-2024-007",
		Entries: []schema.TransformationEntry{
			{ID: 4002, QuantityKg: decimal.RequireFromString("1.2"), Unit: "kg", CertifiedAt: base.Add(48 * time.Hour)},
			{ID: 4001, QuantityKg: decimal.RequireFromString("0.8"), Unit: "kg", CertifiedAt: base},
		},
	}
	seed(t, cert)

	got, err := store.GetProcessingCertificateByID(ctx, cert.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "CTPSFS-2024-007", got.Number)
	require.Len(t, got.Entries, 2)
	assert.Equal(t, int64(4001), got.Entries[0].ID)
	assert.Equal(t, int64(4002), got.Entries[1].ID)
	assert.True(t, got.Entries[1].QuantityKg.Equal(decimal.RequireFromString("1.2")))

	missing, err := store.GetProcessingCertificateByID(ctx, 999999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func testGetOriginCertificates(t *testing.T, store Store, seed seedFunc) {
	ctx := context.Background()
	site := &schema.ExtractionSite{ID: 1201, Name: "Pampa Galeras"}
	other := &schema.ExtractionSite{ID: 1202, Name: "Lucanas"}
	maria := buildTestArtisan(1001, "Maria", "Lopez")
	juan := buildTestArtisan(1002, "Juan", "Quispe")
	issued := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	seed(t, site, other, maria, juan,
		buildTestOriginCertificate(5001, "COLT-001", maria.ID, int64Ptr(site.ID), intPtr(2024), issued),
		buildTestOriginCertificate(5002, "COLT-002", maria.ID, int64Ptr(site.ID), intPtr(2024), issued.Add(24*time.Hour)),
		buildTestOriginCertificate(5003, "COLT-003", maria.ID, int64Ptr(other.ID), intPtr(2024), issued),
		buildTestOriginCertificate(5004, "COLT-004", maria.ID, int64Ptr(site.ID), intPtr(2023), issued),
		buildTestOriginCertificate(5005, "COLT-005", juan.ID, int64Ptr(site.ID), intPtr(2024), issued),
	)

	t.Run("artisan only", func(t *testing.T) {
		certs, err := store.GetOriginCertificates(ctx, OriginCertificateFilter{ArtisanID: maria.ID})
		require.NoError(t, err)
		require.Len(t, certs, 4)
		assert.Equal(t, "COLT-002", certs[0].Number)
		for _, c := range certs {
			assert.Equal(t, maria.ID, c.ArtisanID)
		}
	})

	t.Run("site and year", func(t *testing.T) {
		certs, err := store.GetOriginCertificates(ctx, OriginCertificateFilter{
			ArtisanID:        maria.ID,
			ExtractionSiteID: int64Ptr(site.ID),
			Year:             intPtr(2024),
		})
		require.NoError(t, err)
		require.Len(t, certs, 2)
		assert.Equal(t, "COLT-002", certs[0].Number)
		assert.Equal(t, "COLT-001", certs[1].Number)
	})

	t.Run("no match", func(t *testing.T) {
		certs, err := store.GetOriginCertificates(ctx, OriginCertificateFilter{
			ArtisanID: maria.ID,
			Year:      intPtr(2019),
		})
		require.NoError(t, err)
		assert.Empty(t, certs)
	})
}

func testReplaceTransformationEntries(t *testing.T, store Store, seed seedFunc) {
	ctx := context.Background()
	certifiedAt := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	cert := &schema.ProcessingCertificate{
		ID:     3001,
		Number: "CTPSFS-2024-007",
		Entries: []schema.TransformationEntry{
			{ID: 4001, QuantityKg: decimal.RequireFromString("0.8"), Unit: "kg", CertifiedAt: certifiedAt},
		},
	}
	seed(t, cert)

	t.Run("empty set rejected", func(t *testing.T) {
		err := store.ReplaceTransformationEntries(ctx, cert.ID, nil)
		require.ErrorIs(t, err, domain.ErrEmptyTransformationEntries)

		got, err := store.GetProcessingCertificateByID(ctx, cert.ID)
		require.NoError(t, err)
		require.Len(t, got.Entries, 1)
		assert.Equal(t, int64(4001), got.Entries[0].ID)
	})

	t.Run("replaces the whole set", func(t *testing.T) {
		err := store.ReplaceTransformationEntries(ctx, cert.ID, []schema.TransformationEntry{
			{Description: "hilado", QuantityKg: decimal.RequireFromString("1.0"), CertifiedAt: certifiedAt},
			{Description: "tejido", QuantityKg: decimal.RequireFromString("1.2"), CertifiedAt: certifiedAt.Add(time.Hour)},
		})
		require.NoError(t, err)

		got, err := store.GetProcessingCertificateByID(ctx, cert.ID)
		require.NoError(t, err)
		require.Len(t, got.Entries, 2)
		assert.Equal(t, "hilado", got.Entries[0].Description)
		assert.Equal(t, "tejido", got.Entries[1].Description)
		for _, e := range got.Entries {
			assert.NotEqual(t, int64(4001), e.ID)
			assert.Equal(t, cert.ID, e.ProcessingCertificateID)
			assert.Equal(t, domain.UNIT_KILOGRAM, e.Unit)
		}
	})

	t.Run("unknown certificate", func(t *testing.T) {
		err := store.ReplaceTransformationEntries(ctx, 999999, []schema.TransformationEntry{
			{QuantityKg: decimal.RequireFromString("1.0"), CertifiedAt: certifiedAt},
		})
		require.Error(t, err)
	})
}

// =============================================================================
// Tokenization state
// =============================================================================

func testMarkProductTokenized(t *testing.T, store Store, seed seedFunc) {
	ctx := context.Background()
	seed(t, buildTestProduct(2001, "Chalina", nil, nil))

	t.Run("missing transaction hash", func(t *testing.T) {
		applied, err := store.MarkProductTokenized(ctx, MarkTokenizedInput{ProductID: 2001})
		require.ErrorIs(t, err, domain.ErrMissingTransactionHash)
		assert.False(t, applied)

		product, err := store.GetProductByID(ctx, 2001)
		require.NoError(t, err)
		assert.False(t, product.HasToken)
	})

	t.Run("first update applies", func(t *testing.T) {
		applied, err := store.MarkProductTokenized(ctx, MarkTokenizedInput{
			ProductID:       2001,
			TransactionHash: "0xaaa",
			TokenID:         stringPtr("17"),
		})
		require.NoError(t, err)
		assert.True(t, applied)

		product, err := store.GetProductByID(ctx, 2001)
		require.NoError(t, err)
		assert.True(t, product.HasToken)
		require.NotNil(t, product.TransactionHash)
		assert.Equal(t, "0xaaa", *product.TransactionHash)
		require.NotNil(t, product.TokenID)
		assert.Equal(t, "17", *product.TokenID)
	})

	t.Run("second update is rejected and leaves fields intact", func(t *testing.T) {
		applied, err := store.MarkProductTokenized(ctx, MarkTokenizedInput{
			ProductID:       2001,
			TransactionHash: "0xbbb",
			TokenID:         stringPtr("18"),
		})
		require.NoError(t, err)
		assert.False(t, applied)

		product, err := store.GetProductByID(ctx, 2001)
		require.NoError(t, err)
		assert.Equal(t, "0xaaa", *product.TransactionHash)
		assert.Equal(t, "17", *product.TokenID)
	})

	t.Run("unknown product", func(t *testing.T) {
		applied, err := store.MarkProductTokenized(ctx, MarkTokenizedInput{
			ProductID:       999999,
			TransactionHash: "0xccc",
		})
		require.ErrorIs(t, err, domain.ErrProductNotFound)
		assert.False(t, applied)
	})
}

func testSetProductTokenID(t *testing.T, store Store, seed seedFunc) {
	ctx := context.Background()
	seed(t, buildTestProduct(2001, "Chalina", nil, nil), buildTestProduct(2002, "Poncho", nil, nil))

	applied, err := store.MarkProductTokenized(ctx, MarkTokenizedInput{ProductID: 2001, TransactionHash: "0xaaa"})
	require.NoError(t, err)
	require.True(t, applied)

	product, err := store.GetProductByID(ctx, 2001)
	require.NoError(t, err)
	assert.True(t, product.HasToken)
	assert.Nil(t, product.TokenID)

	// wrong transaction
	set, err := store.SetProductTokenID(ctx, 2001, "0xbbb", "17")
	require.NoError(t, err)
	assert.False(t, set)

	// not tokenized
	set, err = store.SetProductTokenID(ctx, 2002, "0xaaa", "17")
	require.NoError(t, err)
	assert.False(t, set)

	set, err = store.SetProductTokenID(ctx, 2001, "0xaaa", "17")
	require.NoError(t, err)
	assert.True(t, set)

	// token id is only filled once
	set, err = store.SetProductTokenID(ctx, 2001, "0xaaa", "18")
	require.NoError(t, err)
	assert.False(t, set)

	product, err = store.GetProductByID(ctx, 2001)
	require.NoError(t, err)
	require.NotNil(t, product.TokenID)
	assert.Equal(t, "17", *product.TokenID)
}

// =============================================================================
// Mint attempt journal
// =============================================================================

func testMintAttempts(t *testing.T, store Store, seed seedFunc) {
	ctx := context.Background()
	seed(t, buildTestProduct(2001, "Chalina", nil, nil), buildTestProduct(2002, "Poncho", nil, nil))

	first := buildTestMintAttempt("01J0000000000000000000000A", 2001, schema.MintAttemptStateSubmitting, nil)
	second := buildTestMintAttempt("01J0000000000000000000000B", 2002, schema.MintAttemptStateAwaitingConfirmation, stringPtr("0xbbb"))
	require.NoError(t, store.CreateMintAttempt(ctx, first))
	require.NoError(t, store.CreateMintAttempt(ctx, second))

	t.Run("lookup by transaction hash", func(t *testing.T) {
		got, err := store.GetMintAttemptByTxHash(ctx, "0xbbb")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, second.ID, got.ID)
		assert.Equal(t, int64(2002), got.ProductID)

		missing, err := store.GetMintAttemptByTxHash(ctx, "0xzzz")
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("update state", func(t *testing.T) {
		err := store.UpdateMintAttempt(ctx, first.ID, UpdateMintAttemptInput{
			State:           schema.MintAttemptStateConfirmationTimedOut,
			TransactionHash: stringPtr("0xaaa"),
			LastError:       stringPtr("confirmation timed out"),
		})
		require.NoError(t, err)

		got, err := store.GetMintAttemptByTxHash(ctx, "0xaaa")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, schema.MintAttemptStateConfirmationTimedOut, got.State)
		require.NotNil(t, got.LastError)
		assert.Equal(t, "confirmation timed out", *got.LastError)
		assert.Nil(t, got.TokenID)
	})

	t.Run("update unknown attempt", func(t *testing.T) {
		err := store.UpdateMintAttempt(ctx, "01J00000000000000000000000", UpdateMintAttemptInput{State: schema.MintAttemptStateFailed})
		require.Error(t, err)
	})

	t.Run("filter", func(t *testing.T) {
		pending, err := store.GetMintAttempts(ctx, MintAttemptFilter{States: schema.PendingMintAttemptStates})
		require.NoError(t, err)
		require.Len(t, pending, 2)

		byProduct, err := store.GetMintAttempts(ctx, MintAttemptFilter{ProductID: int64Ptr(2002)})
		require.NoError(t, err)
		require.Len(t, byProduct, 1)
		assert.Equal(t, second.ID, byProduct[0].ID)

		past := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
		none, err := store.GetMintAttempts(ctx, MintAttemptFilter{UpdatedBefore: &past})
		require.NoError(t, err)
		assert.Empty(t, none)

		limited, err := store.GetMintAttempts(ctx, MintAttemptFilter{Limit: 1})
		require.NoError(t, err)
		assert.Len(t, limited, 1)
	})
}

// RunStoreTests runs all store tests against a Store implementation
func RunStoreTests(t *testing.T, initDB func(t *testing.T) (Store, seedFunc), cleanupDB func(t *testing.T)) {
	tests := []struct {
		name string
		fn   func(*testing.T, Store, seedFunc)
	}{
		{"GetProductByID", testGetProductByID},
		{"GetArtisanByID", testGetArtisanByID},
		{"GetProcessingCertificateByID", testGetProcessingCertificateByID},
		{"GetOriginCertificates", testGetOriginCertificates},
		{"ReplaceTransformationEntries", testReplaceTransformationEntries},
		{"MarkProductTokenized", testMarkProductTokenized},
		{"SetProductTokenID", testSetProductTokenID},
		{"MintAttempts", testMintAttempts},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, seed := initDB(t)
			defer cleanupDB(t)
			tt.fn(t, store, seed)
		})
	}
}
