package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/vicuna-trace/ledger/internal/domain"
	"github.com/vicuna-trace/ledger/internal/store/schema"
)

type pgStore struct {
	db *gorm.DB
}

// NewPGStore creates a new PostgreSQL store instance
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// ConfigureConnectionPool configures the connection pool settings for a GORM database connection.
// Zero values fall back to the defaults of NormalizeConnectionPoolSettings.
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime =
		NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// NormalizeConnectionPoolSettings applies defaults and clamps pool settings.
//
// Defaults (when zero):
//   - MaxOpenConns: 10
//   - MaxIdleConns: 2
//   - ConnMaxLifetime: 5 minutes
//   - ConnMaxIdleTime: 10 minutes
func NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (int, int, time.Duration, time.Duration) {
	if maxOpenConns == 0 {
		maxOpenConns = 10
	}
	if maxIdleConns == 0 {
		maxIdleConns = 2
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}

	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	return maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime
}

// =============================================================================
// Catalog reads
// =============================================================================

// GetProductByID retrieves a product by id
func (s *pgStore) GetProductByID(ctx context.Context, id int64) (*schema.Product, error) {
	var product schema.Product
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &product, nil
}

// GetArtisanByID retrieves an artisan with its cooperative
func (s *pgStore) GetArtisanByID(ctx context.Context, id int64) (*schema.Artisan, error) {
	var artisan schema.Artisan
	err := s.db.WithContext(ctx).
		Preload("Cooperative").
		Where("id = ?", id).
		First(&artisan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get artisan: %w", err)
	}
	return &artisan, nil
}

// GetProcessingCertificateByID retrieves a processing certificate with its transformation entries
func (s *pgStore) GetProcessingCertificateByID(ctx context.Context, id int64) (*schema.ProcessingCertificate, error) {
	var cert schema.ProcessingCertificate
	err := s.db.WithContext(ctx).
		Preload("Entries", func(db *gorm.DB) *gorm.DB {
			return db.Order("certified_at ASC, id ASC")
		}).
		Where("id = ?", id).
		First(&cert).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get processing certificate: %w", err)
	}
	return &cert, nil
}

// GetOriginCertificates retrieves origin certificates for an artisan, narrowed by site and year when given
func (s *pgStore) GetOriginCertificates(ctx context.Context, filter OriginCertificateFilter) ([]schema.OriginCertificate, error) {
	query := s.db.WithContext(ctx).
		Model(&schema.OriginCertificate{}).
		Where("artisan_id = ?", filter.ArtisanID)

	if filter.ExtractionSiteID != nil {
		query = query.Where("extraction_site_id = ?", *filter.ExtractionSiteID)
	}
	if filter.Year != nil {
		query = query.Where("year = ?", *filter.Year)
	}

	var certs []schema.OriginCertificate
	if err := query.Order("issued_at DESC, id DESC").Find(&certs).Error; err != nil {
		return nil, fmt.Errorf("failed to get origin certificates: %w", err)
	}

	return certs, nil
}

// ReplaceTransformationEntries replaces the whole entry set of a processing certificate
func (s *pgStore) ReplaceTransformationEntries(ctx context.Context, certificateID int64, entries []schema.TransformationEntry) error {
	if len(entries) == 0 {
		return domain.ErrEmptyTransformationEntries
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&schema.ProcessingCertificate{}).Where("id = ?", certificateID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check processing certificate: %w", err)
		}
		if count == 0 {
			return fmt.Errorf("processing certificate not found: %d", certificateID)
		}

		if err := tx.Where("processing_certificate_id = ?", certificateID).
			Delete(&schema.TransformationEntry{}).Error; err != nil {
			return fmt.Errorf("failed to delete transformation entries: %w", err)
		}

		replacement := make([]schema.TransformationEntry, len(entries))
		for i, entry := range entries {
			entry.ID = 0
			entry.ProcessingCertificateID = certificateID
			if entry.Unit == "" {
				entry.Unit = domain.UNIT_KILOGRAM
			}
			replacement[i] = entry
		}

		if err := tx.Create(&replacement).Error; err != nil {
			return fmt.Errorf("failed to insert transformation entries: %w", err)
		}

		return nil
	})
}

// =============================================================================
// Tokenization state
// =============================================================================

// MarkProductTokenized applies the tokenization fields in a single conditional update.
// The WHERE clause on has_token makes concurrent callers race on one row: exactly one sees RowsAffected == 1.
func (s *pgStore) MarkProductTokenized(ctx context.Context, input MarkTokenizedInput) (bool, error) {
	if input.TransactionHash == "" {
		return false, domain.ErrMissingTransactionHash
	}

	result := s.db.WithContext(ctx).
		Model(&schema.Product{}).
		Where("id = ? AND has_token = ?", input.ProductID, false).
		Updates(map[string]interface{}{
			"has_token":        true,
			"transaction_hash": input.TransactionHash,
			"token_id":         input.TokenID,
			"updated_at":       gorm.Expr("now()"),
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to mark product tokenized: %w", result.Error)
	}

	if result.RowsAffected == 1 {
		return true, nil
	}

	exists, err := s.productExists(ctx, input.ProductID)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, domain.ErrProductNotFound
	}

	return false, nil
}

// SetProductTokenID records a late-discovered token id for the transaction that tokenized the product
func (s *pgStore) SetProductTokenID(ctx context.Context, productID int64, transactionHash string, tokenID string) (bool, error) {
	result := s.db.WithContext(ctx).
		Model(&schema.Product{}).
		Where("id = ? AND has_token = ? AND transaction_hash = ? AND token_id IS NULL", productID, true, transactionHash).
		Updates(map[string]interface{}{
			"token_id":   tokenID,
			"updated_at": gorm.Expr("now()"),
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to set product token id: %w", result.Error)
	}

	return result.RowsAffected == 1, nil
}

func (s *pgStore) productExists(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&schema.Product{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check product: %w", err)
	}
	return count > 0, nil
}

// =============================================================================
// Mint attempt journal
// =============================================================================

// CreateMintAttempt records a new mint attempt
func (s *pgStore) CreateMintAttempt(ctx context.Context, attempt *schema.MintAttempt) error {
	if err := s.db.WithContext(ctx).Create(attempt).Error; err != nil {
		return fmt.Errorf("failed to create mint attempt: %w", err)
	}
	return nil
}

// UpdateMintAttempt updates the state and optional fields of a mint attempt
func (s *pgStore) UpdateMintAttempt(ctx context.Context, id string, input UpdateMintAttemptInput) error {
	updates := map[string]interface{}{
		"state":      input.State,
		"updated_at": gorm.Expr("now()"),
	}
	if input.TransactionHash != nil {
		updates["transaction_hash"] = *input.TransactionHash
	}
	if input.TokenID != nil {
		updates["token_id"] = *input.TokenID
	}
	if input.LastError != nil {
		updates["last_error"] = *input.LastError
	}

	result := s.db.WithContext(ctx).
		Model(&schema.MintAttempt{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update mint attempt: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("mint attempt not found: %s", id)
	}

	return nil
}

// GetMintAttemptByTxHash retrieves the attempt that submitted the transaction
func (s *pgStore) GetMintAttemptByTxHash(ctx context.Context, txHash string) (*schema.MintAttempt, error) {
	var attempt schema.MintAttempt
	err := s.db.WithContext(ctx).Where("transaction_hash = ?", txHash).First(&attempt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get mint attempt: %w", err)
	}
	return &attempt, nil
}

// GetMintAttempts lists mint attempts matching the filter
func (s *pgStore) GetMintAttempts(ctx context.Context, filter MintAttemptFilter) ([]schema.MintAttempt, error) {
	query := s.db.WithContext(ctx).Model(&schema.MintAttempt{})

	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if len(filter.States) > 0 {
		query = query.Where("state IN ?", filter.States)
	}
	if filter.UpdatedBefore != nil {
		query = query.Where("updated_at < ?", *filter.UpdatedBefore)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var attempts []schema.MintAttempt
	if err := query.Order("updated_at ASC, id ASC").Find(&attempts).Error; err != nil {
		return nil, fmt.Errorf("failed to get mint attempts: %w", err)
	}

	return attempts, nil
}
