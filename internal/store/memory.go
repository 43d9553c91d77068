package store

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/vicuna-trace/ledger/internal/adapter"
	"github.com/vicuna-trace/ledger/internal/domain"
	"github.com/vicuna-trace/ledger/internal/store/schema"
)

// MemoryStore is an in-process Store used by tests and the offline tooling.
// Every method holds the store mutex so the conditional tokenization update
// is atomic just like its SQL counterpart.
type MemoryStore struct {
	mu    sync.Mutex
	clock adapter.Clock

	products       map[int64]schema.Product
	artisans       map[int64]schema.Artisan
	cooperatives   map[int64]schema.Cooperative
	processingCert map[int64]schema.ProcessingCertificate
	entries        map[int64][]schema.TransformationEntry
	originCerts    map[int64]schema.OriginCertificate
	attempts       map[string]schema.MintAttempt

	nextEntryID int64
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore(clock adapter.Clock) *MemoryStore {
	return &MemoryStore{
		clock:          clock,
		products:       map[int64]schema.Product{},
		artisans:       map[int64]schema.Artisan{},
		cooperatives:   map[int64]schema.Cooperative{},
		processingCert: map[int64]schema.ProcessingCertificate{},
		entries:        map[int64][]schema.TransformationEntry{},
		originCerts:    map[int64]schema.OriginCertificate{},
		attempts:       map[string]schema.MintAttempt{},
	}
}

// PutProduct inserts or replaces a product
func (s *MemoryStore) PutProduct(p schema.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
}

// PutArtisan inserts or replaces an artisan and its cooperative
func (s *MemoryStore) PutArtisan(a schema.Artisan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.Cooperative != nil {
		s.cooperatives[a.Cooperative.ID] = *a.Cooperative
		id := a.Cooperative.ID
		a.CooperativeID = &id
	}
	a.Cooperative = nil
	s.artisans[a.ID] = a
}

// PutProcessingCertificate inserts or replaces a processing certificate together with its entries
func (s *MemoryStore) PutProcessingCertificate(c schema.ProcessingCertificate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := make([]schema.TransformationEntry, len(c.Entries))
	for i, e := range c.Entries {
		e.ProcessingCertificateID = c.ID
		if e.ID > s.nextEntryID {
			s.nextEntryID = e.ID
		}
		entries[i] = e
	}
	c.Entries = nil
	s.processingCert[c.ID] = c
	s.entries[c.ID] = entries
}

// PutOriginCertificate inserts or replaces an origin certificate
func (s *MemoryStore) PutOriginCertificate(c schema.OriginCertificate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.originCerts[c.ID] = c
}

func (s *MemoryStore) GetProductByID(_ context.Context, id int64) (*schema.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *MemoryStore) GetArtisanByID(_ context.Context, id int64) (*schema.Artisan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.artisans[id]
	if !ok {
		return nil, nil
	}
	if a.CooperativeID != nil {
		if coop, ok := s.cooperatives[*a.CooperativeID]; ok {
			a.Cooperative = &coop
		}
	}
	return &a, nil
}

func (s *MemoryStore) GetProcessingCertificateByID(_ context.Context, id int64) (*schema.ProcessingCertificate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.processingCert[id]
	if !ok {
		return nil, nil
	}
	c.Entries = slices.Clone(s.entries[id])
	sort.SliceStable(c.Entries, func(i, j int) bool {
		if c.Entries[i].CertifiedAt.Equal(c.Entries[j].CertifiedAt) {
			return c.Entries[i].ID < c.Entries[j].ID
		}
		return c.Entries[i].CertifiedAt.Before(c.Entries[j].CertifiedAt)
	})
	return &c, nil
}

func (s *MemoryStore) GetOriginCertificates(_ context.Context, filter OriginCertificateFilter) ([]schema.OriginCertificate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var certs []schema.OriginCertificate
	for _, c := range s.originCerts {
		if c.ArtisanID != filter.ArtisanID {
			continue
		}
		if filter.ExtractionSiteID != nil && (c.ExtractionSiteID == nil || *c.ExtractionSiteID != *filter.ExtractionSiteID) {
			continue
		}
		if filter.Year != nil && (c.Year == nil || *c.Year != *filter.Year) {
			continue
		}
		certs = append(certs, c)
	}

	sort.Slice(certs, func(i, j int) bool {
		if certs[i].IssuedAt.Equal(certs[j].IssuedAt) {
			return certs[i].ID > certs[j].ID
		}
		return certs[i].IssuedAt.After(certs[j].IssuedAt)
	})

	return certs, nil
}

func (s *MemoryStore) ReplaceTransformationEntries(_ context.Context, certificateID int64, entries []schema.TransformationEntry) error {
	if len(entries) == 0 {
		return domain.ErrEmptyTransformationEntries
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.processingCert[certificateID]; !ok {
		return fmt.Errorf("processing certificate not found: %d", certificateID)
	}

	replacement := make([]schema.TransformationEntry, len(entries))
	for i, e := range entries {
		s.nextEntryID++
		e.ID = s.nextEntryID
		e.ProcessingCertificateID = certificateID
		if e.Unit == "" {
			e.Unit = domain.UNIT_KILOGRAM
		}
		e.CreatedAt = s.clock.Now()
		replacement[i] = e
	}
	s.entries[certificateID] = replacement

	return nil
}

func (s *MemoryStore) MarkProductTokenized(_ context.Context, input MarkTokenizedInput) (bool, error) {
	if input.TransactionHash == "" {
		return false, domain.ErrMissingTransactionHash
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[input.ProductID]
	if !ok {
		return false, domain.ErrProductNotFound
	}
	if p.HasToken {
		return false, nil
	}

	txHash := input.TransactionHash
	p.HasToken = true
	p.TransactionHash = &txHash
	if input.TokenID != nil {
		tokenID := *input.TokenID
		p.TokenID = &tokenID
	}
	p.UpdatedAt = s.clock.Now()
	s.products[p.ID] = p

	return true, nil
}

func (s *MemoryStore) SetProductTokenID(_ context.Context, productID int64, transactionHash string, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[productID]
	if !ok || !p.HasToken || p.TokenID != nil || p.TransactionHash == nil || *p.TransactionHash != transactionHash {
		return false, nil
	}

	p.TokenID = &tokenID
	p.UpdatedAt = s.clock.Now()
	s.products[productID] = p

	return true, nil
}

func (s *MemoryStore) CreateMintAttempt(_ context.Context, attempt *schema.MintAttempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.attempts[attempt.ID]; ok {
		return fmt.Errorf("failed to create mint attempt: duplicate id %s", attempt.ID)
	}
	if attempt.TransactionHash != nil {
		if s.attemptByTxHashLocked(*attempt.TransactionHash) != nil {
			return fmt.Errorf("failed to create mint attempt: duplicate transaction hash %s", *attempt.TransactionHash)
		}
	}

	now := s.clock.Now()
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = now
	}
	if attempt.UpdatedAt.IsZero() {
		attempt.UpdatedAt = now
	}
	s.attempts[attempt.ID] = *attempt

	return nil
}

func (s *MemoryStore) UpdateMintAttempt(_ context.Context, id string, input UpdateMintAttemptInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	attempt, ok := s.attempts[id]
	if !ok {
		return fmt.Errorf("mint attempt not found: %s", id)
	}

	attempt.State = input.State
	if input.TransactionHash != nil {
		txHash := *input.TransactionHash
		attempt.TransactionHash = &txHash
	}
	if input.TokenID != nil {
		tokenID := *input.TokenID
		attempt.TokenID = &tokenID
	}
	if input.LastError != nil {
		lastErr := *input.LastError
		attempt.LastError = &lastErr
	}
	attempt.UpdatedAt = s.clock.Now()
	s.attempts[id] = attempt

	return nil
}

func (s *MemoryStore) GetMintAttemptByTxHash(_ context.Context, txHash string) (*schema.MintAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attemptByTxHashLocked(txHash), nil
}

func (s *MemoryStore) attemptByTxHashLocked(txHash string) *schema.MintAttempt {
	for _, a := range s.attempts {
		if a.TransactionHash != nil && *a.TransactionHash == txHash {
			return &a
		}
	}
	return nil
}

func (s *MemoryStore) GetMintAttempts(_ context.Context, filter MintAttemptFilter) ([]schema.MintAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var attempts []schema.MintAttempt
	for _, a := range s.attempts {
		if filter.ProductID != nil && a.ProductID != *filter.ProductID {
			continue
		}
		if len(filter.States) > 0 && !slices.Contains(filter.States, a.State) {
			continue
		}
		if filter.UpdatedBefore != nil && !a.UpdatedAt.Before(*filter.UpdatedBefore) {
			continue
		}
		attempts = append(attempts, a)
	}

	sort.Slice(attempts, func(i, j int) bool {
		if attempts[i].UpdatedAt.Equal(attempts[j].UpdatedAt) {
			return attempts[i].ID < attempts[j].ID
		}
		return attempts[i].UpdatedAt.Before(attempts[j].UpdatedAt)
	})

	if filter.Limit > 0 && len(attempts) > filter.Limit {
		attempts = attempts[:filter.Limit]
	}

	return attempts, nil
}
