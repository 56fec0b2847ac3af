// Package service orchestrates farmer validation, caching, and persistence.
// No business rule is duplicated between use cases and the validator: the
// use cases only order checks and translate store sentinels into domain
// errors.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"plantas/internal/farmer/cache"
	farmermetrics "plantas/internal/farmer/metrics"
	"plantas/internal/farmer/models"
	"plantas/internal/farmer/store"
	"plantas/pkg/domain"
	dErrors "plantas/pkg/errors"
	"plantas/pkg/sentinel"
)

// Pagination bounds for listing, mirrored by the HTTP boundary.
const (
	DefaultListLimit = 100
	MaxListLimit     = 1000
)

// Service implements the farmer use cases over a store port.
type Service struct {
	store   store.Store
	cache   *cache.RecordCache
	metrics *farmermetrics.Metrics
	logger  *slog.Logger
}

type serviceConfig struct {
	cache   *cache.RecordCache
	metrics *farmermetrics.Metrics
	logger  *slog.Logger
}

// Option configures optional service collaborators.
type Option func(*serviceConfig)

// WithCache attaches a read cache for DNI lookups.
func WithCache(c *cache.RecordCache) Option {
	return func(cfg *serviceConfig) { cfg.cache = c }
}

// WithMetrics attaches module metrics.
func WithMetrics(m *farmermetrics.Metrics) Option {
	return func(cfg *serviceConfig) { cfg.metrics = m }
}

// WithLogger attaches a structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *serviceConfig) { cfg.logger = l }
}

func New(s store.Store, opts ...Option) *Service {
	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:   s,
		cache:   cfg.cache,
		metrics: cfg.metrics,
		logger:  logger,
	}
}

// Create validates the record, rejects duplicate identifiers, and persists.
// The existence pre-check is best-effort; a concurrent create racing past it
// is caught by the store's unique constraint and reported identically.
func (s *Service) Create(ctx context.Context, f *models.Farmer) (*models.Farmer, error) {
	if err := Validate(f); err != nil {
		return nil, err
	}

	exists, err := s.store.Exists(ctx, f.DNI)
	if err != nil {
		return nil, wrapStoreErr(err, "failed to check farmer existence")
	}
	if exists {
		return nil, dErrors.Newf(dErrors.CodeConflict, "farmer with dni %s already exists", f.DNI)
	}

	start := time.Now()
	created, err := s.store.Save(ctx, f)
	s.metrics.ObserveStore("save", start)
	if err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.Newf(dErrors.CodeConflict, "farmer with dni %s already exists", f.DNI)
		}
		return nil, wrapStoreErr(err, "failed to save farmer")
	}

	s.metrics.IncrementCreated()
	s.logger.InfoContext(ctx, "farmer created", "dni", created.DNI.String())
	return created, nil
}

// GetByDNI normalizes the raw identifier and returns the matching record.
func (s *Service) GetByDNI(ctx context.Context, raw string) (*models.Farmer, error) {
	dni, err := domain.ParseDNI(raw)
	if err != nil {
		return nil, err
	}

	if f, ok := s.cache.Get(ctx, dni); ok {
		s.metrics.RecordCacheHit()
		return f, nil
	}
	s.metrics.RecordCacheMiss()

	start := time.Now()
	f, err := s.store.FindByDNI(ctx, dni)
	s.metrics.ObserveStore("find", start)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "farmer with dni %s not found", dni)
		}
		return nil, wrapStoreErr(err, "failed to find farmer")
	}

	s.cache.Set(ctx, f)
	return f, nil
}

// Update replaces the record addressed by the path identifier. The record's
// DNI is forced to the normalized path DNI before validation so that an
// update can never change the primary key through the payload.
func (s *Service) Update(ctx context.Context, rawDNI string, f *models.Farmer) (*models.Farmer, error) {
	dni, err := domain.ParseDNI(rawDNI)
	if err != nil {
		return nil, err
	}

	exists, err := s.store.Exists(ctx, dni)
	if err != nil {
		return nil, wrapStoreErr(err, "failed to check farmer existence")
	}
	if !exists {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "farmer with dni %s not found", dni)
	}

	// The path identifier always wins over whatever the payload carried.
	f.DNI = dni

	if err := Validate(f); err != nil {
		return nil, err
	}

	start := time.Now()
	updated, err := s.store.Update(ctx, f)
	s.metrics.ObserveStore("update", start)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "farmer with dni %s not found", dni)
		}
		return nil, wrapStoreErr(err, "failed to update farmer")
	}

	s.cache.Invalidate(ctx, dni)
	s.logger.InfoContext(ctx, "farmer updated", "dni", dni.String())
	return updated, nil
}

// Delete removes the record addressed by the raw identifier.
func (s *Service) Delete(ctx context.Context, raw string) error {
	dni, err := domain.ParseDNI(raw)
	if err != nil {
		return err
	}

	start := time.Now()
	removed, err := s.store.Delete(ctx, dni)
	s.metrics.ObserveStore("delete", start)
	if err != nil {
		return wrapStoreErr(err, "failed to delete farmer")
	}
	if !removed {
		return dErrors.Newf(dErrors.CodeNotFound, "farmer with dni %s not found", dni)
	}

	s.cache.Invalidate(ctx, dni)
	s.metrics.IncrementDeleted()
	s.logger.InfoContext(ctx, "farmer deleted", "dni", dni.String())
	return nil
}

// List returns a stable page of records. The limit defaults to
// DefaultListLimit and is clamped to [1, MaxListLimit]; negative offsets
// are treated as zero.
func (s *Service) List(ctx context.Context, limit, offset int) ([]*models.Farmer, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	start := time.Now()
	farmers, err := s.store.List(ctx, limit, offset)
	s.metrics.ObserveStore("list", start)
	if err != nil {
		return nil, wrapStoreErr(err, "failed to list farmers")
	}
	return farmers, nil
}

// Count returns the total number of records.
func (s *Service) Count(ctx context.Context) (int64, error) {
	count, err := s.store.Count(ctx)
	if err != nil {
		return 0, wrapStoreErr(err, "failed to count farmers")
	}
	return count, nil
}

// FindByLocation returns records matching the conjunctive location filter.
func (s *Service) FindByLocation(ctx context.Context, filter store.LocationFilter) ([]*models.Farmer, error) {
	start := time.Now()
	farmers, err := s.store.FindByLocation(ctx, filter)
	s.metrics.ObserveStore("find_by_location", start)
	if err != nil {
		return nil, wrapStoreErr(err, "failed to find farmers by location")
	}
	return farmers, nil
}

// wrapStoreErr wraps persistence failures exactly once so store-specific
// error types never leak past the service.
func wrapStoreErr(err error, message string) error {
	if errors.Is(err, sentinel.ErrUnavailable) {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, message)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, message)
}
