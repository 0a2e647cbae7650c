package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/yourorg/estatehub/internal/domain"
	"github.com/yourorg/estatehub/internal/observability/metrics"
	"github.com/yourorg/estatehub/pkg/cache"
)

// PropertyService resolves property identifiers and serves listing queries
type PropertyService struct {
	propertyRepo domain.PropertyRepository
	listCache    *cache.Cache[[]*domain.Property]
	listTTL      time.Duration
	logger       *slog.Logger
}

// NewPropertyService creates a new property service
func NewPropertyService(
	propertyRepo domain.PropertyRepository,
	listTTL time.Duration,
	logger *slog.Logger,
) *PropertyService {
	if logger == nil {
		logger = slog.Default()
	}

	return &PropertyService{
		propertyRepo: propertyRepo,
		listCache:    cache.New[[]*domain.Property](),
		listTTL:      listTTL,
		logger:       logger,
	}
}

// Resolve maps a caller-supplied identifier string to exactly one property.
//
// The identifier is classified first: a 24-hex string is dispatched to the
// native-identifier lookup, anything else goes straight to the
// human-readable lookup. A malformed value therefore never reaches the
// native-id lookup, and a malformed-identifier store error can never leak
// out as a generic server error. A native-format identifier that matches no
// record falls through to the human-readable lookup; the two identifier
// spaces are disjoint, so order matters only for efficiency.
func (s *PropertyService) Resolve(ctx context.Context, identifier string) (*domain.Property, error) {
	if identifier == "" {
		return nil, fmt.Errorf("%w: property identifier is required", ErrInvalidInput)
	}

	if domain.IsNativeID(identifier) {
		p, err := s.propertyRepo.GetByID(ctx, identifier)
		if err == nil {
			metrics.ObserveResolution("native")
			return p, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}

	p, err := s.propertyRepo.GetByPropertyID(ctx, identifier)
	if err == nil {
		metrics.ObserveResolution("property_id")
		return p, nil
	}
	if errors.Is(err, domain.ErrNotFound) {
		metrics.ObserveResolution("miss")
		return nil, fmt.Errorf("property %q: %w", identifier, domain.ErrNotFound)
	}
	return nil, err
}

// List returns properties matching the filter. Results are cached briefly:
// listings change rarely compared to how often they are browsed.
func (s *PropertyService) List(ctx context.Context, filter domain.PropertyFilter) ([]*domain.Property, error) {
	key := listCacheKey(filter)
	if cached, ok := s.listCache.Get(key); ok {
		return cached, nil
	}

	properties, err := s.propertyRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	s.listCache.Set(key, properties, s.listTTL)
	return properties, nil
}

// CreateListing persists a new property and drops stale cached listings
func (s *PropertyService) CreateListing(ctx context.Context, p *domain.Property) error {
	if p.Title == "" || p.Address == "" || p.City == "" {
		return fmt.Errorf("%w: title, address and city are required", ErrInvalidInput)
	}
	if p.Price <= 0 {
		return fmt.Errorf("%w: price must be positive", ErrInvalidInput)
	}
	if p.PropertyID != "" && domain.IsNativeID(p.PropertyID) {
		// A human-readable id that parses as a native id would make the two
		// identifier spaces overlap and break resolution.
		return fmt.Errorf("%w: propertyId must not use the native identifier format", ErrInvalidInput)
	}

	p.ID = domain.NewID()
	if err := s.propertyRepo.Create(ctx, p); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return fmt.Errorf("%w: propertyId already in use", ErrInvalidInput)
		}
		return err
	}

	s.listCache.Clear()
	s.logger.Info("property listed",
		slog.String("id", p.ID),
		slog.String("property_id", p.PropertyID),
		slog.String("city", p.City),
	)
	return nil
}

func listCacheKey(f domain.PropertyFilter) string {
	return fmt.Sprintf("list:%s|%s|%g|%g|%d|%d|%s|%s",
		f.Query, strings.ToLower(f.City), f.MinPrice, f.MaxPrice,
		f.Bedrooms, f.Bathrooms, f.PropertyType, strings.Join(f.Features, ","),
	)
}
