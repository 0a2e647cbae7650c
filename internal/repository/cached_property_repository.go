package repository

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/yourorg/estatehub/internal/domain"
	"github.com/yourorg/estatehub/internal/infrastructure/redis"
	"github.com/yourorg/estatehub/internal/observability/metrics"
	"github.com/yourorg/estatehub/internal/reliability/circuitbreaker"
)

// CachedPropertyRepository is a read-through Redis cache in front of a
// PropertyRepository. Point lookups (by native id and by human-readable id)
// are cached; list queries always hit the store. A circuit breaker fast-fails
// cache access when Redis misbehaves so property reads degrade to uncached
// instead of stalling.
type CachedPropertyRepository struct {
	inner   domain.PropertyRepository
	redis   *redis.Client
	breaker *circuitbreaker.CircuitBreaker
	ttl     time.Duration
	logger  *slog.Logger
}

// NewCachedPropertyRepository wraps inner with a Redis read-through cache
func NewCachedPropertyRepository(inner domain.PropertyRepository, redisClient *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedPropertyRepository {
	if logger == nil {
		logger = slog.Default()
	}

	breaker := circuitbreaker.NewCacheBreaker()
	breaker.SetStateChangeCallback(func(from, to circuitbreaker.State) {
		logger.Warn("property cache breaker state changed",
			"from", from.String(),
			"to", to.String())
	})

	return &CachedPropertyRepository{
		inner:   inner,
		redis:   redisClient,
		breaker: breaker,
		ttl:     ttl,
		logger:  logger,
	}
}

// Create writes through and invalidates cached identifiers for the property
func (r *CachedPropertyRepository) Create(ctx context.Context, p *domain.Property) error {
	if err := r.inner.Create(ctx, p); err != nil {
		return err
	}
	r.invalidate(ctx, p)
	return nil
}

// GetByID retrieves a property by native identifier, cache first
func (r *CachedPropertyRepository) GetByID(ctx context.Context, id string) (*domain.Property, error) {
	return r.lookup(ctx, "property:id:"+id, func() (*domain.Property, error) {
		return r.inner.GetByID(ctx, id)
	})
}

// GetByPropertyID retrieves a property by human-readable identifier, cache first
func (r *CachedPropertyRepository) GetByPropertyID(ctx context.Context, propertyID string) (*domain.Property, error) {
	return r.lookup(ctx, "property:pid:"+propertyID, func() (*domain.Property, error) {
		return r.inner.GetByPropertyID(ctx, propertyID)
	})
}

// List passes through to the store
func (r *CachedPropertyRepository) List(ctx context.Context, filter domain.PropertyFilter) ([]*domain.Property, error) {
	return r.inner.List(ctx, filter)
}

// Count passes through to the store
func (r *CachedPropertyRepository) Count(ctx context.Context) (int, error) {
	return r.inner.Count(ctx)
}

func (r *CachedPropertyRepository) lookup(ctx context.Context, key string, fetch func() (*domain.Property, error)) (*domain.Property, error) {
	if r.breaker.AllowRequest() {
		data, err := r.redis.Get(ctx, key)
		switch {
		case err == nil:
			r.breaker.RecordSuccess()
			var p domain.Property
			if err := json.Unmarshal([]byte(data), &p); err == nil {
				metrics.ObserveCacheOp("hit")
				return &p, nil
			}
			// Corrupt entry: drop it and fall through to the store
			_ = r.redis.Delete(ctx, key)
		case redis.IsMiss(err):
			r.breaker.RecordSuccess()
			metrics.ObserveCacheOp("miss")
		default:
			r.breaker.RecordFailure()
			metrics.ObserveCacheOp("error")
			r.logger.Warn("property cache read failed", slog.String("key", key), slog.String("error", err.Error()))
		}
	} else {
		metrics.ObserveCacheOp("skip")
	}

	p, err := fetch()
	if err != nil {
		return nil, err
	}

	if r.breaker.AllowRequest() {
		if data, err := json.Marshal(p); err == nil {
			if err := r.redis.Set(ctx, key, string(data), r.ttl); err != nil {
				r.breaker.RecordFailure()
				r.logger.Warn("property cache write failed", slog.String("key", key), slog.String("error", err.Error()))
			} else {
				r.breaker.RecordSuccess()
			}
		}
	}

	return p, nil
}

func (r *CachedPropertyRepository) invalidate(ctx context.Context, p *domain.Property) {
	keys := []string{"property:id:" + p.ID}
	if p.PropertyID != "" {
		keys = append(keys, "property:pid:"+p.PropertyID)
	}
	if err := r.redis.Delete(ctx, keys...); err != nil {
		r.logger.Warn("property cache invalidation failed", slog.String("error", err.Error()))
	}
}
