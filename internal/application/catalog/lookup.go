package catalog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/inventra/backend/internal/application/ports"
)

// Supplier is the subset of the partner catalog the order flow needs
type Supplier struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
	Active bool      `json:"active"`
}

// Lookup resolves suppliers from the partner catalog. Implementations fail
// with UPSTREAM_UNAVAILABLE when the catalog cannot be reached.
type Lookup interface {
	Supplier(ctx context.Context, tenantID, supplierID uuid.UUID) (*Supplier, error)
}

const cacheNamespace = "catalog-suppliers"

// CachedLookup decorates a Lookup with a TTL cache so order validation does
// not hammer the catalog. Only positive results are cached.
type CachedLookup struct {
	inner Lookup
	cache ports.Cache
	ttl   time.Duration
}

// NewCachedLookup creates the caching decorator
func NewCachedLookup(inner Lookup, cache ports.Cache, ttl time.Duration) *CachedLookup {
	return &CachedLookup{inner: inner, cache: cache, ttl: ttl}
}

// Supplier resolves a supplier, preferring the cache
func (c *CachedLookup) Supplier(ctx context.Context, tenantID, supplierID uuid.UUID) (*Supplier, error) {
	if raw, ok := c.cache.Get(ctx, cacheNamespace, tenantID.String(), supplierID.String()); ok {
		var s Supplier
		if err := json.Unmarshal(raw, &s); err == nil {
			return &s, nil
		}
	}

	s, err := c.inner.Supplier(ctx, tenantID, supplierID)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(s); err == nil {
		c.cache.Set(ctx, cacheNamespace, tenantID.String(), supplierID.String(), raw, c.ttl)
	}
	return s, nil
}
