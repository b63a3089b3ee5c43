package ports

import (
	"context"
	"time"
)

// Cache is a TTL cache keyed by (namespace, tenant, key). Callers never
// construct a cache; one is injected so the backing store (in-process or
// Redis) is a deployment decision.
type Cache interface {
	Get(ctx context.Context, namespace, tenantID, key string) ([]byte, bool)
	Set(ctx context.Context, namespace, tenantID, key string, value []byte, ttl time.Duration)
	Delete(ctx context.Context, namespace, tenantID, key string)
}
