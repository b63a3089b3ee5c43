package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appcatalog "github.com/inventra/backend/internal/application/catalog"
	"github.com/inventra/backend/internal/domain/shared"
	"github.com/inventra/backend/internal/infrastructure/config"
)

// HTTPLookup resolves suppliers from the partner catalog service over HTTP
type HTTPLookup struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewHTTPLookup creates a catalog client
func NewHTTPLookup(cfg config.CatalogConfig, logger *zap.Logger) *HTTPLookup {
	return &HTTPLookup{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}
}

// Supplier fetches one supplier. Unknown suppliers map to not found; a
// catalog outage maps to UPSTREAM_UNAVAILABLE so callers can degrade.
func (l *HTTPLookup) Supplier(ctx context.Context, tenantID, supplierID uuid.UUID) (*appcatalog.Supplier, error) {
	url := fmt.Sprintf("%s/api/v1/tenants/%s/suppliers/%s", l.baseURL, tenantID, supplierID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := l.client.Do(req)
	if err != nil {
		l.logger.Warn("supplier catalog unreachable",
			zap.String("supplier_id", supplierID.String()),
			zap.Error(err),
		)
		return nil, shared.NewUpstreamUnavailable("supplier catalog")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, shared.ErrNotFound
	case resp.StatusCode >= 500:
		l.logger.Warn("supplier catalog returned server error",
			zap.String("supplier_id", supplierID.String()),
			zap.Int("status", resp.StatusCode),
		)
		return nil, shared.NewUpstreamUnavailable("supplier catalog")
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("supplier catalog returned status %d", resp.StatusCode)
	}

	var supplier appcatalog.Supplier
	if err := json.NewDecoder(resp.Body).Decode(&supplier); err != nil {
		return nil, fmt.Errorf("decode supplier response: %w", err)
	}
	return &supplier, nil
}

var _ appcatalog.Lookup = (*HTTPLookup)(nil)
