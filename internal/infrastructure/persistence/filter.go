package persistence

import (
	"strings"

	"gorm.io/gorm"

	"github.com/inventra/backend/internal/domain/shared"
)

// validateSortOrder normalizes the sort order to ASC or DESC
func validateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "asc") {
		return "ASC"
	}
	return "DESC"
}

// validateSortField validates the sort field against a whitelist. The
// whitelist keeps user-supplied sort parameters out of raw SQL.
func validateSortField(sortField string, allowed map[string]bool) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed != "" && allowed[trimmed] {
		return trimmed
	}
	return "created_at"
}

// commonSortFields are present on every audited record
var commonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

var stockItemSortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"updated_at":  true,
	"sku":         true,
	"name":        true,
	"quantity":    true,
	"status":      true,
	"expiry_date": true,
}

var stockLocationSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"code":          true,
	"name":          true,
	"location_type": true,
}

var inventorySortFields = map[string]bool{
	"id":                 true,
	"created_at":         true,
	"updated_at":         true,
	"name":               true,
	"inventory_type":     true,
	"category":           true,
	"external_system_id": true,
	"active":             true,
}

var purchaseOrderSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"reference":    true,
	"status":       true,
	"supplier_id":  true,
	"total":        true,
	"approved_at":  true,
	"issued_at":    true,
	"received_at":  true,
	"completed_at": true,
}

var returnOrderSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"reference":    true,
	"status":       true,
	"completed_at": true,
}

// applyFilter applies pagination and ordering to a query
func applyFilter(query *gorm.DB, filter shared.Filter, sortFields map[string]bool) *gorm.DB {
	field := validateSortField(filter.OrderBy, sortFields)
	dir := validateSortOrder(filter.OrderDir)
	query = query.Order(field + " " + dir)

	size := filter.PageSize
	if size < 1 {
		size = 20
	}
	return query.Offset(filter.Offset()).Limit(size)
}
