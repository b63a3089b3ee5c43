package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/inventra/backend/internal/application/order"
)

// LoggingSupplierNotifier records supplier notifications in the structured
// log. It stands in for a mail or EDI gateway; swapping the transport means
// replacing this type behind the same interface.
type LoggingSupplierNotifier struct {
	logger *zap.Logger
}

// NewLoggingSupplierNotifier creates a logging notifier
func NewLoggingSupplierNotifier(logger *zap.Logger) *LoggingSupplierNotifier {
	return &LoggingSupplierNotifier{logger: logger}
}

// NotifySupplier logs the notification. Failures cannot occur here, and a
// real transport's failures would be logged the same way rather than
// propagated: the order transition has already committed.
func (n *LoggingSupplierNotifier) NotifySupplier(ctx context.Context, notification order.SupplierNotification) {
	n.logger.Info("supplier notification dispatched",
		zap.String("tenant_id", notification.TenantID.String()),
		zap.String("supplier_id", notification.SupplierID.String()),
		zap.String("reference", notification.Reference),
		zap.String("message", notification.Message),
	)
}

var _ order.Notifier = (*LoggingSupplierNotifier)(nil)
