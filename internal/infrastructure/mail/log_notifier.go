package mail

import (
	"context"

	"github.com/jhoicas/stock-api/internal/application/ports"
	"github.com/jhoicas/stock-api/pkg/logger"
)

var _ ports.LowStockNotifier = (*LogNotifier)(nil)

// LogNotifier se usa cuando no hay SMTP configurado: solo deja constancia en el log.
type LogNotifier struct {
	log *logger.Logger
}

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	if log == nil {
		log = logger.Nop()
	}
	return &LogNotifier{log: log.Named("mail")}
}

func (n *LogNotifier) NotifyLowStock(_ context.Context, alert ports.LowStockAlert, recipients []string) error {
	n.log.Info().
		Str("product_id", alert.ProductID).
		Str("code", alert.Code).
		Str("quantity", alert.Quantity.String()).
		Str("minimum_quantity", alert.MinimumQuantity.String()).
		Strs("recipients", recipients).
		Msg("stock bajo (SMTP deshabilitado)")
	return nil
}
