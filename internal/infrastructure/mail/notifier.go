// Package mail contiene los adaptadores de salida para los avisos de stock bajo.
package mail

import (
	"github.com/jhoicas/stock-api/internal/application/ports"
	"github.com/jhoicas/stock-api/pkg/config"
	"github.com/jhoicas/stock-api/pkg/logger"
)

// New elige el adaptador según la configuración: SMTP si hay host, log en caso contrario.
func New(cfg config.MailConfig, log *logger.Logger) ports.LowStockNotifier {
	if cfg.Enabled() {
		return NewSMTPNotifier(cfg)
	}
	return NewLogNotifier(log)
}
