package ports

import (
	"context"

	"github.com/jhoicas/stock-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// LowStockAlert datos del producto que alcanzó su mínimo, tal como quedaron tras el commit.
type LowStockAlert struct {
	ProductID       string
	Code            string
	Name            string
	CategoryName    string
	Quantity        decimal.Decimal
	MinimumQuantity decimal.Decimal
	Unit            string
}

// LowStockNotifier define el puerto de salida para avisar de stock bajo.
// Cualquier adaptador (SMTP, solo log, mock) debe implementar esta interfaz.
// El contexto lleva un timeout; un error no afecta la operación que originó el aviso.
type LowStockNotifier interface {
	NotifyLowStock(ctx context.Context, alert LowStockAlert, recipients []string) error
}

// ProductObserver recibe cada producto ya confirmado en BD (creación, edición o movimiento).
// Lo implementa alerts.Dispatcher.
type ProductObserver interface {
	ProductSaved(p *entity.Product, categoryName string) bool
}
