package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// DashboardQuery rangos de tiempo ya resueltos en la zona horaria de la app.
type DashboardQuery struct {
	TodayStart time.Time // inclusivo
	TodayEnd   time.Time // exclusivo
	Since      time.Time // inicio de la ventana de "más movidos"
	TopLimit   int
}

// TopMovedProduct resultado crudo de la consulta de productos más movidos.
type TopMovedProduct struct {
	ProductID   string
	Code        string
	ProductName string
	TotalMoved  decimal.Decimal
}

// DashboardSnapshot conteos y ranking leídos en un mismo instante.
type DashboardSnapshot struct {
	TotalProducts    int
	ActiveProducts   int
	Categories       int
	MovementsToday   int
	LowStockProducts int
	TopMoved         []TopMovedProduct
}

// DashboardRepository define las consultas de solo lectura del dashboard.
// Las implementaciones deben leer todo desde un único snapshot (sin caché).
type DashboardRepository interface {
	Snapshot(ctx context.Context, q DashboardQuery) (*DashboardSnapshot, error)
}
