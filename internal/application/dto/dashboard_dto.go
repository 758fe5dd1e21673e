package dto

import "github.com/shopspring/decimal"

// DashboardSummaryDTO respuesta de GET /api/dashboard.
// Todos los valores se calculan en cada petición (sin caché).
type DashboardSummaryDTO struct {
	TotalProducts    int `json:"total_products"`
	ActiveProducts   int `json:"active_products"`
	Categories       int `json:"categories"`
	MovementsToday   int `json:"movements_today"`    // en la zona horaria configurada
	LowStockProducts int `json:"low_stock_products"` // quantity <= minimum_quantity

	// Top 5 productos por cantidad movida en los últimos 30 días
	TopMovedProducts []TopMovedProductDTO `json:"top_moved_products"`
}

// TopMovedProductDTO fila del ranking de productos más movidos.
type TopMovedProductDTO struct {
	ProductID   string          `json:"product_id"`
	Code        string          `json:"code"`
	ProductName string          `json:"product_name"`
	TotalMoved  decimal.Decimal `json:"total_moved"`
}
