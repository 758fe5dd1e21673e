package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateMovementRequest body para POST /api/movements.
// Kind acepta INBOUND/OUTBOUND/ADJUSTMENT y los alias ENTRADA/SAIDA/AJUSTE.
// UserID es opcional: por defecto el usuario autenticado. Quantity es obligatoria para todos los tipos.
type CreateMovementRequest struct {
	ProductID string           `json:"product_id" validate:"required,uuid"`
	Kind      string           `json:"kind" validate:"required"`
	Quantity  *decimal.Decimal `json:"quantity" validate:"required"`
	Note      string           `json:"note"`
	UserID    string           `json:"user_id" validate:"omitempty,uuid"`
}

// MovementListQuery filtros de GET /api/movements. Fechas en formato YYYY-MM-DD, inclusivas.
type MovementListQuery struct {
	PageRequest
	Kind      string `query:"kind"`
	ProductID string `query:"product_id"`
	DateFrom  string `query:"date_from"`
	DateTo    string `query:"date_to"`
	Search    string `query:"search"`
	Ordering  string `query:"ordering"`
}

// MovementResponse salida completa de un movimiento.
type MovementResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Kind        string          `json:"kind"`
	Quantity    decimal.Decimal `json:"quantity"`
	Note        string          `json:"note"`
	UserID      string          `json:"user_id"`
	UserName    string          `json:"user_name"`
	CreatedAt   time.Time       `json:"created_at"`
}

// MovementListItem salida compacta para listados.
type MovementListItem struct {
	ID          string          `json:"id"`
	ProductName string          `json:"product_name"`
	Kind        string          `json:"kind"`
	Quantity    decimal.Decimal `json:"quantity"`
	UserName    string          `json:"user_name"`
	CreatedAt   time.Time       `json:"created_at"`
}

// MovementListResponse lista paginada de movimientos.
type MovementListResponse struct {
	Items []MovementListItem `json:"items"`
	Page  PageResponse       `json:"page"`
}
