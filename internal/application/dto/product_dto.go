package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	Code            string          `json:"code" validate:"required,min=1,max=50"`
	Name            string          `json:"name" validate:"required,min=1,max=200"`
	Description     string          `json:"description"`
	CategoryID      string          `json:"category_id" validate:"required,uuid"`
	Quantity        decimal.Decimal `json:"quantity" validate:"gte=0"`
	Unit            string          `json:"unit" validate:"omitempty,oneof=UN KG L M CX"`
	CostPrice       decimal.Decimal `json:"cost_price" validate:"gte=0"`
	SalePrice       decimal.Decimal `json:"sale_price" validate:"gte=0"`
	MinimumQuantity decimal.Decimal `json:"minimum_quantity" validate:"gte=0"`
	Active          *bool           `json:"active"`
}

// UpdateProductRequest actualización parcial (PUT/PATCH).
type UpdateProductRequest struct {
	Code            *string          `json:"code" validate:"omitempty,min=1,max=50"`
	Name            *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description     *string          `json:"description"`
	CategoryID      *string          `json:"category_id" validate:"omitempty,uuid"`
	Quantity        *decimal.Decimal `json:"quantity" validate:"omitempty,gte=0"`
	Unit            *string          `json:"unit" validate:"omitempty,oneof=UN KG L M CX"`
	CostPrice       *decimal.Decimal `json:"cost_price" validate:"omitempty,gte=0"`
	SalePrice       *decimal.Decimal `json:"sale_price" validate:"omitempty,gte=0"`
	MinimumQuantity *decimal.Decimal `json:"minimum_quantity" validate:"omitempty,gte=0"`
	Active          *bool            `json:"active"`
}

// AdjustStockRequest body de POST /api/products/:id/adjust-stock.
type AdjustStockRequest struct {
	Quantity *decimal.Decimal `json:"quantity" validate:"required,gte=0"`
}

// ProductListQuery filtros de GET /api/products.
type ProductListQuery struct {
	PageRequest
	Search     string `query:"search"`
	CategoryID string `query:"category_id"`
	Unit       string `query:"unit"`
	Active     *bool  `query:"active"`
	LowStock   bool   `query:"low_stock"`
	Ordering   string `query:"ordering"`
}

// ProductResponse salida completa de un producto (detalle, create, update).
type ProductResponse struct {
	ID              string          `json:"id"`
	Code            string          `json:"code"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	CategoryID      string          `json:"category_id"`
	CategoryName    string          `json:"category_name"`
	Quantity        decimal.Decimal `json:"quantity"`
	Unit            string          `json:"unit"`
	CostPrice       decimal.Decimal `json:"cost_price"`
	SalePrice       decimal.Decimal `json:"sale_price"`
	MinimumQuantity decimal.Decimal `json:"minimum_quantity"`
	Active          bool            `json:"active"`
	LowStock        bool            `json:"low_stock"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ProductListItem salida compacta para listados.
type ProductListItem struct {
	ID              string          `json:"id"`
	Code            string          `json:"code"`
	Name            string          `json:"name"`
	CategoryName    string          `json:"category_name"`
	Quantity        decimal.Decimal `json:"quantity"`
	Unit            string          `json:"unit"`
	MinimumQuantity decimal.Decimal `json:"minimum_quantity"`
	LowStock        bool            `json:"low_stock"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductListItem `json:"items"`
	Page  PageResponse      `json:"page"`
}
