package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Unidades de medida (códigos persistidos).
const (
	UnitPiece    = "UN" // unidad
	UnitKilogram = "KG"
	UnitLiter    = "L"
	UnitMeter    = "M"
	UnitBox      = "CX" // caja
)

// ValidUnit indica si el código de unidad es uno de los soportados.
func ValidUnit(u string) bool {
	switch u {
	case UnitPiece, UnitKilogram, UnitLiter, UnitMeter, UnitBox:
		return true
	}
	return false
}

// Product representa un ítem en stock.
// Quantity se modifica directamente o vía movimientos; nunca se persiste LowStock.
type Product struct {
	ID              string
	Code            string // único
	Name            string
	Description     string
	CategoryID      string
	Quantity        decimal.Decimal
	Unit            string
	CostPrice       decimal.Decimal
	SalePrice       decimal.Decimal
	MinimumQuantity decimal.Decimal
	Active          bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// LowStock indica si la cantidad alcanzó o bajó del mínimo configurado.
func (p *Product) LowStock() bool {
	return p.Quantity.LessThanOrEqual(p.MinimumQuantity)
}
