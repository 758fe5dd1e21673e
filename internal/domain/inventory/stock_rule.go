package inventory

import (
	"github.com/jhoicas/stock-api/internal/domain"
	"github.com/jhoicas/stock-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ApplyMovement implementa la regla de mutación de stock (servicio de dominio):
//
//	INBOUND:    actual + cantidad
//	OUTBOUND:   actual - cantidad
//	ADJUSTMENT: cantidad (sobrescribe, no es delta)
//
// No valida negativos; ver EnsureNonNegative.
func ApplyMovement(current decimal.Decimal, kind string, qty decimal.Decimal) (decimal.Decimal, error) {
	switch kind {
	case entity.MovementInbound:
		return current.Add(qty), nil
	case entity.MovementOutbound:
		return current.Sub(qty), nil
	case entity.MovementAdjustment:
		return qty, nil
	}
	return decimal.Zero, domain.ErrInvalidInput
}

// AmountScale decimales que admiten las columnas NUMERIC(12,2) de cantidades y precios.
const AmountScale = 2

// maxAmount primer valor que ya no cabe en NUMERIC(12,2).
var maxAmount = decimal.New(1, 10)

// CheckAmount rechaza valores con más de dos decimales o fuera del rango de la columna.
// Postgres redondearía los primeros en silencio y fallaría con los segundos.
func CheckAmount(field string, v decimal.Decimal) error {
	if !v.Equal(v.Truncate(AmountScale)) {
		return domain.NewValidationError(field, "admite como máximo 2 decimales")
	}
	if v.Abs().GreaterThanOrEqual(maxAmount) {
		return domain.NewValidationError(field, "excede el valor máximo permitido")
	}
	return nil
}

// ValidateQuantity valida la cantidad según el tipo de movimiento.
// Entradas y salidas exigen cantidad > 0; un ajuste acepta 0 (dejar el producto en cero).
func ValidateQuantity(kind string, qty decimal.Decimal) error {
	switch kind {
	case entity.MovementInbound, entity.MovementOutbound:
		if !qty.GreaterThan(decimal.Zero) {
			return domain.NewValidationError("quantity", "la cantidad debe ser mayor que cero")
		}
	case entity.MovementAdjustment:
		if qty.LessThan(decimal.Zero) {
			return domain.NewValidationError("quantity", "la cantidad no puede ser negativa")
		}
	default:
		return domain.NewValidationError("kind", "tipo de movimiento inválido")
	}
	return CheckAmount("quantity", qty)
}

// EnsureWithinRange rechaza un stock resultante que no cabe en la columna (entradas acumuladas).
func EnsureWithinRange(result decimal.Decimal) error {
	if result.Abs().GreaterThanOrEqual(maxAmount) {
		return domain.NewValidationError("quantity", "el stock resultante excede el máximo permitido")
	}
	return nil
}

// EnsureNonNegative rechaza una cantidad resultante negativa salvo que allowNegative esté activo.
func EnsureNonNegative(result decimal.Decimal, allowNegative bool) error {
	if result.IsNegative() && !allowNegative {
		return domain.ErrInsufficientStock
	}
	return nil
}
