package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de stock.
const (
	MovementInbound    = "INBOUND"    // entrada: suma
	MovementOutbound   = "OUTBOUND"   // salida: resta
	MovementAdjustment = "ADJUSTMENT" // ajuste: sobrescribe la cantidad
)

var movementAliases = map[string]string{
	MovementInbound:    MovementInbound,
	MovementOutbound:   MovementOutbound,
	MovementAdjustment: MovementAdjustment,
	"ENTRADA":          MovementInbound,
	"SAIDA":            MovementOutbound,
	"SALIDA":           MovementOutbound,
	"AJUSTE":           MovementAdjustment,
	"IN":               MovementInbound,
	"OUT":              MovementOutbound,
}

// ParseMovementKind normaliza el tipo recibido (acepta alias ENTRADA/SAIDA/AJUSTE).
func ParseMovementKind(s string) (string, bool) {
	k, ok := movementAliases[strings.ToUpper(strings.TrimSpace(s))]
	return k, ok
}

// Movement es un registro inmutable (solo inserción) de un cambio de stock.
type Movement struct {
	ID        string
	ProductID string
	Kind      string
	Quantity  decimal.Decimal
	Note      string
	UserID    string
	CreatedAt time.Time
}
