package inventory

import (
	"context"

	"github.com/jhoicas/stock-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad para el motor de inventario: o se confirman movimiento y cantidad, o ninguno.
// La función puede ejecutarse más de una vez si la tx se reintenta; no debe tener efectos fuera de la BD.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.MovementRepository,
		productRepo repository.ProductRepository,
	) error) error
}
