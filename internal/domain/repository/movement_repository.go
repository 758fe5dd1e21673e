package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-api/internal/domain/entity"
)

// MovementView movimiento con nombres de producto y usuario (lectura).
type MovementView struct {
	entity.Movement
	ProductName string
	UserName    string // nombre completo o username
}

// MovementFilter filtros de listado de movimientos.
// From/To son límites de created_at: From inclusivo, To exclusivo.
type MovementFilter struct {
	Kind      string
	ProductID string
	Search    string // nombre de producto o nota
	From      *time.Time
	To        *time.Time
	Ordering  string
	Limit     int
	Offset    int
}

// MovementRepository define el puerto de persistencia para movimientos (solo inserción).
type MovementRepository interface {
	Create(ctx context.Context, movement *entity.Movement) error
	GetView(ctx context.Context, id string) (*MovementView, error)
	List(ctx context.Context, f MovementFilter) ([]MovementView, error)
}
