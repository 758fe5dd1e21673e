package repository

import (
	"context"

	"github.com/jhoicas/stock-api/internal/domain/entity"
)

// CategoryFilter filtros de listado de categorías.
type CategoryFilter struct {
	Search   string // nombre o descripción, sin distinguir mayúsculas
	Ordering string // name, -name, created_at, -created_at
	Limit    int
	Offset   int
}

// CategoryRepository define el puerto de persistencia para Category (DIP).
type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, id string) (*entity.Category, error)
	GetByName(ctx context.Context, name string) (*entity.Category, error)
	Update(ctx context.Context, category *entity.Category) error
	List(ctx context.Context, f CategoryFilter) ([]*entity.Category, error)
	// Delete borra la categoría; los productos y movimientos caen en cascada (FK ON DELETE CASCADE).
	// Devuelve domain.ErrNotFound si no existía.
	Delete(ctx context.Context, id string) error
}
