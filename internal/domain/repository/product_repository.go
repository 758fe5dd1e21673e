package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ProductView producto con el nombre de su categoría (lectura).
type ProductView struct {
	entity.Product
	CategoryName string
}

// ProductFilter filtros de listado de productos.
type ProductFilter struct {
	Search       string // código, nombre o descripción
	CategoryID   string
	Unit         string
	Active       *bool
	LowStockOnly bool // quantity <= minimum_quantity
	Ordering     string
	Limit        int
	Offset       int
}

// ProductRepository define el puerto de persistencia para Product (DIP).
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetByCode(ctx context.Context, code string) (*entity.Product, error)
	GetView(ctx context.Context, id string) (*ProductView, error)
	// GetForUpdate obtiene el producto bloqueando la fila (SELECT ... FOR UPDATE). Solo dentro de una tx.
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	UpdateQuantity(ctx context.Context, id string, quantity decimal.Decimal, updatedAt time.Time) error
	List(ctx context.Context, f ProductFilter) ([]ProductView, error)
	// Delete devuelve domain.ErrNotFound si no existía; los movimientos caen en cascada.
	Delete(ctx context.Context, id string) error
}
