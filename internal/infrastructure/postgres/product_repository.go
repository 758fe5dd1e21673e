package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/stock-api/internal/domain"
	"github.com/jhoicas/stock-api/internal/domain/entity"
	"github.com/jhoicas/stock-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `p.id, p.code, p.name, p.description, p.category_id, p.quantity, p.unit,
	p.cost_price, p.sale_price, p.minimum_quantity, p.active, p.created_at, p.updated_at`

var productOrdering = map[string]string{
	"name":       "p.name",
	"code":       "p.code",
	"quantity":   "p.quantity",
	"sale_price": "p.sale_price",
	"created_at": "p.created_at",
}

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

func scanProduct(row pgx.Row, p *entity.Product, extra ...any) error {
	dest := []any{
		&p.ID, &p.Code, &p.Name, &p.Description, &p.CategoryID, &p.Quantity, &p.Unit,
		&p.CostPrice, &p.SalePrice, &p.MinimumQuantity, &p.Active, &p.CreatedAt, &p.UpdatedAt,
	}
	return row.Scan(append(dest, extra...)...)
}

// Create persiste un nuevo producto.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO products (id, code, name, description, category_id, quantity, unit,
			cost_price, sale_price, minimum_quantity, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.Code, p.Name, p.Description, p.CategoryID, p.Quantity, p.Unit,
		p.CostPrice, p.SalePrice, p.MinimumQuantity, p.Active, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if tErr := translateConstraint(err); tErr != err {
			return tErr
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products p WHERE p.id = $1`, id)
}

// GetByCode obtiene un producto por código.
func (r *ProductRepo) GetByCode(ctx context.Context, code string) (*entity.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products p WHERE p.code = $1`, code)
}

// GetForUpdate obtiene el producto bloqueando la fila hasta el fin de la tx.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products p WHERE p.id = $1 FOR UPDATE`, id)
}

func (r *ProductRepo) getOne(ctx context.Context, query, arg string) (*entity.Product, error) {
	var p entity.Product
	if err := scanProduct(r.q.QueryRow(ctx, query, arg), &p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

// GetView obtiene el producto con el nombre de su categoría.
func (r *ProductRepo) GetView(ctx context.Context, id string) (*repository.ProductView, error) {
	query := `
		SELECT ` + productColumns + `, c.name
		FROM products p JOIN categories c ON c.id = p.category_id
		WHERE p.id = $1`
	var v repository.ProductView
	if err := scanProduct(r.q.QueryRow(ctx, query, id), &v.Product, &v.CategoryName); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product view: %w", err)
	}
	return &v, nil
}

// Update actualiza todos los campos editables (incluida la cantidad).
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	query := `
		UPDATE products SET code = $2, name = $3, description = $4, category_id = $5, quantity = $6,
			unit = $7, cost_price = $8, sale_price = $9, minimum_quantity = $10, active = $11, updated_at = $12
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		p.ID, p.Code, p.Name, p.Description, p.CategoryID, p.Quantity,
		p.Unit, p.CostPrice, p.SalePrice, p.MinimumQuantity, p.Active, p.UpdatedAt,
	)
	if err != nil {
		if tErr := translateConstraint(err); tErr != err {
			return tErr
		}
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateQuantity escribe solo la cantidad (motor de movimientos).
func (r *ProductRepo) UpdateQuantity(ctx context.Context, id string, quantity decimal.Decimal, updatedAt time.Time) error {
	tag, err := r.q.Exec(ctx, `UPDATE products SET quantity = $2, updated_at = $3 WHERE id = $1`, id, quantity, updatedAt)
	if err != nil {
		if tErr := translateConstraint(err); tErr != err {
			return tErr
		}
		return fmt.Errorf("update product quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista productos con filtros, orden y paginación.
func (r *ProductRepo) List(ctx context.Context, f repository.ProductFilter) ([]repository.ProductView, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.Search != "" {
		ph := arg(f.Search)
		where = append(where, fmt.Sprintf(
			"(p.code ILIKE '%%' || %[1]s || '%%' OR p.name ILIKE '%%' || %[1]s || '%%' OR p.description ILIKE '%%' || %[1]s || '%%')", ph))
	}
	if f.CategoryID != "" {
		where = append(where, "p.category_id = "+arg(f.CategoryID))
	}
	if f.Unit != "" {
		where = append(where, "p.unit = "+arg(f.Unit))
	}
	if f.Active != nil {
		where = append(where, "p.active = "+arg(*f.Active))
	}
	if f.LowStockOnly {
		where = append(where, "p.quantity <= p.minimum_quantity")
	}

	query := `SELECT ` + productColumns + `, c.name FROM products p JOIN categories c ON c.id = p.category_id`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY " + orderBy(f.Ordering, productOrdering, "p.name ASC") + ", p.id"
	query += " LIMIT " + arg(f.Limit) + " OFFSET " + arg(f.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	list := []repository.ProductView{}
	for rows.Next() {
		var v repository.ProductView
		if err := scanProduct(rows, &v.Product, &v.CategoryName); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, v)
	}
	return list, rows.Err()
}

// Delete elimina un producto; sus movimientos caen por ON DELETE CASCADE.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
