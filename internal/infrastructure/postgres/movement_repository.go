package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/stock-api/internal/domain/entity"
	"github.com/jhoicas/stock-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// movementViewSelect une producto y usuario; user_name cae al username si no hay nombre.
const movementViewSelect = `
	SELECT m.id, m.product_id, m.kind, m.quantity, m.note, m.user_id, m.created_at,
		p.name,
		COALESCE(NULLIF(TRIM(u.first_name || ' ' || u.last_name), ''), u.username)
	FROM movements m
	JOIN products p ON p.id = m.product_id
	JOIN users u ON u.id = m.user_id`

var movementOrdering = map[string]string{
	"created_at": "m.created_at",
	"quantity":   "m.quantity",
}

// MovementRepo implementación del puerto MovementRepository (solo inserción y lectura).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Create inserta un movimiento. Debe ejecutarse en la misma tx que actualiza la cantidad del producto.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	query := `
		INSERT INTO movements (id, product_id, kind, quantity, note, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query, m.ID, m.ProductID, m.Kind, m.Quantity, m.Note, m.UserID, m.CreatedAt)
	if err != nil {
		if tErr := translateConstraint(err); tErr != err {
			return tErr
		}
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

func scanMovementView(row pgx.Row, v *repository.MovementView) error {
	return row.Scan(
		&v.ID, &v.ProductID, &v.Kind, &v.Quantity, &v.Note, &v.UserID, &v.CreatedAt,
		&v.ProductName, &v.UserName,
	)
}

// GetView obtiene un movimiento con nombres de producto y usuario.
func (r *MovementRepo) GetView(ctx context.Context, id string) (*repository.MovementView, error) {
	var v repository.MovementView
	if err := scanMovementView(r.q.QueryRow(ctx, movementViewSelect+` WHERE m.id = $1`, id), &v); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return &v, nil
}

// List lista movimientos con filtros. From es inclusivo y To exclusivo sobre created_at.
func (r *MovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]repository.MovementView, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.Kind != "" {
		where = append(where, "m.kind = "+arg(f.Kind))
	}
	if f.ProductID != "" {
		where = append(where, "m.product_id = "+arg(f.ProductID))
	}
	if f.Search != "" {
		ph := arg(f.Search)
		where = append(where, fmt.Sprintf("(p.name ILIKE '%%' || %[1]s || '%%' OR m.note ILIKE '%%' || %[1]s || '%%')", ph))
	}
	if f.From != nil {
		where = append(where, "m.created_at >= "+arg(*f.From))
	}
	if f.To != nil {
		where = append(where, "m.created_at < "+arg(*f.To))
	}

	query := movementViewSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY " + orderBy(f.Ordering, movementOrdering, "m.created_at DESC") + ", m.id"
	query += " LIMIT " + arg(f.Limit) + " OFFSET " + arg(f.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	list := []repository.MovementView{}
	for rows.Next() {
		var v repository.MovementView
		if err := scanMovementView(rows, &v); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, v)
	}
	return list, rows.Err()
}
