package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/stock-api/internal/domain/repository"
)

var _ repository.DashboardRepository = (*DashboardRepo)(nil)

// DashboardRepo consultas de solo lectura del dashboard.
// Todas corren en una única tx REPEATABLE READ: conteos y ranking describen el mismo instante.
type DashboardRepo struct {
	runner *TxRunner
}

// NewDashboardRepository construye el repositorio sobre el TxRunner (usa TxRunner.ReadOnly).
func NewDashboardRepository(runner *TxRunner) *DashboardRepo {
	return &DashboardRepo{runner: runner}
}

// Snapshot lee conteos y top de productos más movidos.
//
// Empates en el ranking: total DESC, nombre ASC, id ASC.
func (r *DashboardRepo) Snapshot(ctx context.Context, q repository.DashboardQuery) (*repository.DashboardSnapshot, error) {
	var snap repository.DashboardSnapshot
	err := r.runner.ReadOnly(ctx, func(db Querier) error {
		countsQuery := `
			SELECT
				(SELECT COUNT(*) FROM products),
				(SELECT COUNT(*) FROM products WHERE active),
				(SELECT COUNT(*) FROM categories),
				(SELECT COUNT(*) FROM movements WHERE created_at >= $1 AND created_at < $2),
				(SELECT COUNT(*) FROM products WHERE quantity <= minimum_quantity)`
		if err := db.QueryRow(ctx, countsQuery, q.TodayStart, q.TodayEnd).Scan(
			&snap.TotalProducts, &snap.ActiveProducts, &snap.Categories, &snap.MovementsToday, &snap.LowStockProducts,
		); err != nil {
			return fmt.Errorf("dashboard counts: %w", err)
		}

		topQuery := `
			SELECT p.id, p.code, p.name, SUM(m.quantity) AS total_moved
			FROM movements m
			JOIN products p ON p.id = m.product_id
			WHERE m.created_at >= $1
			GROUP BY p.id, p.code, p.name
			ORDER BY total_moved DESC, p.name ASC, p.id ASC
			LIMIT $2`
		rows, err := db.Query(ctx, topQuery, q.Since, q.TopLimit)
		if err != nil {
			return fmt.Errorf("dashboard top moved: %w", err)
		}
		top, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (repository.TopMovedProduct, error) {
			var t repository.TopMovedProduct
			err := row.Scan(&t.ProductID, &t.Code, &t.ProductName, &t.TotalMoved)
			return t, err
		})
		if err != nil {
			return fmt.Errorf("scan top moved: %w", err)
		}
		snap.TopMoved = top
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &snap, nil
}
