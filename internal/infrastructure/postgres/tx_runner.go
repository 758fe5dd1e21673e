package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/stock-api/internal/application/inventory"
	"github.com/jhoicas/stock-api/internal/domain/repository"
	"github.com/jhoicas/stock-api/pkg/logger"
)

// Ensure TxRunner implements inventory.TxRunner.
var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
// Los conflictos transitorios (serialización, deadlock, lock no disponible) se reintentan con backoff exponencial.
type TxRunner struct {
	pool       *pgxpool.Pool
	maxRetries int
	log        *logger.Logger
}

// NewTxRunner construye el runner con el pool. maxRetries < 0 se trata como 0.
func NewTxRunner(pool *pgxpool.Pool, maxRetries int, log *logger.Logger) *TxRunner {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if log == nil {
		log = logger.Nop()
	}
	return &TxRunner{pool: pool, maxRetries: maxRetries, log: log.Named("tx")}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	productRepo repository.ProductRepository,
) error) error {
	return r.withRetry(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(tx pgx.Tx) error {
		return fn(NewMovementRepository(tx), NewProductRepository(tx))
	})
}

// ReadOnly ejecuta fn en una tx REPEATABLE READ de solo lectura: todas las consultas ven el mismo snapshot.
func (r *TxRunner) ReadOnly(ctx context.Context, fn func(q Querier) error) error {
	return r.withRetry(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}, func(tx pgx.Tx) error {
		return fn(tx)
	})
}

func (r *TxRunner) withRetry(ctx context.Context, opts pgx.TxOptions, fn func(pgx.Tx) error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 50 * time.Millisecond
	policy.Multiplier = 2
	policy.RandomizationFactor = 0.25
	policy.MaxElapsedTime = 10 * time.Second

	attempt := 0
	op := func() error {
		attempt++
		err := r.once(ctx, opts, fn)
		if err == nil || isRetryable(err) {
			return err
		}
		return backoff.Permanent(err)
	}
	notify := func(err error, wait time.Duration) {
		r.log.Warn().Err(err).Int("attempt", attempt).Dur("wait", wait).Msg("conflicto de transacción, reintentando")
	}
	b := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(r.maxRetries)), ctx)
	return backoff.RetryNotify(op, b, notify)
}

func (r *TxRunner) once(ctx context.Context, opts pgx.TxOptions, fn func(pgx.Tx) error) error {
	tx, err := r.pool.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
