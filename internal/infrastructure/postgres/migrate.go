package postgres

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jhoicas/stock-api/pkg/logger"
)

// Espera máxima por el advisory lock cuando ctx no trae deadline.
const defaultMigrationLockWait = 5 * time.Minute

// Migrator aplica y revierte las migraciones embebidas (NNNN_nombre.up.sql / .down.sql).
// El driver pgx/v5 de golang-migrate toma pg_advisory_lock: réplicas que arrancan a la vez
// esperan su turno en lugar de fallar.
type Migrator struct {
	pool     *pgxpool.Pool
	fsys     fs.FS
	versions []uint
	log      *logger.Logger
}

// NewMigrator valida las migraciones de fsys (normalmente migrations.FS).
func NewMigrator(pool *pgxpool.Pool, fsys fs.FS, log *logger.Logger) (*Migrator, error) {
	versions, err := SourceVersions(fsys)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Migrator{pool: pool, fsys: fsys, versions: versions, log: log.Named("migrate")}, nil
}

// SourceVersions lista en orden las versiones de fsys. Toda versión necesita su archivo up.
func SourceVersions(fsys fs.FS) ([]uint, error) {
	src, err := iofs.New(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("load migrations: %w", err)
	}
	defer src.Close()

	var versions []uint
	v, err := src.First()
	for err == nil {
		r, _, upErr := src.ReadUp(v)
		if upErr != nil {
			return nil, fmt.Errorf("migration %d: falta el archivo up: %w", v, upErr)
		}
		r.Close()
		versions = append(versions, v)
		v, err = src.Next(v)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	return versions, nil
}

// Up aplica las migraciones pendientes y devuelve cuántas aplicó.
func (m *Migrator) Up(ctx context.Context) (int, error) {
	var before, after uint
	err := m.run(ctx, func(mg *migrate.Migrate) error {
		var err error
		if before, err = currentVersion(mg); err != nil {
			return err
		}
		if err := mg.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
		after, err = currentVersion(mg)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("migrate up: %w", err)
	}
	n := countBetween(m.versions, before, after)
	if n > 0 {
		m.log.Info().Int("applied", n).Uint("version", after).Msg("migraciones aplicadas")
	}
	return n, nil
}

// Down revierte las últimas steps migraciones aplicadas (steps <= 0 revierte todas).
func (m *Migrator) Down(ctx context.Context, steps int) (int, error) {
	var before, after uint
	err := m.run(ctx, func(mg *migrate.Migrate) error {
		var err error
		if before, err = currentVersion(mg); err != nil || before == 0 {
			return err
		}
		if steps <= 0 {
			err = mg.Down()
		} else {
			err = mg.Steps(-steps)
		}
		var short migrate.ErrShortLimit
		if err != nil && !errors.Is(err, migrate.ErrNoChange) && !errors.As(err, &short) {
			return err
		}
		after, err = currentVersion(mg)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("migrate down: %w", err)
	}
	if before == 0 {
		return 0, nil
	}
	n := countBetween(m.versions, after, before)
	m.log.Info().Int("reverted", n).Uint("version", after).Msg("migraciones revertidas")
	return n, nil
}

// run abre golang-migrate sobre una *sql.DB prestada del pool y lo cierra al terminar.
// Cancelar ctx detiene la ejecución entre una migración y la siguiente.
func (m *Migrator) run(ctx context.Context, fn func(*migrate.Migrate) error) error {
	src, err := iofs.New(m.fsys, ".")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	db := stdlib.OpenDBFromPool(m.pool)
	drv, err := migratepgx.WithInstance(db, &migratepgx.Config{})
	if err != nil {
		src.Close()
		db.Close()
		return fmt.Errorf("migrate driver: %w", err)
	}
	mg, err := migrate.NewWithInstance("iofs", src, "pgx5", drv)
	if err != nil {
		src.Close()
		drv.Close()
		return fmt.Errorf("migrate instance: %w", err)
	}
	defer func() {
		if err := errors.Join(mg.Close()); err != nil {
			m.log.Warn().Err(err).Msg("cerrar migrador")
		}
	}()
	mg.Log = migrateLogger{log: m.log}
	mg.LockTimeout = defaultMigrationLockWait
	if deadline, ok := ctx.Deadline(); ok {
		mg.LockTimeout = time.Until(deadline)
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			mg.GracefulStop <- true
		case <-done:
		}
	}()

	if err := fn(mg); err != nil {
		return err
	}
	return ctx.Err()
}

// currentVersion versión aplicada (0 = ninguna). Un esquema dirty exige intervención manual.
func currentVersion(mg *migrate.Migrate) (uint, error) {
	v, dirty, err := mg.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if dirty {
		return v, migrate.ErrDirty{Version: int(v)}
	}
	return v, nil
}

// countBetween cuenta versiones en (lo, hi].
func countBetween(versions []uint, lo, hi uint) int {
	n := 0
	for _, v := range versions {
		if v > lo && v <= hi {
			n++
		}
	}
	return n
}

// migrateLogger adapta pkg/logger a migrate.Logger.
type migrateLogger struct {
	log *logger.Logger
}

func (l migrateLogger) Printf(format string, v ...any) {
	l.log.Debug().Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l migrateLogger) Verbose() bool { return true }
