// Comando migrate aplica o revierte el esquema embebido.
//
//	migrate up          aplica las migraciones pendientes
//	migrate down [N]    revierte las últimas N (por defecto 1; 0 = todas)
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jhoicas/stock-api/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-api/migrations"
	"github.com/jhoicas/stock-api/pkg/config"
	"github.com/jhoicas/stock-api/pkg/logger"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "uso: migrate up | down [N]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	migrator, err := postgres.NewMigrator(pool, migrations.FS, log)
	if err != nil {
		log.Fatal().Err(err).Msg("cargar migraciones")
	}

	switch os.Args[1] {
	case "up":
		n, err := migrator.Up(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("migrate up")
		}
		log.Info().Int("applied", n).Msg("esquema al día")
	case "down":
		steps := 1
		if len(os.Args) > 2 {
			steps, err = strconv.Atoi(os.Args[2])
			if err != nil || steps < 0 {
				log.Fatal().Str("arg", os.Args[2]).Msg("N debe ser un entero >= 0")
			}
		}
		n, err := migrator.Down(ctx, steps)
		if err != nil {
			log.Fatal().Err(err).Msg("migrate down")
		}
		log.Info().Int("reverted", n).Msg("migraciones revertidas")
	default:
		fmt.Fprintf(os.Stderr, "comando desconocido %q; uso: migrate up | down [N]\n", os.Args[1])
		os.Exit(2)
	}
}
