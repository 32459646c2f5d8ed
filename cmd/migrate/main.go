// migrate aplica las migraciones SQL embebidas sobre la base configurada (DATABASE_URL / DB_*).
//
// Uso: go run ./cmd/migrate [up|down|version]
// Sin argumentos equivale a "up".
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jhoicas/vanstock-api/internal/infrastructure/postgres"
	"github.com/jhoicas/vanstock-api/pkg/config"
	"github.com/jhoicas/vanstock-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel}).Component("migrate")

	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	dsn := cfg.DB.ConnectionString()

	switch cmd {
	case "up":
		err = postgres.Migrate(ctx, dsn)
	case "down":
		err = postgres.MigrateDown(ctx, dsn)
	case "version":
	default:
		fmt.Fprintf(os.Stderr, "comando desconocido %q (up|down|version)\n", cmd)
		os.Exit(2)
	}
	if err != nil {
		log.Fatal().Err(err).Str("cmd", cmd).Msg("migración fallida")
	}

	version, err := postgres.MigrationVersion(ctx, dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("leer versión de migraciones")
	}
	log.Info().Str("cmd", cmd).Int64("version", version).Msg("migraciones al día")
}
