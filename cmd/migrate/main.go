// migrate aplica las migraciones SQL embebidas contra la base de datos configurada.
//
// Uso: go run ./cmd/migrate [up|down|steps N|version]
// Sin argumentos aplica todas las migraciones pendientes (up).
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/jhoicas/albaranes-api/internal/infrastructure/postgres"
	"github.com/jhoicas/albaranes-api/pkg/config"
	"github.com/jhoicas/albaranes-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	cmd, args := "up", []string(nil)
	if len(os.Args) > 1 {
		cmd, args = os.Args[1], os.Args[2:]
	}

	mg, err := postgres.NewMigrator(cfg.DB.MigrateURL(), log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir migrador: %v\n", err)
		os.Exit(1)
	}
	defer mg.Close()

	if err := run(mg, cmd, args); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", cmd, err)
		mg.Close()
		os.Exit(1)
	}
}

func run(mg *postgres.Migrator, cmd string, args []string) error {
	switch cmd {
	case "up":
		return mg.Up()
	case "down":
		return mg.Down()
	case "steps":
		if len(args) != 1 {
			return fmt.Errorf("uso: steps N")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("N inválido: %w", err)
		}
		return mg.Steps(n)
	case "version":
		v, dirty, err := mg.Version()
		if err != nil {
			return err
		}
		fmt.Printf("version=%d dirty=%t\n", v, dirty)
		return nil
	default:
		return fmt.Errorf("comando desconocido (up|down|steps N|version)")
	}
}
