// Package cli wires the cobra command tree: serving the HTTP API, running
// migrations and the station-repair reconciliation.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/vmfab/rutero/internal/catalog"
	"github.com/vmfab/rutero/internal/claim"
	"github.com/vmfab/rutero/internal/config"
	"github.com/vmfab/rutero/internal/ctxlog"
	"github.com/vmfab/rutero/internal/evidence"
	"github.com/vmfab/rutero/internal/fault"
	"github.com/vmfab/rutero/internal/generator"
	"github.com/vmfab/rutero/internal/httpapi"
	"github.com/vmfab/rutero/internal/identity"
	"github.com/vmfab/rutero/internal/model"
	"github.com/vmfab/rutero/internal/sheet"
	"github.com/vmfab/rutero/internal/store"
)

// ExitError carries a specific process exit code out of command execution.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// New builds the root command.
func New() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:           "rutero",
		Short:         "Motor de hojas de ruta y reclamo de items de trabajo",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "archivo de configuración")

	root.AddCommand(serveCmd(&configFile))
	root.AddCommand(migrateCmd(&configFile))
	root.AddCommand(repairCmd(&configFile))
	return root
}

// setup loads config, configures the global logger and opens the store.
func setup(configFile string) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, err
	}

	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func serveCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Levanta el API HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(*configFile)
			if err != nil {
				return err
			}
			db, err := store.Open(cfg.DatabaseURL)
			if err != nil {
				return err
			}
			if err := store.Migrate(db); err != nil {
				return err
			}
			ev, err := evidence.New(cfg.EvidenceDir)
			if err != nil {
				return err
			}

			cat := catalog.New(db)
			server := httpapi.New(
				db,
				sheet.New(db, cat),
				claim.New(db),
				cat,
				ev,
				identity.AllowAll{},
				logger,
			)

			logger.Info("servidor iniciando", "addr", cfg.ListenAddr)
			if err := http.ListenAndServe(cfg.ListenAddr, server.Router()); err != nil {
				return &ExitError{Code: 1, Message: fmt.Sprintf("servidor detenido: %v", err)}
			}
			return nil
		},
	}
}

func migrateCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Crea o actualiza el esquema de la base de datos",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(*configFile)
			if err != nil {
				return err
			}
			db, err := store.Open(cfg.DatabaseURL)
			if err != nil {
				return err
			}
			if err := store.Migrate(db); err != nil {
				return err
			}
			logger.Info("esquema migrado", "database", cfg.DatabaseURL)
			return nil
		},
	}
}

// repairCmd is the reconciliation for sheets created before generation was
// gated on creation: sheets without stations get the default template of
// their machine type cloned in. Running it twice is a no-op.
func repairCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "repair-stations [hoja_ruta_id...]",
		Short: "Clona plantillas en hojas de ruta sin estaciones",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(*configFile)
			if err != nil {
				return err
			}
			db, err := store.Open(cfg.DatabaseURL)
			if err != nil {
				return err
			}
			cat := catalog.New(db)
			ctx := ctxlog.WithLogger(context.Background(), logger)

			ids, err := sheetIDs(ctx, db, args)
			if err != nil {
				return err
			}
			total := 0
			for _, id := range ids {
				created, err := generator.EnsureStations(ctx, db, cat, id)
				if err != nil {
					return err
				}
				total += created
			}
			logger.Info("reparación terminada", "hojas", len(ids), "estaciones_creadas", total)
			return nil
		},
	}
}

// sheetIDs resolves the repair targets: explicit arguments, or every sheet
// when none are given.
func sheetIDs(ctx context.Context, db *gorm.DB, args []string) ([]uint, error) {
	if len(args) > 0 {
		return parseIDs(args)
	}
	var ids []uint
	if err := db.WithContext(ctx).Model(&model.HojaRuta{}).Order("id ASC").Pluck("id", &ids).Error; err != nil {
		return nil, fault.Storage(err, "listando hojas de ruta")
	}
	return ids, nil
}

func parseIDs(args []string) ([]uint, error) {
	ids := make([]uint, 0, len(args))
	for _, a := range args {
		v, err := strconv.ParseUint(a, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("id de hoja inválido %q", a)
		}
		ids = append(ids, uint(v))
	}
	return ids, nil
}
