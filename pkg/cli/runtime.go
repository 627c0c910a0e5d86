package cli

import (
	"database/sql"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/akanksha86/governance-metadata-propagation/internal/app"
	"github.com/akanksha86/governance-metadata-propagation/internal/config"
	"github.com/akanksha86/governance-metadata-propagation/internal/db"
	"github.com/akanksha86/governance-metadata-propagation/internal/db/repository"
)

// runtime bundles everything a CLI verb needs: config, wired app, and the
// database pools to close on exit.
type runtime struct {
	cfg     *config.Config
	app     *app.App
	logger  *slog.Logger
	writeDB *sql.DB
	readDB  *sql.DB
}

// openRuntime loads config (env plus flag overrides), opens the metastore,
// runs pending migrations, and wires the application.
func openRuntime(cmd *cobra.Command) (*runtime, error) {
	_ = config.LoadDotEnv(".env")

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, err
	}

	applyFlagOverrides(cfg, cmd.Root().PersistentFlags())
	if err := validateOutputFormat(getOutputFormat(cmd)); err != nil {
		return nil, err
	}

	logger := newLogger(cfg.SlogLevel())
	for _, warning := range cfg.Warnings {
		logger.Warn(warning)
	}

	writeDB, readDB, err := db.OpenSQLitePair(cfg.MetaDBPath, 4)
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(writeDB); err != nil {
		_ = readDB.Close()
		_ = writeDB.Close()
		return nil, err
	}

	a, err := app.New(app.Deps{Cfg: cfg, WriteDB: writeDB, ReadDB: readDB, Logger: logger})
	if err != nil {
		_ = readDB.Close()
		_ = writeDB.Close()
		return nil, err
	}

	return &runtime{cfg: cfg, app: a, logger: logger, writeDB: writeDB, readDB: readDB}, nil
}

// applyFlagOverrides lets persistent flags win over environment values.
func applyFlagOverrides(cfg *config.Config, flags *pflag.FlagSet) {
	if v, _ := flags.GetString("db"); v != "" {
		cfg.MetaDBPath = v
	}
	if v, _ := flags.GetString("hints"); v != "" {
		cfg.HintsPath = v
	}
	if v, _ := flags.GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}
}

func (rt *runtime) close() {
	_ = rt.readDB.Close()
	_ = rt.writeDB.Close()
}

// dbDeps exposes the write-side repositories for snapshot loading.
func (rt *runtime) dbDeps() app.DBDeps {
	return app.DBDeps{
		Schema:     repository.NewSchemaRepo(rt.writeDB),
		Lineage:    repository.NewLineageRepo(rt.writeDB),
		Statements: repository.NewStatementRepo(rt.writeDB),
		Glossary:   repository.NewGlossaryRepo(rt.writeDB),
	}
}
