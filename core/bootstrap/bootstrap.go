package bootstrap

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	coreconfig "github.com/m3rciful/hrbot/core/config"
	coredatabase "github.com/m3rciful/hrbot/core/database"
	"github.com/m3rciful/hrbot/core/logger"
)

// Options control the generic bootstrap pipeline shared between bots.
type Options struct {
	Config     *coreconfig.Config
	Database   coredatabase.Config
	Migrations fs.FS
	Modules    Modules

	LoggerInit func(*coreconfig.Config) error
	Connect    func(coredatabase.Config) (*sqlx.DB, error)
	Migrate    func(coredatabase.Config, fs.FS) error
}

// Result exposes infrastructure initialized by the bootstrap pipeline.
// DB is nil when the database driver keeps state in memory.
type Result struct {
	DB *sqlx.DB
}

// Close releases the infrastructure opened by Run.
func (r *Result) Close() error {
	if r == nil || r.DB == nil {
		return nil
	}
	return r.DB.Close()
}

// Run initializes the logger, connects to the database, applies migrations and runs seeders.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}

	loggerInit := opts.LoggerInit
	if loggerInit == nil {
		loggerInit = logger.InitLogger
	}
	if err := loggerInit(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	res := &Result{}
	if opts.Database.Persistent() {
		migrate := opts.Migrate
		if migrate == nil {
			migrate = coredatabase.RunMigrations
		}
		if err := migrate(opts.Database, opts.Migrations); err != nil {
			return nil, fmt.Errorf("bootstrap: migrations failed: %w", err)
		}

		connect := opts.Connect
		if connect == nil {
			connect = coredatabase.Connect
		}
		db, err := connect(opts.Database)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: database initialization failed: %w", err)
		}
		res.DB = db
	} else {
		logger.DB.Warn("volatile storage",
			slog.String("event", "db.memory"),
			slog.String("driver", opts.Database.Driver),
		)
	}

	for i, seeder := range opts.Modules.Seeders {
		if seeder == nil {
			continue
		}
		start := time.Now()
		if err := seeder.Seed(ctx, res); err != nil {
			_ = res.Close()
			return nil, fmt.Errorf("bootstrap: seeder %d failed: %w", i, err)
		}
		logger.SEED.Debug("seeder done",
			slog.String("event", "db.seed"),
			slog.Int("index", i),
			slog.Duration("duration", logger.RoundMS(time.Since(start))),
		)
	}

	return res, nil
}
