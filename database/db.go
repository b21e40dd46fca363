package database

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/mytheresa/stockroom/config"
	"github.com/mytheresa/stockroom/logger"
)

// Open connects to the configured backend: an embedded sqlite file or a hosted
// Postgres reached through pgx (default) or lib/pq.
func Open(cfg *config.Config, logg *logger.Logger) (*gorm.DB, error) {
	dbLog := logg.With("component", "database", "driver", cfg.DBDriver)

	gormCfg := &gorm.Config{
		TranslateError: true,
		Logger: gormLogger.New(
			log.New(os.Stderr, "\r\n", log.LstdFlags),
			gormLogger.Config{
				SlowThreshold:             time.Second,
				LogLevel:                  gormLogLevel(cfg),
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		),
	}

	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case config.DriverSQLite:
		dbLog.Info("Opening sqlite database", "path", cfg.SQLitePath)
		dialector = sqlite.Open(SQLiteDSN(cfg.SQLitePath))
	case config.DriverPostgres:
		d, err := postgresDialector(cfg)
		if err != nil {
			return nil, err
		}
		dbLog.Info("Connecting to Postgres", "pg_driver", cfg.PgDriver)
		dialector = d
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		dbLog.Error("Failed to open database", "error", err)
		return nil, fmt.Errorf("open %s database: %w", cfg.DBDriver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	if cfg.DBDriver == config.DriverSQLite {
		// One writer at a time; keeps write transactions from tripping over "database is locked".
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(20)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping %s database: %w", cfg.DBDriver, err)
	}

	dbLog.Info("Database ready")
	return db, nil
}

// SQLiteDSN turns a file path (or ":memory:") into a DSN with foreign keys enforced.
func SQLiteDSN(path string) string {
	if strings.Contains(path, "?") {
		if !strings.Contains(path, "_foreign_keys") {
			return path + "&_foreign_keys=1"
		}
		return path
	}
	return path + "?_foreign_keys=1&_busy_timeout=5000"
}

func postgresDialector(cfg *config.Config) (gorm.Dialector, error) {
	if cfg.PgDriver != config.PgDriverPq {
		return postgres.Open(cfg.PostgresDSN), nil
	}
	conn, err := sql.Open("postgres", cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open lib/pq connection: %w", err)
	}
	return postgres.New(postgres.Config{Conn: conn}), nil
}

func gormLogLevel(cfg *config.Config) gormLogger.LogLevel {
	if cfg.IsProduction() {
		return gormLogger.Error
	}
	return gormLogger.Warn
}
