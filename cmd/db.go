package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/shopping-list/internal"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Connections share one pool: gorm serves the aggregate repositories and
// sqlx the flat notification and reminder queries.
type Connections struct {
	Gorm *gorm.DB
	SQLX *sqlx.DB
}

func (c *Connections) Close() error {
	return c.SQLX.Close()
}

func initDB(cfg internal.DatabaseConfig, env string) (*Connections, error) {
	logLevel := gormlogger.Warn
	if env == "production" {
		logLevel = gormlogger.Error
	}

	gdb, err := gorm.Open(postgres.Open(cfg.GetDSN()), &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(slogWriter{slog.Default()}, gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logLevel,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Connections{
		Gorm: gdb,
		SQLX: sqlx.NewDb(sqlDB, "pgx"),
	}, nil
}

// slogWriter routes gorm's printf-style logger into slog.
type slogWriter struct {
	logger *slog.Logger
}

func (w slogWriter) Printf(format string, args ...interface{}) {
	w.logger.Warn(fmt.Sprintf(format, args...), "component", "gorm")
}
