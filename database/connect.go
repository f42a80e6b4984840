package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"

	"github.com/rpupo63/portfolio-backend/config"
)

// Supported values of DB_TYPE.
const (
	TypePostgres = "postgres"
	TypeSupabase = "supa"
	TypeSQLite   = "sqlite"
)

// Options selects a dialect and the connection strings for it.
type Options struct {
	Type     string
	DSN      string
	Replicas []string
	LogLevel logger.LogLevel
}

// OptionsFromConfig builds the connection options from environment configuration.
func OptionsFromConfig(c map[string]string) (Options, error) {
	opts := Options{
		Type:     config.GetString(c, "DB_TYPE", TypeSQLite),
		Replicas: config.GetList(c, "DB_REPLICA_DSNS"),
		LogLevel: logger.Warn,
	}

	switch opts.Type {
	case TypePostgres:
		opts.DSN = config.GetString(c, "DATABASE_URL", "")
		if opts.DSN == "" {
			return opts, fmt.Errorf("DATABASE_URL is required when DB_TYPE=%s", TypePostgres)
		}
	case TypeSupabase:
		opts.DSN = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=require",
			config.GetString(c, "SUPABASE_DB_HOST", ""),
			config.GetString(c, "SUPABASE_DB_USER", ""),
			config.GetString(c, "SUPABASE_DB_PASSWORD", ""),
			config.GetString(c, "SUPABASE_DB_NAME", ""),
			config.GetString(c, "SUPABASE_DB_PORT", "5432"),
		)
	case TypeSQLite:
		opts.DSN = SQLiteDSN(config.GetString(c, "SQLITE_PATH", "portfolio.db"))
	default:
		return opts, fmt.Errorf("unsupported DB_TYPE %q", opts.Type)
	}

	return opts, nil
}

// SQLiteDSN enables foreign keys so cascading deletes are enforced.
func SQLiteDSN(path string) string {
	return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL", path)
}

// Open connects to the configured database and registers read replicas when given.
func Open(opts Options) (*gorm.DB, error) {
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  opts.LogLevel,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)
	gormConfig := &gorm.Config{
		PrepareStmt:    false,
		Logger:         newLogger,
		TranslateError: true,
	}

	var dialector gorm.Dialector
	switch opts.Type {
	case TypePostgres, TypeSupabase:
		dialector = postgres.New(postgres.Config{
			DSN:                  opts.DSN,
			PreferSimpleProtocol: true,
		})
	case TypeSQLite:
		dialector = sqlite.Open(opts.DSN)
	default:
		return nil, fmt.Errorf("unsupported DB_TYPE %q", opts.Type)
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	if opts.Type == TypeSQLite {
		// SQLite allows a single writer; more connections only produce SQLITE_BUSY
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if len(opts.Replicas) > 0 && opts.Type != TypeSQLite {
		replicas := make([]gorm.Dialector, 0, len(opts.Replicas))
		for _, dsn := range opts.Replicas {
			replicas = append(replicas, postgres.New(postgres.Config{DSN: dsn, PreferSimpleProtocol: true}))
		}
		if err := db.Use(dbresolver.Register(dbresolver.Config{
			Replicas: replicas,
			Policy:   dbresolver.RandomPolicy{},
		})); err != nil {
			return nil, fmt.Errorf("error registering read replicas: %w", err)
		}
	}

	return db, nil
}
