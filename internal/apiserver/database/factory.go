package database

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/amoylab/nextcrm/internal/common/config"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Store implements Database on top of gorm for every supported dialect
type Store struct {
	db *gorm.DB
}

var _ Database = (*Store)(nil)

// NewDatabase opens the configured database and migrates the schema
func NewDatabase(cfg *config.DatabaseConfig) (*Store, error) {
	var (
		dialector gorm.Dialector
		err       error
	)
	switch cfg.Type {
	case "postgres":
		dialector = postgresDialector(cfg)
	case "mysql":
		dialector = mysqlDialector(cfg)
	case "sqlite":
		dialector, err = sqliteDialector(cfg)
	case "sqlite3":
		dialector, err = sqliteCgoDialector(cfg)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}
	if err != nil {
		return nil, err
	}
	return open(dialector, cfg.DBName == ":memory:")
}

// newGormLogger logs slow queries and failures. Lookups that find nothing are
// a normal outcome for Find* and stay quiet.
func newGormLogger(w io.Writer) gormlogger.Interface {
	return gormlogger.New(log.New(w, "\r\n", log.LstdFlags), gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}

func open(dialector gorm.Dialector, inMemory bool) (*Store, error) {
	gormDB, err := gorm.Open(dialector, &gorm.Config{
		Logger: newGormLogger(os.Stdout),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if inMemory {
		// each connection to :memory: is a separate database
		sqlDB, err := gormDB.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := gormDB.AutoMigrate(allModels...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &Store{db: gormDB}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// DB exposes the underlying gorm handle for maintenance commands
func (s *Store) DB() *gorm.DB {
	return s.db
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return getDBFromContext(ctx, s.db)
}
