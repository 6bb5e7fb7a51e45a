package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"opscurator/internal/service"
)

//go:embed schema.sql
var schema string

type sqlRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string, logger *zap.Logger) (service.Repository, error) {
	repo, err := openSQLite(dbPath)
	if err != nil {
		return nil, err
	}
	logger.Info("sqlite database connected and schema applied", zap.String("path", dbPath))
	return repo, nil
}

func openSQLite(dbPath string) (*sqlRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	// one writer; also keeps ":memory:" databases on a single connection
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &sqlRepository{db: db}, nil
}

func (r *sqlRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *sqlRepository) Close() error {
	return r.db.Close()
}

func now() time.Time {
	return time.Now().UTC()
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
