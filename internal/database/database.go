package database

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"bizflow_backend/internal/config"
	"bizflow_backend/pkg/utils"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
)

//go:embed schema.sql
var schemaSQL string

// InitDB opens the pool, pings it and optionally applies the embedded schema.
func InitDB(ctx context.Context, cfg config.PostgresConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	utils.LogInfo("Successfully connected to the database", map[string]interface{}{"host": cfg.Host, "db": cfg.DBName})

	if cfg.ApplySchema {
		if err := ApplySchema(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
	}

	return db, nil
}

// ApplySchema executes the embedded schema. Every statement is idempotent.
func ApplySchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("could not execute schema script: %w", err)
	}
	utils.LogInfo("Database schema applied")
	return nil
}

// Sqlx wraps the shared pool for the struct-scanning report queries.
func Sqlx(db *sql.DB) *sqlx.DB {
	return sqlx.NewDb(db, "postgres")
}
