package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/arturoeanton/blueprint-intel/internal/domain"
	"github.com/arturoeanton/blueprint-intel/internal/port"
)

//go:embed schema.sql
var schemaSQL string

// PostgresStore handles all relational database operations.
type PostgresStore struct {
	db *sql.DB
}

var _ port.BlueprintStore = (*PostgresStore)(nil)

// NewPostgresStore opens a connection and returns a store instance.
func NewPostgresStore(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use in transactions.
func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

// Migrate creates tables, indexes and the similarity function if missing.
// The vector dimension is fixed by the embedding model.
func (s *PostgresStore) Migrate(ctx context.Context, dimension int) error {
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf(schemaSQL, dimension, dimension)); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// --- Blueprints ---

// GetBlueprint loads a blueprint document.
func (s *PostgresStore) GetBlueprint(ctx context.Context, blueprintID string) (*domain.Blueprint, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM blueprints WHERE id = $1`, blueprintID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get blueprint %s: %w", blueprintID, port.ErrBlueprintNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get blueprint: %w", err)
	}

	bp, err := domain.ParseBlueprint(data)
	if err != nil {
		return nil, fmt.Errorf("get blueprint %s: %w", blueprintID, err)
	}
	return bp, nil
}

// SaveBlueprint inserts or replaces a blueprint document.
func (s *PostgresStore) SaveBlueprint(ctx context.Context, blueprintID string, bp *domain.Blueprint) error {
	data, err := json.Marshal(bp)
	if err != nil {
		return fmt.Errorf("encode blueprint: %w", err)
	}
	query := `
		INSERT INTO blueprints (id, data)
		VALUES ($1, $2::jsonb)
		ON CONFLICT (id) DO UPDATE SET
			data = EXCLUDED.data,
			updated_at = NOW()`
	if _, err := s.db.ExecContext(ctx, query, blueprintID, string(data)); err != nil {
		return fmt.Errorf("save blueprint: %w", err)
	}
	return nil
}

// --- Audit Logs ---

// WriteAudit implements middleware.AuditWriter.
func (s *PostgresStore) WriteAudit(ctx context.Context, l domain.AuditLog) error {
	query := `INSERT INTO audit_logs (request_id, action, blueprint_id, path, details, ip, user_agent)
	          VALUES ($1, $2, NULLIF($3, ''), $4, $5::jsonb, $6, $7)`
	_, err := s.db.ExecContext(ctx, query,
		l.RequestID, l.Action, l.BlueprintID, l.Path, l.Details, l.IP, l.UserAgent,
	)
	return err
}

// ListAuditLogs returns recent audit logs with optional filters.
func (s *PostgresStore) ListAuditLogs(ctx context.Context, limit int, action, blueprintID string) ([]domain.AuditLog, error) {
	query := `SELECT id, request_id, action, COALESCE(blueprint_id, ''), path, details, ip, user_agent, created_at
	          FROM audit_logs WHERE 1 = 1`
	args := []any{}

	if action != "" {
		args = append(args, action)
		query += fmt.Sprintf(" AND action = $%d", len(args))
	}
	if blueprintID != "" {
		args = append(args, blueprintID)
		query += fmt.Sprintf(" AND blueprint_id = $%d", len(args))
	}

	query += " ORDER BY created_at DESC"

	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	defer rows.Close()

	logs := []domain.AuditLog{}
	for rows.Next() {
		var l domain.AuditLog
		if err := rows.Scan(
			&l.ID, &l.RequestID, &l.Action, &l.BlueprintID, &l.Path,
			&l.Details, &l.IP, &l.UserAgent, &l.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
