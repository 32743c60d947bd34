package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists session metadata in PostgreSQL so that validation
// survives process restarts.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := initSessionSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

func initSessionSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS client_sessions (
			session_id TEXT PRIMARY KEY,
			user_id TEXT,
			client_ip TEXT NOT NULL DEFAULT '',
			client_port INT NOT NULL DEFAULT 0,
			connected_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_client_sessions_user ON client_sessions (user_id);`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

func (s *PostgresStore) Create(ctx context.Context, info Info) error {
	if info.ConnectedAt.IsZero() {
		info.ConnectedAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO client_sessions (session_id, user_id, client_ip, client_port, connected_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (session_id) DO UPDATE
		 SET user_id = EXCLUDED.user_id,
		     client_ip = EXCLUDED.client_ip,
		     client_port = EXCLUDED.client_port,
		     connected_at = EXCLUDED.connected_at`,
		info.SessionID,
		nullableString(info.UserID),
		info.ClientIP,
		info.ClientPort,
		info.ConnectedAt,
	)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, sessionID string) (Info, error) {
	var (
		info   Info
		userID *string
	)
	err := s.pool.QueryRow(ctx,
		`SELECT session_id, user_id, client_ip, client_port, connected_at
		 FROM client_sessions WHERE session_id = $1`,
		sessionID,
	).Scan(&info.SessionID, &userID, &info.ClientIP, &info.ClientPort, &info.ConnectedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Info{}, ErrNotFound
	}
	if err != nil {
		return Info{}, fmt.Errorf("get session: %w", err)
	}
	if userID != nil {
		info.UserID = *userID
	}
	return info, nil
}

func (s *PostgresStore) Exists(ctx context.Context, sessionID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM client_sessions WHERE session_id = $1)`,
		sessionID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("session exists: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) Delete(ctx context.Context, sessionID string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM client_sessions WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func nullableString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
