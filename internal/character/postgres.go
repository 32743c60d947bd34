package character

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists characters in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := initCharacterSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

func initCharacterSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmt := `CREATE TABLE IF NOT EXISTS characters (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT '',
		personality TEXT NOT NULL DEFAULT '',
		speech_style TEXT NOT NULL DEFAULT '',
		voice_name TEXT NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`
	if _, err := pool.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("init schema failed: %w", err)
	}
	return nil
}

const characterColumns = `id, name, description, role, personality, speech_style, voice_name, is_active, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, c Character) (Character, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := s.pool.Exec(ctx,
		`INSERT INTO characters (`+characterColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		c.ID, c.Name, c.Description, c.Role, c.Personality, c.SpeechStyle,
		c.VoiceName, c.IsActive, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return Character{}, fmt.Errorf("create character: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Character, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+characterColumns+` FROM characters WHERE id = $1`, id)
	c, err := scanCharacter(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Character{}, ErrNotFound
	}
	if err != nil {
		return Character{}, fmt.Errorf("get character: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM characters WHERE id = $1 AND is_active)`,
		id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("character exists: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) Update(ctx context.Context, c Character) (Character, error) {
	c.UpdatedAt = time.Now().UTC()
	tag, err := s.pool.Exec(ctx,
		`UPDATE characters
		 SET name = $2, description = $3, role = $4, personality = $5,
		     speech_style = $6, voice_name = $7, is_active = $8, updated_at = $9
		 WHERE id = $1`,
		c.ID, c.Name, c.Description, c.Role, c.Personality, c.SpeechStyle,
		c.VoiceName, c.IsActive, c.UpdatedAt,
	)
	if err != nil {
		return Character{}, fmt.Errorf("update character: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return Character{}, ErrNotFound
	}
	return s.Get(ctx, c.ID)
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM characters WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete character: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Character, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+characterColumns+` FROM characters ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list characters: %w", err)
	}
	defer rows.Close()

	var out []Character
	for rows.Next() {
		c, err := scanCharacter(rows)
		if err != nil {
			return nil, fmt.Errorf("scan character: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func scanCharacter(row pgx.Row) (Character, error) {
	var c Character
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.Role, &c.Personality,
		&c.SpeechStyle, &c.VoiceName, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}
