package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/example/media-catalog/internal/media"
	"github.com/example/media-catalog/internal/platform/db"
)

const mediaColumns = `id::text, title, type, director, budget, location, duration, year, created_at, updated_at`

// PostgresMediaStore persists media records in Postgres.
type PostgresMediaStore struct {
	db db.DB
}

// NewPostgresMediaStore creates a store backed by Postgres.
func NewPostgresMediaStore(conn db.DB) *PostgresMediaStore {
	return &PostgresMediaStore{db: conn}
}

// AutoMigrate creates the media table when it does not exist yet.
func (s *PostgresMediaStore) AutoMigrate(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
CREATE TABLE IF NOT EXISTS media (
    id          uuid PRIMARY KEY DEFAULT gen_random_uuid(),
    title       TEXT NOT NULL,
    type        TEXT NOT NULL,
    director    TEXT NOT NULL,
    budget      TEXT NOT NULL DEFAULT '',
    location    TEXT NOT NULL,
    duration    INT NOT NULL CHECK (duration > 0),
    year        INT NOT NULL CHECK (year >= 1800),
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`)
	if err != nil {
		return fmt.Errorf("migrate media: %w", err)
	}
	return nil
}

func (s *PostgresMediaStore) List(ctx context.Context, page, limit int) ([]media.Record, int, error) {
	var total int
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM media`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count media: %w", err)
	}

	rows, err := s.db.Query(ctx, `SELECT `+mediaColumns+`
FROM media
ORDER BY created_at DESC, id DESC
LIMIT $1 OFFSET $2`, limit, offset(page, limit))
	if err != nil {
		return nil, 0, fmt.Errorf("list media: %w", err)
	}
	defer rows.Close()

	out := []media.Record{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan media: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list media: %w", err)
	}
	return out, total, nil
}

func (s *PostgresMediaStore) Create(ctx context.Context, f media.Fields) (media.Record, error) {
	row := s.db.QueryRow(ctx, `INSERT INTO media (title, type, director, budget, location, duration, year)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING `+mediaColumns,
		f.Title, string(f.Kind), f.Director, f.Budget, f.Location, f.Duration, f.ReleaseYear)
	r, err := scanRecord(row)
	if err != nil {
		return media.Record{}, fmt.Errorf("insert media: %w", err)
	}
	return r, nil
}

func (s *PostgresMediaStore) Update(ctx context.Context, id string, f media.Fields) (media.Record, error) {
	row := s.db.QueryRow(ctx, `UPDATE media
SET title=$2, type=$3, director=$4, budget=$5, location=$6, duration=$7, year=$8, updated_at=now()
WHERE id::text=$1
RETURNING `+mediaColumns,
		id, f.Title, string(f.Kind), f.Director, f.Budget, f.Location, f.Duration, f.ReleaseYear)
	r, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return media.Record{}, ErrNotFound
		}
		return media.Record{}, fmt.Errorf("update media: %w", err)
	}
	return r, nil
}

func (s *PostgresMediaStore) Delete(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM media WHERE id::text=$1`, id)
	if err != nil {
		return fmt.Errorf("delete media: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanRecord(row pgx.Row) (media.Record, error) {
	var r media.Record
	var kind string
	err := row.Scan(&r.ID, &r.Title, &kind, &r.Director, &r.Budget, &r.Location,
		&r.Duration, &r.ReleaseYear, &r.CreatedAt, &r.UpdatedAt)
	r.Kind = media.Kind(kind)
	return r, err
}
