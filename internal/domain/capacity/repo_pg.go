package capacity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eegdesk/eegdesk/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.ConnFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *repoPG) Create(ctx context.Context, cfg *Config) error {
	cfg.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO capacity_config (id, date, capacity) VALUES ($1,$2,$3)`,
		cfg.ID, cfg.Date, cfg.Capacity)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDateExists
	}
	return err
}

func (r *repoPG) GetByDate(ctx context.Context, date time.Time) (*Config, error) {
	var cfg Config
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, date, capacity, created_at FROM capacity_config WHERE date = $1`, date).
		Scan(&cfg.ID, &cfg.Date, &cfg.Capacity, &cfg.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *repoPG) List(ctx context.Context, from, to time.Time) ([]*Config, error) {
	query := `SELECT id, date, capacity, created_at FROM capacity_config WHERE 1=1`
	var args []interface{}
	idx := 1
	if !from.IsZero() {
		query += ` AND date >= $1`
		args = append(args, from)
		idx++
	}
	if !to.IsZero() {
		if idx == 2 {
			query += ` AND date <= $2`
		} else {
			query += ` AND date <= $1`
		}
		args = append(args, to)
	}
	query += ` ORDER BY date ASC`

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Config
	for rows.Next() {
		var cfg Config
		if err := rows.Scan(&cfg.ID, &cfg.Date, &cfg.Capacity, &cfg.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &cfg)
	}
	return items, nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM capacity_config WHERE id = $1`, id)
	return err
}
