package stats

import (
	"context"
	"time"

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

func (r *repoPG) PendingByPriority(ctx context.Context) (map[int]int, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT priority, COUNT(*) FROM exam_order
		WHERE status = 'Pendente' AND archived_at IS NULL
		GROUP BY priority`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := map[int]int{1: 0, 2: 0, 3: 0, 4: 0}
	for rows.Next() {
		var priority, n int
		if err := rows.Scan(&priority, &n); err != nil {
			return nil, err
		}
		counts[priority] = n
	}
	return counts, nil
}

func (r *repoPG) CountScheduledBetween(ctx context.Context, from, to time.Time) (int, error) {
	var total int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM exam_order
		WHERE status = 'Agendado' AND archived_at IS NULL
		  AND scheduled_date >= $1 AND scheduled_date <= $2`,
		from, to).Scan(&total)
	return total, err
}

func (r *repoPG) RangeReport(ctx context.Context, from, to time.Time) (*RangeReport, error) {
	rep := &RangeReport{
		From:           from,
		To:             to,
		ByPriority:     map[int]int{},
		ByStatus:       map[string]int{},
		ByMunicipality: map[string]int{},
		ByPhysician:    map[string]int{},
		BySedation:     map[string]int{},
	}

	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM exam_order
		WHERE archived_at IS NULL AND order_date >= $1 AND order_date <= $2`,
		from, to).Scan(&rep.Total)
	if err != nil {
		return nil, err
	}

	if err := r.intFold(ctx, rep.ByPriority, `
		SELECT priority, COUNT(*) FROM exam_order
		WHERE archived_at IS NULL AND order_date >= $1 AND order_date <= $2
		GROUP BY priority`, from, to); err != nil {
		return nil, err
	}
	if err := r.stringFold(ctx, rep.ByStatus, `
		SELECT status, COUNT(*) FROM exam_order
		WHERE archived_at IS NULL AND order_date >= $1 AND order_date <= $2
		GROUP BY status`, from, to); err != nil {
		return nil, err
	}
	if err := r.stringFold(ctx, rep.ByMunicipality, `
		SELECT COALESCE(p.municipality, 'Nao informado'), COUNT(*)
		FROM exam_order o JOIN patient p ON p.id = o.patient_id
		WHERE o.archived_at IS NULL AND o.order_date >= $1 AND o.order_date <= $2
		GROUP BY p.municipality`, from, to); err != nil {
		return nil, err
	}
	if err := r.stringFold(ctx, rep.ByPhysician, `
		SELECT COALESCE(requesting_physician, 'Nao informado'), COUNT(*)
		FROM exam_order
		WHERE archived_at IS NULL AND order_date >= $1 AND order_date <= $2
		GROUP BY requesting_physician`, from, to); err != nil {
		return nil, err
	}
	if err := r.stringFold(ctx, rep.BySedation, `
		SELECT sedation, COUNT(*) FROM exam_order
		WHERE archived_at IS NULL AND order_date >= $1 AND order_date <= $2
		GROUP BY sedation`, from, to); err != nil {
		return nil, err
	}
	return rep, nil
}

func (r *repoPG) intFold(ctx context.Context, dest map[int]int, query string, args ...interface{}) error {
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var key, n int
		if err := rows.Scan(&key, &n); err != nil {
			return err
		}
		dest[key] = n
	}
	return nil
}

func (r *repoPG) stringFold(ctx context.Context, dest map[string]int, query string, args ...interface{}) error {
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return err
		}
		dest[key] = n
	}
	return nil
}
