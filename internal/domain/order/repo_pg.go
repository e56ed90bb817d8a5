package order

import (
	"context"
	"fmt"
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

const orderCols = `o.id, o.patient_id, o.status, o.priority, o.patient_type, o.sedation,
	o.requesting_physician, o.executing_physician, o.clinical_notes, o.order_date,
	o.scheduled_date, o.scheduled_time, o.completed_at, o.archived_at,
	o.created_at, o.updated_at`

func (r *repoPG) scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.PatientID, &o.Status, &o.Priority, &o.PatientType, &o.Sedation,
		&o.RequestingPhysician, &o.ExecutingPhysician, &o.ClinicalNotes, &o.OrderDate,
		&o.ScheduledDate, &o.ScheduledTime, &o.CompletedAt, &o.ArchivedAt,
		&o.CreatedAt, &o.UpdatedAt)
	return &o, err
}

func (r *repoPG) Create(ctx context.Context, o *Order) error {
	o.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO exam_order (id, patient_id, status, priority, patient_type, sedation,
			requesting_physician, executing_physician, clinical_notes, order_date,
			scheduled_date, scheduled_time)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		o.ID, o.PatientID, o.Status, o.Priority, o.PatientType, o.Sedation,
		o.RequestingPhysician, o.ExecutingPhysician, o.ClinicalNotes, o.OrderDate,
		o.ScheduledDate, o.ScheduledTime)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	o, err := r.scanOrder(r.conn(ctx).QueryRow(ctx,
		`SELECT `+orderCols+` FROM exam_order o WHERE o.id = $1`, id))
	if err != nil {
		return nil, err
	}
	o.Executors, err = r.GetExecutors(ctx, id)
	return o, err
}

// Update rewrites the editable fields. patient_id and the scheduling pair
// are deliberately excluded; those change only through Create, SetSchedule
// and ClearSchedule.
func (r *repoPG) Update(ctx context.Context, o *Order) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE exam_order SET status=$2, priority=$3, patient_type=$4, sedation=$5,
			requesting_physician=$6, executing_physician=$7, clinical_notes=$8,
			order_date=$9, completed_at=$10, updated_at=NOW()
		WHERE id = $1`,
		o.ID, o.Status, o.Priority, o.PatientType, o.Sedation,
		o.RequestingPhysician, o.ExecutingPhysician, o.ClinicalNotes,
		o.OrderDate, o.CompletedAt)
	return err
}

func (r *repoPG) List(ctx context.Context, params map[string]string, limit, offset int) ([]*Order, int, error) {
	where := ``
	var args []interface{}
	idx := 1

	// Archived rows are hidden unless explicitly requested.
	switch params["archived"] {
	case "true":
		where += ` AND o.archived_at IS NOT NULL`
	case "all":
	default:
		where += ` AND o.archived_at IS NULL`
	}
	if p, ok := params["status"]; ok {
		where += fmt.Sprintf(` AND o.status = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["patient_id"]; ok {
		where += fmt.Sprintf(` AND o.patient_id = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["priority"]; ok {
		where += fmt.Sprintf(` AND o.priority = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["scheduled_date"]; ok {
		where += fmt.Sprintf(` AND o.scheduled_date = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["municipality"]; ok {
		where += fmt.Sprintf(` AND p.municipality = $%d`, idx)
		args = append(args, p)
		idx++
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM exam_order o JOIN patient p ON p.id = o.patient_id WHERE 1=1` + where
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + orderCols + `, p.full_name
		FROM exam_order o JOIN patient p ON p.id = o.patient_id
		WHERE 1=1` + where +
		fmt.Sprintf(` ORDER BY o.priority ASC, o.order_date ASC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Order
	for rows.Next() {
		var o Order
		err := rows.Scan(&o.ID, &o.PatientID, &o.Status, &o.Priority, &o.PatientType, &o.Sedation,
			&o.RequestingPhysician, &o.ExecutingPhysician, &o.ClinicalNotes, &o.OrderDate,
			&o.ScheduledDate, &o.ScheduledTime, &o.CompletedAt, &o.ArchivedAt,
			&o.CreatedAt, &o.UpdatedAt, &o.PatientName)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, &o)
	}
	return items, total, nil
}

func (r *repoPG) SetSchedule(ctx context.Context, id uuid.UUID, date time.Time, timeSlot string) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE exam_order SET status=$2, scheduled_date=$3, scheduled_time=$4, updated_at=NOW()
		WHERE id = $1`,
		id, StatusAgendado, date, timeSlot)
	return err
}

func (r *repoPG) ClearSchedule(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE exam_order SET status=$2, scheduled_date=NULL, scheduled_time=NULL, updated_at=NOW()
		WHERE id = $1`,
		id, StatusPendente)
	return err
}

func (r *repoPG) SetArchived(ctx context.Context, id uuid.UUID, archivedAt *time.Time) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE exam_order SET archived_at=$2, updated_at=NOW() WHERE id = $1`, id, archivedAt)
	return err
}

func (r *repoPG) CountScheduledOn(ctx context.Context, date time.Time) (int, error) {
	var total int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM exam_order
		WHERE status = $1 AND scheduled_date = $2 AND archived_at IS NULL`,
		StatusAgendado, date).Scan(&total)
	return total, err
}

func (r *repoPG) AddExecutor(ctx context.Context, e *Executor) error {
	e.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO order_executor (id, order_id, name, role)
		VALUES ($1,$2,$3,$4)`,
		e.ID, e.OrderID, e.Name, e.Role)
	return err
}

func (r *repoPG) GetExecutors(ctx context.Context, orderID uuid.UUID) ([]*Executor, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, order_id, name, role FROM order_executor
		WHERE order_id = $1 ORDER BY role ASC, name ASC`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Executor
	for rows.Next() {
		var e Executor
		if err := rows.Scan(&e.ID, &e.OrderID, &e.Name, &e.Role); err != nil {
			return nil, err
		}
		items = append(items, &e)
	}
	return items, nil
}

func (r *repoPG) RemoveExecutor(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM order_executor WHERE id = $1`, id)
	return err
}

func (r *repoPG) AddContactLog(ctx context.Context, cl *ContactLog) error {
	cl.ID = uuid.New()
	if cl.ContactAt.IsZero() {
		cl.ContactAt = time.Now()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO contact_log (id, order_id, method, outcome, notes, contact_at, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		cl.ID, cl.OrderID, cl.Method, cl.Outcome, cl.Notes, cl.ContactAt, cl.CreatedBy)
	return err
}

func (r *repoPG) GetContactLogs(ctx context.Context, orderID uuid.UUID) ([]*ContactLog, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, order_id, method, outcome, notes, contact_at, created_by
		FROM contact_log WHERE order_id = $1 ORDER BY contact_at DESC`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*ContactLog
	for rows.Next() {
		var cl ContactLog
		if err := rows.Scan(&cl.ID, &cl.OrderID, &cl.Method, &cl.Outcome, &cl.Notes, &cl.ContactAt, &cl.CreatedBy); err != nil {
			return nil, err
		}
		items = append(items, &cl)
	}
	return items, nil
}

func (r *repoPG) RemoveContactLog(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM contact_log WHERE id = $1`, id)
	return err
}
