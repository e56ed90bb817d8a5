package patient

import (
	"context"
	"fmt"

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

const patientCols = `id, status, full_name, birth_date, cns, guardian_name,
	email, municipality, notes, created_at, updated_at`

func (r *repoPG) scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.Status, &p.FullName, &p.BirthDate, &p.CNS, &p.GuardianName,
		&p.Email, &p.Municipality, &p.Notes, &p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	if p.Status == "" {
		p.Status = StatusAtivo
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patient (id, status, full_name, birth_date, cns, guardian_name,
			email, municipality, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		p.ID, p.Status, p.FullName, p.BirthDate, p.CNS, p.GuardianName,
		p.Email, p.Municipality, p.Notes)
	if err != nil {
		return err
	}
	for _, ph := range p.Phones {
		ph.PatientID = p.ID
		if err := r.AddPhone(ctx, ph); err != nil {
			return err
		}
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, err := r.scanPatient(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patient WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	p.Phones, err = r.GetPhones(ctx, id)
	return p, err
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE patient SET full_name=$2, birth_date=$3, cns=$4, guardian_name=$5,
			email=$6, municipality=$7, notes=$8, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.FullName, p.BirthDate, p.CNS, p.GuardianName,
		p.Email, p.Municipality, p.Notes)
	return err
}

func (r *repoPG) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE patient SET status=$2, updated_at=NOW() WHERE id = $1`, id, status)
	return err
}

func (r *repoPG) List(ctx context.Context, params map[string]string, limit, offset int) ([]*Patient, int, error) {
	query := `SELECT ` + patientCols + ` FROM patient WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM patient WHERE 1=1`
	var args []interface{}
	idx := 1

	if p, ok := params["status"]; ok {
		query += fmt.Sprintf(` AND status = $%d`, idx)
		countQuery += fmt.Sprintf(` AND status = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["name"]; ok {
		query += fmt.Sprintf(` AND full_name ILIKE $%d`, idx)
		countQuery += fmt.Sprintf(` AND full_name ILIKE $%d`, idx)
		args = append(args, "%"+p+"%")
		idx++
	}
	if p, ok := params["municipality"]; ok {
		query += fmt.Sprintf(` AND municipality = $%d`, idx)
		countQuery += fmt.Sprintf(` AND municipality = $%d`, idx)
		args = append(args, p)
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY full_name ASC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Patient
	for rows.Next() {
		p, err := r.scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, nil
}

func (r *repoPG) CountActive(ctx context.Context) (int, error) {
	var total int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM patient WHERE status = $1`, StatusAtivo).Scan(&total)
	return total, err
}

func (r *repoPG) AddPhone(ctx context.Context, ph *Phone) error {
	ph.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patient_phone (id, patient_id, number, whatsapp)
		VALUES ($1,$2,$3,$4)`,
		ph.ID, ph.PatientID, ph.Number, ph.WhatsApp)
	return err
}

func (r *repoPG) GetPhones(ctx context.Context, patientID uuid.UUID) ([]*Phone, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, patient_id, number, whatsapp
		FROM patient_phone WHERE patient_id = $1 ORDER BY whatsapp DESC, number ASC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Phone
	for rows.Next() {
		var ph Phone
		if err := rows.Scan(&ph.ID, &ph.PatientID, &ph.Number, &ph.WhatsApp); err != nil {
			return nil, err
		}
		items = append(items, &ph)
	}
	return items, nil
}

func (r *repoPG) RemovePhone(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM patient_phone WHERE id = $1`, id)
	return err
}
