package importer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/eegdesk/eegdesk/internal/domain/order"
	"github.com/eegdesk/eegdesk/internal/domain/patient"
	"github.com/eegdesk/eegdesk/internal/platform/db"
)

type PatientCreator interface {
	Create(ctx context.Context, p *patient.Patient) error
}

type OrderCreator interface {
	Create(ctx context.Context, o *order.Order) error
}

const (
	DefaultBatchSize  = 50
	DefaultBatchPause = 200 * time.Millisecond
)

// Importer migrates a legacy backup in fixed-size batches. Each batch
// runs in its own transaction; a failed batch is counted and the run
// moves on to the next one. The legacy-to-new id mapping lives for the
// duration of a single Run call and is never shared across runs.
type Importer struct {
	pool       *pgxpool.Pool
	patients   PatientCreator
	orders     OrderCreator
	batchSize  int
	batchPause time.Duration
	log        zerolog.Logger
}

func New(pool *pgxpool.Pool, patients PatientCreator, orders OrderCreator, log zerolog.Logger) *Importer {
	return &Importer{
		pool:       pool,
		patients:   patients,
		orders:     orders,
		batchSize:  DefaultBatchSize,
		batchPause: DefaultBatchPause,
		log:        log,
	}
}

func (i *Importer) WithBatchSize(n int) *Importer {
	if n > 0 {
		i.batchSize = n
	}
	return i
}

func (i *Importer) WithBatchPause(d time.Duration) *Importer {
	i.batchPause = d
	return i
}

func (i *Importer) Run(ctx context.Context, data []byte) (*Summary, error) {
	backup, err := Parse(data)
	if err != nil {
		return nil, err
	}

	sum := &Summary{}
	idMap := make(map[FlexID]uuid.UUID, len(backup.Patients))

	i.log.Info().
		Int("patients", len(backup.Patients)).
		Int("orders", len(backup.Orders)).
		Int("batch_size", i.batchSize).
		Msg("starting legacy import")

	for start := 0; start < len(backup.Patients); start += i.batchSize {
		if err := i.pause(ctx, start); err != nil {
			return sum, err
		}
		batch := backup.Patients[start:min(start+i.batchSize, len(backup.Patients))]
		i.runBatch(ctx, sum, func(ctx context.Context) {
			for _, lp := range batch {
				p, err := convertPatient(lp)
				if err != nil {
					sum.PatientErrors++
					sum.addError(fmt.Sprintf("patient %s: %v", lp.ID, err))
					continue
				}
				if err := i.patients.Create(ctx, p); err != nil {
					sum.PatientErrors++
					sum.addError(fmt.Sprintf("patient %s: %v", lp.ID, err))
					continue
				}
				sum.PatientsCreated++
				if lp.ID != "" {
					idMap[lp.ID] = p.ID
				}
			}
		})
	}

	for start := 0; start < len(backup.Orders); start += i.batchSize {
		if err := i.pause(ctx, start); err != nil {
			return sum, err
		}
		batch := backup.Orders[start:min(start+i.batchSize, len(backup.Orders))]
		i.runBatch(ctx, sum, func(ctx context.Context) {
			for _, lo := range batch {
				newPatientID, ok := idMap[lo.PatientID]
				if !ok {
					// Dangling reference: dropped and counted, never
					// inserted pointing at nothing.
					sum.OrderErrors++
					sum.addError(fmt.Sprintf("order %s: unknown legacy patient %s", lo.ID, lo.PatientID))
					continue
				}
				o := convertOrder(lo, newPatientID)
				if err := i.orders.Create(ctx, o); err != nil {
					sum.OrderErrors++
					sum.addError(fmt.Sprintf("order %s: %v", lo.ID, err))
					continue
				}
				sum.OrdersCreated++
			}
		})
	}

	i.log.Info().
		Int("patients_created", sum.PatientsCreated).
		Int("patient_errors", sum.PatientErrors).
		Int("orders_created", sum.OrdersCreated).
		Int("order_errors", sum.OrderErrors).
		Int("batches", sum.Batches).
		Msg("legacy import finished")
	return sum, nil
}

func (i *Importer) runBatch(ctx context.Context, sum *Summary, fn func(ctx context.Context)) {
	sum.Batches++
	run := func(ctx context.Context) error {
		fn(ctx)
		return nil
	}
	var err error
	if i.pool != nil {
		err = db.WithTx(ctx, i.pool, run)
	} else {
		err = run(ctx)
	}
	if err != nil {
		sum.addError(fmt.Sprintf("batch %d: %v", sum.Batches, err))
		i.log.Warn().Err(err).Int("batch", sum.Batches).Msg("batch failed")
	}
}

// pause throttles between batches so the store is not hammered; the first
// batch starts immediately.
func (i *Importer) pause(ctx context.Context, start int) error {
	if start == 0 || i.batchPause <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(i.batchPause):
		return nil
	}
}

func (s *Summary) addError(msg string) {
	const maxErrors = 100
	if len(s.Errors) < maxErrors {
		s.Errors = append(s.Errors, msg)
	}
}

func convertPatient(lp LegacyPatient) (*patient.Patient, error) {
	if lp.Name == "" {
		return nil, fmt.Errorf("missing name")
	}
	birthDate, err := parseDate(lp.BirthDate)
	if err != nil {
		return nil, fmt.Errorf("invalid birth date %q", lp.BirthDate)
	}
	p := &patient.Patient{
		FullName:     lp.Name,
		BirthDate:    birthDate,
		GuardianName: lp.Guardian,
		Status:       patient.StatusAtivo,
	}
	if strings.EqualFold(strings.TrimSpace(lp.Status), "inativo") {
		p.Status = patient.StatusInativo
	}
	if lp.CNS != "" {
		p.CNS = &lp.CNS
	}
	if lp.Email != "" {
		p.Email = &lp.Email
	}
	if lp.Municipality != "" {
		p.Municipality = &lp.Municipality
	}
	if lp.Notes != "" {
		p.Notes = &lp.Notes
	}
	for _, ph := range lp.Phones {
		if ph.Number == "" {
			continue
		}
		p.Phones = append(p.Phones, &patient.Phone{Number: ph.Number, WhatsApp: ph.WhatsApp})
	}
	// Older exports carried flat phone/whatsapp fields.
	if lp.Phone != "" {
		p.Phones = append(p.Phones, &patient.Phone{Number: lp.Phone})
	}
	if lp.WhatsApp != "" {
		p.Phones = append(p.Phones, &patient.Phone{Number: lp.WhatsApp, WhatsApp: true})
	}
	return p, nil
}

func convertOrder(lo LegacyOrder, patientID uuid.UUID) *order.Order {
	o := &order.Order{
		PatientID:   patientID,
		Status:      order.NormalizeStatus(lo.Status),
		Priority:    order.NormalizePriority(lo.Priority.Ptr()),
		PatientType: order.NormalizePatientType(lo.PatientType),
		Sedation:    order.NormalizeSedation(lo.Sedation),
	}
	if lo.RequestingPhysician != "" {
		o.RequestingPhysician = &lo.RequestingPhysician
	}
	if lo.Notes != "" {
		o.ClinicalNotes = &lo.Notes
	}
	if d, err := parseDate(lo.OrderDate); err == nil {
		o.OrderDate = d
	} else {
		o.OrderDate = time.Now()
	}
	if lo.ScheduledDate != "" {
		if d, err := parseDate(lo.ScheduledDate); err == nil && o.Status == order.StatusAgendado {
			o.ScheduledDate = &d
			slot := lo.ScheduledTime
			if slot == "" {
				slot = "08:00"
			}
			o.ScheduledTime = &slot
		}
	}
	// The scheduling pair moves together: Agendado without a usable date
	// falls back to the pending queue.
	if o.Status == order.StatusAgendado && o.ScheduledDate == nil {
		o.Status = order.StatusPendente
	}
	return o
}

var dateLayouts = []string{"2006-01-02", time.RFC3339, "02/01/2006"}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
