package order

import (
	"time"

	"github.com/google/uuid"
)

// Order is a single EEG exam request tied to one patient. The patient
// reference is immutable after creation; scheduling state lives in the
// status plus scheduled_date/scheduled_time pair, which are always set
// and cleared together.
type Order struct {
	ID                  uuid.UUID  `json:"id" db:"id"`
	PatientID           uuid.UUID  `json:"patient_id" db:"patient_id"`
	Status              string     `json:"status" db:"status"`
	Priority            int        `json:"priority" db:"priority"`
	PatientType         string     `json:"patient_type" db:"patient_type"`
	Sedation            string     `json:"sedation" db:"sedation"`
	RequestingPhysician *string    `json:"requesting_physician,omitempty" db:"requesting_physician"`
	ExecutingPhysician  *string    `json:"executing_physician,omitempty" db:"executing_physician"`
	ClinicalNotes       *string    `json:"clinical_notes,omitempty" db:"clinical_notes"`
	OrderDate           time.Time  `json:"order_date" db:"order_date"`
	ScheduledDate       *time.Time `json:"scheduled_date,omitempty" db:"scheduled_date"`
	ScheduledTime       *string    `json:"scheduled_time,omitempty" db:"scheduled_time"`
	CompletedAt         *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	ArchivedAt          *time.Time `json:"archived_at,omitempty" db:"archived_at"`
	CreatedAt           time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at" db:"updated_at"`

	// Joined rows, not columns on exam_order.
	Executors []*Executor `json:"executors,omitempty" db:"-"`

	// PatientName is filled on listing joins for display.
	PatientName string `json:"patient_name,omitempty" db:"-"`
}

const (
	StatusPendente  = "Pendente"
	StatusAgendado  = "Agendado"
	StatusConcluido = "Concluido"
	StatusCancelado = "Cancelado"
)

const (
	TypeAmbulatorio = "Ambulatorio"
	TypeInternado   = "Internado"
)

const (
	SedationCom = "Com"
	SedationSem = "Sem"
)

const (
	PriorityMin     = 1
	PriorityMax     = 4
	PriorityDefault = 3
)

func (o *Order) Archived() bool { return o.ArchivedAt != nil }

// Executor is a staff member recorded as having performed the exam.
type Executor struct {
	ID      uuid.UUID `json:"id" db:"id"`
	OrderID uuid.UUID `json:"order_id" db:"order_id"`
	Name    string    `json:"name" db:"name"`
	Role    string    `json:"role" db:"role"`
}

const (
	RoleMedico     = "medico"
	RoleEnfermeiro = "enfermeiro"
	RoleTecnico    = "tecnico"
)

// ContactLog records an outreach attempt (phone call, WhatsApp message)
// made while trying to schedule an order.
type ContactLog struct {
	ID        uuid.UUID `json:"id" db:"id"`
	OrderID   uuid.UUID `json:"order_id" db:"order_id"`
	Method    string    `json:"method" db:"method"`
	Outcome   string    `json:"outcome" db:"outcome"`
	Notes     *string   `json:"notes,omitempty" db:"notes"`
	ContactAt time.Time `json:"contact_at" db:"contact_at"`
	CreatedBy *string   `json:"created_by,omitempty" db:"created_by"`
}
