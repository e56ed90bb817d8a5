package patient

import (
	"time"

	"github.com/google/uuid"
)

// Patient lifecycle statuses. Patients are never physically deleted; they
// are deactivated by flipping status to Inativo.
const (
	StatusAtivo   = "Ativo"
	StatusInativo = "Inativo"
)

// Patient maps to the patient table.
type Patient struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Status       string     `db:"status" json:"status"`
	FullName     string     `db:"full_name" json:"full_name"`
	BirthDate    time.Time  `db:"birth_date" json:"birth_date"`
	CNS          *string    `db:"cns" json:"cns,omitempty"`
	GuardianName string     `db:"guardian_name" json:"guardian_name"`
	Email        *string    `db:"email" json:"email,omitempty"`
	Municipality *string    `db:"municipality" json:"municipality,omitempty"`
	Notes        *string    `db:"notes" json:"notes,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`

	// Phones is populated on reads that join the phone table and consumed
	// on create; it is not a column.
	Phones []*Phone `json:"phones,omitempty"`

	// UnknownMunicipality is an advisory flag set on writes when the
	// municipality does not match the served-municipality list. Unknown
	// spellings are accepted, never rejected; not a column.
	UnknownMunicipality bool `json:"unknown_municipality,omitempty"`
}

// Active reports whether the patient appears in default listings and in the
// patient picker when creating an order.
func (p *Patient) Active() bool { return p.Status == StatusAtivo }

// Phone maps to the patient_phone table. Exactly one phone per patient is
// flagged as the WhatsApp contact.
type Phone struct {
	ID        uuid.UUID `db:"id" json:"id"`
	PatientID uuid.UUID `db:"patient_id" json:"patient_id"`
	Number    string    `db:"number" json:"number"`
	WhatsApp  bool      `db:"whatsapp" json:"whatsapp"`
}
