package patient

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

var validStatuses = map[string]bool{
	StatusAtivo:   true,
	StatusInativo: true,
}

func (s *Service) Create(ctx context.Context, p *Patient) error {
	if p.FullName == "" {
		return fmt.Errorf("full_name is required")
	}
	if p.BirthDate.IsZero() {
		return fmt.Errorf("birth_date is required")
	}
	if p.GuardianName == "" {
		return fmt.Errorf("guardian_name is required")
	}
	if len(p.Phones) == 0 {
		return fmt.Errorf("at least one phone is required")
	}
	for _, ph := range p.Phones {
		if ph.Number == "" {
			return fmt.Errorf("phone number is required")
		}
	}
	normalizeWhatsApp(p.Phones)
	flagUnknownMunicipality(p)
	if p.Status == "" {
		p.Status = StatusAtivo
	}
	if !validStatuses[p.Status] {
		return fmt.Errorf("invalid status: %s", p.Status)
	}
	return s.repo.Create(ctx, p)
}

// flagUnknownMunicipality marks municipalities outside the served list.
// Advisory only; intake accepts any spelling so legacy data still loads.
func flagUnknownMunicipality(p *Patient) {
	p.UnknownMunicipality = p.Municipality != nil && *p.Municipality != "" &&
		!KnownMunicipality(*p.Municipality)
}

// normalizeWhatsApp keeps exactly one WhatsApp phone per patient: the first
// flagged one wins, and when none is flagged the first phone takes the flag.
func normalizeWhatsApp(phones []*Phone) {
	if len(phones) == 0 {
		return
	}
	seen := false
	for _, ph := range phones {
		if ph.WhatsApp {
			if seen {
				ph.WhatsApp = false
			}
			seen = true
		}
	}
	if !seen {
		phones[0].WhatsApp = true
	}
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

// IsActive reports whether the patient exists and is Ativo. Used by the
// order intake so orders never point at deactivated patients.
func (s *Service) IsActive(ctx context.Context, id uuid.UUID) (bool, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return p.Active(), nil
}

func (s *Service) Update(ctx context.Context, p *Patient) error {
	if p.ID == uuid.Nil {
		return fmt.Errorf("id is required")
	}
	if p.FullName == "" {
		return fmt.Errorf("full_name is required")
	}
	if p.BirthDate.IsZero() {
		return fmt.Errorf("birth_date is required")
	}
	if p.GuardianName == "" {
		return fmt.Errorf("guardian_name is required")
	}
	flagUnknownMunicipality(p)
	return s.repo.Update(ctx, p)
}

// Deactivate flips the patient to Inativo. Records are never hard-deleted;
// inactive patients drop out of default listings but stay addressable by id.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return fmt.Errorf("id is required")
	}
	return s.repo.SetStatus(ctx, id, StatusInativo)
}

func (s *Service) Reactivate(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return fmt.Errorf("id is required")
	}
	return s.repo.SetStatus(ctx, id, StatusAtivo)
}

// List defaults to active patients only; pass status=Inativo or status=all
// to widen the view.
func (s *Service) List(ctx context.Context, params map[string]string, limit, offset int) ([]*Patient, int, error) {
	if params == nil {
		params = map[string]string{}
	}
	switch params["status"] {
	case "":
		params["status"] = StatusAtivo
	case "all":
		delete(params, "status")
	default:
		if !validStatuses[params["status"]] {
			return nil, 0, fmt.Errorf("invalid status: %s", params["status"])
		}
	}
	return s.repo.List(ctx, params, limit, offset)
}

func (s *Service) CountActive(ctx context.Context) (int, error) {
	return s.repo.CountActive(ctx)
}

func (s *Service) AddPhone(ctx context.Context, patientID uuid.UUID, ph *Phone) error {
	if patientID == uuid.Nil {
		return fmt.Errorf("patient id is required")
	}
	if ph.Number == "" {
		return fmt.Errorf("phone number is required")
	}
	ph.PatientID = patientID
	return s.repo.AddPhone(ctx, ph)
}

func (s *Service) RemovePhone(ctx context.Context, patientID, phoneID uuid.UUID) error {
	phones, err := s.repo.GetPhones(ctx, patientID)
	if err != nil {
		return err
	}
	if len(phones) <= 1 {
		return fmt.Errorf("cannot remove the last phone")
	}
	for _, ph := range phones {
		if ph.ID == phoneID {
			return s.repo.RemovePhone(ctx, phoneID)
		}
	}
	return fmt.Errorf("phone not found")
}
