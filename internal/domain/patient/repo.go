package patient

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	SetStatus(ctx context.Context, id uuid.UUID, status string) error
	List(ctx context.Context, params map[string]string, limit, offset int) ([]*Patient, int, error)
	CountActive(ctx context.Context) (int, error)
	// Phones
	AddPhone(ctx context.Context, ph *Phone) error
	GetPhones(ctx context.Context, patientID uuid.UUID) ([]*Phone, error)
	RemovePhone(ctx context.Context, id uuid.UUID) error
}
