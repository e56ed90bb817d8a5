package order

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	Update(ctx context.Context, o *Order) error
	List(ctx context.Context, params map[string]string, limit, offset int) ([]*Order, int, error)

	SetSchedule(ctx context.Context, id uuid.UUID, date time.Time, timeSlot string) error
	ClearSchedule(ctx context.Context, id uuid.UUID) error
	SetArchived(ctx context.Context, id uuid.UUID, archivedAt *time.Time) error

	// CountScheduledOn counts non-archived Agendado orders on a date.
	// The capacity ledger recomputes usage from this on every read.
	CountScheduledOn(ctx context.Context, date time.Time) (int, error)

	AddExecutor(ctx context.Context, e *Executor) error
	GetExecutors(ctx context.Context, orderID uuid.UUID) ([]*Executor, error)
	RemoveExecutor(ctx context.Context, id uuid.UUID) error

	AddContactLog(ctx context.Context, cl *ContactLog) error
	GetContactLogs(ctx context.Context, orderID uuid.UUID) ([]*ContactLog, error)
	RemoveContactLog(ctx context.Context, id uuid.UUID) error
}
