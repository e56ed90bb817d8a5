package capacity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrDateExists is returned when a second entry targets an already
// configured date. The handler maps it to 409 Conflict.
var ErrDateExists = errors.New("capacity already configured for this date")

// ErrNotFound is returned when no entry is configured for a date. The
// service treats it as "unconfigured"; any other lookup error propagates.
var ErrNotFound = errors.New("no capacity configured for this date")

type Repository interface {
	Create(ctx context.Context, cfg *Config) error
	GetByDate(ctx context.Context, date time.Time) (*Config, error)
	List(ctx context.Context, from, to time.Time) ([]*Config, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
