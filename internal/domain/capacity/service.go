package capacity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// OrderCounter is the slice of the order store the ledger needs: how many
// non-archived Agendado orders sit on a date. Usage is never stored, it is
// recomputed on every read.
type OrderCounter interface {
	CountScheduledOn(ctx context.Context, date time.Time) (int, error)
}

type Service struct {
	repo   Repository
	orders OrderCounter
}

func NewService(repo Repository, orders OrderCounter) *Service {
	return &Service{repo: repo, orders: orders}
}

// Add inserts a capacity entry and returns the updated, date-sorted list.
// A duplicate date is rejected with ErrDateExists and persists nothing.
func (s *Service) Add(ctx context.Context, cfg *Config) ([]*Config, error) {
	if cfg.Date.IsZero() {
		return nil, fmt.Errorf("date is required")
	}
	if cfg.Capacity < 0 {
		return nil, fmt.Errorf("capacity must be non-negative")
	}
	existing, err := s.repo.GetByDate(ctx, cfg.Date)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDateExists
	}
	if err := s.repo.Create(ctx, cfg); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, time.Time{}, time.Time{})
}

func (s *Service) Remove(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return fmt.Errorf("id is required")
	}
	return s.repo.Delete(ctx, id)
}

// List returns configured days in a range with their recomputed usage.
func (s *Service) List(ctx context.Context, from, to time.Time) ([]*DayUsage, error) {
	configs, err := s.repo.List(ctx, from, to)
	if err != nil {
		return nil, err
	}
	items := make([]*DayUsage, 0, len(configs))
	for _, cfg := range configs {
		used, err := s.orders.CountScheduledOn(ctx, cfg.Date)
		if err != nil {
			return nil, err
		}
		items = append(items, &DayUsage{
			Config:     *cfg,
			Used:       used,
			Overbooked: used > cfg.Capacity,
		})
	}
	return items, nil
}

// Usage reports a single day; an unconfigured date still reports its
// recomputed usage with capacity zero and configured=false.
func (s *Service) Usage(ctx context.Context, date time.Time) (*DayUsage, bool, error) {
	used, err := s.orders.CountScheduledOn(ctx, date)
	if err != nil {
		return nil, false, err
	}
	cfg, err := s.repo.GetByDate(ctx, date)
	if errors.Is(err, ErrNotFound) {
		return &DayUsage{Config: Config{Date: date}, Used: used}, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &DayUsage{Config: *cfg, Used: used, Overbooked: used > cfg.Capacity}, true, nil
}

// CapacityFor satisfies the order service's advisory capacity lookup.
// A date with no entry reports configured=false; lookup failures are not
// swallowed as unconfigured.
func (s *Service) CapacityFor(ctx context.Context, date time.Time) (int, bool, error) {
	cfg, err := s.repo.GetByDate(ctx, date)
	if errors.Is(err, ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return cfg.Capacity, true, nil
}
