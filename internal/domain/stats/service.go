package stats

import (
	"context"
	"fmt"
	"time"
)

// ActivePatientCounter is the slice of the patient registry the summary
// needs.
type ActivePatientCounter interface {
	CountActive(ctx context.Context) (int, error)
}

// CapacityReader reports the configured capacity for a date, if any.
type CapacityReader interface {
	CapacityFor(ctx context.Context, date time.Time) (capacity int, configured bool, err error)
}

type Service struct {
	repo     Repository
	patients ActivePatientCounter
	capacity CapacityReader
	now      func() time.Time
}

func NewService(repo Repository, patients ActivePatientCounter, capacity CapacityReader) *Service {
	return &Service{repo: repo, patients: patients, capacity: capacity, now: time.Now}
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Summary builds the dashboard snapshot for a reference date (today when
// zero).
func (s *Service) Summary(ctx context.Context, refDate time.Time) (*Summary, error) {
	if refDate.IsZero() {
		refDate = s.now()
	}
	today := truncateDay(refDate)

	sum := &Summary{Date: today.Format("2006-01-02")}

	byPriority, err := s.repo.PendingByPriority(ctx)
	if err != nil {
		return nil, err
	}
	sum.PendingByPriority = byPriority
	for _, n := range byPriority {
		sum.PendingTotal += n
	}

	sum.ScheduledToday, err = s.repo.CountScheduledBetween(ctx, today, today)
	if err != nil {
		return nil, err
	}
	sum.ScheduledNext7Days, err = s.repo.CountScheduledBetween(ctx, today, today.AddDate(0, 0, 7))
	if err != nil {
		return nil, err
	}

	sum.CapacityToday, sum.CapacityConfigured, err = s.capacity.CapacityFor(ctx, today)
	if err != nil {
		return nil, err
	}
	sum.CapacityUsedToday = sum.ScheduledToday

	sum.ActivePatients, err = s.patients.CountActive(ctx)
	if err != nil {
		return nil, err
	}
	return sum, nil
}

func (s *Service) Report(ctx context.Context, from, to time.Time) (*RangeReport, error) {
	if from.IsZero() || to.IsZero() {
		return nil, fmt.Errorf("from and to are required")
	}
	if to.Before(from) {
		return nil, fmt.Errorf("to must not precede from")
	}
	return s.repo.RangeReport(ctx, truncateDay(from), truncateDay(to))
}
