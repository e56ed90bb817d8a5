package stats

import (
	"context"
	"time"
)

// Repository runs the read-side folds. Archived orders are excluded from
// every count.
type Repository interface {
	PendingByPriority(ctx context.Context) (map[int]int, error)
	CountScheduledBetween(ctx context.Context, from, to time.Time) (int, error)
	RangeReport(ctx context.Context, from, to time.Time) (*RangeReport, error)
}
