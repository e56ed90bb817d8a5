package capacity

import (
	"time"

	"github.com/google/uuid"
)

// Config sets the elective exam slot count for one calendar day. At most
// one entry exists per date. The limit is advisory: scheduling past it is
// allowed and only surfaced as an overage.
type Config struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Date      time.Time `json:"date" db:"date"`
	Capacity  int       `json:"capacity" db:"capacity"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// DayUsage pairs a configured day with its recomputed usage.
type DayUsage struct {
	Config
	Used       int  `json:"used"`
	Overbooked bool `json:"overbooked"`
}
