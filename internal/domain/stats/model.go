package stats

import "time"

// Summary is the dashboard snapshot: the pending queue, today's schedule
// against configured capacity, and the active patient count. Nothing here
// is stored; every number is a fold over the order and patient tables.
type Summary struct {
	Date               string      `json:"date"`
	PendingTotal       int         `json:"pending_total"`
	PendingByPriority  map[int]int `json:"pending_by_priority"`
	ScheduledToday     int         `json:"scheduled_today"`
	ScheduledNext7Days int         `json:"scheduled_next_7_days"`
	CapacityToday      int         `json:"capacity_today"`
	CapacityConfigured bool        `json:"capacity_configured"`
	CapacityUsedToday  int         `json:"capacity_used_today"`
	ActivePatients     int         `json:"active_patients"`
}

// RangeReport aggregates non-archived orders whose order_date falls in
// [From, To], broken down along the axes the print reports use.
type RangeReport struct {
	From           time.Time      `json:"from"`
	To             time.Time      `json:"to"`
	Total          int            `json:"total"`
	ByPriority     map[int]int    `json:"by_priority"`
	ByStatus       map[string]int `json:"by_status"`
	ByMunicipality map[string]int `json:"by_municipality"`
	ByPhysician    map[string]int `json:"by_physician"`
	BySedation     map[string]int `json:"by_sedation"`
}
