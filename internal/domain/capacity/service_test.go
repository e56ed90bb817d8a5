package capacity

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockRepo struct {
	configs map[uuid.UUID]*Config
	getErr  error
}

func newMockRepo() *mockRepo {
	return &mockRepo{configs: make(map[uuid.UUID]*Config)}
}

func (m *mockRepo) Create(ctx context.Context, cfg *Config) error {
	for _, existing := range m.configs {
		if existing.Date.Equal(cfg.Date) {
			return ErrDateExists
		}
	}
	cfg.ID = uuid.New()
	m.configs[cfg.ID] = cfg
	return nil
}

func (m *mockRepo) GetByDate(ctx context.Context, date time.Time) (*Config, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, cfg := range m.configs {
		if cfg.Date.Equal(date) {
			return cfg, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) List(ctx context.Context, from, to time.Time) ([]*Config, error) {
	var items []*Config
	for _, cfg := range m.configs {
		if !from.IsZero() && cfg.Date.Before(from) {
			continue
		}
		if !to.IsZero() && cfg.Date.After(to) {
			continue
		}
		items = append(items, cfg)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Date.Before(items[j].Date) })
	return items, nil
}

func (m *mockRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(m.configs, id)
	return nil
}

type mockOrders struct {
	scheduled map[string]int
}

func (m *mockOrders) CountScheduledOn(ctx context.Context, date time.Time) (int, error) {
	return m.scheduled[date.Format("2006-01-02")], nil
}

func day(y int, mo time.Month, d int) time.Time {
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}

func TestAddRejectsDuplicateDate(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, &mockOrders{scheduled: map[string]int{}})

	date := day(2025, 3, 10)
	list, err := svc.Add(context.Background(), &Config{Date: date, Capacity: 6})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(list))
	}

	_, err = svc.Add(context.Background(), &Config{Date: date, Capacity: 8})
	if err != ErrDateExists {
		t.Fatalf("expected ErrDateExists, got %v", err)
	}
	if len(repo.configs) != 1 {
		t.Errorf("duplicate add must not persist, have %d entries", len(repo.configs))
	}
	for _, cfg := range repo.configs {
		if cfg.Capacity != 6 {
			t.Errorf("original entry must be untouched, got capacity %d", cfg.Capacity)
		}
	}
}

func TestAddReturnsSortedList(t *testing.T) {
	svc := NewService(newMockRepo(), &mockOrders{scheduled: map[string]int{}})

	if _, err := svc.Add(context.Background(), &Config{Date: day(2025, 3, 20), Capacity: 4}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	list, err := svc.Add(context.Background(), &Config{Date: day(2025, 3, 10), Capacity: 6})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(list))
	}
	if !list[0].Date.Before(list[1].Date) {
		t.Error("expected date-sorted list")
	}
}

func TestAddValidation(t *testing.T) {
	svc := NewService(newMockRepo(), &mockOrders{scheduled: map[string]int{}})

	if _, err := svc.Add(context.Background(), &Config{Capacity: 5}); err == nil {
		t.Error("expected error for missing date")
	}
	if _, err := svc.Add(context.Background(), &Config{Date: day(2025, 3, 10), Capacity: -1}); err == nil {
		t.Error("expected error for negative capacity")
	}
}

func TestUsageRecomputed(t *testing.T) {
	orders := &mockOrders{scheduled: map[string]int{"2025-03-10": 7}}
	svc := NewService(newMockRepo(), orders)
	date := day(2025, 3, 10)

	if _, err := svc.Add(context.Background(), &Config{Date: date, Capacity: 6}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	usage, configured, err := svc.Usage(context.Background(), date)
	if err != nil {
		t.Fatalf("Usage failed: %v", err)
	}
	if !configured {
		t.Fatal("expected configured=true")
	}
	if usage.Used != 7 {
		t.Errorf("expected used=7, got %d", usage.Used)
	}
	if !usage.Overbooked {
		t.Error("expected overbooked at used=7 capacity=6")
	}

	// Usage always tracks the order store, never a stored counter.
	orders.scheduled["2025-03-10"] = 3
	usage, _, err = svc.Usage(context.Background(), date)
	if err != nil {
		t.Fatalf("Usage failed: %v", err)
	}
	if usage.Used != 3 || usage.Overbooked {
		t.Errorf("expected used=3 not overbooked, got used=%d overbooked=%v", usage.Used, usage.Overbooked)
	}
}

func TestUsageUnconfiguredDate(t *testing.T) {
	orders := &mockOrders{scheduled: map[string]int{"2025-04-01": 2}}
	svc := NewService(newMockRepo(), orders)

	usage, configured, err := svc.Usage(context.Background(), day(2025, 4, 1))
	if err != nil {
		t.Fatalf("Usage failed: %v", err)
	}
	if configured {
		t.Error("expected configured=false")
	}
	if usage.Used != 2 {
		t.Errorf("expected used=2, got %d", usage.Used)
	}
}

func TestLookupFailureIsNotUnconfigured(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, &mockOrders{scheduled: map[string]int{}})
	repo.getErr = fmt.Errorf("connection refused")

	if _, _, err := svc.Usage(context.Background(), day(2025, 3, 10)); err == nil {
		t.Error("Usage must surface the lookup error")
	}
	if _, configured, err := svc.CapacityFor(context.Background(), day(2025, 3, 10)); err == nil || configured {
		t.Errorf("CapacityFor must surface the lookup error, got configured=%v err=%v", configured, err)
	}
	if _, err := svc.Add(context.Background(), &Config{Date: day(2025, 3, 10), Capacity: 6}); err == nil {
		t.Error("Add must surface the pre-check lookup error")
	}
}

func TestRemove(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, &mockOrders{scheduled: map[string]int{}})

	date := day(2025, 3, 10)
	if _, err := svc.Add(context.Background(), &Config{Date: date, Capacity: 6}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	var id uuid.UUID
	for _, cfg := range repo.configs {
		id = cfg.ID
	}
	if err := svc.Remove(context.Background(), id); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if len(repo.configs) != 0 {
		t.Error("expected entry removed")
	}

	// A removed date can be configured again.
	if _, err := svc.Add(context.Background(), &Config{Date: date, Capacity: 8}); err != nil {
		t.Errorf("re-add after remove failed: %v", err)
	}
}
