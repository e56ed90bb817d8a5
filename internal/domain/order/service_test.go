package order

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockRepo struct {
	orders    map[uuid.UUID]*Order
	executors map[uuid.UUID]*Executor
	contacts  map[uuid.UUID]*ContactLog
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		orders:    make(map[uuid.UUID]*Order),
		executors: make(map[uuid.UUID]*Executor),
		contacts:  make(map[uuid.UUID]*ContactLog),
	}
}

func (m *mockRepo) Create(ctx context.Context, o *Order) error {
	o.ID = uuid.New()
	m.orders[o.ID] = o
	return nil
}

func (m *mockRepo) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	cp := *o
	return &cp, nil
}

func (m *mockRepo) Update(ctx context.Context, o *Order) error {
	existing, ok := m.orders[o.ID]
	if !ok {
		return fmt.Errorf("not found")
	}
	o.ScheduledDate = existing.ScheduledDate
	o.ScheduledTime = existing.ScheduledTime
	o.ArchivedAt = existing.ArchivedAt
	m.orders[o.ID] = o
	return nil
}

func (m *mockRepo) List(ctx context.Context, params map[string]string, limit, offset int) ([]*Order, int, error) {
	var items []*Order
	for _, o := range m.orders {
		switch params["archived"] {
		case "true":
			if o.ArchivedAt == nil {
				continue
			}
		case "all":
		default:
			if o.ArchivedAt != nil {
				continue
			}
		}
		if st, ok := params["status"]; ok && o.Status != st {
			continue
		}
		items = append(items, o)
	}
	return items, len(items), nil
}

func (m *mockRepo) SetSchedule(ctx context.Context, id uuid.UUID, date time.Time, timeSlot string) error {
	o, ok := m.orders[id]
	if !ok {
		return fmt.Errorf("not found")
	}
	o.Status = StatusAgendado
	o.ScheduledDate = &date
	o.ScheduledTime = &timeSlot
	return nil
}

func (m *mockRepo) ClearSchedule(ctx context.Context, id uuid.UUID) error {
	o, ok := m.orders[id]
	if !ok {
		return fmt.Errorf("not found")
	}
	o.Status = StatusPendente
	o.ScheduledDate = nil
	o.ScheduledTime = nil
	return nil
}

func (m *mockRepo) SetArchived(ctx context.Context, id uuid.UUID, archivedAt *time.Time) error {
	o, ok := m.orders[id]
	if !ok {
		return fmt.Errorf("not found")
	}
	o.ArchivedAt = archivedAt
	return nil
}

func (m *mockRepo) CountScheduledOn(ctx context.Context, date time.Time) (int, error) {
	n := 0
	for _, o := range m.orders {
		if o.Status == StatusAgendado && o.ArchivedAt == nil &&
			o.ScheduledDate != nil && o.ScheduledDate.Equal(date) {
			n++
		}
	}
	return n, nil
}

func (m *mockRepo) AddExecutor(ctx context.Context, e *Executor) error {
	e.ID = uuid.New()
	m.executors[e.ID] = e
	return nil
}

func (m *mockRepo) GetExecutors(ctx context.Context, orderID uuid.UUID) ([]*Executor, error) {
	var items []*Executor
	for _, e := range m.executors {
		if e.OrderID == orderID {
			items = append(items, e)
		}
	}
	return items, nil
}

func (m *mockRepo) RemoveExecutor(ctx context.Context, id uuid.UUID) error {
	delete(m.executors, id)
	return nil
}

func (m *mockRepo) AddContactLog(ctx context.Context, cl *ContactLog) error {
	cl.ID = uuid.New()
	m.contacts[cl.ID] = cl
	return nil
}

func (m *mockRepo) RemoveContactLog(ctx context.Context, id uuid.UUID) error {
	delete(m.contacts, id)
	return nil
}

func (m *mockRepo) GetContactLogs(ctx context.Context, orderID uuid.UUID) ([]*ContactLog, error) {
	var items []*ContactLog
	for _, cl := range m.contacts {
		if cl.OrderID == orderID {
			items = append(items, cl)
		}
	}
	return items, nil
}

type mockPatients struct {
	active map[uuid.UUID]bool
}

func (m *mockPatients) IsActive(ctx context.Context, id uuid.UUID) (bool, error) {
	active, ok := m.active[id]
	if !ok {
		return false, fmt.Errorf("not found")
	}
	return active, nil
}

type mockCapacity struct {
	byDate map[string]int
}

func (m *mockCapacity) CapacityFor(ctx context.Context, date time.Time) (int, bool, error) {
	cap, ok := m.byDate[date.Format("2006-01-02")]
	return cap, ok, nil
}

func newTestService() (*Service, *mockRepo, uuid.UUID, *mockCapacity) {
	repo := newMockRepo()
	patientID := uuid.New()
	patients := &mockPatients{active: map[uuid.UUID]bool{patientID: true}}
	capacity := &mockCapacity{byDate: map[string]int{}}
	return NewService(repo, patients, capacity), repo, patientID, capacity
}

func TestCreateOrderDefaults(t *testing.T) {
	svc, _, patientID, _ := newTestService()

	o := &Order{PatientID: patientID}
	if err := svc.Create(context.Background(), o); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if o.Status != StatusPendente {
		t.Errorf("expected status Pendente, got %s", o.Status)
	}
	if o.Priority != PriorityDefault {
		t.Errorf("expected priority %d, got %d", PriorityDefault, o.Priority)
	}
	if o.PatientType != TypeAmbulatorio {
		t.Errorf("expected patient_type Ambulatorio, got %s", o.PatientType)
	}
	if o.Sedation != SedationSem {
		t.Errorf("expected sedation Sem, got %s", o.Sedation)
	}
	if o.OrderDate.IsZero() {
		t.Error("expected order_date to default to now")
	}
}

func TestCreateOrderPriorityClamped(t *testing.T) {
	svc, _, patientID, _ := newTestService()

	o := &Order{PatientID: patientID, Priority: 9}
	if err := svc.Create(context.Background(), o); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if o.Priority != PriorityMax {
		t.Errorf("expected priority clamped to %d, got %d", PriorityMax, o.Priority)
	}
}

func TestCreateOrderRejectsInactivePatient(t *testing.T) {
	repo := newMockRepo()
	inactiveID := uuid.New()
	patients := &mockPatients{active: map[uuid.UUID]bool{inactiveID: false}}
	svc := NewService(repo, patients, nil)

	if err := svc.Create(context.Background(), &Order{PatientID: inactiveID}); err == nil {
		t.Error("expected error for inactive patient")
	}
	if err := svc.Create(context.Background(), &Order{PatientID: uuid.New()}); err == nil {
		t.Error("expected error for unknown patient")
	}
	if err := svc.Create(context.Background(), &Order{}); err == nil {
		t.Error("expected error for missing patient_id")
	}
}

func TestScheduleUnscheduleRoundTrip(t *testing.T) {
	svc, repo, patientID, _ := newTestService()

	o := &Order{PatientID: patientID, Priority: 1}
	if err := svc.Create(context.Background(), o); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	res, err := svc.Schedule(context.Background(), o.ID, date, "08:00")
	if err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}
	if res.Order.Status != StatusAgendado {
		t.Errorf("expected Agendado, got %s", res.Order.Status)
	}
	if res.Order.ScheduledDate == nil || !res.Order.ScheduledDate.Equal(date) {
		t.Error("expected scheduled_date set")
	}
	if res.Order.ScheduledTime == nil || *res.Order.ScheduledTime != "08:00" {
		t.Error("expected scheduled_time 08:00")
	}
	if res.Used != 1 {
		t.Errorf("expected used=1, got %d", res.Used)
	}

	got, err := svc.Unschedule(context.Background(), o.ID)
	if err != nil {
		t.Fatalf("Unschedule failed: %v", err)
	}
	if got.Status != StatusPendente {
		t.Errorf("expected Pendente after unschedule, got %s", got.Status)
	}
	if got.ScheduledDate != nil || got.ScheduledTime != nil {
		t.Error("expected scheduling fields cleared")
	}

	stored := repo.orders[o.ID]
	if stored.Status != StatusPendente || stored.ScheduledDate != nil {
		t.Error("stored order not returned to pre-schedule state")
	}
}

func TestScheduleDefaultsTime(t *testing.T) {
	svc, _, patientID, _ := newTestService()

	o := &Order{PatientID: patientID}
	if err := svc.Create(context.Background(), o); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	date := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	res, err := svc.Schedule(context.Background(), o.ID, date, "")
	if err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}
	if res.Order.ScheduledTime == nil || *res.Order.ScheduledTime != "08:00" {
		t.Error("expected default time 08:00")
	}
}

func TestScheduleReportsOverbooking(t *testing.T) {
	svc, _, patientID, capacity := newTestService()
	capacity.byDate["2025-05-02"] = 1
	date := time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC)

	first := &Order{PatientID: patientID}
	if err := svc.Create(context.Background(), first); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	res, err := svc.Schedule(context.Background(), first.ID, date, "08:00")
	if err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}
	if res.Overbooked {
		t.Error("first order should not be overbooked")
	}

	// Overbooking is advisory: the second schedule succeeds but reports it.
	second := &Order{PatientID: patientID}
	if err := svc.Create(context.Background(), second); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	res, err = svc.Schedule(context.Background(), second.ID, date, "09:00")
	if err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}
	if !res.Overbooked {
		t.Error("expected overbooked=true at used=2 capacity=1")
	}
	if res.Used != 2 || res.Capacity != 1 {
		t.Errorf("expected used=2 capacity=1, got used=%d capacity=%d", res.Used, res.Capacity)
	}
}

func TestArchivePreservesStatus(t *testing.T) {
	svc, repo, patientID, _ := newTestService()

	o := &Order{PatientID: patientID, Status: StatusConcluido}
	if err := svc.Create(context.Background(), o); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := svc.Archive(context.Background(), o.ID); err != nil {
		t.Fatalf("Archive failed: %v", err)
	}
	stored := repo.orders[o.ID]
	if stored.ArchivedAt == nil {
		t.Fatal("expected archived_at set")
	}
	if stored.Status != StatusConcluido {
		t.Errorf("archive must not change status, got %s", stored.Status)
	}

	if err := svc.Unarchive(context.Background(), o.ID); err != nil {
		t.Fatalf("Unarchive failed: %v", err)
	}
	if stored.ArchivedAt != nil {
		t.Error("expected archived_at cleared after unarchive")
	}
	if stored.Status != StatusConcluido {
		t.Errorf("unarchive must not change status, got %s", stored.Status)
	}
}

func TestDefaultListingExcludesArchived(t *testing.T) {
	svc, _, patientID, _ := newTestService()

	visible := &Order{PatientID: patientID}
	if err := svc.Create(context.Background(), visible); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	shelved := &Order{PatientID: patientID}
	if err := svc.Create(context.Background(), shelved); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := svc.Archive(context.Background(), shelved.ID); err != nil {
		t.Fatalf("Archive failed: %v", err)
	}

	items, total, err := svc.List(context.Background(), nil, 20, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].ID != visible.ID {
		t.Errorf("expected only the non-archived order, got %d", total)
	}

	_, total, err = svc.List(context.Background(), map[string]string{"archived": "true"}, 20, 0)
	if err != nil {
		t.Fatalf("List archived failed: %v", err)
	}
	if total != 1 {
		t.Errorf("expected 1 archived order, got %d", total)
	}
}

func TestArchivedExcludedFromScheduledCount(t *testing.T) {
	svc, _, patientID, _ := newTestService()
	date := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	o := &Order{PatientID: patientID}
	if err := svc.Create(context.Background(), o); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := svc.Schedule(context.Background(), o.ID, date, "08:00"); err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}
	if err := svc.Archive(context.Background(), o.ID); err != nil {
		t.Fatalf("Archive failed: %v", err)
	}

	n, err := svc.CountScheduledOn(context.Background(), date)
	if err != nil {
		t.Fatalf("CountScheduledOn failed: %v", err)
	}
	if n != 0 {
		t.Errorf("archived orders must not count toward capacity usage, got %d", n)
	}
}

func TestUpdateImmutablePatient(t *testing.T) {
	svc, _, patientID, _ := newTestService()

	o := &Order{PatientID: patientID}
	if err := svc.Create(context.Background(), o); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	edit := &Order{ID: o.ID, PatientID: uuid.New(), Status: StatusCancelado}
	if err := svc.Update(context.Background(), edit); err == nil {
		t.Error("expected error changing patient_id")
	}

	edit = &Order{ID: o.ID, Status: StatusCancelado, Priority: 2}
	if err := svc.Update(context.Background(), edit); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if edit.PatientID != patientID {
		t.Error("expected patient_id carried over from existing order")
	}
	if edit.Status != StatusCancelado {
		t.Errorf("free-form cancel should be allowed, got %s", edit.Status)
	}
}

func TestUpdateKeepsPriorityWhenOmitted(t *testing.T) {
	svc, _, patientID, _ := newTestService()

	o := &Order{PatientID: patientID, Priority: 2}
	if err := svc.Create(context.Background(), o); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	notes := "reagendar apos consulta"
	edit := &Order{ID: o.ID, ClinicalNotes: &notes}
	if err := svc.Update(context.Background(), edit); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if edit.Priority != 2 {
		t.Errorf("notes-only update must keep priority 2, got %d", edit.Priority)
	}

	edit = &Order{ID: o.ID, Priority: 9}
	if err := svc.Update(context.Background(), edit); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if edit.Priority != 4 {
		t.Errorf("explicit priority 9 should clamp to 4, got %d", edit.Priority)
	}
}

func TestUpdateConcluidoStampsCompletion(t *testing.T) {
	svc, _, patientID, _ := newTestService()

	o := &Order{PatientID: patientID}
	if err := svc.Create(context.Background(), o); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	edit := &Order{ID: o.ID, Status: StatusConcluido}
	if err := svc.Update(context.Background(), edit); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if edit.CompletedAt == nil {
		t.Error("expected completed_at stamped on transition to Concluido")
	}
}

func TestAddExecutorValidation(t *testing.T) {
	svc, _, patientID, _ := newTestService()

	o := &Order{PatientID: patientID}
	if err := svc.Create(context.Background(), o); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := svc.AddExecutor(context.Background(), o.ID, &Executor{Name: "Dra. Lia", Role: RoleMedico}); err != nil {
		t.Errorf("AddExecutor failed: %v", err)
	}
	if err := svc.AddExecutor(context.Background(), o.ID, &Executor{Name: "", Role: RoleEnfermeiro}); err == nil {
		t.Error("expected error for missing name")
	}
	if err := svc.AddExecutor(context.Background(), o.ID, &Executor{Name: "X", Role: "zelador"}); err == nil {
		t.Error("expected error for invalid role")
	}
}

func TestAddContactLogValidation(t *testing.T) {
	svc, _, patientID, _ := newTestService()

	o := &Order{PatientID: patientID}
	if err := svc.Create(context.Background(), o); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := svc.AddContactLog(context.Background(), o.ID, &ContactLog{Method: "telefone", Outcome: "sem resposta"}); err != nil {
		t.Errorf("AddContactLog failed: %v", err)
	}
	if err := svc.AddContactLog(context.Background(), o.ID, &ContactLog{Outcome: "atendeu"}); err == nil {
		t.Error("expected error for missing method")
	}
	if err := svc.AddContactLog(context.Background(), o.ID, &ContactLog{Method: "whatsapp"}); err == nil {
		t.Error("expected error for missing outcome")
	}

	logs, err := svc.GetContactLogs(context.Background(), o.ID)
	if err != nil {
		t.Fatalf("GetContactLogs failed: %v", err)
	}
	if len(logs) != 1 {
		t.Errorf("expected 1 contact log, got %d", len(logs))
	}
}
