package order

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PatientChecker is the slice of the patient registry the order intake
// needs: existence and active status of the referenced patient.
type PatientChecker interface {
	IsActive(ctx context.Context, id uuid.UUID) (bool, error)
}

// CapacityReader reports the configured capacity for a date, if any.
// Implemented by the capacity service; kept as a local interface so the
// two packages do not import each other.
type CapacityReader interface {
	CapacityFor(ctx context.Context, date time.Time) (capacity int, configured bool, err error)
}

type Service struct {
	repo     Repository
	patients PatientChecker
	capacity CapacityReader
}

func NewService(repo Repository, patients PatientChecker, capacity CapacityReader) *Service {
	return &Service{repo: repo, patients: patients, capacity: capacity}
}

var validOrderStatuses = map[string]bool{
	StatusPendente:  true,
	StatusAgendado:  true,
	StatusConcluido: true,
	StatusCancelado: true,
}

var validPatientTypes = map[string]bool{
	TypeAmbulatorio: true,
	TypeInternado:   true,
}

var validSedation = map[string]bool{
	SedationCom: true,
	SedationSem: true,
}

var validExecutorRoles = map[string]bool{
	RoleMedico:     true,
	RoleEnfermeiro: true,
	RoleTecnico:    true,
}

func (s *Service) Create(ctx context.Context, o *Order) error {
	if o.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	active, err := s.patients.IsActive(ctx, o.PatientID)
	if err != nil {
		return fmt.Errorf("patient not found")
	}
	if !active {
		return fmt.Errorf("patient is inactive")
	}
	if o.Status == "" {
		o.Status = StatusPendente
	}
	if !validOrderStatuses[o.Status] {
		return fmt.Errorf("invalid status: %s", o.Status)
	}
	// Zero is an omitted field after binding, not a caller-chosen rank.
	if o.Priority == 0 {
		o.Priority = PriorityDefault
	} else {
		o.Priority = ClampPriority(o.Priority)
	}
	if o.PatientType == "" {
		o.PatientType = TypeAmbulatorio
	}
	if !validPatientTypes[o.PatientType] {
		return fmt.Errorf("invalid patient_type: %s", o.PatientType)
	}
	if o.Sedation == "" {
		o.Sedation = SedationSem
	}
	if !validSedation[o.Sedation] {
		return fmt.Errorf("invalid sedation: %s", o.Sedation)
	}
	if o.OrderDate.IsZero() {
		o.OrderDate = time.Now()
	}
	// Status and scheduling fields move together.
	if o.Status == StatusAgendado && o.ScheduledDate == nil {
		return fmt.Errorf("scheduled_date is required for status Agendado")
	}
	if o.Status != StatusAgendado {
		o.ScheduledDate = nil
		o.ScheduledTime = nil
	}
	return s.repo.Create(ctx, o)
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	return s.repo.GetByID(ctx, id)
}

// Update is a free-form edit: any status may be set to any other status,
// including Concluido and Cancelado. The patient reference and the
// scheduling pair are not touched here.
func (s *Service) Update(ctx context.Context, o *Order) error {
	if o.ID == uuid.Nil {
		return fmt.Errorf("id is required")
	}
	existing, err := s.repo.GetByID(ctx, o.ID)
	if err != nil {
		return fmt.Errorf("order not found")
	}
	if o.PatientID != uuid.Nil && o.PatientID != existing.PatientID {
		return fmt.Errorf("patient_id is immutable")
	}
	o.PatientID = existing.PatientID
	if o.Status == "" {
		o.Status = existing.Status
	}
	if !validOrderStatuses[o.Status] {
		return fmt.Errorf("invalid status: %s", o.Status)
	}
	if o.Priority == 0 {
		o.Priority = existing.Priority
	} else {
		o.Priority = ClampPriority(o.Priority)
	}
	if o.PatientType == "" {
		o.PatientType = existing.PatientType
	}
	if !validPatientTypes[o.PatientType] {
		return fmt.Errorf("invalid patient_type: %s", o.PatientType)
	}
	if o.Sedation == "" {
		o.Sedation = existing.Sedation
	}
	if !validSedation[o.Sedation] {
		return fmt.Errorf("invalid sedation: %s", o.Sedation)
	}
	if o.OrderDate.IsZero() {
		o.OrderDate = existing.OrderDate
	}
	if o.Status == StatusConcluido && o.CompletedAt == nil {
		now := time.Now()
		o.CompletedAt = &now
	}
	return s.repo.Update(ctx, o)
}

func (s *Service) List(ctx context.Context, params map[string]string, limit, offset int) ([]*Order, int, error) {
	if params == nil {
		params = map[string]string{}
	}
	if st, ok := params["status"]; ok && !validOrderStatuses[st] {
		return nil, 0, fmt.Errorf("invalid status: %s", st)
	}
	return s.repo.List(ctx, params, limit, offset)
}

// ScheduleResult carries the advisory capacity picture for the chosen
// date alongside the updated order. Overbooking is allowed; the caller
// surfaces the overage, nothing blocks on it.
type ScheduleResult struct {
	Order         *Order `json:"order"`
	Capacity      int    `json:"capacity"`
	Used          int    `json:"used"`
	CapacityKnown bool   `json:"capacity_known"`
	Overbooked    bool   `json:"overbooked"`
}

const defaultScheduledTime = "08:00"

func (s *Service) Schedule(ctx context.Context, id uuid.UUID, date time.Time, timeSlot string) (*ScheduleResult, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("id is required")
	}
	if date.IsZero() {
		return nil, fmt.Errorf("date is required")
	}
	if timeSlot == "" {
		timeSlot = defaultScheduledTime
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, fmt.Errorf("order not found")
	}
	if err := s.repo.SetSchedule(ctx, id, date, timeSlot); err != nil {
		return nil, err
	}
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	res := &ScheduleResult{Order: o}
	res.Used, err = s.repo.CountScheduledOn(ctx, date)
	if err != nil {
		return nil, err
	}
	if s.capacity != nil {
		res.Capacity, res.CapacityKnown, err = s.capacity.CapacityFor(ctx, date)
		if err != nil {
			return nil, err
		}
		res.Overbooked = res.CapacityKnown && res.Used > res.Capacity
	}
	return res, nil
}

func (s *Service) Unschedule(ctx context.Context, id uuid.UUID) (*Order, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("id is required")
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, fmt.Errorf("order not found")
	}
	if err := s.repo.ClearSchedule(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// Archive shelves the order without touching its status; an order can be
// Pendente and archived, or Concluido and archived.
func (s *Service) Archive(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return fmt.Errorf("id is required")
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return fmt.Errorf("order not found")
	}
	now := time.Now()
	return s.repo.SetArchived(ctx, id, &now)
}

func (s *Service) Unarchive(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return fmt.Errorf("id is required")
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return fmt.Errorf("order not found")
	}
	return s.repo.SetArchived(ctx, id, nil)
}

func (s *Service) CountScheduledOn(ctx context.Context, date time.Time) (int, error) {
	return s.repo.CountScheduledOn(ctx, date)
}

func (s *Service) AddExecutor(ctx context.Context, orderID uuid.UUID, e *Executor) error {
	if orderID == uuid.Nil {
		return fmt.Errorf("order id is required")
	}
	if e.Name == "" {
		return fmt.Errorf("name is required")
	}
	if !validExecutorRoles[e.Role] {
		return fmt.Errorf("invalid role: %s", e.Role)
	}
	e.OrderID = orderID
	return s.repo.AddExecutor(ctx, e)
}

func (s *Service) RemoveExecutor(ctx context.Context, id uuid.UUID) error {
	return s.repo.RemoveExecutor(ctx, id)
}

func (s *Service) AddContactLog(ctx context.Context, orderID uuid.UUID, cl *ContactLog) error {
	if orderID == uuid.Nil {
		return fmt.Errorf("order id is required")
	}
	if cl.Method == "" {
		return fmt.Errorf("method is required")
	}
	if cl.Outcome == "" {
		return fmt.Errorf("outcome is required")
	}
	cl.OrderID = orderID
	return s.repo.AddContactLog(ctx, cl)
}

func (s *Service) GetContactLogs(ctx context.Context, orderID uuid.UUID) ([]*ContactLog, error) {
	return s.repo.GetContactLogs(ctx, orderID)
}

func (s *Service) RemoveContactLog(ctx context.Context, id uuid.UUID) error {
	return s.repo.RemoveContactLog(ctx, id)
}
