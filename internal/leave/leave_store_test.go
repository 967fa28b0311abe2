package leave_test

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"go-leave/internal/employee"
	"go-leave/internal/leave"
	"go-leave/internal/ledger"
	"go-leave/internal/messaging/kafka"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// memStore backs every repository the lifecycle touches. Transactions run one
// at a time and roll back by restoring a snapshot.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	employees map[string]employee.Employee
	requests  map[string]leave.LeaveRequest
	entries   []ledger.Entry
	outbox    []kafka.OutboxEvent

	failAppend error
}

type memSnapshot struct {
	employees map[string]employee.Employee
	requests  map[string]leave.LeaveRequest
	entries   []ledger.Entry
	outbox    []kafka.OutboxEvent
}

func newMemStore() *memStore {
	return &memStore{
		employees: map[string]employee.Employee{},
		requests:  map[string]leave.LeaveRequest{},
	}
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := memSnapshot{
		employees: make(map[string]employee.Employee, len(s.employees)),
		requests:  make(map[string]leave.LeaveRequest, len(s.requests)),
		entries:   append([]ledger.Entry(nil), s.entries...),
		outbox:    append([]kafka.OutboxEvent(nil), s.outbox...),
	}
	for k, v := range s.employees {
		snap.employees[k] = v
	}
	for k, v := range s.requests {
		snap.requests[k] = v
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees = snap.employees
	s.requests = snap.requests
	s.entries = snap.entries
	s.outbox = snap.outbox
}

func (s *memStore) addEmployee(joining time.Time, initial int) string {
	id := uuid.New()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees[id.String()] = employee.Employee{
		ID:                  id,
		FullName:            "Test Employee",
		JoiningDate:         joining,
		EmploymentStatus:    employee.StatusActive,
		InitialLeaveBalance: initial,
	}
	s.entries = append(s.entries, ledger.Entry{
		ID:         uuid.New(),
		EmployeeID: id,
		Source:     ledger.SourceInitialGrant,
		DeltaDays:  initial,
		CreatedAt:  time.Now().UTC(),
	})
	return id.String()
}

// addPending inserts a request directly, bypassing Apply's overlap check.
func (s *memStore) addPending(employeeID string, start, end time.Time, days int) string {
	id := uuid.New()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests[id.String()] = leave.LeaveRequest{
		ID:            id,
		EmployeeID:    uuid.MustParse(employeeID),
		StartDate:     start,
		EndDate:       end,
		DaysRequested: days,
		Status:        leave.StatusPending,
		Version:       1,
		CreatedAt:     time.Now().UTC(),
	}
	return id.String()
}

func (s *memStore) request(id string) leave.LeaveRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[id]
}

func (s *memStore) entriesFor(employeeID string, source ledger.Source) []ledger.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []ledger.Entry
	for _, e := range s.entries {
		if e.EmployeeID.String() == employeeID && (source == "" || e.Source == source) {
			out = append(out, e)
		}
	}
	return out
}

func (s *memStore) eventTypes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.outbox))
	for i, e := range s.outbox {
		out[i] = e.EventType
	}
	return out
}

type memTx struct {
	store *memStore
}

func (m memTx) WithinTx(_ context.Context, _ *sql.TxOptions, fn func(tx *sql.Tx) error) error {
	m.store.txMu.Lock()
	defer m.store.txMu.Unlock()

	snap := m.store.snapshot()
	if err := fn(nil); err != nil {
		m.store.restore(snap)
		return err
	}
	return nil
}

type memLeaveRepo struct{ s *memStore }

func (r memLeaveRepo) WithTx(*sql.Tx) leave.Repository { return r }

func (r memLeaveRepo) Create(_ context.Context, l *leave.LeaveRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.requests[l.ID.String()] = *l
	return nil
}

func (r memLeaveRepo) FindByID(_ context.Context, id string) (*leave.LeaveRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.requests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &l, nil
}

func (r memLeaveRepo) FindByIDForUpdate(ctx context.Context, id string) (*leave.LeaveRequest, error) {
	return r.FindByID(ctx, id)
}

func (r memLeaveRepo) List(_ context.Context, filter leave.ListFilter) ([]leave.LeaveRequest, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []leave.LeaveRequest
	for _, l := range r.s.requests {
		if filter.EmployeeID != "" && l.EmployeeID.String() != filter.EmployeeID {
			continue
		}
		if filter.Status != "" && l.Status != filter.Status {
			continue
		}
		all = append(all, l)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := int64(len(all))
	start := filter.Offset
	if start > len(all) {
		start = len(all)
	}
	end := start + filter.Limit
	if filter.Limit <= 0 || end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (r memLeaveRepo) HasOverlappingPeriod(_ context.Context, employeeID string, start, end time.Time, excludeID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, l := range r.s.requests {
		if id == excludeID || l.EmployeeID.String() != employeeID {
			continue
		}
		if l.Status != leave.StatusPending && l.Status != leave.StatusApproved {
			continue
		}
		if !l.StartDate.After(end) && !l.EndDate.Before(start) {
			return true, nil
		}
	}
	return false, nil
}

func (r memLeaveRepo) SumPendingDays(_ context.Context, employeeID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	total := 0
	for _, l := range r.s.requests {
		if l.EmployeeID.String() == employeeID && l.Status == leave.StatusPending {
			total += l.DaysRequested
		}
	}
	return total, nil
}

func (r memLeaveRepo) TransitionStatus(_ context.Context, t leave.Transition) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.requests[t.ID]
	if !ok || l.Status != t.FromStatus || l.Version != t.Version {
		return false, nil
	}
	decidedAt := t.DecidedAt
	l.Status = t.ToStatus
	l.DecidedBy = t.DecidedBy
	l.DecisionNote = t.DecisionNote
	l.DecidedAt = &decidedAt
	l.Version++
	r.s.requests[t.ID] = l
	return true, nil
}

type memEmployeeRepo struct{ s *memStore }

func (r memEmployeeRepo) WithTx(*sql.Tx) employee.Repository { return r }

func (r memEmployeeRepo) Create(_ context.Context, e *employee.Employee) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.employees[e.ID.String()] = *e
	return nil
}

func (r memEmployeeRepo) FindByID(_ context.Context, id string) (*employee.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.employees[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &e, nil
}

func (r memEmployeeRepo) FindByIDForUpdate(ctx context.Context, id string) (*employee.Employee, error) {
	return r.FindByID(ctx, id)
}

func (r memEmployeeRepo) Exists(_ context.Context, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.employees[id]
	return ok, nil
}

func (r memEmployeeRepo) List(context.Context, employee.ListFilter) ([]employee.Employee, int64, error) {
	return nil, 0, nil
}

func (r memEmployeeRepo) FindOptions(context.Context) ([]employee.Employee, error) {
	return nil, nil
}

func (r memEmployeeRepo) UpdateStatus(_ context.Context, e *employee.Employee) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur := r.s.employees[e.ID.String()]
	cur.EmploymentStatus = e.EmploymentStatus
	cur.TerminationDate = e.TerminationDate
	r.s.employees[e.ID.String()] = cur
	return nil
}

type memLedgerRepo struct{ s *memStore }

func (r memLedgerRepo) WithTx(*sql.Tx) ledger.Repository { return r }

func (r memLedgerRepo) Append(_ context.Context, e *ledger.Entry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failAppend != nil {
		return r.s.failAppend
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	r.s.entries = append(r.s.entries, *e)
	return nil
}

func (r memLedgerRepo) SumByEmployee(ctx context.Context, employeeID string) (ledger.Totals, error) {
	entries, err := r.ListAllByEmployee(ctx, employeeID)
	return ledger.Fold(entries), err
}

func (r memLedgerRepo) List(ctx context.Context, filter ledger.ListFilter) ([]ledger.Entry, int64, error) {
	entries, err := r.ListAllByEmployee(ctx, filter.EmployeeID)
	return entries, int64(len(entries)), err
}

func (r memLedgerRepo) ListAllByEmployee(_ context.Context, employeeID string) ([]ledger.Entry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []ledger.Entry
	for _, e := range r.s.entries {
		if e.EmployeeID.String() == employeeID {
			out = append(out, e)
		}
	}
	return out, nil
}

type memOutbox struct{ s *memStore }

func (o memOutbox) WithTx(*sql.Tx) kafka.OutboxRepository { return o }

func (o memOutbox) Create(_ context.Context, event kafka.OutboxEvent) error {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()
	o.s.outbox = append(o.s.outbox, event)
	return nil
}

func (o memOutbox) ListPending(context.Context, int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}

func (o memOutbox) MarkSent(context.Context, string) error { return nil }

func (o memOutbox) MarkFailed(context.Context, string, string) error { return nil }
