package leave

import (
	"context"
	"database/sql"
	"go-leave/internal/balance"
	"go-leave/internal/employee"
	"go-leave/internal/events"
	leaveerrors "go-leave/internal/leave/errors"
	"go-leave/internal/ledger"
	"go-leave/internal/messaging/kafka"
	"go-leave/internal/shared/apperror"
	"go-leave/internal/shared/contextutil"
	"go-leave/internal/shared/dateonly"
	"go-leave/internal/shared/response"
	"go-leave/internal/shared/txmanager"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	Apply(ctx context.Context, employeeID string, req ApplyLeaveRequest) (LeaveResponse, error)
	Approve(ctx context.Context, id string, req DecisionRequest) (DecisionResponse, error)
	Reject(ctx context.Context, id string, req DecisionRequest) (DecisionResponse, error)
	Cancel(ctx context.Context, scopeEmployeeID, actorID, id string) (DecisionResponse, error)
	GetByID(ctx context.Context, scopeEmployeeID, id string) (LeaveResponse, error)
	GetAll(ctx context.Context, scopeEmployeeID string, req ListLeavesRequest, page, pageSize int) ([]LeaveResponse, int64, error)
}

type service struct {
	tx        txmanager.Manager
	repo      Repository
	employees employee.Repository
	ledger    ledger.Repository
	outbox    kafka.OutboxRepository
	policy    Policy
	now       func() time.Time
	logger    *zap.Logger
}

type Option func(*service)

// WithClock replaces the wall clock used for "today" and decision stamps.
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *service) {
		if logger != nil {
			s.logger = logger.Named("leave.service")
		}
	}
}

func NewService(
	tx txmanager.Manager,
	repo Repository,
	employees employee.Repository,
	ledgerRepo ledger.Repository,
	outboxRepo kafka.OutboxRepository,
	policy Policy,
	opts ...Option,
) Service {
	s := &service{
		tx:        tx,
		repo:      repo,
		employees: employees,
		ledger:    ledgerRepo,
		outbox:    outboxRepo,
		policy:    policy,
		now:       time.Now,
		logger:    zap.L().Named("leave.service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Apply(ctx context.Context, employeeID string, req ApplyLeaveRequest) (LeaveResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("apply leave requested",
		zap.String("request_id", rid),
		zap.String("employee_id", employeeID),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	var created LeaveRequest
	err := s.tx.WithinTx(ctx, nil, func(tx *sql.Tx) error {
		qtx := s.repo.WithTx(tx)
		ltx := s.ledger.WithTx(tx)

		empl, err := s.activeEmployee(ctx, s.employees.WithTx(tx), employeeID, false)
		if err != nil {
			return err
		}

		startDate, okStart := dateonly.Parse(req.StartDate)
		endDate, okEnd := dateonly.Parse(req.EndDate)
		if !okStart || !okEnd {
			return leaveerrors.ErrInvalidDate
		}
		if endDate.Before(startDate) {
			return leaveerrors.ErrInvalidRange
		}
		if s.policy.RejectCrossYear && !dateonly.SameYear(startDate, endDate) {
			return leaveerrors.ErrUnsupportedRange
		}
		if s.policy.RejectBackdated && startDate.Before(dateonly.Truncate(s.now())) {
			return leaveerrors.ErrBackdated
		}
		if startDate.Before(empl.JoiningDate) {
			return leaveerrors.ErrPriorToJoining
		}

		overlap, err := qtx.HasOverlappingPeriod(ctx, employeeID, startDate, endDate, "")
		if err != nil {
			s.logger.Error("apply leave overlap check failed", zap.Error(err))
			return apperror.Storage(err)
		}
		if overlap {
			s.logger.Warn("apply leave overlap detected",
				zap.String("employee_id", employeeID),
				zap.String("start_date", req.StartDate),
				zap.String("end_date", req.EndDate),
			)
			return leaveerrors.ErrOverlap
		}

		days := dateonly.DaysInclusive(startDate, endDate)
		bal, err := balance.NewCalculator(ltx, qtx).Compute(ctx, employeeID, balance.Conservative)
		if err != nil {
			s.logger.Error("apply leave balance read failed", zap.Error(err))
			return apperror.Storage(err)
		}
		if days > bal.Available {
			s.logger.Warn("apply leave insufficient balance",
				zap.String("employee_id", employeeID),
				zap.Int("available", bal.Available),
				zap.Int("requested", days),
			)
			return leaveerrors.InsufficientBalance(bal.Available, days)
		}

		now := s.now().UTC()
		created = LeaveRequest{
			ID:            uuid.New(),
			EmployeeID:    empl.ID,
			StartDate:     startDate,
			EndDate:       endDate,
			DaysRequested: days,
			Reason:        strings.TrimSpace(req.Reason),
			Status:        StatusPending,
			Version:       1,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := qtx.Create(ctx, &created); err != nil {
			s.logger.Error("apply leave persist failed", zap.Error(err))
			return mapRepositoryError(err)
		}

		return s.writeEvent(ctx, tx, rid, events.LeaveApplied, created)
	})
	if err != nil {
		return LeaveResponse{}, apperror.Storage(err)
	}

	s.logger.Info("apply leave success",
		zap.String("request_id", rid),
		zap.String("leave_id", created.ID.String()),
		zap.String("employee_id", employeeID),
		zap.Int("days_requested", created.DaysRequested),
	)
	return mapToResponse(created), nil
}

// Approve re-validates the request under a serializable transaction and
// commits the status flip together with the APPROVAL ledger entry.
func (s *service) Approve(ctx context.Context, id string, req DecisionRequest) (DecisionResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	if _, err := uuid.Parse(id); err != nil {
		return DecisionResponse{}, leaveerrors.ErrLeaveNotFound
	}
	s.logger.Debug("approve leave requested", zap.String("request_id", rid), zap.String("leave_id", id))

	var approved LeaveRequest
	err := s.tx.WithinTx(ctx, txmanager.Serializable, func(tx *sql.Tx) error {
		qtx := s.repo.WithTx(tx)
		ltx := s.ledger.WithTx(tx)

		l, err := qtx.FindByIDForUpdate(ctx, id)
		if err != nil {
			return mapRepositoryError(err)
		}
		if !l.IsPending() {
			return leaveerrors.ErrAlreadyDecided
		}

		if _, err := s.activeEmployee(ctx, s.employees.WithTx(tx), l.EmployeeID.String(), true); err != nil {
			return err
		}

		overlap, err := qtx.HasOverlappingPeriod(ctx, l.EmployeeID.String(), l.StartDate, l.EndDate, id)
		if err != nil {
			return apperror.Storage(err)
		}
		if overlap {
			s.logger.Warn("approve leave overlap detected", zap.String("leave_id", id))
			return leaveerrors.ErrOverlap
		}

		bal, err := balance.NewCalculator(ltx, qtx).Compute(ctx, l.EmployeeID.String(), balance.Conservative)
		if err != nil {
			return apperror.Storage(err)
		}
		available := bal.Available
		if s.policy.ApprovalExcludesOwnPending {
			available += l.DaysRequested
		}
		if available < l.DaysRequested {
			s.logger.Warn("approve leave insufficient balance",
				zap.String("leave_id", id),
				zap.Int("available", available),
				zap.Int("requested", l.DaysRequested),
			)
			return leaveerrors.InsufficientBalance(available, l.DaysRequested)
		}

		decided, err := s.transition(ctx, qtx, l, StatusApproved, req.DecidedBy, req.DecisionNote)
		if err != nil {
			return err
		}

		leaveID := l.ID
		if err := ltx.Append(ctx, &ledger.Entry{
			EmployeeID:     l.EmployeeID,
			Source:         ledger.SourceApproval,
			LeaveRequestID: &leaveID,
			DeltaDays:      -l.DaysRequested,
			Note:           "Deduct on approval",
			CreatedBy:      decided.DecidedBy,
			CreatedAt:      *decided.DecidedAt,
		}); err != nil {
			s.logger.Error("approve leave ledger append failed", zap.String("leave_id", id), zap.Error(err))
			return mapRepositoryError(err)
		}

		approved = decided
		return s.writeEvent(ctx, tx, rid, events.LeaveApproved, decided)
	})
	if err != nil {
		return DecisionResponse{}, apperror.Storage(err)
	}

	s.logger.Info("approve leave success",
		zap.String("request_id", rid),
		zap.String("leave_id", id),
		zap.String("employee_id", approved.EmployeeID.String()),
		zap.Int("days_requested", approved.DaysRequested),
	)
	return DecisionResponse{ID: id, Status: approved.Status, DaysRequested: approved.DaysRequested}, nil
}

func (s *service) Reject(ctx context.Context, id string, req DecisionRequest) (DecisionResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	if _, err := uuid.Parse(id); err != nil {
		return DecisionResponse{}, leaveerrors.ErrLeaveNotFound
	}

	var rejected LeaveRequest
	err := s.tx.WithinTx(ctx, nil, func(tx *sql.Tx) error {
		qtx := s.repo.WithTx(tx)

		l, err := qtx.FindByID(ctx, id)
		if err != nil {
			return mapRepositoryError(err)
		}
		if !l.IsPending() {
			return leaveerrors.ErrAlreadyDecided
		}

		rejected, err = s.transition(ctx, qtx, l, StatusRejected, req.DecidedBy, req.DecisionNote)
		if err != nil {
			return err
		}
		return s.writeEvent(ctx, tx, rid, events.LeaveRejected, rejected)
	})
	if err != nil {
		s.logger.Warn("reject leave failed", zap.String("leave_id", id), zap.Error(err))
		return DecisionResponse{}, apperror.Storage(err)
	}

	s.logger.Info("reject leave success", zap.String("request_id", rid), zap.String("leave_id", id))
	return DecisionResponse{ID: id, Status: rejected.Status}, nil
}

// Cancel withdraws a pending request. A non-empty scopeEmployeeID restricts
// the caller to their own requests; anything else reads as not found.
func (s *service) Cancel(ctx context.Context, scopeEmployeeID, actorID, id string) (DecisionResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	if _, err := uuid.Parse(id); err != nil {
		return DecisionResponse{}, leaveerrors.ErrLeaveNotFound
	}

	var cancelled LeaveRequest
	err := s.tx.WithinTx(ctx, nil, func(tx *sql.Tx) error {
		qtx := s.repo.WithTx(tx)

		l, err := qtx.FindByID(ctx, id)
		if err != nil {
			return mapRepositoryError(err)
		}
		if scopeEmployeeID != "" && l.EmployeeID.String() != scopeEmployeeID {
			return leaveerrors.ErrLeaveNotFound
		}
		if !l.IsPending() {
			return leaveerrors.ErrAlreadyDecided
		}

		cancelled, err = s.transition(ctx, qtx, l, StatusCancelled, actorID, "")
		if err != nil {
			return err
		}
		return s.writeEvent(ctx, tx, rid, events.LeaveCancelled, cancelled)
	})
	if err != nil {
		s.logger.Warn("cancel leave failed", zap.String("leave_id", id), zap.Error(err))
		return DecisionResponse{}, apperror.Storage(err)
	}

	s.logger.Info("cancel leave success", zap.String("request_id", rid), zap.String("leave_id", id))
	return DecisionResponse{ID: id, Status: cancelled.Status}, nil
}

func (s *service) GetByID(ctx context.Context, scopeEmployeeID, id string) (LeaveResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
	}

	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return LeaveResponse{}, mapRepositoryError(err)
	}
	if scopeEmployeeID != "" && l.EmployeeID.String() != scopeEmployeeID {
		return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
	}
	return mapToResponse(*l), nil
}

func (s *service) GetAll(
	ctx context.Context,
	scopeEmployeeID string,
	req ListLeavesRequest,
	page, pageSize int,
) ([]LeaveResponse, int64, error) {
	employeeID := scopeEmployeeID
	if employeeID == "" {
		employeeID = req.EmployeeID
	}

	leaves, total, err := s.repo.List(ctx, ListFilter{
		EmployeeID: employeeID,
		Status:     req.Status,
		Limit:      pageSize,
		Offset:     response.Offset(page, pageSize),
	})
	if err != nil {
		s.logger.Error("get all leaves failed", zap.Error(err))
		return nil, 0, apperror.Storage(err)
	}
	return mapToListResponse(leaves), total, nil
}

func (s *service) activeEmployee(ctx context.Context, repo employee.Repository, id string, lock bool) (*employee.Employee, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, leaveerrors.ErrEmployeeNotFound
	}

	var (
		empl *employee.Employee
		err  error
	)
	if lock {
		empl, err = repo.FindByIDForUpdate(ctx, id)
	} else {
		empl, err = repo.FindByID(ctx, id)
	}
	if err != nil {
		return nil, mapEmployeeError(err)
	}
	if !empl.IsActive() {
		return nil, leaveerrors.ErrEmployeeNotFound
	}
	return empl, nil
}

// transition flips l to status with a version-guarded update. Losing the race
// to a concurrent decision surfaces as ErrAlreadyDecided.
func (s *service) transition(
	ctx context.Context,
	repo Repository,
	l *LeaveRequest,
	status, decidedBy, note string,
) (LeaveRequest, error) {
	if strings.TrimSpace(decidedBy) == "" {
		decidedBy = DefaultDecidedBy
	}
	now := s.now().UTC()

	ok, err := repo.TransitionStatus(ctx, Transition{
		ID:           l.ID.String(),
		FromStatus:   l.Status,
		ToStatus:     status,
		Version:      l.Version,
		DecidedBy:    decidedBy,
		DecisionNote: note,
		DecidedAt:    now,
	})
	if err != nil {
		return LeaveRequest{}, apperror.Storage(err)
	}
	if !ok {
		return LeaveRequest{}, leaveerrors.ErrAlreadyDecided
	}

	out := *l
	out.Status = status
	out.DecidedBy = decidedBy
	out.DecisionNote = note
	out.DecidedAt = &now
	out.Version++
	out.UpdatedAt = now
	return out, nil
}

func (s *service) writeEvent(ctx context.Context, tx *sql.Tx, rid, eventType string, l LeaveRequest) error {
	payload := events.LeaveLifecycleEvent{
		EventType:      eventType,
		RequestID:      rid,
		LeaveRequestID: l.ID.String(),
		EmployeeID:     l.EmployeeID.String(),
		Status:         l.Status,
		StartDate:      dateonly.Format(l.StartDate),
		EndDate:        dateonly.Format(l.EndDate),
		DaysRequested:  l.DaysRequested,
		DecidedBy:      l.DecidedBy,
		OccurredAt:     s.now().UTC(),
	}

	event, err := kafka.NewOutboxEvent(rid, kafka.AggregateLeaveRequest, l.ID.String(),
		eventType, events.LeaveLifecycleTopic, payload)
	if err != nil {
		return err
	}
	if err := s.outbox.WithTx(tx).Create(ctx, event); err != nil {
		s.logger.Error("leave outbox persist failed",
			zap.String("leave_id", l.ID.String()),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return apperror.Storage(err)
	}
	return nil
}

func mapToResponse(l LeaveRequest) LeaveResponse {
	resp := LeaveResponse{
		ID:            l.ID.String(),
		EmployeeID:    l.EmployeeID.String(),
		StartDate:     dateonly.Format(l.StartDate),
		EndDate:       dateonly.Format(l.EndDate),
		DaysRequested: l.DaysRequested,
		Reason:        l.Reason,
		Status:        l.Status,
		DecidedBy:     l.DecidedBy,
		DecisionNote:  l.DecisionNote,
	}
	if l.DecidedAt != nil {
		resp.DecidedAt = l.DecidedAt.UTC().Format(time.RFC3339)
	}
	if !l.CreatedAt.IsZero() {
		resp.CreatedAt = l.CreatedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

func mapToListResponse(leaves []LeaveRequest) []LeaveResponse {
	res := make([]LeaveResponse, len(leaves))
	for i, l := range leaves {
		res[i] = mapToResponse(l)
	}
	return res
}
