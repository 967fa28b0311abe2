package ledger

import (
	"context"
	ledgererrors "go-leave/internal/ledger/errors"
	"go-leave/internal/shared/apperror"
	"go-leave/internal/shared/contextutil"
	"go-leave/internal/shared/response"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EmployeeDirectory answers whether an employee exists. employee.Repository
// satisfies it.
type EmployeeDirectory interface {
	Exists(ctx context.Context, employeeID string) (bool, error)
}

type Service interface {
	List(ctx context.Context, scopeEmployeeID string, req ListLedgerRequest, page, pageSize int) ([]EntryResponse, int64, error)
	Adjust(ctx context.Context, actorID string, req AdjustmentRequest) (EntryResponse, error)
}

type service struct {
	repo      Repository
	employees EmployeeDirectory
	now       func() time.Time
	logger    *zap.Logger
}

func NewService(repo Repository, employees EmployeeDirectory, logger ...*zap.Logger) Service {
	l := zap.L().Named("ledger.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("ledger.service")
	}
	return &service{
		repo:      repo,
		employees: employees,
		now:       func() time.Time { return time.Now().UTC() },
		logger:    l,
	}
}

func (s *service) List(
	ctx context.Context,
	scopeEmployeeID string,
	req ListLedgerRequest,
	page, pageSize int,
) ([]EntryResponse, int64, error) {
	employeeID := scopeEmployeeID
	if employeeID == "" {
		employeeID = req.EmployeeID
	}
	if employeeID != "" {
		if _, err := uuid.Parse(employeeID); err != nil {
			return nil, 0, ledgererrors.ErrInvalidEmployeeID
		}
	}

	source := Source(req.Source)
	if source != "" && !source.Valid() {
		return nil, 0, ledgererrors.ErrInvalidSource
	}

	s.logger.Debug("list ledger requested",
		zap.String("employee_id", employeeID),
		zap.String("source", req.Source),
		zap.Int("page", page),
	)

	entries, total, err := s.repo.List(ctx, ListFilter{
		EmployeeID: employeeID,
		Source:     source,
		Limit:      pageSize,
		Offset:     response.Offset(page, pageSize),
	})
	if err != nil {
		s.logger.Error("list ledger failed", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, 0, apperror.Storage(err)
	}

	return mapToListResponse(entries), total, nil
}

func (s *service) Adjust(ctx context.Context, actorID string, req AdjustmentRequest) (EntryResponse, error) {
	rid := contextutil.GetRequestID(ctx)

	empID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return EntryResponse{}, ledgererrors.ErrInvalidEmployeeID
	}
	if req.DeltaDays == 0 {
		return EntryResponse{}, ledgererrors.ErrZeroDelta
	}
	note := strings.TrimSpace(req.Note)
	if note == "" {
		return EntryResponse{}, ledgererrors.ErrNoteRequired
	}

	exists, err := s.employees.Exists(ctx, req.EmployeeID)
	if err != nil {
		s.logger.Error("adjust ledger employee lookup failed", zap.String("request_id", rid), zap.Error(err))
		return EntryResponse{}, apperror.Storage(err)
	}
	if !exists {
		return EntryResponse{}, ledgererrors.ErrEmployeeNotFound
	}

	entry := &Entry{
		ID:         uuid.New(),
		EmployeeID: empID,
		Source:     SourceManualAdjustment,
		DeltaDays:  req.DeltaDays,
		Note:       note,
		CreatedBy:  actorID,
		CreatedAt:  s.now(),
	}
	if err := s.repo.Append(ctx, entry); err != nil {
		s.logger.Error("adjust ledger append failed",
			zap.String("request_id", rid),
			zap.String("employee_id", req.EmployeeID),
			zap.Error(err),
		)
		return EntryResponse{}, apperror.Storage(err)
	}

	s.logger.Info("adjust ledger success",
		zap.String("request_id", rid),
		zap.String("employee_id", req.EmployeeID),
		zap.Int("delta_days", req.DeltaDays),
		zap.String("created_by", actorID),
	)
	return MapToResponse(*entry), nil
}

func MapToResponse(e Entry) EntryResponse {
	resp := EntryResponse{
		ID:         e.ID.String(),
		EmployeeID: e.EmployeeID.String(),
		Source:     string(e.Source),
		DeltaDays:  e.DeltaDays,
		Note:       e.Note,
		CreatedBy:  e.CreatedBy,
		CreatedAt:  e.CreatedAt.UTC().Format(time.RFC3339),
	}
	if e.LeaveRequestID != nil {
		resp.LeaveRequestID = e.LeaveRequestID.String()
	}
	return resp
}

func mapToListResponse(entries []Entry) []EntryResponse {
	res := make([]EntryResponse, len(entries))
	for i, e := range entries {
		res[i] = MapToResponse(e)
	}
	return res
}
