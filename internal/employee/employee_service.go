package employee

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"go-leave/internal/balance"
	employeeerrors "go-leave/internal/employee/errors"
	"go-leave/internal/events"
	"go-leave/internal/ledger"
	"go-leave/internal/messaging/kafka"
	"go-leave/internal/shared/apperror"
	"go-leave/internal/shared/contextutil"
	"go-leave/internal/shared/counter"
	"go-leave/internal/shared/dateonly"
	"go-leave/internal/shared/response"
	"go-leave/internal/shared/txmanager"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const EmployeeOptionsKey = "employees:options"

const optionsCacheTTL = time.Hour

type Service interface {
	Create(ctx context.Context, actorID string, req CreateEmployeeRequest) (EmployeeResponse, error)
	GetAll(ctx context.Context, req ListEmployeesRequest, page, pageSize int) ([]EmployeeResponse, int64, error)
	GetOptions(ctx context.Context) ([]EmployeeOptionResponse, error)
	GetByID(ctx context.Context, id string) (EmployeeResponse, error)
	UpdateStatus(ctx context.Context, id string, req UpdateStatusRequest) (EmployeeResponse, error)
}

type Config struct {
	DefaultInitialBalance int
}

type service struct {
	tx      txmanager.Manager
	repo    Repository
	counter counter.Repository
	ledger  ledger.Repository
	outbox  kafka.OutboxRepository
	calc    *balance.Calculator
	rdb     *redis.Client
	sf      *singleflight.Group
	cfg     Config
	now     func() time.Time
	logger  *zap.Logger
}

func NewService(
	tx txmanager.Manager,
	repo Repository,
	counter counter.Repository,
	ledgerRepo ledger.Repository,
	outboxRepo kafka.OutboxRepository,
	calc *balance.Calculator,
	rdb *redis.Client,
	cfg Config,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("employee.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.service")
	}
	return &service{
		tx:      tx,
		repo:    repo,
		counter: counter,
		ledger:  ledgerRepo,
		outbox:  outboxRepo,
		calc:    calc,
		rdb:     rdb,
		sf:      &singleflight.Group{},
		cfg:     cfg,
		now:     time.Now,
		logger:  l,
	}
}

// Create registers the employee and seeds the ledger with its initial grant
// in the same transaction.
func (s *service) Create(
	ctx context.Context,
	actorID string,
	req CreateEmployeeRequest,
) (EmployeeResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("create employee requested",
		zap.String("request_id", rid),
		zap.String("department", req.Department),
		zap.String("email", req.Email),
	)

	joiningDate, ok := dateonly.Parse(req.JoiningDate)
	if !ok {
		s.logger.Warn("create employee invalid joining_date", zap.String("joining_date", req.JoiningDate))
		return EmployeeResponse{}, employeeerrors.ErrInvalidJoiningDate
	}

	initial := s.cfg.DefaultInitialBalance
	if req.InitialLeaveBalance != nil {
		initial = *req.InitialLeaveBalance
	}

	empl := &Employee{
		ID:                  uuid.New(),
		FullName:            strings.TrimSpace(req.FullName),
		Email:               strings.ToLower(strings.TrimSpace(req.Email)),
		Department:          strings.TrimSpace(req.Department),
		JoiningDate:         joiningDate,
		EmploymentStatus:    StatusActive,
		InitialLeaveBalance: initial,
	}

	err := s.tx.WithinTx(ctx, nil, func(tx *sql.Tx) error {
		nextVal, err := s.counter.WithTx(tx).GetNextValue(ctx, counter.EmployeeNumber)
		if err != nil {
			s.logger.Error("create employee generate number failed", zap.Error(err))
			return apperror.Storage(err)
		}
		empl.EmployeeNumber = fmt.Sprintf("EMP-%06d", nextVal)

		if err := s.repo.WithTx(tx).Create(ctx, empl); err != nil {
			s.logger.Error("create employee persist failed", zap.Error(err))
			return mapRepositoryError(err)
		}

		if err := s.ledger.WithTx(tx).Append(ctx, &ledger.Entry{
			EmployeeID: empl.ID,
			Source:     ledger.SourceInitialGrant,
			DeltaDays:  initial,
			Note:       "Initial leave grant",
			CreatedBy:  actorID,
			CreatedAt:  s.now().UTC(),
		}); err != nil {
			s.logger.Error("create employee initial grant failed",
				zap.String("employee_id", empl.ID.String()),
				zap.Error(err),
			)
			return apperror.Storage(err)
		}

		event, err := kafka.NewOutboxEvent(rid, kafka.AggregateEmployee, empl.ID.String(),
			events.EmployeeCreated, events.EmployeeCreatedTopic,
			events.EmployeeCreatedEvent{
				EventType:           events.EmployeeCreated,
				RequestID:           rid,
				EmployeeID:          empl.ID.String(),
				Department:          empl.Department,
				JoiningDate:         dateonly.Format(empl.JoiningDate),
				InitialLeaveBalance: initial,
				OccurredAt:          s.now().UTC(),
			})
		if err != nil {
			return err
		}
		if err := s.outbox.WithTx(tx).Create(ctx, event); err != nil {
			s.logger.Error("create employee outbox persist failed",
				zap.String("employee_id", empl.ID.String()),
				zap.Error(err),
			)
			return apperror.Storage(err)
		}
		return nil
	})
	if err != nil {
		return EmployeeResponse{}, apperror.Storage(err)
	}

	s.invalidateOptions(ctx)
	s.logger.Info("create employee success",
		zap.String("request_id", rid),
		zap.String("employee_id", empl.ID.String()),
		zap.String("employee_number", empl.EmployeeNumber),
		zap.Int("initial_leave_balance", initial),
	)

	resp := mapToResponse(*empl)
	bal := balance.Compute(ledger.Totals{Grants: initial}, 0, balance.Conservative)
	resp.Balance = &bal
	return resp, nil
}

func (s *service) GetAll(
	ctx context.Context,
	req ListEmployeesRequest,
	page, pageSize int,
) ([]EmployeeResponse, int64, error) {
	s.logger.Debug("get all employees requested",
		zap.String("department", req.Department),
		zap.String("employment_status", req.EmploymentStatus),
		zap.Int("page", page),
	)

	empls, total, err := s.repo.List(ctx, ListFilter{
		Department:       req.Department,
		EmploymentStatus: req.EmploymentStatus,
		Limit:            pageSize,
		Offset:           response.Offset(page, pageSize),
	})
	if err != nil {
		s.logger.Error("get all employees failed", zap.Error(err))
		return nil, 0, mapRepositoryError(err)
	}

	return mapToListResponse(empls), total, nil
}

func (s *service) GetOptions(ctx context.Context) ([]EmployeeOptionResponse, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, EmployeeOptionsKey).Result(); err == nil {
			var resp []EmployeeOptionResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	v, err, _ := s.sf.Do(EmployeeOptionsKey, func() (interface{}, error) {
		empls, err := s.repo.FindOptions(ctx)
		if err != nil {
			return nil, mapRepositoryError(err)
		}

		resp := make([]EmployeeOptionResponse, len(empls))
		for i, e := range empls {
			resp[i] = EmployeeOptionResponse{
				ID:             e.ID.String(),
				EmployeeNumber: e.EmployeeNumber,
				FullName:       e.FullName,
				Department:     e.Department,
			}
		}

		if s.rdb != nil {
			if jsonData, err := json.Marshal(resp); err == nil {
				if err := s.rdb.Set(ctx, EmployeeOptionsKey, jsonData, optionsCacheTTL).Err(); err != nil {
					s.logger.Warn("cache employee options failed", zap.Error(err))
				}
			}
		}
		return resp, nil
	})
	if err != nil {
		s.logger.Error("get employee options failed", zap.Error(err))
		return nil, err
	}

	return v.([]EmployeeOptionResponse), nil
}

// GetByID includes the conservative balance.
func (s *service) GetByID(ctx context.Context, id string) (EmployeeResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return EmployeeResponse{}, employeeerrors.ErrInvalidEmployeeID
	}
	s.logger.Debug("get employee by id requested", zap.String("employee_id", id))

	empl, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.logger.Warn("get employee by id failed", zap.String("employee_id", id), zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	bal, err := s.calc.Compute(ctx, id, balance.Conservative)
	if err != nil {
		s.logger.Error("get employee balance failed", zap.String("employee_id", id), zap.Error(err))
		return EmployeeResponse{}, apperror.Storage(err)
	}

	resp := mapToResponse(*empl)
	resp.Balance = &bal
	return resp, nil
}

func (s *service) UpdateStatus(ctx context.Context, id string, req UpdateStatusRequest) (EmployeeResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return EmployeeResponse{}, employeeerrors.ErrInvalidEmployeeID
	}
	s.logger.Debug("update employee status requested",
		zap.String("employee_id", id),
		zap.String("employment_status", req.EmploymentStatus),
	)

	var updated Employee
	err := s.tx.WithinTx(ctx, nil, func(tx *sql.Tx) error {
		qtx := s.repo.WithTx(tx)
		empl, err := qtx.FindByIDForUpdate(ctx, id)
		if err != nil {
			return mapRepositoryError(err)
		}

		switch req.EmploymentStatus {
		case StatusInactive:
			terminated := dateonly.Truncate(s.now())
			if req.TerminationDate != "" {
				d, ok := dateonly.Parse(req.TerminationDate)
				if !ok {
					return employeeerrors.ErrInvalidTerminationDate
				}
				terminated = d
			}
			if terminated.Before(empl.JoiningDate) {
				return employeeerrors.ErrInvalidTerminationDate
			}
			empl.TerminationDate = &terminated
		default:
			empl.TerminationDate = nil
		}
		empl.EmploymentStatus = req.EmploymentStatus
		empl.UpdatedAt = s.now().UTC()

		if err := qtx.UpdateStatus(ctx, empl); err != nil {
			return mapRepositoryError(err)
		}
		updated = *empl
		return nil
	})
	if err != nil {
		s.logger.Warn("update employee status failed", zap.String("employee_id", id), zap.Error(err))
		return EmployeeResponse{}, apperror.Storage(err)
	}

	s.invalidateOptions(ctx)
	s.logger.Info("update employee status success",
		zap.String("employee_id", id),
		zap.String("employment_status", updated.EmploymentStatus),
	)
	return mapToResponse(updated), nil
}

func (s *service) invalidateOptions(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, EmployeeOptionsKey).Err(); err != nil {
		s.logger.Error("failed to invalidate employee options cache",
			zap.Error(err),
			zap.String("key", EmployeeOptionsKey),
		)
	}
}

func mapToResponse(empl Employee) EmployeeResponse {
	resp := EmployeeResponse{
		ID:                  empl.ID.String(),
		EmployeeNumber:      empl.EmployeeNumber,
		FullName:            empl.FullName,
		Email:               empl.Email,
		Department:          empl.Department,
		JoiningDate:         dateonly.Format(empl.JoiningDate),
		EmploymentStatus:    empl.EmploymentStatus,
		InitialLeaveBalance: empl.InitialLeaveBalance,
	}
	if empl.TerminationDate != nil {
		resp.TerminationDate = dateonly.Format(*empl.TerminationDate)
	}
	return resp
}

func mapToListResponse(empls []Employee) []EmployeeResponse {
	res := make([]EmployeeResponse, len(empls))
	for i, e := range empls {
		res[i] = mapToResponse(e)
	}
	return res
}
