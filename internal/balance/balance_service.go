package balance

import (
	"context"
	balanceerrors "go-leave/internal/balance/errors"
	"go-leave/internal/shared/apperror"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type EmployeeDirectory interface {
	Exists(ctx context.Context, employeeID string) (bool, error)
}

type BalanceResponse struct {
	EmployeeID string `json:"employee_id"`
	Policy     Policy `json:"policy"`
	Balance
}

type Service interface {
	Get(ctx context.Context, employeeID, policy string) (BalanceResponse, error)
}

type service struct {
	employees EmployeeDirectory
	calc      *Calculator
	sf        *singleflight.Group
	logger    *zap.Logger
}

func NewService(employees EmployeeDirectory, calc *Calculator, logger ...*zap.Logger) Service {
	l := zap.L().Named("balance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("balance.service")
	}
	return &service{
		employees: employees,
		calc:      calc,
		sf:        &singleflight.Group{},
		logger:    l,
	}
}

// Get collapses identical in-flight reads into one query pair. Results are
// never cached past the call, so a read after a committed approval sees it.
func (s *service) Get(ctx context.Context, employeeID, rawPolicy string) (BalanceResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return BalanceResponse{}, balanceerrors.ErrInvalidEmployeeID
	}
	policy, ok := ParsePolicy(rawPolicy)
	if !ok {
		return BalanceResponse{}, balanceerrors.ErrInvalidPolicy
	}

	key := employeeID + ":" + string(policy)
	v, err, shared := s.sf.Do(key, func() (interface{}, error) {
		exists, err := s.employees.Exists(ctx, employeeID)
		if err != nil {
			return nil, apperror.Storage(err)
		}
		if !exists {
			return nil, balanceerrors.ErrEmployeeNotFound
		}

		bal, err := s.calc.Compute(ctx, employeeID, policy)
		if err != nil {
			return nil, apperror.Storage(err)
		}
		return bal, nil
	})
	if err != nil {
		s.logger.Warn("get balance failed",
			zap.String("employee_id", employeeID),
			zap.String("policy", string(policy)),
			zap.Error(err),
		)
		return BalanceResponse{}, err
	}

	s.logger.Debug("get balance success",
		zap.String("employee_id", employeeID),
		zap.String("policy", string(policy)),
		zap.Bool("shared", shared),
	)
	return BalanceResponse{
		EmployeeID: employeeID,
		Policy:     policy,
		Balance:    v.(Balance),
	}, nil
}
