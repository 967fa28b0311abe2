package employee_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go-leave/internal/balance"
	"go-leave/internal/employee"
	employeeerrors "go-leave/internal/employee/errors"
	"go-leave/internal/events"
	"go-leave/internal/ledger"
	"go-leave/internal/messaging/kafka"
	"go-leave/internal/shared/apperror"
	"go-leave/internal/shared/contextutil"
	"go-leave/internal/shared/counter"
	"go-leave/internal/shared/txmanager"

	employeeMock "go-leave/internal/employee/mock"
	ledgerMock "go-leave/internal/ledger/mock"
	kafkaMock "go-leave/internal/messaging/kafka/mock"
	counterMock "go-leave/internal/shared/counter/mock"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

type fakePending struct {
	days int
}

func (f fakePending) SumPendingDays(context.Context, string) (int, error) {
	return f.days, nil
}

type serviceDeps struct {
	db        *sql.DB
	sqlMock   sqlmock.Sqlmock
	service   employee.Service
	repo      *employeeMock.MockRepository
	counter   *counterMock.MockRepository
	ledger    *ledgerMock.MockRepository
	outbox    *kafkaMock.MockOutboxRepository
	redismock redismock.ClientMock
}

func setupServiceTest(t *testing.T) *serviceDeps {
	t.Helper()
	ctrl := gomock.NewController(t)

	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	dbRedis, redisMock := redismock.NewClientMock()
	repo := employeeMock.NewMockRepository(ctrl)
	counterRepo := counterMock.NewMockRepository(ctrl)
	ledgerRepo := ledgerMock.NewMockRepository(ctrl)
	outboxRepo := kafkaMock.NewMockOutboxRepository(ctrl)

	svc := employee.NewService(
		txmanager.New(db, 0, zap.NewNop()),
		repo,
		counterRepo,
		ledgerRepo,
		outboxRepo,
		balance.NewCalculator(ledgerRepo, fakePending{days: 2}),
		dbRedis,
		employee.Config{DefaultInitialBalance: 20},
		zap.NewNop(),
	)

	return &serviceDeps{
		db:        db,
		sqlMock:   sqlMock,
		service:   svc,
		repo:      repo,
		counter:   counterRepo,
		ledger:    ledgerRepo,
		outbox:    outboxRepo,
		redismock: redisMock,
	}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func validCreateRequest() employee.CreateEmployeeRequest {
	return employee.CreateEmployeeRequest{
		FullName:    "Alice Doe",
		Email:       "Alice@Example.com",
		Department:  "Engineering",
		JoiningDate: "2026-01-05",
	}
}

func TestEmployeeService_Create(t *testing.T) {
	ctx := contextutil.WithRequestID(context.Background(), "req-1")

	t.Run("success seeds initial grant and outbox event", func(t *testing.T) {
		deps := setupServiceTest(t)
		req := validCreateRequest()

		expectTx(t, deps.sqlMock, true)

		deps.counter.EXPECT().WithTx(gomock.Any()).Return(deps.counter)
		deps.counter.EXPECT().
			GetNextValue(ctx, counter.EmployeeNumber).
			Return(int64(123), nil)

		var createdID uuid.UUID
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().
			Create(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, e *employee.Employee) error {
				assert.Equal(t, "EMP-000123", e.EmployeeNumber)
				assert.Equal(t, "alice@example.com", e.Email)
				assert.Equal(t, employee.StatusActive, e.EmploymentStatus)
				assert.Equal(t, 20, e.InitialLeaveBalance)
				createdID = e.ID
				return nil
			})

		deps.ledger.EXPECT().WithTx(gomock.Any()).Return(deps.ledger)
		deps.ledger.EXPECT().
			Append(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, e *ledger.Entry) error {
				assert.Equal(t, ledger.SourceInitialGrant, e.Source)
				assert.Equal(t, 20, e.DeltaDays)
				assert.Equal(t, createdID, e.EmployeeID)
				assert.Equal(t, "hr-1", e.CreatedBy)
				return nil
			})

		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.outbox.EXPECT().
			Create(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, ev kafka.OutboxEvent) error {
				assert.Equal(t, kafka.AggregateEmployee, ev.AggregateType)
				assert.Equal(t, createdID.String(), ev.AggregateID)
				assert.Equal(t, events.EmployeeCreated, ev.EventType)
				assert.Equal(t, events.EmployeeCreatedTopic, ev.Topic)
				assert.Equal(t, "req-1", ev.RequestID)

				var payload events.EmployeeCreatedEvent
				require.NoError(t, json.Unmarshal(ev.Payload, &payload))
				assert.Equal(t, "2026-01-05", payload.JoiningDate)
				assert.Equal(t, 20, payload.InitialLeaveBalance)
				return nil
			})

		deps.redismock.ExpectDel(employee.EmployeeOptionsKey).SetVal(1)

		resp, err := deps.service.Create(ctx, "hr-1", req)

		require.NoError(t, err)
		assert.Equal(t, createdID.String(), resp.ID)
		assert.Equal(t, "EMP-000123", resp.EmployeeNumber)
		require.NotNil(t, resp.Balance)
		assert.Equal(t, 20, resp.Balance.Available)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
		assert.NoError(t, deps.redismock.ExpectationsWereMet())
	})

	t.Run("explicit initial balance overrides default", func(t *testing.T) {
		deps := setupServiceTest(t)
		req := validCreateRequest()
		five := 5
		req.InitialLeaveBalance = &five

		expectTx(t, deps.sqlMock, true)
		deps.counter.EXPECT().WithTx(gomock.Any()).Return(deps.counter)
		deps.counter.EXPECT().GetNextValue(ctx, counter.EmployeeNumber).Return(int64(1), nil)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().Create(ctx, gomock.Any()).Return(nil)
		deps.ledger.EXPECT().WithTx(gomock.Any()).Return(deps.ledger)
		deps.ledger.EXPECT().
			Append(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, e *ledger.Entry) error {
				assert.Equal(t, 5, e.DeltaDays)
				return nil
			})
		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.outbox.EXPECT().Create(ctx, gomock.Any()).Return(nil)
		deps.redismock.ExpectDel(employee.EmployeeOptionsKey).SetVal(1)

		resp, err := deps.service.Create(ctx, "hr-1", req)

		require.NoError(t, err)
		assert.Equal(t, 5, resp.InitialLeaveBalance)
	})

	t.Run("invalid joining date never opens a transaction", func(t *testing.T) {
		deps := setupServiceTest(t)
		req := validCreateRequest()
		req.JoiningDate = "2026-02-30"

		_, err := deps.service.Create(ctx, "hr-1", req)

		assert.ErrorIs(t, err, employeeerrors.ErrInvalidJoiningDate)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("duplicate email rolls back with conflict", func(t *testing.T) {
		deps := setupServiceTest(t)

		expectTx(t, deps.sqlMock, false)
		deps.counter.EXPECT().WithTx(gomock.Any()).Return(deps.counter)
		deps.counter.EXPECT().GetNextValue(ctx, counter.EmployeeNumber).Return(int64(7), nil)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().
			Create(ctx, gomock.Any()).
			Return(&pgconn.PgError{Code: "23505", ConstraintName: "uq_employee_email"})

		_, err := deps.service.Create(ctx, "hr-1", validCreateRequest())

		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeAlreadyExists)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("ledger failure rolls back", func(t *testing.T) {
		deps := setupServiceTest(t)

		expectTx(t, deps.sqlMock, false)
		deps.counter.EXPECT().WithTx(gomock.Any()).Return(deps.counter)
		deps.counter.EXPECT().GetNextValue(ctx, counter.EmployeeNumber).Return(int64(7), nil)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().Create(ctx, gomock.Any()).Return(nil)
		deps.ledger.EXPECT().WithTx(gomock.Any()).Return(deps.ledger)
		deps.ledger.EXPECT().Append(ctx, gomock.Any()).Return(errors.New("disk full"))

		_, err := deps.service.Create(ctx, "hr-1", validCreateRequest())

		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperror.CodeInternalError, appErr.Code)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestEmployeeService_GetAll(t *testing.T) {
	ctx := context.Background()

	t.Run("success passes filter and offset", func(t *testing.T) {
		deps := setupServiceTest(t)
		joined := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

		deps.repo.EXPECT().
			List(ctx, employee.ListFilter{Department: "Ops", Limit: 10, Offset: 10}).
			Return([]employee.Employee{{ID: uuid.New(), FullName: "Bob", JoiningDate: joined}}, int64(11), nil)

		resp, total, err := deps.service.GetAll(ctx, employee.ListEmployeesRequest{Department: "Ops"}, 2, 10)

		require.NoError(t, err)
		assert.Equal(t, int64(11), total)
		require.Len(t, resp, 1)
		assert.Equal(t, "2025-03-01", resp[0].JoiningDate)
		assert.Nil(t, resp[0].Balance)
	})

	t.Run("repository error", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.repo.EXPECT().List(ctx, gomock.Any()).Return(nil, int64(0), errors.New("db down"))

		_, _, err := deps.service.GetAll(ctx, employee.ListEmployeesRequest{}, 1, 10)

		assert.Error(t, err)
	})
}

func TestEmployeeService_GetOptions(t *testing.T) {
	ctx := context.Background()
	expected := []employee.EmployeeOptionResponse{{
		ID:             uuid.NewString(),
		EmployeeNumber: "EMP-000001",
		FullName:       "Alice",
		Department:     "Engineering",
	}}

	t.Run("cache hit skips the database", func(t *testing.T) {
		deps := setupServiceTest(t)
		jsonResp, _ := json.Marshal(expected)
		deps.redismock.ExpectGet(employee.EmployeeOptionsKey).SetVal(string(jsonResp))

		resp, err := deps.service.GetOptions(ctx)

		require.NoError(t, err)
		assert.Equal(t, expected, resp)
	})

	t.Run("cache miss loads and stores", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.redismock.ExpectGet(employee.EmployeeOptionsKey).RedisNil()
		deps.repo.EXPECT().FindOptions(ctx).Return([]employee.Employee{{
			ID:             uuid.MustParse(expected[0].ID),
			EmployeeNumber: "EMP-000001",
			FullName:       "Alice",
			Department:     "Engineering",
		}}, nil)
		jsonResp, _ := json.Marshal(expected)
		deps.redismock.ExpectSet(employee.EmployeeOptionsKey, jsonResp, time.Hour).SetVal("OK")

		resp, err := deps.service.GetOptions(ctx)

		require.NoError(t, err)
		assert.Equal(t, expected, resp)
		assert.NoError(t, deps.redismock.ExpectationsWereMet())
	})

	t.Run("database error", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.redismock.ExpectGet(employee.EmployeeOptionsKey).RedisNil()
		deps.repo.EXPECT().FindOptions(ctx).Return(nil, errors.New("db down"))

		resp, err := deps.service.GetOptions(ctx)

		assert.Error(t, err)
		assert.Nil(t, resp)
	})
}

func TestEmployeeService_GetByID(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("includes conservative balance", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.repo.EXPECT().FindByID(ctx, id.String()).Return(&employee.Employee{ID: id, FullName: "Alice"}, nil)
		deps.ledger.EXPECT().SumByEmployee(ctx, id.String()).Return(ledger.Totals{Grants: 20, Approved: 5}, nil)

		resp, err := deps.service.GetByID(ctx, id.String())

		require.NoError(t, err)
		require.NotNil(t, resp.Balance)
		assert.Equal(t, 20, resp.Balance.Grants)
		assert.Equal(t, 5, resp.Balance.Approved)
		assert.Equal(t, 2, resp.Balance.Pending)
		assert.Equal(t, 13, resp.Balance.Available)
	})

	t.Run("not found", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.repo.EXPECT().FindByID(ctx, id.String()).Return(nil, employeeerrors.ErrEmployeeNotFound)

		_, err := deps.service.GetByID(ctx, id.String())

		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNotFound)
	})

	t.Run("malformed id", func(t *testing.T) {
		deps := setupServiceTest(t)

		_, err := deps.service.GetByID(ctx, "nope")

		assert.ErrorIs(t, err, employeeerrors.ErrInvalidEmployeeID)
	})
}

func TestEmployeeService_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	joined := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

	t.Run("deactivate with explicit termination date", func(t *testing.T) {
		deps := setupServiceTest(t)
		expectTx(t, deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().
			FindByIDForUpdate(ctx, id.String()).
			Return(&employee.Employee{ID: id, JoiningDate: joined, EmploymentStatus: employee.StatusActive}, nil)
		deps.repo.EXPECT().
			UpdateStatus(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, e *employee.Employee) error {
				assert.Equal(t, employee.StatusInactive, e.EmploymentStatus)
				require.NotNil(t, e.TerminationDate)
				return nil
			})
		deps.redismock.ExpectDel(employee.EmployeeOptionsKey).SetVal(1)

		resp, err := deps.service.UpdateStatus(ctx, id.String(), employee.UpdateStatusRequest{
			EmploymentStatus: employee.StatusInactive,
			TerminationDate:  "2026-06-30",
		})

		require.NoError(t, err)
		assert.Equal(t, "2026-06-30", resp.TerminationDate)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("termination before joining date rolls back", func(t *testing.T) {
		deps := setupServiceTest(t)
		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().
			FindByIDForUpdate(ctx, id.String()).
			Return(&employee.Employee{ID: id, JoiningDate: joined}, nil)

		_, err := deps.service.UpdateStatus(ctx, id.String(), employee.UpdateStatusRequest{
			EmploymentStatus: employee.StatusInactive,
			TerminationDate:  "2024-12-31",
		})

		assert.ErrorIs(t, err, employeeerrors.ErrInvalidTerminationDate)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("reactivation clears termination date", func(t *testing.T) {
		deps := setupServiceTest(t)
		terminated := joined.AddDate(1, 0, 0)
		expectTx(t, deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().
			FindByIDForUpdate(ctx, id.String()).
			Return(&employee.Employee{
				ID:               id,
				JoiningDate:      joined,
				EmploymentStatus: employee.StatusInactive,
				TerminationDate:  &terminated,
			}, nil)
		deps.repo.EXPECT().
			UpdateStatus(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, e *employee.Employee) error {
				assert.Nil(t, e.TerminationDate)
				return nil
			})
		deps.redismock.ExpectDel(employee.EmployeeOptionsKey).SetVal(1)

		resp, err := deps.service.UpdateStatus(ctx, id.String(), employee.UpdateStatusRequest{
			EmploymentStatus: employee.StatusActive,
		})

		require.NoError(t, err)
		assert.Equal(t, employee.StatusActive, resp.EmploymentStatus)
		assert.Empty(t, resp.TerminationDate)
	})

	t.Run("unknown employee", func(t *testing.T) {
		deps := setupServiceTest(t)
		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().
			FindByIDForUpdate(ctx, id.String()).
			Return(nil, errors.New("record not found"))

		_, err := deps.service.UpdateStatus(ctx, id.String(), employee.UpdateStatusRequest{
			EmploymentStatus: employee.StatusActive,
		})

		assert.Error(t, err)
	})
}
