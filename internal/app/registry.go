package app

import (
	"database/sql"
	"go-leave/internal/balance"
	"go-leave/internal/config"
	"go-leave/internal/employee"
	"go-leave/internal/leave"
	"go-leave/internal/ledger"
	"go-leave/internal/messaging/kafka"
	"go-leave/internal/rbac"
	"go-leave/internal/shared/counter"
	"go-leave/internal/shared/txmanager"
	"go-leave/internal/statement"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	cfg config.Config,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
	logger *zap.Logger,
) error {
	// --- Repositories ---
	employeeRepo := employee.NewRepository(gormDB)
	ledgerRepo := ledger.NewRepository(gormDB)
	leaveRepo := leave.NewRepository(gormDB)
	counterRepo := counter.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	tm := txmanager.New(db, cfg.TxMaxRetries, logger)
	calc := balance.NewCalculator(ledgerRepo, leaveRepo)

	// --- RBAC Core ---
	rbacService, err := rbac.NewDefaultService(logger)
	if err != nil {
		return err
	}

	// --- Services ---
	employeeService := employee.NewService(
		tm, employeeRepo, counterRepo, ledgerRepo, outboxRepo, calc, rdb,
		employee.Config{DefaultInitialBalance: cfg.Leave.DefaultInitialBalance},
		logger,
	)
	leaveService := leave.NewService(
		tm, leaveRepo, employeeRepo, ledgerRepo, outboxRepo,
		leave.Policy{
			RejectCrossYear:            cfg.Leave.RejectCrossYear,
			RejectBackdated:            cfg.Leave.RejectBackdated,
			ApprovalExcludesOwnPending: cfg.Leave.ApprovalExcludesOwnPending,
		},
		leave.WithLogger(logger),
	)
	ledgerService := ledger.NewService(ledgerRepo, employeeRepo, logger)
	balanceService := balance.NewService(employeeRepo, calc, logger)
	statementService := statement.NewService(employeeRepo, ledgerRepo, calc, logger)

	// --- Handlers ---
	employeeHandler := employee.NewHandler(employeeService, rbacService, logger)
	leaveHandler := leave.NewHandler(leaveService, rbacService, logger)
	ledgerHandler := ledger.NewHandler(ledgerService, rbacService, logger)
	balanceHandler := balance.NewHandler(balanceService, rbacService, logger)
	statementHandler := statement.NewHandler(statementService, rbacService, logger)
	rbacHandler := rbac.NewHandler(rbacService)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		employee.RegisterRoutes(api, employeeHandler, rbacService, rdb, logger)
		leave.RegisterRoutes(api, leaveHandler, rbacService, rdb, logger)
		ledger.RegisterRoutes(api, ledgerHandler, rbacService, rdb, logger)
		statement.RegisterRoutes(api, statementHandler, logger)
		balance.RegisterRoutes(api, balanceHandler, logger)
		rbac.RegisterRoutes(api, rbacHandler)
	}

	return nil
}
