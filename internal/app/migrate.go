package app

import (
	"fmt"
	"go-leave/internal/employee"
	"go-leave/internal/leave"
	"go-leave/internal/ledger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// schemaStatements covers what gorm tags cannot express: the raw-SQL tables
// and the partial unique indexes guarding the ledger.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS counters (
		counter_type VARCHAR(50) PRIMARY KEY,
		last_value   BIGINT NOT NULL DEFAULT 0,
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS outbox_events (
		id             UUID PRIMARY KEY,
		request_id     VARCHAR(100),
		aggregate_type VARCHAR(50) NOT NULL,
		aggregate_id   UUID NOT NULL,
		event_type     VARCHAR(50) NOT NULL,
		topic          VARCHAR(100) NOT NULL,
		payload        JSONB NOT NULL,
		status         VARCHAR(20) NOT NULL DEFAULT 'PENDING',
		retry_count    INT NOT NULL DEFAULT 0,
		error_message  VARCHAR(500),
		next_retry_at  TIMESTAMPTZ,
		processed_at   TIMESTAMPTZ,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_outbox_events_status_created
		ON outbox_events (status, created_at)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_ledger_approval_per_request
		ON leave_ledger_entries (leave_request_id)
		WHERE source = 'APPROVAL'`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_ledger_initial_grant_per_employee
		ON leave_ledger_entries (employee_id)
		WHERE source = 'INITIAL_GRANT'`,
	`DO $$ BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'fk_ledger_employee') THEN
			ALTER TABLE leave_ledger_entries
				ADD CONSTRAINT fk_ledger_employee FOREIGN KEY (employee_id) REFERENCES employees (id);
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'fk_leave_requests_employee') THEN
			ALTER TABLE leave_requests
				ADD CONSTRAINT fk_leave_requests_employee FOREIGN KEY (employee_id) REFERENCES employees (id);
		END IF;
	END $$`,
	`DO $$ BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_leave_requests_days') THEN
			ALTER TABLE leave_requests
				ADD CONSTRAINT chk_leave_requests_days CHECK (days_requested >= 1 AND end_date >= start_date);
		END IF;
	END $$`,
}

func Migrate(db *gorm.DB, logger *zap.Logger) error {
	if err := db.AutoMigrate(
		&employee.Employee{},
		&ledger.Entry{},
		&leave.LeaveRequest{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	for i, stmt := range schemaStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}

	logger.Info("database schema up to date")
	return nil
}
