// Package txmanager owns the transaction boundary used by services that must
// read, check and write as one unit.
package txmanager

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
)

var Serializable = &sql.TxOptions{Isolation: sql.LevelSerializable}

//go:generate mockgen -source=txmanager.go -destination=mock/txmanager_mock.go -package=mock
type Manager interface {
	// WithinTx runs fn inside a transaction. fn's error rolls everything back;
	// serialization failures are retried with a fresh transaction.
	WithinTx(ctx context.Context, opts *sql.TxOptions, fn func(tx *sql.Tx) error) error
}

type manager struct {
	db         *sql.DB
	maxRetries int
	logger     *zap.Logger
}

func New(db *sql.DB, maxRetries int, logger ...*zap.Logger) Manager {
	l := zap.L().Named("txmanager")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("txmanager")
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &manager{db: db, maxRetries: maxRetries, logger: l}
}

func (m *manager) WithinTx(ctx context.Context, opts *sql.TxOptions, fn func(tx *sql.Tx) error) error {
	var err error
	for attempt := 0; attempt <= m.maxRetries; attempt++ {
		err = m.run(ctx, opts, fn)
		if err == nil || !IsRetryable(err) {
			return err
		}
		if ctx.Err() != nil {
			return err
		}
		m.logger.Warn("transaction conflict, retrying",
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", m.maxRetries),
			zap.Error(err),
		)
	}
	return err
}

func (m *manager) run(ctx context.Context, opts *sql.TxOptions, fn func(tx *sql.Tx) error) error {
	tx, err := m.db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// IsRetryable reports whether err is a PostgreSQL serialization failure or
// deadlock, both of which are safe to retry from the start.
func IsRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == sqlStateSerializationFailure || pgErr.Code == sqlStateDeadlockDetected
	}
	return false
}

// Bind returns a gorm handle whose statements run on tx. A nil tx returns db
// unchanged.
func Bind(db *gorm.DB, tx *sql.Tx) *gorm.DB {
	if tx == nil {
		return db
	}
	bound := db.Session(&gorm.Session{Context: context.Background(), SkipDefaultTransaction: true})
	bound.Statement.ConnPool = tx
	return bound
}
