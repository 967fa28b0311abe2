package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DB_USER", "leave")
	t.Setenv("DB_NAME", "leave")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.True(t, cfg.Leave.RejectCrossYear)
	assert.True(t, cfg.Leave.RejectBackdated)
	assert.False(t, cfg.Leave.ApprovalExcludesOwnPending)
	assert.Equal(t, 20, cfg.Leave.DefaultInitialBalance)
	assert.Equal(t, 3, cfg.TxMaxRetries)
	assert.Equal(t, 3*time.Second, cfg.OutboxPollInterval)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("LEAVE_REJECT_CROSS_YEAR", "false")
	t.Setenv("LEAVE_APPROVAL_EXCLUDES_OWN_PENDING", "true")
	t.Setenv("LEAVE_DEFAULT_INITIAL_BALANCE", "25")
	t.Setenv("OUTBOX_POLL_INTERVAL", "500ms")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("TX_MAX_RETRIES", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.Leave.RejectCrossYear)
	assert.True(t, cfg.Leave.ApprovalExcludesOwnPending)
	assert.Equal(t, 25, cfg.Leave.DefaultInitialBalance)
	assert.Equal(t, 500*time.Millisecond, cfg.OutboxPollInterval)
	assert.Equal(t, 2.5, cfg.RateLimitRPS)
	assert.Equal(t, 3, cfg.TxMaxRetries)
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("DB_USER", "")
	t.Setenv("DB_NAME", "")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_USER")
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestValidate_NegativeBalance(t *testing.T) {
	cfg := Config{
		DB:        DBConfig{User: "u", Name: "n"},
		JWTSecret: "s",
		Leave:     LeaveConfig{DefaultInitialBalance: -1},
	}
	assert.Error(t, cfg.Validate())
}
