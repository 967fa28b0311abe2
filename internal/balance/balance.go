// Package balance derives an employee's leave balance from the ledger plus
// whatever is still pending. Nothing here is stored.
package balance

import (
	"context"
	"go-leave/internal/ledger"
	"strings"
)

type Policy string

const (
	// Conservative counts pending requests against availability.
	Conservative Policy = "conservative"
	// Optimistic ignores pending requests; only the ledger counts.
	Optimistic Policy = "optimistic"
)

// ParsePolicy maps a query value to a Policy. Empty means Conservative.
func ParsePolicy(raw string) (Policy, bool) {
	switch Policy(strings.ToLower(strings.TrimSpace(raw))) {
	case "", Conservative:
		return Conservative, true
	case Optimistic:
		return Optimistic, true
	}
	return "", false
}

type Balance struct {
	Grants    int `json:"grants"`
	Approved  int `json:"approved"`
	Pending   int `json:"pending"`
	Available int `json:"available"`
}

// Compute applies the balance formula. Pending is reported as zero under
// Optimistic so that grants - approved - pending == available always holds.
func Compute(totals ledger.Totals, pendingDays int, policy Policy) Balance {
	if policy == Optimistic {
		pendingDays = 0
	}
	return Balance{
		Grants:    totals.Grants,
		Approved:  totals.Approved,
		Pending:   pendingDays,
		Available: totals.Grants - totals.Approved - pendingDays,
	}
}

type LedgerTotals interface {
	SumByEmployee(ctx context.Context, employeeID string) (ledger.Totals, error)
}

type PendingDays interface {
	SumPendingDays(ctx context.Context, employeeID string) (int, error)
}

// Calculator reads both inputs from whatever handles it was built with, so
// building it from transaction-bound repositories keeps the read inside that
// transaction.
type Calculator struct {
	ledger  LedgerTotals
	pending PendingDays
}

func NewCalculator(ledger LedgerTotals, pending PendingDays) *Calculator {
	return &Calculator{ledger: ledger, pending: pending}
}

func (c *Calculator) Compute(ctx context.Context, employeeID string, policy Policy) (Balance, error) {
	totals, err := c.ledger.SumByEmployee(ctx, employeeID)
	if err != nil {
		return Balance{}, err
	}

	pending := 0
	if policy != Optimistic {
		pending, err = c.pending.SumPendingDays(ctx, employeeID)
		if err != nil {
			return Balance{}, err
		}
	}

	return Compute(totals, pending, policy), nil
}
