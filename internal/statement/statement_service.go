package statement

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"go-leave/internal/balance"
	"go-leave/internal/employee"
	employeeerrors "go-leave/internal/employee/errors"
	"go-leave/internal/ledger"
	"go-leave/internal/shared/apperror"
	"go-leave/internal/shared/dateonly"
	"time"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service interface {
	Render(ctx context.Context, employeeID string) ([]byte, error)
}

type service struct {
	employees employee.Repository
	ledger    ledger.Repository
	calc      *balance.Calculator
	now       func() time.Time
	logger    *zap.Logger
}

func NewService(employees employee.Repository, ledgerRepo ledger.Repository, calc *balance.Calculator, logger ...*zap.Logger) Service {
	l := zap.L().Named("statement.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("statement.service")
	}
	return &service{
		employees: employees,
		ledger:    ledgerRepo,
		calc:      calc,
		now:       time.Now,
		logger:    l,
	}
}

// Render lays out the employee's full ledger oldest first, with a running
// total and both balance policies at the foot.
func (s *service) Render(ctx context.Context, employeeID string) ([]byte, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return nil, employeeerrors.ErrInvalidEmployeeID
	}

	empl, err := s.employees.FindByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, employeeerrors.ErrEmployeeNotFound
		}
		return nil, apperror.Storage(err)
	}

	entries, err := s.ledger.ListAllByEmployee(ctx, employeeID)
	if err != nil {
		s.logger.Error("statement ledger read failed", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, apperror.Storage(err)
	}

	conservative, err := s.calc.Compute(ctx, employeeID, balance.Conservative)
	if err != nil {
		return nil, apperror.Storage(err)
	}
	optimistic := balance.Compute(ledger.Totals{Grants: conservative.Grants, Approved: conservative.Approved}, 0, balance.Optimistic)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Leave statement "+empl.EmployeeNumber, false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Leave Statement")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Employee: %s (%s)", empl.FullName, empl.EmployeeNumber))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Department: %s", empl.Department))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Joined: %s    Status: %s", dateonly.Format(empl.JoiningDate), empl.EmploymentStatus))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Generated: %s", s.now().UTC().Format(time.RFC3339)))
	pdf.Ln(10)

	widths := []float64{32, 42, 18, 22, 76}
	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range []string{"Date", "Source", "Delta", "Running", "Note"} {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	running := 0
	for _, e := range entries {
		running += e.DeltaDays
		row := []string{
			dateonly.Format(e.CreatedAt),
			string(e.Source),
			fmt.Sprintf("%+d", e.DeltaDays),
			fmt.Sprintf("%d", running),
			truncate(e.Note, 48),
		}
		for i, v := range row {
			pdf.CellFormat(widths[i], 6, v, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Grants: %d   Approved: %d   Pending: %d",
		conservative.Grants, conservative.Approved, conservative.Pending))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Available (conservative): %d", conservative.Available))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Available (optimistic): %d", optimistic.Available))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		s.logger.Error("statement render failed", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, apperror.Storage(err)
	}

	s.logger.Info("statement rendered",
		zap.String("employee_id", employeeID),
		zap.Int("entries", len(entries)),
		zap.Int("bytes", buf.Len()),
	)
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
