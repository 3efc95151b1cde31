package loan

import (
	"fmt"
	"time"

	"credit-engine/internal/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type LoanStatus string

const (
	StatusActive   LoanStatus = "ACTIVE"
	StatusApproved LoanStatus = "APPROVED"
	StatusPaidOff  LoanStatus = "PAID_OFF"
)

type Loan struct {
	ID                 int64
	CustomerID         uuid.UUID
	Amount             decimal.Decimal
	InterestRate       decimal.Decimal
	TenureMonths       int
	MonthlyInstallment decimal.Decimal
	EMIsPaidOnTime     int
	StartDate          time.Time
	EndDate            time.Time
	Status             LoanStatus
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NewLoan builds a loan whose installment is always derived from the
// amortization formula, never taken from the caller.
func NewLoan(customerID uuid.UUID, amount, annualInterestRate decimal.Decimal, tenureMonths int, startDate time.Time) (*Loan, error) {
	if amount.Sign() <= 0 {
		return nil, fmt.Errorf("%w: loan amount must be positive", apperrors.ErrInvalidArgument)
	}
	if annualInterestRate.Sign() < 0 {
		return nil, fmt.Errorf("%w: interest rate cannot be negative", apperrors.ErrInvalidArgument)
	}
	if tenureMonths <= 0 {
		return nil, fmt.Errorf("%w: tenure must be positive", apperrors.ErrInvalidArgument)
	}
	if startDate.IsZero() {
		startDate = time.Now().Truncate(24 * time.Hour)
	}

	return &Loan{
		CustomerID:         customerID,
		Amount:             amount,
		InterestRate:       annualInterestRate,
		TenureMonths:       tenureMonths,
		MonthlyInstallment: MonthlyInstallment(amount, annualInterestRate, tenureMonths),
		StartDate:          startDate,
		EndDate:            startDate.AddDate(0, tenureMonths, 0),
		Status:             StatusApproved,
	}, nil
}

// IsActive reports whether the loan still contributes to the customer's
// installment load and debt.
func (l *Loan) IsActive() bool {
	return l.Status == StatusActive || l.Status == StatusApproved
}

func (l *Loan) IsMatured(now time.Time) bool {
	return l.IsActive() && !l.EndDate.IsZero() && l.EndDate.Before(now)
}

// RepaymentsLeft derives the remaining installment count from elapsed
// calendar months since the start date, clamped to [0, tenure].
func (l *Loan) RepaymentsLeft(now time.Time) int {
	elapsed := monthsBetween(l.StartDate, now)
	left := l.TenureMonths - elapsed
	if left < 0 {
		return 0
	}
	if left > l.TenureMonths {
		return l.TenureMonths
	}
	return left
}

func monthsBetween(from, to time.Time) int {
	if to.Before(from) {
		return 0
	}
	months := (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
	if to.Day() < from.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}
