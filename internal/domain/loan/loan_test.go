package loan

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNewLoan(t *testing.T) {
	customerID := uuid.New()
	startDate := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	t.Run("should error when inputs are invalid", func(t *testing.T) {
		_, err := NewLoan(customerID, decimal.NewFromInt(-1), decimal.NewFromInt(10), 12, startDate)
		assert.Error(t, err)

		_, err = NewLoan(customerID, decimal.NewFromInt(100_000), decimal.NewFromInt(-1), 12, startDate)
		assert.Error(t, err)

		_, err = NewLoan(customerID, decimal.NewFromInt(100_000), decimal.NewFromInt(10), 0, startDate)
		assert.Error(t, err)
	})

	t.Run("should derive the installment and end date", func(t *testing.T) {
		l, err := NewLoan(customerID, decimal.NewFromInt(500_000), decimal.NewFromInt(10), 24, startDate)
		assert.NoError(t, err)
		assert.NotNil(t, l)
		assert.Equal(t, customerID, l.CustomerID)
		assert.Equal(t, "23072.46", l.MonthlyInstallment.StringFixed(2))
		assert.Equal(t, startDate.AddDate(0, 24, 0), l.EndDate)
		assert.Equal(t, StatusApproved, l.Status)
	})

	t.Run("should default a zero start date to today", func(t *testing.T) {
		l, err := NewLoan(customerID, decimal.NewFromInt(100_000), decimal.NewFromInt(10), 12, time.Time{})
		assert.NoError(t, err)
		assert.False(t, l.StartDate.IsZero())
	})
}

func TestIsActive(t *testing.T) {
	assert.True(t, (&Loan{Status: StatusActive}).IsActive())
	assert.True(t, (&Loan{Status: StatusApproved}).IsActive())
	assert.False(t, (&Loan{Status: StatusPaidOff}).IsActive())
}

func TestIsMatured(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("should mature once the end date has passed", func(t *testing.T) {
		l := &Loan{Status: StatusActive, EndDate: now.AddDate(0, -1, 0)}
		assert.True(t, l.IsMatured(now))
	})

	t.Run("should not mature before the end date", func(t *testing.T) {
		l := &Loan{Status: StatusActive, EndDate: now.AddDate(0, 1, 0)}
		assert.False(t, l.IsMatured(now))
	})

	t.Run("should never mature a closed loan", func(t *testing.T) {
		l := &Loan{Status: StatusPaidOff, EndDate: now.AddDate(0, -1, 0)}
		assert.False(t, l.IsMatured(now))
	})
}

func TestRepaymentsLeft(t *testing.T) {
	start := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	l := &Loan{TenureMonths: 12, StartDate: start}

	t.Run("should equal the full tenure before the start date", func(t *testing.T) {
		assert.Equal(t, 12, l.RepaymentsLeft(start.AddDate(0, -2, 0)))
	})

	t.Run("should equal the full tenure on the start date", func(t *testing.T) {
		assert.Equal(t, 12, l.RepaymentsLeft(start))
	})

	t.Run("should decrease by one per elapsed calendar month", func(t *testing.T) {
		assert.Equal(t, 9, l.RepaymentsLeft(start.AddDate(0, 3, 0)))
	})

	t.Run("should not count a partial month as elapsed", func(t *testing.T) {
		// Three months minus a day is only two full months.
		assert.Equal(t, 10, l.RepaymentsLeft(start.AddDate(0, 3, -1)))
	})

	t.Run("should never go below zero", func(t *testing.T) {
		assert.Equal(t, 0, l.RepaymentsLeft(start.AddDate(0, 24, 0)))
	})
}
