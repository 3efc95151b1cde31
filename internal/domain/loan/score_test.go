package loan

import (
	"testing"
	"time"

	"credit-engine/internal/domain/customer"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var scoreNow = time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

func historicalLoan(amount int64, tenure, paidOnTime int, start time.Time, status LoanStatus) *Loan {
	return &Loan{
		Amount:         decimal.NewFromInt(amount),
		TenureMonths:   tenure,
		EMIsPaidOnTime: paidOnTime,
		StartDate:      start,
		EndDate:        start.AddDate(0, tenure, 0),
		Status:         status,
	}
}

func TestCreditScore(t *testing.T) {
	limit := decimal.NewFromInt(1_000_000)

	t.Run("should force zero when debt exceeds the approved limit", func(t *testing.T) {
		history := []*Loan{historicalLoan(500_000, 12, 12, scoreNow.AddDate(-1, 0, 0), StatusPaidOff)}
		score := CreditScore(history, decimal.NewFromInt(1_000_001), limit, scoreNow)
		assert.Equal(t, 0, score)
	})

	t.Run("should give a clean slate a perfect score", func(t *testing.T) {
		score := CreditScore(nil, decimal.Zero, limit, scoreNow)
		assert.Equal(t, 100, score)
	})

	t.Run("should weight a single well-paid old loan highly", func(t *testing.T) {
		history := []*Loan{historicalLoan(500_000, 12, 12, scoreNow.AddDate(-1, 0, 0), StatusPaidOff)}
		// on-time 100, count 85, activity 100, volume 50 -> 85.25
		score := CreditScore(history, decimal.Zero, limit, scoreNow)
		assert.Equal(t, 85, score)
	})

	t.Run("should punish missed payments and current-year churn", func(t *testing.T) {
		history := []*Loan{
			historicalLoan(300_000, 12, 3, scoreNow.AddDate(0, -5, 0), StatusPaidOff),
			historicalLoan(300_000, 12, 3, scoreNow.AddDate(0, -4, 0), StatusPaidOff),
			historicalLoan(300_000, 12, 3, scoreNow.AddDate(0, -3, 0), StatusPaidOff),
		}
		// on-time 25, count 55, activity 25, volume 10 -> 25.75
		score := CreditScore(history, decimal.Zero, limit, scoreNow)
		assert.Equal(t, 26, score)
	})

	t.Run("should clamp exhausted components at zero", func(t *testing.T) {
		var history []*Loan
		for i := 0; i < 7; i++ {
			history = append(history, historicalLoan(200_000, 12, 12, scoreNow.AddDate(0, -i, 0), StatusPaidOff))
		}
		// on-time stays 100; count, activity and volume all bottom out
		score := CreditScore(history, decimal.Zero, limit, scoreNow)
		assert.Equal(t, 40, score)
	})

	t.Run("should score the volume component zero when the limit is zero", func(t *testing.T) {
		history := []*Loan{historicalLoan(500_000, 12, 12, scoreNow.AddDate(-1, 0, 0), StatusPaidOff)}
		// debt zero does not exceed a zero limit, so the composite still runs
		score := CreditScore(history, decimal.Zero, decimal.Zero, scoreNow)
		assert.Equal(t, 73, score)
	})
}

func evalCustomer(income, limit, debt int64) *customer.Customer {
	return &customer.Customer{
		CustomerID:    uuid.New(),
		MonthlyIncome: decimal.NewFromInt(income),
		ApprovedLimit: decimal.NewFromInt(limit),
		CurrentDebt:   decimal.NewFromInt(debt),
	}
}

func TestEvaluateLoan(t *testing.T) {
	t.Run("should approve a clean customer at the requested rate", func(t *testing.T) {
		cust := evalCustomer(100_000, 2_000_000, 0)
		ev := EvaluateLoan(cust, nil, decimal.NewFromInt(500_000), decimal.NewFromInt(10), 24, scoreNow)

		assert.True(t, ev.Approved)
		assert.Equal(t, 100, ev.Score)
		assert.True(t, ev.CorrectedRate.Equal(decimal.NewFromInt(10)))
		assert.Equal(t, "23072.46", ev.MonthlyInstallment.StringFixed(2))
	})

	t.Run("should reject when the proposed installment exceeds half the income", func(t *testing.T) {
		cust := evalCustomer(40_000, 2_000_000, 0)
		ev := EvaluateLoan(cust, nil, decimal.NewFromInt(500_000), decimal.NewFromInt(10), 24, scoreNow)

		assert.False(t, ev.Approved)
		assert.Equal(t, 0, ev.Score)
		assert.Contains(t, ev.Message, "exceeds 50% of monthly income")
	})

	t.Run("should reject when current installments leave no headroom", func(t *testing.T) {
		cust := evalCustomer(100_000, 2_000_000, 0)
		active := historicalLoan(400_000, 24, 6, scoreNow.AddDate(0, -6, 0), StatusActive)
		active.MonthlyInstallment = decimal.NewFromInt(30_000)

		ev := EvaluateLoan(cust, []*Loan{active}, decimal.NewFromInt(500_000), decimal.NewFromInt(10), 24, scoreNow)

		assert.False(t, ev.Approved)
		assert.Contains(t, ev.Message, "Sum of all current installments")
	})

	t.Run("should correct an under-priced mid-band request to 12 percent", func(t *testing.T) {
		cust := evalCustomer(200_000, 1_000_000, 0)
		history := []*Loan{
			historicalLoan(200_000, 12, 3, scoreNow.AddDate(0, -5, 0), StatusPaidOff),
			historicalLoan(200_000, 12, 3, scoreNow.AddDate(0, -4, 0), StatusPaidOff),
			historicalLoan(100_000, 12, 3, scoreNow.AddDate(-1, 0, 0), StatusPaidOff),
		}
		// on-time 25, count 55, activity 50, volume 50 -> score 41
		ev := EvaluateLoan(cust, history, decimal.NewFromInt(200_000), decimal.NewFromInt(10), 12, scoreNow)

		assert.True(t, ev.Approved)
		assert.Equal(t, 41, ev.Score)
		assert.True(t, ev.CorrectedRate.Equal(decimal.NewFromInt(12)))
		assert.Equal(t, "17769.76", ev.MonthlyInstallment.StringFixed(2))
	})

	t.Run("should correct an under-priced low-band request to 16 percent", func(t *testing.T) {
		cust := evalCustomer(20_000, 500_000, 0)
		history := []*Loan{
			historicalLoan(250_000, 12, 0, scoreNow.AddDate(0, -5, 0), StatusPaidOff),
			historicalLoan(200_000, 12, 0, scoreNow.AddDate(0, -4, 0), StatusPaidOff),
		}
		// on-time 0, count 70, activity 50, volume 10 -> score 23
		ev := EvaluateLoan(cust, history, decimal.NewFromInt(50_000), decimal.NewFromInt(8), 12, scoreNow)

		assert.True(t, ev.Approved)
		assert.Equal(t, 23, ev.Score)
		assert.True(t, ev.CorrectedRate.Equal(decimal.NewFromInt(16)))
		assert.Equal(t, "4536.54", ev.MonthlyInstallment.StringFixed(2))
	})

	t.Run("should reject a score at or below the bottom band", func(t *testing.T) {
		cust := evalCustomer(100_000, 500_000, 600_000)
		history := []*Loan{historicalLoan(200_000, 12, 12, scoreNow.AddDate(-1, 0, 0), StatusPaidOff)}

		ev := EvaluateLoan(cust, history, decimal.NewFromInt(100_000), decimal.NewFromInt(10), 12, scoreNow)

		assert.False(t, ev.Approved)
		assert.Equal(t, 0, ev.Score)
		assert.Contains(t, ev.Message, "Credit score too low")
	})

	t.Run("should reject an amount above the approved limit", func(t *testing.T) {
		cust := evalCustomer(1_000_000, 2_000_000, 0)
		ev := EvaluateLoan(cust, nil, decimal.NewFromInt(3_000_000), decimal.NewFromInt(10), 24, scoreNow)

		assert.False(t, ev.Approved)
		assert.Equal(t, 100, ev.Score)
		assert.Contains(t, ev.Message, "approved limit")
	})

	t.Run("should re-check affordability at the corrected rate", func(t *testing.T) {
		cust := evalCustomer(9_400, 500_000, 0)
		history := []*Loan{
			historicalLoan(250_000, 12, 0, scoreNow.AddDate(0, -5, 0), StatusPaidOff),
			historicalLoan(200_000, 12, 0, scoreNow.AddDate(0, -4, 0), StatusPaidOff),
		}
		// 100k over 24 months fits at 8 percent (4522.73) but not at the
		// corrected 16 percent (4896.31) against a 4700 ceiling.
		ev := EvaluateLoan(cust, history, decimal.NewFromInt(100_000), decimal.NewFromInt(8), 24, scoreNow)

		assert.False(t, ev.Approved)
		assert.True(t, ev.CorrectedRate.Equal(decimal.NewFromInt(16)))
		assert.True(t, ev.MonthlyInstallment.IsZero())
		assert.Contains(t, ev.Message, "corrected rate")
	})
}
