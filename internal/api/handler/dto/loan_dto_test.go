package dto

import (
	"testing"
	"time"

	"credit-engine/internal/domain/loan"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestLoanApplicationRequestValidate(t *testing.T) {
	customerID := uuid.New().String()

	valid := LoanApplicationRequest{
		CustomerID:   customerID,
		LoanAmount:   "500000",
		InterestRate: "10.5",
		Tenure:       24,
	}

	t.Run("accepts a valid request", func(t *testing.T) {
		req := valid
		assert.NoError(t, req.Validate())
		assert.Equal(t, customerID, req.ParsedCustomerID().String())
		assert.True(t, req.Amount().Equal(decimal.NewFromInt(500000)))
		assert.True(t, req.Rate().Equal(decimal.RequireFromString("10.5")))
	})

	t.Run("rejects a malformed customer id", func(t *testing.T) {
		req := valid
		req.CustomerID = "not-a-uuid"
		err := req.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "customer_id")
	})

	t.Run("rejects a non-numeric loan amount", func(t *testing.T) {
		req := valid
		req.LoanAmount = "five lakh"
		err := req.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "loan_amount")
	})

	t.Run("rejects a zero loan amount", func(t *testing.T) {
		req := valid
		req.LoanAmount = "0"
		assert.Error(t, req.Validate())
	})

	t.Run("rejects a negative interest rate", func(t *testing.T) {
		req := valid
		req.InterestRate = "-1"
		err := req.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "interest_rate")
	})

	t.Run("accepts a zero interest rate", func(t *testing.T) {
		req := valid
		req.InterestRate = "0"
		assert.NoError(t, req.Validate())
	})

	t.Run("rejects a non-positive tenure", func(t *testing.T) {
		req := valid
		req.Tenure = 0
		err := req.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "tenure")
	})
}

func TestNewCheckEligibilityResponse(t *testing.T) {
	customerID := uuid.New()
	ev := &loan.Evaluation{
		CustomerID:         customerID,
		Score:              41,
		Approved:           true,
		RequestedRate:      decimal.NewFromInt(10),
		CorrectedRate:      decimal.NewFromInt(12),
		TenureMonths:       12,
		MonthlyInstallment: decimal.RequireFromString("17769.76"),
	}

	response := NewCheckEligibilityResponse(ev)

	assert.Equal(t, customerID.String(), response.CustomerID)
	assert.True(t, response.Approval)
	assert.Equal(t, "10.00", response.InterestRate)
	assert.Equal(t, "12.00", response.CorrectedInterestRate)
	assert.Equal(t, 12, response.Tenure)
	assert.Equal(t, "17769.76", response.MonthlyInstallment)
	assert.Empty(t, response.Message)
}

func TestNewCreateLoanResponse(t *testing.T) {
	customerID := uuid.New()

	t.Run("carries the loan id and installment when a loan was created", func(t *testing.T) {
		created := &loan.Loan{
			ID:                 42,
			CustomerID:         customerID,
			MonthlyInstallment: decimal.RequireFromString("23072.46"),
		}
		ev := &loan.Evaluation{
			CustomerID: customerID,
			Approved:   true,
			Message:    "Loan approved.",
		}

		response := NewCreateLoanResponse(created, ev)

		assert.NotNil(t, response.LoanID)
		assert.Equal(t, int64(42), *response.LoanID)
		assert.True(t, response.LoanApproved)
		assert.Equal(t, "Loan approved.", response.Message)
		assert.NotNil(t, response.MonthlyInstallment)
		assert.Equal(t, "23072.46", *response.MonthlyInstallment)
	})

	t.Run("leaves the loan id null and fills a default message on rejection", func(t *testing.T) {
		ev := &loan.Evaluation{
			CustomerID: customerID,
			Approved:   false,
		}

		response := NewCreateLoanResponse(nil, ev)

		assert.Nil(t, response.LoanID)
		assert.False(t, response.LoanApproved)
		assert.Equal(t, "Loan not approved due to eligibility criteria.", response.Message)
		assert.Nil(t, response.MonthlyInstallment)
	})
}

func TestNewCustomerLoanItems(t *testing.T) {
	customerID := uuid.New()
	now := time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC)

	loans := []*loan.Loan{
		{
			ID:                 1,
			CustomerID:         customerID,
			Amount:             decimal.NewFromInt(500000),
			InterestRate:       decimal.NewFromInt(10),
			TenureMonths:       24,
			MonthlyInstallment: decimal.RequireFromString("23072.46"),
			StartDate:          time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
			Status:             loan.StatusActive,
		},
		{
			ID:           2,
			CustomerID:   customerID,
			Amount:       decimal.NewFromInt(100000),
			TenureMonths: 10,
			Status:       loan.StatusPaidOff,
		},
	}

	items := NewCustomerLoanItems(loans, now)

	assert.Len(t, items, 1, "closed loans should not be listed")
	assert.Equal(t, int64(1), items[0].LoanID)
	assert.Equal(t, "500000.00", items[0].LoanAmount)
	assert.Equal(t, "10.00", items[0].InterestRate)
	assert.Equal(t, "23072.46", items[0].MonthlyInstallment)
	assert.Equal(t, 21, items[0].RepaymentsLeft)
}
