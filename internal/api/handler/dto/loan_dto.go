package dto

import (
	"fmt"
	"time"

	"credit-engine/internal/domain/loan"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type LoanApplicationRequest struct {
	CustomerID   string `json:"customer_id"`
	LoanAmount   string `json:"loan_amount"`
	InterestRate string `json:"interest_rate"`
	Tenure       int    `json:"tenure"`
}

func (r *LoanApplicationRequest) Validate() error {
	if _, err := uuid.Parse(r.CustomerID); err != nil {
		return fmt.Errorf("invalid customer_id: %w", err)
	}
	amount, err := decimal.NewFromString(r.LoanAmount)
	if err != nil {
		return fmt.Errorf("invalid numeric format for loan_amount: %w", err)
	}
	if amount.Sign() <= 0 {
		return fmt.Errorf("loan_amount must be greater than zero")
	}
	rate, err := decimal.NewFromString(r.InterestRate)
	if err != nil {
		return fmt.Errorf("invalid numeric format for interest_rate: %w", err)
	}
	if rate.Sign() < 0 {
		return fmt.Errorf("interest_rate cannot be negative")
	}
	if r.Tenure <= 0 {
		return fmt.Errorf("tenure must be a positive number of months")
	}
	return nil
}

func (r *LoanApplicationRequest) ParsedCustomerID() uuid.UUID {
	id, _ := uuid.Parse(r.CustomerID)
	return id
}

func (r *LoanApplicationRequest) Amount() decimal.Decimal {
	amount, _ := decimal.NewFromString(r.LoanAmount)
	return amount
}

func (r *LoanApplicationRequest) Rate() decimal.Decimal {
	rate, _ := decimal.NewFromString(r.InterestRate)
	return rate
}

type CheckEligibilityResponse struct {
	CustomerID            string `json:"customer_id"`
	Approval              bool   `json:"approval"`
	InterestRate          string `json:"interest_rate"`
	CorrectedInterestRate string `json:"corrected_interest_rate"`
	Tenure                int    `json:"tenure"`
	MonthlyInstallment    string `json:"monthly_installment"`
	Message               string `json:"message,omitempty"`
}

func NewCheckEligibilityResponse(ev *loan.Evaluation) CheckEligibilityResponse {
	return CheckEligibilityResponse{
		CustomerID:            ev.CustomerID.String(),
		Approval:              ev.Approved,
		InterestRate:          ev.RequestedRate.StringFixed(2),
		CorrectedInterestRate: ev.CorrectedRate.StringFixed(2),
		Tenure:                ev.TenureMonths,
		MonthlyInstallment:    ev.MonthlyInstallment.StringFixed(2),
		Message:               ev.Message,
	}
}

type CreateLoanResponse struct {
	LoanID             *int64  `json:"loan_id"`
	CustomerID         string  `json:"customer_id"`
	LoanApproved       bool    `json:"loan_approved"`
	Message            string  `json:"message"`
	MonthlyInstallment *string `json:"monthly_installment"`
}

func NewCreateLoanResponse(created *loan.Loan, ev *loan.Evaluation) CreateLoanResponse {
	resp := CreateLoanResponse{
		CustomerID:   ev.CustomerID.String(),
		LoanApproved: ev.Approved,
		Message:      ev.Message,
	}
	if resp.Message == "" && !ev.Approved {
		resp.Message = "Loan not approved due to eligibility criteria."
	}
	if created != nil {
		resp.LoanID = &created.ID
		installment := created.MonthlyInstallment.StringFixed(2)
		resp.MonthlyInstallment = &installment
	}
	return resp
}

type ViewLoanResponse struct {
	LoanID             int64           `json:"loan_id"`
	Customer           CustomerSummary `json:"customer"`
	LoanAmount         string          `json:"loan_amount"`
	InterestRate       string          `json:"interest_rate"`
	MonthlyInstallment string          `json:"monthly_installment"`
	Tenure             int             `json:"tenure"`
}

type CustomerLoanItem struct {
	LoanID             int64  `json:"loan_id"`
	LoanAmount         string `json:"loan_amount"`
	InterestRate       string `json:"interest_rate"`
	MonthlyInstallment string `json:"monthly_installment"`
	RepaymentsLeft     int    `json:"repayments_left"`
}

func NewCustomerLoanItems(loans []*loan.Loan, now time.Time) []CustomerLoanItem {
	items := make([]CustomerLoanItem, 0, len(loans))
	for _, l := range loans {
		if !l.IsActive() {
			continue
		}
		items = append(items, CustomerLoanItem{
			LoanID:             l.ID,
			LoanAmount:         l.Amount.StringFixed(2),
			InterestRate:       l.InterestRate.StringFixed(2),
			MonthlyInstallment: l.MonthlyInstallment.StringFixed(2),
			RepaymentsLeft:     l.RepaymentsLeft(now),
		})
	}
	return items
}
