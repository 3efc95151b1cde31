package event

import (
	"time"

	"github.com/google/uuid"
)

type CustomerRegisteredEvent struct {
	CustomerID    uuid.UUID `json:"customerId"`
	Name          string    `json:"name"`
	PhoneNumber   string    `json:"phoneNumber"`
	ApprovedLimit string    `json:"approvedLimit"`
	Timestamp     time.Time `json:"timestamp"`
}

type LoanApprovedEvent struct {
	LoanID             int64     `json:"loanId"`
	CustomerID         uuid.UUID `json:"customerId"`
	Amount             string    `json:"amount"`
	InterestRate       string    `json:"interestRate"`
	TenureMonths       int       `json:"tenureMonths"`
	MonthlyInstallment string    `json:"monthlyInstallment"`
	Timestamp          time.Time `json:"timestamp"`
}
