package loan

import (
	"context"
	"time"

	"credit-engine/internal/domain/customer"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type Repository interface {
	// CreateLoan persists an approved loan and increments the owning
	// customer's current debt by the loan amount in one transaction. The
	// customer row is locked for the duration so concurrent creations for
	// the same customer serialize instead of racing.
	CreateLoan(ctx context.Context, newLoan *Loan) (*Loan, error)

	GetLoanByID(ctx context.Context, loanID int64) (*Loan, error)

	// GetLoanWithCustomer fetches a loan together with its owning customer
	// record in a single round trip.
	GetLoanWithCustomer(ctx context.Context, loanID int64) (*Loan, *customer.Customer, error)

	GetLoansByCustomerID(ctx context.Context, customerID uuid.UUID) ([]*Loan, error)

	// FindMaturedLoans returns ids of active loans whose end date has
	// passed. Used by the maturity batch job.
	FindMaturedLoans(ctx context.Context, asOf time.Time) ([]int64, error)

	// UpdateLoanStatusInTx moves an open loan to the given status within
	// tx. Closing a loan releases its principal from the owning
	// customer's current debt.
	UpdateLoanStatusInTx(ctx context.Context, tx pgx.Tx, loanID int64, status LoanStatus) error

	BeginTx(ctx context.Context) (pgx.Tx, error)

	CommitTx(ctx context.Context, tx pgx.Tx) error

	RollbackTx(ctx context.Context, tx pgx.Tx) error
}
