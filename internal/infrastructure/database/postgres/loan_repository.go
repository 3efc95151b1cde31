package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"credit-engine/internal/domain/customer"
	"credit-engine/internal/domain/loan"
	"credit-engine/internal/infrastructure/monitoring"
	"credit-engine/internal/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type LoanRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ loan.Repository = (*LoanRepository)(nil)

func NewLoanRepository(db DBPool, logger *slog.Logger) *LoanRepository {
	return &LoanRepository{db: db, logger: logger.With("component", "LoanRepository")}
}

func (r *LoanRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to begin transaction", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return tx, nil
}

func (r *LoanRepository) CommitTx(ctx context.Context, tx pgx.Tx) error {
	err := tx.Commit(ctx)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to commit transaction", "error", err)
		return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return nil
}

func (r *LoanRepository) RollbackTx(ctx context.Context, tx pgx.Tx) error {
	err := tx.Rollback(ctx)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		r.logger.ErrorContext(ctx, "Failed to rollback transaction", "error", err)
		return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return nil
}

// CreateLoan inserts the loan and bumps the owning customer's current debt
// in one transaction. The customer row is locked first so two concurrent
// creations for the same customer cannot interleave their debt updates.
func (r *LoanRepository) CreateLoan(ctx context.Context, newLoan *loan.Loan) (*loan.Loan, error) {
	tx, err := r.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer r.RollbackTx(ctx, tx)

	lockSQL := `SELECT current_debt, approved_limit FROM customers WHERE id = $1 FOR UPDATE`

	var currentDebt, approvedLimit decimal.Decimal
	if err := tx.QueryRow(ctx, lockSQL, newLoan.CustomerID).Scan(&currentDebt, &approvedLimit); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Customer not found while creating loan", slog.String("customerID", newLoan.CustomerID.String()))
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to lock customer row", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to lock customer row: %w", apperrors.ErrDatabase, err)
	}

	// Eligibility is evaluated against an unlocked read; the limit gate is
	// rechecked here against the locked row, which is the value the debt
	// increment below will actually apply to.
	if currentDebt.Add(newLoan.Amount).GreaterThan(approvedLimit) {
		r.logger.WarnContext(ctx, "Locked debt would breach approved limit, rejecting loan",
			slog.String("customerID", newLoan.CustomerID.String()),
			slog.String("current_debt", currentDebt.String()),
			slog.String("approved_limit", approvedLimit.String()))
		return nil, fmt.Errorf("%w: adding %s to current debt %s breaches approved limit %s",
			apperrors.ErrConflict, newLoan.Amount, currentDebt, approvedLimit)
	}

	loanSQL := `
        INSERT INTO loans (customer_id, amount, interest_rate, tenure_months, monthly_installment, emis_paid_on_time, start_date, end_date, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
        RETURNING id, created_at, updated_at`

	created := *newLoan
	err = tx.QueryRow(ctx, loanSQL,
		newLoan.CustomerID, newLoan.Amount, newLoan.InterestRate, newLoan.TenureMonths,
		newLoan.MonthlyInstallment, newLoan.EMIsPaidOnTime, newLoan.StartDate, newLoan.EndDate, newLoan.Status,
	).Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert loan", "error", err)
		return nil, fmt.Errorf("%w: failed to insert loan: %w", apperrors.ErrDatabase, err)
	}

	debtSQL := `
        UPDATE customers
        SET current_debt = current_debt + $1, updated_at = NOW()
        WHERE id = $2`

	cmdTag, err := tx.Exec(ctx, debtSQL, newLoan.Amount, newLoan.CustomerID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to increment customer debt", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to increment customer debt: %w", apperrors.ErrDatabase, err)
	}
	if cmdTag.RowsAffected() == 0 {
		r.logger.ErrorContext(ctx, "Debt update affected zero rows", slog.String("customerID", newLoan.CustomerID.String()))
		return nil, fmt.Errorf("%w: customer %s disappeared during loan creation", apperrors.ErrConflict, newLoan.CustomerID)
	}

	if err := r.CommitTx(ctx, tx); err != nil {
		return nil, err
	}

	r.logger.InfoContext(ctx, "Loan created in DB", "loan_id", created.ID)
	return &created, nil
}

const loanColumns = `id, customer_id, amount, interest_rate, tenure_months, monthly_installment, emis_paid_on_time, start_date, end_date, status, created_at, updated_at`

func scanLoan(row pgx.Row, l *loan.Loan) error {
	return row.Scan(
		&l.ID, &l.CustomerID, &l.Amount, &l.InterestRate, &l.TenureMonths,
		&l.MonthlyInstallment, &l.EMIsPaidOnTime, &l.StartDate, &l.EndDate,
		&l.Status, &l.CreatedAt, &l.UpdatedAt,
	)
}

func (r *LoanRepository) GetLoanByID(ctx context.Context, loanID int64) (*loan.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`

	status := "success"
	startTime := time.Now()

	var l loan.Loan
	err := scanLoan(r.db.QueryRow(ctx, query, loanID), &l)

	if err != nil {
		status = "error"
	}
	monitoring.RecordDBQuery("GetLoanByID", status, time.Since(startTime))

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Loan not found", "loan_id", loanID)
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to get loan by ID", "loan_id", loanID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return &l, nil
}

func (r *LoanRepository) GetLoanWithCustomer(ctx context.Context, loanID int64) (*loan.Loan, *customer.Customer, error) {
	query := `
        SELECT l.id, l.customer_id, l.amount, l.interest_rate, l.tenure_months, l.monthly_installment,
               l.emis_paid_on_time, l.start_date, l.end_date, l.status, l.created_at, l.updated_at,
               c.id, c.first_name, c.last_name, c.age, c.phone_number, c.monthly_income,
               c.approved_limit, c.current_debt, c.created_at, c.updated_at
        FROM loans l
        JOIN customers c ON c.id = l.customer_id
        WHERE l.id = $1`

	var l loan.Loan
	var cust customer.Customer
	err := r.db.QueryRow(ctx, query, loanID).Scan(
		&l.ID, &l.CustomerID, &l.Amount, &l.InterestRate, &l.TenureMonths, &l.MonthlyInstallment,
		&l.EMIsPaidOnTime, &l.StartDate, &l.EndDate, &l.Status, &l.CreatedAt, &l.UpdatedAt,
		&cust.CustomerID, &cust.FirstName, &cust.LastName, &cust.Age, &cust.PhoneNumber, &cust.MonthlyIncome,
		&cust.ApprovedLimit, &cust.CurrentDebt, &cust.CreatedAt, &cust.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Loan not found", "loan_id", loanID)
			return nil, nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to get loan with customer", "loan_id", loanID, "error", err)
		return nil, nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return &l, &cust, nil
}

func (r *LoanRepository) GetLoansByCustomerID(ctx context.Context, customerID uuid.UUID) ([]*loan.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE customer_id = $1 ORDER BY start_date DESC`

	rows, err := r.db.Query(ctx, query, customerID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query loans by customer", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	loans := make([]*loan.Loan, 0)
	for rows.Next() {
		var l loan.Loan
		if err := scanLoan(rows, &l); err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan loan row", "error", err)
			return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
		}
		loans = append(loans, &l)
	}
	if err := rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating loan rows", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}

	return loans, nil
}

func (r *LoanRepository) FindMaturedLoans(ctx context.Context, asOf time.Time) ([]int64, error) {
	query := `
        SELECT id FROM loans
        WHERE status IN ($1, $2) AND end_date < $3
        ORDER BY id`

	rows, err := r.db.Query(ctx, query, loan.StatusActive, loan.StatusApproved, asOf)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query matured loans", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}

	return ids, nil
}

// UpdateLoanStatusInTx moves an active loan to a new status. Closing a loan
// releases its principal from the owning customer's current debt in the same
// transaction, keeping the debt equal to the sum of open principals.
func (r *LoanRepository) UpdateLoanStatusInTx(ctx context.Context, tx pgx.Tx, loanID int64, status loan.LoanStatus) error {
	query := `
        UPDATE loans SET status = $1, updated_at = NOW()
        WHERE id = $2 AND status IN ($3, $4)
        RETURNING amount, customer_id`

	var amount decimal.Decimal
	var customerID uuid.UUID
	err := tx.QueryRow(ctx, query, status, loanID, loan.StatusActive, loan.StatusApproved).Scan(&amount, &customerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to update loan status", "loan_id", loanID, "error", err)
		return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}

	if status != loan.StatusPaidOff {
		return nil
	}

	debtSQL := `
        UPDATE customers
        SET current_debt = GREATEST(current_debt - $1, 0), updated_at = NOW()
        WHERE id = $2`

	cmdTag, err := tx.Exec(ctx, debtSQL, amount, customerID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to release customer debt", "loan_id", loanID, "error", err)
		return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: customer %s disappeared while closing loan %d", apperrors.ErrConflict, customerID, loanID)
	}
	return nil
}
