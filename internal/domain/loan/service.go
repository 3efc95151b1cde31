package loan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"credit-engine/internal/domain/customer"
	"credit-engine/internal/event"
	"credit-engine/internal/infrastructure/monitoring"
	"credit-engine/internal/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type LoanService interface {
	CheckEligibility(ctx context.Context, customerID uuid.UUID, amount, interestRate decimal.Decimal, tenureMonths int) (*Evaluation, error)

	// CreateLoan evaluates the request and, only on approval, persists the
	// loan and increments the customer's debt. Rejection persists nothing.
	CreateLoan(ctx context.Context, customerID uuid.UUID, amount, interestRate decimal.Decimal, tenureMonths int) (*Loan, *Evaluation, error)

	GetLoanWithCustomer(ctx context.Context, loanID int64) (*Loan, *customer.Customer, error)

	ListCustomerLoans(ctx context.Context, customerID uuid.UUID) ([]*Loan, error)
}

var _ LoanService = (*loanService)(nil)

type loanService struct {
	repo            Repository
	customerService customer.CustomerService
	pub             event.EventPublisher
	logger          *slog.Logger
	now             func() time.Time
}

func NewLoanService(repo Repository, customerService customer.CustomerService, pub event.EventPublisher, logger *slog.Logger) LoanService {
	if repo == nil {
		panic("loan repository cannot be nil")
	}
	if customerService == nil {
		panic("customer service cannot be nil")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewLoanService, using default stderr handler")
	}
	if pub == nil {
		pub = event.NoopEventPublisher{}
	}

	return &loanService{
		repo:            repo,
		customerService: customerService,
		pub:             pub,
		logger:          logger.With(slog.String("component", "loanService")),
		now:             time.Now,
	}
}

func (s *loanService) validateRequest(ctx context.Context, amount, interestRate decimal.Decimal, tenureMonths int) error {
	if amount.Sign() <= 0 {
		s.logger.WarnContext(ctx, "Validation failed: loan amount must be positive")
		return apperrors.NewValidationError("loan_amount", "must be greater than zero")
	}
	if interestRate.Sign() < 0 {
		s.logger.WarnContext(ctx, "Validation failed: interest rate cannot be negative")
		return apperrors.NewValidationError("interest_rate", "cannot be negative")
	}
	if tenureMonths <= 0 {
		s.logger.WarnContext(ctx, "Validation failed: tenure must be positive")
		return apperrors.NewValidationError("tenure", "must be a positive number of months")
	}
	return nil
}

func (s *loanService) evaluate(ctx context.Context, customerID uuid.UUID, amount, interestRate decimal.Decimal, tenureMonths int) (*customer.Customer, *Evaluation, error) {
	cust, err := s.customerService.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, nil, err
	}

	history, err := s.repo.GetLoansByCustomerID(ctx, customerID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository error loading loan history", slog.Any("error", err))
		return nil, nil, fmt.Errorf("failed to load loan history for customer %s: %w", customerID, err)
	}

	ev := EvaluateLoan(cust, history, amount, interestRate, tenureMonths, s.now())
	monitoring.RecordCreditScore(ev.Score)

	s.logger.InfoContext(ctx, "Loan request evaluated",
		slog.String("customerID", customerID.String()),
		slog.Int("score", ev.Score),
		slog.Bool("approved", ev.Approved),
		slog.String("corrected_rate", ev.CorrectedRate.String()))

	return cust, &ev, nil
}

func (s *loanService) CheckEligibility(ctx context.Context, customerID uuid.UUID, amount, interestRate decimal.Decimal, tenureMonths int) (*Evaluation, error) {
	s.logger.InfoContext(ctx, "Checking loan eligibility")

	if err := s.validateRequest(ctx, amount, interestRate, tenureMonths); err != nil {
		return nil, err
	}

	_, ev, err := s.evaluate(ctx, customerID, amount, interestRate, tenureMonths)
	if err != nil {
		return nil, err
	}
	return ev, nil
}

func (s *loanService) CreateLoan(ctx context.Context, customerID uuid.UUID, amount, interestRate decimal.Decimal, tenureMonths int) (*Loan, *Evaluation, error) {
	s.logger.InfoContext(ctx, "Attempting to create loan")

	if err := s.validateRequest(ctx, amount, interestRate, tenureMonths); err != nil {
		return nil, nil, err
	}

	_, ev, err := s.evaluate(ctx, customerID, amount, interestRate, tenureMonths)
	if err != nil {
		return nil, nil, err
	}

	monitoring.RecordLoanDecision(ev.Approved)
	if !ev.Approved {
		s.logger.InfoContext(ctx, "Loan request rejected", slog.String("reason", ev.Message))
		return nil, ev, nil
	}

	newLoan, err := NewLoan(customerID, amount, ev.CorrectedRate, tenureMonths, s.now().Truncate(24*time.Hour))
	if err != nil {
		return nil, nil, err
	}

	created, err := s.repo.CreateLoan(ctx, newLoan)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository failed to persist approved loan", slog.Any("error", err))
		return nil, nil, fmt.Errorf("failed to persist approved loan: %w", err)
	}
	ev.MonthlyInstallment = created.MonthlyInstallment
	ev.Message = "Loan approved."

	approvedEvent := event.LoanApprovedEvent{
		LoanID:             created.ID,
		CustomerID:         created.CustomerID,
		Amount:             created.Amount.String(),
		InterestRate:       created.InterestRate.String(),
		TenureMonths:       created.TenureMonths,
		MonthlyInstallment: created.MonthlyInstallment.String(),
		Timestamp:          time.Now(),
	}
	if pubErr := s.pub.PublishLoanApproved(ctx, approvedEvent); pubErr != nil {
		s.logger.ErrorContext(ctx, "Loan created, but FAILED to publish approval event", slog.Any("error", pubErr))
	}

	s.logger.InfoContext(ctx, "Loan created", slog.Int64("loanID", created.ID))
	return created, ev, nil
}

func (s *loanService) GetLoanWithCustomer(ctx context.Context, loanID int64) (*Loan, *customer.Customer, error) {
	s.logger.InfoContext(ctx, "Attempting to get loan with customer", slog.Int64("loanID", loanID))

	l, cust, err := s.repo.GetLoanWithCustomer(ctx, loanID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Loan not found", slog.Int64("loanID", loanID))
			return nil, nil, apperrors.ErrNotFound
		}
		s.logger.ErrorContext(ctx, "Repository error loading loan", slog.Any("error", err))
		return nil, nil, fmt.Errorf("failed to get loan %d: %w", loanID, err)
	}
	return l, cust, nil
}

func (s *loanService) ListCustomerLoans(ctx context.Context, customerID uuid.UUID) ([]*Loan, error) {
	s.logger.InfoContext(ctx, "Attempting to list loans for customer")

	// Surface NotFound for unknown customers instead of an empty list.
	if _, err := s.customerService.GetCustomer(ctx, customerID); err != nil {
		return nil, err
	}

	loans, err := s.repo.GetLoansByCustomerID(ctx, customerID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository error listing loans", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list loans for customer %s: %w", customerID, err)
	}

	s.logger.InfoContext(ctx, "Successfully retrieved loans", slog.Int("count", len(loans)))
	return loans, nil
}
