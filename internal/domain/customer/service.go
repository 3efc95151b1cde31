package customer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"credit-engine/internal/event"
	"credit-engine/internal/infrastructure/monitoring"
	"credit-engine/internal/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const inputValidationPassed = "Input validation passed"

type CustomerService interface {
	RegisterCustomer(ctx context.Context, firstName, lastName string, age int, phoneNumber string, monthlyIncome decimal.Decimal) (*Customer, error)
	GetCustomer(ctx context.Context, customerID uuid.UUID) (*Customer, error)
	ListCustomers(ctx context.Context) ([]*Customer, error)
}

var _ CustomerService = (*customerService)(nil)

type customerService struct {
	repo   CustomerRepository
	pub    event.EventPublisher
	logger *slog.Logger
}

func NewCustomerService(repo CustomerRepository, pub event.EventPublisher, logger *slog.Logger) CustomerService {
	if repo == nil {
		panic("customer repository cannot be nil")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCustomerService, using default stderr handler")
	}
	if pub == nil {
		pub = event.NoopEventPublisher{}
	}

	return &customerService{
		repo:   repo,
		pub:    pub,
		logger: logger.With(slog.String("component", "customerService")),
	}
}

func (s *customerService) RegisterCustomer(ctx context.Context, firstName, lastName string, age int, phoneNumber string, monthlyIncome decimal.Decimal) (*Customer, error) {
	s.logger.InfoContext(ctx, "Attempting to register new customer")

	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	phoneNumber = strings.TrimSpace(phoneNumber)

	if firstName == "" {
		s.logger.WarnContext(ctx, "Validation failed: first name is empty")
		return nil, apperrors.NewValidationError("first_name", "cannot be empty")
	}
	if lastName == "" {
		s.logger.WarnContext(ctx, "Validation failed: last name is empty")
		return nil, apperrors.NewValidationError("last_name", "cannot be empty")
	}
	if age <= 0 {
		s.logger.WarnContext(ctx, "Validation failed: age must be positive", slog.Int("age", age))
		return nil, apperrors.NewValidationError("age", "must be a positive integer")
	}
	if phoneNumber == "" {
		s.logger.WarnContext(ctx, "Validation failed: phone number is empty")
		return nil, apperrors.NewValidationError("phone_number", "cannot be empty")
	}
	if monthlyIncome.Sign() <= 0 {
		s.logger.WarnContext(ctx, "Validation failed: monthly income must be positive")
		return nil, apperrors.NewValidationError("monthly_income", "must be greater than zero")
	}
	s.logger.InfoContext(ctx, inputValidationPassed)

	existing, err := s.repo.FindByPhoneNumber(ctx, phoneNumber)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		s.logger.ErrorContext(ctx, "Repository error checking phone number uniqueness", slog.Any("error", err))
		return nil, fmt.Errorf("failed to check phone number uniqueness: %w", err)
	}
	if existing != nil {
		s.logger.WarnContext(ctx, "Registration rejected: phone number already in use")
		return nil, fmt.Errorf("%w: customer with this phone number already exists", apperrors.ErrAlreadyExists)
	}

	cust := NewCustomer(firstName, lastName, age, phoneNumber, monthlyIncome)
	s.logger.InfoContext(ctx, "Customer domain object created",
		slog.String("approved_limit", cust.ApprovedLimit.String()))

	if err := s.repo.Save(ctx, cust); err != nil {
		s.logger.ErrorContext(ctx, "Repository failed to save new customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to save new customer: %w", err)
	}
	monitoring.RecordCustomerRegistered()

	registeredEvent := event.CustomerRegisteredEvent{
		CustomerID:    cust.CustomerID,
		Name:          cust.FullName(),
		PhoneNumber:   cust.PhoneNumber,
		ApprovedLimit: cust.ApprovedLimit.String(),
		Timestamp:     time.Now(),
	}
	if pubErr := s.pub.PublishCustomerRegistered(ctx, registeredEvent); pubErr != nil {
		s.logger.ErrorContext(ctx, "Customer registered, but FAILED to publish registration event", slog.Any("error", pubErr))
	}

	s.logger.InfoContext(ctx, "Successfully registered new customer", slog.String("customerID", cust.CustomerID.String()))
	return cust, nil
}

func (s *customerService) GetCustomer(ctx context.Context, customerID uuid.UUID) (*Customer, error) {
	s.logger.InfoContext(ctx, "Attempting to get customer by ID")

	cust, err := s.repo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Customer not found by repository", slog.String("customerID", customerID.String()))
			return nil, apperrors.ErrNotFound
		}
		s.logger.ErrorContext(ctx, "Repository error finding customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get customer %s: %w", customerID, err)
	}

	return cust, nil
}

func (s *customerService) ListCustomers(ctx context.Context) ([]*Customer, error) {
	s.logger.InfoContext(ctx, "Attempting to list customers")

	customers, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository error listing customers", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	s.logger.InfoContext(ctx, "Successfully retrieved customers", slog.Int("count", len(customers)))
	return customers, nil
}
