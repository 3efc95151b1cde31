package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"credit-engine/internal/domain/customer"
	"credit-engine/internal/domain/loan"
	"credit-engine/internal/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var nonIdentifier = regexp.MustCompile(`[^a-z0-9_]`)

// Loader performs the one-time batch import of customer and loan history
// from tabular CSV exports. Malformed rows and duplicate keys are skipped
// with a warning and counted; file-level errors abort the run.
type Loader struct {
	customers customer.CustomerRepository
	loans     loan.Repository
	logger    *slog.Logger

	// maps the source file's integer customer ids to generated UUIDs so
	// loan rows can be linked to the customers they belong to.
	customerIDs map[string]uuid.UUID
}

type Summary struct {
	CustomersCreated int
	CustomersSkipped int
	LoansCreated     int
	LoansSkipped     int
}

func NewLoader(customers customer.CustomerRepository, loans loan.Repository, logger *slog.Logger) *Loader {
	if customers == nil || loans == nil {
		panic("Loader repositories cannot be nil")
	}
	return &Loader{
		customers:   customers,
		loans:       loans,
		logger:      logger.With("component", "Loader"),
		customerIDs: make(map[string]uuid.UUID),
	}
}

// normalizeHeader lowers, trims and strips header cells so files with
// arbitrary casing or spacing still map onto the expected column names.
func normalizeHeader(cells []string) map[string]int {
	index := make(map[string]int, len(cells))
	for i, cell := range cells {
		key := strings.ToLower(strings.TrimSpace(cell))
		key = strings.ReplaceAll(key, " ", "_")
		key = nonIdentifier.ReplaceAllString(key, "")
		index[key] = i
	}
	return index
}

type row struct {
	index  map[string]int
	cells  []string
	number int
}

func (r row) get(names ...string) (string, error) {
	for _, name := range names {
		if i, ok := r.index[name]; ok && i < len(r.cells) {
			return strings.TrimSpace(r.cells[i]), nil
		}
	}
	return "", fmt.Errorf("missing column %q", names[0])
}

func (r row) getDecimal(names ...string) (decimal.Decimal, error) {
	s, err := r.get(names...)
	if err != nil {
		return decimal.Zero, err
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("column %q: %w", names[0], err)
	}
	return d, nil
}

func (r row) getInt(names ...string) (int, error) {
	s, err := r.get(names...)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("column %q: %w", names[0], err)
	}
	return n, nil
}

var dateLayouts = []string{"2006-01-02", "2006-01-02 15:04:05", "01/02/2006", time.RFC3339}

func (r row) getDate(names ...string) (time.Time, error) {
	s, err := r.get(names...)
	if err != nil {
		return time.Time{}, err
	}
	for _, layout := range dateLayouts {
		if t, perr := time.Parse(layout, s); perr == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("column %q: unparseable date %q", names[0], s)
}

func (l *Loader) Run(ctx context.Context, customerData, loanData io.Reader) (*Summary, error) {
	summary := &Summary{}

	if err := l.ingestCustomers(ctx, customerData, summary); err != nil {
		return summary, err
	}
	if err := l.ingestLoans(ctx, loanData, summary); err != nil {
		return summary, err
	}

	l.logger.InfoContext(ctx, "Data ingestion complete",
		slog.Int("customers_created", summary.CustomersCreated),
		slog.Int("customers_skipped", summary.CustomersSkipped),
		slog.Int("loans_created", summary.LoansCreated),
		slog.Int("loans_skipped", summary.LoansSkipped))
	return summary, nil
}

func (l *Loader) ingestCustomers(ctx context.Context, r io.Reader, summary *Summary) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read customer data header: %w", err)
	}
	index := normalizeHeader(header)

	for number := 2; ; number++ {
		cells, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read customer data row %d: %w", number, err)
		}

		if err := l.ingestCustomerRow(ctx, row{index: index, cells: cells, number: number}); err != nil {
			l.logger.WarnContext(ctx, "Skipping customer row", slog.Int("row", number), slog.Any("error", err))
			summary.CustomersSkipped++
			continue
		}
		summary.CustomersCreated++
	}
	return nil
}

func (l *Loader) ingestCustomerRow(ctx context.Context, r row) error {
	sourceID, err := r.get("customer_id")
	if err != nil {
		return err
	}
	if _, seen := l.customerIDs[sourceID]; seen {
		return fmt.Errorf("duplicate customer id %q", sourceID)
	}

	firstName, err := r.get("first_name")
	if err != nil {
		return err
	}
	lastName, err := r.get("last_name")
	if err != nil {
		return err
	}
	age, err := r.getInt("age")
	if err != nil {
		return err
	}
	phone, err := r.get("phone_number")
	if err != nil {
		return err
	}
	income, err := r.getDecimal("monthly_salary", "monthly_income")
	if err != nil {
		return err
	}
	if income.Sign() <= 0 {
		return fmt.Errorf("monthly income must be positive, got %s", income)
	}

	cust := customer.NewCustomer(firstName, lastName, age, phone, income)
	if err := l.customers.Save(ctx, cust); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			return fmt.Errorf("phone number %q already registered", phone)
		}
		return err
	}

	l.customerIDs[sourceID] = cust.CustomerID
	return nil
}

func (l *Loader) ingestLoans(ctx context.Context, r io.Reader, summary *Summary) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read loan data header: %w", err)
	}
	index := normalizeHeader(header)

	seenLoans := make(map[string]bool)

	for number := 2; ; number++ {
		cells, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read loan data row %d: %w", number, err)
		}

		if err := l.ingestLoanRow(ctx, row{index: index, cells: cells, number: number}, seenLoans); err != nil {
			l.logger.WarnContext(ctx, "Skipping loan row", slog.Int("row", number), slog.Any("error", err))
			summary.LoansSkipped++
			continue
		}
		summary.LoansCreated++
	}
	return nil
}

func (l *Loader) ingestLoanRow(ctx context.Context, r row, seen map[string]bool) error {
	sourceLoanID, err := r.get("loan_id")
	if err != nil {
		return err
	}
	if seen[sourceLoanID] {
		return fmt.Errorf("duplicate loan id %q", sourceLoanID)
	}

	sourceCustomerID, err := r.get("customer_id")
	if err != nil {
		return err
	}
	customerID, ok := l.customerIDs[sourceCustomerID]
	if !ok {
		return fmt.Errorf("unknown customer id %q", sourceCustomerID)
	}

	amount, err := r.getDecimal("loan_amount")
	if err != nil {
		return err
	}
	rate, err := r.getDecimal("interest_rate")
	if err != nil {
		return err
	}
	tenure, err := r.getInt("tenure")
	if err != nil {
		return err
	}
	paidOnTime, err := r.getInt("emis_paid_on_time")
	if err != nil {
		return err
	}
	startDate, err := r.getDate("date_of_approval", "start_date")
	if err != nil {
		return err
	}

	// The installment is recomputed from the amortization formula rather
	// than trusted from the file, keeping the stored value consistent.
	newLoan, err := loan.NewLoan(customerID, amount, rate, tenure, startDate)
	if err != nil {
		return err
	}
	newLoan.EMIsPaidOnTime = paidOnTime
	newLoan.Status = loan.StatusActive
	if endDate, derr := r.getDate("end_date"); derr == nil {
		newLoan.EndDate = endDate
	}

	if _, err := l.loans.CreateLoan(ctx, newLoan); err != nil {
		return err
	}

	seen[sourceLoanID] = true
	return nil
}
