package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"credit-engine/internal/api/handler/dto"
	"credit-engine/internal/domain/loan"
	"credit-engine/internal/pkg/apperrors"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type LoanHandler struct {
	service loan.LoanService
	logger  *slog.Logger
	now     func() time.Time
}

func NewLoanHandler(s loan.LoanService, l *slog.Logger) *LoanHandler {
	return &LoanHandler{
		service: s,
		logger:  l.With("component", "LoanHandler"),
		now:     time.Now,
	}
}

func decodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return fmt.Errorf("no request body")
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Default().Error("Failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":{"message":"Internal server error"}}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

func respondError(w http.ResponseWriter, err error) {
	status, message, field := http.StatusInternalServerError, "An unexpected error occurred.", ""
	var validationError *apperrors.ValidationError
	var appErr *apperrors.AppError

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		status, message = http.StatusNotFound, "Resource not found."
	case errors.Is(err, apperrors.ErrAlreadyExists), errors.Is(err, apperrors.ErrConflict):
		status, message = http.StatusConflict, err.Error()
	case errors.As(err, &validationError):
		status, message, field = http.StatusBadRequest, validationError.Message, validationError.Field
	case errors.Is(err, apperrors.ErrInvalidArgument), errors.Is(err, apperrors.ErrValidation):
		status, message = http.StatusBadRequest, err.Error()
	case errors.As(err, &appErr):
		message = appErr.Error()
	default:
		slog.Default().Error("Unhandled internal error", "error", err)
	}

	resp := dto.ErrorResponse{
		Error: dto.ErrorDetail{
			Message: message,
			Field:   field,
		},
	}
	respondJSON(w, status, resp)
}

func getLoanIDFromURL(r *http.Request) (int64, error) {
	idStr := chi.URLParam(r, "loanID")
	if idStr == "" {
		return 0, fmt.Errorf("loanID not found in URL path")
	}
	return strconv.ParseInt(idStr, 10, 64)
}

func getCustomerIDFromURL(r *http.Request) (uuid.UUID, error) {
	idStr := chi.URLParam(r, "customerID")
	if idStr == "" {
		return uuid.Nil, fmt.Errorf("customerID not found in URL path")
	}
	return uuid.Parse(idStr)
}

// CheckEligibility evaluates a loan request without creating a loan.
//
// @Summary Check loan eligibility
// @Description This endpoint scores the customer's loan history and evaluates the requested loan. The response carries the approval decision, the minimum interest rate the score allows, and the monthly installment at that rate. No loan is created.
// @Tags Loans
// @Accept json
// @Produce json
// @Param request body dto.LoanApplicationRequest true "Eligibility check payload"
// @Success 200 {object} dto.CheckEligibilityResponse "Eligibility decision"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload or validation error"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /check-eligibility [post]
func (h *LoanHandler) CheckEligibility(w http.ResponseWriter, r *http.Request) {
	var req dto.LoanApplicationRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	ev, err := h.service.CheckEligibility(r.Context(), req.ParsedCustomerID(), req.Amount(), req.Rate(), req.Tenure)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewCheckEligibilityResponse(ev))
}

// CreateLoan evaluates a loan request and persists the loan on approval.
//
// @Summary Create a new loan
// @Description This endpoint runs the same evaluation as the eligibility check and, on approval, persists the loan at the corrected interest rate and increments the customer's current debt. A rejected request returns 200 with loan_id null.
// @Tags Loans
// @Accept json
// @Produce json
// @Param request body dto.LoanApplicationRequest true "Loan creation payload"
// @Success 201 {object} dto.CreateLoanResponse "Loan successfully created"
// @Success 200 {object} dto.CreateLoanResponse "Loan request rejected"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload or validation error"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /create-loan [post]
func (h *LoanHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var req dto.LoanApplicationRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	created, ev, err := h.service.CreateLoan(r.Context(), req.ParsedCustomerID(), req.Amount(), req.Rate(), req.Tenure)
	if err != nil {
		respondError(w, err)
		return
	}

	status := http.StatusOK
	if created != nil {
		status = http.StatusCreated
	}
	respondJSON(w, status, dto.NewCreateLoanResponse(created, ev))
}

// GetLoan retrieves a single loan together with its customer.
//
// @Summary Retrieve loan details
// @Description This endpoint retrieves a loan by its ID, including a summary of the customer that holds it.
// @Tags Loans
// @Produce json
// @Param loanID path int true "Loan ID"
// @Success 200 {object} dto.ViewLoanResponse "Loan details successfully retrieved"
// @Failure 400 {object} dto.ErrorResponse "Invalid loan ID"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /view-loan/{loanID} [get]
func (h *LoanHandler) GetLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := getLoanIDFromURL(r)
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	domainLoan, cust, err := h.service.GetLoanWithCustomer(r.Context(), loanID)
	if err != nil {
		respondError(w, err)
		return
	}

	resp := dto.ViewLoanResponse{
		LoanID:             domainLoan.ID,
		Customer:           dto.NewCustomerSummary(cust),
		LoanAmount:         domainLoan.Amount.StringFixed(2),
		InterestRate:       domainLoan.InterestRate.StringFixed(2),
		MonthlyInstallment: domainLoan.MonthlyInstallment.StringFixed(2),
		Tenure:             domainLoan.TenureMonths,
	}
	respondJSON(w, http.StatusOK, resp)
}

// ListLoans retrieves all current loans for a customer.
//
// @Summary List a customer's current loans
// @Description This endpoint lists every non-closed loan held by the given customer, with the number of repayments left on each.
// @Tags Loans
// @Produce json
// @Param customerID path string true "Customer ID (UUID)"
// @Success 200 {array} dto.CustomerLoanItem "Loans successfully retrieved"
// @Failure 400 {object} dto.ErrorResponse "Invalid customer ID"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /view-loans/{customerID} [get]
func (h *LoanHandler) ListLoans(w http.ResponseWriter, r *http.Request) {
	customerID, err := getCustomerIDFromURL(r)
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	loans, err := h.service.ListCustomerLoans(r.Context(), customerID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewCustomerLoanItems(loans, h.now()))
}
