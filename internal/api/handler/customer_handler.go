package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"credit-engine/internal/api/handler/dto"
	"credit-engine/internal/domain/customer"
	"credit-engine/internal/pkg/apperrors"
)

type CustomerHandler struct {
	service customer.CustomerService
	logger  *slog.Logger
}

func NewCustomerHandler(s customer.CustomerService, l *slog.Logger) *CustomerHandler {
	return &CustomerHandler{
		service: s,
		logger:  l.With("component", "CustomerHandler"),
	}
}

// Register creates a new customer with a derived approved credit limit.
//
// @Summary Register a new customer
// @Description This endpoint registers a new customer. The approved credit limit is derived from the declared monthly income (36 times the income, rounded to the nearest lakh).
// @Tags Customers
// @Accept json
// @Produce json
// @Param request body dto.RegisterCustomerRequest true "Customer registration payload"
// @Success 201 {object} dto.RegisterCustomerResponse "Customer successfully registered"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload or validation error"
// @Failure 409 {object} dto.ErrorResponse "Phone number already registered"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /register [post]
func (h *CustomerHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterCustomerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	cust, err := h.service.RegisterCustomer(r.Context(), req.FirstName, req.LastName, req.Age, req.PhoneNumber, req.Income())
	if err != nil {
		respondError(w, err)
		return
	}

	resp := dto.NewRegisterCustomerResponse(cust)
	respondJSON(w, http.StatusCreated, resp)
}

// List retrieves every registered customer.
//
// @Summary List registered customers
// @Description This endpoint lists all registered customers with their approved limits and current debt.
// @Tags Customers
// @Produce json
// @Success 200 {array} dto.CustomerResponse "Customers successfully retrieved"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers [get]
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	customers, err := h.service.ListCustomers(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewCustomerListResponse(customers))
}
