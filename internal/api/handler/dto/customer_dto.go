package dto

import (
	"fmt"

	"credit-engine/internal/domain/customer"

	"github.com/shopspring/decimal"
)

type RegisterCustomerRequest struct {
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Age           int    `json:"age"`
	MonthlyIncome string `json:"monthly_income"`
	PhoneNumber   string `json:"phone_number"`
}

func (r *RegisterCustomerRequest) Validate() error {
	if r.FirstName == "" {
		return fmt.Errorf("first_name is required")
	}
	if r.LastName == "" {
		return fmt.Errorf("last_name is required")
	}
	if r.Age <= 0 {
		return fmt.Errorf("age must be a positive integer")
	}
	if r.PhoneNumber == "" {
		return fmt.Errorf("phone_number is required")
	}
	income, err := decimal.NewFromString(r.MonthlyIncome)
	if err != nil {
		return fmt.Errorf("invalid numeric format for monthly_income: %w", err)
	}
	if income.Sign() <= 0 {
		return fmt.Errorf("monthly_income must be greater than zero")
	}
	return nil
}

func (r *RegisterCustomerRequest) Income() decimal.Decimal {
	income, _ := decimal.NewFromString(r.MonthlyIncome)
	return income
}

type RegisterCustomerResponse struct {
	CustomerID    string `json:"customer_id"`
	Name          string `json:"name"`
	Age           int    `json:"age"`
	MonthlyIncome string `json:"monthly_income"`
	ApprovedLimit string `json:"approved_limit"`
	PhoneNumber   string `json:"phone_number"`
}

func NewRegisterCustomerResponse(cust *customer.Customer) RegisterCustomerResponse {
	return RegisterCustomerResponse{
		CustomerID:    cust.CustomerID.String(),
		Name:          cust.FullName(),
		Age:           cust.Age,
		MonthlyIncome: cust.MonthlyIncome.StringFixed(2),
		ApprovedLimit: cust.ApprovedLimit.StringFixed(2),
		PhoneNumber:   cust.PhoneNumber,
	}
}

type CustomerResponse struct {
	CustomerID    string `json:"customer_id"`
	Name          string `json:"name"`
	Age           int    `json:"age"`
	PhoneNumber   string `json:"phone_number"`
	MonthlyIncome string `json:"monthly_income"`
	ApprovedLimit string `json:"approved_limit"`
	CurrentDebt   string `json:"current_debt"`
}

func NewCustomerListResponse(customers []*customer.Customer) []CustomerResponse {
	items := make([]CustomerResponse, 0, len(customers))
	for _, cust := range customers {
		items = append(items, CustomerResponse{
			CustomerID:    cust.CustomerID.String(),
			Name:          cust.FullName(),
			Age:           cust.Age,
			PhoneNumber:   cust.PhoneNumber,
			MonthlyIncome: cust.MonthlyIncome.StringFixed(2),
			ApprovedLimit: cust.ApprovedLimit.StringFixed(2),
			CurrentDebt:   cust.CurrentDebt.StringFixed(2),
		})
	}
	return items
}

type CustomerSummary struct {
	ID          string `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
	Age         int    `json:"age"`
}

func NewCustomerSummary(cust *customer.Customer) CustomerSummary {
	return CustomerSummary{
		ID:          cust.CustomerID.String(),
		FirstName:   cust.FirstName,
		LastName:    cust.LastName,
		PhoneNumber: cust.PhoneNumber,
		Age:         cust.Age,
	}
}

type ErrorDetail struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}
