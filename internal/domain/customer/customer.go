package customer

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	limitMultiplier = decimal.NewFromInt(36)
	limitGranule    = decimal.NewFromInt(100_000)
)

type Customer struct {
	CustomerID    uuid.UUID       `json:"customerId"`
	FirstName     string          `json:"firstName"`
	LastName      string          `json:"lastName"`
	Age           int             `json:"age"`
	PhoneNumber   string          `json:"phoneNumber"`
	MonthlyIncome decimal.Decimal `json:"monthlyIncome"`
	ApprovedLimit decimal.Decimal `json:"approvedLimit"`
	CurrentDebt   decimal.Decimal `json:"currentDebt"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

func NewCustomer(firstName, lastName string, age int, phoneNumber string, monthlyIncome decimal.Decimal) *Customer {
	return &Customer{
		FirstName:     firstName,
		LastName:      lastName,
		Age:           age,
		PhoneNumber:   phoneNumber,
		MonthlyIncome: monthlyIncome,
		ApprovedLimit: ApprovedLimitFor(monthlyIncome),
		CurrentDebt:   decimal.Zero,
	}
}

// ApprovedLimitFor fixes the credit limit at registration time: 36x the
// monthly income, rounded to the nearest multiple of 100,000. The limit is
// never recomputed afterwards.
func ApprovedLimitFor(monthlyIncome decimal.Decimal) decimal.Decimal {
	raw := limitMultiplier.Mul(monthlyIncome)
	if raw.Sign() <= 0 {
		return decimal.Zero
	}
	return raw.Div(limitGranule).Round(0).Mul(limitGranule)
}

func (c *Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}

func (c *Customer) AddDebt(amount decimal.Decimal) {
	c.CurrentDebt = c.CurrentDebt.Add(amount)
	c.UpdatedAt = time.Now()
}

// OverLimit reports whether the customer's outstanding debt already exceeds
// the approved limit. The scoring engine forces the score to zero in that
// case.
func (c *Customer) OverLimit() bool {
	return c.CurrentDebt.GreaterThan(c.ApprovedLimit)
}
