package loan

import (
	"time"

	"credit-engine/internal/domain/customer"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	minRateMidBand = 12
	minRateLowBand = 16
)

var (
	hundred = decimal.NewFromInt(100)
	two     = decimal.NewFromInt(2)

	weightOnTime    = decimal.NewFromFloat(0.40)
	weightLoanCount = decimal.NewFromFloat(0.15)
	weightActivity  = decimal.NewFromFloat(0.20)
	weightVolume    = decimal.NewFromFloat(0.25)

	loanCountPenalty = decimal.NewFromInt(15)
	activityPenalty  = decimal.NewFromInt(25)
)

// CreditScore computes an integer score in [0, 100] from a customer's loan
// history and current exposure. Four sub-scores, each normalized to 0-100,
// are combined by fixed weights:
//
//   - on-time payment ratio across all historical loans (0.40)
//   - inverse loan count (0.15)
//   - borrowing activity in the current calendar year (0.20)
//   - historical volume relative to the approved limit (0.25)
//
// A customer whose outstanding debt already exceeds the approved limit
// scores exactly zero; the weighted composite is never consulted.
// A customer with no history scores every component at its best value.
func CreditScore(history []*Loan, currentDebt, approvedLimit decimal.Decimal, now time.Time) int {
	if currentDebt.GreaterThan(approvedLimit) {
		return 0
	}
	if len(history) == 0 {
		return 100
	}

	var (
		totalPaidOnTime int64
		totalTenure     int64
		startedThisYear int64
		totalVolume     = decimal.Zero
	)
	for _, l := range history {
		totalPaidOnTime += int64(l.EMIsPaidOnTime)
		totalTenure += int64(l.TenureMonths)
		if l.StartDate.Year() == now.Year() {
			startedThisYear++
		}
		totalVolume = totalVolume.Add(l.Amount)
	}

	onTime := hundred
	if totalTenure > 0 {
		onTime = clampSubScore(hundred.
			Mul(decimal.NewFromInt(totalPaidOnTime)).
			Div(decimal.NewFromInt(totalTenure)))
	}

	loanCount := clampSubScore(hundred.
		Sub(loanCountPenalty.Mul(decimal.NewFromInt(int64(len(history))))))

	activity := clampSubScore(hundred.
		Sub(activityPenalty.Mul(decimal.NewFromInt(startedThisYear))))

	volume := decimal.Zero
	if approvedLimit.Sign() > 0 {
		volume = clampSubScore(hundred.
			Mul(one.Sub(totalVolume.Div(approvedLimit))))
	}

	composite := weightOnTime.Mul(onTime).
		Add(weightLoanCount.Mul(loanCount)).
		Add(weightActivity.Mul(activity)).
		Add(weightVolume.Mul(volume)).
		Round(0)

	score := int(composite.IntPart())
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func clampSubScore(d decimal.Decimal) decimal.Decimal {
	if d.Sign() < 0 {
		return decimal.Zero
	}
	if d.GreaterThan(hundred) {
		return hundred
	}
	return d
}

// Evaluation is the outcome of an eligibility check for a proposed loan.
type Evaluation struct {
	CustomerID         uuid.UUID
	Score              int
	Approved           bool
	RequestedRate      decimal.Decimal
	CorrectedRate      decimal.Decimal
	TenureMonths       int
	MonthlyInstallment decimal.Decimal
	Message            string
}

// EvaluateLoan runs the full eligibility decision for a proposed loan against
// a customer's record and loan history. Hard affordability gates are checked
// before any scoring; the score bands then map to minimum rate slabs, with
// an under-priced request corrected upward rather than rejected.
func EvaluateLoan(cust *customer.Customer, history []*Loan, amount, requestedRate decimal.Decimal, tenureMonths int, now time.Time) Evaluation {
	ev := Evaluation{
		CustomerID:         cust.CustomerID,
		RequestedRate:      requestedRate,
		CorrectedRate:      requestedRate,
		TenureMonths:       tenureMonths,
		MonthlyInstallment: decimal.Zero,
	}

	halfIncome := cust.MonthlyIncome.Div(two)

	proposedInstallment := MonthlyInstallment(amount, requestedRate, tenureMonths)
	if proposedInstallment.GreaterThan(halfIncome) {
		ev.Message = "Proposed monthly installment exceeds 50% of monthly income."
		return ev
	}

	activeInstallments := decimal.Zero
	for _, l := range history {
		if l.IsActive() {
			activeInstallments = activeInstallments.Add(l.MonthlyInstallment)
		}
	}
	if activeInstallments.Add(proposedInstallment).GreaterThan(halfIncome) {
		ev.Message = "Sum of all current installments exceeds 50% of monthly income."
		return ev
	}

	ev.Score = CreditScore(history, cust.CurrentDebt, cust.ApprovedLimit, now)

	switch {
	case ev.Score > 50:
		ev.Approved = true
	case ev.Score > 30:
		if requestedRate.LessThan(decimal.NewFromInt(minRateMidBand)) {
			ev.CorrectedRate = decimal.NewFromInt(minRateMidBand)
		}
		ev.Approved = true
	case ev.Score > 10:
		if requestedRate.LessThan(decimal.NewFromInt(minRateLowBand)) {
			ev.CorrectedRate = decimal.NewFromInt(minRateLowBand)
		}
		ev.Approved = true
	default:
		ev.Message = "Credit score too low for loan approval."
		return ev
	}

	if amount.GreaterThan(cust.ApprovedLimit) {
		ev.Approved = false
		ev.Message = "Requested loan amount exceeds customer's approved limit."
		return ev
	}

	ev.MonthlyInstallment = MonthlyInstallment(amount, ev.CorrectedRate, tenureMonths)
	if activeInstallments.Add(ev.MonthlyInstallment).GreaterThan(halfIncome) {
		ev.Approved = false
		ev.MonthlyInstallment = decimal.Zero
		ev.Message = "Sum of all current installments exceeds 50% of monthly income at the corrected rate."
		return ev
	}

	return ev
}
