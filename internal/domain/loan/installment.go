package loan

import "github.com/shopspring/decimal"

var (
	one                = decimal.NewFromInt(1)
	monthlyRateDivisor = decimal.NewFromInt(1200)
)

// MonthlyInstallment computes the fixed periodic payment for a reducing
// balance loan:
//
//	r   = (rate / 12) / 100
//	emi = p * r * (1+r)^n / ((1+r)^n - 1)
//
// The zero-rate case degenerates to p/n. Results are rounded to two
// fractional digits with banker's rounding; all arithmetic stays in
// decimal space.
func MonthlyInstallment(principal, annualInterestRate decimal.Decimal, tenureMonths int) decimal.Decimal {
	if principal.Sign() <= 0 || tenureMonths <= 0 {
		return decimal.Zero
	}

	n := decimal.NewFromInt(int64(tenureMonths))
	if annualInterestRate.Sign() == 0 {
		return principal.Div(n).RoundBank(2)
	}

	r := annualInterestRate.Div(monthlyRateDivisor)
	power := one.Add(r).Pow(n)
	denominator := power.Sub(one)
	if denominator.Sign() == 0 {
		return principal.Div(n).RoundBank(2)
	}

	return principal.Mul(r).Mul(power).Div(denominator).RoundBank(2)
}
