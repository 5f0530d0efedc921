package sms

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount = errors.New("montant, durée et taux doivent être positifs")
	ErrZeroBase      = errors.New("valeur initiale nulle")
	ErrZeroEarnings  = errors.New("bénéfice par action nul")
)

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
)

type LoanResult struct {
	Principal      decimal.Decimal `json:"principal"`
	Months         int             `json:"months"`
	AnnualRate     decimal.Decimal `json:"annualRate"`
	MonthlyPayment decimal.Decimal `json:"monthlyPayment"`
	TotalPaid      decimal.Decimal `json:"totalPaid"`
	TotalInterest  decimal.Decimal `json:"totalInterest"`
}

// CalculateLoan returns the fixed monthly payment of an amortised loan.
// annualRatePct is a percentage (4.9 means 4.9%). Amounts are rounded to cents.
func CalculateLoan(principal, annualRatePct decimal.Decimal, years int) (LoanResult, error) {
	if !principal.IsPositive() || years <= 0 || annualRatePct.IsNegative() {
		return LoanResult{}, ErrInvalidAmount
	}
	months := years * 12
	n := decimal.NewFromInt(int64(months))

	var payment decimal.Decimal
	if annualRatePct.IsZero() {
		payment = principal.Div(n)
	} else {
		r := annualRatePct.Div(hundred).Div(twelve)
		growth := compound(decimal.NewFromInt(1).Add(r), months)
		// P * r * (1+r)^n / ((1+r)^n - 1)
		payment = principal.Mul(r).Mul(growth).Div(growth.Sub(decimal.NewFromInt(1)))
	}

	payment = payment.Round(2)
	total := payment.Mul(n)
	return LoanResult{
		Principal:      principal,
		Months:         months,
		AnnualRate:     annualRatePct,
		MonthlyPayment: payment,
		TotalPaid:      total.Round(2),
		TotalInterest:  total.Sub(principal).Round(2),
	}, nil
}

func compound(base decimal.Decimal, n int) decimal.Decimal {
	out := decimal.NewFromInt(1)
	for i := 0; i < n; i++ {
		out = out.Mul(base).Round(24)
	}
	return out
}

type VariationResult struct {
	From          decimal.Decimal `json:"from"`
	To            decimal.Decimal `json:"to"`
	Change        decimal.Decimal `json:"change"`
	ChangePercent decimal.Decimal `json:"changePercent"`
	Direction     string          `json:"direction"`
}

func CalculateVariation(from, to decimal.Decimal) (VariationResult, error) {
	if from.IsZero() {
		return VariationResult{}, ErrZeroBase
	}
	change := to.Sub(from)
	pct := change.Div(from.Abs()).Mul(hundred)

	direction := "stable"
	switch {
	case change.IsPositive():
		direction = "hausse"
	case change.IsNegative():
		direction = "baisse"
	}
	return VariationResult{
		From:          from,
		To:            to,
		Change:        change.Round(2),
		ChangePercent: pct.Round(2),
		Direction:     direction,
	}, nil
}

type PEResult struct {
	Price          decimal.Decimal `json:"price"`
	Earnings       decimal.Decimal `json:"earnings"`
	PE             decimal.Decimal `json:"pe"`
	Interpretation string          `json:"interpretation"`
}

func CalculatePE(price, earnings decimal.Decimal) (PEResult, error) {
	if earnings.IsZero() {
		return PEResult{}, ErrZeroEarnings
	}
	pe := price.Div(earnings).Round(2)

	var interp string
	switch {
	case pe.IsNegative():
		interp = "Bénéfices négatifs"
	case pe.LessThan(decimal.NewFromInt(15)):
		interp = "Valorisation faible"
	case pe.LessThanOrEqual(decimal.NewFromInt(25)):
		interp = "Valorisation normale"
	default:
		interp = "Valorisation élevée"
	}
	return PEResult{Price: price, Earnings: earnings, PE: pe, Interpretation: interp}, nil
}
