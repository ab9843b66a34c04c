package domain

import "math"

// CreditsPerDollar is the fixed conversion rate between the platform's
// internal credit unit and USD.
const CreditsPerDollar = 100.0

// creditPrecision is the number of decimal places kept for credit and
// currency amounts. All monetary computations round here before storing.
const creditPrecision = 4

// RoundCredits rounds a credit or currency amount half-up to 4 decimal places.
func RoundCredits(amount float64) float64 {
	factor := math.Pow10(creditPrecision)
	return math.Round(amount*factor) / factor
}

// DollarsToCredits converts a USD amount into credits.
func DollarsToCredits(dollars float64) float64 {
	return RoundCredits(dollars * CreditsPerDollar)
}

// CreditsToDollars converts a credit amount into USD.
func CreditsToDollars(credits float64) float64 {
	return RoundCredits(credits / CreditsPerDollar)
}
