package billing

import (
	"fmt"
	"math"
	"time"

	"pcohire/models"
)

const daysPerWeek = 7

// ProrationInput is everything the calculator needs about one rate change.
type ProrationInput struct {
	OldWeeklyRate  float64
	NewWeeklyRate  float64
	AdjustmentType string
	// ActualPaid is the settled rent for the booking so far.
	ActualPaid    float64
	BookingStatus string
	StartDate     time.Time
	Now           time.Time
}

// Proration is the computed one-time adjustment. Amount > 0 is a charge to the
// driver, Amount < 0 a refund, zero means nothing to settle.
type Proration struct {
	Amount         float64 `json:"amount"`
	Reason         string  `json:"reason"`
	Type           string  `json:"type"`
	RateDifference float64 `json:"rate_difference"`
	DaysUsed       int     `json:"days_used"`
	PaidDays       int     `json:"paid_days"`
	RemainingDays  int     `json:"remaining_days"`
}

// NormalizeAdjustmentType defaults an empty type to prorated and rejects unknown ones.
func NormalizeAdjustmentType(t string) (string, bool) {
	switch t {
	case "":
		return models.AdjustmentProrated, true
	case models.AdjustmentProrated, models.AdjustmentImmediate, models.AdjustmentNextCycle:
		return t, true
	default:
		return "", false
	}
}

// CalculateProration computes the adjustment for moving a booking from the old
// weekly rate to the new one.
func CalculateProration(in ProrationInput) Proration {
	adjType, ok := NormalizeAdjustmentType(in.AdjustmentType)
	if !ok {
		adjType = models.AdjustmentProrated
	}

	p := Proration{
		Type:           adjType,
		RateDifference: RoundCurrency(in.NewWeeklyRate - in.OldWeeklyRate),
	}

	if in.OldWeeklyRate <= 0 {
		p.Reason = "No prior weekly rate on booking, no adjustment applied"
		return p
	}

	p.PaidDays = paidDays(in.ActualPaid, in.OldWeeklyRate)
	if in.BookingStatus == models.BookingActive {
		p.DaysUsed = daysUsed(in.StartDate, in.Now)
		p.RemainingDays = max(0, p.PaidDays-p.DaysUsed)
	} else {
		p.RemainingDays = p.PaidDays
	}

	diff := in.NewWeeklyRate - in.OldWeeklyRate
	switch adjType {
	case models.AdjustmentImmediate:
		p.Amount = RoundCurrency(diff)
		p.Reason = fmt.Sprintf("Immediate adjustment of one week's rate difference (%.2f)", diff)
	case models.AdjustmentNextCycle:
		p.Amount = 0
		p.Reason = fmt.Sprintf("Weekly rate changes by %.2f from the next billing cycle", diff)
	default:
		p.Amount = RoundCurrency(diff * float64(p.RemainingDays) / daysPerWeek)
		p.Reason = fmt.Sprintf("Prorated adjustment of %.2f per week over %d remaining paid days", diff, p.RemainingDays)
	}
	if p.Amount == 0 {
		// Avoid reporting -0.
		p.Amount = 0
	}
	return p
}

// paidDays converts settled rent into whole paid weeks, expressed in days.
func paidDays(actualPaid, weeklyRate float64) int {
	if actualPaid <= 0 || weeklyRate <= 0 {
		return 0
	}
	weeks := math.Ceil(roundTo(actualPaid/weeklyRate, 6))
	return int(weeks) * daysPerWeek
}

// daysUsed counts started days since the booking began. Future starts count as zero.
func daysUsed(start, now time.Time) int {
	if start.IsZero() || !now.After(start) {
		return 0
	}
	return int(math.Ceil(now.Sub(start).Hours() / 24))
}

// RoundCurrency rounds to cents, halves away from zero. The cent value is
// snapped to 6 decimals first so binary artefacts such as 1234.4999999 still
// round up.
func RoundCurrency(x float64) float64 {
	return math.Round(roundTo(x*100, 6)) / 100
}

func roundTo(x float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(x*pow) / pow
}
