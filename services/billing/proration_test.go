package billing

import (
	"testing"
	"time"

	"pcohire/models"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func TestCalculateProrationActiveScenario(t *testing.T) {
	p := CalculateProration(ProrationInput{
		OldWeeklyRate:  280,
		NewWeeklyRate:  350,
		AdjustmentType: models.AdjustmentProrated,
		ActualPaid:     280,
		BookingStatus:  models.BookingActive,
		StartDate:      testNow.Add(-72 * time.Hour),
		Now:            testNow,
	})

	if p.PaidDays != 7 {
		t.Fatalf("PaidDays = %d, want 7", p.PaidDays)
	}
	if p.DaysUsed != 3 {
		t.Fatalf("DaysUsed = %d, want 3", p.DaysUsed)
	}
	if p.RemainingDays != 4 {
		t.Fatalf("RemainingDays = %d, want 4", p.RemainingDays)
	}
	if p.Amount != 40.00 {
		t.Fatalf("Amount = %v, want 40.00", p.Amount)
	}
	if p.Reason == "" {
		t.Fatal("expected a reason")
	}
}

func TestCalculateProrationImmediateIsRateDifference(t *testing.T) {
	cases := []struct{ oldRate, newRate float64 }{
		{280, 350},
		{350, 280},
		{199.99, 250.5},
		{300, 300},
	}
	for _, tc := range cases {
		p := CalculateProration(ProrationInput{
			OldWeeklyRate:  tc.oldRate,
			NewWeeklyRate:  tc.newRate,
			AdjustmentType: models.AdjustmentImmediate,
			ActualPaid:     tc.oldRate * 2,
			BookingStatus:  models.BookingActive,
			StartDate:      testNow.Add(-5 * 24 * time.Hour),
			Now:            testNow,
		})
		want := RoundCurrency(tc.newRate - tc.oldRate)
		if p.Amount != want {
			t.Errorf("immediate %v -> %v: Amount = %v, want %v", tc.oldRate, tc.newRate, p.Amount, want)
		}
	}
}

func TestCalculateProrationNextCycleIsZero(t *testing.T) {
	for _, newRate := range []float64{0, 100, 280, 999.99} {
		p := CalculateProration(ProrationInput{
			OldWeeklyRate:  280,
			NewWeeklyRate:  newRate,
			AdjustmentType: models.AdjustmentNextCycle,
			ActualPaid:     560,
			BookingStatus:  models.BookingConfirmed,
			Now:            testNow,
		})
		if p.Amount != 0 {
			t.Errorf("next_cycle to %v: Amount = %v, want 0", newRate, p.Amount)
		}
	}
}

func TestCalculateProrationNoRemainingDays(t *testing.T) {
	cases := []struct {
		name string
		in   ProrationInput
	}{
		{
			name: "all paid days used",
			in: ProrationInput{
				OldWeeklyRate: 280, NewWeeklyRate: 350, ActualPaid: 280,
				BookingStatus: models.BookingActive,
				StartDate:     testNow.Add(-10 * 24 * time.Hour), Now: testNow,
			},
		},
		{
			name: "nothing paid yet",
			in: ProrationInput{
				OldWeeklyRate: 280, NewWeeklyRate: 350, ActualPaid: 0,
				BookingStatus: models.BookingPartnerAccepted, Now: testNow,
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := CalculateProration(tc.in)
			if p.RemainingDays != 0 {
				t.Fatalf("RemainingDays = %d, want 0", p.RemainingDays)
			}
			if p.Amount != 0 {
				t.Fatalf("Amount = %v, want 0", p.Amount)
			}
			if p.Type != models.AdjustmentProrated {
				t.Fatalf("Type = %q, want prorated default", p.Type)
			}
		})
	}
}

func TestCalculateProrationNotYetActiveUsesAllPaidDays(t *testing.T) {
	p := CalculateProration(ProrationInput{
		OldWeeklyRate:  280,
		NewWeeklyRate:  210,
		AdjustmentType: models.AdjustmentProrated,
		ActualPaid:     300,
		BookingStatus:  models.BookingConfirmed,
		StartDate:      testNow.Add(48 * time.Hour),
		Now:            testNow,
	})
	// 300 paid at 280/week rounds up to two started weeks.
	if p.RemainingDays != 14 || p.DaysUsed != 0 {
		t.Fatalf("RemainingDays = %d, DaysUsed = %d, want 14 and 0", p.RemainingDays, p.DaysUsed)
	}
	if p.Amount != -140 {
		t.Fatalf("Amount = %v, want -140", p.Amount)
	}
}

func TestCalculateProrationZeroOldRate(t *testing.T) {
	for _, adj := range []string{models.AdjustmentProrated, models.AdjustmentImmediate, models.AdjustmentNextCycle} {
		p := CalculateProration(ProrationInput{
			OldWeeklyRate:  0,
			NewWeeklyRate:  350,
			AdjustmentType: adj,
			ActualPaid:     700,
			BookingStatus:  models.BookingActive,
			StartDate:      testNow.Add(-24 * time.Hour),
			Now:            testNow,
		})
		if p.Amount != 0 {
			t.Errorf("%s with no prior rate: Amount = %v, want 0", adj, p.Amount)
		}
		if p.RemainingDays != 0 || p.PaidDays != 0 {
			t.Errorf("%s with no prior rate computed days: %+v", adj, p)
		}
	}
}

func TestRoundCurrency(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{12.345, 12.35},
		{1.005, 1.01},
		{-12.345, -12.35},
		{40, 40},
		{0.004, 0},
		{10.0 / 3.0, 3.33},
		{2.675, 2.68},
	}
	for _, tc := range cases {
		if got := RoundCurrency(tc.in); got != tc.want {
			t.Errorf("RoundCurrency(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestProratedAmountIsRounded(t *testing.T) {
	p := CalculateProration(ProrationInput{
		OldWeeklyRate:  280,
		NewWeeklyRate:  300,
		AdjustmentType: models.AdjustmentProrated,
		ActualPaid:     280,
		BookingStatus:  models.BookingActive,
		StartDate:      testNow.Add(-48 * time.Hour),
		Now:            testNow,
	})
	// 20/7 * 5 = 14.2857...
	if p.Amount != 14.29 {
		t.Fatalf("Amount = %v, want 14.29", p.Amount)
	}
}

func TestNormalizeAdjustmentType(t *testing.T) {
	if got, ok := NormalizeAdjustmentType(""); !ok || got != models.AdjustmentProrated {
		t.Fatalf("empty type = %q, %v", got, ok)
	}
	if _, ok := NormalizeAdjustmentType("weekly"); ok {
		t.Fatal("unknown type accepted")
	}
}
