package billing

import (
	"testing"
	"time"

	"pcohire/models"
)

func TestNewAdjustmentJournalMirrorsLegs(t *testing.T) {
	for _, amount := range []float64{40, -25.5} {
		instr := models.PaymentInstruction{
			ID:        "pi-1",
			BookingID: "b-1",
			DriverID:  "d-1",
			PartnerID: "p-1",
			Amount:    amount,
			Currency:  "gbp",
			Reason:    "swap",
			Snapshot:  models.AdjustmentSnapshot{NewVehicleID: "v-2", OldWeeklyRate: 280, NewWeeklyRate: 350},
			CreatedAt: time.Now(),
		}

		entries := NewAdjustmentJournal(instr)
		if len(entries) != 2 {
			t.Fatalf("got %d legs, want 2", len(entries))
		}
		partner, driver := entries[0], entries[1]

		if partner.AccountID != "p-1" || partner.AccountType != models.AccountPartner || partner.Type != models.EntryIncome {
			t.Errorf("partner leg wrong: %+v", partner)
		}
		if driver.AccountID != "d-1" || driver.AccountType != models.AccountDriver || driver.Type != models.EntryExpense {
			t.Errorf("driver leg wrong: %+v", driver)
		}
		if partner.Amount != amount || driver.Amount != amount {
			t.Errorf("legs must carry the same signed amount %v: %v / %v", amount, partner.Amount, driver.Amount)
		}
		if partner.Snapshot != driver.Snapshot {
			t.Error("legs must share the snapshot")
		}
		if partner.Side == driver.Side {
			t.Errorf("legs must sit on opposite sides, both %s", partner.Side)
		}
		if partner.PaymentInstructionID != "pi-1" || driver.PaymentInstructionID != "pi-1" {
			t.Error("legs must reference the instruction")
		}
		if !JournalBalanced(entries) {
			t.Errorf("journal for %v not balanced", amount)
		}
	}
}

func TestJournalBalancedRejectsMixedJournals(t *testing.T) {
	entries := NewAdjustmentJournal(models.PaymentInstruction{Amount: 10, PartnerID: "p", DriverID: "d"})
	entries[1].JournalID = "other"
	if JournalBalanced(entries) {
		t.Fatal("legs from different journals reported balanced")
	}
	if JournalBalanced(nil) {
		t.Fatal("empty journal reported balanced")
	}
}
