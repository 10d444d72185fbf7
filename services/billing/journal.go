package billing

import (
	"fmt"
	"math"

	"pcohire/models"

	"github.com/google/uuid"
)

const categoryVehicleChange = "vehicle_change_adjustment"

// NewAdjustmentJournal produces the two legs for a settled adjustment: income on
// the partner account and expense on the driver account. Both legs carry the
// instruction's signed amount and snapshot. The sides flip with the sign so debits
// always equal credits.
func NewAdjustmentJournal(instr models.PaymentInstruction) []models.LedgerEntry {
	journalID := uuid.New().String()

	partnerSide, driverSide := models.SideCredit, models.SideDebit
	if instr.Amount < 0 {
		partnerSide, driverSide = models.SideDebit, models.SideCredit
	}

	verb := "charge"
	if instr.Amount < 0 {
		verb = "refund"
	}
	description := fmt.Sprintf("Vehicle change %s of %.2f %s: %s", verb, math.Abs(instr.Amount), instr.Currency, instr.Reason)

	leg := func(accountID, accountType, entryType, side string) models.LedgerEntry {
		return models.LedgerEntry{
			ID:                   uuid.New().String(),
			JournalID:            journalID,
			BookingID:            instr.BookingID,
			PaymentInstructionID: instr.ID,
			AccountID:            accountID,
			AccountType:          accountType,
			Type:                 entryType,
			Side:                 side,
			Amount:               instr.Amount,
			Currency:             instr.Currency,
			Category:             categoryVehicleChange,
			Description:          description,
			Snapshot:             instr.Snapshot,
			CreatedAt:            instr.CreatedAt,
		}
	}

	return []models.LedgerEntry{
		leg(instr.PartnerID, models.AccountPartner, models.EntryIncome, partnerSide),
		leg(instr.DriverID, models.AccountDriver, models.EntryExpense, driverSide),
	}
}

// JournalBalanced checks that a journal's debits equal its credits and that
// every leg shares one journal id.
func JournalBalanced(entries []models.LedgerEntry) bool {
	if len(entries) == 0 {
		return false
	}
	var debit, credit float64
	for _, e := range entries {
		if e.JournalID != entries[0].JournalID {
			return false
		}
		switch e.Side {
		case models.SideDebit:
			debit += math.Abs(e.Amount)
		case models.SideCredit:
			credit += math.Abs(e.Amount)
		default:
			return false
		}
	}
	return RoundCurrency(debit) == RoundCurrency(credit)
}
