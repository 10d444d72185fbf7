package models

import "time"

// Ledger account types.
const (
	AccountPartner = "partner"
	AccountDriver  = "driver"
)

// Ledger entry types and sides.
const (
	EntryIncome  = "income"
	EntryExpense = "expense"

	SideDebit  = "debit"
	SideCredit = "credit"
)

// LedgerEntry is one leg of an adjustment journal, persisted in the transactions collection.
// Both legs of a journal share JournalID and Amount.
type LedgerEntry struct {
	ID                   string             `bson:"id" json:"id"`
	JournalID            string             `bson:"journal_id" json:"journal_id"`
	BookingID            string             `bson:"booking_id" json:"booking_id"`
	PaymentInstructionID string             `bson:"payment_instruction_id" json:"payment_instruction_id"`
	AccountID            string             `bson:"account_id" json:"account_id"`
	AccountType          string             `bson:"account_type" json:"account_type"`
	Type                 string             `bson:"type" json:"type"`
	Side                 string             `bson:"side" json:"side"`
	Amount               float64            `bson:"amount" json:"amount"`
	Currency             string             `bson:"currency" json:"currency"`
	Category             string             `bson:"category" json:"category"`
	Description          string             `bson:"description" json:"description"`
	Snapshot             AdjustmentSnapshot `bson:"snapshot" json:"snapshot"`
	CreatedAt            time.Time          `bson:"created_at" json:"created_at"`
}
