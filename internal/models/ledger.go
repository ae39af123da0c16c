package models

import "time"

type LedgerSource string

const (
	LedgerSourcePurchase LedgerSource = "purchase"
	LedgerSourceRestore  LedgerSource = "restore"
	LedgerSourceSignup   LedgerSource = "signup"
)

// LedgerEntry records one credit grant. EventID is unique per provider
// event, so replaying a purchase-completion callback grants nothing twice.
type LedgerEntry struct {
	ID        string
	UserID    string
	EventID   string
	ProductID string
	Credits   int
	Source    LedgerSource
	CreatedAt time.Time
}
