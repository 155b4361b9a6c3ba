package ledger

import (
	"time"
)

type ProvisionedAccount struct {
	ID              string
	AccountName     string
	Creator         string
	OwnerPublicKey  string
	ActivePublicKey string
	TransactionID   string
	Attempts        int
	CreatedAt       time.Time
}

// OrphanedAccount is an account that may exist on chain but whose keys were discarded.
type OrphanedAccount struct {
	ID            string
	AccountName   string
	Creator       string
	Attempt       int
	Stage         string
	Error         string
	TransactionID string
	CreatedAt     time.Time
}
