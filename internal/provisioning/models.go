package provisioning

import (
	"errors"
	"time"

	"github.com/fioprotocol/fio-provisioner/internal/chain"
	"github.com/fioprotocol/fio-provisioner/internal/keys"
)

// Stage is the step of an attempt that was running when it ended.
type Stage string

const (
	StageGenerateKeys Stage = "generate_keys"
	StageGenerateName Stage = "generate_name"
	StageSubmit       Stage = "submit"
	StageConfirm      Stage = "confirm"
	StageGrant        Stage = "grant"
	StageSuccess      Stage = "success"
)

func (s Stage) String() string {
	return string(s)
}

// Orphans reports whether failing at s with err may leave an account on chain.
func (s Stage) Orphans(err error) bool {
	switch s {
	case StageConfirm, StageGrant:
		return true
	case StageSubmit:
		return errors.Is(err, chain.ErrOutcomeUnknown)
	default:
		return false
	}
}

// Result describes a provisioned account. Private keys are only ever held here.
type Result struct {
	AccountName string             `json:"account_name" yaml:"account_name"`
	Account     *chain.AccountInfo `json:"account,omitempty" yaml:"account,omitempty"`
	Receipt     *chain.Receipt     `json:"receipt,omitempty" yaml:"receipt,omitempty"`
	OwnerKeys   keys.Keypair       `json:"owner_keys" yaml:"owner_keys"`
	ActiveKeys  keys.Keypair       `json:"active_keys" yaml:"active_keys"`
	Attempts    int                `json:"attempts" yaml:"attempts"`
}

// OrphanedAccount is an account the chain may hold after a failed attempt.
type OrphanedAccount struct {
	AccountName   string
	Creator       string
	Attempt       int
	Stage         Stage
	TransactionID string
	Error         string
	FailedAt      time.Time
}

type attempt struct {
	number        int
	name          string
	owner         keys.Keypair
	active        keys.Keypair
	transactionID string
}
