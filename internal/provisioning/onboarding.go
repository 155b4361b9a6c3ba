package provisioning

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fioprotocol/fio-provisioner/internal/chain"
	"github.com/fioprotocol/fio-provisioner/internal/names"
)

const (
	OnboardTransfer = "transfer"
	OnboardRegister = "register_name"
)

// Onboarding describes follow-up steps for a provisioned account. Empty fields are skipped.
type Onboarding struct {
	// Quantity is sent from the creator to the new account. Empty uses Config.InitialTransfer.
	Quantity string
	// FIOName is a FIO domain or address registered by the new account.
	FIOName string
}

// Validate checks the onboarding input so a bad request fails before an account is created.
func (o Onboarding) Validate() error {
	if o.FIOName != "" {
		if err := names.ValidateFIOName(o.FIOName); err != nil {
			return &ValidationError{Field: "fio_name", Err: err}
		}
	}
	return nil
}

type OnboardingResult struct {
	TransferTransactionID string `json:"transfer_transaction_id,omitempty" yaml:"transfer_transaction_id,omitempty"`
	RegisterTransactionID string `json:"register_transaction_id,omitempty" yaml:"register_transaction_id,omitempty"`
}

// OnboardingError is a failed onboarding step. The account itself stays provisioned.
type OnboardingError struct {
	Step        string
	AccountName string
	Err         error
}

func (e *OnboardingError) Error() string {
	return fmt.Sprintf("onboarding step %s failed for %s: %v", e.Step, e.AccountName, e.Err)
}

func (e *OnboardingError) Unwrap() error {
	return e.Err
}

// Onboard funds result's account from creator and then registers a FIO name with the
// account's active key. Steps are not retried: a transfer whose outcome is unknown must
// not be sent twice. The returned OnboardingResult holds the steps that completed.
func (s *Service) Onboard(ctx context.Context, creator string, result *Result, ob Onboarding) (*OnboardingResult, error) {
	if err := ob.Validate(); err != nil {
		return nil, err
	}

	quantity := ob.Quantity
	if quantity == "" {
		quantity = s.cfg.InitialTransfer
	}
	out := &OnboardingResult{}

	if quantity != "" {
		action := chain.TransferAction(s.cfg.TokenContract, creator, result.AccountName, quantity, s.cfg.TransferMemo)
		receipt, err := s.client.SubmitTransaction(ctx, []chain.Action{action}, s.cfg.txOptions())
		if err != nil {
			return out, &OnboardingError{Step: OnboardTransfer, AccountName: result.AccountName, Err: err}
		}
		out.TransferTransactionID = receipt.TransactionID
		slog.Info("Account funded",
			"account_name", result.AccountName,
			"quantity", quantity,
			"transaction_id", receipt.TransactionID)
	}

	if ob.FIOName != "" {
		action := chain.RegisterNameAction(s.cfg.NameContract, ob.FIOName, result.AccountName)
		receipt, err := s.client.SubmitTransaction(ctx, []chain.Action{action}, s.cfg.txOptions(result.ActiveKeys.PrivateKey))
		if err != nil {
			return out, &OnboardingError{Step: OnboardRegister, AccountName: result.AccountName, Err: err}
		}
		out.RegisterTransactionID = receipt.TransactionID
		slog.Info("FIO name registered",
			"account_name", result.AccountName,
			"fio_name", ob.FIOName,
			"transaction_id", receipt.TransactionID)
	}

	return out, nil
}
