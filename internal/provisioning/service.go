package provisioning

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fioprotocol/fio-provisioner/internal/chain"
	"github.com/fioprotocol/fio-provisioner/internal/keys"
	"github.com/fioprotocol/fio-provisioner/internal/names"
	"github.com/sethvargo/go-retry"
)

type KeyGenerator interface {
	Generate() (keys.Keypair, error)
}

type NameGenerator interface {
	Generate(length int) string
}

// Recorder receives provisioning outcomes. Its errors are logged and otherwise ignored.
type Recorder interface {
	RecordProvisioned(ctx context.Context, creator string, result *Result) error
	RecordOrphan(ctx context.Context, orphan OrphanedAccount) error
}

type Service struct {
	cfg      Config
	client   chain.Client
	keyGen   KeyGenerator
	nameGen  NameGenerator
	recorder Recorder
}

func NewService(cfg Config, client chain.Client, keyGen KeyGenerator, nameGen NameGenerator, recorder Recorder) *Service {
	return &Service{
		cfg:      cfg.WithDefaults(),
		client:   client,
		keyGen:   keyGen,
		nameGen:  nameGen,
		recorder: recorder,
	}
}

func (s *Service) Config() Config {
	return s.cfg
}

// CreateAccount provisions a new account paid for by creator. Every attempt starts over with
// new keys and a new name, up to MaxAttempts times.
func (s *Service) CreateAccount(ctx context.Context, creator string) (*Result, error) {
	if err := names.Validate(creator); err != nil {
		return nil, &ValidationError{Field: "creator", Err: err}
	}

	var (
		n      int
		last   *AttemptError
		result *Result
	)

	backoff := retry.WithMaxRetries(uint64(s.cfg.MaxAttempts-1), retry.BackoffFunc(func() (time.Duration, bool) {
		return s.cfg.RetryDelay, false
	}))

	// go-retry stops between attempts once ctx is done. Errors from the chain are
	// always retried, including deadline errors from the node's HTTP client.
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		n++
		res, attemptErr := s.attempt(ctx, creator, n)
		if attemptErr == nil {
			result = res
			return nil
		}
		last = attemptErr

		slog.Warn("Account creation attempt failed",
			"attempt", n,
			"max_attempts", s.cfg.MaxAttempts,
			"stage", attemptErr.Stage,
			"account_name", attemptErr.AccountName,
			"orphaned", attemptErr.Orphaned,
			"error", attemptErr.Err)

		return retry.RetryableError(attemptErr)
	})

	if err == nil {
		slog.Info("Account provisioned",
			"account_name", result.AccountName,
			"creator", creator,
			"attempts", result.Attempts)
		s.recordProvisioned(context.WithoutCancel(ctx), creator, result)
		return result, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil && (last == nil || n < s.cfg.MaxAttempts || errors.Is(last.Err, ctxErr)) {
		return nil, fmt.Errorf("account creation stopped after %d attempts: %w", n, ctxErr)
	}

	exhausted := &ExhaustedRetriesError{Attempts: n, Last: last}
	slog.Error("Account creation failed",
		"creator", creator,
		"attempts", n,
		"error", exhausted)
	return nil, exhausted
}

// attempt runs one end-to-end try. ctx is only honoured up to submission; from then on the
// attempt runs to completion so that a committed account is confirmed and handed back.
func (s *Service) attempt(ctx context.Context, creator string, n int) (*Result, *AttemptError) {
	at := &attempt{number: n}

	fail := func(stage Stage, err error) *AttemptError {
		attemptErr := &AttemptError{
			Attempt:     n,
			Stage:       stage,
			AccountName: at.name,
			Orphaned:    stage.Orphans(err),
			Err:         err,
		}
		if attemptErr.Orphaned {
			s.recordOrphan(ctx, creator, at, attemptErr)
		}
		return attemptErr
	}

	owner, err := s.keyGen.Generate()
	if err != nil {
		return nil, fail(StageGenerateKeys, fmt.Errorf("owner key: %w", err))
	}
	active, err := s.keyGen.Generate()
	if err != nil {
		return nil, fail(StageGenerateKeys, fmt.Errorf("active key: %w", err))
	}
	if owner.PrivateKey == active.PrivateKey || owner.PublicKey == active.PublicKey {
		return nil, fail(StageGenerateKeys, ErrKeyCollision)
	}
	at.owner, at.active = owner, active

	name := s.nameGen.Generate(s.cfg.NameLength)
	if err := names.Validate(name); err != nil {
		return nil, fail(StageGenerateName, err)
	}
	at.name = name

	if err := ctx.Err(); err != nil {
		return nil, fail(StageSubmit, err)
	}
	inflight := context.WithoutCancel(ctx)

	slog.Debug("Submitting account creation",
		"attempt", n,
		"account_name", name,
		"creator", creator)

	receipt, err := s.client.SubmitTransaction(inflight, s.provisionActions(creator, at), s.cfg.txOptions())
	if err != nil {
		return nil, fail(StageSubmit, err)
	}
	at.transactionID = receipt.TransactionID

	account, err := s.client.QueryAccount(inflight, name)
	if err != nil {
		return nil, fail(StageConfirm, err)
	}

	if _, err := s.client.SubmitTransaction(inflight, []chain.Action{s.grantAction(at)}, s.cfg.txOptions(active.PrivateKey)); err != nil {
		return nil, fail(StageGrant, err)
	}

	return &Result{
		AccountName: name,
		Account:     account,
		Receipt:     receipt,
		OwnerKeys:   owner,
		ActiveKeys:  active,
		Attempts:    n,
	}, nil
}

func (s *Service) provisionActions(creator string, at *attempt) []chain.Action {
	contract := s.cfg.SystemContract
	return []chain.Action{
		chain.NewAccountAction(contract, creator, at.name, at.owner.PublicKey, at.active.PublicKey),
		chain.BuyRAMAction(contract, creator, at.name, s.cfg.RAMQuantity),
		chain.DelegateBWAction(contract, creator, at.name, s.cfg.StakeNetQuantity, s.cfg.StakeCPUQuantity, s.cfg.TransferStake),
	}
}

// grantAction lets the delegate act through the new account's active permission.
func (s *Service) grantAction(at *attempt) chain.Action {
	auth := chain.SingleKeyAuthority(at.active.PublicKey)
	auth.Accounts = []chain.PermissionLevelWeight{{
		Permission: chain.PermissionLevel{Actor: s.cfg.DelegateAccount, Permission: s.cfg.DelegatePermission},
		Weight:     1,
	}}
	return chain.UpdateAuthAction(s.cfg.SystemContract, at.name, chain.PermissionActive, chain.PermissionOwner, auth)
}

func (s *Service) recordProvisioned(ctx context.Context, creator string, result *Result) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.RecordProvisioned(ctx, creator, result); err != nil {
		slog.Error("Failed to record provisioned account", "account_name", result.AccountName, "error", err)
	}
}

func (s *Service) recordOrphan(ctx context.Context, creator string, at *attempt, attemptErr *AttemptError) {
	slog.Warn("Account may exist on chain without returned credentials",
		"account_name", at.name,
		"attempt", at.number,
		"stage", attemptErr.Stage,
		"transaction_id", at.transactionID)

	if s.recorder == nil {
		return
	}
	orphan := OrphanedAccount{
		AccountName:   at.name,
		Creator:       creator,
		Attempt:       at.number,
		Stage:         attemptErr.Stage,
		TransactionID: at.transactionID,
		Error:         attemptErr.Err.Error(),
		FailedAt:      time.Now().UTC(),
	}
	if err := s.recorder.RecordOrphan(context.WithoutCancel(ctx), orphan); err != nil {
		slog.Error("Failed to record orphaned account", "account_name", at.name, "error", err)
	}
}
