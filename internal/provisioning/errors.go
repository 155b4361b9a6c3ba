package provisioning

import (
	"errors"
	"fmt"

	"github.com/fioprotocol/fio-provisioner/internal/chain"
)

var ErrKeyCollision = errors.New("owner and active keys are identical")

// ValidationError rejects a request before any chain call is made.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// AttemptError is the failure of one end-to-end attempt.
type AttemptError struct {
	Attempt     int
	Stage       Stage
	AccountName string
	// Orphaned is set when the account may exist on chain without its keys being returned.
	Orphaned bool
	Err      error
}

func (e *AttemptError) Error() string {
	if e.AccountName == "" {
		return fmt.Sprintf("attempt %d failed at %s: %v", e.Attempt, e.Stage, e.Err)
	}
	return fmt.Sprintf("attempt %d failed at %s for %s: %v", e.Attempt, e.Stage, e.AccountName, e.Err)
}

func (e *AttemptError) Unwrap() error {
	return e.Err
}

// ExhaustedRetriesError is returned once every attempt has failed.
type ExhaustedRetriesError struct {
	Attempts int
	Last     *AttemptError
}

func (e *ExhaustedRetriesError) Error() string {
	return fmt.Sprintf("account creation failed after %d attempts: %v", e.Attempts, e.Last)
}

// Unwrap returns the last attempt's underlying error.
func (e *ExhaustedRetriesError) Unwrap() error {
	if e.Last == nil {
		return nil
	}
	return e.Last.Err
}

// Details returns the structured chain rejection of the last attempt, if there was one.
func (e *ExhaustedRetriesError) Details() *chain.Error {
	if e.Last == nil {
		return nil
	}
	chainErr, _ := chain.AsError(e.Last.Err)
	return chainErr
}
