package chain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	// ErrOutcomeUnknown marks a push that failed in transport. The node may still have
	// applied the transaction.
	ErrOutcomeUnknown = errors.New("transaction outcome unknown")
)

// Error is a structured rejection returned by a chain node.
type Error struct {
	HTTPCode int      `json:"http_code,omitempty"`
	Code     int      `json:"code"`
	Name     string   `json:"name"`
	Message  string   `json:"message"`
	Details  []string `json:"details,omitempty"`
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "chain error %d", e.Code)
	if e.Name != "" {
		fmt.Fprintf(&b, " (%s)", e.Name)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if len(e.Details) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(e.Details, "; "))
	}
	return b.String()
}

// AsError extracts the structured chain error from err, if any.
func AsError(err error) (*Error, bool) {
	var chainErr *Error
	if errors.As(err, &chainErr) {
		return chainErr, true
	}
	return nil, false
}
