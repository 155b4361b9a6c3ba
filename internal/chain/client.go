package chain

import (
	"context"
)

// Client is the subset of chain RPC the provisioner depends on.
type Client interface {
	// SubmitTransaction signs and pushes actions as one atomic transaction.
	// Rejections by the node are returned as *Error. A push whose outcome could not be
	// observed wraps ErrOutcomeUnknown.
	SubmitTransaction(ctx context.Context, actions []Action, opts TxOptions) (*Receipt, error)
	// QueryAccount returns ErrAccountNotFound when name does not exist.
	QueryAccount(ctx context.Context, name string) (*AccountInfo, error)
}

// TxOptions are passed through to the transaction builder.
type TxOptions struct {
	// HeadBlockLag picks the reference block this many blocks behind head.
	HeadBlockLag int
	// ExpireSeconds is the transaction expiration horizon.
	ExpireSeconds int
	// SignerKeys replaces the client's default signing key when non-empty.
	SignerKeys []string
}

type Receipt struct {
	TransactionID string `json:"transaction_id"`
	BlockNum      uint32 `json:"block_num,omitempty"`
}
