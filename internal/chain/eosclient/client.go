package eosclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	eos "github.com/eoscanada/eos-go"
	"github.com/eoscanada/eos-go/ecc"
	"github.com/fioprotocol/fio-provisioner/internal/chain"
	"github.com/fioprotocol/fio-provisioner/internal/keys"
)

const defaultTimeout = 30 * time.Second

// Client implements chain.Client on top of eos-go.
type Client struct {
	url        string
	keyPrefix  string
	httpClient *http.Client
	api        *eos.API
}

// New connects to the node at cfg.URL. It sets eos-go's process-wide legacy key prefix to
// cfg.KeyPrefix so keys returned by a FIO node parse; all clients in a process must share
// one prefix.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("chain url is required")
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = keys.DefaultPrefix
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	ecc.PublicKeyPrefixCompat = cfg.KeyPrefix

	c := &Client{
		url:        strings.TrimRight(cfg.URL, "/"),
		keyPrefix:  cfg.KeyPrefix,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}

	var signers []string
	if cfg.CreatorKey != "" {
		signers = append(signers, cfg.CreatorKey)
	} else {
		slog.Warn("No creator key configured, transactions will fail to sign")
	}

	api, err := c.newAPI(ctx, signers)
	if err != nil {
		return nil, err
	}
	c.api = api
	return c, nil
}

func (c *Client) newAPI(ctx context.Context, wifs []string) (*eos.API, error) {
	api := eos.New(c.url)
	api.HttpClient = c.httpClient

	if len(wifs) > 0 {
		bag := eos.NewKeyBag()
		for _, wif := range wifs {
			if err := bag.ImportPrivateKey(ctx, wif); err != nil {
				return nil, fmt.Errorf("failed to import signing key: %w", err)
			}
		}
		api.SetSigner(bag)
	}
	return api, nil
}

func (c *Client) SubmitTransaction(ctx context.Context, actions []chain.Action, opts chain.TxOptions) (*chain.Receipt, error) {
	api := c.api
	if len(opts.SignerKeys) > 0 {
		var err error
		api, err = c.newAPI(ctx, opts.SignerKeys)
		if err != nil {
			return nil, err
		}
	}

	eosActions := make([]*eos.Action, len(actions))
	for i, a := range actions {
		converted, err := toEOSAction(a)
		if err != nil {
			return nil, fmt.Errorf("failed to encode action %s: %w", a.Name, err)
		}
		eosActions[i] = converted
	}

	txOpts, err := c.txOptions(ctx, opts.HeadBlockLag)
	if err != nil {
		return nil, err
	}

	tx := eos.NewTransaction(eosActions, txOpts)
	if opts.ExpireSeconds > 0 {
		tx.SetExpiration(time.Duration(opts.ExpireSeconds) * time.Second)
	}

	_, packed, err := api.SignTransaction(ctx, tx, txOpts.ChainID, eos.CompressionNone)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", translate(err))
	}

	resp, err := api.PushTransaction(ctx, packed)
	if err != nil {
		translated := translate(err)
		if _, ok := chain.AsError(translated); ok {
			return nil, translated
		}
		return nil, fmt.Errorf("%w: %w", chain.ErrOutcomeUnknown, err)
	}

	slog.Debug("Transaction pushed", "transaction_id", resp.TransactionID, "actions", len(actions))
	return &chain.Receipt{TransactionID: resp.TransactionID}, nil
}

// txOptions picks the reference block lag blocks behind head.
func (c *Client) txOptions(ctx context.Context, lag int) (*eos.TxOptions, error) {
	info, err := c.api.GetInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain info: %w", translate(err))
	}

	ref := info.HeadBlockID
	if lag > 0 && info.HeadBlockNum > uint32(lag) {
		block, err := c.api.GetBlockByNum(ctx, info.HeadBlockNum-uint32(lag))
		if err != nil {
			return nil, fmt.Errorf("failed to get reference block: %w", translate(err))
		}
		ref = block.ID
	}

	return &eos.TxOptions{
		ChainID:     info.ChainID,
		HeadBlockID: ref,
		Compress:    eos.CompressionNone,
	}, nil
}

func (c *Client) QueryAccount(ctx context.Context, name string) (*chain.AccountInfo, error) {
	resp, err := c.api.GetAccount(ctx, eos.AN(name))
	if err != nil {
		if errors.Is(err, eos.ErrNotFound) {
			return nil, chain.ErrAccountNotFound
		}
		translated := translate(err)
		if chainErr, ok := chain.AsError(translated); ok && isNotFound(chainErr) {
			return nil, chain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to query account %s: %w", name, translated)
	}

	return c.toAccountInfo(resp), nil
}

func (c *Client) toAccountInfo(resp *eos.AccountResp) *chain.AccountInfo {
	info := &chain.AccountInfo{
		AccountName: string(resp.AccountName),
		Privileged:  resp.Privileged,
		Created:     resp.Created.Time,
		RAMQuota:    int64(resp.RAMQuota),
		RAMUsage:    int64(resp.RAMUsage),
		Permissions: make([]chain.Permission, 0, len(resp.Permissions)),
	}

	for _, p := range resp.Permissions {
		auth := chain.Authority{
			Threshold: p.RequiredAuth.Threshold,
			Keys:      make([]chain.KeyWeight, 0, len(p.RequiredAuth.Keys)),
			Accounts:  make([]chain.PermissionLevelWeight, 0, len(p.RequiredAuth.Accounts)),
		}
		for _, k := range p.RequiredAuth.Keys {
			key := k.PublicKey.String()
			if prefixed, err := keys.WithPrefix(key, c.keyPrefix); err == nil {
				key = prefixed
			}
			auth.Keys = append(auth.Keys, chain.KeyWeight{Key: key, Weight: k.Weight})
		}
		for _, a := range p.RequiredAuth.Accounts {
			auth.Accounts = append(auth.Accounts, chain.PermissionLevelWeight{
				Permission: chain.PermissionLevel{
					Actor:      string(a.Permission.Actor),
					Permission: string(a.Permission.Permission),
				},
				Weight: a.Weight,
			})
		}
		info.Permissions = append(info.Permissions, chain.Permission{
			Name:      p.PermName,
			Parent:    p.Parent,
			Authority: auth,
		})
	}
	return info
}
