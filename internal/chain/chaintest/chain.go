// Package chaintest provides an in-memory chain.Client for tests.
package chaintest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/fioprotocol/fio-provisioner/internal/chain"
)

// Submission records one call to SubmitTransaction.
type Submission struct {
	Actions  []chain.Action
	Opts     chain.TxOptions
	Receipt  *chain.Receipt
	Rejected error
}

// Chain applies newaccount and updateauth actions to an in-memory account table.
// Other actions are accepted and ignored. Hooks run with the chain locked and must
// not call back into it.
type Chain struct {
	mu          sync.Mutex
	accounts    map[string]*chain.AccountInfo
	submissions []Submission
	queries     []string

	// SubmitHook is called with the 1-based submission number; a non-nil error rejects
	// the transaction before any action is applied.
	SubmitHook func(n int, actions []chain.Action) error
	// QueryHook is called with the 1-based query number; a non-nil error is returned
	// instead of the account.
	QueryHook func(n int, name string) error
}

// New returns a chain where accounts already exist.
func New(accounts ...string) *Chain {
	c := &Chain{accounts: make(map[string]*chain.AccountInfo)}
	for _, name := range accounts {
		c.accounts[name] = &chain.AccountInfo{AccountName: name, Created: time.Unix(0, 0).UTC()}
	}
	return c
}

func (c *Chain) SubmitTransaction(ctx context.Context, actions []chain.Action, opts chain.TxOptions) (*chain.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	sub := Submission{Actions: actions, Opts: opts}
	n := len(c.submissions) + 1

	if c.SubmitHook != nil {
		if err := c.SubmitHook(n, actions); err != nil {
			sub.Rejected = err
			c.submissions = append(c.submissions, sub)
			return nil, err
		}
	}

	if err := c.check(actions); err != nil {
		sub.Rejected = err
		c.submissions = append(c.submissions, sub)
		return nil, err
	}
	c.apply(actions)

	sub.Receipt = &chain.Receipt{TransactionID: fmt.Sprintf("%064x", n), BlockNum: uint32(n)}
	c.submissions = append(c.submissions, sub)
	return sub.Receipt, nil
}

func (c *Chain) QueryAccount(ctx context.Context, name string) (*chain.AccountInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.queries = append(c.queries, name)
	if c.QueryHook != nil {
		if err := c.QueryHook(len(c.queries), name); err != nil {
			return nil, err
		}
	}

	acc, ok := c.accounts[name]
	if !ok {
		return nil, chain.ErrAccountNotFound
	}
	out := *acc
	out.Permissions = append([]chain.Permission(nil), acc.Permissions...)
	return &out, nil
}

// check validates the whole transaction so it applies atomically.
func (c *Chain) check(actions []chain.Action) error {
	created := make(map[string]bool)
	for _, a := range actions {
		if len(a.Authorization) == 0 {
			return &chain.Error{Code: 3090003, Name: "unsatisfied_authorization", Message: "missing authorization for " + a.Name}
		}
		actor := a.Authorization[0].Actor
		if _, ok := c.accounts[actor]; !ok && !created[actor] {
			return &chain.Error{Code: 3010001, Name: "name_type_exception", Message: "unknown actor " + actor}
		}

		if data, ok := chain.IsNewAccount(a); ok {
			if _, exists := c.accounts[data.Name]; exists || created[data.Name] {
				return &chain.Error{
					Code:    3050001,
					Name:    "account_name_exists_exception",
					Message: fmt.Sprintf("Cannot create account named %s, as that name is already taken", data.Name),
				}
			}
			created[data.Name] = true
		}
		if data, ok := chain.IsUpdateAuth(a); ok {
			if _, exists := c.accounts[data.Account]; !exists && !created[data.Account] {
				return &chain.Error{Code: 3010001, Name: "name_type_exception", Message: "unknown account " + data.Account}
			}
		}
	}
	return nil
}

func (c *Chain) apply(actions []chain.Action) {
	for _, a := range actions {
		if data, ok := chain.IsNewAccount(a); ok {
			c.accounts[data.Name] = &chain.AccountInfo{
				AccountName: data.Name,
				Created:     time.Now().UTC(),
				Permissions: []chain.Permission{
					{Name: chain.PermissionOwner, Authority: data.Owner},
					{Name: chain.PermissionActive, Parent: chain.PermissionOwner, Authority: data.Active},
				},
			}
		}
		if data, ok := chain.IsUpdateAuth(a); ok {
			acc := c.accounts[data.Account]
			perm := chain.Permission{Name: data.Permission, Parent: data.Parent, Authority: data.Auth}
			replaced := false
			for i := range acc.Permissions {
				if acc.Permissions[i].Name == data.Permission {
					acc.Permissions[i] = perm
					replaced = true
				}
			}
			if !replaced {
				acc.Permissions = append(acc.Permissions, perm)
			}
		}
	}
}

// Submissions returns every SubmitTransaction call, including rejected ones.
func (c *Chain) Submissions() []Submission {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Submission(nil), c.submissions...)
}

// Queries returns the names passed to QueryAccount, in order.
func (c *Chain) Queries() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.queries...)
}

// Accounts returns all account names, sorted.
func (c *Chain) Accounts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.accounts))
	for name := range c.accounts {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// CreatedAccounts returns the names created by accepted newaccount actions, in order.
func (c *Chain) CreatedAccounts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for _, sub := range c.submissions {
		if sub.Rejected != nil {
			continue
		}
		for _, a := range sub.Actions {
			if data, ok := chain.IsNewAccount(a); ok {
				out = append(out, data.Name)
			}
		}
	}
	return out
}
