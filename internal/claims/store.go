package claims

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/fioprotocol/fio-provisioner/internal/keys"
)

const tokenPrefix = "ck_"

var (
	ErrClaimNotFound    = errors.New("claim not found")
	ErrClaimExpired     = errors.New("claim has expired")
	ErrClaimAlreadyUsed = errors.New("claim has already been redeemed")
)

// Claim holds the keys of a provisioned account until the caller redeems them.
type Claim struct {
	Token       string
	AccountName string
	OwnerKeys   keys.Keypair
	ActiveKeys  keys.Keypair
	CreatedAt   time.Time
	ExpiresAt   time.Time
	Used        bool
}

type Store struct {
	mu     sync.RWMutex
	claims map[string]*Claim
	ttl    time.Duration
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		claims: make(map[string]*Claim),
		ttl:    ttl,
	}
}

func (s *Store) TTL() time.Duration {
	return s.ttl
}

func (s *Store) Create(accountName string, owner, active keys.Keypair) (*Claim, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("failed to generate claim token: %w", err)
	}

	token := tokenPrefix + hex.EncodeToString(b)
	now := time.Now()

	c := &Claim{
		Token:       token,
		AccountName: accountName,
		OwnerKeys:   owner,
		ActiveKeys:  active,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.ttl),
	}

	s.mu.Lock()
	s.claims[token] = c
	s.mu.Unlock()

	slog.Info("Claim created", "account_name", accountName, "expires_at", c.ExpiresAt)
	out := *c
	return &out, nil
}

// Redeem returns the claim and marks it used. A token can be redeemed once.
func (s *Store) Redeem(token string) (*Claim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, exists := s.claims[token]
	if !exists {
		return nil, ErrClaimNotFound
	}
	if c.Used {
		return nil, ErrClaimAlreadyUsed
	}
	if time.Now().After(c.ExpiresAt) {
		return nil, ErrClaimExpired
	}
	c.Used = true

	slog.Info("Claim redeemed", "account_name", c.AccountName)
	out := *c
	return &out, nil
}

// Revoke drops every claim for accountName.
func (s *Store) Revoke(accountName string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := false
	for token, c := range s.claims {
		if c.AccountName == accountName {
			delete(s.claims, token)
			removed = true
		}
	}
	return removed
}

// List returns pending claims with token and keys removed, oldest first.
func (s *Store) List() []Claim {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now()
	var result []Claim
	for _, c := range s.claims {
		if c.Used || now.After(c.ExpiresAt) {
			continue
		}
		result = append(result, Claim{
			AccountName: c.AccountName,
			OwnerKeys:   keys.Keypair{PublicKey: c.OwnerKeys.PublicKey},
			ActiveKeys:  keys.Keypair{PublicKey: c.ActiveKeys.PublicKey},
			CreatedAt:   c.CreatedAt,
			ExpiresAt:   c.ExpiresAt,
		})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

func (s *Store) StartCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *Store) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	removed := 0
	for token, c := range s.claims {
		if now.After(c.ExpiresAt) && !c.Used {
			slog.Warn("Claim expired before redemption", "account_name", c.AccountName)
		}
		if c.Used || now.After(c.ExpiresAt) {
			delete(s.claims, token)
			removed++
		}
	}
	if removed > 0 {
		slog.Debug("Cleaned up claims", "removed", removed)
	}
}
