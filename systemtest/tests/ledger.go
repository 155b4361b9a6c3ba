package tests

import (
	"context"
	"testing"

	"github.com/fioprotocol/fio-provisioner/internal/chain"
	"github.com/fioprotocol/fio-provisioner/internal/keys"
	"github.com/fioprotocol/fio-provisioner/internal/ledger"
	"github.com/fioprotocol/fio-provisioner/internal/provisioning"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerStore(t *testing.T, env *Env) {
	ctx := context.Background()
	result := &provisioning.Result{
		AccountName: "ledger111111",
		Receipt:     &chain.Receipt{TransactionID: "feed"},
		OwnerKeys:   keys.Keypair{PrivateKey: "5Kowner", PublicKey: "FIOowner"},
		ActiveKeys:  keys.Keypair{PrivateKey: "5Kactive", PublicKey: "FIOactive"},
		Attempts:    2,
	}

	t.Run("record and get", func(t *testing.T) {
		require.NoError(t, env.Ledger.RecordProvisioned(ctx, "fio.system", result))

		acc, err := env.Ledger.GetProvisioned(ctx, "ledger111111")
		require.NoError(t, err)
		assert.NotEmpty(t, acc.ID)
		assert.Equal(t, "FIOowner", acc.OwnerPublicKey)
		assert.Equal(t, "feed", acc.TransactionID)
		assert.Equal(t, 2, acc.Attempts)
		assert.False(t, acc.CreatedAt.IsZero())
	})

	t.Run("duplicate name rejected", func(t *testing.T) {
		assert.Error(t, env.Ledger.RecordProvisioned(ctx, "fio.system", result))
	})

	t.Run("not found", func(t *testing.T) {
		_, err := env.Ledger.GetProvisioned(ctx, "missing11111")
		assert.ErrorIs(t, err, ledger.ErrAccountNotFound)
	})

	t.Run("paging", func(t *testing.T) {
		_, total, err := env.Ledger.ListProvisioned(ctx, 1, 0)
		require.NoError(t, err)
		require.GreaterOrEqual(t, total, 1)

		page, _, err := env.Ledger.ListProvisioned(ctx, 1, total)
		require.NoError(t, err)
		assert.Empty(t, page)

		page, _, err = env.Ledger.ListProvisioned(ctx, total, 0)
		require.NoError(t, err)
		assert.Len(t, page, total)
	})
}
