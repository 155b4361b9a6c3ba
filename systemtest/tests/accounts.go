package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/fioprotocol/fio-provisioner/internal/api/http/dto"
	"github.com/fioprotocol/fio-provisioner/internal/chain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAccount(t *testing.T, env *Env) {
	rr := doJSON(env.Router, http.MethodPost, "/api/v1/accounts", dto.CreateAccountRequest{}, env.APIKey)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var created dto.CreateAccountResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))

	t.Run("recorded in ledger", func(t *testing.T) {
		rr := doJSON(env.Router, http.MethodGet, "/api/v1/accounts/"+created.AccountName, nil, env.APIKey)
		require.Equal(t, http.StatusOK, rr.Code)

		var info dto.AccountInfo
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &info))
		assert.Equal(t, "fio.system", info.Creator)
		assert.Equal(t, created.OwnerPublicKey, info.OwnerPublicKey)
		assert.Equal(t, created.ActivePublicKey, info.ActivePublicKey)
		assert.Equal(t, created.TransactionID, info.TransactionID)
		assert.Equal(t, 1, info.Attempts)
	})

	t.Run("listed", func(t *testing.T) {
		rr := doJSON(env.Router, http.MethodGet, "/api/v1/accounts?page_size=100", nil, env.APIKey)
		require.Equal(t, http.StatusOK, rr.Code)

		var list dto.ListAccountsResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
		var found bool
		for _, a := range list.Accounts {
			found = found || a.AccountName == created.AccountName
		}
		assert.True(t, found)
	})

	t.Run("claim redeemed once", func(t *testing.T) {
		body := dto.RedeemClaimRequest{Token: created.ClaimToken}
		rr := doJSON(env.Router, http.MethodPost, "/api/v1/claims/redeem", body, "")
		require.Equal(t, http.StatusOK, rr.Code)

		var redeemed dto.RedeemClaimResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &redeemed))
		assert.Equal(t, created.ActivePublicKey, redeemed.ActiveKeys.PublicKey)
		assert.NotEmpty(t, redeemed.ActiveKeys.PrivateKey)

		rr = doJSON(env.Router, http.MethodPost, "/api/v1/claims/redeem", body, "")
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("unknown account", func(t *testing.T) {
		rr := doJSON(env.Router, http.MethodGet, "/api/v1/accounts/zzzzzzzzzzzz", nil, env.APIKey)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestOrphanedAccounts(t *testing.T, env *Env) {
	env.Chain.SubmitHook = func(n int, actions []chain.Action) error {
		if _, ok := chain.IsUpdateAuth(actions[0]); ok {
			return &chain.Error{Code: 3090003, Name: "unsatisfied_authorization", Message: "missing required authority"}
		}
		return nil
	}
	t.Cleanup(func() { env.Chain.SubmitHook = nil })

	rr := doJSON(env.Router, http.MethodPost, "/api/v1/accounts", dto.CreateAccountRequest{Creator: "fio.system"}, env.APIKey)
	require.Equal(t, http.StatusBadGateway, rr.Code)

	var failure dto.CreateAccountFailure
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &failure))
	assert.Equal(t, 3, failure.Attempts)
	assert.Equal(t, "grant", failure.Stage)
	require.NotNil(t, failure.Details)
	assert.Equal(t, "unsatisfied_authorization", failure.Details.Name)

	rr = doJSON(env.Router, http.MethodGet, "/api/v1/orphans", nil, env.APIKey)
	require.Equal(t, http.StatusOK, rr.Code)

	var orphans dto.ListOrphansResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &orphans))
	assert.Equal(t, 3, orphans.Total)
	require.Len(t, orphans.Orphans, 3)
	for _, o := range orphans.Orphans {
		assert.Equal(t, "grant", o.Stage)
		assert.NotEmpty(t, o.TransactionID)
		assert.Contains(t, o.Error, "unsatisfied_authorization")
	}
}
