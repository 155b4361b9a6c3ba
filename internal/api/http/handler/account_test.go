package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/fioprotocol/fio-provisioner/internal/api/http/dto"
	"github.com/fioprotocol/fio-provisioner/internal/chain"
	"github.com/fioprotocol/fio-provisioner/internal/claims"
	"github.com/fioprotocol/fio-provisioner/internal/keys"
	"github.com/fioprotocol/fio-provisioner/internal/names"
	"github.com/fioprotocol/fio-provisioner/internal/provisioning"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupAccountRouter(h *AccountHandler) *gin.Engine {
	r := gin.New()
	r.POST("/api/v1/accounts", h.CreateAccount)
	return r
}

func testResult() *provisioning.Result {
	return &provisioning.Result{
		AccountName: "newacct11111",
		Receipt:     &chain.Receipt{TransactionID: "abc123"},
		OwnerKeys:   keys.Keypair{PrivateKey: "5Kowner", PublicKey: "FIOowner"},
		ActiveKeys:  keys.Keypair{PrivateKey: "5Kactive", PublicKey: "FIOactive"},
		Attempts:    2,
	}
}

func TestCreateAccount(t *testing.T) {
	p := new(MockProvisioner)
	p.On("CreateAccount", mock.Anything, "creator11111").Return(testResult(), nil)
	p.On("Onboard", mock.Anything, "creator11111", mock.Anything, provisioning.Onboarding{}).
		Return(&provisioning.OnboardingResult{}, nil)
	store := claims.NewStore(time.Hour)
	r := setupAccountRouter(NewAccountHandler(p, store, "fio.system"))

	w := doRequest(t, r, http.MethodPost, "/api/v1/accounts", dto.CreateAccountRequest{Creator: "creator11111"})

	assert.Equal(t, http.StatusCreated, w.Code)
	resp := decode[dto.CreateAccountResponse](t, w)
	assert.Equal(t, "newacct11111", resp.AccountName)
	assert.Equal(t, "FIOowner", resp.OwnerPublicKey)
	assert.Equal(t, "FIOactive", resp.ActivePublicKey)
	assert.Equal(t, "abc123", resp.TransactionID)
	assert.Equal(t, 2, resp.Attempts)
	assert.NotEmpty(t, resp.ClaimToken)
	assert.NotContains(t, w.Body.String(), "5Kowner")
	assert.NotContains(t, w.Body.String(), "5Kactive")

	claim, err := store.Redeem(resp.ClaimToken)
	require.NoError(t, err)
	assert.Equal(t, "5Kactive", claim.ActiveKeys.PrivateKey)
	p.AssertExpectations(t)
}

func TestCreateAccountDefaultCreator(t *testing.T) {
	p := new(MockProvisioner)
	p.On("CreateAccount", mock.Anything, "fio.system").Return(testResult(), nil)
	p.On("Onboard", mock.Anything, "fio.system", mock.Anything, mock.Anything).
		Return(&provisioning.OnboardingResult{}, nil)
	r := setupAccountRouter(NewAccountHandler(p, claims.NewStore(time.Hour), "fio.system"))

	w := doRequest(t, r, http.MethodPost, "/api/v1/accounts", nil)

	assert.Equal(t, http.StatusCreated, w.Code)
	p.AssertExpectations(t)
}

func TestCreateAccountInvalidBody(t *testing.T) {
	p := new(MockProvisioner)
	r := setupAccountRouter(NewAccountHandler(p, claims.NewStore(time.Hour), "fio.system"))

	w := doRequest(t, r, http.MethodPost, "/api/v1/accounts", "not an object")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	p.AssertNotCalled(t, "CreateAccount", mock.Anything, mock.Anything)
}

func TestCreateAccountValidationError(t *testing.T) {
	p := new(MockProvisioner)
	p.On("CreateAccount", mock.Anything, "BAD").
		Return(nil, &provisioning.ValidationError{Field: "creator", Err: names.ErrInvalidName})
	r := setupAccountRouter(NewAccountHandler(p, claims.NewStore(time.Hour), "fio.system"))

	w := doRequest(t, r, http.MethodPost, "/api/v1/accounts", dto.CreateAccountRequest{Creator: "BAD"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid creator")
}

func TestCreateAccountExhausted(t *testing.T) {
	p := new(MockProvisioner)
	p.On("CreateAccount", mock.Anything, "fio.system").Return(nil, &provisioning.ExhaustedRetriesError{
		Attempts: 3,
		Last: &provisioning.AttemptError{
			Attempt:     3,
			Stage:       provisioning.StageSubmit,
			AccountName: "newacct33333",
			Err: fmt.Errorf("push: %w", &chain.Error{
				Code:    3080001,
				Name:    "ram_usage_exceeded",
				Message: "account using more than allotted RAM usage",
				Details: []string{"needs 3000 bytes"},
			}),
		},
	})
	store := claims.NewStore(time.Hour)
	r := setupAccountRouter(NewAccountHandler(p, store, "fio.system"))

	w := doRequest(t, r, http.MethodPost, "/api/v1/accounts", dto.CreateAccountRequest{})

	assert.Equal(t, http.StatusBadGateway, w.Code)
	resp := decode[dto.CreateAccountFailure](t, w)
	assert.Equal(t, 3, resp.Attempts)
	assert.Equal(t, "submit", resp.Stage)
	assert.Equal(t, "newacct33333", resp.AccountName)
	require.NotNil(t, resp.Details)
	assert.Equal(t, "ram_usage_exceeded", resp.Details.Name)
	assert.Equal(t, []string{"needs 3000 bytes"}, resp.Details.Details)
	assert.Empty(t, store.List())
}

func TestCreateAccountExhaustedWithoutDetails(t *testing.T) {
	p := new(MockProvisioner)
	p.On("CreateAccount", mock.Anything, "fio.system").Return(nil, &provisioning.ExhaustedRetriesError{
		Attempts: 3,
		Last:     &provisioning.AttemptError{Attempt: 3, Stage: provisioning.StageConfirm, Err: chain.ErrAccountNotFound},
	})
	r := setupAccountRouter(NewAccountHandler(p, claims.NewStore(time.Hour), "fio.system"))

	w := doRequest(t, r, http.MethodPost, "/api/v1/accounts", nil)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	resp := decode[dto.CreateAccountFailure](t, w)
	assert.Nil(t, resp.Details)
	assert.Equal(t, "confirm", resp.Stage)
}

func TestCreateAccountCancelled(t *testing.T) {
	p := new(MockProvisioner)
	p.On("CreateAccount", mock.Anything, "fio.system").
		Return(nil, fmt.Errorf("account creation stopped after 1 attempts: %w", context.Canceled))
	r := setupAccountRouter(NewAccountHandler(p, claims.NewStore(time.Hour), "fio.system"))

	w := doRequest(t, r, http.MethodPost, "/api/v1/accounts", nil)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestCreateAccountUnexpectedError(t *testing.T) {
	p := new(MockProvisioner)
	p.On("CreateAccount", mock.Anything, "fio.system").Return(nil, errors.New("boom"))
	r := setupAccountRouter(NewAccountHandler(p, claims.NewStore(time.Hour), "fio.system"))

	w := doRequest(t, r, http.MethodPost, "/api/v1/accounts", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "boom")
}

func TestCreateAccountWithFIOName(t *testing.T) {
	p := new(MockProvisioner)
	result := testResult()
	p.On("CreateAccount", mock.Anything, "fio.system").Return(result, nil)
	p.On("Onboard", mock.Anything, "fio.system", result, provisioning.Onboarding{FIOName: "amzn"}).
		Return(&provisioning.OnboardingResult{TransferTransactionID: "tx1", RegisterTransactionID: "tx2"}, nil)
	r := setupAccountRouter(NewAccountHandler(p, claims.NewStore(time.Hour), "fio.system"))

	w := doRequest(t, r, http.MethodPost, "/api/v1/accounts", dto.CreateAccountRequest{FIOName: "amzn"})

	assert.Equal(t, http.StatusCreated, w.Code)
	resp := decode[dto.CreateAccountResponse](t, w)
	assert.Equal(t, "tx1", resp.TransferTransactionID)
	assert.Equal(t, "tx2", resp.RegisterTransactionID)
	assert.Empty(t, resp.OnboardingError)
	p.AssertExpectations(t)
}

func TestCreateAccountInvalidFIOName(t *testing.T) {
	p := new(MockProvisioner)
	r := setupAccountRouter(NewAccountHandler(p, claims.NewStore(time.Hour), "fio.system"))

	w := doRequest(t, r, http.MethodPost, "/api/v1/accounts", dto.CreateAccountRequest{FIOName: "Not.A.Name"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid fio_name")
	p.AssertNotCalled(t, "CreateAccount", mock.Anything, mock.Anything)
}

func TestCreateAccountOnboardingFailureKeepsClaim(t *testing.T) {
	p := new(MockProvisioner)
	p.On("CreateAccount", mock.Anything, "fio.system").Return(testResult(), nil)
	p.On("Onboard", mock.Anything, "fio.system", mock.Anything, provisioning.Onboarding{FIOName: "amzn"}).
		Return(&provisioning.OnboardingResult{TransferTransactionID: "tx1"}, &provisioning.OnboardingError{
			Step:        provisioning.OnboardRegister,
			AccountName: "newacct11111",
			Err:         &chain.Error{Code: 3050003, Name: "eosio_assert_message_exception", Message: "name already registered"},
		})
	store := claims.NewStore(time.Hour)
	r := setupAccountRouter(NewAccountHandler(p, store, "fio.system"))

	w := doRequest(t, r, http.MethodPost, "/api/v1/accounts", dto.CreateAccountRequest{FIOName: "amzn"})

	assert.Equal(t, http.StatusCreated, w.Code)
	resp := decode[dto.CreateAccountResponse](t, w)
	assert.Equal(t, "tx1", resp.TransferTransactionID)
	assert.Empty(t, resp.RegisterTransactionID)
	assert.Contains(t, resp.OnboardingError, "register_name")

	claim, err := store.Redeem(resp.ClaimToken)
	require.NoError(t, err)
	assert.Equal(t, "newacct11111", claim.AccountName)
}
