package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	internalhttp "github.com/fioprotocol/fio-provisioner/internal/api/http"
	"github.com/fioprotocol/fio-provisioner/internal/api/http/dto"
	"github.com/fioprotocol/fio-provisioner/internal/chain"
	"github.com/fioprotocol/fio-provisioner/internal/chain/chaintest"
	"github.com/fioprotocol/fio-provisioner/internal/claims"
	"github.com/fioprotocol/fio-provisioner/internal/keys"
	"github.com/fioprotocol/fio-provisioner/internal/names"
	"github.com/fioprotocol/fio-provisioner/internal/provisioning"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const testAPIKey = "cli-test-key"

func newTestService() *provisioning.Service {
	return newTestServiceWithChain(chaintest.New("fio.system"))
}

func newTestServiceWithChain(c *chaintest.Chain) *provisioning.Service {
	return provisioning.NewService(provisioning.Config{}, c,
		keys.NewGenerator(""), &names.Generator{}, nil)
}

func newTestServer(t *testing.T) *httptest.Server {
	return newTestServerWithChain(t, chaintest.New("fio.system"))
}

func newTestServerWithChain(t *testing.T, c *chaintest.Chain) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	internalhttp.SetupRoute(engine, &internalhttp.Services{
		Provisioner:    newTestServiceWithChain(c),
		Claims:         claims.NewStore(time.Minute),
		DefaultCreator: "fio.system",
	}, testAPIKey)

	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)
	return srv
}

func TestCreateAccountFile(t *testing.T) {
	f, err := createAccount(context.Background(), newTestService(), "fio.system", provisioning.Onboarding{})
	require.NoError(t, err)

	assert.Equal(t, "fio.system", f.Creator)
	assert.Equal(t, 1, f.Attempts)
	assert.NotEmpty(t, f.TransactionID)
	assert.NoError(t, verifyAccountFile(f))
}

func TestCreateAccountOnboarded(t *testing.T) {
	c := chaintest.New("fio.system")
	f, err := createAccount(context.Background(), newTestServiceWithChain(c), "fio.system",
		provisioning.Onboarding{Quantity: "200.0000 FIO", FIOName: "amzn"})
	require.NoError(t, err)

	assert.Equal(t, "amzn", f.FIOName)
	assert.NotEmpty(t, f.TransferTransactionID)
	assert.NotEmpty(t, f.RegisterTransactionID)

	subs := c.Submissions()
	require.Len(t, subs, 4)
	assert.Equal(t, "transfer", subs[2].Actions[0].Name)
	assert.Equal(t, "registername", subs[3].Actions[0].Name)
}

func TestCreateAccountOnboardingFailureKeepsKeys(t *testing.T) {
	c := chaintest.New("fio.system")
	c.SubmitHook = func(n int, actions []chain.Action) error {
		if actions[0].Name == "registername" {
			return &chain.Error{Code: 3050003, Name: "eosio_assert_message_exception", Message: "name already registered"}
		}
		return nil
	}

	f, err := createAccount(context.Background(), newTestServiceWithChain(c), "fio.system",
		provisioning.Onboarding{FIOName: "amzn"})
	require.Error(t, err)
	require.NotNil(t, f)
	assert.NotEmpty(t, f.ActiveKeys.PrivateKey)
	assert.Empty(t, f.FIOName)
	assert.NoError(t, verifyAccountFile(f))
}

func TestCreateAccountInvalidCreator(t *testing.T) {
	_, err := createAccount(context.Background(), newTestService(), "Not Valid", provisioning.Onboarding{})

	var validation *provisioning.ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestRequestAccount(t *testing.T) {
	srv := newTestServer(t)
	c := &serverClient{baseURL: srv.URL, apiKey: testAPIKey, httpClient: srv.Client()}

	f, err := c.requestAccount(context.Background(), dto.CreateAccountRequest{})
	require.NoError(t, err)

	assert.Len(t, f.AccountName, 12)
	assert.NotEmpty(t, f.OwnerKeys.PrivateKey)
	assert.NotEmpty(t, f.ActiveKeys.PrivateKey)
	assert.NoError(t, verifyAccountFile(f))
}

func TestRequestAccountUnauthorized(t *testing.T) {
	srv := newTestServer(t)
	c := &serverClient{baseURL: srv.URL, apiKey: "wrong", httpClient: srv.Client()}

	_, err := c.requestAccount(context.Background(), dto.CreateAccountRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 401")
}

func testAccountFile() *accountFile {
	return &accountFile{
		AccountName: "newacct11111",
		Attempts:    1,
		OwnerKeys:   keys.Keypair{PrivateKey: "5Kowner", PublicKey: "FIOowner"},
		ActiveKeys:  keys.Keypair{PrivateKey: "5Kactive", PublicKey: "FIOactive"},
		CreatedAt:   time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestAccountOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "account.yaml")
	f := testAccountFile()

	var buf bytes.Buffer
	out, err := openAccountOutput(&buf, path, false)
	require.NoError(t, err)
	require.NoError(t, out.Write(f))
	require.NoError(t, out.Close())
	assert.Contains(t, buf.String(), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	read, err := readAccountFile(path)
	require.NoError(t, err)
	assert.Equal(t, f, read)

	_, err = openAccountOutput(&buf, path, false)
	assert.ErrorContains(t, err, "already exists")

	f.Attempts = 2
	out, err = openAccountOutput(&buf, path, true)
	require.NoError(t, err)
	require.NoError(t, out.Write(f))
	require.NoError(t, out.Close())
	read, err = readAccountFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, read.Attempts)
}

func TestAccountOutputStdout(t *testing.T) {
	var buf bytes.Buffer
	out, err := openAccountOutput(&buf, "", false)
	require.NoError(t, err)
	require.NoError(t, out.Write(testAccountFile()))
	require.NoError(t, out.Close())

	var decoded accountFile
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "newacct11111", decoded.AccountName)
	assert.Equal(t, "5Kowner", decoded.OwnerKeys.PrivateKey)
}

func TestAccountOutputUnusedFileRemoved(t *testing.T) {
	path := filepath.Join(t.TempDir(), "account.yaml")

	out, err := openAccountOutput(&bytes.Buffer{}, path, false)
	require.NoError(t, err)
	require.NoError(t, out.Close())

	_, err = os.Stat(path)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestAccountOutputForceKeepsContentUntilWritten(t *testing.T) {
	path := filepath.Join(t.TempDir(), "account.yaml")
	require.NoError(t, os.WriteFile(path, []byte("previous"), 0600))

	out, err := openAccountOutput(&bytes.Buffer{}, path, true)
	require.NoError(t, err)
	require.NoError(t, out.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(data))
}

func TestAccountOutputFallsBackToStdout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "account.yaml")

	var buf bytes.Buffer
	out, err := openAccountOutput(&buf, path, false)
	require.NoError(t, err)
	out.file.Close()

	err = out.Write(testAccountFile())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "printed to stdout")

	var decoded accountFile
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "5Kowner", decoded.OwnerKeys.PrivateKey)
	assert.Equal(t, "5Kactive", decoded.ActiveKeys.PrivateKey)
	require.NoError(t, out.Close())
}

func TestRequestExistingOutputFailsBeforeProvisioning(t *testing.T) {
	c := chaintest.New("fio.system")
	srv := newTestServerWithChain(t, c)

	path := filepath.Join(t.TempDir(), "account.yaml")
	require.NoError(t, os.WriteFile(path, []byte("previous"), 0600))

	saved := flagRequest
	t.Cleanup(func() { flagRequest = saved })
	flagRequest.Server = srv.URL
	flagRequest.APIKey = testAPIKey
	flagRequest.Out = path
	flagRequest.Force = false
	flagRequest.Timeout = time.Minute

	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	cmd.SetOut(&bytes.Buffer{})

	err := runRequest(cmd, nil)
	assert.ErrorContains(t, err, "already exists")
	assert.Empty(t, c.CreatedAccounts())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(data))
}

func TestVerifyAccountFileMismatch(t *testing.T) {
	gen := keys.NewGenerator("")
	owner, err := gen.Generate()
	require.NoError(t, err)
	active, err := gen.Generate()
	require.NoError(t, err)

	f := &accountFile{
		AccountName: "newacct11111",
		OwnerKeys:   owner,
		ActiveKeys:  keys.Keypair{PrivateKey: owner.PrivateKey, PublicKey: active.PublicKey},
	}

	err = verifyAccountFile(f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "active private key does not match")
	assert.NotContains(t, err.Error(), "owner")
}

func TestKeygen(t *testing.T) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	flagKeygen.Prefix = "EOS"

	require.NoError(t, runKeygen(cmd, nil))

	var kp keys.Keypair
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &kp))
	assert.Regexp(t, `^EOS`, kp.PublicKey)

	pub, err := keys.PublicKeyFromWIF(kp.PrivateKey, "EOS")
	require.NoError(t, err)
	assert.Equal(t, kp.PublicKey, pub)
}
