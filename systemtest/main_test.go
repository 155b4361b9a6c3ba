package systemtest

import (
	"context"
	"testing"
	"time"

	internalhttp "github.com/fioprotocol/fio-provisioner/internal/api/http"
	"github.com/fioprotocol/fio-provisioner/internal/chain/chaintest"
	"github.com/fioprotocol/fio-provisioner/internal/claims"
	"github.com/fioprotocol/fio-provisioner/internal/db"
	"github.com/fioprotocol/fio-provisioner/internal/keys"
	"github.com/fioprotocol/fio-provisioner/internal/ledger"
	"github.com/fioprotocol/fio-provisioner/internal/names"
	"github.com/fioprotocol/fio-provisioner/internal/provisioning"
	"github.com/fioprotocol/fio-provisioner/systemtest/postgres"
	"github.com/fioprotocol/fio-provisioner/systemtest/tests"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
)

const adminAPIKey = "systemtest-admin-key"

func TestSystemIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("system tests need docker")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()

	container, err := postgres.StartPostgres(ctx, "fio", "fio", "provisioner")
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := postgres.TerminatePostgres(context.Background(), container); err != nil {
			t.Logf("terminate: %v", err)
		}
	})

	dbConfig := db.Config{Url: container.URL, Schema: "fio_provisioner"}
	require.NoError(t, db.RunMigrations(ctx, dbConfig))
	// a second run must be a no-op
	require.NoError(t, db.RunMigrations(ctx, dbConfig))

	pool, err := db.InitDB(ctx, dbConfig)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	store := ledger.NewStore(pool)
	fakeChain := chaintest.New("fio.system")
	svc := provisioning.NewService(provisioning.Config{RetryDelay: time.Millisecond}, fakeChain,
		keys.NewGenerator(keys.DefaultPrefix), &names.Generator{}, store)

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	internalhttp.SetupRoute(engine, &internalhttp.Services{
		Provisioner:    svc,
		Claims:         claims.NewStore(time.Minute),
		DefaultCreator: "fio.system",
		Ledger:         store,
		DB:             pool,
	}, adminAPIKey)

	env := &tests.Env{Router: engine, Chain: fakeChain, Ledger: store, APIKey: adminAPIKey}

	t.Run("HealthCheck", func(t *testing.T) { tests.TestHealthCheck(t, env) })
	t.Run("CreateAccount", func(t *testing.T) { tests.TestCreateAccount(t, env) })
	t.Run("OrphanedAccounts", func(t *testing.T) { tests.TestOrphanedAccounts(t, env) })
	t.Run("LedgerStore", func(t *testing.T) { tests.TestLedgerStore(t, env) })
}
