package http

import (
	"github.com/fioprotocol/fio-provisioner/internal/api/http/handler"
	"github.com/fioprotocol/fio-provisioner/internal/api/http/middleware"
	"github.com/fioprotocol/fio-provisioner/internal/claims"
	"github.com/gin-gonic/gin"
)

type Services struct {
	Provisioner    handler.AccountProvisioner
	Claims         *claims.Store
	DefaultCreator string
	// Ledger and DB are nil when no database is configured.
	Ledger handler.LedgerReader
	DB     handler.Pinger
}

func SetupRoute(engine *gin.Engine, srvs *Services, adminAPIKey string) {
	engine.Use(middleware.RequestID())
	engine.Use(middleware.RequestLogger())

	healthHandler := handler.NewHealthHandler(srvs.DB)
	engine.GET("/health", healthHandler.Check)

	v1 := engine.Group("/api/v1")
	admin := v1.Group("", middleware.APIKeyAuth(adminAPIKey))

	claimHandler := handler.NewClaimHandler(srvs.Claims)
	v1.POST("/claims/redeem", claimHandler.Redeem)
	admin.GET("/claims", claimHandler.List)
	admin.DELETE("/claims/:account_name", claimHandler.Revoke)

	accountHandler := handler.NewAccountHandler(srvs.Provisioner, srvs.Claims, srvs.DefaultCreator)
	admin.POST("/accounts", accountHandler.CreateAccount)

	if srvs.Ledger != nil {
		ledgerHandler := handler.NewLedgerHandler(srvs.Ledger)
		admin.GET("/accounts", ledgerHandler.ListAccounts)
		admin.GET("/accounts/:account_name", ledgerHandler.GetAccount)
		admin.GET("/orphans", ledgerHandler.ListOrphans)
	}
}
