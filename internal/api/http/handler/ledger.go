package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/fioprotocol/fio-provisioner/internal/api/http/dto"
	"github.com/fioprotocol/fio-provisioner/internal/ledger"
	"github.com/gin-gonic/gin"
)

type LedgerReader interface {
	GetProvisioned(ctx context.Context, accountName string) (*ledger.ProvisionedAccount, error)
	ListProvisioned(ctx context.Context, limit, offset int) ([]ledger.ProvisionedAccount, int, error)
	ListOrphans(ctx context.Context, limit, offset int) ([]ledger.OrphanedAccount, int, error)
}

type LedgerHandler struct {
	ledger LedgerReader
}

func NewLedgerHandler(ledger LedgerReader) *LedgerHandler {
	return &LedgerHandler{ledger: ledger}
}

func (h *LedgerHandler) ListAccounts(ctx *gin.Context) {
	var q dto.PageQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	accounts, total, err := h.ledger.ListProvisioned(ctx.Request.Context(), q.PageSize, q.Offset())
	if err != nil {
		slog.Error("Failed to list accounts", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list accounts"})
		return
	}

	resp := dto.ListAccountsResponse{
		Accounts:   make([]dto.AccountInfo, len(accounts)),
		Pagination: dto.Pagination{Page: q.Page, PageSize: q.PageSize, Total: total},
	}
	for i, a := range accounts {
		resp.Accounts[i] = toAccountInfo(a)
	}
	ctx.JSON(http.StatusOK, resp)
}

func (h *LedgerHandler) GetAccount(ctx *gin.Context) {
	account, err := h.ledger.GetProvisioned(ctx.Request.Context(), ctx.Param("account_name"))
	if err != nil {
		if errors.Is(err, ledger.ErrAccountNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
			return
		}
		slog.Error("Failed to get account", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get account"})
		return
	}

	ctx.JSON(http.StatusOK, toAccountInfo(*account))
}

func (h *LedgerHandler) ListOrphans(ctx *gin.Context) {
	var q dto.PageQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	orphans, total, err := h.ledger.ListOrphans(ctx.Request.Context(), q.PageSize, q.Offset())
	if err != nil {
		slog.Error("Failed to list orphans", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list orphaned accounts"})
		return
	}

	resp := dto.ListOrphansResponse{
		Orphans:    make([]dto.OrphanInfo, len(orphans)),
		Pagination: dto.Pagination{Page: q.Page, PageSize: q.PageSize, Total: total},
	}
	for i, o := range orphans {
		resp.Orphans[i] = dto.OrphanInfo{
			AccountName:   o.AccountName,
			Creator:       o.Creator,
			Attempt:       o.Attempt,
			Stage:         o.Stage,
			Error:         o.Error,
			TransactionID: o.TransactionID,
			CreatedAt:     o.CreatedAt,
		}
	}
	ctx.JSON(http.StatusOK, resp)
}

func toAccountInfo(a ledger.ProvisionedAccount) dto.AccountInfo {
	return dto.AccountInfo{
		AccountName:     a.AccountName,
		Creator:         a.Creator,
		OwnerPublicKey:  a.OwnerPublicKey,
		ActivePublicKey: a.ActivePublicKey,
		TransactionID:   a.TransactionID,
		Attempts:        a.Attempts,
		CreatedAt:       a.CreatedAt,
	}
}
