package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/fioprotocol/fio-provisioner/internal/api/http/dto"
	"github.com/fioprotocol/fio-provisioner/internal/claims"
	"github.com/gin-gonic/gin"
)

type ClaimHandler struct {
	claimStore *claims.Store
}

func NewClaimHandler(claimStore *claims.Store) *ClaimHandler {
	return &ClaimHandler{claimStore: claimStore}
}

func (h *ClaimHandler) Redeem(ctx *gin.Context) {
	var req dto.RedeemClaimRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claim, err := h.claimStore.Redeem(req.Token)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, claims.ErrClaimNotFound):
			status = http.StatusNotFound
		case errors.Is(err, claims.ErrClaimExpired):
			status = http.StatusGone
		case errors.Is(err, claims.ErrClaimAlreadyUsed):
			status = http.StatusConflict
		}
		slog.Warn("Claim redemption rejected", "client_ip", ctx.ClientIP(), "error", err)
		ctx.JSON(status, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, dto.RedeemClaimResponse{
		AccountName: claim.AccountName,
		OwnerKeys:   dto.Keypair{PrivateKey: claim.OwnerKeys.PrivateKey, PublicKey: claim.OwnerKeys.PublicKey},
		ActiveKeys:  dto.Keypair{PrivateKey: claim.ActiveKeys.PrivateKey, PublicKey: claim.ActiveKeys.PublicKey},
	})
}

func (h *ClaimHandler) List(ctx *gin.Context) {
	pending := h.claimStore.List()

	infos := make([]dto.ClaimInfo, len(pending))
	for i, c := range pending {
		infos[i] = dto.ClaimInfo{
			AccountName:     c.AccountName,
			OwnerPublicKey:  c.OwnerKeys.PublicKey,
			ActivePublicKey: c.ActiveKeys.PublicKey,
			CreatedAt:       c.CreatedAt,
			ExpiresAt:       c.ExpiresAt,
		}
	}

	ctx.JSON(http.StatusOK, dto.ListClaimsResponse{
		Claims: infos,
		Count:  len(infos),
	})
}

func (h *ClaimHandler) Revoke(ctx *gin.Context) {
	name := ctx.Param("account_name")

	if removed := h.claimStore.Revoke(name); !removed {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "No pending claim for this account"})
		return
	}

	slog.Info("Claims revoked", "account_name", name)
	ctx.JSON(http.StatusOK, gin.H{"message": "Claims revoked"})
}
