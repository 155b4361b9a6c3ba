package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/fioprotocol/fio-provisioner/internal/api/http/dto"
	"github.com/fioprotocol/fio-provisioner/internal/claims"
	"github.com/fioprotocol/fio-provisioner/internal/provisioning"
	"github.com/gin-gonic/gin"
)

type AccountProvisioner interface {
	CreateAccount(ctx context.Context, creator string) (*provisioning.Result, error)
	Onboard(ctx context.Context, creator string, result *provisioning.Result, ob provisioning.Onboarding) (*provisioning.OnboardingResult, error)
}

type AccountHandler struct {
	provisioner    AccountProvisioner
	claimStore     *claims.Store
	defaultCreator string
}

func NewAccountHandler(provisioner AccountProvisioner, claimStore *claims.Store, defaultCreator string) *AccountHandler {
	return &AccountHandler{
		provisioner:    provisioner,
		claimStore:     claimStore,
		defaultCreator: defaultCreator,
	}
}

// CreateAccount provisions an account and hands back a claim token for its private keys.
func (h *AccountHandler) CreateAccount(ctx *gin.Context) {
	var req dto.CreateAccountRequest
	if ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	creator := req.Creator
	if creator == "" {
		creator = h.defaultCreator
	}

	ob := provisioning.Onboarding{FIOName: req.FIOName}
	if err := ob.Validate(); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.provisioner.CreateAccount(ctx.Request.Context(), creator)
	if err != nil {
		h.writeCreateError(ctx, creator, err)
		return
	}

	claim, err := h.claimStore.Create(result.AccountName, result.OwnerKeys, result.ActiveKeys)
	if err != nil {
		slog.Error("Failed to store claim", "account_name", result.AccountName, "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Account created but keys could not be stored"})
		return
	}

	resp := dto.CreateAccountResponse{
		AccountName:     result.AccountName,
		OwnerPublicKey:  result.OwnerKeys.PublicKey,
		ActivePublicKey: result.ActiveKeys.PublicKey,
		Attempts:        result.Attempts,
		ClaimToken:      claim.Token,
		ClaimExpiresAt:  claim.ExpiresAt,
	}
	if result.Receipt != nil {
		resp.TransactionID = result.Receipt.TransactionID
	}

	onboarded, err := h.provisioner.Onboard(ctx.Request.Context(), creator, result, ob)
	if onboarded != nil {
		resp.TransferTransactionID = onboarded.TransferTransactionID
		resp.RegisterTransactionID = onboarded.RegisterTransactionID
	}
	if err != nil {
		slog.Warn("Account onboarding incomplete", "account_name", result.AccountName, "error", err)
		resp.OnboardingError = err.Error()
	}
	ctx.JSON(http.StatusCreated, resp)
}

func (h *AccountHandler) writeCreateError(ctx *gin.Context, creator string, err error) {
	var validationErr *provisioning.ValidationError
	if errors.As(err, &validationErr) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
		return
	}

	var exhausted *provisioning.ExhaustedRetriesError
	if errors.As(err, &exhausted) {
		resp := dto.CreateAccountFailure{
			Error:    "Account creation failed",
			Attempts: exhausted.Attempts,
		}
		if exhausted.Last != nil {
			resp.Stage = exhausted.Last.Stage.String()
			resp.AccountName = exhausted.Last.AccountName
		}
		if details := exhausted.Details(); details != nil {
			resp.Details = &dto.ChainErrorDetails{
				Code:    details.Code,
				Name:    details.Name,
				Message: details.Message,
				Details: details.Details,
			}
		}
		ctx.JSON(http.StatusBadGateway, resp)
		return
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		slog.Warn("Account creation interrupted", "creator", creator, "error", err)
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "Account creation interrupted"})
		return
	}

	slog.Error("Account creation failed", "creator", creator, "error", err)
	ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Account creation failed"})
}
