package dto

import "time"

type CreateAccountRequest struct {
	// Creator defaults to the configured creator account when empty.
	Creator string `json:"creator"`
	// FIOName is registered by the new account after it is created.
	FIOName string `json:"fio_name,omitempty"`
}

type CreateAccountResponse struct {
	AccountName     string    `json:"account_name"`
	OwnerPublicKey  string    `json:"owner_public_key"`
	ActivePublicKey string    `json:"active_public_key"`
	TransactionID   string    `json:"transaction_id,omitempty"`
	Attempts        int       `json:"attempts"`
	ClaimToken      string    `json:"claim_token"`
	ClaimExpiresAt  time.Time `json:"claim_expires_at"`

	TransferTransactionID string `json:"transfer_transaction_id,omitempty"`
	RegisterTransactionID string `json:"register_transaction_id,omitempty"`
	// OnboardingError is set when the account exists but a follow-up step failed.
	OnboardingError string `json:"onboarding_error,omitempty"`
}

type ChainErrorDetails struct {
	Code    int      `json:"code"`
	Name    string   `json:"name"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

type CreateAccountFailure struct {
	Error       string             `json:"error"`
	Attempts    int                `json:"attempts"`
	Stage       string             `json:"stage,omitempty"`
	AccountName string             `json:"account_name,omitempty"`
	Details     *ChainErrorDetails `json:"details,omitempty"`
}

type AccountInfo struct {
	AccountName     string    `json:"account_name"`
	Creator         string    `json:"creator"`
	OwnerPublicKey  string    `json:"owner_public_key"`
	ActivePublicKey string    `json:"active_public_key"`
	TransactionID   string    `json:"transaction_id"`
	Attempts        int       `json:"attempts"`
	CreatedAt       time.Time `json:"created_at"`
}

type ListAccountsResponse struct {
	Accounts []AccountInfo `json:"accounts"`
	Pagination
}

type OrphanInfo struct {
	AccountName   string    `json:"account_name"`
	Creator       string    `json:"creator"`
	Attempt       int       `json:"attempt"`
	Stage         string    `json:"stage"`
	Error         string    `json:"error"`
	TransactionID string    `json:"transaction_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type ListOrphansResponse struct {
	Orphans []OrphanInfo `json:"orphans"`
	Pagination
}

type PageQuery struct {
	Page     int `form:"page,default=1" binding:"min=1"`
	PageSize int `form:"page_size,default=20" binding:"min=1,max=100"`
}

func (q PageQuery) Offset() int {
	return (q.Page - 1) * q.PageSize
}

type Pagination struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Total    int `json:"total"`
}
