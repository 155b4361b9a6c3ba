package dto

import "time"

type RedeemClaimRequest struct {
	Token string `json:"token" binding:"required"`
}

type Keypair struct {
	PrivateKey string `json:"private_key,omitempty"`
	PublicKey  string `json:"public_key"`
}

type RedeemClaimResponse struct {
	AccountName string  `json:"account_name"`
	OwnerKeys   Keypair `json:"owner_keys"`
	ActiveKeys  Keypair `json:"active_keys"`
}

type ClaimInfo struct {
	AccountName     string    `json:"account_name"`
	OwnerPublicKey  string    `json:"owner_public_key"`
	ActivePublicKey string    `json:"active_public_key"`
	CreatedAt       time.Time `json:"created_at"`
	ExpiresAt       time.Time `json:"expires_at"`
}

type ListClaimsResponse struct {
	Claims []ClaimInfo `json:"claims"`
	Count  int         `json:"count"`
}
