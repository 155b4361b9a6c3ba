package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/fioprotocol/fio-provisioner/internal/api/http/dto"
	"github.com/fioprotocol/fio-provisioner/internal/keys"
	"github.com/spf13/cobra"
)

var cmdRequest = &cobra.Command{
	Use:   "request",
	Short: "Create an account through a provisioner server and redeem its keys",
	Args:  cobra.NoArgs,
	RunE:  runRequest,
}

var flagRequest struct {
	Server  string
	APIKey  string
	Creator string
	Out     string
	Force   bool
	FIOName string
	Timeout time.Duration
}

func init() {
	cmdMain.AddCommand(cmdRequest)

	cmdRequest.Flags().StringVar(&flagRequest.Server, "server", "", "Server URL (e.g., http://server:8080)")
	cmdRequest.Flags().StringVar(&flagRequest.APIKey, "api-key", "", "Admin API key")
	cmdRequest.Flags().StringVar(&flagRequest.Creator, "creator", "", "Account paying for the new account (defaults to the server's creator)")
	cmdRequest.Flags().StringVarP(&flagRequest.Out, "out", "o", "", "Write the account and its keys to this file instead of stdout")
	cmdRequest.Flags().BoolVar(&flagRequest.Force, "force", false, "Overwrite --out if it exists")
	cmdRequest.Flags().StringVar(&flagRequest.FIOName, "fio-name", "", "Register this FIO domain or address for the new account")
	cmdRequest.Flags().DurationVar(&flagRequest.Timeout, "timeout", 2*time.Minute, "Request timeout")
	_ = cmdRequest.MarkFlagRequired("server")
}

func runRequest(cmd *cobra.Command, args []string) error {
	out, err := openAccountOutput(cmd.OutOrStdout(), flagRequest.Out, flagRequest.Force)
	if err != nil {
		return err
	}
	defer out.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), flagRequest.Timeout)
	defer cancel()

	c := &serverClient{
		baseURL:    strings.TrimRight(flagRequest.Server, "/"),
		apiKey:     flagRequest.APIKey,
		httpClient: &http.Client{},
	}

	f, err := c.requestAccount(ctx, dto.CreateAccountRequest{Creator: flagRequest.Creator, FIOName: flagRequest.FIOName})
	if err != nil {
		return err
	}
	return out.Write(f)
}

type serverClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// requestAccount creates an account and immediately redeems its claim.
func (c *serverClient) requestAccount(ctx context.Context, req dto.CreateAccountRequest) (*accountFile, error) {
	var created dto.CreateAccountResponse
	if err := c.post(ctx, "/api/v1/accounts", req, http.StatusCreated, &created); err != nil {
		return nil, fmt.Errorf("account creation failed: %w", err)
	}

	var redeemed dto.RedeemClaimResponse
	if err := c.post(ctx, "/api/v1/claims/redeem", dto.RedeemClaimRequest{Token: created.ClaimToken}, http.StatusOK, &redeemed); err != nil {
		return nil, fmt.Errorf("account %s created but its keys could not be redeemed: %w", created.AccountName, err)
	}

	if created.OnboardingError != "" {
		slog.Warn("Account onboarding incomplete", "account_name", created.AccountName, "error", created.OnboardingError)
	}

	f := &accountFile{
		AccountName:   created.AccountName,
		Creator:       req.Creator,
		TransactionID: created.TransactionID,
		Attempts:      created.Attempts,
		OwnerKeys:     keys.Keypair{PrivateKey: redeemed.OwnerKeys.PrivateKey, PublicKey: redeemed.OwnerKeys.PublicKey},
		ActiveKeys:    keys.Keypair{PrivateKey: redeemed.ActiveKeys.PrivateKey, PublicKey: redeemed.ActiveKeys.PublicKey},
		CreatedAt:     time.Now().UTC(),

		TransferTransactionID: created.TransferTransactionID,
		RegisterTransactionID: created.RegisterTransactionID,
	}
	if created.RegisterTransactionID != "" {
		f.FIOName = req.FIOName
	}
	return f, nil
}

func (c *serverClient) post(ctx context.Context, path string, body any, wantStatus int, out any) error {
	reqBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(reqBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != wantStatus {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
