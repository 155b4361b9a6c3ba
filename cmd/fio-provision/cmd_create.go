package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fioprotocol/fio-provisioner/internal/chain/eosclient"
	"github.com/fioprotocol/fio-provisioner/internal/keys"
	"github.com/fioprotocol/fio-provisioner/internal/names"
	"github.com/fioprotocol/fio-provisioner/internal/provisioning"
	"github.com/spf13/cobra"
)

var cmdCreate = &cobra.Command{
	Use:   "create",
	Short: "Create an account directly against a chain node",
	Args:  cobra.NoArgs,
	RunE:  runCreate,
}

var flagCreate struct {
	Config  string
	Creator string
	Out     string
	Force   bool
	Fund    string
	FIOName string
}

func init() {
	cmdMain.AddCommand(cmdCreate)

	cmdCreate.Flags().StringVarP(&flagCreate.Config, "config", "c", "", "Path to application.yaml")
	cmdCreate.Flags().StringVar(&flagCreate.Creator, "creator", "", "Account paying for the new account (defaults to config creator)")
	cmdCreate.Flags().StringVarP(&flagCreate.Out, "out", "o", "", "Write the account and its keys to this file instead of stdout")
	cmdCreate.Flags().BoolVar(&flagCreate.Force, "force", false, "Overwrite --out if it exists")
	cmdCreate.Flags().StringVar(&flagCreate.Fund, "fund", "", "Transfer this quantity from the creator (e.g., \"200.0000 FIO\"; defaults to config initial_transfer)")
	cmdCreate.Flags().StringVar(&flagCreate.FIOName, "fio-name", "", "Register this FIO domain or address for the new account")
}

func runCreate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(flagCreate.Config)
	if err != nil {
		return err
	}

	creator := flagCreate.Creator
	if creator == "" {
		creator = cfg.Creator
	}

	ob := provisioning.Onboarding{Quantity: flagCreate.Fund, FIOName: flagCreate.FIOName}
	if err := ob.Validate(); err != nil {
		return err
	}

	out, err := openAccountOutput(cmd.OutOrStdout(), flagCreate.Out, flagCreate.Force)
	if err != nil {
		return err
	}
	defer out.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := eosclient.New(ctx, cfg.Chain)
	if err != nil {
		return err
	}

	nameGen, err := names.NewGenerator(cfg.Provisioning.NameAlphabet)
	if err != nil {
		return err
	}
	svc := provisioning.NewService(
		cfg.Provisioning,
		client,
		keys.NewGenerator(cfg.Chain.KeyPrefix),
		nameGen,
		nil,
	)

	f, onboardErr := createAccount(ctx, svc, creator, ob)
	if f == nil {
		return onboardErr
	}
	if err := out.Write(f); err != nil {
		return err
	}
	return onboardErr
}

// createAccount provisions and onboards an account. A non-nil file is returned whenever the
// account exists, even if onboarding failed.
func createAccount(ctx context.Context, svc *provisioning.Service, creator string, ob provisioning.Onboarding) (*accountFile, error) {
	result, err := svc.CreateAccount(ctx, creator)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	f := &accountFile{
		AccountName: result.AccountName,
		Creator:     creator,
		Attempts:    result.Attempts,
		OwnerKeys:   result.OwnerKeys,
		ActiveKeys:  result.ActiveKeys,
		CreatedAt:   time.Now().UTC(),
	}
	if result.Receipt != nil {
		f.TransactionID = result.Receipt.TransactionID
	}

	onboarded, err := svc.Onboard(ctx, creator, result, ob)
	if onboarded != nil {
		f.TransferTransactionID = onboarded.TransferTransactionID
		f.RegisterTransactionID = onboarded.RegisterTransactionID
	}
	if err != nil {
		return f, fmt.Errorf("account %s created: %w", result.AccountName, err)
	}
	f.FIOName = ob.FIOName
	return f, nil
}
