package main

import (
	"errors"
	"fmt"

	"github.com/fioprotocol/fio-provisioner/internal/keys"
	"github.com/fioprotocol/fio-provisioner/internal/names"
	"github.com/spf13/cobra"
)

var cmdVerify = &cobra.Command{
	Use:   "verify <file>",
	Short: "Check that an account file's private keys match its public keys",
	Args:  cobra.ExactArgs(1),
	RunE:  runVerify,
}

func init() {
	cmdMain.AddCommand(cmdVerify)
}

func runVerify(cmd *cobra.Command, args []string) error {
	f, err := readAccountFile(args[0])
	if err != nil {
		return err
	}
	if err := verifyAccountFile(f); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: keys OK\n", f.AccountName)
	return nil
}

func verifyAccountFile(f *accountFile) error {
	if err := names.Validate(f.AccountName); err != nil {
		return err
	}

	var errs []error
	for _, kp := range []struct {
		role string
		pair keys.Keypair
	}{
		{"owner", f.OwnerKeys},
		{"active", f.ActiveKeys},
	} {
		prefix, _, err := keys.DecodePublicKey(kp.pair.PublicKey)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s public key: %w", kp.role, err))
			continue
		}
		pub, err := keys.PublicKeyFromWIF(kp.pair.PrivateKey, prefix)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s private key: %w", kp.role, err))
			continue
		}
		if pub != kp.pair.PublicKey {
			errs = append(errs, fmt.Errorf("%s private key does not match %s", kp.role, kp.pair.PublicKey))
		}
	}
	return errors.Join(errs...)
}
