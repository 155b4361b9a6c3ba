package main

import (
	"fmt"

	"github.com/fioprotocol/fio-provisioner/internal/keys"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var cmdKeygen = &cobra.Command{
	Use:   "keygen",
	Short: "Print a new keypair",
	Args:  cobra.NoArgs,
	RunE:  runKeygen,
}

var flagKeygen struct {
	Prefix string
}

func init() {
	cmdMain.AddCommand(cmdKeygen)

	cmdKeygen.Flags().StringVar(&flagKeygen.Prefix, "prefix", keys.DefaultPrefix, "Public key prefix")
}

func runKeygen(cmd *cobra.Command, args []string) error {
	kp, err := keys.NewGenerator(flagKeygen.Prefix).Generate()
	if err != nil {
		return err
	}

	out, err := yaml.Marshal(kp)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), string(out))
	return err
}
