package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var AppVersion string

var cmdMain = &cobra.Command{
	Use:           "fio-provision",
	Short:         "Create FIO accounts",
	Version:       AppVersion,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initLogger(flagMain.LogLevel)
	},
}

var flagMain struct {
	LogLevel string
}

func init() {
	cmdMain.PersistentFlags().StringVar(&flagMain.LogLevel, "log-level", LOG_LEVEL_WARNING, "Log level (ERROR, WARNING, INFO, DEBUG)")
}

func main() {
	if err := cmdMain.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
