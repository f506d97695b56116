// Package main provides the crmdash binary: the dashboard server plus small
// operator commands that act on the shared session store.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sarusarang/crm-extexhnology/internal/config"
)

var configPath string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "crmdash",
		Short:         "CRM dashboard server and session tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file (optional)")

	root.AddCommand(newServeCmd())
	root.AddCommand(newWhoamiCmd())
	root.AddCommand(newLogoutCmd())
	root.AddCommand(newMktokenCmd())
	return root
}

func loadConfig() (config.Config, error) {
	if configPath == "" {
		return config.New(), nil
	}
	return config.Load(configPath)
}
