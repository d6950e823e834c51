// Command dirctl administers a directory backend: schema migrations,
// dataset imports and local sign-in accounts.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"centerdir/internal/adapters/storage/backend"
	"centerdir/internal/config"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "dirctl",
		Short:        "Research center directory administration",
		SilenceUsage: true,
	}
	root.AddCommand(
		newMigrateCmd(),
		newImportCmd(),
		newCreateAccountCmd(),
	)
	return root
}

// openBackend loads configuration and opens the configured stores.
func openBackend() (*backend.Backend, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return backend.Open(cfg, nil)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
