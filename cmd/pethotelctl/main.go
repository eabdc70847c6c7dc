// Command pethotelctl prices bookings and checks inputs against a catalog file
// without running the server.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var catalogPath string

	cmd := &cobra.Command{
		Use:   "pethotelctl",
		Short: "Pet hotel and pet taxi booking tools",
		Long: `Offline tools for the booking core.

Examples:
  pethotelctl catalog list
  pethotelctl quote hotel --room room-deluxe-1 --check-in 2026-11-01 --check-out 2026-11-04
  pethotelctl quote vip --service taxi-vip --from Istanbul --to Ankara --round-trip
  pethotelctl quote shared --schedule run-ist-ank-1 --seats 2
  pethotelctl card check 4532015112830366 --expiry 12/28
`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&catalogPath, "catalog", "catalog.yaml", "Catalog file")

	cmd.AddCommand(catalogCmd(&catalogPath))
	cmd.AddCommand(quoteCmd(&catalogPath))
	cmd.AddCommand(cardCmd())

	return cmd
}
