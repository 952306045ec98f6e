package main

import (
	"os"

	"github.com/inscription-c/custody/inscription"
	"github.com/inscription-c/custody/wallet/server"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "custody",
	Short: "custodial inscription tools, include the key server and the inscribe commands.",
}

func init() {
	rootCmd.AddCommand(server.Cmd)
	rootCmd.AddCommand(inscription.Cmd)
	rootCmd.AddCommand(inscription.AddressCmd)
	rootCmd.AddCommand(inscription.BalanceCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
