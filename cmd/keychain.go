package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heizence/securevault/internal/keychain"
)

var keychainCmd = &cobra.Command{
	Use:     "keychain",
	GroupID: "vault",
	Short:   "Inspect or clear the cached vault passphrase",
}

var keychainStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report whether a passphrase is cached and whether the OS keychain is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !keychain.Available() {
			fmt.Println("OS keychain backend: unavailable")
			return nil
		}
		fmt.Println("OS keychain backend: available")

		if _, err := keychain.New(vaultID()).Fetch(); err != nil {
			fmt.Println("cached passphrase: none")
		} else {
			fmt.Println("cached passphrase: present")
		}
		return nil
	},
}

var keychainForgetCmd = &cobra.Command{
	Use:   "forget",
	Short: "Remove any cached passphrase for this vault",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := keychain.New(vaultID()).Delete(); err != nil {
			return fmt.Errorf("clear cached passphrase: %w", err)
		}
		fmt.Println("cached passphrase removed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(keychainCmd)
	keychainCmd.AddCommand(keychainStatusCmd, keychainForgetCmd)
}
