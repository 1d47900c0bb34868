package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:     "status",
	GroupID: "vault",
	Short:   "Report whether a vault exists at the configured location",
	Long: `Status is the CLI's realization of the vault_exists host operation:
it never unlocks anything, it just checks whether a key file is
present, so you can decide between "init" and "unlock" before running
either ("init" itself refuses to run when a key file is present).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if engine.VaultExists() {
			fmt.Printf("vault exists at %s\n", cfg.KeyFilePath)
		} else {
			fmt.Printf("no vault at %s\n", cfg.KeyFilePath)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
