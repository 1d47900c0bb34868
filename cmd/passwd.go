package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heizence/securevault/internal/crypto"
	"github.com/heizence/securevault/internal/keychain"
	"github.com/heizence/securevault/internal/vaulterr"
)

var passwdCmd = &cobra.Command{
	Use:     "passwd",
	GroupID: "vault",
	Short:   "Change the vault's passphrase",
	Long: `Passwd re-wraps the existing master key under a freshly derived
key-encryption-key. The master key itself never changes, so every file
you've already encrypted stays readable after the passphrase change —
nothing gets re-encrypted.`,
	Example: `  securevault passwd`,
	RunE:    runPasswd,
}

func init() {
	rootCmd.AddCommand(passwdCmd)
}

func runPasswd(cmd *cobra.Command, args []string) error {
	fmt.Print("Enter current passphrase: ")
	oldPass, err := readPassword()
	if err != nil {
		return fmt.Errorf("read current passphrase: %w", err)
	}
	fmt.Println()
	defer crypto.ClearBytes(oldPass)

	fmt.Print("Enter new passphrase: ")
	newPass, err := readPassword()
	if err != nil {
		return fmt.Errorf("read new passphrase: %w", err)
	}
	fmt.Println()
	defer crypto.ClearBytes(newPass)

	fmt.Print("Confirm new passphrase: ")
	confirm, err := readPassword()
	if err != nil {
		return fmt.Errorf("read confirmation: %w", err)
	}
	fmt.Println()
	defer crypto.ClearBytes(confirm)

	if string(newPass) != string(confirm) {
		return fmt.Errorf("new passphrases do not match")
	}

	if err := engine.ChangePassword(oldPass, newPass); err != nil {
		if vaulterr.Is(err, vaulterr.WrongPassword) {
			return fmt.Errorf("wrong current passphrase")
		}
		return fmt.Errorf("change passphrase: %w", err)
	}

	// A cached passphrase would otherwise silently fail every future
	// unlock; drop it rather than leave a stale secret behind.
	if err := keychain.New(vaultID()).Delete(); err != nil {
		fmt.Printf("warning: could not clear cached passphrase: %v\n", err)
	}

	fmt.Println("passphrase changed; existing encrypted files remain readable under the new passphrase")
	return nil
}
