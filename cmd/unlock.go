package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heizence/securevault/internal/crypto"
	"github.com/heizence/securevault/internal/keychain"
	"github.com/heizence/securevault/internal/vaulterr"
)

var (
	unlockUseKeychain bool
	unlockForget      bool
)

var unlockCmd = &cobra.Command{
	Use:     "unlock",
	GroupID: "vault",
	Short:   "Verify a vault's passphrase",
	Long: `Unlock reads the key file, derives a key-encryption-key from the
passphrase you provide, and verifies it against the wrapped master key.

Since every securevault command runs as its own process, unlock's only
lasting effect is the OS keychain cache it can optionally populate with
--use-keychain: later encrypt/decrypt invocations will pick up a
cached passphrase instead of prompting, until "securevault unlock --forget"
clears it.`,
	Example: `  securevault unlock
  securevault unlock --use-keychain
  securevault unlock --forget`,
	RunE: runUnlock,
}

func init() {
	rootCmd.AddCommand(unlockCmd)
	unlockCmd.Flags().BoolVar(&unlockUseKeychain, "use-keychain", false, "cache the passphrase in the OS keychain on success")
	unlockCmd.Flags().BoolVar(&unlockForget, "forget", false, "remove any cached passphrase from the OS keychain")
}

func runUnlock(cmd *cobra.Command, args []string) error {
	cache := keychain.New(vaultID())

	if unlockForget {
		if err := cache.Delete(); err != nil {
			return fmt.Errorf("forget cached passphrase: %w", err)
		}
		fmt.Println("cached passphrase removed")
		return nil
	}

	fmt.Print("Enter passphrase: ")
	passphrase, err := readPassword()
	if err != nil {
		return fmt.Errorf("read passphrase: %w", err)
	}
	fmt.Println()
	defer crypto.ClearBytes(passphrase)

	if err := engine.UnlockVault(passphrase); err != nil {
		if vaulterr.Is(err, vaulterr.WrongPassword) {
			return fmt.Errorf("wrong passphrase")
		}
		return fmt.Errorf("unlock vault: %w", err)
	}
	fmt.Println("passphrase verified")

	if unlockUseKeychain {
		if err := cache.Store(passphrase); err != nil {
			fmt.Printf("warning: could not cache passphrase in keychain: %v\n", err)
		} else {
			fmt.Println("passphrase cached in OS keychain")
		}
	}
	return nil
}
