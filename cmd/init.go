package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heizence/securevault/internal/crypto"
	"github.com/heizence/securevault/internal/keychain"
	"github.com/heizence/securevault/internal/security"
	"github.com/heizence/securevault/internal/vaulterr"
)

var initUseKeychain bool

var initCmd = &cobra.Command{
	Use:     "init",
	GroupID: "vault",
	Short:   "Create a new vault",
	Long: `Init generates a fresh master data-encryption key, wraps it under a
passphrase you provide, and writes the wrapped key to this vault's key
file. The passphrase itself is never stored; only the wrapped key is.

Init refuses to run when a key file already exists at the configured
location; "securevault status" reports whether one is there.`,
	Example: `  securevault init
  securevault init --use-keychain`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initUseKeychain, "use-keychain", false, "cache the passphrase in the OS keychain")
}

func runInit(cmd *cobra.Command, args []string) error {
	if engine.VaultExists() {
		return fmt.Errorf("a vault already exists at %s", cfg.KeyFilePath)
	}

	fmt.Printf("Creating vault at %s\n", cfg.KeyFilePath)
	fmt.Print("Enter a new passphrase (min 12 characters, mixed case, digit, symbol): ")
	passphrase, err := readPassword()
	if err != nil {
		return fmt.Errorf("read passphrase: %w", err)
	}
	fmt.Println()
	defer crypto.ClearBytes(passphrase)

	switch strength := security.DefaultPolicy.Strength(passphrase); strength {
	case security.StrengthWeak:
		fmt.Println("passphrase strength: weak")
	case security.StrengthMedium:
		fmt.Println("passphrase strength: medium")
	case security.StrengthStrong:
		fmt.Println("passphrase strength: strong")
	}

	fmt.Print("Confirm passphrase: ")
	confirm, err := readPassword()
	if err != nil {
		return fmt.Errorf("read confirmation: %w", err)
	}
	fmt.Println()
	defer crypto.ClearBytes(confirm)

	if string(passphrase) != string(confirm) {
		return fmt.Errorf("passphrases do not match")
	}

	if err := engine.CreateVault(passphrase); err != nil {
		if vaulterr.Is(err, vaulterr.KeyDerivation) {
			return fmt.Errorf("passphrase rejected: %w", err)
		}
		return fmt.Errorf("create vault: %w", err)
	}

	if err := cfg.SaveConfigFile(); err != nil {
		fmt.Printf("warning: could not write config file: %v\n", err)
	}

	if !cmd.Flags().Changed("use-keychain") {
		initUseKeychain, _ = promptYesNo("Cache this passphrase in the OS keychain?", false)
	}
	if initUseKeychain {
		if err := keychain.New(vaultID()).Store(passphrase); err != nil {
			fmt.Printf("warning: could not cache passphrase in keychain: %v\n", err)
		} else {
			fmt.Println("passphrase cached in OS keychain")
		}
	}

	fmt.Println("vault created and unlocked")
	return nil
}
