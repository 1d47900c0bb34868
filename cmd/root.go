package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/heizence/securevault/internal/fsutil"
	"github.com/heizence/securevault/internal/hostapi"
	"github.com/heizence/securevault/internal/hostconfig"
	"github.com/heizence/securevault/internal/security"
)

var (
	cfgDirFlag string
	verbose    bool
	noAudit    bool

	// version information, set via ldflags during build
	version = "dev"
	commit  = "none"
	date    = "unknown"

	rootCmd = &cobra.Command{
		Use:   "securevault",
		Short: "A password-protected file encryption vault",
		Long: `securevault is a local, offline file-encryption vault. It derives a
key-encryption-key from a passphrase via Argon2id, uses it to wrap a
256-bit master key, and uses that master key to authenticate-encrypt
whole files with AES-256-GCM.

Nothing ever leaves this machine: there is no cloud sync and no key
sharing. A vault is one key file plus however many ".enc" files you
choose to create from it.

Examples:
  # Create a new vault
  securevault init

  # Encrypt a batch of files
  securevault encrypt report.docx photo.png --dest ./encrypted

  # Decrypt them back
  securevault decrypt ./encrypted/report.docx.enc --dest ./restored

  # Destroy the originals beyond casual recovery
  securevault shred report.docx photo.png`,
		PersistentPreRunE: loadConfig,
	}

	cfg    *hostconfig.Config
	engine *hostapi.Engine
)

// Execute runs the root command, exiting non-zero on any returned error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgDirFlag, "config-dir", "", "vault config directory (default: $XDG_CONFIG_HOME/securevault)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&noAudit, "no-audit", false, "disable tamper-evident audit logging for this invocation")
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddGroup(
		&cobra.Group{ID: "vault", Title: "Vault Lifecycle:"},
		&cobra.Group{ID: "files", Title: "File Operations:"},
		&cobra.Group{ID: "utilities", Title: "Utilities:"},
	)
}

// loadConfig resolves the config directory and constructs the shared
// Engine every subcommand operates on. Lightweight commands skip it
// entirely via cobra.Command.Name() checks below.
func loadConfig(cmd *cobra.Command, args []string) error {
	switch cmd.Name() {
	case "version", "help":
		return nil
	}

	var err error
	cfg, err = hostconfig.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfgDirFlag != "" {
		cfg.ConfigDir = cfgDirFlag
		cfg.KeyFilePath = filepath.Join(cfgDirFlag, "vault.key")
	}
	if err := cfg.EnsureConfigDir(); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	engine = hostapi.New(fsutil.NewOSFileSystem(), cfg.KeyFilePath)
	if !noAudit {
		logger, err := security.NewLogger(filepath.Join(cfg.ConfigDir, "audit.log"), vaultID())
		if err == nil {
			engine.SetAuditLogger(logger)
		} else if verbose {
			fmt.Fprintf(os.Stderr, "warning: audit logging unavailable: %v\n", err)
		}
	}
	return nil
}

// vaultID scopes keychain and audit-log entries to this vault's config
// directory, so multiple vaults on one machine don't collide.
func vaultID() string {
	if cfg == nil {
		return "default"
	}
	return cfg.ConfigDir
}
