package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	tuidash "github.com/heizence/securevault/cmd/tui"
	"github.com/heizence/securevault/internal/batch"
	"github.com/heizence/securevault/internal/fsutil"
)

var tuiDest string

var tuiCmd = &cobra.Command{
	Use:     "tui",
	GroupID: "files",
	Short:   "Run a batch operation with a live tview dashboard",
	Long: `Tui runs encrypt, decrypt, or shred the same way the plain commands
do, but renders progress through a full-screen tview dashboard instead
of line-buffered colored output. It's a second listener on the same
progress/error channels — nothing about the underlying operation
changes.`,
}

var tuiEncryptCmd = &cobra.Command{
	Use:   "encrypt <file>...",
	Short: "Encrypt files with a live dashboard",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureUnlocked(); err != nil {
			return err
		}
		if err := fsutil.NewOSFileSystem().MkdirAll(tuiDest, 0700); err != nil {
			return fmt.Errorf("create destination directory: %w", err)
		}
		progress, errs, err := engine.EncryptFiles(args, tuiDest)
		if err != nil {
			return fmt.Errorf("encrypt files: %w", err)
		}
		return runDashboard("encrypt", progress, errs)
	},
}

var tuiDecryptCmd = &cobra.Command{
	Use:   "decrypt <file.enc>...",
	Short: "Decrypt files with a live dashboard",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureUnlocked(); err != nil {
			return err
		}
		if err := fsutil.NewOSFileSystem().MkdirAll(tuiDest, 0700); err != nil {
			return fmt.Errorf("create destination directory: %w", err)
		}
		progress, errs, err := engine.DecryptFiles(args, tuiDest)
		if err != nil {
			return fmt.Errorf("decrypt files: %w", err)
		}
		return runDashboard("decrypt", progress, errs)
	},
}

var tuiShredCmd = &cobra.Command{
	Use:   "shred <file>...",
	Short: "Securely delete files with a live dashboard",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		progress, errs := engine.SecureDeleteFiles(args)
		return runDashboard("shred", progress, errs)
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
	tuiCmd.AddCommand(tuiEncryptCmd, tuiDecryptCmd, tuiShredCmd)

	tuiEncryptCmd.Flags().StringVar(&tuiDest, "dest", "", "destination directory (required)")
	_ = tuiEncryptCmd.MarkFlagRequired("dest")
	tuiDecryptCmd.Flags().StringVar(&tuiDest, "dest", "", "destination directory (required)")
	_ = tuiDecryptCmd.MarkFlagRequired("dest")
}

func runDashboard(label string, progress <-chan batch.ProgressEvent, errs <-chan batch.ErrorEvent) error {
	dash := tuidash.NewDashboard(label, func() { engine.CancelOperation() })
	return dash.Run(progress, errs)
}
