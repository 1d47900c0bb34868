package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heizence/securevault/internal/fsutil"
)

var encryptDest string

var encryptCmd = &cobra.Command{
	Use:     "encrypt <file>...",
	GroupID: "files",
	Short:   "Encrypt one or more files",
	Long: `Encrypt reads each file whole into memory, seals it under the
vault's master key with a fresh nonce, and writes
<dest>/<basename(file)>.enc. Source files are left untouched — encrypt
never deletes anything; pair it with "shred" if you want the
originals gone afterward.

Press Ctrl+C to request cancellation; the file currently in flight
still finishes, but no further file is started.`,
	Example: `  securevault encrypt report.docx --dest ./encrypted
  securevault encrypt *.jpg --dest ./encrypted`,
	Args: cobra.MinimumNArgs(1),
	RunE: runEncrypt,
}

func init() {
	rootCmd.AddCommand(encryptCmd)
	encryptCmd.Flags().StringVar(&encryptDest, "dest", "", "destination directory for encrypted output (required)")
	_ = encryptCmd.MarkFlagRequired("dest")
}

func runEncrypt(cmd *cobra.Command, args []string) error {
	if err := ensureUnlocked(); err != nil {
		return err
	}
	if err := fsutil.NewOSFileSystem().MkdirAll(encryptDest, 0700); err != nil {
		return fmt.Errorf("create destination directory: %w", err)
	}

	progress, errs, err := engine.EncryptFiles(args, encryptDest)
	if err != nil {
		return fmt.Errorf("encrypt files: %w", err)
	}

	var done bool
	withCancelOnInterrupt(func() {
		done, _ = watchBatch(progress, errs)
	})
	if !done {
		return fmt.Errorf("encryption stopped before completing; see messages above")
	}
	return nil
}
