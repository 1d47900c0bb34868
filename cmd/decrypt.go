package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heizence/securevault/internal/fsutil"
)

var decryptDest string

var decryptCmd = &cobra.Command{
	Use:     "decrypt <file.enc>...",
	GroupID: "files",
	Short:   "Decrypt one or more encrypted files",
	Long: `Decrypt reads each file whole into memory, verifies and opens it
under the vault's master key, and writes
<dest>/<basename(file) minus ".enc">. Every input file's name must end
in ".enc" — that's how decrypt derives the output name, not just a
cosmetic hint on this side of the round trip.

A file whose ciphertext or nonce has been tampered with fails
authentication and is reported as corrupt, not silently truncated.`,
	Example: `  securevault decrypt ./encrypted/report.docx.enc --dest ./restored`,
	Args:    cobra.MinimumNArgs(1),
	RunE:    runDecrypt,
}

func init() {
	rootCmd.AddCommand(decryptCmd)
	decryptCmd.Flags().StringVar(&decryptDest, "dest", "", "destination directory for decrypted output (required)")
	_ = decryptCmd.MarkFlagRequired("dest")
}

func runDecrypt(cmd *cobra.Command, args []string) error {
	if err := ensureUnlocked(); err != nil {
		return err
	}
	if err := fsutil.NewOSFileSystem().MkdirAll(decryptDest, 0700); err != nil {
		return fmt.Errorf("create destination directory: %w", err)
	}

	progress, errs, err := engine.DecryptFiles(args, decryptDest)
	if err != nil {
		return fmt.Errorf("decrypt files: %w", err)
	}

	var done bool
	withCancelOnInterrupt(func() {
		done, _ = watchBatch(progress, errs)
	})
	if !done {
		return fmt.Errorf("decryption stopped before completing; see messages above")
	}
	return nil
}
