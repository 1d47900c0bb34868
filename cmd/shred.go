package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var shredForce bool

var shredCmd = &cobra.Command{
	Use:     "shred <file>...",
	GroupID: "files",
	Short:   "Securely delete files",
	Long: `Shred overwrites each file with CSPRNG bytes in 1 MiB chunks, fsyncs
it, then deletes it. It needs no passphrase — destruction doesn't
depend on the vault being unlocked.

A single random-overwrite pass does not guarantee destruction on
modern SSDs or copy-on-write filesystems (wear-leveling and block
remapping can leave copies of the data elsewhere on the device); shred
does not claim forensic-grade erasure.

Press Ctrl+C to cancel between 1 MiB chunks. A cancelled file is left
with its partial overwrite in place and is NOT removed.`,
	Example: `  securevault shred report.docx photo.png`,
	Args:    cobra.MinimumNArgs(1),
	RunE:    runShred,
}

func init() {
	rootCmd.AddCommand(shredCmd)
	shredCmd.Flags().BoolVarP(&shredForce, "yes", "y", false, "skip the confirmation prompt")
}

func runShred(cmd *cobra.Command, args []string) error {
	if !shredForce {
		confirmed, err := promptYesNo(fmt.Sprintf("Permanently destroy %d file(s)?", len(args)), false)
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("aborted")
			return nil
		}
	}

	progress, errs := engine.SecureDeleteFiles(args)

	var done bool
	withCancelOnInterrupt(func() {
		done, _ = watchBatch(progress, errs)
	})
	if !done {
		return fmt.Errorf("secure delete stopped before completing; see messages above")
	}
	return nil
}
