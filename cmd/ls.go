package cmd

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var lsCmd = &cobra.Command{
	Use:     "ls <directory>",
	GroupID: "files",
	Short:   "List files under a directory recursively",
	Long: `Ls enumerates every regular file found under the given directory,
depth-first, following symlinks. It's the usual way to build the file
list you then pass to encrypt, decrypt, or shred.`,
	Example: `  securevault ls ./documents`,
	Args:    cobra.ExactArgs(1),
	RunE:    runLs,
}

func init() {
	rootCmd.AddCommand(lsCmd)
}

func runLs(cmd *cobra.Command, args []string) error {
	files, err := engine.GetFilesInDirRecursive(args[0])
	if err != nil {
		return fmt.Errorf("list files: %w", err)
	}
	if len(files) == 0 {
		fmt.Println("no files found")
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header([]string{"#", "Path"})

	rows := make([][]string, len(files))
	for i, f := range files {
		rows[i] = []string{fmt.Sprintf("%d", i+1), f}
	}
	if err := table.Bulk(rows); err != nil {
		return fmt.Errorf("build table: %w", err)
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("render table: %w", err)
	}
	fmt.Printf("\n%d file(s)\n", len(files))
	return nil
}
