package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/michaelbrown/codepad/internal/preview"
)

var archiveOutput string

var archiveCmd = &cobra.Command{
	Use:   "archive <dir>",
	Short: "Package a project directory's html, css and js files as a zip",
	Long: `Package the raw artifacts of a project directory into a zip file.

Entries are named <name>.html, <name>.css and <name>.js with their original
content; nothing is composed.

Examples:
  codepad archive ./site
  codepad archive ./site -o site.zip`,
	Args: cobra.ExactArgs(1),
	RunE: runArchive,
}

func init() {
	archiveCmd.Flags().StringVarP(&archiveOutput, "output", "o", "", "Output file (default: <project>.zip)")
	rootCmd.AddCommand(archiveCmd)
}

func runArchive(cmd *cobra.Command, args []string) error {
	set, name, err := preview.LoadDir(args[0])
	if err != nil {
		return err
	}
	if set.Empty() {
		return fmt.Errorf("no html, css or js files in %s", args[0])
	}

	out := archiveOutput
	if out == "" {
		out = name + ".zip"
	}
	return writeArchive(out, set)
}

func writeArchive(path string, set preview.ArtifactSet) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := preview.Archive(f, set); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}
