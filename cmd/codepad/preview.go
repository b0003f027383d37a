package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/michaelbrown/codepad/internal/preview"
)

var (
	previewOutput string
	frameFlag     bool
	watchFlag     bool
)

var previewCmd = &cobra.Command{
	Use:   "preview <dir>",
	Short: "Compose a project directory into one html document",
	Long: `Compose the html, css and js files of a directory into a single document.

Files are picked from project.yaml when present, otherwise the first
*.html, *.css and *.js files are used. With --frame the document is wrapped
in a sandboxed iframe page, which is how it should be opened in a browser.

Examples:
  codepad preview ./site
  codepad preview ./site --frame -o preview.html
  codepad preview ./site -o preview.html --watch`,
	Args: cobra.ExactArgs(1),
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().StringVarP(&previewOutput, "output", "o", "", "Output file (default: stdout)")
	previewCmd.Flags().BoolVar(&frameFlag, "frame", false, "Wrap the document in a sandboxed iframe page")
	previewCmd.Flags().BoolVar(&watchFlag, "watch", false, "Recompose whenever a file in the directory changes (requires -o)")
	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, args []string) error {
	dir := args[0]

	if watchFlag && previewOutput == "" {
		return fmt.Errorf("--watch requires --output")
	}

	if err := writePreview(dir, previewOutput, frameFlag); err != nil {
		return err
	}
	if !watchFlag {
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(os.Stderr, "Watching %s (Ctrl+C to stop)\n", dir)
	return watchDir(ctx, dir, previewOutput, func() {
		if err := writePreview(dir, previewOutput, frameFlag); err != nil {
			fmt.Fprintf(os.Stderr, "preview: %v\n", err)
			return
		}
		fmt.Fprintf(os.Stderr, "%s  updated %s\n", time.Now().Format("15:04:05"), previewOutput)
	})
}

// composeDir loads dir and returns its composed document. Paths in exclude
// are never picked as artifacts.
func composeDir(dir string, frame bool, exclude ...string) (string, error) {
	set, name, err := preview.LoadDir(dir, exclude...)
	if err != nil {
		return "", err
	}
	doc := preview.Compose(set)
	if frame {
		doc = preview.FramePage(name, doc)
	}
	return doc, nil
}

func writePreview(dir, output string, frame bool) error {
	if output == "" {
		doc, err := composeDir(dir, frame)
		if err != nil {
			return err
		}
		fmt.Print(doc)
		return nil
	}

	// The output may live inside dir; it must not feed back in as the page.
	doc, err := composeDir(dir, frame, output)
	if err != nil {
		return err
	}
	return os.WriteFile(output, []byte(doc), 0o644)
}

// watchDir calls onChange after file changes in dir settle. Events for the
// output file itself are ignored so writing it does not retrigger.
func watchDir(ctx context.Context, dir, output string, onChange func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	outAbs, _ := filepath.Abs(output)

	const settle = 100 * time.Millisecond
	timer := time.NewTimer(settle)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if abs, _ := filepath.Abs(ev.Name); abs == outAbs {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(settle)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "watch error: %v\n", err)

		case <-timer.C:
			onChange()
		}
	}
}
