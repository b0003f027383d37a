package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/michaelbrown/codepad/internal/execution"
)

// errRunFailed makes the process exit non-zero without printing anything
// beyond the program's own stderr.
var errRunFailed = errors.New("run produced stderr")

var (
	langFlag  string
	stdinFlag string
)

var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Run a source file",
	Long: `Run a source file on the backend for its language.

The language is inferred from the file extension unless --lang is given.
JavaScript runs in the local sandbox; other languages go to the judge.

Examples:
  codepad run hello.js
  codepad run main.py --stdin input.txt
  codepad run prog.txt --lang 71`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&langFlag, "lang", "", "Language name or numeric id (default: from file extension)")
	runCmd.Flags().StringVar(&stdinFlag, "stdin", "", "File whose contents are passed as standard input")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	_, log, backends, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	source, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	lang, err := resolveLanguage(backends.Catalog, langFlag, args[0])
	if err != nil {
		return err
	}

	var stdin string
	if stdinFlag != "" {
		data, err := os.ReadFile(stdinFlag)
		if err != nil {
			return fmt.Errorf("reading stdin file: %w", err)
		}
		stdin = string(data)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out, err := backends.Dispatcher.Run(ctx, execution.Request{
		Source:   string(source),
		Language: lang,
		Stdin:    stdin,
	})
	if err != nil {
		return err
	}

	printOutcome(cmd.OutOrStdout(), cmd.ErrOrStderr(), out)
	if out.Failed() {
		return errRunFailed
	}
	return nil
}

func resolveLanguage(catalog *execution.Catalog, flag, path string) (execution.LanguageID, error) {
	if flag != "" {
		id, ok := catalog.Resolve(flag)
		if !ok || id <= 0 {
			return 0, fmt.Errorf("unknown language %q", flag)
		}
		return id, nil
	}
	id, ok := catalog.ForFile(path)
	if !ok {
		return 0, fmt.Errorf("cannot infer language of %s; use --lang", path)
	}
	return id, nil
}

// printOutcome writes stdout plainly and stderr in red. A judge verdict other
// than a clean run is noted after the output.
func printOutcome(stdout, stderr io.Writer, out *execution.Outcome) {
	if out.Stdout != nil {
		fmt.Fprint(stdout, *out.Stdout)
	}
	if out.Stderr != nil {
		red := color.New(color.FgRed)
		red.Fprint(stderr, *out.Stderr)
		if len(*out.Stderr) > 0 && (*out.Stderr)[len(*out.Stderr)-1] != '\n' {
			fmt.Fprintln(stderr)
		}
	}
	if out.Status != nil && out.Failed() {
		faint := color.New(color.Faint)
		faint.Fprintf(stderr, "[%s] %s\n", out.Backend, out.Status.Description)
	}
}
