package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/michaelbrown/codepad/internal/execution"
)

var replLangFlag string

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive run loop",
	Long: `Start an interactive loop that runs each entered line as its own program.

Nothing is shared between runs: every line (or block) starts from a clean
environment. Type .block to enter several lines and .run to execute them.

Examples:
  codepad repl
  codepad repl --lang python`,
	RunE: runRepl,
}

func init() {
	replCmd.Flags().StringVar(&replLangFlag, "lang", "javascript", "Language name or numeric id")
	rootCmd.AddCommand(replCmd)
}

func runRepl(cmd *cobra.Command, args []string) error {
	_, log, backends, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	lang, err := resolveLanguage(backends.Catalog, replLangFlag, "")
	if err != nil {
		return err
	}
	name := replLangFlag
	if l, ok := backends.Catalog.Lookup(lang); ok {
		name = l.Name
	}

	fmt.Printf("Codepad - %s (%s backend)\n", name, execution.BackendFor(lang))
	fmt.Printf("Type .help for commands, .quit to exit\n\n")

	prompt := color.New(color.FgCyan).Sprint(name + ">") + " "
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     filepath.Join(os.TempDir(), "codepad_history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("readline: %w", err)
	}
	defer rl.Close()

	// Ctrl+C cancels the active run, not the whole loop
	var active activeRun
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		for range sigCh {
			active.cancel()
		}
	}()

	var block []string
	inBlock := false

	for {
		input, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt || err == io.EOF {
				fmt.Println("\nGoodbye!")
				return nil
			}
			return err
		}

		trimmed := strings.TrimSpace(input)
		var source string

		switch {
		case trimmed == ".quit" || trimmed == ".exit":
			fmt.Println("Goodbye!")
			return nil
		case trimmed == ".help":
			printReplHelp()
			continue
		case trimmed == ".block":
			inBlock = true
			block = block[:0]
			rl.SetPrompt("... ")
			continue
		case inBlock && trimmed == ".run":
			inBlock = false
			rl.SetPrompt(prompt)
			source = strings.Join(block, "\n")
		case inBlock:
			block = append(block, input)
			continue
		case trimmed == "":
			continue
		default:
			source = input
		}

		reqCtx, cancel := context.WithCancel(context.Background())
		active.set(cancel)

		out, err := backends.Dispatcher.Run(reqCtx, execution.Request{Source: source, Language: lang})
		wasInterrupted := reqCtx.Err() != nil
		active.set(nil)
		cancel()

		if err != nil {
			if wasInterrupted {
				fmt.Println("(interrupted)")
				continue
			}
			color.New(color.FgRed).Printf("error: %s\n", err)
			continue
		}
		printOutcome(os.Stdout, os.Stdout, out)
	}
}

// activeRun holds the cancel func of the run in progress. The signal
// goroutine and the read loop both touch it.
type activeRun struct {
	mu sync.Mutex
	fn context.CancelFunc
}

func (a *activeRun) set(fn context.CancelFunc) {
	a.mu.Lock()
	a.fn = fn
	a.mu.Unlock()
}

// cancel aborts the current run, if any.
func (a *activeRun) cancel() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.fn != nil {
		a.fn()
	}
}

func printReplHelp() {
	fmt.Println("Commands:")
	fmt.Println("  .block  - Start a multi-line program")
	fmt.Println("  .run    - Run the current block")
	fmt.Println("  .help   - Show this help")
	fmt.Println("  .quit   - Exit")
	fmt.Println()
}
