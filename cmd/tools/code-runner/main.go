package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/michaelbrown/codepad/internal/app"
	"github.com/michaelbrown/codepad/internal/config"
	"github.com/michaelbrown/codepad/internal/execution"
	"github.com/michaelbrown/codepad/internal/logging"
)

const maxResultText = 4000

func main() {
	cfg, err := config.Load(os.Getenv("CODEPAD_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}
	// stdout carries the protocol; zap writes to stderr unless configured otherwise
	log, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "creating logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	backends, err := app.NewBackends(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "creating backends: %v\n", err)
		os.Exit(1)
	}

	t := &codeRunner{runner: backends.Dispatcher, catalog: backends.Catalog}

	s := server.NewMCPServer("codepad-code-runner", "0.1.0")
	s.AddTool(t.tool(), t.handle)

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
	}
}

type codeRunner struct {
	runner  execution.Runner
	catalog *execution.Catalog
}

func (c *codeRunner) tool() mcp.Tool {
	var names []string
	for _, l := range c.catalog.Languages() {
		names = append(names, l.Name)
	}

	return mcp.Tool{
		Name: "code_run",
		Description: fmt.Sprintf("Execute code. JavaScript runs in a local sandbox, other languages on a remote judge. Supported languages: %s.",
			strings.Join(names, ", ")),
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"language": map[string]any{
					"type":        "string",
					"description": "Language name (" + strings.Join(names, ", ") + ") or judge language id",
				},
				"code": map[string]any{
					"type":        "string",
					"description": "Source code to execute",
				},
				"stdin": map[string]any{
					"type":        "string",
					"description": "Standard input to provide to the program (optional)",
				},
			},
			Required: []string{"language", "code"},
		},
	}
}

func (c *codeRunner) handle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]any)
	if args == nil {
		return errResult("error: invalid arguments"), nil
	}

	language, _ := args["language"].(string)
	code, _ := args["code"].(string)
	stdin, _ := args["stdin"].(string)

	if language == "" || code == "" {
		return errResult("error: 'language' and 'code' are required"), nil
	}

	id, ok := c.catalog.Resolve(language)
	if !ok || id <= 0 {
		return errResult(fmt.Sprintf("error: unsupported language %q", language)), nil
	}

	out, err := c.runner.Run(ctx, execution.Request{Source: code, Language: id, Stdin: stdin})
	if err != nil {
		if errors.Is(err, execution.ErrTimedOut) {
			return errResult("error: execution timed out"), nil
		}
		return errResult(fmt.Sprintf("error: %v", err)), nil
	}

	var text string
	if out.Failed() {
		text = "STDERR:\n" + out.StderrText()
	} else {
		text = out.StdoutText()
	}
	if len(text) > maxResultText {
		text = text[:maxResultText] + "\n... (output truncated)"
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: text}},
		IsError: out.Failed(),
	}, nil
}

func errResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: text}},
		IsError: true,
	}
}
