package main

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/michaelbrown/codepad/internal/execution"
)

func callRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = "code_run"
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) != 1 {
		t.Fatalf("got %d content items, want 1", len(res.Content))
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want TextContent", res.Content[0])
	}
	return tc.Text
}

func TestCodeRunResolvesLanguage(t *testing.T) {
	var got execution.Request
	c := &codeRunner{
		runner: execution.RunnerFunc(func(ctx context.Context, req execution.Request) (*execution.Outcome, error) {
			got = req
			return &execution.Outcome{Stdout: execution.Text("3\n")}, nil
		}),
		catalog: execution.DefaultCatalog(),
	}

	tests := []struct {
		language string
		want     execution.LanguageID
	}{
		{"python", 71},
		{"JavaScript", execution.ScriptLanguage},
		{"999", 999},
	}
	for _, tt := range tests {
		res, err := c.handle(context.Background(), callRequest(map[string]any{
			"language": tt.language, "code": "print(3)", "stdin": "in",
		}))
		if err != nil {
			t.Fatal(err)
		}
		if res.IsError {
			t.Errorf("%s: unexpected error result %q", tt.language, resultText(t, res))
		}
		if got.Language != tt.want {
			t.Errorf("%s: language = %d, want %d", tt.language, got.Language, tt.want)
		}
		if got.Stdin != "in" {
			t.Errorf("%s: stdin = %q, want %q", tt.language, got.Stdin, "in")
		}
		if text := resultText(t, res); text != "3\n" {
			t.Errorf("%s: text = %q", tt.language, text)
		}
	}
}

func TestCodeRunStderr(t *testing.T) {
	c := &codeRunner{
		runner: execution.RunnerFunc(func(ctx context.Context, req execution.Request) (*execution.Outcome, error) {
			return &execution.Outcome{Stderr: execution.Text("boom")}, nil
		}),
		catalog: execution.DefaultCatalog(),
	}

	res, err := c.handle(context.Background(), callRequest(map[string]any{"language": "javascript", "code": "throw 1"}))
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Error("stderr outcome should be an error result")
	}
	if text := resultText(t, res); text != "STDERR:\nboom" {
		t.Errorf("text = %q", text)
	}
}

func TestCodeRunInvalidArguments(t *testing.T) {
	c := &codeRunner{
		runner: execution.RunnerFunc(func(ctx context.Context, req execution.Request) (*execution.Outcome, error) {
			t.Fatal("runner should not be called")
			return nil, nil
		}),
		catalog: execution.DefaultCatalog(),
	}

	for _, args := range []map[string]any{
		nil,
		{"language": "python"},
		{"language": "cobol", "code": "x"},
	} {
		res, err := c.handle(context.Background(), callRequest(args))
		if err != nil {
			t.Fatal(err)
		}
		if !res.IsError {
			t.Errorf("args %v: expected error result", args)
		}
	}
}

func TestCodeRunBackendFailure(t *testing.T) {
	c := &codeRunner{
		runner: execution.RunnerFunc(func(ctx context.Context, req execution.Request) (*execution.Outcome, error) {
			return nil, fmt.Errorf("judge backend: %w", execution.ErrTimedOut)
		}),
		catalog: execution.DefaultCatalog(),
	}

	res, err := c.handle(context.Background(), callRequest(map[string]any{"language": "python", "code": "x"}))
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError || !strings.Contains(resultText(t, res), "timed out") {
		t.Errorf("got %+v, want timed out error result", res)
	}
}
