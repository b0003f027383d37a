package sandbox

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// ExecOpts describes a script execution request.
type ExecOpts struct {
	Code    string   // Script source
	Stdin   string   // Standard input, where the sandbox can provide one
	Image   string   // Container image override (docker mode only)
	Command []string // Command override (docker mode only)
}

// ExecResult is the output of a sandboxed execution.
type ExecResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Sandbox runs script code in an isolated environment.
type Sandbox interface {
	Exec(ctx context.Context, opts ExecOpts) (*ExecResult, error)
}

// Mode selects the sandbox implementation.
type Mode string

const (
	// ModeEmbedded evaluates scripts in a fresh in-process engine per run.
	ModeEmbedded Mode = "embedded"
	// ModeDocker runs scripts with node inside a throwaway container.
	ModeDocker Mode = "docker"
)

// New returns the sandbox for mode.
func New(mode Mode, policy Policy, log *zap.Logger) (Sandbox, error) {
	switch mode {
	case "", ModeEmbedded:
		return NewScriptSandbox(policy, log), nil
	case ModeDocker:
		return NewDockerSandbox(policy, log), nil
	default:
		return nil, fmt.Errorf("unknown sandbox mode %q", mode)
	}
}
