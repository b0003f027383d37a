package sandbox

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/michaelbrown/codepad/internal/execution"
	"github.com/michaelbrown/codepad/internal/logging"
)

// DockerSandbox runs scripts in throwaway Docker containers.
type DockerSandbox struct {
	Policy Policy
	log    *zap.Logger
}

// NewDockerSandbox creates a sandbox with the given policy.
func NewDockerSandbox(policy Policy, log *zap.Logger) *DockerSandbox {
	log = logging.OrNop(log)
	return &DockerSandbox{Policy: policy.withDefaults(), log: log}
}

func (d *DockerSandbox) Exec(ctx context.Context, opts ExecOpts) (*ExecResult, error) {
	image := opts.Image
	if image == "" {
		image = d.Policy.Image
	}
	if !d.Policy.IsImageAllowed(image) {
		return nil, fmt.Errorf("image %q not in allowlist", image)
	}

	// Create a temp dir for the code file
	tmpDir, err := os.MkdirTemp("", "codepad-sandbox-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	codePath := filepath.Join(tmpDir, "code")
	if err := os.WriteFile(codePath, []byte(opts.Code), 0o644); err != nil {
		return nil, fmt.Errorf("writing code file: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, d.Policy.MaxTimeout)
	defer cancel()

	name := "codepad-" + uuid.NewString()
	cmd := exec.CommandContext(ctx, "docker", d.runArgs(tmpDir, name, image, opts.Command)...)

	stdout := NewCapture(d.Policy.MaxOutput)
	stderr := NewCapture(d.Policy.MaxOutput)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	if opts.Stdin != "" {
		cmd.Stdin = strings.NewReader(opts.Stdin)
	}

	err = cmd.Run()
	if ctx.Err() != nil {
		// Killing the docker client leaves the container running.
		d.forceRemove(name)
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, execution.ErrTimedOut
		}
		return nil, ctx.Err()
	}

	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("running docker: %w", err)
		}
		exitCode = exitErr.ExitCode()
	}

	return &ExecResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode,
	}, nil
}

func (d *DockerSandbox) runArgs(dir, name, image string, command []string) []string {
	if len(command) == 0 {
		command = []string{"node", "/workspace/code"}
	}

	args := []string{
		"run", "--rm", "-i",
		"--name", name,
		"--memory", d.Policy.MaxMemory,
		"--pids-limit", "64",
		"--cap-drop", "ALL",
		"--security-opt", "no-new-privileges",
		"--stop-timeout", fmt.Sprintf("%d", int(d.Policy.MaxTimeout.Seconds())),
		"-v", dir + ":/workspace:ro",
		"-w", "/workspace",
	}

	if !d.Policy.Network {
		args = append(args, "--network=none")
	}

	args = append(args, image)
	return append(args, command...)
}

func (d *DockerSandbox) forceRemove(name string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if out, err := exec.CommandContext(ctx, "docker", "rm", "-f", name).CombinedOutput(); err != nil {
		d.log.Warn("removing timed out container",
			zap.String("container", name),
			zap.String("output", strings.TrimSpace(string(out))),
			zap.Error(err))
	}
}
