package sandbox

import (
	"context"
	"fmt"

	"github.com/michaelbrown/codepad/internal/execution"
)

// Evaluator adapts a Sandbox to execution.Runner.
type Evaluator struct {
	sb Sandbox
}

// NewEvaluator wraps sb.
func NewEvaluator(sb Sandbox) *Evaluator {
	return &Evaluator{sb: sb}
}

func (e *Evaluator) Run(ctx context.Context, req execution.Request) (*execution.Outcome, error) {
	res, err := e.sb.Exec(ctx, ExecOpts{Code: req.Source, Stdin: req.Stdin})
	if err != nil {
		return nil, err
	}
	return res.Outcome(), nil
}

// Outcome maps the result onto exactly one populated channel: stderr when
// the script failed, stdout otherwise.
func (r *ExecResult) Outcome() *execution.Outcome {
	if r.ExitCode != 0 {
		msg := r.Stderr
		if msg == "" {
			msg = fmt.Sprintf("exit code %d", r.ExitCode)
		}
		return &execution.Outcome{Stderr: execution.Text(msg)}
	}
	return &execution.Outcome{Stdout: execution.Text(r.Stdout)}
}
