package execution

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/michaelbrown/codepad/internal/logging"
)

// Dispatcher routes each request to the local evaluator or the remote judge.
// It keeps no state between calls.
type Dispatcher struct {
	local  Runner
	remote Runner
	log    *zap.Logger
}

// NewDispatcher creates a Dispatcher. A nil logger disables logging.
func NewDispatcher(local, remote Runner, log *zap.Logger) *Dispatcher {
	log = logging.OrNop(log)
	return &Dispatcher{local: local, remote: remote, log: log}
}

// Run executes req on the backend chosen by BackendFor. Program faults come
// back as an Outcome with Stderr set; backend failures are returned as errors.
func (d *Dispatcher) Run(ctx context.Context, req Request) (*Outcome, error) {
	backend := BackendFor(req.Language)

	runner := d.remote
	if backend == BackendLocal {
		runner = d.local
	}
	if runner == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoBackend, backend)
	}

	start := time.Now()
	out, err := runner.Run(ctx, req)
	if err != nil {
		d.log.Warn("run failed",
			zap.String("backend", string(backend)),
			zap.Int("language_id", int(req.Language)),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return nil, fmt.Errorf("%s backend: %w", backend, err)
	}
	if out == nil {
		d.log.Error("runner returned no outcome", zap.String("backend", string(backend)))
		return nil, fmt.Errorf("%s backend: %w: no outcome", backend, ErrEvaluatorCrash)
	}

	out.Backend = backend
	d.log.Debug("run finished",
		zap.String("backend", string(backend)),
		zap.Int("language_id", int(req.Language)),
		zap.Bool("stderr", out.Failed()),
		zap.Duration("elapsed", time.Since(start)))
	return out, nil
}
