// Package app assembles the execution backends from configuration.
package app

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/michaelbrown/codepad/internal/config"
	"github.com/michaelbrown/codepad/internal/execution"
	"github.com/michaelbrown/codepad/internal/judge"
	"github.com/michaelbrown/codepad/internal/logging"
	"github.com/michaelbrown/codepad/internal/sandbox"
)

// Backends are the wired runners plus the judge client for language listings.
type Backends struct {
	Dispatcher *execution.Dispatcher
	Judge      *judge.Client
	Catalog    *execution.Catalog
}

// NewBackends builds the local evaluator from the sandbox section and the
// judge client from the judge section.
func NewBackends(cfg *config.Config, log *zap.Logger) (*Backends, error) {
	log = logging.OrNop(log)

	sb, err := sandbox.New(cfg.Sandbox.Mode, cfg.Sandbox.Policy, log.Named("sandbox"))
	if err != nil {
		return nil, fmt.Errorf("creating sandbox: %w", err)
	}

	jc := judge.New(cfg.Judge, judge.WithLogger(log.Named("judge")))

	return &Backends{
		Dispatcher: execution.NewDispatcher(sandbox.NewEvaluator(sb), jc, log.Named("dispatch")),
		Judge:      jc,
		Catalog:    execution.DefaultCatalog(),
	}, nil
}
