package execution

import "errors"

var (
	// ErrTimedOut is returned when a run exceeds its wall-clock budget.
	ErrTimedOut = errors.New("execution timed out")

	// ErrEvaluatorCrash marks an internal fault of the local evaluator, as
	// opposed to an error raised by the evaluated program.
	ErrEvaluatorCrash = errors.New("evaluator crashed")

	// ErrNoBackend is returned when the dispatcher has no runner for a backend.
	ErrNoBackend = errors.New("no runner configured for backend")
)
