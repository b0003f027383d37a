package sandbox

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dop251/goja"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/michaelbrown/codepad/internal/execution"
	"github.com/michaelbrown/codepad/internal/logging"
)

// ScriptSandbox evaluates JavaScript in a fresh goja runtime per call. Each
// runtime gets its own console bound to its own Capture, so concurrent runs
// never share an output channel.
type ScriptSandbox struct {
	Policy Policy
	sem    *semaphore.Weighted
	log    *zap.Logger
}

// NewScriptSandbox creates an embedded script sandbox.
func NewScriptSandbox(policy Policy, log *zap.Logger) *ScriptSandbox {
	log = logging.OrNop(log)
	policy = policy.withDefaults()
	return &ScriptSandbox{
		Policy: policy,
		sem:    semaphore.NewWeighted(policy.MaxConcurrent),
		log:    log,
	}
}

var consoleMethods = []string{"log", "info", "debug", "warn", "error", "trace"}

func (s *ScriptSandbox) Exec(ctx context.Context, opts ExecOpts) (res *ExecResult, err error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer s.sem.Release(1)

	ctx, cancel := context.WithTimeout(ctx, s.Policy.MaxTimeout)
	defer cancel()

	out := NewCapture(s.Policy.MaxOutput)
	vm := goja.New()
	if err := bindConsole(vm, out); err != nil {
		s.log.Error("binding console", zap.Error(err))
		return nil, fmt.Errorf("%w: binding console: %v", execution.ErrEvaluatorCrash, err)
	}

	stop := context.AfterFunc(ctx, func() { vm.Interrupt(ctx.Err()) })
	defer stop()

	defer func() {
		if r := recover(); r != nil {
			s.log.Error("script engine panicked", zap.Any("panic", r))
			res, err = nil, fmt.Errorf("%w: %v", execution.ErrEvaluatorCrash, r)
		}
	}()

	_, runErr := vm.RunString(opts.Code)
	if runErr == nil {
		return &ExecResult{Stdout: out.String()}, nil
	}

	var interrupted *goja.InterruptedError
	if errors.As(runErr, &interrupted) {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, execution.ErrTimedOut
		}
		return nil, ctx.Err()
	}

	return &ExecResult{
		Stdout:   out.String(),
		Stderr:   errorText(runErr),
		ExitCode: 1,
	}, nil
}

func bindConsole(vm *goja.Runtime, w io.Writer) error {
	console := vm.NewObject()
	write := func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, arg := range call.Arguments {
			parts[i] = formatValue(arg)
		}
		io.WriteString(w, strings.Join(parts, " ")+"\n")
		return goja.Undefined()
	}
	for _, name := range consoleMethods {
		if err := console.Set(name, write); err != nil {
			return err
		}
	}
	return vm.Set("console", console)
}

func formatValue(v goja.Value) string {
	if v == nil || goja.IsUndefined(v) {
		return "undefined"
	}
	if goja.IsNull(v) {
		return "null"
	}
	obj, ok := v.(*goja.Object)
	if !ok {
		return v.String()
	}
	if _, isFn := goja.AssertFunction(v); isFn || obj.ClassName() == "Error" {
		return v.String()
	}
	data, err := obj.MarshalJSON()
	if err != nil {
		return v.String()
	}
	return string(data)
}

// errorText renders a thrown value the way the script would see it
// stringified, e.g. "TypeError: x is not a function".
func errorText(err error) string {
	var ex *goja.Exception
	if errors.As(err, &ex) && ex.Value() != nil {
		return ex.Value().String()
	}
	return err.Error()
}
