package execution

import "context"

// LanguageID is a Judge0 numeric language identifier.
type LanguageID int

// ScriptLanguage is the one language evaluated locally instead of on the judge
// (JavaScript, Node.js 12.14.0 in Judge0's numbering).
const ScriptLanguage LanguageID = 63

// Backend names where a run executes.
type Backend string

const (
	BackendLocal Backend = "local"
	BackendJudge Backend = "judge"
)

// Request describes a single run. It is built fresh for every invocation.
type Request struct {
	Source   string     `json:"source_code"`
	Language LanguageID `json:"language_id"`
	Stdin    string     `json:"stdin"`
}

// Status is the judge's verdict for a finished submission.
type Status struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
}

// Outcome is the normalized result of a run. A nil channel means the backend
// produced nothing for it; both are nil only while a run is still pending.
type Outcome struct {
	Stdout  *string `json:"stdout"`
	Stderr  *string `json:"stderr"`
	Status  *Status `json:"status,omitempty"`
	Backend Backend `json:"backend,omitempty"`
}

// Failed reports whether the program faulted (stderr was produced).
func (o *Outcome) Failed() bool {
	return o != nil && o.Stderr != nil
}

// StdoutText returns stdout or "" when absent.
func (o *Outcome) StdoutText() string {
	if o == nil || o.Stdout == nil {
		return ""
	}
	return *o.Stdout
}

// StderrText returns stderr or "" when absent.
func (o *Outcome) StderrText() string {
	if o == nil || o.Stderr == nil {
		return ""
	}
	return *o.Stderr
}

// Runner executes a request on one backend. A program that faults is a normal
// Outcome with Stderr set; an error means the backend itself failed.
type Runner interface {
	Run(ctx context.Context, req Request) (*Outcome, error)
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, req Request) (*Outcome, error)

func (f RunnerFunc) Run(ctx context.Context, req Request) (*Outcome, error) {
	return f(ctx, req)
}

// Text returns a pointer to s, for building Outcome fields.
func Text(s string) *string {
	return &s
}
