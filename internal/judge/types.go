package judge

import (
	"time"

	"github.com/michaelbrown/codepad/internal/execution"
)

// Judge0 status ids at or below StatusProcessing are not terminal.
const (
	StatusInQueue    = 1
	StatusProcessing = 2
)

const (
	defaultPollInterval = 1500 * time.Millisecond
	defaultTimeout      = 60 * time.Second
	defaultAuthHeader   = "X-Auth-Token"
	maxErrorBody        = 4 << 10
)

// Config holds the judge endpoint and polling budget.
type Config struct {
	BaseURL      string        `mapstructure:"base_url"`
	APIKey       string        `mapstructure:"api_key"`
	AuthHeader   string        `mapstructure:"auth_header"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// Submission is the handle returned by the judge for one run. It belongs to a
// single poll loop and is never reused.
type Submission struct {
	Token string `json:"token"`
}

// Result is a submission as reported by GET /submissions/{token}.
type Result struct {
	Token         string           `json:"token"`
	Stdout        *string          `json:"stdout"`
	Stderr        *string          `json:"stderr"`
	CompileOutput *string          `json:"compile_output"`
	Message       *string          `json:"message"`
	Status        execution.Status `json:"status"`
}

// Terminal reports whether the judge has finished with the submission.
func (r *Result) Terminal() bool {
	return r.Status.ID > StatusProcessing
}

// Outcome maps a terminal result onto the normalized outcome. Compile errors
// share the stderr channel with runtime errors.
func (r *Result) Outcome() *execution.Outcome {
	status := r.Status
	out := &execution.Outcome{Status: &status}
	if present(r.Stdout) {
		out.Stdout = execution.Text(*r.Stdout)
	}
	switch {
	case present(r.Stderr):
		out.Stderr = execution.Text(*r.Stderr)
	case present(r.CompileOutput):
		out.Stderr = execution.Text(*r.CompileOutput)
	}
	return out
}

func present(s *string) bool {
	return s != nil && *s != ""
}

// Language is an entry of the judge's own language list.
type Language struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type submitRequest struct {
	SourceCode string `json:"source_code"`
	LanguageID int    `json:"language_id"`
	Stdin      string `json:"stdin"`
}
