package judge

import "fmt"

// TransportError is a non-2xx response from the judge. Body carries the
// judge's own error payload.
type TransportError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *TransportError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("judge %s: HTTP %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("judge %s: HTTP %d: %s", e.Op, e.StatusCode, e.Body)
}
