package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/michaelbrown/codepad/internal/execution"
	"github.com/michaelbrown/codepad/internal/logging"
)

// Client talks to a Judge0-compatible judge: submit, then poll until the
// submission reaches a terminal status.
type Client struct {
	cfg  Config
	http *http.Client
	log  *zap.Logger

	group     singleflight.Group
	mu        sync.Mutex
	languages []Language
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client (tests use httptest clients).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = logging.OrNop(l) }
}

// New creates a judge client, filling in defaults for zero config values.
func New(cfg Config, opts ...Option) *Client {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.AuthHeader == "" {
		cfg.AuthHeader = defaultAuthHeader
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	c := &Client{
		cfg:  cfg,
		http: http.DefaultClient,
		log:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run submits req and polls until the judge reports a terminal status or the
// configured timeout elapses.
func (c *Client) Run(ctx context.Context, req execution.Request) (*execution.Outcome, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	sub, err := c.Submit(ctx, req.Source, int(req.Language), req.Stdin)
	if err != nil {
		return nil, deadline(ctx, "", err)
	}

	res, err := c.Wait(ctx, sub.Token)
	if err != nil {
		return nil, err
	}
	return res.Outcome(), nil
}

// Submit posts a new submission and returns its token.
func (c *Client) Submit(ctx context.Context, source string, languageID int, stdin string) (Submission, error) {
	body := submitRequest{SourceCode: source, LanguageID: languageID, Stdin: stdin}
	query := url.Values{"base64_encoded": {"false"}, "wait": {"false"}}

	var sub Submission
	if err := c.do(ctx, "submit", http.MethodPost, "/submissions", query, body, &sub); err != nil {
		return Submission{}, err
	}
	if sub.Token == "" {
		return Submission{}, fmt.Errorf("judge submit: response carried no token")
	}
	c.log.Debug("submission created", zap.String("token", sub.Token), zap.Int("language_id", languageID))
	return sub, nil
}

// Get fetches a submission with every field expanded.
func (c *Client) Get(ctx context.Context, token string) (*Result, error) {
	query := url.Values{"base64_encoded": {"false"}, "fields": {"*"}}

	var res Result
	if err := c.do(ctx, "poll", http.MethodGet, "/submissions/"+url.PathEscape(token), query, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Wait polls token every PollInterval until its status is terminal. It stops
// only on a terminal status, a transport error or ctx expiry.
func (c *Client) Wait(ctx context.Context, token string) (*Result, error) {
	for polls := 1; ; polls++ {
		res, err := c.Get(ctx, token)
		if err != nil {
			return nil, deadline(ctx, token, err)
		}
		if res.Terminal() {
			c.log.Debug("submission finished",
				zap.String("token", token),
				zap.Int("status", res.Status.ID),
				zap.String("description", res.Status.Description),
				zap.Int("polls", polls))
			return res, nil
		}

		timer := time.NewTimer(c.cfg.PollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, deadline(ctx, token, ctx.Err())
		case <-timer.C:
		}
	}
}

// Languages returns the judge's language list. Concurrent callers share one
// request and the first successful answer is cached. The shared request is
// detached from any single caller's cancellation and bounded by the client
// timeout; each caller still stops waiting when its own ctx ends.
func (c *Client) Languages(ctx context.Context) ([]Language, error) {
	c.mu.Lock()
	cached := c.languages
	c.mu.Unlock()
	if cached != nil {
		return cached, nil
	}

	ch := c.group.DoChan("languages", func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.cfg.Timeout)
		defer cancel()

		var langs []Language
		if err := c.do(fetchCtx, "languages", http.MethodGet, "/languages", nil, nil, &langs); err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.languages = langs
		c.mu.Unlock()
		return langs, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]Language), nil
	}
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, in, out any) error {
	u := c.cfg.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("judge %s: encoding request: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("judge %s: creating request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.APIKey != "" {
		req.Header.Set(c.cfg.AuthHeader, c.cfg.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("judge %s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &TransportError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(payload)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("judge %s: decoding response: %w", op, err)
	}
	return nil
}

// deadline converts an error caused by the run budget running out into
// ErrTimedOut, naming the token that was being polled.
func deadline(ctx context.Context, token string, err error) error {
	if !errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return err
	}
	if token == "" {
		return fmt.Errorf("judge submit: %w", execution.ErrTimedOut)
	}
	return fmt.Errorf("judge submission %s: %w", token, execution.ErrTimedOut)
}
