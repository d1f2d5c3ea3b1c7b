// Package gemini is the HTTP client for the Google generative-language API.
// One request is issued per batch of source texts; every failure mode is
// classified into a typed, batch-wide outcome instead of surfacing as an
// error in the caller's data path.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the generative-language API endpoint.
const DefaultBaseURL = "https://generativelanguage.googleapis.com"

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.0-flash"

// MaxRetries is the total attempt budget for a rate-limited batch.
const MaxRetries = 3

// defaultTimeout bounds one generateContent request.
const defaultTimeout = 120 * time.Second

// ---------------------------------------------------------------------------
// Outcomes
// ---------------------------------------------------------------------------

// FailureKind classifies why a batch (or item) was not translated.
type FailureKind int

const (
	// FailureRateLimit — retries exhausted on HTTP 429.
	FailureRateLimit FailureKind = iota
	// FailureRequestTooLarge — the API rejected the payload size.
	FailureRequestTooLarge
	// FailureAPIError — other non-2xx response, carries status and message.
	FailureAPIError
	// FailureBlocked — the API returned no candidates (safety/policy block).
	FailureBlocked
	// FailureInvalidFormat — the response could not be parsed into the
	// expected array shape.
	FailureInvalidFormat
	// FailureNetwork — transport-level failure.
	FailureNetwork
)

// Failure is a classified translation failure.
type Failure struct {
	Kind    FailureKind
	Message string
}

func (f *Failure) Error() string { return f.Message }

// Item is the outcome for a single source text: either a translation or a
// classified failure. Index i of a BatchOutcome always answers index i of
// the input batch.
type Item struct {
	Text    string
	Failure *Failure
}

// OK reports whether the item was translated.
func (i Item) OK() bool { return i.Failure == nil }

// BatchOutcome is the ordered, same-length result of one batch request.
type BatchOutcome []Item

// failAll builds a batch-wide failure outcome.
func failAll(n int, kind FailureKind, msg string) BatchOutcome {
	out := make(BatchOutcome, n)
	for i := range out {
		out[i] = Item{Failure: &Failure{Kind: kind, Message: msg}}
	}
	return out
}

// ---------------------------------------------------------------------------
// Client
// ---------------------------------------------------------------------------

// Client issues batch translation requests against the generative-language
// API. The zero value is not usable; construct with New.
type Client struct {
	APIKey  string
	Model   string
	BaseURL string

	// MaxRetries is the attempt budget on HTTP 429 (default MaxRetries).
	MaxRetries int

	// Sleep waits between retry attempts. Overridable in tests; defaults to
	// a context-aware timer sleep.
	Sleep func(ctx context.Context, d time.Duration) error

	// OnStatus, when set, is notified at each retry wait.
	OnStatus func(message, detail string, percent int, isError bool)

	httpClient *http.Client
}

// New creates a client for the given API key, using defaults for everything
// else.
func New(apiKey string) *Client {
	return &Client{
		APIKey:     apiKey,
		Model:      DefaultModel,
		BaseURL:    DefaultBaseURL,
		MaxRetries: MaxRetries,
		httpClient: makeHTTPClient(defaultTimeout),
	}
}

// SetTimeout replaces the per-request timeout (default 120s).
func (c *Client) SetTimeout(timeout time.Duration) {
	c.httpClient = makeHTTPClient(timeout)
}

func makeHTTPClient(timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = http.ProxyFromEnvironment
	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}

func (c *Client) endpoint() string {
	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	model := c.Model
	if model == "" {
		model = DefaultModel
	}
	return fmt.Sprintf("%s/v1beta/models/%s:generateContent",
		strings.TrimRight(base, "/"), url.PathEscape(model))
}

func (c *Client) maxRetries() int {
	if c.MaxRetries > 0 {
		return c.MaxRetries
	}
	return MaxRetries
}

func (c *Client) sleep(ctx context.Context, d time.Duration) error {
	if c.Sleep != nil {
		return c.Sleep(ctx, d)
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

func (c *Client) status(message, detail string, percent int, isError bool) {
	if c.OnStatus != nil {
		c.OnStatus(message, detail, percent, isError)
	}
}

// ---------------------------------------------------------------------------
// Request building
// ---------------------------------------------------------------------------

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type genConfig struct {
	Temperature float64 `json:"temperature"`
}

type generateRequest struct {
	Contents         []content `json:"contents"`
	GenerationConfig genConfig `json:"generationConfig"`
}

// buildRequest encodes the batch as a JSON array inside a natural-language
// instruction naming the target language.
func buildRequest(texts []string, targetLanguage string) ([]byte, error) {
	encoded, err := json.Marshal(texts)
	if err != nil {
		return nil, err
	}
	prompt := fmt.Sprintf(
		"Translate each string in the following JSON array into %s. "+
			"Return ONLY a JSON array of the translated strings, with the same "+
			"length and order as the input, and no explanations, no markdown, "+
			"no extraneous text.\n\n%s",
		targetLanguage, encoded)

	req := generateRequest{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: prompt}}},
		},
		GenerationConfig: genConfig{Temperature: 0.3},
	}
	return json.Marshal(req)
}

// ---------------------------------------------------------------------------
// TranslateBatch
// ---------------------------------------------------------------------------

// TranslateBatch translates texts into targetLanguage with one API request.
// It never returns an error through the data path: every failure mode is
// folded into the outcome, batch-wide when it happens before per-item
// parsing, item-scoped afterwards. Only context cancellation is reported as
// a network-level failure outcome.
func (c *Client) TranslateBatch(ctx context.Context, texts []string, targetLanguage string) BatchOutcome {
	n := len(texts)
	if n == 0 {
		return nil
	}

	body, err := buildRequest(texts, targetLanguage)
	if err != nil {
		return failAll(n, FailureInvalidFormat, "invalid format")
	}

	if c.httpClient == nil {
		c.httpClient = makeHTTPClient(defaultTimeout)
	}

	retries := c.maxRetries()
	for attempt := 1; attempt <= retries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(body))
		if err != nil {
			return failAll(n, FailureNetwork, "network error: "+err.Error())
		}
		req.Header.Set("Content-Type", "application/json")
		if c.APIKey != "" {
			req.Header.Set("x-goog-api-key", c.APIKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return failAll(n, FailureNetwork, "network error: "+err.Error())
		}

		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests {
			if attempt < retries {
				wait := time.Duration(1<<attempt) * time.Second
				c.status("Rate limited",
					fmt.Sprintf("waiting %s before retry %d/%d", wait, attempt+1, retries), -1, true)
				if err := c.sleep(ctx, wait); err != nil {
					return failAll(n, FailureNetwork, "network error: "+err.Error())
				}
				continue
			}
			return failAll(n, FailureRateLimit, "rate limit exceeded")
		}

		if resp.StatusCode == http.StatusRequestEntityTooLarge {
			return failAll(n, FailureRequestTooLarge, "request too large")
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			msg := apiErrorMessage(respBody)
			if isTooLargeMessage(msg) {
				return failAll(n, FailureRequestTooLarge, "request too large")
			}
			return failAll(n, FailureAPIError,
				fmt.Sprintf("%d - %s", resp.StatusCode, msg))
		}

		text, blockReason, ok := candidateText(respBody)
		if !ok {
			return failAll(n, FailureBlocked, "blocked: "+blockReason)
		}

		translations, err := ParseTranslations(text, n)
		if err != nil {
			return failAll(n, FailureInvalidFormat, "invalid format")
		}

		out := make(BatchOutcome, n)
		for i := range out {
			if i < len(translations) {
				out[i] = Item{Text: translations[i]}
			} else {
				out[i] = Item{Failure: &Failure{Kind: FailureInvalidFormat, Message: "invalid format"}}
			}
		}
		return out
	}

	return failAll(n, FailureRateLimit, "rate limit exceeded")
}

// isTooLargeMessage matches payload-size rejections reported with a 400
// status and a structured error body instead of HTTP 413.
func isTooLargeMessage(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "too large") ||
		strings.Contains(lower, "payload size") ||
		strings.Contains(lower, "request payload")
}
