// Package postgrest reads and writes the directory through a hosted
// PostgREST endpoint (Supabase) and signs users in against its auth API.
package postgrest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"

	"centerdir/internal/domain/directory"
)

// DefaultTimeout bounds every call to the hosted store.
const DefaultTimeout = 10 * time.Second

// maxErrorBody caps how much of a failed response is read for its message.
const maxErrorBody = 64 << 10

// Config holds connection settings for the hosted store.
type Config struct {
	BaseURL    string // e.g. https://xyz.supabase.co
	AnonKey    string
	HTTPClient *http.Client // optional; defaults to a pooled cleanhttp client

	// Name columns used for server-side ordering; default DefaultNameColumn.
	CenterNameColumn  string
	ProgramNameColumn string
}

// DefaultNameColumn is the English name column of the bilingual tables.
const DefaultNameColumn = "name_en"

// Client talks to the /rest/v1 and /auth/v1 endpoints.
type Client struct {
	base    *url.URL
	anonKey string
	http    *http.Client

	centerOrder  string
	programOrder string
}

// New creates a client for the given project.
// PRE: cfg.BaseURL is an absolute URL; cfg.AnonKey is non-empty
// POST: Returns a ready client or a configuration error
func New(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid postgrest url %q", cfg.BaseURL)
	}
	if cfg.AnonKey == "" {
		return nil, errors.New("postgrest anon key is required")
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = cleanhttp.DefaultPooledClient()
		hc.Timeout = DefaultTimeout
	}
	return &Client{
		base:         base,
		anonKey:      cfg.AnonKey,
		http:         hc,
		centerOrder:  ascending(cfg.CenterNameColumn),
		programOrder: ascending(cfg.ProgramNameColumn),
	}, nil
}

func ascending(column string) string {
	if column = strings.TrimSpace(column); column == "" {
		column = DefaultNameColumn
	}
	return column + ".asc"
}

type tokenKey struct{}

// WithAccessToken attaches a signed-in user's access token to ctx. Writes
// made with this context are authorised as that user instead of the anon key.
func WithAccessToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func accessToken(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// apiError is the PostgREST / GoTrue error envelope. Fields vary by version.
type apiError struct {
	Code             json.RawMessage `json:"code"`
	Message          string          `json:"message"`
	Msg              string          `json:"msg"`
	Details          string          `json:"details"`
	ErrorCode        string          `json:"error_code"`
	ErrorName        string          `json:"error"`
	ErrorDescription string          `json:"error_description"`
}

func (e apiError) code() string {
	var s string
	if json.Unmarshal(e.Code, &s) == nil {
		return s
	}
	return strings.Trim(string(e.Code), `"`)
}

func (e apiError) text() string {
	for _, s := range []string{e.Message, e.Msg, e.ErrorDescription, e.ErrorName} {
		if s != "" {
			return s
		}
	}
	return ""
}

// responseError is a non-2xx reply from the hosted store.
type responseError struct {
	Status int
	Body   apiError
	Raw    string
}

func (e *responseError) Error() string {
	msg := e.Body.text()
	if msg == "" {
		msg = strings.TrimSpace(e.Raw)
	}
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("%d %s", e.Status, msg)
}

// do sends one request and decodes a JSON reply into out (when non-nil).
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any, header http.Header) error {
	u := *c.base
	u.Path = c.base.Path + path
	u.RawQuery = query.Encode()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Accept", "application/json")
	bearer := c.anonKey
	if token := accessToken(ctx); token != "" {
		bearer = token
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		slog.Warn("postgrest_failed", "method", method, "path", path, "error", err.Error())
		return err
	}
	defer resp.Body.Close()
	slog.Debug("postgrest", "method", method, "path", path, "status", resp.StatusCode,
		"duration_ms", float64(time.Since(start).Microseconds())/1000.0)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		rerr := &responseError{Status: resp.StatusCode, Raw: string(raw)}
		_ = json.Unmarshal(raw, &rerr.Body)
		return rerr
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// isDuplicate reports whether a failed write collided with a uniqueness rule.
func isDuplicate(err error) bool {
	var rerr *responseError
	if !errors.As(err, &rerr) {
		return false
	}
	return rerr.Status == http.StatusConflict || rerr.Body.code() == "23505"
}

// unavailable wraps err with an operation prefix, keeping the store text.
func unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	return &directory.DataUnavailableError{
		Op:      op,
		Message: fmt.Sprintf("%s failed: %s", op, err.Error()),
		Err:     err,
	}
}
