package web

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"centerdir/internal/adapters/http/middleware"
	"centerdir/internal/adapters/storage/postgrest"
	"centerdir/internal/application/uistate"
	"centerdir/internal/domain/directory"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 64<<10))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// storeContext attaches the signed-in user's hosted-store token, if any, so
// writes run with the user's permissions rather than the anonymous key.
func storeContext(r *http.Request) context.Context {
	ctx := r.Context()
	if sess, ok := middleware.GetSessionFromContext(ctx); ok && sess.AccessToken != "" {
		ctx = postgrest.WithAccessToken(ctx, sess.AccessToken)
	}
	return ctx
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// apiError is the JSON error body.
type apiError struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// errorStatus maps a categorised failure onto an HTTP status. unavailable is
// the status used for store failures: 503 for reads, 502 for writes.
func errorStatus(err error, unavailable int) int {
	switch {
	case errors.Is(err, directory.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, directory.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, directory.ErrDuplicateProgram):
		return http.StatusConflict
	case errors.Is(err, directory.ErrDataUnavailable):
		return unavailable
	default:
		return http.StatusInternalServerError
	}
}

// logUnavailable records a store failure once, where it is shown to the user.
func logUnavailable(r *http.Request, err error) {
	var due *directory.DataUnavailableError
	if errors.As(err, &due) {
		slog.Warn("data_unavailable", "path", r.URL.Path, "op", due.Op, "error", due.Message)
	}
}

const expansionCookieName = "expanded_centers"

// expansionCookieMaxAge keeps the expansion set across browser restarts.
const expansionCookieMaxAge = 365 * 24 * 60 * 60

// cookieSlot persists the expansion set in a single cookie. The JSON array
// is base64url-encoded because cookie values cannot carry quotes.
type cookieSlot struct {
	w http.ResponseWriter
	r *http.Request
}

var _ uistate.Slot = cookieSlot{}

// Load returns the decoded JSON array, or nil when the cookie is absent.
func (s cookieSlot) Load() ([]byte, error) {
	c, err := s.r.Cookie(expansionCookieName)
	if err != nil {
		return nil, nil
	}
	return base64.RawURLEncoding.DecodeString(c.Value)
}

// Save rewrites the cookie on the response.
func (s cookieSlot) Save(data []byte) error {
	http.SetCookie(s.w, &http.Cookie{
		Name:     expansionCookieName,
		Value:    base64.RawURLEncoding.EncodeToString(data),
		Path:     "/",
		MaxAge:   expansionCookieMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// loadExpansion reads the request's expansion set.
func loadExpansion(w http.ResponseWriter, r *http.Request) *uistate.Expansion {
	return uistate.LoadExpansion(cookieSlot{w: w, r: r})
}
