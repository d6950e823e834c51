package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"centerdir/internal/adapters/http/middleware"
	"centerdir/internal/application/orchestrators"
)

// remoteSignOut is implemented by identity providers that can revoke tokens.
type remoteSignOut interface {
	SignOut(ctx context.Context, token string) error
}

// handleLogin handles GET /login (form) and POST /login (sign in).
func handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		renderTemplate(w, r, "login.html", map[string]any{
			"Title": "Sign in",
			"Next":  localRedirect(r.URL.Query().Get("next")),
			"Email": "",
			"Error": "",
		})
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		email := r.PostFormValue("email")
		next := localRedirect(r.PostFormValue("next"))

		result, err := orchestrators.ExecuteLogin(r.Context(), orchestrators.LoginInput{
			Email:    email,
			Password: r.PostFormValue("password"),
		}, orchestrators.LoginDeps{
			AccountStore: stores.AccountStore,
			Remote:       stores.RemoteAuth,
			Now:          timeNow,
		})
		if err != nil {
			status := http.StatusUnauthorized
			message := "Invalid email or password"
			switch {
			case errors.Is(err, orchestrators.ErrAccountLocked):
				status = http.StatusTooManyRequests
				message = "Too many failed attempts. Try again later."
			case !errors.Is(err, orchestrators.ErrInvalidCredentials):
				logUnavailable(r, err)
				status = http.StatusBadGateway
				message = err.Error()
			}
			renderPage(w, r, status, "login.html", map[string]any{
				"Title": "Sign in",
				"Next":  next,
				"Email": email,
				"Error": message,
			})
			return
		}

		token, err := sessions.Create(middleware.Session{
			AccountID:   result.AccountID,
			Email:       result.Email,
			Role:        result.Role,
			AccessToken: result.AccessToken,
			ExpiresAt:   result.ExpiresAt,
		})
		if err != nil {
			internalError(w, err)
			return
		}
		middleware.SetSessionCookie(w, token)
		if next == "/" {
			next = "/directory"
		}
		http.Redirect(w, r, next, http.StatusSeeOther)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleLogout handles POST /logout
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if token := middleware.SessionToken(r); token != "" {
		if sess, ok := sessions.Get(token); ok {
			if so, ok := stores.RemoteAuth.(remoteSignOut); ok && sess.AccessToken != "" {
				if err := so.SignOut(r.Context(), sess.AccessToken); err != nil {
					slog.Warn("auth_event", "event", "remote_signout_failed", "email", sess.Email, "error", err.Error())
				}
			}
			slog.Info("auth_event", "event", "logout", "email", sess.Email)
		}
		sessions.Delete(token)
	}
	middleware.ClearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
