package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"centerdir/internal/adapters/storage/postgrest"
	"centerdir/internal/domain/account"
)

// AccountStoreForLogin defines the store interface needed by Login.
type AccountStoreForLogin interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
}

// PasswordSignIn signs a user in against the hosted store's auth API.
type PasswordSignIn interface {
	SignIn(ctx context.Context, email, password string) (postgrest.Session, error)
}

// LoginInput carries input for the login orchestrator.
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult carries the result of a successful login.
type LoginResult struct {
	AccountID   string
	Email       string
	Role        string
	AccessToken string    // set for hosted-store sign-ins
	ExpiresAt   time.Time // zero for local accounts
}

// LoginDeps holds dependencies for Login. When Remote is set it is used
// instead of the local account store.
type LoginDeps struct {
	AccountStore AccountStoreForLogin
	Remote       PasswordSignIn
	Now          func() time.Time
}

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountLocked      = errors.New("account is locked due to too many failed attempts")
)

// ExecuteLogin validates credentials and returns account info for session creation.
// PRE: Valid email and password provided
// POST: Returns account info on success, records failed login on failure
// INVARIANT: A locked local account cannot sign in until the lock expires
func ExecuteLogin(ctx context.Context, input LoginInput, deps LoginDeps) (LoginResult, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" || input.Password == "" {
		return LoginResult{}, ErrInvalidCredentials
	}
	if deps.Remote != nil {
		return remoteLogin(ctx, email, input.Password, deps.Remote)
	}

	now := time.Now()
	if deps.Now != nil {
		now = deps.Now()
	}

	acct, err := deps.AccountStore.GetByEmail(ctx, email)
	if err != nil {
		slog.Info("auth_event", "event", "login_failed", "email", email, "reason", "not_found")
		return LoginResult{}, ErrInvalidCredentials
	}

	if acct.IsLocked(now) {
		slog.Info("auth_event", "event", "login_blocked", "email", email, "reason", "locked")
		return LoginResult{}, ErrAccountLocked
	}

	if err := acct.CheckPassword(input.Password); err != nil {
		acct.RecordFailedLogin(now)
		_ = deps.AccountStore.Save(ctx, acct)
		slog.Info("auth_event", "event", "login_failed", "email", email, "reason", "wrong_password", "failed_logins", acct.FailedLogins)
		return LoginResult{}, ErrInvalidCredentials
	}

	if acct.FailedLogins > 0 || !acct.LockedUntil.IsZero() {
		acct.ResetFailedLogins()
		_ = deps.AccountStore.Save(ctx, acct)
	}

	slog.Info("auth_event", "event", "login_success", "email", email, "role", acct.Role)
	return LoginResult{AccountID: acct.ID, Email: acct.Email, Role: acct.Role}, nil
}

func remoteLogin(ctx context.Context, email, password string, remote PasswordSignIn) (LoginResult, error) {
	s, err := remote.SignIn(ctx, email, password)
	if errors.Is(err, postgrest.ErrInvalidCredentials) {
		slog.Info("auth_event", "event", "login_failed", "email", email, "reason", "rejected_by_store")
		return LoginResult{}, ErrInvalidCredentials
	}
	if err != nil {
		slog.Warn("auth_event", "event", "login_error", "email", email, "error", err.Error())
		return LoginResult{}, err
	}
	slog.Info("auth_event", "event", "login_success", "email", s.Email, "role", account.RoleEditor, "remote", true)
	return LoginResult{
		AccountID:   s.UserID,
		Email:       s.Email,
		Role:        account.RoleEditor,
		AccessToken: s.AccessToken,
		ExpiresAt:   s.ExpiresAt,
	}, nil
}
