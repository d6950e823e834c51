package orchestrators

import (
	"context"
	"errors"
	"strings"

	accountStore "centerdir/internal/adapters/storage/account"
	"centerdir/internal/adapters/storage/postgrest"
	"centerdir/internal/domain/account"
	"centerdir/internal/domain/center"
	"centerdir/internal/domain/directory"
	"centerdir/internal/domain/program"
)

type mockCenterStore struct {
	centers map[string]center.Center
	err     error
	calls   int
}

func newMockCenterStore(cs ...center.Center) *mockCenterStore {
	m := &mockCenterStore{centers: map[string]center.Center{}}
	for _, c := range cs {
		m.centers[c.ID] = c
	}
	return m
}

// GetByID returns a seeded center.
// PRE: id is non-empty
// POST: Returns the center, a NotFoundError, or the configured error
func (m *mockCenterStore) GetByID(_ context.Context, id string) (center.Center, error) {
	m.calls++
	if m.err != nil {
		return center.Center{}, m.err
	}
	c, ok := m.centers[id]
	if !ok {
		return center.Center{}, &directory.NotFoundError{Kind: "center", ID: id}
	}
	return c, nil
}

// Save upserts a center.
// PRE: c is valid
// POST: c is stored by ID
func (m *mockCenterStore) Save(_ context.Context, c center.Center) error {
	if m.err != nil {
		return m.err
	}
	m.centers[c.ID] = c
	return nil
}

// mockProgramStore enforces per-center uniqueness of name and code like the real stores.
type mockProgramStore struct {
	programs []program.Program
	err      error
	calls    int
}

// Create stores a program unless it collides with an existing one.
// PRE: p is normalized
// POST: Returns p, ErrDuplicateProgram, or the configured error
func (m *mockProgramStore) Create(_ context.Context, p program.Program) (program.Program, error) {
	m.calls++
	if m.err != nil {
		return program.Program{}, m.err
	}
	for _, existing := range m.programs {
		if existing.CenterID != p.CenterID {
			continue
		}
		sameName := p.NameEn != "" && strings.EqualFold(existing.NameEn, p.NameEn)
		sameCode := p.Code != "" && existing.Code == p.Code
		if sameName || sameCode {
			return program.Program{}, directory.ErrDuplicateProgram
		}
	}
	m.programs = append(m.programs, p)
	return p, nil
}

type mockAccountStore struct {
	accounts map[string]account.Account
	saves    int
}

func newMockAccountStore(accts ...account.Account) *mockAccountStore {
	m := &mockAccountStore{accounts: map[string]account.Account{}}
	for _, a := range accts {
		m.accounts[strings.ToLower(a.Email)] = a
	}
	return m
}

// GetByEmail returns a seeded account.
// PRE: email is non-empty
// POST: Returns the account or accountStore.ErrNotFound
func (m *mockAccountStore) GetByEmail(_ context.Context, email string) (account.Account, error) {
	a, ok := m.accounts[strings.ToLower(email)]
	if !ok {
		return account.Account{}, accountStore.ErrNotFound
	}
	return a, nil
}

// Save stores an account by email.
// PRE: a is valid
// POST: a is retrievable by email
func (m *mockAccountStore) Save(_ context.Context, a account.Account) error {
	m.saves++
	m.accounts[strings.ToLower(a.Email)] = a
	return nil
}

// Count returns the number of stored accounts.
// PRE: none
// POST: Returns count >= 0
func (m *mockAccountStore) Count(_ context.Context) (int, error) {
	return len(m.accounts), nil
}

type mockSignIn struct {
	password string
	err      error
}

// SignIn accepts only the configured password.
// PRE: none
// POST: Returns a session, ErrInvalidCredentials, or the configured error
func (m *mockSignIn) SignIn(_ context.Context, email, password string) (postgrest.Session, error) {
	if m.err != nil {
		return postgrest.Session{}, m.err
	}
	if password != m.password {
		return postgrest.Session{}, postgrest.ErrInvalidCredentials
	}
	return postgrest.Session{AccessToken: "tok", UserID: "remote-1", Email: email}, nil
}

var errStoreDown = errors.New("connection reset by peer")
