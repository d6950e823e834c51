package web

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"centerdir/internal/adapters/http/middleware"
	accountStore "centerdir/internal/adapters/storage/account"
	programStore "centerdir/internal/adapters/storage/program"
	accountDomain "centerdir/internal/domain/account"
	centerDomain "centerdir/internal/domain/center"
	"centerdir/internal/domain/directory"
	programDomain "centerdir/internal/domain/program"
)

// --- Mock stores ---

type mockCenterStore struct {
	centers []centerDomain.Center
	err     error
}

// List implements the center store interface for testing.
// PRE: none
// POST: Returns the seeded centers or the injected error
func (m *mockCenterStore) List(_ context.Context) ([]centerDomain.Center, error) {
	if m.err != nil {
		return nil, m.err
	}
	return append([]centerDomain.Center(nil), m.centers...), nil
}

// GetByID implements the center store interface for testing.
// PRE: id is non-empty
// POST: Returns the center or a NotFoundError
func (m *mockCenterStore) GetByID(_ context.Context, id string) (centerDomain.Center, error) {
	if m.err != nil {
		return centerDomain.Center{}, m.err
	}
	for _, c := range m.centers {
		if c.ID == id {
			return c, nil
		}
	}
	return centerDomain.Center{}, &directory.NotFoundError{Kind: "center", ID: id}
}

type mockProgramStore struct {
	mu        sync.Mutex
	programs  []programDomain.Program
	err       error
	createErr error
	creates   int
}

// List implements the program store interface for testing.
// PRE: filter has valid parameters
// POST: Returns matching programs in insertion order
func (m *mockProgramStore) List(_ context.Context, filter programStore.ListFilter) ([]programDomain.Program, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []programDomain.Program
	for _, p := range m.programs {
		if filter.CenterID != "" && p.CenterID != filter.CenterID {
			continue
		}
		if filter.ActiveOnly && !p.IsActive() {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// Create implements the program store interface for testing.
// PRE: p has been validated
// POST: Program is stored, or ErrDuplicateProgram when the name repeats within the center
func (m *mockProgramStore) Create(_ context.Context, p programDomain.Program) (programDomain.Program, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	if m.createErr != nil {
		return programDomain.Program{}, m.createErr
	}
	for _, existing := range m.programs {
		if existing.CenterID == p.CenterID && strings.EqualFold(existing.NameEn, p.NameEn) {
			return programDomain.Program{}, directory.ErrDuplicateProgram
		}
	}
	m.programs = append(m.programs, p)
	return p, nil
}

type mockAccountStore struct {
	accounts map[string]accountDomain.Account
}

// GetByEmail implements the account store interface for testing.
// PRE: email is non-empty
// POST: Returns the account or ErrNotFound
func (m *mockAccountStore) GetByEmail(_ context.Context, email string) (accountDomain.Account, error) {
	for _, a := range m.accounts {
		if strings.EqualFold(a.Email, email) {
			return a, nil
		}
	}
	return accountDomain.Account{}, accountStore.ErrNotFound
}

// Save implements the account store interface for testing.
// PRE: entity has been validated
// POST: Entity is persisted
func (m *mockAccountStore) Save(_ context.Context, a accountDomain.Account) error {
	if m.accounts == nil {
		m.accounts = make(map[string]accountDomain.Account)
	}
	m.accounts[a.ID] = a
	return nil
}

// Count implements the account store interface for testing.
// PRE: none
// POST: Returns the number of stored accounts
func (m *mockAccountStore) Count(_ context.Context) (int, error) {
	return len(m.accounts), nil
}

// --- Fixtures ---

var editorSession = middleware.Session{
	AccountID: "acct-editor",
	Email:     "editor@centers.example",
	Role:      accountDomain.RoleEditor,
	CreatedAt: time.Now(),
}

var adminSession = middleware.Session{
	AccountID: "acct-admin",
	Email:     "admin@centers.example",
	Role:      accountDomain.RoleAdmin,
	CreatedAt: time.Now(),
}

// newTestStores returns stores seeded with two centers and three programs.
func newTestStores() (*Stores, *mockCenterStore, *mockProgramStore) {
	centers := &mockCenterStore{centers: []centerDomain.Center{
		{ID: "W", Code: "wrc", NameEn: "Water Research", NameAr: "أبحاث المياه", Status: "active"},
		{ID: "E", Code: "EBRC", NameEn: "Energy", NameAr: "الطاقة", Status: "active"},
	}}
	created := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	programs := &mockProgramStore{programs: []programDomain.Program{
		{ID: "p2", CenterID: "W", NameEn: "Irrigation", Status: "Active", CreatedAt: created},
		{ID: "p1", CenterID: "W", NameEn: "Desalination", NameAr: "تحلية", Code: "DES", Status: "Active", Description: "Membrane **plants**", CreatedBy: "editor@centers.example", CreatedAt: created},
		{ID: "p3", CenterID: "W", NameEn: "Legacy Pumps", Status: "Retired", CreatedAt: created},
	}}
	return &Stores{
		CenterStore:  centers,
		ProgramStore: programs,
		AccountStore: &mockAccountStore{},
	}, centers, programs
}

// setupWeb installs test stores and options as the package globals.
func setupWeb(t *testing.T, opts Options) (*mockCenterStore, *mockProgramStore) {
	t.Helper()
	s, centers, programs := newTestStores()
	stores = s
	options = opts
	sessions = middleware.NewSessionStore()
	emailSender = nil
	t.Cleanup(func() {
		stores = nil
		options = Options{}
		sessions = nil
	})
	return centers, programs
}

// withSession returns r carrying the given session in its context.
func withSession(r *http.Request, sess middleware.Session) *http.Request {
	return r.WithContext(middleware.ContextWithSession(r.Context(), sess))
}

// formRequest builds a url-encoded POST.
func formRequest(path string, form url.Values) *http.Request {
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// jsonRequest builds a JSON request.
func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// responseCookie returns the named cookie set on the response.
func responseCookie(rec *httptest.ResponseRecorder, name string) (*http.Cookie, bool) {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// expansionIDs decodes the expansion cookie set on a response.
func expansionIDs(t *testing.T, rec *httptest.ResponseRecorder) []string {
	t.Helper()
	c, ok := responseCookie(rec, expansionCookieName)
	if !ok {
		t.Fatalf("response did not set %s", expansionCookieName)
	}
	raw, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		t.Fatalf("decode cookie: %v", err)
	}
	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		t.Fatalf("unmarshal cookie: %v", err)
	}
	return ids
}

// expansionCookie builds a request cookie holding ids.
func expansionCookie(ids ...string) *http.Cookie {
	raw, _ := json.Marshal(ids)
	return &http.Cookie{Name: expansionCookieName, Value: base64.RawURLEncoding.EncodeToString(raw)}
}

var errStoreDown = errors.New(`permission denied for table "programs"`)
