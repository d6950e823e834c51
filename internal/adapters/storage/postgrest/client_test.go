package postgrest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	programstore "centerdir/internal/adapters/storage/program"
	"centerdir/internal/domain/center"
	"centerdir/internal/domain/directory"
	"centerdir/internal/domain/program"
)

const testAnonKey = "anon-key"

// newTestClient starts a fake hosted store and returns a client pointed at it.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(Config{BaseURL: srv.URL, AnonKey: testAnonKey, HTTPClient: srv.Client()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

// TestNew_Config verifies configuration errors.
func TestNew_Config(t *testing.T) {
	if _, err := New(Config{BaseURL: "not a url", AnonKey: "k"}); err == nil {
		t.Error("expected error for relative url")
	}
	if _, err := New(Config{BaseURL: "https://x.supabase.co"}); err == nil {
		t.Error("expected error for missing anon key")
	}
	c, err := New(Config{BaseURL: "https://x.supabase.co/", AnonKey: "k"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.http == nil || c.http.Timeout != DefaultTimeout {
		t.Errorf("default client not configured: %+v", c.http)
	}
}

// TestCenterStore_List_BothShapes verifies both table shapes normalize to one Center.
func TestCenterStore_List_BothShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []center.Center
	}{
		{
			name: "bilingual shape",
			body: `[{"center_id":"W","code":"wrc","name_en":"Water Research","name_ar":"أبحاث المياه","status":"active"},
			        {"center_id":"E","code":"EBRC","name_en":"Energy","name_ar":null,"status":null}]`,
			want: []center.Center{
				{ID: "E", Code: "EBRC", NameEn: "Energy", Status: "active"},
				{ID: "W", Code: "wrc", NameEn: "Water Research", NameAr: "أبحاث المياه", Status: "active"},
			},
		},
		{
			name: "single name shape with numeric id",
			body: `[{"id":7,"code":"PRC","name":"Petroleum Research"}]`,
			want: []center.Center{{ID: "7", Code: "PRC", NameEn: "Petroleum Research", Status: "active"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/rest/v1/centers" {
					t.Errorf("path = %s", r.URL.Path)
				}
				if got := r.URL.Query().Get("order"); got != "name_en.asc" {
					t.Errorf("order = %q, want name_en.asc", got)
				}
				if r.Header.Get("apikey") != testAnonKey || r.Header.Get("Authorization") != "Bearer "+testAnonKey {
					t.Errorf("missing anon headers: %v", r.Header)
				}
				io.WriteString(w, tt.body)
			})
			got, err := c.Centers().List(context.Background())
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("centers mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// TestList_NameColumns verifies the order parameter follows the configured columns.
func TestList_NameColumns(t *testing.T) {
	orders := map[string]string{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		orders[r.URL.Path] = r.URL.Query().Get("order")
		io.WriteString(w, `[]`)
	}))
	t.Cleanup(srv.Close)
	c, err := New(Config{
		BaseURL:           srv.URL,
		AnonKey:           testAnonKey,
		HTTPClient:        srv.Client(),
		CenterNameColumn:  "name",
		ProgramNameColumn: " program_name ",
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := c.Centers().List(context.Background()); err != nil {
		t.Fatalf("Centers().List: %v", err)
	}
	if _, err := c.Programs().List(context.Background(), programstore.ListFilter{}); err != nil {
		t.Fatalf("Programs().List: %v", err)
	}
	want := map[string]string{"/rest/v1/centers": "name.asc", "/rest/v1/programs": "program_name.asc"}
	if diff := cmp.Diff(want, orders); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

// TestCenterStore_List_Failure verifies the store's message is kept.
func TestCenterStore_List_Failure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		io.WriteString(w, `{"message":"upstream offline"}`)
	})
	_, err := c.Centers().List(context.Background())
	if !errors.Is(err, directory.ErrDataUnavailable) {
		t.Fatalf("List() error = %v, want ErrDataUnavailable", err)
	}
	if got, want := err.Error(), "centers fetch failed: 503 upstream offline"; got != want {
		t.Errorf("message = %q, want %q", got, want)
	}
}

// TestCenterStore_GetByID verifies lookups and the not-found category.
func TestCenterStore_GetByID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[{"center_id":"W","code":"WRC","name_en":"Water Research"}]`)
	})
	got, err := c.Centers().GetByID(context.Background(), "W")
	if err != nil || got.Code != "WRC" {
		t.Fatalf("GetByID(W) = %+v, %v", got, err)
	}
	if _, err := c.Centers().GetByID(context.Background(), "X"); !errors.Is(err, directory.ErrNotFound) {
		t.Errorf("GetByID(X) error = %v, want ErrNotFound", err)
	}
}

// TestProgramStore_List_Query verifies filters are sent and rows normalized.
func TestProgramStore_List_Query(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("center_id") != "eq.W" || q.Get("status") != "ilike.active" || q.Get("order") != "name_en.asc" {
			t.Errorf("query = %v", q)
		}
		io.WriteString(w, `[
			{"id":"p2","center_id":"W","program_name":"Irrigation","program_code":"irr","status":"Active","created_at":"2025-01-02T03:04:05+00:00"},
			{"program_id":"p1","center_id":"W","name_en":"Desalination","code":"DES","status":"active","created_by":"editor@centers.example"}
		]`)
	})
	got, err := c.Programs().List(context.Background(), programstore.ListFilter{CenterID: "W", ActiveOnly: true})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ID != "p1" || got[1].ID != "p2" {
		t.Errorf("order = %s, %s; want p1, p2", got[0].ID, got[1].ID)
	}
	if got[1].Code != "IRR" || got[1].NameEn != "Irrigation" || got[1].CreatedAt.IsZero() {
		t.Errorf("unexpected normalized row %+v", got[1])
	}
}

// TestProgramStore_Create verifies the insert body, the user token and the returned row.
func TestProgramStore_Create(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer user-token" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("Prefer"); got != "return=representation" {
			t.Errorf("Prefer = %q", got)
		}
		var body []programInsert
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body) != 1 {
			t.Fatalf("body decode: %v %v", body, err)
		}
		if body[0].CenterID != "W" || body[0].NameEn != "Irrigation" {
			t.Errorf("body = %+v", body[0])
		}
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `[{"program_id":"42","center_id":"W","name_en":"Irrigation","status":"Active"}]`)
	})
	ctx := WithAccessToken(context.Background(), "user-token")
	got, err := c.Programs().Create(ctx, program.Program{CenterID: "W", NameEn: "Irrigation", Status: "Active"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got.ID != "42" {
		t.Errorf("ID = %q, want 42", got.ID)
	}
}

// TestProgramStore_Create_Errors verifies duplicate and failure mapping.
func TestProgramStore_Create_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
		wantMsg string
	}{
		{"conflict status", http.StatusConflict, `{"code":"23505","message":"duplicate key value"}`, directory.ErrDuplicateProgram, ""},
		{"unique code in body", http.StatusBadRequest, `{"code":"23505","message":"duplicate key value"}`, directory.ErrDuplicateProgram, ""},
		{"row policy", http.StatusUnauthorized, `{"code":"42501","message":"new row violates row-level security policy"}`, directory.ErrDataUnavailable,
			"insert failed: 401 new row violates row-level security policy"},
		{"plain text", http.StatusInternalServerError, `boom`, directory.ErrDataUnavailable, "insert failed: 500 boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})
			_, err := c.Programs().Create(context.Background(), program.Program{CenterID: "W", NameEn: "X"})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Create() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantMsg != "" && err.Error() != tt.wantMsg {
				t.Errorf("message = %q, want %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

// TestSignIn verifies the password grant and credential rejection.
func TestSignIn(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/token" || r.URL.Query().Get("grant_type") != "password" {
			t.Errorf("unexpected request %s", r.URL)
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "correct horse battery" {
			w.WriteHeader(http.StatusBadRequest)
			io.WriteString(w, `{"error":"invalid_grant","error_description":"Invalid login credentials"}`)
			return
		}
		io.WriteString(w, `{"access_token":"tok","refresh_token":"ref","expires_in":3600,"user":{"id":"u1","email":"editor@centers.example"}}`)
	})

	s, err := c.SignIn(context.Background(), "editor@centers.example", "correct horse battery")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if s.AccessToken != "tok" || s.UserID != "u1" || s.ExpiresAt.IsZero() {
		t.Errorf("unexpected session %+v", s)
	}

	if _, err := c.SignIn(context.Background(), "editor@centers.example", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("SignIn(wrong) error = %v, want ErrInvalidCredentials", err)
	}
}
