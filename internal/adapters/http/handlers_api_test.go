package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"centerdir/internal/adapters/http/perf"
	centerDomain "centerdir/internal/domain/center"
	programDomain "centerdir/internal/domain/program"
)

// serveAPI routes req through the API mux so path values are populated.
func serveAPI(req *http.Request) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	registerAPIRoutes(mux)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

// TestAPICenters lists every center.
func TestAPICenters(t *testing.T) {
	setupWeb(t, Options{})
	rec := serveAPI(httptest.NewRequest("GET", "/api/v1/centers", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want %d", rec.Code, http.StatusOK)
	}
	var got []centerDomain.Center
	decodeBody(t, rec, &got)
	ids := make([]string, 0, len(got))
	for _, c := range got {
		ids = append(ids, c.ID)
	}
	if diff := cmp.Diff([]string{"W", "E"}, ids); diff != "" {
		t.Errorf("center ids mismatch (-want +got):\n%s", diff)
	}
}

// TestAPICenters_StoreFailure returns the store message with 503.
func TestAPICenters_StoreFailure(t *testing.T) {
	centers, _ := setupWeb(t, Options{})
	centers.err = errStoreDown

	rec := serveAPI(httptest.NewRequest("GET", "/api/v1/centers", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("got %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
	var body apiError
	decodeBody(t, rec, &body)
	if body.Error != errStoreDown.Error() {
		t.Errorf("error = %q, want %q", body.Error, errStoreDown.Error())
	}
}

// TestAPICenter covers the single-center endpoints.
func TestAPICenter(t *testing.T) {
	tests := []struct {
		name        string
		target      string
		wantStatus  int
		wantProgram []string
	}{
		{name: "detail", target: "/api/v1/centers/W", wantStatus: http.StatusOK, wantProgram: []string{"p1", "p2"}},
		{name: "programs", target: "/api/v1/centers/W/programs", wantStatus: http.StatusOK, wantProgram: []string{"p1", "p2"}},
		{name: "empty center", target: "/api/v1/centers/E/programs", wantStatus: http.StatusOK, wantProgram: []string{}},
		{name: "unknown", target: "/api/v1/centers/nope", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupWeb(t, Options{})
			rec := serveAPI(httptest.NewRequest("GET", tt.target, nil))
			if rec.Code != tt.wantStatus {
				t.Fatalf("got %d, want %d. Body: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantProgram == nil {
				return
			}

			var programs []programDomain.Program
			if tt.name == "detail" {
				var detail centerDetailJSON
				decodeBody(t, rec, &detail)
				if detail.Center.ID != "W" {
					t.Errorf("center = %q", detail.Center.ID)
				}
				programs = detail.Programs
			} else {
				decodeBody(t, rec, &programs)
			}
			ids := []string{}
			for _, p := range programs {
				ids = append(ids, p.ID)
			}
			if diff := cmp.Diff(tt.wantProgram, ids); diff != "" {
				t.Errorf("program ids mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// TestAPIDirectory returns the filtered grouping with its summary.
func TestAPIDirectory(t *testing.T) {
	setupWeb(t, Options{})
	rec := serveAPI(httptest.NewRequest("GET", "/api/v1/directory?q=desal", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want %d", rec.Code, http.StatusOK)
	}
	var body directoryJSON
	decodeBody(t, rec, &body)
	if body.Summary != "Showing 1 center(s), 1 program(s)" {
		t.Errorf("summary = %q", body.Summary)
	}
	if len(body.Groups) != 1 || body.Groups[0].Center.ID != "W" || len(body.Groups[0].Programs) != 1 {
		t.Errorf("unexpected groups %+v", body.Groups)
	}
	if body.LoadedAt.IsZero() {
		t.Errorf("loaded_at not set")
	}
}

// TestAPIDirectory_UnknownCenter verifies a stale center filter is a 404.
func TestAPIDirectory_UnknownCenter(t *testing.T) {
	setupWeb(t, Options{})
	rec := serveAPI(httptest.NewRequest("GET", "/api/v1/directory?center=GONE", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("got %d, want %d", rec.Code, http.StatusNotFound)
	}
	var body apiError
	decodeBody(t, rec, &body)
	if body.Error != "center not found: GONE" {
		t.Errorf("error = %q", body.Error)
	}
}

// TestAPICreateProgram covers the JSON insert endpoint.
func TestAPICreateProgram(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		session    bool
		viewer     bool
		wantStatus int
		wantError  string
		wantField  string
	}{
		{name: "anonymous", body: `{"center_id":"W","name_en":"Brine"}`, wantStatus: http.StatusUnauthorized},
		{name: "session without edit role", body: `{"center_id":"W","name_en":"Brine"}`, viewer: true, wantStatus: http.StatusForbidden},
		{name: "created", body: `{"center_id":"W","name_en":"Brine","code":"br"}`, session: true, wantStatus: http.StatusCreated},
		{name: "missing name", body: `{"center_id":"W"}`, session: true, wantStatus: http.StatusUnprocessableEntity, wantField: "name", wantError: "program name is required"},
		{name: "unknown field", body: `{"center_id":"W","nme":"x"}`, session: true, wantStatus: http.StatusBadRequest},
		{name: "unknown center", body: `{"center_id":"Z","name_en":"Brine"}`, session: true, wantStatus: http.StatusNotFound},
		{name: "duplicate", body: `{"center_id":"W","name_en":"Irrigation"}`, session: true, wantStatus: http.StatusConflict, wantError: duplicateProgramMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupWeb(t, Options{})
			req := jsonRequest("POST", "/api/v1/programs", tt.body)
			switch {
			case tt.session:
				req = withSession(req, editorSession)
			case tt.viewer:
				viewer := editorSession
				viewer.Role = "viewer"
				req = withSession(req, viewer)
			}
			rec := serveAPI(req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("got %d, want %d. Body: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if rec.Code == http.StatusCreated {
				var created programDomain.Program
				decodeBody(t, rec, &created)
				if created.ID == "" || created.Code != "BR" || created.CreatedBy != editorSession.Email {
					t.Errorf("unexpected program %+v", created)
				}
				return
			}
			if tt.wantError == "" {
				return
			}
			var body apiError
			decodeBody(t, rec, &body)
			if body.Error != tt.wantError || body.Field != tt.wantField {
				t.Errorf("got %+v, want error %q field %q", body, tt.wantError, tt.wantField)
			}
		})
	}
}

// TestAPIPerf_RequiresAdmin verifies the perf snapshot is admin-only.
func TestAPIPerf_RequiresAdmin(t *testing.T) {
	setupWeb(t, Options{})
	perfCollector = perf.NewCollector(16)
	t.Cleanup(func() { perfCollector = nil })
	perfCollector.Record(perf.Entry{Kind: perf.KindRequest, Path: "GET /directory", StatusCode: 200, DurationMs: 12, Timestamp: time.Now()})

	tests := []struct {
		name       string
		apply      func(*http.Request) *http.Request
		wantStatus int
	}{
		{name: "anonymous", apply: func(r *http.Request) *http.Request { return r }, wantStatus: http.StatusUnauthorized},
		{name: "editor", apply: func(r *http.Request) *http.Request { return withSession(r, editorSession) }, wantStatus: http.StatusForbidden},
		{name: "admin", apply: func(r *http.Request) *http.Request { return withSession(r, adminSession) }, wantStatus: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serveAPI(tt.apply(httptest.NewRequest("GET", "/api/v1/admin/perf?minutes=5&top=3", nil)))
			if rec.Code != tt.wantStatus {
				t.Fatalf("got %d, want %d", rec.Code, tt.wantStatus)
			}
			if rec.Code != http.StatusOK {
				return
			}
			var snap perf.Snapshot
			decodeBody(t, rec, &snap)
			if snap.TotalRecorded != 1 || len(snap.SlowestPaths) != 1 {
				t.Errorf("unexpected snapshot %+v", snap)
			}
		})
	}
}

// TestPositiveInt tests the query parameter fallback.
func TestPositiveInt(t *testing.T) {
	tests := map[string]int{"": 15, "abc": 15, "-3": 15, "0": 15, "7": 7}
	for in, want := range tests {
		if got := positiveInt(in, 15); got != want {
			t.Errorf("positiveInt(%q) = %d, want %d", in, got, want)
		}
	}
}
