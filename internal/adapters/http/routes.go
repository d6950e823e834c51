package web

import (
	"net/http"

	"centerdir/internal/adapters/http/middleware"
	domainAccount "centerdir/internal/domain/account"
)

// registerRoutes wires the HTML pages.
func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/", handleLanding)
	mux.HandleFunc("/directory", handleDirectory)
	mux.HandleFunc("/directory/toggle", handleDirectoryToggle)
	mux.HandleFunc("/directory/expand-all", handleDirectoryExpandAll)
	mux.HandleFunc("/center", handleCenterDetail)
	mux.HandleFunc("/center/programs", handleCreateProgram)
	mux.HandleFunc("/lang", handleLanguage)
	mux.HandleFunc("/login", handleLogin)
	mux.HandleFunc("/logout", handleLogout)
}

// registerAPIRoutes wires the JSON API under /api/v1/.
func registerAPIRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/centers", handleAPICenters)
	mux.HandleFunc("GET /api/v1/centers/{id}", handleAPICenter)
	mux.HandleFunc("GET /api/v1/centers/{id}/programs", handleAPICenterPrograms)
	mux.HandleFunc("GET /api/v1/directory", handleAPIDirectory)
	mux.HandleFunc("POST /api/v1/programs", handleAPICreateProgram)
	mux.Handle("GET /api/v1/admin/perf", middleware.RequireRole(domainAccount.RoleAdmin)(http.HandlerFunc(handleAPIPerf)))
}
