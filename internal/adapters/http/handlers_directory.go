package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"centerdir/internal/application/listutil"
	"centerdir/internal/application/projections"
	"centerdir/internal/domain/directory"
	"centerdir/internal/domain/locale"
)

// handleLanding handles GET / (center tiles).
func handleLanding(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		renderError(w, r, http.StatusNotFound, "Not found", "Page not found")
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	tiles, err := projections.QueryGetLandingTiles(r.Context(), currentLang(r), projections.GetLandingTilesDeps{
		CenterStore: stores.CenterStore,
	})
	if err != nil {
		logUnavailable(r, err)
		renderError(w, r, errorStatus(err, http.StatusServiceUnavailable), "Research Centers", err.Error())
		return
	}

	renderTemplate(w, r, "landing.html", map[string]any{
		"Title": "Research Centers",
		"Tiles": tiles,
	})
}

// directoryDeps returns the projection dependencies for the grouped view.
func directoryDeps() projections.GetDirectoryViewDeps {
	return projections.GetDirectoryViewDeps{
		CenterStore:  stores.CenterStore,
		ProgramStore: stores.ProgramStore,
	}
}

// handleDirectory handles GET /directory?q=&center=
func handleDirectory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	filter := listutil.ParseFilterParams(r.URL.Query())
	expansion := loadExpansion(w, r)
	query := projections.ViewQuery{Search: filter.Search, CenterID: filter.CenterID, Lang: currentLang(r)}

	result, err := projections.QueryGetDirectoryView(r.Context(), query, expansion.Set(), directoryDeps())
	if err != nil {
		renderDirectoryError(w, r, err)
		return
	}

	expandLabel := "Collapse all"
	if result.View.AnyCollapsed() {
		expandLabel = "Expand all"
	}
	renderTemplate(w, r, "directory.html", map[string]any{
		"Title":       "Programs Directory",
		"View":        result.View,
		"Filter":      filter,
		"Summary":     result.View.Summary.String(),
		"LoadedAt":    result.LoadedAt.Format("2 Jan 2006 15:04"),
		"ExpandLabel": expandLabel,
	})
}

// renderDirectoryError shows a failed directory load. A center filter that
// names no center gets the not-found page.
func renderDirectoryError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, directory.ErrNotFound) {
		renderError(w, r, http.StatusNotFound, "Programs Directory", "Center not found")
		return
	}
	logUnavailable(r, err)
	renderError(w, r, errorStatus(err, http.StatusServiceUnavailable), "Programs Directory", err.Error())
}

// handleDirectoryToggle handles POST /directory/toggle
// Flips one center's expansion and returns to the same filtered view.
func handleDirectoryToggle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	id := strings.TrimSpace(r.PostFormValue("id"))
	filter := listutil.ParseFilterParams(r.PostForm)
	expanded, err := loadExpansion(w, r).Toggle(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	slog.Debug("expansion_toggled", "center_id", id, "expanded", expanded)

	http.Redirect(w, r, filter.DirectoryURL("center-"+id), http.StatusSeeOther)
}

// handleDirectoryExpandAll handles POST /directory/expand-all
// If any rendered group is collapsed every center is expanded, otherwise all collapse.
func handleDirectoryExpandAll(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	filter := listutil.ParseFilterParams(r.PostForm)
	expansion := loadExpansion(w, r)
	query := projections.ViewQuery{Search: filter.Search, CenterID: filter.CenterID, Lang: currentLang(r)}

	result, err := projections.QueryGetDirectoryView(r.Context(), query, expansion.Set(), directoryDeps())
	if err != nil {
		renderDirectoryError(w, r, err)
		return
	}

	if _, err := expansion.ToggleAll(result.View.AnyCollapsed(), result.View.AllCenterIDs()); err != nil {
		internalError(w, err)
		return
	}
	http.Redirect(w, r, filter.DirectoryURL(""), http.StatusSeeOther)
}

// handleLanguage handles POST /lang
// Stores the chosen language and returns to the page the form was posted from.
func handleLanguage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	lang := locale.Parse(r.PostFormValue("lang"))
	http.SetCookie(w, &http.Cookie{
		Name:     langCookieName,
		Value:    string(lang),
		Path:     "/",
		MaxAge:   expansionCookieMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, localRedirect(r.PostFormValue("next")), http.StatusSeeOther)
}

// localRedirect returns next when it is a same-site path, otherwise "/".
func localRedirect(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
