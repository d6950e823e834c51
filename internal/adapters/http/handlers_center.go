package web

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"centerdir/internal/adapters/http/middleware"
	"centerdir/internal/application/listutil"
	"centerdir/internal/application/orchestrators"
	"centerdir/internal/application/projections"
	"centerdir/internal/domain/directory"
)

// duplicateProgramMessage is shown next to the form when the store rejects a duplicate.
const duplicateProgramMessage = "A program with this name or code already exists for this center."

// programForm carries the add-program form values and per-field errors.
type programForm struct {
	CenterID    string
	NameEn      string
	NameAr      string
	Code        string
	Status      string
	Description string
	Errors      map[string]string // keyed by field: center_id, name
	Notice      string            // form-level failure
}

func centerDetailDeps() projections.GetCenterDetailDeps {
	return projections.GetCenterDetailDeps{
		CenterStore:  stores.CenterStore,
		ProgramStore: stores.ProgramStore,
	}
}

// centerURL returns the detail page link for a center.
func centerURL(id, anchor string) string {
	u := url.URL{Path: "/center", RawQuery: url.Values{"id": {id}}.Encode(), Fragment: anchor}
	return u.String()
}

// handleCenterDetail handles GET /center?id=
func handleCenterDetail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id := listutil.ParseCenterID(r.URL.Query())
	renderCenterDetail(w, r, http.StatusOK, id, programForm{CenterID: id})
}

// renderCenterDetail loads the center and renders it with the given form state.
func renderCenterDetail(w http.ResponseWriter, r *http.Request, status int, id string, form programForm) {
	result, err := projections.QueryGetCenterDetail(r.Context(), projections.GetCenterDetailQuery{
		CenterID: id,
		Lang:     currentLang(r),
	}, centerDetailDeps())
	switch {
	case errors.Is(err, directory.ErrValidation):
		renderError(w, r, http.StatusBadRequest, "Center", "Missing center id")
		return
	case errors.Is(err, directory.ErrNotFound):
		renderError(w, r, http.StatusNotFound, "Center", "Center not found")
		return
	case err != nil:
		logUnavailable(r, err)
		renderError(w, r, errorStatus(err, http.StatusServiceUnavailable), "Center", err.Error())
		return
	}

	renderPage(w, r, status, "center.html", map[string]any{
		"Title":    result.Center.Name(currentLang(r)),
		"Center":   result.Center,
		"Programs": result.Programs,
		"Form":     form,
	})
}

// handleCreateProgram handles POST /center/programs (add-program form).
func handleCreateProgram(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !canInsert(r) {
		renderError(w, r, http.StatusForbidden, "Add program", "Sign in to add programs")
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	form := programForm{
		CenterID:    strings.TrimSpace(r.PostFormValue("center_id")),
		NameEn:      r.PostFormValue("name_en"),
		NameAr:      r.PostFormValue("name_ar"),
		Code:        r.PostFormValue("code"),
		Status:      r.PostFormValue("status"),
		Description: r.PostFormValue("description"),
	}

	created, err := orchestrators.ExecuteCreateProgram(storeContext(r), form.input(r), createProgramDeps())
	if err == nil {
		http.Redirect(w, r, centerURL(created.CenterID, "program-"+created.ID), http.StatusSeeOther)
		return
	}

	var verr *directory.ValidationError
	switch {
	case errors.As(err, &verr):
		if verr.Field == "center_id" {
			renderError(w, r, http.StatusBadRequest, "Center", "Missing center id")
			return
		}
		form.Errors = map[string]string{verr.Field: verr.Message}
		renderCenterDetail(w, r, http.StatusUnprocessableEntity, form.CenterID, form)
	case errors.Is(err, directory.ErrNotFound):
		renderError(w, r, http.StatusNotFound, "Center", "Center not found")
	case errors.Is(err, directory.ErrDuplicateProgram):
		form.Notice = duplicateProgramMessage
		renderCenterDetail(w, r, http.StatusConflict, form.CenterID, form)
	case errors.Is(err, directory.ErrDataUnavailable):
		logUnavailable(r, err)
		form.Notice = err.Error()
		renderCenterDetail(w, r, http.StatusBadGateway, form.CenterID, form)
	default:
		internalError(w, err)
	}
}

// input converts the form into orchestrator input, stamping the creator.
func (f programForm) input(r *http.Request) orchestrators.CreateProgramInput {
	createdBy := ""
	if sess, ok := middleware.GetSessionFromContext(r.Context()); ok {
		createdBy = sess.Email
	}
	return orchestrators.CreateProgramInput{
		CenterID:    f.CenterID,
		NameEn:      f.NameEn,
		NameAr:      f.NameAr,
		Code:        f.Code,
		Status:      f.Status,
		Description: f.Description,
		CreatedBy:   createdBy,
	}
}

// createProgramDeps wires the create-program orchestrator.
func createProgramDeps() orchestrators.CreateProgramDeps {
	return orchestrators.CreateProgramDeps{
		CenterStore:  stores.CenterStore,
		ProgramStore: stores.ProgramStore,
		Mailer:       emailSender,
		NotifyTo:     options.NotifyTo,
		BaseURL:      options.BaseURL,
		GenerateID:   generateID,
		Now:          timeNow,
	}
}
