package web

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"centerdir/internal/adapters/http/middleware"
	"centerdir/internal/application/listutil"
	"centerdir/internal/application/orchestrators"
	"centerdir/internal/application/projections"
	"centerdir/internal/application/uistate"
	domainCenter "centerdir/internal/domain/center"
	"centerdir/internal/domain/directory"
	domainProgram "centerdir/internal/domain/program"
)

// writeAPIError writes a categorised failure as JSON.
func writeAPIError(w http.ResponseWriter, r *http.Request, err error, unavailable int) {
	status := errorStatus(err, unavailable)
	if status == http.StatusInternalServerError {
		internalError(w, err)
		return
	}
	logUnavailable(r, err)
	body := apiError{Error: err.Error()}
	var verr *directory.ValidationError
	if errors.As(err, &verr) {
		body = apiError{Error: verr.Message, Field: verr.Field}
	}
	if errors.Is(err, directory.ErrDuplicateProgram) {
		body.Error = duplicateProgramMessage
	}
	writeJSON(w, status, body)
}

// handleAPICenters handles GET /api/v1/centers
func handleAPICenters(w http.ResponseWriter, r *http.Request) {
	centers, err := stores.CenterStore.List(r.Context())
	if err != nil {
		writeAPIError(w, r, directory.Unavailable("list centers", err), http.StatusServiceUnavailable)
		return
	}
	if centers == nil {
		centers = []domainCenter.Center{}
	}
	writeJSON(w, http.StatusOK, centers)
}

// centerDetailJSON is the body of GET /api/v1/centers/{id}.
type centerDetailJSON struct {
	Center   domainCenter.Center     `json:"center"`
	Programs []domainProgram.Program `json:"programs"`
}

func loadCenterDetail(r *http.Request) (projections.GetCenterDetailResult, error) {
	result, err := projections.QueryGetCenterDetail(r.Context(), projections.GetCenterDetailQuery{
		CenterID: r.PathValue("id"),
		Lang:     currentLang(r),
	}, centerDetailDeps())
	if result.Programs == nil {
		result.Programs = []domainProgram.Program{}
	}
	return result, err
}

// handleAPICenter handles GET /api/v1/centers/{id}
func handleAPICenter(w http.ResponseWriter, r *http.Request) {
	result, err := loadCenterDetail(r)
	if err != nil {
		writeAPIError(w, r, err, http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, centerDetailJSON{Center: result.Center, Programs: result.Programs})
}

// handleAPICenterPrograms handles GET /api/v1/centers/{id}/programs (active programs only).
func handleAPICenterPrograms(w http.ResponseWriter, r *http.Request) {
	result, err := loadCenterDetail(r)
	if err != nil {
		writeAPIError(w, r, err, http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, result.Programs)
}

// directoryGroupJSON is one center section of the directory response.
type directoryGroupJSON struct {
	Center   domainCenter.Center     `json:"center"`
	Programs []domainProgram.Program `json:"programs"`
}

// directoryJSON is the body of GET /api/v1/directory.
type directoryJSON struct {
	Summary  string               `json:"summary"`
	Centers  int                  `json:"centers"`
	Programs int                  `json:"programs"`
	Groups   []directoryGroupJSON `json:"groups"`
	LoadedAt time.Time            `json:"loaded_at"`
}

// handleAPIDirectory handles GET /api/v1/directory?q=&center=
func handleAPIDirectory(w http.ResponseWriter, r *http.Request) {
	filter := listutil.ParseFilterParams(r.URL.Query())
	query := projections.ViewQuery{Search: filter.Search, CenterID: filter.CenterID, Lang: currentLang(r)}

	result, err := projections.QueryGetDirectoryView(r.Context(), query, uistate.Set{}, directoryDeps())
	if err != nil {
		writeAPIError(w, r, err, http.StatusServiceUnavailable)
		return
	}

	view := result.View
	body := directoryJSON{
		Summary:  view.Summary.String(),
		Centers:  view.Summary.Centers,
		Programs: view.Summary.Programs,
		Groups:   make([]directoryGroupJSON, 0, len(view.Groups)),
		LoadedAt: result.LoadedAt.UTC(),
	}
	for _, g := range view.Groups {
		programs := g.Programs
		if programs == nil {
			programs = []domainProgram.Program{}
		}
		body.Groups = append(body.Groups, directoryGroupJSON{Center: g.Center, Programs: programs})
	}
	writeJSON(w, http.StatusOK, body)
}

// createProgramJSON is the body of POST /api/v1/programs.
type createProgramJSON struct {
	CenterID    string `json:"center_id"`
	NameEn      string `json:"name_en"`
	NameAr      string `json:"name_ar"`
	Code        string `json:"code"`
	Status      string `json:"status"`
	Description string `json:"description"`
}

// handleAPICreateProgram handles POST /api/v1/programs
func handleAPICreateProgram(w http.ResponseWriter, r *http.Request) {
	if !canInsert(r) {
		if _, ok := middleware.GetSessionFromContext(r.Context()); ok {
			writeJSON(w, http.StatusForbidden, apiError{Error: "forbidden"})
			return
		}
		writeJSON(w, http.StatusUnauthorized, apiError{Error: "sign in to add programs"})
		return
	}

	var body createProgramJSON
	if err := strictDecode(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid request"})
		return
	}

	form := programForm{
		CenterID:    body.CenterID,
		NameEn:      body.NameEn,
		NameAr:      body.NameAr,
		Code:        body.Code,
		Status:      body.Status,
		Description: body.Description,
	}
	created, err := orchestrators.ExecuteCreateProgram(storeContext(r), form.input(r), createProgramDeps())
	if err != nil {
		writeAPIError(w, r, err, http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// handleAPIPerf handles GET /api/v1/admin/perf?minutes=&top=
func handleAPIPerf(w http.ResponseWriter, r *http.Request) {
	minutes := positiveInt(r.URL.Query().Get("minutes"), 15)
	top := positiveInt(r.URL.Query().Get("top"), 10)
	snap := perfCollector.Snapshot(timeNow().Add(-time.Duration(minutes)*time.Minute), top)
	writeJSON(w, http.StatusOK, snap)
}

// positiveInt parses s, falling back to def for blank, malformed or non-positive values.
func positiveInt(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
