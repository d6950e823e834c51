package web

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"centerdir/internal/adapters/http/middleware"
	domainCenter "centerdir/internal/domain/center"
	"centerdir/internal/domain/locale"
	domainProgram "centerdir/internal/domain/program"
)

//go:embed templates/*.html
var templateFS embed.FS

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set), preventing XSS.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

const langCookieName = "lang"

// renderMarkdown converts a program description to HTML.
func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

// baseFuncs are the request-independent template helpers. Request-bound
// helpers are declared here with zero values and replaced per render.
var baseFuncs = template.FuncMap{
	"markdown": renderMarkdown,
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("2 Jan 2006")
	},
	"upper": strings.ToUpper,

	"lang":         func() locale.Lang { return locale.English },
	"dir":          func() string { return "ltr" },
	"otherLang":    func() locale.Lang { return locale.Arabic },
	"csrfField":    func() template.HTML { return "" },
	"isLoggedIn":   func() bool { return false },
	"currentEmail": func() string { return "" },
	"canEdit":      func() bool { return false },
	"centerName":   func(c domainCenter.Center) string { return c.Name(locale.English) },
	"programName":  func(p domainProgram.Program) string { return p.Name(locale.English) },
	"pick":         func(en, ar string) string { return locale.English.Pick(en, ar) },
	"requestPath":  func() string { return "/" },
}

// pages maps a page file to its parsed template set (layout + page).
var pages = mustParsePages("landing.html", "directory.html", "center.html", "login.html", "error.html")

func mustParsePages(names ...string) map[string]*template.Template {
	out := make(map[string]*template.Template, len(names))
	for _, name := range names {
		out[name] = template.Must(template.New("layout.html").Funcs(baseFuncs).ParseFS(templateFS, "templates/layout.html", "templates/"+name))
	}
	return out
}

// currentLang returns the language chosen by the lang cookie.
func currentLang(r *http.Request) locale.Lang {
	if c, err := r.Cookie(langCookieName); err == nil {
		return locale.Parse(c.Value)
	}
	return locale.English
}

// canInsert reports whether the request may add programs.
func canInsert(r *http.Request) bool {
	if options.AllowAnonInsert {
		return true
	}
	sess, ok := middleware.GetSessionFromContext(r.Context())
	return ok && sess.CanEdit()
}

func requestFuncs(r *http.Request) template.FuncMap {
	lang := currentLang(r)
	sess, loggedIn := middleware.GetSessionFromContext(r.Context())
	editable := canInsert(r)
	return template.FuncMap{
		"lang":         func() locale.Lang { return lang },
		"dir":          func() string { return lang.Dir() },
		"otherLang":    func() locale.Lang { return lang.Toggle() },
		"csrfField":    func() template.HTML { return csrf.TemplateField(r) },
		"isLoggedIn":   func() bool { return loggedIn },
		"currentEmail": func() string { return sess.Email },
		"canEdit":      func() bool { return editable },
		"centerName":   func(c domainCenter.Center) string { return c.Name(lang) },
		"programName":  func(p domainProgram.Program) string { return p.Name(lang) },
		"pick":         func(en, ar string) string { return lang.Pick(en, ar) },
		"requestPath":  func() string { return r.URL.RequestURI() },
	}
}

// renderPage executes a page inside the layout with the given status.
// The page is rendered to a buffer first so a template failure never
// leaves a half-written response.
func renderPage(w http.ResponseWriter, r *http.Request, status int, name string, data map[string]any) {
	base, ok := pages[name]
	if !ok {
		internalError(w, errUnknownTemplate(name))
		return
	}
	tpl, err := base.Clone()
	if err != nil {
		internalError(w, err)
		return
	}
	tpl.Funcs(requestFuncs(r))

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		slog.Error("render_error", "template", name, "error", err.Error())
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// renderTemplate renders a page with status 200.
func renderTemplate(w http.ResponseWriter, r *http.Request, name string, data map[string]any) {
	renderPage(w, r, http.StatusOK, name, data)
}

// renderError renders the single inline error region in place of the page body.
func renderError(w http.ResponseWriter, r *http.Request, status int, title, message string) {
	renderPage(w, r, status, "error.html", map[string]any{
		"Title":   title,
		"Message": message,
	})
}

type errUnknownTemplate string

func (e errUnknownTemplate) Error() string { return "unknown template " + string(e) }
