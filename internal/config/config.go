// Package config reads server and CLI settings from the environment.
// A .env file in the working directory is loaded first when present;
// variables already set in the environment take precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Prefix is prepended to every variable name.
const Prefix = "CENTERDIR_"

// Backend names.
const (
	BackendSQLite    = "sqlite"
	BackendPostgres  = "postgres"
	BackendPostgREST = "postgrest"
)

// Config holds every runtime setting.
type Config struct {
	Addr    string
	Env     string
	BaseURL string
	Backend string

	DBPath                     string
	DatabaseURL                string
	PostgRESTURL               string
	PostgRESTAnonKey           string
	// Name columns the hosted tables are ordered by.
	PostgRESTCenterNameColumn  string
	PostgRESTProgramNameColumn string

	CSRFKey         string
	AllowAnonInsert bool
	AdminEmail      string
	AdminPassword   string

	ResendKey string
	MailFrom  string
	NotifyTo  []string

	CORSOrigins []string

	SlowQueryMs   int
	SlowRequestMs int
}

// IsProduction reports whether the server runs in production mode.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads .env (if any) and the environment.
// PRE: none
// POST: Returns a validated Config or an error naming the bad variable
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from an arbitrary variable source.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	get := func(key, fallback string) string {
		if v, ok := lookup(Prefix + key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return fallback
	}

	var errs []error
	getInt := func(key string, fallback int) int {
		raw := get(key, "")
		if raw == "" {
			return fallback
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			errs = append(errs, fmt.Errorf("%s%s: expected a non-negative integer, got %q", Prefix, key, raw))
			return fallback
		}
		return n
	}
	getBool := func(key string) bool {
		raw := get(key, "")
		if raw == "" {
			return false
		}
		b, err := strconv.ParseBool(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s%s: expected true or false, got %q", Prefix, key, raw))
		}
		return b
	}

	cfg := Config{
		Addr:                       get("ADDR", ":8080"),
		Env:                        get("ENV", "development"),
		BaseURL:                    get("BASE_URL", ""),
		Backend:                    strings.ToLower(get("BACKEND", BackendSQLite)),
		DBPath:                     get("DB_PATH", "centerdir.db"),
		DatabaseURL:                get("DATABASE_URL", ""),
		PostgRESTURL:               get("POSTGREST_URL", ""),
		PostgRESTAnonKey:           get("POSTGREST_ANON_KEY", ""),
		PostgRESTCenterNameColumn:  get("POSTGREST_CENTER_NAME_COLUMN", "name_en"),
		PostgRESTProgramNameColumn: get("POSTGREST_PROGRAM_NAME_COLUMN", "name_en"),
		CSRFKey:                    get("CSRF_KEY", ""),
		AllowAnonInsert:            getBool("ALLOW_ANON_INSERT"),
		AdminEmail:                 get("ADMIN_EMAIL", "admin@centers.example"),
		AdminPassword:              get("ADMIN_PASSWORD", ""),
		ResendKey:                  get("RESEND_KEY", ""),
		MailFrom:                   get("MAIL_FROM", "Center Directory <noreply@centers.example>"),
		NotifyTo:                   splitList(get("NOTIFY_TO", "")),
		CORSOrigins:                splitList(get("CORS_ORIGINS", "")),
		SlowQueryMs:                getInt("SLOW_QUERY_MS", 50),
		SlowRequestMs:              getInt("SLOW_REQUEST_MS", 500),
	}

	switch cfg.Backend {
	case BackendSQLite:
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			errs = append(errs, fmt.Errorf("%sDATABASE_URL is required for the postgres backend", Prefix))
		}
	case BackendPostgREST:
		if cfg.PostgRESTURL == "" || cfg.PostgRESTAnonKey == "" {
			errs = append(errs, fmt.Errorf("%sPOSTGREST_URL and %sPOSTGREST_ANON_KEY are required for the postgrest backend", Prefix, Prefix))
		}
	default:
		errs = append(errs, fmt.Errorf("%sBACKEND: unknown backend %q", Prefix, cfg.Backend))
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}
