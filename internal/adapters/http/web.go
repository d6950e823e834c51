package web

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/cors"

	"centerdir/internal/adapters/email"
	"centerdir/internal/adapters/http/middleware"
	"centerdir/internal/adapters/http/perf"
	accountStore "centerdir/internal/adapters/storage/account"
	centerStore "centerdir/internal/adapters/storage/center"
	programStore "centerdir/internal/adapters/storage/program"
	"centerdir/internal/application/orchestrators"
)

// Stores holds all storage dependencies.
type Stores struct {
	CenterStore  centerStore.Store
	ProgramStore programStore.Store
	AccountStore accountStore.Store
	// RemoteAuth signs users in against the hosted store. Nil for SQL backends.
	RemoteAuth orchestrators.PasswordSignIn
}

// Options carries the settings the HTTP layer reads from configuration.
type Options struct {
	StaticDir       string
	CSRFKeyHex      string
	Production      bool
	AllowAnonInsert bool
	BaseURL         string
	NotifyTo        []string
	CORSOrigins     []string
	SlowRequestMs   int
}

// loadCSRFKey decodes the hex-encoded 32-byte CSRF secret.
// In production, the key MUST be set. In development, a random key is generated per startup.
func loadCSRFKey(keyHex string, production bool) []byte {
	if keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			log.Fatal("CENTERDIR_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		return key
	}
	if production {
		log.Fatal("CENTERDIR_CSRF_KEY is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("failed to generate CSRF key: %v", err)
	}
	slog.Warn("csrf_key_random", "hint", "sessions won't survive restart; set CENTERDIR_CSRF_KEY")
	return key
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global session store instance
var sessions *middleware.SessionStore

// Global options (set by NewMux)
var options Options

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 10

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

// Global email sender instance (set by SetEmailSender)
var emailSender email.Sender

// SetEmailSender sets the sender used for program-created notifications.
func SetEmailSender(sender email.Sender) {
	emailSender = sender
}

// NewMux wires HTTP handlers for the app.
func NewMux(s *Stores, collector *perf.Collector, opts Options) http.Handler {
	stores = s
	perfCollector = collector
	options = opts
	sessions = middleware.NewSessionStore()
	middleware.SecureCookies = opts.Production

	mux := http.NewServeMux()
	if opts.StaticDir != "" {
		mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(opts.StaticDir))))
	}
	registerRoutes(mux)

	api := http.NewServeMux()
	registerAPIRoutes(api)
	mux.Handle("/api/", cors.New(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	}).Handler(api))

	csrfKey := loadCSRFKey(opts.CSRFKeyHex, opts.Production)

	// Rate limiter: configurable requests per second per IP (OWASP A04)
	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)

	// Apply middleware: Timing -> RateLimit -> Auth -> CSRF -> SecurityHeaders -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(csrfKey),
		middleware.Auth(sessions),
		middleware.RateLimit(limiter),
		middleware.Timing(collector, opts.SlowRequestMs),
	)
}
