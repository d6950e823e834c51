package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"time"

	emailPkg "centerdir/internal/adapters/email"
	web "centerdir/internal/adapters/http"
	"centerdir/internal/adapters/http/perf"
	"centerdir/internal/adapters/storage/backend"
	"centerdir/internal/application/orchestrators"
	"centerdir/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	// Performance instrumentation shared by the timing middleware and TimedDB
	collector := perf.NewCollector(perf.DefaultRingSize)

	b, err := backend.Open(cfg, collector)
	if err != nil {
		log.Fatalf("failed to open %s backend: %v", cfg.Backend, err)
	}
	defer b.Close()

	stores := &web.Stores{
		CenterStore:  b.Centers,
		ProgramStore: b.Programs,
		AccountStore: b.Accounts,
	}
	if b.Remote != nil {
		stores.RemoteAuth = b.Remote
	}

	// Seed the first local account so the add-program form is reachable
	if cfg.AdminPassword != "" {
		seedDeps := orchestrators.CreateAccountDeps{AccountStore: b.Accounts}
		if err := orchestrators.ExecuteSeedAdmin(context.Background(), seedDeps, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.Fatalf("failed to seed admin: %v", err)
		}
	}

	// Configure email sender
	if cfg.ResendKey != "" {
		web.SetEmailSender(emailPkg.NewResendSender(cfg.ResendKey, cfg.MailFrom))
		log.Println("Email sender configured (Resend)")
	} else {
		web.SetEmailSender(emailPkg.NewNoopSender())
		if cfg.IsProduction() && len(cfg.NotifyTo) > 0 {
			log.Println("WARNING: CENTERDIR_RESEND_KEY is not set, program notifications are DISABLED")
		}
	}

	handler := web.NewMux(stores, collector, web.Options{
		StaticDir:       "static",
		CSRFKeyHex:      cfg.CSRFKey,
		Production:      cfg.IsProduction(),
		AllowAnonInsert: cfg.AllowAnonInsert,
		BaseURL:         cfg.BaseURL,
		NotifyTo:        cfg.NotifyTo,
		CORSOrigins:     cfg.CORSOrigins,
		SlowRequestMs:   cfg.SlowRequestMs,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("server_starting", "version", version, "addr", cfg.Addr, "env", cfg.Env, "backend", b.Name)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
