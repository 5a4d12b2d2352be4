package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Beerzinss/DatKomp/internal/cart"
	"github.com/Beerzinss/DatKomp/internal/config"
	"github.com/Beerzinss/DatKomp/internal/handlers"
	"github.com/Beerzinss/DatKomp/internal/notify"
	"github.com/Beerzinss/DatKomp/internal/store"
	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Init DB
	db, err := store.NewStore(ctx, cfg.DBDriver, cfg.DatabaseURL, store.Options{
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	})
	if err != nil {
		slog.Error("Failed to initialize store", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	// 3. Session Setup
	sessionStore := sessions.NewCookieStore(cfg.SessionKey)
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.Secure = cfg.CookieSecure
	sessionStore.Options.SameSite = http.SameSiteLaxMode
	sessionStore.Options.Path = "/"
	sessionStore.Options.MaxAge = 7 * 24 * 3600
	if cfg.CookieDomain != "" {
		sessionStore.Options.Domain = cfg.CookieDomain
	}
	cartStore, err := cart.NewStore(cfg.CartSessionDir, *sessionStore.Options, cfg.SessionKey)
	if err != nil {
		slog.Error("Failed to initialize cart sessions", "error", err)
		os.Exit(1)
	}

	// 4. Init Templates
	templates := handlers.NewTemplateCache()
	if err := templates.Load(cfg.TemplateDir); err != nil {
		slog.Error("Failed to load templates", "error", err)
		os.Exit(1)
	}

	// 5. Routes
	limiters := handlers.Limiters{
		Auth:     handlers.NewRateLimiter(10, time.Minute),
		Checkout: handlers.NewRateLimiter(5, time.Minute),
		Contact:  handlers.NewRateLimiter(3, time.Minute),
	}
	defer limiters.Auth.Stop()
	defer limiters.Checkout.Stop()
	defer limiters.Contact.Stop()

	router := handlers.NewRouter(handlers.RouterConfig{
		Base: handlers.Base{
			Store:        db,
			SessionStore: sessionStore,
			CartStore:    cartStore,
			Templates:    templates,
		},
		Notifier:  notify.LogNotifier{Logger: logger},
		BaseURL:   cfg.BaseURL,
		UploadDir: cfg.UploadDir,
		StaticDir: "static",
		Limiters:  limiters,
	})

	// 6. Middleware Setup
	origins := []string{"localhost:" + cfg.Port, "127.0.0.1:" + cfg.Port}
	if u, err := url.Parse(cfg.BaseURL); err == nil && u.Host != "" {
		origins = append(origins, u.Host)
	}
	CSRF := csrf.Protect(
		cfg.CSRFKey,
		csrf.Secure(cfg.CookieSecure),
		csrf.Path("/"),
		csrf.TrustedOrigins(origins),
	)
	handler := CSRF(router)
	if !cfg.CookieSecure {
		// plain HTTP in development, the origin checks would reject every post otherwise
		handler = handlers.PlaintextHTTP(handler)
	}

	// 7. Start Server with Graceful Shutdown
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "port", cfg.Port, "driver", cfg.DBDriver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		slog.Error("Server failed to listen and serve", "error", err)
		os.Exit(1)
	case <-ctx.Done():
	}

	slog.Info("Shutting down server gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Server exited gracefully.")
}
