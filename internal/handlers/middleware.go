package handlers

import (
	"context"
	"encoding/gob"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/Beerzinss/DatKomp/internal/models"
	"github.com/Beerzinss/DatKomp/internal/store"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"
)

// Register types for gob encoding (used by sessions)
func init() {
	gob.Register(FlashMessage{})
}

// LoggingMiddleware logs the details of each HTTP request
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		slog.Info("HTTP Request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"ip", r.RemoteAddr,
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// SecurityHeadersMiddleware adds standard security headers
func SecurityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "same-origin")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; script-src 'self'")
		next.ServeHTTP(w, r)
	})
}

// PlaintextHTTP marks requests as plain HTTP for the CSRF origin checks.
// Only used when cookies are not marked Secure (local development).
func PlaintextHTTP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
	})
}

// RateLimiter allows limit requests per client IP in every window.
type RateLimiter struct {
	visitors sync.Map // ip -> *visitor
	limit    int
	window   time.Duration
	done     chan struct{}
	once     sync.Once
}

type visitor struct {
	mu    sync.Mutex
	start time.Time
	count int
}

// NewRateLimiter creates a new rate limiter with a cleanup goroutine
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		limit:  limit,
		window: window,
		done:   make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

// Stop ends the cleanup goroutine.
func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.done) })
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-rl.done:
			return
		case now := <-ticker.C:
			rl.visitors.Range(func(key, value any) bool {
				v := value.(*visitor)
				v.mu.Lock()
				expired := now.Sub(v.start) > rl.window
				v.mu.Unlock()
				if expired {
					rl.visitors.Delete(key)
				}
				return true
			})
		}
	}
}

func (rl *RateLimiter) allow(ip string, now time.Time) bool {
	value, _ := rl.visitors.LoadOrStore(ip, &visitor{start: now})
	v := value.(*visitor)
	v.mu.Lock()
	defer v.mu.Unlock()
	if now.Sub(v.start) > rl.window {
		v.start = now
		v.count = 0
	}
	v.count++
	return v.count <= rl.limit
}

// Middleware enforces the rate limit
func (rl *RateLimiter) Middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !rl.allow(ip, time.Now()) {
			slog.Warn("Rate limit exceeded", "ip", ip, "path", r.URL.Path)
			http.Error(w, "Too Many Requests. Please try again later.", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// FlashMessage structure
type FlashMessage struct {
	Type    string
	Message string
}

// GetFlash retrieves flash messages from the session
func GetFlash(session *sessions.Session) []FlashMessage {
	flashes := session.Flashes()
	var messages []FlashMessage
	for _, f := range flashes {
		if fm, ok := f.(FlashMessage); ok {
			messages = append(messages, fm)
		}
	}
	return messages
}

type ctxKey int

const userKey ctxKey = iota

// LoadUser resolves the logged-in user from the auth session and stores it
// in the request context. A session pointing at a deleted user is cleared.
func (b *Base) LoadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, _ := b.SessionStore.Get(r, authSessionName)
		id, ok := session.Values[sessionUserID].(int64)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		user, err := b.Store.GetUserByID(r.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			slog.Warn("Dropping session of unknown user", "user_id", id)
			delete(session.Values, sessionUserID)
			delete(session.Values, sessionIsAdmin)
			if err := session.Save(r, w); err != nil {
				slog.Error("Failed to save session", "error", err)
			}
			next.ServeHTTP(w, r)
			return
		}
		if err != nil {
			b.serverError(w, r, "Failed to load session user", err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
	})
}

// CurrentUser returns the logged-in user or nil.
func CurrentUser(r *http.Request) *models.User {
	u, _ := r.Context().Value(userKey).(*models.User)
	return u
}

// RequireLogin redirects anonymous visitors to the login page.
func (b *Base) RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if CurrentUser(r) == nil {
			b.flash(w, r, "error", "Please log in to continue.")
			http.Redirect(w, r, "/account/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin lets only administrators through.
func (b *Base) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		if user == nil {
			slog.Info("Admin access without login, redirecting", "path", r.URL.Path)
			b.flash(w, r, "error", "You must be logged in to access this page.")
			http.Redirect(w, r, "/account/login", http.StatusSeeOther)
			return
		}
		if !user.IsAdmin {
			slog.Warn("Admin access denied", "user_id", user.ID, "path", r.URL.Path)
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
