// Package web serves the HTML surface: registration, login, the gated
// discovery page and logout.
package web

import (
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/marloe/showbill/internal/discover"
	"github.com/marloe/showbill/internal/repository"
	"github.com/marloe/showbill/internal/service/auth"
)

//go:embed templates/*.html
var templateFS embed.FS

// Router wires HTTP endpoints to services.
type Router struct {
	mux        *http.ServeMux
	logger     *slog.Logger
	auth       auth.Service
	events     discover.Service
	cookies    CookieCodec
	templates  *template.Template
	sessionTTL time.Duration
}

// NewRouter assembles routes with dependencies.
func NewRouter(logger *slog.Logger, authSvc auth.Service, eventsSvc discover.Service, cookies CookieCodec, sessionTTL time.Duration) (*Router, error) {
	templates, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	r := &Router{
		mux:        http.NewServeMux(),
		logger:     logger,
		auth:       authSvc,
		events:     eventsSvc,
		cookies:    cookies,
		templates:  templates,
		sessionTTL: sessionTTL,
	}
	r.register()
	return r, nil
}

// ServeHTTP delegates to the underlying mux.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

func (r *Router) register() {
	r.mux.HandleFunc("/", r.handleIndex)
	r.mux.HandleFunc("/login", r.handleLogin)
	r.mux.HandleFunc("/register", r.handleRegister)
	r.mux.HandleFunc("/discover", r.requireAuth(r.handleDiscover))
	r.mux.HandleFunc("/logout", r.requireAuth(r.handleLogout))
}

func (r *Router) handleIndex(w http.ResponseWriter, req *http.Request) {
	if req.URL.Path != "/" {
		http.NotFound(w, req)
		return
	}
	http.Redirect(w, req, "/login", http.StatusSeeOther)
}

func (r *Router) handleLogin(w http.ResponseWriter, req *http.Request) {
	switch req.Method {
	case http.MethodGet:
		r.render(w, "login", map[string]any{})
	case http.MethodPost:
		r.handleLoginSubmit(w, req)
	default:
		r.methodNotAllowed(w)
	}
}

func (r *Router) handleLoginSubmit(w http.ResponseWriter, req *http.Request) {
	if err := req.ParseForm(); err != nil {
		r.render(w, "login", map[string]any{"Message": "Invalid form submission.", "Error": true})
		return
	}
	username := req.PostFormValue("username")
	password := req.PostFormValue("password")

	_, token, err := r.auth.Login(req.Context(), username, password)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrNotFound):
		// Unknown accounts are treated as new users and sent to registration.
		http.Redirect(w, req, "/register", http.StatusSeeOther)
		return
	case errors.Is(err, auth.ErrInvalidCredentials):
		r.render(w, "login", map[string]any{"Message": "Incorrect username or password.", "Error": true})
		return
	default:
		r.logger.Error("login failed", "error", err)
		r.render(w, "login", map[string]any{"Message": "Login failed. Please try again.", "Error": true})
		return
	}

	cookie, err := r.cookies.MakeCookie(token, r.sessionTTL)
	if err != nil {
		r.logger.Error("session cookie issuance failed", "error", err)
		r.render(w, "login", map[string]any{"Message": "Login failed. Please try again.", "Error": true})
		return
	}
	http.SetCookie(w, cookie)
	http.Redirect(w, req, "/discover", http.StatusSeeOther)
}

func (r *Router) handleRegister(w http.ResponseWriter, req *http.Request) {
	switch req.Method {
	case http.MethodGet:
		r.render(w, "register", map[string]any{})
	case http.MethodPost:
		r.handleRegisterSubmit(w, req)
	default:
		r.methodNotAllowed(w)
	}
}

func (r *Router) handleRegisterSubmit(w http.ResponseWriter, req *http.Request) {
	if err := req.ParseForm(); err != nil {
		r.render(w, "register", map[string]any{"Message": "Invalid form submission.", "Error": true})
		return
	}
	username := req.PostFormValue("username")
	password := req.PostFormValue("password")

	if _, err := r.auth.Register(req.Context(), username, password); err != nil {
		// Duplicate and storage faults get the same user-facing message; the
		// distinction lives in the logs.
		r.logger.Error("registration failed", "error", err)
		r.render(w, "register", map[string]any{"Message": "Registration failed. Please try again.", "Error": true})
		return
	}
	http.Redirect(w, req, "/login", http.StatusSeeOther)
}

func (r *Router) handleDiscover(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	info, ok := authInfoFromContext(req.Context())
	if !ok {
		r.logger.Error("auth context missing for discover", "path", req.URL.Path)
		http.Redirect(w, req, "/login", http.StatusSeeOther)
		return
	}

	events, err := r.events.Discover(req.Context())
	if err != nil {
		r.render(w, "discover", map[string]any{
			"Username": info.User.Username,
			"Events":   nil,
			"Message":  "Failed to load events. Please try again later.",
			"Error":    true,
		})
		return
	}
	r.render(w, "discover", map[string]any{
		"Username": info.User.Username,
		"Events":   events,
	})
}

func (r *Router) handleLogout(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	info, ok := authInfoFromContext(req.Context())
	if ok {
		r.auth.Logout(req.Context(), info.Token)
	}
	http.SetCookie(w, r.cookies.ExpireCookie())
	r.render(w, "logout", map[string]any{"Message": "Logged out successfully."})
}

func (r *Router) render(w http.ResponseWriter, tpl string, data map[string]any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := r.templates.ExecuteTemplate(w, tpl, data); err != nil {
		r.logger.Error("template render failed", "template", tpl, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (r *Router) methodNotAllowed(w http.ResponseWriter) {
	w.WriteHeader(http.StatusMethodNotAllowed)
}
