package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"html/template"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/MahanteshPatil1214/agency-platform/internal/backend"
	"github.com/MahanteshPatil1214/agency-platform/internal/middleware"
	"github.com/MahanteshPatil1214/agency-platform/internal/models"
	"github.com/MahanteshPatil1214/agency-platform/internal/session"
)

type Handler struct {
	api          *backend.Client
	sessions     *session.Store
	tmplDir      string
	csrfSecret   string
	cookieDomain string
	pollInterval time.Duration
	log          *zap.SugaredLogger
}

func New(api *backend.Client, sessions *session.Store, tmplDir, csrfSecret, cookieDomain string, pollInterval time.Duration, log *zap.SugaredLogger) *Handler {
	return &Handler{
		api:          api,
		sessions:     sessions,
		tmplDir:      tmplDir,
		csrfSecret:   csrfSecret,
		cookieDomain: cookieDomain,
		pollInterval: pollInterval,
		log:          log,
	}
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.CleanPath)
	r.Use(middleware.Auth(h.sessions))

	// Static files
	fs := http.StripPrefix("/static/", http.FileServer(http.Dir("static")))
	r.Handle("/static/*", fs)

	// Marketing pages
	r.Get("/", h.handleHome)
	r.Get("/about", h.handleAbout)
	r.Get("/services", h.handleServices)
	r.Get("/contact", h.handleContact)
	r.Post("/contact", h.handleContactSubmit)

	// Auth
	r.Get("/login", h.handleLoginPage)
	r.Post("/login", h.handleLogin)
	r.Get("/register", h.handleRegisterPage)
	r.Post("/register", h.handleRegister)
	r.Post("/logout", h.handleLogout)

	// Client dashboard
	r.Route("/dashboard/client", func(r chi.Router) {
		r.Use(h.requireRoles(models.RoleClient, models.RoleUser))
		r.Use(h.csrfMiddleware)

		r.Get("/", h.handleClientDashboard)
		r.Get("/projects", h.handleClientProjects)
		r.Get("/projects/{id}", h.handleClientProjectView)
		r.Get("/requests", h.handleMyRequests)
		r.Post("/requests", h.handleSubmitRequest)
		r.Get("/messages", h.handleMessages)
		r.Post("/messages/send", h.handleSendMessage)
		r.Get("/messages/stream/{contactID}", h.handleMessageStream)
		r.Get("/settings", h.handleSettings)
		r.Post("/settings/profile", h.handleSaveProfile)
		r.Post("/settings/password", h.handleChangePassword)
	})

	// Admin dashboard
	r.Route("/dashboard/admin", func(r chi.Router) {
		r.Use(h.requireRoles(models.RoleAdmin))
		r.Use(h.csrfMiddleware)

		r.Get("/", h.handleAdminDashboard)
		r.Post("/requests/{id}/approve", h.handleApproveRequest)
		r.Post("/requests/{id}/reject", h.handleRejectRequest)
		r.Get("/clients", h.handleAdminClients)
		r.Get("/projects", h.handleAdminProjects)
		r.Post("/projects", h.handleCreateProject)
		r.Get("/projects/{id}", h.handleAdminProjectView)
		r.Post("/projects/{id}/tasks", h.handleAddTask)
		r.Post("/projects/{id}/tasks/{taskID}/toggle", h.handleToggleTask)
		r.Get("/messages", h.handleMessages)
		r.Post("/messages/send", h.handleSendMessage)
		r.Get("/messages/stream/{contactID}", h.handleMessageStream)
		r.Get("/settings", h.handleSettings)
		r.Post("/settings/profile", h.handleSaveProfile)
		r.Post("/settings/password", h.handleChangePassword)
	})

	return r
}

// requireRoles gates a dashboard subtree. Anonymous requests go to the
// login page carrying the original location; signed-in users whose roles
// miss the allow-list land on their own dashboard instead of an error
// page. Convenience only: the backend re-checks every call.
func (h *Handler) requireRoles(allowed ...models.Role) func(http.Handler) http.Handler {
	allow := models.RoleSet(allowed)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := middleware.SessionFromContext(r.Context())
			if sess == nil {
				http.Redirect(w, r, "/login?from="+url.QueryEscape(r.URL.RequestURI()), http.StatusFound)
				return
			}
			if !sess.User.Roles.Intersects(allow) {
				http.Redirect(w, r, dashboardPath(sess.User.Roles), http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func dashboardPath(roles models.RoleSet) string {
	if roles.IsAdmin() {
		return "/dashboard/admin"
	}
	return "/dashboard/client"
}

// safeReturnPath keeps post-login redirects on this site.
func safeReturnPath(from string) string {
	if strings.HasPrefix(from, "/") && !strings.HasPrefix(from, "//") {
		return from
	}
	return ""
}

func (h *Handler) csrfMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet || r.Method == http.MethodHead {
			next.ServeHTTP(w, r)
			return
		}
		if !h.validateCSRF(r) {
			http.Error(w, "Invalid CSRF token", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return "—"
			}
			return t.Format("Jan 2, 2006")
		},
		"formatDatePtr": func(t *time.Time) string {
			if t == nil {
				return "Not set"
			}
			return t.Format("Jan 2, 2006")
		},
		"formatTime": func(t time.Time) string {
			return t.Format("Jan 2, 2006 15:04")
		},
		"truncate": func(s string, n int) string {
			runes := []rune(s)
			if len(runes) <= n {
				return s
			}
			return string(runes[:n]) + "..."
		},
		"statusClass": func(s string) string {
			return strings.ToLower(strings.ReplaceAll(s, " ", "-"))
		},
		"join": strings.Join,
	}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, page string, data map[string]any) {
	h.renderBase(w, r, "base.html", page, data)
}

func (h *Handler) renderDashboard(w http.ResponseWriter, r *http.Request, page string, data map[string]any) {
	h.renderBase(w, r, "dashboard_base.html", page, data)
}

func (h *Handler) renderBase(w http.ResponseWriter, r *http.Request, base, page string, data map[string]any) {
	if data == nil {
		data = make(map[string]any)
	}

	sess := middleware.SessionFromContext(r.Context())
	if sess != nil {
		data["User"] = sess.User
		data["CSRFToken"] = h.generateCSRF(r)
		data["DashboardPath"] = dashboardPath(sess.User.Roles)
	}

	tmpl, err := template.New("").Funcs(funcMap()).ParseFiles(
		filepath.Join(h.tmplDir, base),
		filepath.Join(h.tmplDir, page),
	)
	if err != nil {
		h.log.Errorw("template parse error", "page", page, "err", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base", data); err != nil {
		h.log.Errorw("template execute error", "page", page, "err", err)
	}
}

func (h *Handler) generateCSRF(r *http.Request) string {
	cookie, err := r.Cookie("session")
	if err != nil {
		return ""
	}
	mac := hmac.New(sha256.New, []byte(h.csrfSecret))
	mac.Write([]byte(cookie.Value))
	return hex.EncodeToString(mac.Sum(nil))[:32]
}

func (h *Handler) validateCSRF(r *http.Request) bool {
	expected := h.generateCSRF(r)
	if expected == "" {
		return false
	}
	_ = r.ParseForm()
	token := r.FormValue("csrf_token")
	if token == "" {
		token = r.Header.Get("X-CSRF-Token")
	}
	return hmac.Equal([]byte(token), []byte(expected))
}
