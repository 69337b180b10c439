package handler

import (
	"net/http"
	"strings"

	"github.com/MahanteshPatil1214/agency-platform/internal/backend"
	"github.com/MahanteshPatil1214/agency-platform/internal/middleware"
	"github.com/MahanteshPatil1214/agency-platform/internal/session"
)

func (h *Handler) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if sess := middleware.SessionFromContext(r.Context()); sess != nil {
		http.Redirect(w, r, dashboardPath(sess.User.Roles), http.StatusFound)
		return
	}
	h.render(w, r, "login.html", map[string]any{
		"From":       r.URL.Query().Get("from"),
		"Registered": r.URL.Query().Get("registered") == "1",
		"Username":   "",
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	from := r.FormValue("from")

	if username == "" || password == "" {
		h.render(w, r, "login.html", map[string]any{
			"Error":    "Username and password are required.",
			"Username": username,
			"From":     from,
		})
		return
	}

	token, user, err := h.api.Login(r.Context(), backend.Credentials{
		Username: username,
		Password: password,
	})
	if err != nil {
		h.log.Infow("login failed", "username", username, "err", err)
		h.render(w, r, "login.html", map[string]any{
			"Error":    backend.UserMessage(err),
			"Username": username,
			"From":     from,
		})
		return
	}

	cookie := session.NewCookie()
	if err := h.sessions.Create(r.Context(), cookie, token, user); err != nil {
		h.log.Errorw("create session", "err", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	h.setSessionCookie(w, r, cookie, 30*24*3600)

	if dest := safeReturnPath(from); dest != "" {
		http.Redirect(w, r, dest, http.StatusFound)
		return
	}
	http.Redirect(w, r, dashboardPath(user.Roles), http.StatusFound)
}

func (h *Handler) handleRegisterPage(w http.ResponseWriter, r *http.Request) {
	if sess := middleware.SessionFromContext(r.Context()); sess != nil {
		http.Redirect(w, r, dashboardPath(sess.User.Roles), http.StatusFound)
		return
	}
	h.render(w, r, "register.html", map[string]any{
		"Form": backend.Registration{},
	})
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	reg := backend.Registration{
		Username:    strings.TrimSpace(r.FormValue("email")),
		Email:       strings.TrimSpace(r.FormValue("email")),
		FullName:    strings.TrimSpace(r.FormValue("full_name")),
		CompanyName: strings.TrimSpace(r.FormValue("company_name")),
		Password:    r.FormValue("password"),
		Roles:       []string{"client"},
	}
	confirm := r.FormValue("confirm_password")

	fail := func(msg string) {
		h.render(w, r, "register.html", map[string]any{
			"Error": msg,
			"Form":  reg,
		})
	}

	if reg.Email == "" || reg.FullName == "" || reg.Password == "" {
		fail("Name, email and password are required.")
		return
	}
	if reg.Password != confirm {
		fail("Passwords do not match.")
		return
	}

	if err := h.api.Register(r.Context(), reg); err != nil {
		h.log.Infow("register failed", "email", reg.Email, "err", err)
		fail(backend.UserMessage(err))
		return
	}

	http.Redirect(w, r, "/login?registered=1", http.StatusFound)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie("session")
	if err == nil {
		_ = h.sessions.Delete(r.Context(), cookie.Value)
	}
	h.setSessionCookie(w, r, "", -1)
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, r *http.Request, value string, maxAge int) {
	secure := r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https"
	cookie := &http.Cookie{
		Name:     "session",
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		MaxAge:   maxAge,
		SameSite: http.SameSiteLaxMode,
	}
	if h.cookieDomain != "" {
		cookie.Domain = h.cookieDomain
	}
	http.SetCookie(w, cookie)
}

func (h *Handler) handleSettings(w http.ResponseWriter, r *http.Request) {
	h.renderDashboard(w, r, "settings.html", map[string]any{
		"Saved": r.URL.Query().Get("saved") == "1",
	})
}

// handleSaveProfile pushes the edit to the backend, then refreshes the
// cached session copy so every later page sees the new profile.
func (h *Handler) handleSaveProfile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	sess := middleware.SessionFromContext(r.Context())
	updated := sess.User
	updated.FullName = strings.TrimSpace(r.FormValue("full_name"))
	updated.Email = strings.TrimSpace(r.FormValue("email"))
	updated.CompanyName = strings.TrimSpace(r.FormValue("company_name"))

	result, err := h.api.UpdateProfile(r.Context(), sess.Token, updated)
	if err != nil {
		h.log.Errorw("update profile", "err", err)
		h.renderDashboard(w, r, "settings.html", map[string]any{
			"Error": backend.UserMessage(err),
		})
		return
	}

	// Keep identity fields the backend does not echo back.
	if result.ID == "" {
		result.ID = sess.User.ID
	}
	if len(result.Roles) == 0 {
		result.Roles = sess.User.Roles
	}
	if err := h.sessions.UpdateUser(r.Context(), sess.Cookie, result); err != nil {
		h.log.Errorw("refresh session user", "err", err)
	}

	http.Redirect(w, r, dashboardPath(sess.User.Roles)+"/settings?saved=1", http.StatusFound)
}

func (h *Handler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	sess := middleware.SessionFromContext(r.Context())
	current := r.FormValue("current_password")
	next := r.FormValue("new_password")
	confirm := r.FormValue("confirm_password")

	if next == "" || next != confirm {
		h.renderDashboard(w, r, "settings.html", map[string]any{
			"Error": "New passwords do not match.",
		})
		return
	}

	err := h.api.ChangePassword(r.Context(), sess.Token, backend.PasswordChange{
		CurrentPassword: current,
		NewPassword:     next,
	})
	if err != nil {
		h.log.Infow("change password failed", "err", err)
		h.renderDashboard(w, r, "settings.html", map[string]any{
			"Error": backend.UserMessage(err),
		})
		return
	}

	http.Redirect(w, r, dashboardPath(sess.User.Roles)+"/settings?saved=1", http.StatusFound)
}
