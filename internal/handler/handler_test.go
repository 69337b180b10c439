package handler

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/MahanteshPatil1214/agency-platform/internal/backend"
	"github.com/MahanteshPatil1214/agency-platform/internal/models"
	"github.com/MahanteshPatil1214/agency-platform/internal/session"
)

const testCSRFSecret = "test-secret"

type testApp struct {
	router   http.Handler
	sessions *session.Store
	backend  *httptest.Server
}

// newTestApp wires a handler against a fake backend and a throwaway
// session database.
func newTestApp(t *testing.T, backendHandler http.Handler) *testApp {
	t.Helper()

	srv := httptest.NewServer(backendHandler)
	t.Cleanup(srv.Close)

	store, err := session.Open(
		filepath.Join(t.TempDir(), "sessions.db"),
		"../../migrations",
		zap.NewNop().Sugar(),
	)
	if err != nil {
		t.Fatalf("open session store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	api := backend.New(srv.URL, zap.NewNop().Sugar())
	h := New(api, store, "../../templates", testCSRFSecret, "", 50*time.Millisecond, zap.NewNop().Sugar())

	return &testApp{router: h.Router(), sessions: store, backend: srv}
}

// signIn creates a session row and returns the browser cookie for it.
func (a *testApp) signIn(t *testing.T, user models.User) *http.Cookie {
	t.Helper()
	cookie := session.NewCookie()
	if err := a.sessions.Create(context.Background(), cookie, "opaque-test-token", user); err != nil {
		t.Fatalf("create session: %v", err)
	}
	return &http.Cookie{Name: "session", Value: cookie}
}

func csrfFor(cookie *http.Cookie) string {
	mac := hmac.New(sha256.New, []byte(testCSRFSecret))
	mac.Write([]byte(cookie.Value))
	return hex.EncodeToString(mac.Sum(nil))[:32]
}

func clientUser() models.User {
	return models.User{
		ID:       "u-client",
		Username: "maria",
		Email:    "maria@example.com",
		FullName: "Maria Santos",
		Roles:    models.RoleSet{models.RoleClient},
	}
}

func adminUser() models.User {
	return models.User{
		ID:       "u-admin",
		Username: "admin",
		Email:    "admin@example.com",
		FullName: "Site Admin",
		Roles:    models.RoleSet{models.RoleAdmin},
	}
}

func TestGuardRedirectsAnonymousToLogin(t *testing.T) {
	app := newTestApp(t, http.NotFoundHandler())

	for _, path := range []string{"/dashboard/client", "/dashboard/admin"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		app.router.ServeHTTP(rec, req)

		if rec.Code != http.StatusFound {
			t.Errorf("%s: status = %d, want 302", path, rec.Code)
			continue
		}
		want := "/login?from=" + url.QueryEscape(path)
		if got := rec.Header().Get("Location"); got != want {
			t.Errorf("%s: Location = %q, want %q", path, got, want)
		}
	}
}

func TestGuardSendsWrongRoleToOwnDashboard(t *testing.T) {
	app := newTestApp(t, http.NotFoundHandler())

	cases := []struct {
		user models.User
		path string
		want string
	}{
		{clientUser(), "/dashboard/admin", "/dashboard/client"},
		{adminUser(), "/dashboard/client", "/dashboard/admin"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, tc.path, nil)
		req.AddCookie(app.signIn(t, tc.user))
		rec := httptest.NewRecorder()
		app.router.ServeHTTP(rec, req)

		if rec.Code != http.StatusFound {
			t.Errorf("%s as %s: status = %d, want 302", tc.path, tc.user.Username, rec.Code)
			continue
		}
		if got := rec.Header().Get("Location"); got != tc.want {
			t.Errorf("%s as %s: Location = %q, want %q", tc.path, tc.user.Username, got, tc.want)
		}
	}
}

func TestCSRFRejectsPostWithoutToken(t *testing.T) {
	app := newTestApp(t, http.NotFoundHandler())
	cookie := app.signIn(t, clientUser())

	form := url.Values{"receiver_id": {"u-admin"}, "content": {"hi"}}
	req := httptest.NewRequest(http.MethodPost, "/dashboard/client/messages/send", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	app.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestLoginFlowSetsCookieAndRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"token":"tok-1","id":"u-client","username":"maria","roles":["ROLE_CLIENT"]}`))
	})
	app := newTestApp(t, mux)

	form := url.Values{"username": {"maria"}, "password": {"pw"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	app.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/dashboard/client" {
		t.Errorf("Location = %q, want /dashboard/client", got)
	}

	var sessionCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "session" {
			sessionCookie = c
		}
	}
	if sessionCookie == nil || sessionCookie.Value == "" {
		t.Fatal("no session cookie set")
	}
	if !sessionCookie.HttpOnly {
		t.Error("session cookie not HttpOnly")
	}

	sess, err := app.sessions.Get(context.Background(), sessionCookie.Value)
	if err != nil || sess == nil {
		t.Fatalf("session lookup: %v, %+v", err, sess)
	}
	if sess.Token != "tok-1" || sess.User.Username != "maria" {
		t.Errorf("stored session = %+v", sess)
	}
}

func TestLoginFollowsReturnPath(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"token":"tok-1","id":"u-client","username":"maria","roles":["ROLE_CLIENT"]}`))
	})
	app := newTestApp(t, mux)

	form := url.Values{
		"username": {"maria"},
		"password": {"pw"},
		"from":     {"/dashboard/client/projects"},
	}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	app.router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Location"); got != "/dashboard/client/projects" {
		t.Errorf("Location = %q, want the from path", got)
	}
}

func TestLoginIgnoresOffsiteReturnPath(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"token":"tok-1","id":"u-client","username":"maria","roles":["ROLE_CLIENT"]}`))
	})
	app := newTestApp(t, mux)

	for _, from := range []string{"https://evil.example", "//evil.example/phish"} {
		form := url.Values{"username": {"maria"}, "password": {"pw"}, "from": {from}}
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		app.router.ServeHTTP(rec, req)

		if got := rec.Header().Get("Location"); got != "/dashboard/client" {
			t.Errorf("from=%q: Location = %q, want /dashboard/client", from, got)
		}
	}
}

func TestLoginPageRenders(t *testing.T) {
	app := newTestApp(t, http.NotFoundHandler())

	req := httptest.NewRequest(http.MethodGet, "/login?from=%2Fdashboard%2Fclient", nil)
	rec := httptest.NewRecorder()
	app.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `name="username"`) || !strings.Contains(body, `name="from"`) {
		t.Error("login form fields missing from page")
	}
}

func TestLogoutClearsSession(t *testing.T) {
	app := newTestApp(t, http.NotFoundHandler())
	cookie := app.signIn(t, clientUser())

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	app.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/login" {
		t.Fatalf("status = %d Location = %q", rec.Code, rec.Header().Get("Location"))
	}
	sess, err := app.sessions.Get(context.Background(), cookie.Value)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if sess != nil {
		t.Fatal("session row survived logout")
	}
}
