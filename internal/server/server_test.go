// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"codeberg.org/envios/portal/internal/config"
	"codeberg.org/envios/portal/internal/handlers"
	"codeberg.org/envios/portal/internal/i18n"
	"codeberg.org/envios/portal/internal/ratelimit"
	"codeberg.org/envios/portal/internal/repository"
	"codeberg.org/envios/portal/internal/services/clientauth"
	"codeberg.org/envios/portal/internal/services/email"
	"codeberg.org/envios/portal/internal/services/session"
	"codeberg.org/envios/portal/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	_ = i18n.Init()
}

const testBaseURL = "http://localhost:8080"

type outbox struct {
	mu    sync.Mutex
	links map[string]string
}

func (o *outbox) SendMagicLink(_ context.Context, to, link string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.links[to] = link
	return nil
}

func (o *outbox) link(to string) string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.links[to]
}

type testApp struct {
	e        *echo.Echo
	auth     *handlers.AuthHandlers
	repo     *repository.Repository
	outbox   *outbox
	cookies  map[string]*http.Cookie
	remoteIP string
}

func newTestApp(t *testing.T, limiter ratelimit.Limiter) *testApp {
	t.Helper()
	_, repo := testutil.NewTestDB(t)

	cfg := &config.Config{
		Server:  config.ServerConfig{Host: "localhost", Port: 8080, BaseURL: testBaseURL, MaxBodySize: 1},
		Session: config.SessionConfig{CookieName: "portal_session", HashKey: strings.Repeat("ab", 32)},
	}
	a := clientauth.New(repo, clientauth.Config{})
	sessions, err := session.NewManager(&cfg.Session, a.SessionTTL(), false)
	require.NoError(t, err)

	box := &outbox{links: map[string]string{}}
	e, authHandlers := newEcho(&routerDeps{
		cfg:      cfg,
		repo:     repo,
		auth:     a,
		notifier: box,
		sessions: sessions,
		limiter:  limiter,
	})

	return &testApp{
		e:        e,
		auth:     authHandlers,
		repo:     repo,
		outbox:   box,
		cookies:  map[string]*http.Cookie{},
		remoteIP: "192.0.2.10:4000",
	}
}

// do sends a request through the full middleware stack, carrying cookies
// between calls like a browser would.
func (a *testApp) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req.RemoteAddr = a.remoteIP
	req.Header.Set("Accept-Language", "en")
	for _, c := range a.cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)

	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(a.cookies, c.Name)
			continue
		}
		a.cookies[c.Name] = c
	}
	return rec
}

// csrfForm returns form values carrying the current CSRF token.
func (a *testApp) csrfForm(t *testing.T, values url.Values) url.Values {
	t.Helper()
	if _, ok := a.cookies[csrfCookieName]; !ok {
		a.do(http.MethodGet, "/auth/login", nil)
	}
	c, ok := a.cookies[csrfCookieName]
	require.True(t, ok, "csrf cookie not set")
	if values == nil {
		values = url.Values{}
	}
	values.Set("csrf_token", c.Value)
	return values
}

func (a *testApp) signIn(t *testing.T, email string) {
	t.Helper()
	rec := a.do(http.MethodPost, "/auth/login", a.csrfForm(t, url.Values{"email": {email}}))
	require.Equal(t, http.StatusOK, rec.Code)
	a.auth.Wait()

	link := a.outbox.link(email)
	require.NotEmpty(t, link)
	require.True(t, strings.HasPrefix(link, testBaseURL+"/auth/verify?token="))

	rec = a.do(http.MethodGet, strings.TrimPrefix(link, testBaseURL), nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/", rec.Header().Get("Location"))
}

func TestHealthRoute(t *testing.T) {
	app := newTestApp(t, nil)

	rec := app.do(http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestTrailingSlashIsRemoved(t *testing.T) {
	app := newTestApp(t, nil)

	rec := app.do(http.MethodGet, "/health/", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStaticAssets(t *testing.T) {
	app := newTestApp(t, nil)

	rec := app.do(http.MethodGet, "/static/css/portal.css?v=0123abcd", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "text/css")
	assert.Equal(t, "public, max-age=31536000, immutable", rec.Header().Get("Cache-Control"))
}

func TestSecurityHeaders(t *testing.T) {
	app := newTestApp(t, nil)

	rec := app.do(http.MethodGet, "/auth/login", nil)

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "SAMEORIGIN", rec.Header().Get("X-Frame-Options"))
}

func TestNotFoundPage(t *testing.T) {
	app := newTestApp(t, nil)

	rec := app.do(http.MethodGet, "/does-not-exist", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Page not found")
}

func TestHomeRequiresSession(t *testing.T) {
	app := newTestApp(t, nil)

	rec := app.do(http.MethodGet, "/", nil)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/auth/login", rec.Header().Get("Location"))
}

func TestLoginRequiresCSRFToken(t *testing.T) {
	app := newTestApp(t, nil)
	testutil.NewTestClient(t, app.repo, "client@example.com")

	rec := app.do(http.MethodPost, "/auth/login", url.Values{"email": {"client@example.com"}})

	assert.Contains(t, []int{http.StatusBadRequest, http.StatusForbidden}, rec.Code)
	app.auth.Wait()
	assert.Empty(t, app.outbox.link("client@example.com"))
}

func TestLoginPageRendersCSRFToken(t *testing.T) {
	app := newTestApp(t, nil)

	rec := app.do(http.MethodGet, "/auth/login", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	c, ok := app.cookies[csrfCookieName]
	require.True(t, ok)
	assert.True(t, c.HttpOnly)
	assert.Contains(t, rec.Body.String(), `name="csrf_token" value="`+c.Value+`"`)
}

func TestSignInFlow(t *testing.T) {
	app := newTestApp(t, nil)
	testutil.NewTestClientInSucursal(t, app.repo, "client@example.com", "Centro")

	app.signIn(t, "client@example.com")

	rec := app.do(http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "client@example.com")
	assert.Contains(t, body, "Centro")

	// Signed-in clients skip the login page.
	rec = app.do(http.MethodGet, "/auth/login", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	rec = app.do(http.MethodPost, "/auth/logout", app.csrfForm(t, nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	rec = app.do(http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestSignInFlow_LinkIsSingleUse(t *testing.T) {
	app := newTestApp(t, nil)
	testutil.NewTestClient(t, app.repo, "client@example.com")

	app.signIn(t, "client@example.com")
	link := app.outbox.link("client@example.com")

	rec := app.do(http.MethodGet, strings.TrimPrefix(link, testBaseURL), nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogoutAllRoute(t *testing.T) {
	app := newTestApp(t, nil)
	testutil.NewTestClient(t, app.repo, "client@example.com")
	app.signIn(t, "client@example.com")

	rec := app.do(http.MethodPost, "/auth/logout-all", app.csrfForm(t, nil))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/auth/login", rec.Header().Get("Location"))

	rec = app.do(http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestLoginRateLimit(t *testing.T) {
	app := newTestApp(t, ratelimit.NewMemoryLimiter(2, time.Minute))
	form := app.csrfForm(t, url.Values{"email": {"nobody@example.com"}})

	for range 2 {
		rec := app.do(http.MethodPost, "/auth/login", form)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := app.do(http.MethodPost, "/auth/login", form)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// Limits are per client address.
	app.remoteIP = "198.51.100.7:4000"
	rec = app.do(http.MethodPost, "/auth/login", form)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestIsVersionedAsset(t *testing.T) {
	tests := []struct {
		v    string
		want bool
	}{
		{"0123abcd", true},
		{"", false},
		{"0123abc", false},
		{"0123ABCD", false},
		{"0123abcg", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, isVersionedAsset(tt.v), tt.v)
	}
}

func TestNewLimiter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	limiter, closeFn, err := newLimiter(ctx, &config.RateLimitConfig{Requests: 0})
	require.NoError(t, err)
	assert.Nil(t, limiter)
	closeFn()

	limiter, closeFn, err = newLimiter(ctx, &config.RateLimitConfig{Requests: 5, Window: time.Minute})
	require.NoError(t, err)
	assert.IsType(t, &ratelimit.MemoryLimiter{}, limiter)
	closeFn()

	_, _, err = newLimiter(ctx, &config.RateLimitConfig{Requests: 5, Window: time.Minute, RedisURL: "not a url"})
	assert.Error(t, err)
}

func TestNewLimiter_RejectsNonPositiveWindow(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for _, window := range []time.Duration{0, -time.Minute} {
		for _, redisURL := range []string{"", "redis://localhost:6379/0"} {
			limiter, _, err := newLimiter(ctx, &config.RateLimitConfig{Requests: 5, Window: window, RedisURL: redisURL})

			require.Error(t, err, "window %s redis %q", window, redisURL)
			assert.Contains(t, err.Error(), "window must be positive")
			assert.Nil(t, limiter)
		}
	}

	// A disabled limiter does not care about the window.
	limiter, _, err := newLimiter(ctx, &config.RateLimitConfig{Requests: 0, Window: 0})
	require.NoError(t, err)
	assert.Nil(t, limiter)
}

func TestNewNotifier(t *testing.T) {
	n, err := newNotifier(&config.Config{}, time.Minute)
	require.NoError(t, err)
	assert.IsType(t, email.LogService{}, n)

	n, err = newNotifier(&config.Config{SMTP: config.SMTPConfig{Host: "smtp.example.com", Port: 587, From: "portal@example.com"}}, time.Minute)
	require.NoError(t, err)
	assert.NotNil(t, n)
}
