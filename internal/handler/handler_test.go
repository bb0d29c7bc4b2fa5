package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"votedesk/internal/config"
	"votedesk/internal/container"
	"votedesk/pkg/logger"
)

type apiCall struct {
	Method string
	Path   string
	Auth   string
	Body   map[string]interface{}
}

// fakeAPI is the voting REST API with canned answers per "METHOD path"
type fakeAPI struct {
	mu      sync.Mutex
	calls   []apiCall
	answers map[string]interface{}
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	call := apiCall{Method: r.Method, Path: r.URL.Path, Auth: r.Header.Get("Authorization")}
	if r.ContentLength > 0 {
		_ = json.NewDecoder(r.Body).Decode(&call.Body)
	}

	f.mu.Lock()
	f.calls = append(f.calls, call)
	answer, ok := f.answers[r.Method+" "+r.URL.Path]
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"success":false,"message":"Not found"}`)
		return
	}
	_ = json.NewEncoder(w).Encode(answer)
}

func (f *fakeAPI) answer(key string, v interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answers[key] = v
}

func (f *fakeAPI) callsTo(method, path string) []apiCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []apiCall
	for _, c := range f.calls {
		if c.Method == method && c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

type testApp struct {
	api    *fakeAPI
	server *httptest.Server
	client *http.Client
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	api := &fakeAPI{answers: map[string]interface{}{
		"POST /api/auth/login": map[string]interface{}{"success": true, "email": "a@b.com"},
		"POST /api/auth/verify-login": map[string]interface{}{
			"success": true,
			"token":   "user-token",
			"user":    map[string]interface{}{"_id": "u1", "fullName": "Asha", "email": "a@b.com", "role": "voter"},
		},
		"GET /api/auth/me": map[string]interface{}{
			"success": true,
			"user":    map[string]interface{}{"_id": "u1", "fullName": "Asha", "email": "a@b.com", "role": "voter"},
		},
		"POST /api/admin-auth/send-otp": map[string]interface{}{"success": true},
		"POST /api/admin-auth/verify-otp": map[string]interface{}{
			"success": true,
			"token":   "admin-token",
			"admin":   map[string]interface{}{"_id": "a1", "fullName": "Root", "email": "root@b.com", "role": "admin"},
		},
		"GET /api/admin-auth/me": map[string]interface{}{
			"success": true,
			"admin":   map[string]interface{}{"_id": "a1", "fullName": "Root", "email": "root@b.com", "role": "admin"},
		},
		"DELETE /api/candidates/c1": map[string]interface{}{"success": true},
	}}
	apiServer := httptest.NewServer(api)
	t.Cleanup(apiServer.Close)

	cfg := &config.Config{
		Port:           "8080",
		Environment:    "test",
		APIBaseURL:     apiServer.URL,
		APITimeout:     5 * time.Second,
		SessionTTL:     time.Hour,
		SessionCookie:  "votedesk_sid",
		PollInterval:   30 * time.Second,
		SearchDebounce: 10 * time.Millisecond,
	}
	c, err := container.New(cfg, logger.Nop())
	require.NoError(t, err)

	router, err := NewRouter(c)
	require.NoError(t, err)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &testApp{api: api, server: server, client: client}
}

func (a *testApp) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := a.client.Get(a.server.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

// post submits form the way a console page does, from the console's origin
func (a *testApp) post(t *testing.T, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	return a.postFrom(t, a.server.URL, path, form)
}

func (a *testApp) postFrom(t *testing.T, origin, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, a.server.URL+path, strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	resp, err := a.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func (a *testApp) signInUser(t *testing.T) {
	t.Helper()
	resp, _ := a.post(t, "/login", url.Values{"email": {"a@b.com"}, "password": {"x"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	resp, _ = a.post(t, "/login/verify", url.Values{"otp": {"123456"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func (a *testApp) signInAdmin(t *testing.T) {
	t.Helper()
	resp, _ := a.post(t, "/admin/login", url.Values{"email": {"root@b.com"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	resp, _ = a.post(t, "/admin/login/verify", url.Values{"otp": {"654321"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, adminHome, resp.Header.Get("Location"))
}

func TestLogin_OTPFlow(t *testing.T) {
	app := newTestApp(t)

	resp, _ := app.post(t, "/login", url.Values{"email": {"a@b.com"}, "password": {"x"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login/verify", resp.Header.Get("Location"))

	logins := app.api.callsTo(http.MethodPost, "/api/auth/login")
	require.Len(t, logins, 1)
	assert.Equal(t, map[string]interface{}{"email": "a@b.com", "password": "x"}, logins[0].Body)

	resp, body := app.get(t, "/login/verify")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "a@b.com")
	assert.Contains(t, body, `name="otp"`)

	resp, _ = app.post(t, "/login/verify", url.Values{"otp": {"123456"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))

	verifies := app.api.callsTo(http.MethodPost, "/api/auth/verify-login")
	require.Len(t, verifies, 1)
	assert.Equal(t, map[string]interface{}{"email": "a@b.com", "otp": "123456"}, verifies[0].Body)

	resp, body = app.get(t, "/dashboard")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Asha")
}

func TestLogin_InvalidFormNeverCallsAPI(t *testing.T) {
	app := newTestApp(t)

	resp, body := app.post(t, "/login", url.Values{"email": {"not-an-email"}, "password": {""}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, `class="error"`)
	assert.Empty(t, app.api.callsTo(http.MethodPost, "/api/auth/login"))
}

func TestRequireUser_RedirectsToLogin(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/dashboard", "/vote", "/profile"} {
		t.Run(path, func(t *testing.T) {
			resp, _ := app.get(t, path)
			assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
			assert.Equal(t, "/login", resp.Header.Get("Location"))
		})
	}
}

func TestRequireAdmin_RedirectsToAdminLogin(t *testing.T) {
	app := newTestApp(t)

	resp, _ := app.get(t, "/admin/candidates")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/admin/login", resp.Header.Get("Location"))
}

func TestDeleteCandidate_RequiresConfirmation(t *testing.T) {
	app := newTestApp(t)
	app.signInAdmin(t)

	resp, body := app.post(t, "/admin/candidates/c1/delete", url.Values{})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Delete this candidate?")
	assert.Contains(t, body, `name="confirmed" value="yes"`)
	assert.Empty(t, app.api.callsTo(http.MethodDelete, "/api/candidates/c1"))

	resp, _ = app.post(t, "/admin/candidates/c1/delete", url.Values{"confirmed": {"yes"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, candidatesHome, resp.Header.Get("Location"))

	deletes := app.api.callsTo(http.MethodDelete, "/api/candidates/c1")
	require.Len(t, deletes, 1)
	assert.Equal(t, "Bearer admin-token", deletes[0].Auth)
}

func TestAdminMutations_RefuseCrossOrigin(t *testing.T) {
	app := newTestApp(t)
	app.signInAdmin(t)

	for _, origin := range []string{"https://evil.example", ""} {
		t.Run("origin="+origin, func(t *testing.T) {
			resp, _ := app.postFrom(t, origin, "/admin/candidates/c1/delete", url.Values{"confirmed": {"yes"}})
			assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		})
	}
	assert.Empty(t, app.api.callsTo(http.MethodDelete, "/api/candidates/c1"))
}

func TestAccessToggle_RoleFromUserList(t *testing.T) {
	app := newTestApp(t)
	app.api.answer("GET /api/admin/users", map[string]interface{}{
		"success": true,
		"users": []map[string]interface{}{
			{"_id": "u1", "fullName": "Asha", "email": "a@b.com", "role": "voter"},
		},
		"pagination": map[string]interface{}{"page": 1, "limit": 10, "total": 1, "totalPages": 1},
	})
	app.api.answer("POST /api/admin/users/assign-admin", map[string]interface{}{"success": true})
	app.signInAdmin(t)

	// a forged role does not move the voter to the demote list
	resp, _ := app.post(t, "/admin/access/toggle", url.Values{"id": {"u1"}, "role": {"admin"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp, _ = app.post(t, "/admin/access/assign", url.Values{"confirmed": {"yes"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	assigns := app.api.callsTo(http.MethodPost, "/api/admin/users/assign-admin")
	require.Len(t, assigns, 1)
	assert.Equal(t, []interface{}{"u1"}, assigns[0].Body["userIds"])

	resp, _ = app.post(t, "/admin/access/toggle", url.Values{"id": {"ghost"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Len(t, app.api.callsTo(http.MethodPost, "/api/admin/users/assign-admin"), 1)
}

func TestVoteScreens_PlaceholderWithoutState(t *testing.T) {
	app := newTestApp(t)
	app.signInUser(t)

	for _, path := range []string{"/vote/credentials", "/vote/password", "/vote/ballot", "/vote/confirmation", "/vote/already-voted"} {
		t.Run(path, func(t *testing.T) {
			resp, body := app.get(t, path)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Contains(t, body, "Go Back")
			assert.Contains(t, body, `href="/vote"`)
		})
	}
}

func TestLocations(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		name  string
		query string
		level string
	}{
		{name: "states", query: "", level: "state"},
		{name: "districts", query: "?state=Maharashtra", level: "district"},
		{name: "talukas", query: "?state=Maharashtra&district=Pune", level: "taluka"},
		{name: "places", query: "?state=Maharashtra&district=Pune&taluka=Haveli", level: "place"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := app.get(t, "/locations"+tt.query)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

			var got LocationsResponse
			require.NoError(t, json.Unmarshal([]byte(body), &got))
			assert.True(t, got.Success)
			assert.Equal(t, tt.level, got.Level)
			assert.NotEmpty(t, got.Options)
		})
	}
}

func TestHealth_WithoutRedis(t *testing.T) {
	app := newTestApp(t)

	resp, body := app.get(t, "/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var got HealthResponse
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.Equal(t, "healthy", got.Status)
	assert.Equal(t, "disabled", got.Checks["redis"])
}

func TestNotFound_RendersPage(t *testing.T) {
	app := newTestApp(t)

	resp, body := app.get(t, "/no-such-page")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html"))
	assert.Contains(t, body, "does not exist")
}
