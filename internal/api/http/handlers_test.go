package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/GriffinCanCode/AgentOS/switcher/internal/api/middleware"
	"github.com/GriffinCanCode/AgentOS/switcher/internal/domain/app"
	"github.com/GriffinCanCode/AgentOS/switcher/internal/domain/session"
	"github.com/GriffinCanCode/AgentOS/switcher/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/switcher/internal/shared/types"
)

type testEnv struct {
	router   *gin.Engine
	apps     *app.Manager
	sessions *session.Manager
}

func setupTestRouter(t *testing.T, ids ...string) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	apps := app.NewManager()
	for _, id := range ids {
		require.NoError(t, apps.Install(types.Package{ID: id, Name: id}))
	}
	sessions := session.NewManager(apps, nil)

	router := gin.New()
	NewHandlers(apps, sessions, nil).Register(router)
	return &testEnv{router: router, apps: apps, sessions: sessions}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func intPtr(i int) *int { return &i }

func TestRootAndHealth(t *testing.T) {
	env := setupTestRouter(t, "a")

	w := env.do(t, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "online")

	w = env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	health := decode[struct {
		Status     string         `json:"status"`
		AppManager types.AppStats `json:"app_manager"`
	}](t, w)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, 1, health.AppManager.InstalledApps)
	assert.NotContains(t, w.Body.String(), `"metrics"`)
}

func TestHealthReportsMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	apps := app.NewManager()
	metrics := monitoring.NewMetrics(prometheus.NewRegistry())
	sessions := session.NewManager(apps, nil).WithMetrics(metrics)
	sessions.Create()
	metrics.IncReordersApplied()

	router := gin.New()
	NewHandlers(apps, sessions, nil).WithMetrics(metrics).Register(router)
	env := &testEnv{router: router, apps: apps, sessions: sessions}

	w := env.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	health := decode[struct {
		Metrics monitoring.Snapshot `json:"metrics"`
	}](t, w)
	assert.Equal(t, int64(1), health.Metrics.ActiveSessions)
	assert.Equal(t, int64(1), health.Metrics.ReordersApplied)
}

func TestHandlerLogsCarryRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)
	apps := app.NewManager()
	sessions := session.NewManager(apps, nil)

	router := gin.New()
	router.Use(middleware.RequestLogger(zap.NewNop()))
	NewHandlers(apps, sessions, zap.New(core)).Register(router)

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(types.InstallRequest{Package: types.Package{ID: "users", Name: "Users"}}))
	req := httptest.NewRequest(http.MethodPost, "/apps", &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.RequestIDHeader, "req-install-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	installed := logs.FilterMessage("App installed").All()
	require.Len(t, installed, 1)
	assert.Equal(t, "req-install-1", installed[0].ContextMap()["request_id"])
}

func TestInstallApp(t *testing.T) {
	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
	}{
		{"valid", types.InstallRequest{Package: types.Package{ID: "users", Name: "Users"}}, http.StatusCreated},
		{"with focus", types.InstallRequest{Package: types.Package{ID: "users", Name: "Users"}, Focus: true}, http.StatusCreated},
		{"invalid id", types.InstallRequest{Package: types.Package{ID: "bad id!"}}, http.StatusBadRequest},
		{"missing id", `{"package":{"name":"Users"}}`, http.StatusBadRequest},
		{"external href", types.InstallRequest{Package: types.Package{ID: "x", Href: "https://evil.example"}}, http.StatusBadRequest},
		{"malformed json", `{"package":`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestRouter(t)
			w := env.do(t, http.MethodPost, "/apps", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
		})
	}
}

func TestInstallWithFocus(t *testing.T) {
	env := setupTestRouter(t, "a")

	w := env.do(t, http.MethodPost, "/apps", types.InstallRequest{Package: types.Package{ID: "b", Name: "B"}, Focus: true})
	require.Equal(t, http.StatusCreated, w.Code)

	stats := env.apps.Stats()
	require.NotNil(t, stats.FocusedAppID)
	assert.Equal(t, "b", *stats.FocusedAppID)
}

func TestListApps(t *testing.T) {
	env := setupTestRouter(t, "a", "b")

	w := env.do(t, http.MethodGet, "/apps", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[struct {
		Apps []types.Package `json:"apps"`
	}](t, w)
	require.Len(t, resp.Apps, 2)
	assert.Equal(t, "a", resp.Apps[0].ID)
}

func TestUninstallAndFocus(t *testing.T) {
	env := setupTestRouter(t, "a", "b")

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/apps/a/focus", nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodPost, "/apps/zzz/focus", nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/apps/bad%20id/focus", nil).Code)

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodDelete, "/apps/a", nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, "/apps/a", nil).Code)
	assert.Nil(t, env.apps.Stats().FocusedAppID)
}

func TestSessionLifecycle(t *testing.T) {
	env := setupTestRouter(t, "a", "b", "c")

	w := env.do(t, http.MethodPost, "/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[struct {
		Session    types.SessionMetadata `json:"session"`
		Projection types.Projection      `json:"projection"`
	}](t, w)
	assert.Equal(t, []string{"a", "b", "c"}, created.Projection.Order)
	sid := created.Session.ID

	w = env.do(t, http.MethodGet, "/sessions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), sid)

	w = env.do(t, http.MethodGet, "/sessions/"+sid+"/switcher", nil)
	require.Equal(t, http.StatusOK, w.Code)
	p := decode[types.Projection](t, w)
	assert.Len(t, p.Inline, 3)

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodDelete, "/sessions/"+sid, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, "/sessions/"+sid, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/sessions/"+sid+"/switcher", nil).Code)
}

func TestReorder(t *testing.T) {
	tests := []struct {
		name        string
		body        interface{}
		wantStatus  int
		wantApplied bool
		wantError   string
		wantOrder   []string
	}{
		{
			name:        "move forward",
			body:        types.ReorderRequest{MovedID: "a", FromIndex: intPtr(0), ToIndex: intPtr(2)},
			wantStatus:  http.StatusOK,
			wantApplied: true,
			wantOrder:   []string{"b", "c", "a", "d"},
		},
		{
			name:        "same index",
			body:        types.ReorderRequest{MovedID: "b", FromIndex: intPtr(1), ToIndex: intPtr(1)},
			wantStatus:  http.StatusOK,
			wantApplied: true,
			wantOrder:   []string{"a", "b", "c", "d"},
		},
		{
			name:       "out of bounds",
			body:       types.ReorderRequest{MovedID: "a", FromIndex: intPtr(0), ToIndex: intPtr(9)},
			wantStatus: http.StatusOK,
			wantError:  "invalid_reorder_index",
			wantOrder:  []string{"a", "b", "c", "d"},
		},
		{
			name:       "negative index",
			body:       types.ReorderRequest{FromIndex: intPtr(-1), ToIndex: intPtr(0)},
			wantStatus: http.StatusOK,
			wantError:  "invalid_reorder_index",
			wantOrder:  []string{"a", "b", "c", "d"},
		},
		{
			name:       "missing indices",
			body:       `{"moved_id":"a"}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestRouter(t, "a", "b", "c", "d")
			sess := env.sessions.Create()

			w := env.do(t, http.MethodPost, "/sessions/"+sess.ID()+"/switcher/reorder", tt.body)
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantStatus != http.StatusOK {
				return
			}

			resp := decode[ReorderResponse](t, w)
			assert.Equal(t, tt.wantApplied, resp.Applied)
			assert.Equal(t, tt.wantError, resp.Error)
			assert.Equal(t, tt.wantOrder, resp.Projection.Order)
			assert.Equal(t, tt.wantOrder, []string(sess.Switcher().Order()))
		})
	}
}

func TestReorderUnknownSession(t *testing.T) {
	env := setupTestRouter(t, "a")
	w := env.do(t, http.MethodPost, "/sessions/sess_missing/switcher/reorder",
		types.ReorderRequest{FromIndex: intPtr(0), ToIndex: intPtr(0)})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReorderSurvivesAppChanges(t *testing.T) {
	env := setupTestRouter(t, "a", "b", "c")
	sess := env.sessions.Create()

	w := env.do(t, http.MethodPost, "/sessions/"+sess.ID()+"/switcher/reorder",
		types.ReorderRequest{MovedID: "c", FromIndex: intPtr(2), ToIndex: intPtr(0)})
	require.Equal(t, http.StatusOK, w.Code)

	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/apps",
		types.InstallRequest{Package: types.Package{ID: "d", Name: "D"}}).Code)

	w = env.do(t, http.MethodGet, "/sessions/"+sess.ID()+"/switcher", nil)
	p := decode[types.Projection](t, w)
	assert.Equal(t, []string{"c", "a", "b", "d"}, p.Order)
}

func TestInstallRequiresPackageID(t *testing.T) {
	env := setupTestRouter(t)

	w := env.do(t, http.MethodPost, "/apps", `{"package":{"name":"Users"}}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	// Rejected by request binding before reaching the app manager
	assert.Contains(t, w.Body.String(), "'required' tag")
	assert.Empty(t, env.apps.List())
}
