package registry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentOS/switcher/internal/domain/app"
	"github.com/GriffinCanCode/AgentOS/switcher/internal/shared/types"
)

// PNG signature plus IHDR so mimetype detects image/png
var pngHeader = []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52}

type mockInstaller struct {
	mock.Mock
}

func (m *mockInstaller) Install(pkg types.Package) error {
	return m.Called(pkg.ID).Error(0)
}

func writeFile(t *testing.T, dir, name string, data []byte) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func installedIDs(m *app.Manager) []string {
	var ids []string
	for _, pkg := range m.List() {
		ids = append(ids, pkg.ID)
	}
	return ids
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"apps/users.json", FormatJSON, false},
		{"apps/users.YAML", FormatYAML, false},
		{"apps/users.yml", FormatYAML, false},
		{"apps/users.toml", FormatTOML, false},
		{"apps/users.xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatFromPath(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseManifest(t *testing.T) {
	tests := []struct {
		name    string
		format  Format
		data    string
		wantIDs []string
		wantErr bool
	}{
		{
			name:    "json single",
			format:  FormatJSON,
			data:    `{"id":"users","name":"Users","category":"core"}`,
			wantIDs: []string{"users"},
		},
		{
			name:    "json list",
			format:  FormatJSON,
			data:    `{"apps":[{"id":"a","name":"A"},{"id":"b","name":"B"}]}`,
			wantIDs: []string{"a", "b"},
		},
		{
			name:    "yaml single",
			format:  FormatYAML,
			data:    "id: inventory\nname: Inventory\ntags:\n  - items\n",
			wantIDs: []string{"inventory"},
		},
		{
			name:    "yaml list",
			format:  FormatYAML,
			data:    "apps:\n  - id: a\n    name: A\n  - id: b\n    name: B\n",
			wantIDs: []string{"a", "b"},
		},
		{
			name:    "toml single",
			format:  FormatTOML,
			data:    "id = \"settings\"\nname = \"Settings\"\n",
			wantIDs: []string{"settings"},
		},
		{
			name:    "toml list",
			format:  FormatTOML,
			data:    "[[apps]]\nid = \"a\"\nname = \"A\"\n\n[[apps]]\nid = \"b\"\nname = \"B\"\n",
			wantIDs: []string{"a", "b"},
		},
		{name: "empty", format: FormatJSON, data: "   ", wantErr: true},
		{name: "missing id", format: FormatJSON, data: `{"name":"Nameless"}`, wantErr: true},
		{name: "malformed", format: FormatJSON, data: `{"id":`, wantErr: true},
		{name: "unknown format", format: "xml", data: `<app/>`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pkgs, err := ParseManifest(tt.format, []byte(tt.data))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			var ids []string
			for _, p := range pkgs {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestParseManifestSanitizesText(t *testing.T) {
	pkgs, err := ParseManifest(FormatJSON, []byte(`{"id":"x","name":"<b>Check</b> &amp; <script>alert(1)</script>out","description":" <i>Loans</i> "}`))
	require.NoError(t, err)
	require.Len(t, pkgs, 1)

	assert.Equal(t, "Check & out", pkgs[0].Name)
	assert.Equal(t, "Loans", pkgs[0].Description)
}

func TestParseManifestTooLarge(t *testing.T) {
	data := make([]byte, 300*1024)
	for i := range data {
		data[i] = ' '
	}
	_, err := ParseManifest(FormatJSON, data)
	assert.Error(t, err)
}

func TestSeedApps(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b-users/manifest.json", []byte(`{"id":"users","name":"Users","icon":"icon.png"}`))
	writeFile(t, dir, "b-users/icon.png", pngHeader)
	writeFile(t, dir, "a-core/apps.yaml", []byte("apps:\n  - id: inventory\n    name: Inventory\n  - id: requests\n    name: Requests\n"))
	writeFile(t, dir, "c-settings.toml", []byte("id = \"settings\"\nname = \"Settings\"\nicon = \"gear\"\n"))
	writeFile(t, dir, "README.md", []byte("not a manifest"))
	writeFile(t, dir, "broken.json", []byte(`{"id":`))

	mgr := app.NewManager()
	seeder := NewSeeder(mgr, dir, nil)

	loaded, err := seeder.SeedApps(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, loaded)

	// Lexical path order: a-core, b-users, broken (skipped), c-settings
	assert.Equal(t, []string{"inventory", "requests", "users", "settings"}, installedIDs(mgr))

	users, ok := mgr.Get("users")
	require.True(t, ok)
	assert.Equal(t, "icon", users.IconRef.Key)
	assert.Equal(t, "image/png", users.IconRef.MIME)
	assert.Equal(t, filepath.Join(dir, "b-users", "icon.png"), users.IconRef.Path)

	settings, ok := mgr.Get("settings")
	require.True(t, ok)
	assert.Equal(t, types.Icon{Key: "gear"}, settings.IconRef)
}

func TestSeedAppsMissingDir(t *testing.T) {
	mgr := app.NewManager()
	seeder := NewSeeder(mgr, filepath.Join(t.TempDir(), "missing"), nil)

	loaded, err := seeder.SeedApps(context.Background())
	require.NoError(t, err)
	assert.Zero(t, loaded)
	assert.Empty(t, mgr.List())
}

func TestSeedAppsCancelled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "users.json", []byte(`{"id":"users","name":"Users"}`))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSeeder(app.NewManager(), dir, nil).SeedApps(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResolveIconRejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "secret.png", pngHeader)
	manifestDir := filepath.Join(dir, "apps")
	require.NoError(t, os.MkdirAll(manifestDir, 0o755))

	ref := resolveIcon(manifestDir, "../secret.png")
	assert.Empty(t, ref.Path)
	assert.Equal(t, "../secret.png", ref.Key)
}

func TestSeedDefaultApps(t *testing.T) {
	mgr := app.NewManager()
	require.NoError(t, NewSeeder(mgr, "", nil).SeedDefaultApps())

	ids := installedIDs(mgr)
	require.Len(t, ids, len(DefaultApps()))
	assert.Equal(t, "users", ids[0])
}

func TestRemoteFetch(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{"list layout", `{"apps":[{"id":"a","name":"A"},{"id":"b","name":"B"}]}`, []string{"a", "b"}},
		{"bare array", `[{"id":"c","name":"C"}]`, []string{"c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			pkgs, err := NewRemote(RemoteConfig{URL: srv.URL}, nil).Fetch(context.Background())
			require.NoError(t, err)

			var ids []string
			for _, p := range pkgs {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestRemoteRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"apps":[{"id":"a","name":"A"}]}`))
	}))
	defer srv.Close()

	remote := NewRemote(RemoteConfig{URL: srv.URL, Timeout: 5 * time.Second, Retries: 3}, nil)
	pkgs, err := remote.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, pkgs, 1)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRemoteErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewRemote(RemoteConfig{URL: srv.URL}, nil).Fetch(context.Background())
	assert.Error(t, err)
}

func TestRemoteSyncSkipsInvalid(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"apps":[{"id":"ok","name":"Ok"},{"id":"bad id!","name":"Bad"}]}`))
	}))
	defer srv.Close()

	mgr := app.NewManager()
	n, err := NewRemote(RemoteConfig{URL: srv.URL}, nil).Sync(context.Background(), mgr)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"ok"}, installedIDs(mgr))
}

func TestSeedDefaultAppsStopsOnError(t *testing.T) {
	installer := &mockInstaller{}
	installer.On("Install", "users").Return(nil).Once()
	installer.On("Install", "inventory").Return(errors.New("disk full")).Once()

	err := NewSeeder(installer, "", nil).SeedDefaultApps()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inventory")
	installer.AssertExpectations(t)
	installer.AssertNotCalled(t, "Install", "requests")
}

func TestRemoteSyncCountsInstalled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"a"},{"id":"b"},{"id":"c"}]`))
	}))
	defer srv.Close()

	installer := &mockInstaller{}
	installer.On("Install", "a").Return(nil)
	installer.On("Install", "b").Return(app.ErrInvalidPackage)
	installer.On("Install", "c").Return(nil)

	n, err := NewRemote(RemoteConfig{URL: srv.URL}, nil).Sync(context.Background(), installer)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	installer.AssertNumberOfCalls(t, "Install", 3)
}
