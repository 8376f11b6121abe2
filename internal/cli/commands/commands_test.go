package commands

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cliconfig "github.com/hirehub/console/internal/cli/config"
	"github.com/hirehub/console/internal/cli/userconfig"
	"github.com/hirehub/console/internal/config"
	"github.com/hirehub/console/internal/console"
	"github.com/hirehub/console/internal/storage"
)

// newTestConsole wires a console to a fake API that answers with routes
func newTestConsole(t *testing.T, routes map[string]string, seed map[string]string) (*console.Console, *storage.MemoryStore) {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.Method+" "+r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if body == "401" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"expired"}`))
			return
		}
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	store := storage.NewMemoryStore()
	if seed != nil {
		require.NoError(t, store.Put(context.Background(), seed))
	}

	cfg := &config.Config{
		API:     config.APIConfig{BaseURL: server.URL + "/api", Timeout: 5 * time.Second},
		Storage: config.StorageConfig{Backend: "memory"},
	}
	return console.Assemble(cfg, store, zerolog.Nop()), store
}

var loggedIn = map[string]string{
	storage.KeyAccessToken:  "T1",
	storage.KeyRefreshToken: "R1",
	storage.KeyUserEmail:    "a@b.com",
	storage.KeyUserID:       "7",
	storage.KeyIsAdmin:      "true",
}

func TestRunLogin_Admin(t *testing.T) {
	c, store := newTestConsole(t, map[string]string{
		"POST /api/auth/admin/login": `{"success":true,"tokens":{"accessToken":"T1","refreshToken":"R1"},"user":{"id":7,"email":"a@b.com","is_admin":true}}`,
	}, nil)

	var out bytes.Buffer
	err := runLogin(context.Background(), c, &out, "a@b.com", "right", true)

	require.NoError(t, err)
	assert.Contains(t, out.String(), "Login successful")
	assert.Contains(t, out.String(), "Role: Admin")
	token, _, err := store.Get(context.Background(), storage.KeyAccessToken)
	require.NoError(t, err)
	assert.Equal(t, "T1", token)
}

func TestRunLogin_Rejected(t *testing.T) {
	c, store := newTestConsole(t, map[string]string{
		"POST /api/auth/login": `{"success":false,"error":"Invalid credentials"}`,
	}, nil)

	var out bytes.Buffer
	err := runLogin(context.Background(), c, &out, "a@b.com", "wrong", false)

	assert.EqualError(t, err, "login failed: Invalid credentials")
	assert.Equal(t, 0, store.Len())
}

func TestResolveCredentials_FromEnv(t *testing.T) {
	t.Setenv("CONSOLE_EMAIL", "env@b.com")
	t.Setenv("CONSOLE_PASSWORD", "env-pw")

	email, password, err := resolveCredentials("", "")
	require.NoError(t, err)
	assert.Equal(t, "env@b.com", email)
	assert.Equal(t, "env-pw", password)

	email, password, err = resolveCredentials("flag@b.com", "flag-pw")
	require.NoError(t, err)
	assert.Equal(t, "flag@b.com", email)
	assert.Equal(t, "flag-pw", password)
}

func TestResolveCredentials_EmailRequired(t *testing.T) {
	t.Setenv("CONSOLE_EMAIL", "")
	_, _, err := resolveCredentials("", "pw")
	assert.ErrorContains(t, err, "email is required")
}

func TestRunLogout(t *testing.T) {
	c, store := newTestConsole(t, map[string]string{
		"POST /api/auth/logout": `{"success":true}`,
	}, loggedIn)

	var out bytes.Buffer
	require.NoError(t, runLogout(context.Background(), c, &out))

	assert.Equal(t, 0, store.Len())
	assert.Contains(t, out.String(), "Logged out")
}

func TestRunStatus(t *testing.T) {
	t.Run("verified", func(t *testing.T) {
		c, _ := newTestConsole(t, map[string]string{
			"GET /api/auth/verify": `{"success":true,"user":{"email":"a@b.com","is_admin":true}}`,
		}, loggedIn)

		var out bytes.Buffer
		require.NoError(t, runStatus(context.Background(), c, &out))

		assert.Contains(t, out.String(), "Status: logged in")
		assert.Contains(t, out.String(), "a@b.com")
		assert.Contains(t, out.String(), "Role: Admin")
	})

	t.Run("rejected", func(t *testing.T) {
		c, store := newTestConsole(t, map[string]string{
			"GET /api/auth/verify": "401",
		}, loggedIn)

		var out bytes.Buffer
		require.NoError(t, runStatus(context.Background(), c, &out))

		assert.Contains(t, out.String(), "Status: not logged in")
		assert.Equal(t, 0, store.Len())
	})
}

func TestRunRefresh(t *testing.T) {
	c, store := newTestConsole(t, map[string]string{
		"POST /api/auth/refresh": `{"success":true,"tokens":{"accessToken":"T2","refreshToken":"R2"}}`,
	}, loggedIn)

	var out bytes.Buffer
	require.NoError(t, runRefresh(context.Background(), c, &out))

	token, _, err := store.Get(context.Background(), storage.KeyAccessToken)
	require.NoError(t, err)
	assert.Equal(t, "T2", token)
	assert.Contains(t, out.String(), "Tokens refreshed")
}

func TestRunRefresh_NotLoggedIn(t *testing.T) {
	c, _ := newTestConsole(t, nil, nil)
	err := runRefresh(context.Background(), c, &bytes.Buffer{})
	assert.ErrorIs(t, err, errNotAuthenticated)
}

func TestRunUsers(t *testing.T) {
	c, _ := newTestConsole(t, map[string]string{
		"GET /api/dashboard/users": `{"success":true,"users":[{"id":3,"email":"c@d.com","is_admin":true,"is_online":true}]}`,
	}, loggedIn)

	var out bytes.Buffer
	require.NoError(t, runUsers(context.Background(), c, &out))

	assert.Contains(t, out.String(), "c@d.com")
	assert.Contains(t, out.String(), "admin")
	assert.Contains(t, out.String(), "online")
}

func TestRunUsers_ExpiredSession(t *testing.T) {
	c, store := newTestConsole(t, map[string]string{
		"GET /api/dashboard/users": "401",
		"POST /api/auth/refresh":   "401",
		"POST /api/auth/logout":    `{"success":true}`,
	}, loggedIn)

	err := runUsers(context.Background(), c, &bytes.Buffer{})

	assert.ErrorContains(t, err, "console login")
	assert.Equal(t, 0, store.Len())
}

func TestRunSetAdmin(t *testing.T) {
	c, _ := newTestConsole(t, map[string]string{
		"POST /api/auth/make-admin/3":   `{"success":true}`,
		"POST /api/auth/remove-admin/3": `{"success":false,"error":"Cannot remove the last admin"}`,
	}, loggedIn)

	var out bytes.Buffer
	require.NoError(t, runSetAdmin(context.Background(), c, &out, "3", true))
	assert.Contains(t, out.String(), "User 3 is now an admin")

	err := runSetAdmin(context.Background(), c, &out, "3", false)
	assert.ErrorContains(t, err, "Cannot remove the last admin")
}

func TestRunJobs(t *testing.T) {
	c, _ := newTestConsole(t, map[string]string{
		"GET /api/jobs/admin/all": `{"success":true,"jobs":[]}`,
	}, loggedIn)

	var out bytes.Buffer
	require.NoError(t, runJobs(context.Background(), c, &out))
	assert.Contains(t, out.String(), "No jobs found.")
}

func TestRunJobAnalytics(t *testing.T) {
	tests := []struct {
		name string
		job  string
		want []string
	}{
		{
			name: "with clicks",
			job:  "1",
			want: []string{"Total clicks:       40", "Total applications: 6", "Conversion rate:    15.0%", "pending"},
		},
		{
			name: "no clicks",
			job:  "2",
			want: []string{"Total clicks:       0", "Conversion rate:    0.0%"},
		},
	}

	c, _ := newTestConsole(t, map[string]string{
		"GET /api/jobs/1/analytics": `{"success":true,"analytics":{"totalClicks":40,"totalApplications":6,"statusBreakdown":[{"status":"pending","count":4}]}}`,
		"GET /api/jobs/2/analytics": `{"success":true,"analytics":{"totalClicks":0,"totalApplications":0}}`,
	}, loggedIn)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			require.NoError(t, runJobAnalytics(context.Background(), c, &out, tt.job))
			for _, want := range tt.want {
				assert.Contains(t, out.String(), want)
			}
			assert.NotContains(t, out.String(), "NaN")
		})
	}
}

func TestRunJobAnalytics_NotLoggedIn(t *testing.T) {
	c, _ := newTestConsole(t, nil, nil)
	err := runJobAnalytics(context.Background(), c, &bytes.Buffer{}, "1")
	assert.ErrorIs(t, err, errNotAuthenticated)
}

func TestRunInit(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer

	require.NoError(t, runInit(&out, dir, "https://api.example.com/api", ""))
	require.NoError(t, runInit(&out, dir, "http://localhost:5000/api", "local"))
	require.NoError(t, runInit(&out, dir, "https://api.example.com/api", ""))

	cfg, err := cliconfig.Load(filepath.Join(dir, cliconfig.ConfigFileName))
	require.NoError(t, err)
	require.Len(t, cfg.Origins, 2)
	assert.Equal(t, "production", cfg.Origins[0].Alias)
	assert.Equal(t, "local", cfg.Origins[1].Alias)
	assert.Contains(t, out.String(), "already listed")

	assert.Error(t, runInit(&out, dir, "not-a-url", ""))
}

func TestRunSelectOrigin(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	require.NoError(t, cliconfig.Save(filepath.Join(dir, cliconfig.ConfigFileName), &cliconfig.Config{
		Origins: []cliconfig.Origin{
			{URL: "https://api.example.com/api", Alias: "production"},
			{URL: "https://staging.example.com/api", Alias: "staging"},
		},
	}))
	t.Chdir(dir)

	var out bytes.Buffer
	require.NoError(t, runSelectOrigin(&out, "staging"))

	project, err := cliconfig.LoadFromCurrentDir()
	require.NoError(t, err)
	selected, err := userconfig.SelectedOrigin(project.Path)
	require.NoError(t, err)
	assert.Equal(t, "https://staging.example.com/api", selected)
	assert.Contains(t, out.String(), "staging (https://staging.example.com/api)")

	assert.Error(t, runSelectOrigin(&out, "missing"))
}

func TestLoadConfig_OriginFlag(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	t.Setenv("CONSOLE_API_URL", "http://localhost:5000/api")

	cfg, err := loadConfig(&Options{})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5000/api", cfg.API.BaseURL)

	cfg, err = loadConfig(&Options{Origin: "https://api.example.com/api"})
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/api", cfg.API.BaseURL)
}

func TestRunDash(t *testing.T) {
	var opened string
	var out bytes.Buffer

	require.NoError(t, runDash(&out, "http://127.0.0.1:8080", func(url string) error {
		opened = url
		return nil
	}))
	assert.Equal(t, "http://127.0.0.1:8080", opened)

	err := runDash(&out, "http://127.0.0.1:8080", func(string) error { return errors.New("no browser") })
	assert.ErrorContains(t, err, "Please visit: http://127.0.0.1:8080")
}
