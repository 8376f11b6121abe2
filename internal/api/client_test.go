package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tokenBox is a mutable Credentials + Refresher for tests
type tokenBox struct {
	mu        sync.Mutex
	token     string
	refreshed string
	refreshOK bool
	refreshes int
}

func (b *tokenBox) AccessToken() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.token
}

func (b *tokenBox) RefreshToken(ctx context.Context) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refreshes++
	if !b.refreshOK {
		b.token = ""
		return false
	}
	b.token = b.refreshed
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestClient_AttachesBearerToken(t *testing.T) {
	var gotAuth, gotRequestID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get(requestIDHeader)
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}))
	defer server.Close()

	client := New(server.URL)
	client.SetCredentials(&tokenBox{token: "T1"})

	require.NoError(t, client.UpdateStatus(context.Background()))
	assert.Equal(t, "Bearer T1", gotAuth)
	assert.Len(t, gotRequestID, 26)
}

func TestClient_UnauthenticatedCallsCarryNoToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "error": "Invalid credentials"})
	}))
	defer server.Close()

	client := New(server.URL)
	client.SetCredentials(&tokenBox{token: "T1"})

	resp, err := client.Login(context.Background(), "a@b.com", "wrong")
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "Invalid credentials", resp.Error)
	assert.Empty(t, gotAuth)
}

func TestClient_LoginRejectedWith401IsNotIntercepted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "error": "Invalid email or password"})
	}))
	defer server.Close()

	client := New(server.URL)
	fired := false
	client.OnUnauthorized(func(context.Context, UnauthorizedEvent) { fired = true })

	_, err := client.AdminLogin(context.Background(), "a@b.com", "wrong")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, "Invalid email or password", Message(err))
	assert.False(t, fired)
}

func TestClient_401RefreshesAndRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Header.Get("Authorization") != "Bearer FRESH" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "expired"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"users":   []map[string]any{{"id": 7, "email": "a@b.com"}},
		})
	}))
	defer server.Close()

	box := &tokenBox{token: "STALE", refreshed: "FRESH", refreshOK: true}
	client := New(server.URL)
	client.SetCredentials(box)
	client.SetRefresher(box)

	fired := false
	client.OnUnauthorized(func(context.Context, UnauthorizedEvent) { fired = true })

	users, err := client.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, ID("7"), users[0].ID)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, 1, box.refreshes)
	assert.False(t, fired)
}

func TestClient_401WithFailedRefreshInvalidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "expired"})
	}))
	defer server.Close()

	box := &tokenBox{token: "STALE", refreshOK: false}
	client := New(server.URL)
	client.SetCredentials(box)
	client.SetRefresher(box)

	var events []UnauthorizedEvent
	client.OnUnauthorized(func(_ context.Context, e UnauthorizedEvent) { events = append(events, e) })

	err := client.UpdateStatus(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
	require.Len(t, events, 1)
	assert.Equal(t, UnauthorizedEvent{Method: http.MethodPost, Path: "/auth/update-status", Token: "STALE"}, events[0])
}

func TestClient_401AfterRetryInvalidates(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "revoked"})
	}))
	defer server.Close()

	box := &tokenBox{token: "STALE", refreshed: "FRESH", refreshOK: true}
	client := New(server.URL)
	client.SetCredentials(box)
	client.SetRefresher(box)

	var events []UnauthorizedEvent
	client.OnUnauthorized(func(_ context.Context, e UnauthorizedEvent) { events = append(events, e) })

	_, err := client.ListAdminJobs(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, int32(2), calls.Load())
	require.Len(t, events, 1)
	assert.Equal(t, "FRESH", events[0].Token)
}

func TestClient_LifecycleCallsSkipRefresh(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "expired"})
	}))
	defer server.Close()

	box := &tokenBox{token: "STALE", refreshed: "FRESH", refreshOK: true}
	client := New(server.URL)
	client.SetCredentials(box)
	client.SetRefresher(box)

	fired := 0
	client.OnUnauthorized(func(context.Context, UnauthorizedEvent) { fired++ })

	_, err := client.Verify(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, 0, box.refreshes)
	assert.Equal(t, 1, fired)
}

func TestClient_ServiceErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/dashboard/stats":
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "database unavailable"})
		case "/modules":
			writeJSON(w, http.StatusOK, map[string]any{"success": false, "error": "Failed to load modules"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := New(server.URL)
	client.SetCredentials(&tokenBox{token: "T1"})

	_, err := client.DashboardStats(context.Background())
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "database unavailable", apiErr.Message)

	_, err = client.ListModules(context.Background())
	assert.Equal(t, "Failed to load modules", Message(err))

	err = client.MakeAdmin(context.Background(), "42")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestClient_JobAnalytics(t *testing.T) {
	var gotPath, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"analytics": map[string]any{
				"totalClicks":       40,
				"totalApplications": 6,
				"clicksTrend":       []map[string]any{{"date": "2024-05-01", "clicks": 12}},
				"applicationsTrend": []map[string]any{{"date": "2024-05-01", "applications": 2}},
				"statusBreakdown":   []map[string]any{{"status": "pending", "count": 4}},
			},
		})
	}))
	defer server.Close()

	client := New(server.URL)
	client.SetCredentials(&tokenBox{token: "T1"})

	analytics, err := client.JobAnalytics(context.Background(), "12")
	require.NoError(t, err)

	assert.Equal(t, "/jobs/12/analytics", gotPath)
	assert.Equal(t, "Bearer T1", gotAuth)
	assert.Equal(t, 40, analytics.TotalClicks)
	assert.Equal(t, 6, analytics.TotalApplications)
	assert.InDelta(t, 15.0, analytics.ConversionRate(), 0.001)
	require.Len(t, analytics.ClicksTrend, 1)
	assert.Equal(t, ClicksPoint{Date: "2024-05-01", Clicks: 12}, analytics.ClicksTrend[0])
	require.Len(t, analytics.StatusBreakdown, 1)
	assert.Equal(t, StatusCount{Status: "pending", Count: 4}, analytics.StatusBreakdown[0])
}

func TestJobAnalytics_ConversionRate(t *testing.T) {
	tests := []struct {
		name      string
		analytics JobAnalytics
		want      float64
	}{
		{name: "no clicks", analytics: JobAnalytics{TotalClicks: 0, TotalApplications: 3}, want: 0},
		{name: "no applications", analytics: JobAnalytics{TotalClicks: 10}, want: 0},
		{name: "one in four", analytics: JobAnalytics{TotalClicks: 8, TotalApplications: 2}, want: 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.analytics.ConversionRate(), 0.001)
		})
	}
}

func TestClient_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := New(server.URL)
	_, err := client.Login(context.Background(), "a@b.com", "pw")
	assert.ErrorIs(t, err, ErrTransport)
}

func TestID_UnmarshalJSON(t *testing.T) {
	var user User
	require.NoError(t, json.Unmarshal([]byte(`{"id":7,"email":"a@b.com","is_admin":true}`), &user))
	assert.Equal(t, ID("7"), user.ID)

	require.NoError(t, json.Unmarshal([]byte(`{"id":"01HZX","email":"a@b.com"}`), &user))
	assert.Equal(t, ID("01HZX"), user.ID)

	require.NoError(t, json.Unmarshal([]byte(`{"id":null}`), &user))
	assert.Equal(t, ID(""), user.ID)

	assert.Error(t, json.Unmarshal([]byte(`{"id":{}}`), &user))
}
