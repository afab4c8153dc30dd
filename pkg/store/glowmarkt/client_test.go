package glowmarkt

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Login(t *testing.T) {
	t.Run("sends credentials and returns token", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/auth", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			assert.Equal(t, DefaultApplicationID, r.Header.Get("applicationId"))

			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "user@example.com", body["username"])
			assert.Equal(t, "hunter2", body["password"])

			_ = json.NewEncoder(w).Encode(map[string]any{"valid": true, "token": "tok-123"})
		}))
		defer srv.Close()

		client := NewClient(Config{BaseURL: srv.URL})
		resp, err := client.Login(context.Background(), "user@example.com", "hunter2")

		require.NoError(t, err)
		assert.Equal(t, "tok-123", resp.Token)
		assert.True(t, resp.Valid)
	})

	t.Run("rejected credentials map to AuthError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid credentials"})
		}))
		defer srv.Close()

		client := NewClient(Config{BaseURL: srv.URL})
		_, err := client.Login(context.Background(), "user@example.com", "wrong")

		require.Error(t, err)
		assert.True(t, IsAuthError(err))
		assert.Contains(t, err.Error(), "invalid credentials")
	})

	t.Run("missing token in a 200 body is an auth failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{"valid": false})
		}))
		defer srv.Close()

		client := NewClient(Config{BaseURL: srv.URL})
		_, err := client.Login(context.Background(), "user@example.com", "hunter2")

		require.Error(t, err)
		assert.True(t, IsAuthError(err))
	})
}

func TestClient_GetVirtualEntities(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/virtualentity", r.URL.Path)
		assert.Equal(t, "tok-123", r.Header.Get("token"))
		assert.Equal(t, DefaultApplicationID, r.Header.Get("applicationId"))

		_ = json.NewEncoder(w).Encode([]map[string]string{
			{"veId": "ve-1", "name": "Home"},
		})
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})
	entities, err := client.GetVirtualEntities(context.Background(), "tok-123")

	require.NoError(t, err)
	require.Len(t, entities, 1)
	assert.Equal(t, "ve-1", entities[0].VeID)
	assert.Equal(t, "Home", entities[0].Name)
}

func TestClient_GetResources(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/virtualentity/ve-1/resources", r.URL.Path)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"veId": "ve-1",
			"resources": []map[string]string{
				{"resourceId": "res-1", "classifier": "electricity.consumption", "baseUnit": "kWh", "name": "electricity consumption"},
				{"resourceId": "res-2", "classifier": "electricity.consumption.cost", "baseUnit": "pence", "name": "electricity cost"},
			},
		})
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})
	resp, err := client.GetResources(context.Background(), "tok-123", "ve-1")

	require.NoError(t, err)
	assert.Equal(t, "ve-1", resp.VeID)
	require.Len(t, resp.Resources, 2)
	assert.Equal(t, "electricity.consumption", resp.Resources[0].Classifier)
	assert.Equal(t, "kWh", resp.Resources[0].BaseUnit)
}

func TestClient_GetReadings(t *testing.T) {
	t.Run("encodes the query the way the endpoint expects", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/resource/res-1/readings", r.URL.Path)

			q := r.URL.Query()
			assert.Equal(t, "2024-03-01T00:00:00", q.Get("from"))
			assert.Equal(t, "2024-03-02T00:00:00", q.Get("to"))
			assert.Equal(t, "PT30M", q.Get("period"))
			assert.Equal(t, "0", q.Get("offset"))
			assert.Equal(t, "sum", q.Get("function"))

			_ = json.NewEncoder(w).Encode(map[string]any{
				"status": "OK",
				"data":   [][]any{{1709251200, 0.125}, {1709253000, nil}},
				"units":  "kWh",
			})
		}))
		defer srv.Close()

		client := NewClient(Config{BaseURL: srv.URL})
		resp, err := client.GetReadings(context.Background(), "tok-123", ReadingsRequest{
			ResourceID: "res-1",
			From:       time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			To:         time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
			Period:     30 * time.Minute,
		})

		require.NoError(t, err)
		assert.Equal(t, "kWh", resp.Units)
		assert.Len(t, resp.Pairs(), 2)
	})

	t.Run("falls back to the readings key", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"status":   "OK",
				"readings": [][]any{{1709251200, 1.5}},
				"units":    "kWh",
			})
		}))
		defer srv.Close()

		client := NewClient(Config{BaseURL: srv.URL})
		resp, err := client.GetReadings(context.Background(), "tok-123", ReadingsRequest{
			ResourceID: "res-1",
			From:       time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			To:         time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
			Period:     30 * time.Minute,
		})

		require.NoError(t, err)
		assert.Len(t, resp.Pairs(), 1)
	})
}

func TestClient_ErrorClassification(t *testing.T) {
	cases := []struct {
		name   string
		status int
		check  func(error) bool
	}{
		{"401 is an auth failure", http.StatusUnauthorized, IsAuthError},
		{"403 is an auth failure", http.StatusForbidden, IsAuthError},
		{"429 is transient", http.StatusTooManyRequests, IsTransientError},
		{"500 is transient", http.StatusInternalServerError, IsTransientError},
		{"503 is transient", http.StatusServiceUnavailable, IsTransientError},
		{"404 is permanent", http.StatusNotFound, IsCatalogError},
		{"400 is permanent", http.StatusBadRequest, IsCatalogError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			}))
			defer srv.Close()

			client := NewClient(Config{BaseURL: srv.URL})
			_, err := client.GetVirtualEntities(context.Background(), "tok-123")

			require.Error(t, err)
			assert.True(t, tc.check(err), "unexpected classification: %v", err)
		})
	}
}

func TestClient_TransportFailureIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})
	_, err := client.GetVirtualEntities(context.Background(), "tok-123")

	require.Error(t, err)
	assert.True(t, IsTransientError(err))
}

func TestFormatPeriod(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{30 * time.Minute, "PT30M"},
		{time.Minute, "PT1M"},
		{time.Hour, "PT1H"},
		{2 * time.Hour, "PT2H"},
		{24 * time.Hour, "P1D"},
		{7 * 24 * time.Hour, "P1W"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatPeriod(tc.in), "period %s", tc.in)
	}
}

func TestFormatTimestamp(t *testing.T) {
	loc, err := time.LoadLocation("Europe/London")
	require.NoError(t, err)

	// A BST wall-clock time must be converted to UTC before encoding.
	ts := time.Date(2024, 6, 1, 13, 30, 0, 0, loc)
	assert.Equal(t, "2024-06-01T12:30:00", FormatTimestamp(ts))
}
