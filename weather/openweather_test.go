package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	platformerrors "github.com/jmgilman/go/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const taipeiPayload = `{
  "coord": {"lon": 121.5654, "lat": 25.033},
  "weather": [{"id": 803, "main": "Clouds", "description": "broken clouds", "icon": "04d"}],
  "main": {"temp": 28.46, "feels_like": 31.04, "temp_min": 27.1, "temp_max": 29.9, "pressure": 1009, "humidity": 74},
  "name": "Taipei",
  "cod": 200
}`

func TestOpenWeatherFetcher_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/2.5/weather", r.URL.Path)
		assert.Equal(t, "25.033", r.URL.Query().Get("lat"))
		assert.Equal(t, "121.5654", r.URL.Query().Get("lon"))
		assert.Equal(t, "secret", r.URL.Query().Get("appid"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(taipeiPayload))
	}))
	defer srv.Close()

	obs, err := NewOpenWeatherFetcher(srv.URL, "secret").Fetch(context.Background(), 25.033, 121.5654)
	require.NoError(t, err)
	assert.Equal(t, taipeiObs, obs)
}

func TestOpenWeatherFetcher_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode platformerrors.ErrorCode
	}{
		{"unauthorized", http.StatusUnauthorized, `{"cod":401,"message":"Invalid API key"}`, platformerrors.CodeUnavailable},
		{"server error", http.StatusBadGateway, `oops`, platformerrors.CodeUnavailable},
		{"not json", http.StatusOK, `<html></html>`, platformerrors.CodeInvalidInput},
		{"missing temperature", http.StatusOK, `{"name":"Taipei","main":{}}`, platformerrors.CodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewOpenWeatherFetcher(srv.URL, "k").Fetch(context.Background(), 1, 2)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, platformerrors.GetCode(err))
		})
	}
}

func TestOpenWeatherFetcher_MissingKeyMakesNoRequest(t *testing.T) {
	hit := false
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { hit = true }))
	defer srv.Close()

	_, err := NewOpenWeatherFetcher(srv.URL, "").Fetch(context.Background(), 1, 2)
	require.ErrorIs(t, err, ErrMissingCredentials)
	assert.False(t, hit)
}

func TestOpenWeatherFetcher_TimeoutAndTransport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := NewOpenWeatherFetcher(srv.URL, "k").Fetch(ctx, 1, 2)
	require.Error(t, err)
	assert.Equal(t, platformerrors.CodeTimeout, platformerrors.GetCode(err))
	assert.True(t, platformerrors.IsRetryable(err))

	_, err = NewOpenWeatherFetcher("http://127.0.0.1:1", "k").Fetch(context.Background(), 1, 2)
	require.Error(t, err)
	assert.Equal(t, platformerrors.CodeNetwork, platformerrors.GetCode(err))
}

func TestNewOpenWeatherFetcher_DefaultURL(t *testing.T) {
	f := NewOpenWeatherFetcher("", "k")
	assert.Equal(t, DefaultOpenWeatherURL, f.BaseURL)
	assert.Equal(t, "openweathermap(https://api.openweathermap.org)", f.String())
}
