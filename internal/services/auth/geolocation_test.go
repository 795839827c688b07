package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rajivgeraev/skillswap-api/internal/logger"
)

func TestLocate(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		switch r.URL.Path {
		case "/8.8.8.8/json/":
			w.Write([]byte(`{"city":"Mountain View","country_name":"United States"}`))
		case "/1.1.1.1/json/":
			w.Write([]byte(`{"error":true,"reason":"RateLimited"}`))
		case "/9.9.9.9/json/":
			w.Write([]byte(`not json`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	geo := NewGeolocator(srv.URL+"/", logger.Discard())
	ctx := context.Background()

	assert.Equal(t, "Mountain View, United States", geo.Locate(ctx, "8.8.8.8"))
	assert.Equal(t, LocationUnavailable, geo.Locate(ctx, "1.1.1.1"))
	assert.Equal(t, LocationUnavailable, geo.Locate(ctx, "9.9.9.9"))
	assert.Equal(t, LocationUnavailable, geo.Locate(ctx, "4.4.4.4"))
	assert.Equal(t, int32(4), calls.Load())

	// локальные адреса не отправляются во внешний сервис
	assert.Equal(t, LocationUnavailable, geo.Locate(ctx, "127.0.0.1"))
	assert.Equal(t, LocationUnavailable, geo.Locate(ctx, "10.0.0.5"))
	assert.Equal(t, LocationUnavailable, geo.Locate(ctx, ""))
	assert.Equal(t, int32(4), calls.Load())
}

func TestLocateUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	geo := NewGeolocator(url, logger.Discard())
	assert.Equal(t, LocationUnavailable, geo.Locate(context.Background(), "8.8.8.8"))
}
