package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNominatimClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "changemakers-test", r.Header.Get("User-Agent"))

		switch r.URL.Path {
		case "/reverse":
			assert.Equal(t, "-1.29", r.URL.Query().Get("lat"))
			_, _ = w.Write([]byte(`{"lat":"-1.29","lon":"36.82","display_name":"Kibera, Nairobi"}`))
		case "/search":
			_, _ = w.Write([]byte(`[{"lat":"-0.1","lon":"34.75","display_name":"Kisumu"},{"lat":"bad","lon":"1","display_name":"skipped"}]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := NewNominatimClient(srv.URL, "changemakers-test", srv.Client())

	address, err := client.ReverseGeocode(context.Background(), -1.29, 36.82)
	require.NoError(t, err)
	assert.Equal(t, "Kibera, Nairobi", address)

	places, err := client.SearchPlaces(context.Background(), "kisumu")
	require.NoError(t, err)
	require.Len(t, places, 1)
	assert.Equal(t, "Kisumu", places[0].AddressText)
	assert.InDelta(t, 34.75, places[0].Coordinate.Lng, 1e-9)
}

func TestNominatimClientErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewNominatimClient(srv.URL, "ua", nil)
	_, err := client.ReverseGeocode(context.Background(), 1, 1)
	assert.Error(t, err)
}
