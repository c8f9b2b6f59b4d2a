package gocardless

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	return NewClient("gc-token", srv.URL, 5*time.Second)
}

func TestGetMandate(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/mandates/MD123", r.URL.Path)
		assert.Equal(t, "Bearer gc-token", r.Header.Get("Authorization"))
		assert.Equal(t, APIVersion, r.Header.Get("GoCardless-Version"))
		w.Write([]byte(`{"mandates":{"id":"MD123","reference":"REF-9","scheme":"sepa_core","status":"active"}}`))
	})

	m, err := client.GetMandate(context.Background(), "MD123")

	require.NoError(t, err)
	assert.Equal(t, "MD123", m.ID)
	assert.Equal(t, "REF-9", m.Reference)
	assert.Equal(t, "sepa_core", m.Scheme)
}

func TestGetCustomer(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/customers/CU1", r.URL.Path)
		w.Write([]byte(`{"customers":{"id":"CU1","email":"jane@x.com"}}`))
	})

	c, err := client.GetCustomer(context.Background(), "CU1")

	require.NoError(t, err)
	assert.Equal(t, "jane@x.com", c.Email)
}

func TestErrorsPropagate(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"message":"Resource not found","type":"invalid_api_usage","code":404,"errors":[]}}`))
	})

	_, err := client.GetMandate(context.Background(), "MDX")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "gocardless mandates.get MDX")
}

func TestListCreditors(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/creditors", r.URL.Path)
		w.Write([]byte(`{"creditors":[{"id":"CR1"},{"id":"CR2"}],"meta":{"cursors":{},"limit":50}}`))
	})

	n, err := client.ListCreditors(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestBaseURLFor(t *testing.T) {
	assert.Equal(t, SandboxURL, BaseURLFor("sandbox"))
	assert.Equal(t, LiveURL, BaseURLFor("live"))
	assert.Equal(t, LiveURL, BaseURLFor(""))
}
