package airtable

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient("key-123", srv.URL, "appBASE", "Contrats", 5*time.Second)
}

func TestListRecordsFollowsOffsetAcrossPages(t *testing.T) {
	pages := map[string]listResponse{
		"": {Records: []RawRecord{
			{ID: "rec1", Fields: map[string]any{"Nom": "A"}},
			{ID: "rec2", Fields: map[string]any{"Nom": "B"}},
		}, Offset: "p2"},
		"p2": {Records: []RawRecord{
			{ID: "rec3", Fields: map[string]any{}},
			{ID: "rec4", Fields: map[string]any{}},
		}, Offset: "p3"},
		"p3": {Records: []RawRecord{
			{ID: "rec5", Fields: map[string]any{}},
			{ID: "rec6", Fields: map[string]any{}},
		}},
	}
	var calls []string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer key-123", r.Header.Get("Authorization"))
		assert.Equal(t, "/appBASE/Contrats", r.URL.Path)
		offset := r.URL.Query().Get("offset")
		calls = append(calls, offset)
		json.NewEncoder(w).Encode(pages[offset])
	})

	records, err := client.ListRecords(context.Background())

	require.NoError(t, err)
	require.Len(t, records, 6)
	assert.Equal(t, []string{"", "p2", "p3"}, calls)
	for i, rec := range records {
		assert.Equal(t, fmt.Sprintf("rec%d", i+1), rec.ID)
	}
	assert.Equal(t, "A", records[0].Name)
}

func TestListRecordsReturnsAccumulatedOnPageFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("offset") == "" {
			json.NewEncoder(w).Encode(listResponse{
				Records: []RawRecord{{ID: "rec1"}, {ID: "rec2"}},
				Offset:  "p2",
			})
			return
		}
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":"RATE_LIMITED"}`))
	})

	records, err := client.ListRecords(context.Background())

	require.Error(t, err)
	assert.Len(t, records, 2)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.Status)
	assert.Contains(t, apiErr.Body, "RATE_LIMITED")
}

func TestListRecordsFirstPageFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	records, err := client.ListRecords(context.Background())

	assert.Error(t, err)
	assert.Empty(t, records)
}

func TestPatchRecord(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		var got patchRequest
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPatch, r.Method)
			assert.Equal(t, "/appBASE/Contrats/recR1", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.Write([]byte(`{"id":"recR1","fields":{}}`))
		})

		err := client.PatchRecord(context.Background(), "recR1", map[string]any{"Email Mandat sellsy": true})

		require.NoError(t, err)
		assert.Equal(t, true, got.Fields["Email Mandat sellsy"])
	})

	t.Run("Non 200 is not applied", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(`{"error":{"type":"INVALID_VALUE_FOR_COLUMN"}}`))
		})

		err := client.PatchRecord(context.Background(), "recR1", map[string]any{"x": 1})

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
		assert.Contains(t, apiErr.Error(), "INVALID_VALUE_FOR_COLUMN")
	})
}

func TestGetRecord(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/appBASE/Contrats/recINST", r.URL.Path)
		w.Write([]byte(`{"id":"recINST","fields":{"Nom":"Solaire Plus"}}`))
	})

	raw, err := client.GetRecord(context.Background(), "recINST")

	require.NoError(t, err)
	assert.Equal(t, "Solaire Plus", raw.Fields["Nom"])
}

func TestFindByFieldBuildsFormula(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "{Email}='jane@x.com'", r.URL.Query().Get("filterByFormula"))
		w.Write([]byte(`{"records":[{"id":"recJ","fields":{"Email":"jane@x.com","ID_Sellsy":42}}]}`))
	})

	records, err := client.FindByField(context.Background(), "Email", "jane@x.com")

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "42", records[0].CRMCustomerRef)
}

func TestPing(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("maxRecords"))
		w.Write([]byte(`{"records":[]}`))
	})

	assert.NoError(t, client.Ping(context.Background()))
}

func TestFindByFieldEscapesQuotesAndBackslashes(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, `{Email}='o\'brien\\x@y.com'`, r.URL.Query().Get("filterByFormula"))
		w.Write([]byte(`{"records":[]}`))
	})

	records, err := client.FindByField(context.Background(), "Email", `o'brien\x@y.com`)

	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestListRecordsStopsOnRepeatedOffset(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"records":[{"id":"recA","fields":{}}],"offset":"same"}`))
	})

	records, err := client.ListRecords(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "repetido")
	assert.Equal(t, 2, calls)
	assert.Len(t, records, 2)
}

func TestPatchRecordTruncatedErrorBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "200")
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"error":`))
	})

	err := client.PatchRecord(context.Background(), "rec1", map[string]any{"x": true})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	assert.Contains(t, apiErr.Body, "leitura incompleta")
}
