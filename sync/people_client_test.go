package sync

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func TestNewPeopleClientNilHTTPClient(t *testing.T) {
	service, err := NewPeopleClient(context.Background(), nil)
	assert.Error(t, err)
	assert.Nil(t, service)
}

func TestPeopleSourcePaginates(t *testing.T) {
	var queries []map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/v1/people/me/connections") {
			http.NotFound(w, r)
			return
		}
		q := r.URL.Query()
		queries = append(queries, map[string]string{
			"pageSize":     q.Get("pageSize"),
			"personFields": q.Get("personFields"),
			"pageToken":    q.Get("pageToken"),
		})

		w.Header().Set("Content-Type", "application/json")
		if q.Get("pageToken") == "" {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"connections": []map[string]any{
					{
						"resourceName": "people/c1",
						"names":        []map[string]any{{"displayName": "Ada Lovelace"}},
						"birthdays":    []map[string]any{{"date": map[string]any{"year": 1990, "month": 2, "day": 29}}},
					},
					{"resourceName": "people/c2"},
				},
				"nextPageToken": "page-2",
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"connections": []map[string]any{
				{"resourceName": "people/c3", "names": []map[string]any{{"displayName": "Charles Babbage"}}},
			},
		})
	}))
	defer srv.Close()

	service, err := NewPeopleClient(context.Background(), srv.Client(), option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)

	pipeline := NewContactPipeline(NewPeopleSource(service), 2, discardLogger())
	contacts := pipeline.Collect(context.Background())

	require.NoError(t, pipeline.Err())
	require.Len(t, contacts, 2)
	assert.Equal(t, "people/c1", contacts[0].ResourceName)
	require.NotNil(t, contacts[0].Birthday)
	assert.Equal(t, "1990-02-29", contacts[0].Birthday.String())
	assert.Equal(t, "Charles Babbage", contacts[1].Name)
	assert.Nil(t, contacts[1].Birthday)

	require.Len(t, queries, 2)
	assert.Equal(t, "2", queries[0]["pageSize"])
	assert.Equal(t, PersonFields, queries[0]["personFields"])
	assert.Equal(t, "page-2", queries[1]["pageToken"])
}

func TestPeopleSourceErrorStopsPipeline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"People API has not been used in project"}}`))
	}))
	defer srv.Close()

	service, err := NewPeopleClient(context.Background(), srv.Client(), option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)

	pipeline := NewContactPipeline(NewPeopleSource(service), 10, discardLogger())
	assert.Empty(t, pipeline.Collect(context.Background()))
	assert.ErrorContains(t, pipeline.Err(), "failed to fetch contacts")
}
