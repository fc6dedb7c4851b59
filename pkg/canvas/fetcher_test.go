package canvas

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/gradesync/internal/transport"
	"github.com/agentstation/gradesync/pkg/errors"
	"github.com/agentstation/gradesync/pkg/logging"
)

func newTestTransport() *transport.Client {
	return transport.New(&transport.BearerAuth{}, "test-token",
		transport.WithRetry(1, time.Millisecond, time.Millisecond),
		transport.WithRateLimit(0, 0),
		transport.WithLogger(logging.NewNopLogger()),
	)
}

// pagedServer serves pages of two items each; every page but the last links to the next.
func pagedServer(t *testing.T, pages int, queries *[]url.Values) *httptest.Server {
	t.Helper()
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if queries != nil {
			*queries = append(*queries, r.URL.Query())
		}
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page == 0 {
			page = 1
		}
		if page < pages {
			next := fmt.Sprintf("%s/items?page=%d", server.URL, page+1)
			w.Header().Set("Link", fmt.Sprintf(`<%s/items?page=1>; rel="first", <%s>; rel="next", <%s/items?page=%d>; rel="last"`,
				server.URL, next, server.URL, pages))
		}
		_ = json.NewEncoder(w).Encode([]map[string]int{{"id": page*10 + 1}, {"id": page*10 + 2}})
	}))
	t.Cleanup(server.Close)
	return server
}

func TestFetchAllConcatenatesPages(t *testing.T) {
	for _, pages := range []int{1, 2, 5} {
		t.Run(strconv.Itoa(pages), func(t *testing.T) {
			server := pagedServer(t, pages, nil)
			f := NewFetcher(newTestTransport())

			items, err := FetchAllAs[struct{ ID int }](context.Background(), f, server.URL+"/items", nil)
			require.NoError(t, err)
			require.Len(t, items, 2*pages)
			for p := 1; p <= pages; p++ {
				assert.Equal(t, p*10+1, items[2*(p-1)].ID)
				assert.Equal(t, p*10+2, items[2*(p-1)+1].ID)
			}
		})
	}
}

func TestFetchAllAppliesParamsToFirstRequestOnly(t *testing.T) {
	var queries []url.Values
	server := pagedServer(t, 3, &queries)
	f := NewFetcher(newTestTransport())

	params := url.Values{"per_page": {"100"}, "enrollment_type": {"student"}}
	_, err := f.FetchAll(context.Background(), server.URL+"/items", params)
	require.NoError(t, err)

	require.Len(t, queries, 3)
	assert.Equal(t, "100", queries[0].Get("per_page"))
	assert.Equal(t, "student", queries[0].Get("enrollment_type"))
	assert.Empty(t, queries[1].Get("per_page"))
	assert.Equal(t, "3", queries[2].Get("page"))
}

func TestFetchAllEmptyPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	items, err := NewFetcher(newTestTransport()).FetchAll(context.Background(), server.URL+"/users", nil)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestFetchAllFailsOnErrorStatus(t *testing.T) {
	calls := 0
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Query().Get("page") == "2" {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"errors":[{"message":"user not authorized"}]}`))
			return
		}
		w.Header().Set("Link", fmt.Sprintf(`<%s/users?page=2>; rel="next"`, server.URL))
		_, _ = w.Write([]byte(`[{"id":1}]`))
	}))
	defer server.Close()

	_, err := NewFetcher(newTestTransport()).FetchAll(context.Background(), server.URL+"/users", nil)
	require.Error(t, err)
	assert.True(t, errors.IsUnauthorized(err))

	var apiErr *errors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "user not authorized")
	assert.Equal(t, "list users", apiErr.Operation)
	assert.Equal(t, 2, calls)
}

func TestFetchAllDetectsLoops(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Link", fmt.Sprintf(`<%s/users>; rel="next"`, server.URL))
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	_, err := NewFetcher(newTestTransport()).FetchAll(context.Background(), server.URL+"/users", nil)
	assert.True(t, errors.IsValidationError(err))
}

func TestNextLink(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{name: "empty", header: "", want: ""},
		{name: "no next", header: `<https://x/a?page=1>; rel="current", <https://x/a?page=3>; rel="last"`, want: ""},
		{
			name:   "next among others",
			header: `<https://x/a?page=1>; rel="current",<https://x/a?page=2&per_page=100>; rel="next",<https://x/a?page=9>; rel="last"`,
			want:   "https://x/a?page=2&per_page=100",
		},
		{name: "spaces", header: ` <https://x/a?page=2> ; rel="next"`, want: "https://x/a?page=2"},
		{name: "malformed segment", header: `https://x/a?page=2; rel="next"`, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextLink(tt.header))
		})
	}
}

func TestResourceName(t *testing.T) {
	assert.Equal(t, "users", resourceName("https://x/api/v1/courses/1/users?per_page=100"))
	assert.Equal(t, "assignments", resourceName("https://x/api/v1/courses/1/assignments/"))
}
