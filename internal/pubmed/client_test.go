// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubmed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pubmed-assistant/internal/httputil"
	"github.com/pdiddy/pubmed-assistant/pkg/types"
)

func testClient(ts *httptest.Server) *Client {
	c := NewClient(types.EntrezConfig{
		HTTPConfig: types.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "test/0.1"},
		BaseURL:    ts.URL,
	}, nil)
	c.HTTP = ts.Client()
	return c
}

// fakeEutils serves esearch with ids and efetch with one article per
// requested id.
func fakeEutils(t *testing.T, ids []string) (*httptest.Server, *[]*http.Request) {
	t.Helper()
	var reqs []*http.Request
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqs = append(reqs, r)
		switch {
		case strings.HasSuffix(r.URL.Path, "/esearch.fcgi"):
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprintf(w, `{"header":{"type":"esearch"},"esearchresult":{"count":"%d","idlist":[%s]}}`,
				len(ids), quoteJoin(ids))
		case strings.HasSuffix(r.URL.Path, "/efetch.fcgi"):
			var arts []string
			for _, id := range strings.Split(r.URL.Query().Get("id"), ",") {
				arts = append(arts, articleXML(id, "Paper "+id, "<AbstractText>About "+id+"</AbstractText>", "", fullDate))
			}
			w.Header().Set("Content-Type", "text/xml")
			fmt.Fprint(w, articleSet(arts...))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(ts.Close)
	return ts, &reqs
}

func quoteJoin(ids []string) string {
	q := make([]string, len(ids))
	for i, id := range ids {
		q[i] = `"` + id + `"`
	}
	return strings.Join(q, ",")
}

func TestSearchRequestParams(t *testing.T) {
	ts, reqs := fakeEutils(t, []string{"1", "2"})
	c := testClient(ts)
	c.Config.APIKey = "ncbi-key"
	c.Config.Email = "dev@example.com"

	records, err := c.Search(context.Background(), "prevention of autoimmune diseases", 5)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Len(t, *reqs, 2)

	search := (*reqs)[0].URL.Query()
	assert.Equal(t, "pubmed", search.Get("db"))
	assert.Equal(t, "prevention of autoimmune diseases", search.Get("term"))
	assert.Equal(t, "5", search.Get("retmax"))
	assert.Equal(t, "json", search.Get("retmode"))
	assert.Equal(t, "relevance", search.Get("sort"))
	assert.Equal(t, "ncbi-key", search.Get("api_key"))
	assert.Equal(t, "dev@example.com", search.Get("email"))
	assert.Equal(t, "test/0.1", (*reqs)[0].Header.Get("User-Agent"))

	fetch := (*reqs)[1].URL.Query()
	assert.Equal(t, "pubmed", fetch.Get("db"))
	assert.Equal(t, "1,2", fetch.Get("id"))
	assert.Equal(t, "xml", fetch.Get("retmode"))
}

func TestSearchDefaultMaxResults(t *testing.T) {
	ts, reqs := fakeEutils(t, nil)
	c := testClient(ts)

	_, err := c.Search(context.Background(), "asthma", 0)
	require.NoError(t, err)
	assert.Equal(t, "50", (*reqs)[0].URL.Query().Get("retmax"))
}

func TestSearchNoIDsSkipsFetch(t *testing.T) {
	ts, reqs := fakeEutils(t, nil)
	c := testClient(ts)

	records, err := c.Search(context.Background(), "zzzz-no-hits", 10)
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
	assert.Len(t, *reqs, 1, "efetch must not be called for an empty id list")
}

func TestSearchEmptyQuery(t *testing.T) {
	ts, reqs := fakeEutils(t, nil)
	c := testClient(ts)

	_, err := c.Search(context.Background(), "   ", 10)
	assert.Error(t, err)
	assert.Empty(t, *reqs)
}

func TestSearchUpstreamFailure(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantMsg string
	}{
		{
			name: "esearch 500",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				fmt.Fprint(w, "backend down")
			},
			wantMsg: "backend down",
		},
		{
			name: "efetch 400",
			handler: func(w http.ResponseWriter, r *http.Request) {
				if strings.HasSuffix(r.URL.Path, "/esearch.fcgi") {
					fmt.Fprint(w, `{"esearchresult":{"idlist":["1"]}}`)
					return
				}
				w.WriteHeader(http.StatusBadRequest)
				fmt.Fprint(w, "bad id")
			},
			wantMsg: "bad id",
		},
		{
			name: "esearch error field",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"error":"API key invalid"}`)
			},
			wantMsg: "API key invalid",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				tt.handler(w, r)
			}))
			defer ts.Close()

			_, err := testClient(ts).Search(context.Background(), "q", 5)
			require.Error(t, err)

			var ue *httputil.UpstreamError
			assert.True(t, errors.As(err, &ue))
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.LessOrEqual(t, atomic.LoadInt32(&calls), int32(2), "no retries")
		})
	}
}

func TestFetchRecordsBatch(t *testing.T) {
	ts, reqs := fakeEutils(t, nil)
	c := testClient(ts)

	requested := []string{"39773054", "39772822"}
	records, err := c.FetchRecords(context.Background(), requested)
	require.NoError(t, err)

	require.Len(t, *reqs, 1, "ids are fetched in one batch call")
	assert.Equal(t, "39773054,39772822", (*reqs)[0].URL.Query().Get("id"))

	assert.LessOrEqual(t, len(records), 2)
	for _, r := range records {
		assert.Contains(t, requested, r.PMID)
	}
}

func TestFetchRecordsOmitsBrokenArticles(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, articleSet(
			articleXML("1", "good", "", "", fullDate),
			articleXML("", "broken", "", "", fullDate),
		))
	}))
	defer ts.Close()

	records, err := testClient(ts).FetchRecords(context.Background(), []string{"1", "2"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "1", records[0].PMID)
}
