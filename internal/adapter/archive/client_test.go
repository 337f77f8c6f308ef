package archive

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sopkre/johnstonsarchive-nucleartest-reader/internal/domain"
	"github.com/sopkre/johnstonsarchive-nucleartest-reader/internal/observability"
)

const testDocument = "header\ntable start\nrow 1\nrow 2\nrow 3\nfooter"

func newTestClient() *Client {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewClient(5*time.Second, logger, observability.NewMetricsForTesting())
}

func TestFetchLines(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(testDocument))
	}))
	t.Cleanup(srv.Close)

	c := newTestClient()
	ctx := context.Background()

	t.Run("line range", func(t *testing.T) {
		lines, err := c.FetchLines(ctx, srv.URL, 2, 5)
		require.NoError(t, err)
		assert.Equal(t, []string{"row 1", "row 2", "row 3"}, lines)
	})

	t.Run("negative last counts from the end", func(t *testing.T) {
		lines, err := c.FetchLines(ctx, srv.URL, 2, -1)
		require.NoError(t, err)
		assert.Equal(t, []string{"row 1", "row 2", "row 3"}, lines)
	})

	t.Run("document fetched once per url", func(t *testing.T) {
		_, err := c.FetchLines(ctx, srv.URL, 0, 2)
		require.NoError(t, err)
		assert.Equal(t, int32(1), hits.Load())
	})

	t.Run("last clamped to document length", func(t *testing.T) {
		lines, err := c.FetchLines(ctx, srv.URL, 5, 500)
		require.NoError(t, err)
		assert.Equal(t, []string{"footer"}, lines)
	})

	t.Run("empty range is a fetch error", func(t *testing.T) {
		_, err := c.FetchLines(ctx, srv.URL, 50, 60)
		var fetchErr *domain.FetchError
		require.ErrorAs(t, err, &fetchErr)
		assert.Contains(t, fetchErr.Reason, "empty line range")
	})
}

func TestFetchLines_HTTPErrors(t *testing.T) {
	t.Run("non-200 status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		t.Cleanup(srv.Close)

		_, err := newTestClient().FetchLines(context.Background(), srv.URL, 0, 10)
		var fetchErr *domain.FetchError
		require.ErrorAs(t, err, &fetchErr)
		assert.Contains(t, fetchErr.Reason, "status 404")
	})

	t.Run("unreachable host", func(t *testing.T) {
		_, err := newTestClient().FetchLines(context.Background(), "http://127.0.0.1:1", 0, 10)
		var fetchErr *domain.FetchError
		require.ErrorAs(t, err, &fetchErr)
	})

	t.Run("crlf documents split cleanly", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("a\r\nb\r\nc"))
		}))
		t.Cleanup(srv.Close)

		lines, err := newTestClient().FetchLines(context.Background(), srv.URL, 0, 2)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, lines)
	})
}
