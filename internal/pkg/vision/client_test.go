package vision

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/meridharani/dharani-api/pkg/apperr"
)

func newTestClient(url string, attempts int) *Client {
	return NewClient(url, "test-key", 2*time.Second, attempts, time.Millisecond)
}

func TestClassify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/classify", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NotEmpty(t, r.Header.Get("X-Request-ID"))
		w.Write([]byte(`{"category":"organic","confidence":0.92}`))
	}))
	defer srv.Close()

	result, err := newTestClient(srv.URL, 3).Classify(context.Background(), "https://cdn.example/waste.jpg")
	require.NoError(t, err)
	require.Equal(t, CategoryOrganic, result.Category)
	require.InDelta(t, 0.92, result.Confidence, 1e-9)
}

func TestClassify_RetriesOnServerError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"category":"plastic","confidence":0.8}`))
	}))
	defer srv.Close()

	result, err := newTestClient(srv.URL, 3).Classify(context.Background(), "img")
	require.NoError(t, err)
	require.Equal(t, CategoryPlastic, result.Category)
	require.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClassify_ExhaustedRetriesSurfaceTimeout(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, 3).Classify(context.Background(), "img")
	require.ErrorIs(t, err, apperr.ErrCollaboratorTimeout)
	// attempt budget is respected, nothing retried indefinitely
	require.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClassify_ClientErrorIsPermanent(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, 3).Classify(context.Background(), "img")
	require.Error(t, err)
	require.NotErrorIs(t, err, apperr.ErrCollaboratorTimeout)
	require.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestCompareCleanup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/compare", r.URL.Path)
		w.Write([]byte(`{"cleanScore":0.85}`))
	}))
	defer srv.Close()

	result, err := newTestClient(srv.URL, 1).CompareCleanup(context.Background(), "before", "after")
	require.NoError(t, err)
	require.InDelta(t, 0.85, result.CleanScore, 1e-9)
}

func TestKnownCategory(t *testing.T) {
	require.True(t, KnownCategory(CategoryMixed))
	require.True(t, KnownCategory(CategoryEWaste))
	require.False(t, KnownCategory("furniture"))
	require.False(t, KnownCategory(""))
}
