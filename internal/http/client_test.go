package http

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/Datasets/ds/surface/air.1965.nc", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		w.Write([]byte("netcdf-1965"))
	})
	mux.HandleFunc("/gone", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGone)
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Download(t *testing.T) {
	srv := newTestServer(t)
	client := NewClient()

	var buf bytes.Buffer
	var lastWritten, lastTotal int64
	n, err := client.Download(context.Background(), srv.URL+"/Datasets/ds/surface/air.1965.nc", &buf, func(written, total int64) {
		lastWritten, lastTotal = written, total
	})

	require.NoError(t, err)
	assert.Equal(t, int64(len("netcdf-1965")), n)
	assert.Equal(t, "netcdf-1965", buf.String())
	assert.Equal(t, n, lastWritten)
	assert.Equal(t, n, lastTotal)
}

func TestClient_DownloadNotFound(t *testing.T) {
	srv := newTestServer(t)
	client := NewClient()

	for _, path := range []string{"/missing.nc", "/gone"} {
		_, err := client.Download(context.Background(), srv.URL+path, &bytes.Buffer{}, nil)
		require.Error(t, err)
		assert.True(t, IsNotFound(err), "expected not found for %s, got %v", path, err)
	}
}

func TestClient_DownloadServerError(t *testing.T) {
	srv := newTestServer(t)
	client := NewClient()

	_, err := client.Download(context.Background(), srv.URL+"/broken", &bytes.Buffer{}, nil)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.Code)
	assert.False(t, IsNotFound(err))
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("no space left on device")
}

func TestClient_DownloadWriteError(t *testing.T) {
	srv := newTestServer(t)
	client := NewClient()

	_, err := client.Download(context.Background(), srv.URL+"/Datasets/ds/surface/air.1965.nc", failingWriter{}, nil)

	var we *WriteError
	require.ErrorAs(t, err, &we)
	assert.Contains(t, we.Error(), "no space left")
}

func TestClient_GetFileSize(t *testing.T) {
	srv := newTestServer(t)
	client := NewClient()

	size, err := client.GetFileSize(context.Background(), srv.URL+"/Datasets/ds/surface/air.1965.nc")
	require.NoError(t, err)
	assert.Equal(t, int64(len("netcdf-1965")), size)
}

func TestClient_Cancelled(t *testing.T) {
	srv := newTestServer(t)
	client := NewClient()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Download(ctx, srv.URL+"/Datasets/ds/surface/air.1965.nc", &bytes.Buffer{}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
