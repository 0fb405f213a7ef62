package portal

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diillson/pep-fetcher-go/internal/domain/entity"
	"github.com/diillson/pep-fetcher-go/internal/shared/types"
	"github.com/diillson/pep-fetcher-go/pkg/console"
)

const testID = entity.ArchiveIdentifier("202509_PEP.zip")

// scriptedClient answers each Do call with the next step of a script.
type scriptedClient struct {
	mu       sync.Mutex
	steps    []func(*http.Request) (*http.Response, error)
	requests []*http.Request
}

func (c *scriptedClient) Do(req *http.Request) (*http.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = append(c.requests, req)
	if len(c.steps) == 0 {
		return nil, errors.New("unexpected request")
	}
	step := c.steps[0]
	c.steps = c.steps[1:]
	return step(req)
}

func respond(status int, contentType string, body []byte) func(*http.Request) (*http.Response, error) {
	return func(req *http.Request) (*http.Response, error) {
		header := make(http.Header)
		if contentType != "" {
			header.Set("Content-Type", contentType)
		}
		return &http.Response{
			StatusCode:    status,
			Status:        http.StatusText(status),
			Header:        header,
			Body:          io.NopCloser(bytes.NewReader(body)),
			ContentLength: int64(len(body)),
			Request:       req,
		}, nil
	}
}

func fail(err error) func(*http.Request) (*http.Response, error) {
	return func(*http.Request) (*http.Response, error) { return nil, err }
}

// newScriptedRepo returns a repository whose sleeps are recorded instead of
// waited for.
func newScriptedRepo(client HTTPDoer) (*PortalRepositoryImpl, *[]time.Duration) {
	repo := NewPortalRepositoryWithClient(testSettings("https://portal.test/pep"), console.NewDiscard(), client)
	var sleeps []time.Duration
	repo.sleep = func(_ context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return nil
	}
	return repo, &sleeps
}

func assertNoPartFile(t *testing.T, dest string) {
	t.Helper()
	_, err := os.Stat(dest + ".part")
	assert.True(t, os.IsNotExist(err), "temporary file left behind")
}

func TestDownload_SuccessFirstAttempt(t *testing.T) {
	payload := bytes.Repeat([]byte("pep"), 10000)
	client := &scriptedClient{steps: []func(*http.Request) (*http.Response, error){
		respond(http.StatusOK, "application/zip", payload),
	}}
	repo, sleeps := newScriptedRepo(client)
	dest := filepath.Join(t.TempDir(), "nested", testID.FileName())

	outcome := repo.Download(context.Background(), testID, dest)

	require.True(t, outcome.OK(), outcome.Reason)
	assert.Equal(t, 1, outcome.Attempts)
	assert.Equal(t, int64(len(payload)), outcome.Bytes)
	assert.Equal(t, "https://portal.test/pep/202509_PEP.zip", outcome.URL)
	assert.Empty(t, *sleeps)

	written, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, payload, written)
	assertNoPartFile(t, dest)

	require.Len(t, client.requests, 1)
	assert.Equal(t, http.MethodGet, client.requests[0].Method)
	assert.Contains(t, client.requests[0].Header.Get("User-Agent"), "Mozilla/5.0")
}

func TestDownload_ForbiddenThenSuccess(t *testing.T) {
	client := &scriptedClient{steps: []func(*http.Request) (*http.Response, error){
		respond(http.StatusForbidden, "text/html", nil),
		respond(http.StatusForbidden, "text/html", nil),
		respond(http.StatusOK, "application/zip", []byte("zip-bytes")),
	}}
	repo, sleeps := newScriptedRepo(client)
	dest := filepath.Join(t.TempDir(), testID.FileName())

	outcome := repo.Download(context.Background(), testID, dest)

	require.True(t, outcome.OK(), outcome.Reason)
	assert.Equal(t, 3, outcome.Attempts)
	// One backoff after each 403, none before the first attempt.
	assert.Equal(t, []time.Duration{2 * time.Second, 2 * time.Second}, *sleeps)
}

func TestDownload_ForbiddenEveryAttempt(t *testing.T) {
	client := &scriptedClient{steps: []func(*http.Request) (*http.Response, error){
		respond(http.StatusForbidden, "", nil),
		respond(http.StatusForbidden, "", nil),
		respond(http.StatusForbidden, "", nil),
	}}
	repo, sleeps := newScriptedRepo(client)
	dest := filepath.Join(t.TempDir(), testID.FileName())

	outcome := repo.Download(context.Background(), testID, dest)

	assert.Equal(t, entity.OutcomePermanentFailure, outcome.Kind)
	assert.Equal(t, "blocked", outcome.Reason)
	assert.ErrorIs(t, outcome.Err, types.ErrBlocked)
	assert.Equal(t, 3, outcome.Attempts)
	assert.Len(t, *sleeps, 2)
	assert.NoFileExists(t, dest)
}

func TestDownload_NotFoundIsPermanent(t *testing.T) {
	client := &scriptedClient{steps: []func(*http.Request) (*http.Response, error){
		respond(http.StatusNotFound, "text/html", nil),
	}}
	repo, sleeps := newScriptedRepo(client)
	dest := filepath.Join(t.TempDir(), testID.FileName())

	outcome := repo.Download(context.Background(), testID, dest)

	assert.Equal(t, entity.OutcomePermanentFailure, outcome.Kind)
	assert.Equal(t, "not found", outcome.Reason)
	assert.ErrorIs(t, outcome.Err, types.ErrNotFound)
	assert.Equal(t, 1, outcome.Attempts)
	assert.Equal(t, http.StatusNotFound, outcome.StatusCode)
	assert.Empty(t, *sleeps)
	assert.Len(t, client.requests, 1)
	assert.NoFileExists(t, dest)
	assertNoPartFile(t, dest)
}

func TestDownload_ServerErrorIsPermanent(t *testing.T) {
	client := &scriptedClient{steps: []func(*http.Request) (*http.Response, error){
		respond(http.StatusServiceUnavailable, "text/plain", []byte("down")),
	}}
	repo, _ := newScriptedRepo(client)

	outcome := repo.Download(context.Background(), testID, filepath.Join(t.TempDir(), testID.FileName()))

	assert.Equal(t, entity.OutcomePermanentFailure, outcome.Kind)
	assert.Equal(t, "http error 503", outcome.Reason)
	assert.ErrorIs(t, outcome.Err, types.ErrHTTPStatus)
	assert.Equal(t, 1, outcome.Attempts)
}

// Transport failures are retried back to back: only 403 waits.
func TestDownload_TransientFailuresExhaustRetriesWithoutBackoff(t *testing.T) {
	client := &scriptedClient{steps: []func(*http.Request) (*http.Response, error){
		fail(errors.New("connection reset by peer")),
		fail(errors.New("connection reset by peer")),
		fail(errors.New("connection reset by peer")),
	}}
	repo, sleeps := newScriptedRepo(client)
	dest := filepath.Join(t.TempDir(), testID.FileName())

	outcome := repo.Download(context.Background(), testID, dest)

	assert.Equal(t, entity.OutcomeTransientFailure, outcome.Kind)
	assert.Equal(t, "exhausted retries", outcome.Reason)
	assert.ErrorIs(t, outcome.Err, types.ErrExhaustedRetries)
	assert.Equal(t, 3, outcome.Attempts)
	assert.Len(t, client.requests, 3)
	assert.Empty(t, *sleeps)
	assert.NoFileExists(t, dest)
}

func TestDownload_TransientThenSuccess(t *testing.T) {
	client := &scriptedClient{steps: []func(*http.Request) (*http.Response, error){
		fail(errors.New("connection refused")),
		respond(http.StatusOK, "application/octet-stream", []byte("zip-bytes")),
	}}
	repo, sleeps := newScriptedRepo(client)

	outcome := repo.Download(context.Background(), testID, filepath.Join(t.TempDir(), testID.FileName()))

	require.True(t, outcome.OK(), outcome.Reason)
	assert.Equal(t, 2, outcome.Attempts)
	assert.Empty(t, *sleeps)
}

func TestDownload_BlockPageIsPermanentAndNamed(t *testing.T) {
	page := []byte(`<html><head><title>  Request
		Rejected </title></head><body>The requested URL was rejected.</body></html>`)
	client := &scriptedClient{steps: []func(*http.Request) (*http.Response, error){
		respond(http.StatusOK, "text/html; charset=utf-8", page),
	}}
	repo, _ := newScriptedRepo(client)
	dest := filepath.Join(t.TempDir(), testID.FileName())

	outcome := repo.Download(context.Background(), testID, dest)

	assert.Equal(t, entity.OutcomePermanentFailure, outcome.Kind)
	assert.ErrorIs(t, outcome.Err, types.ErrUnexpectedContentType)
	assert.Contains(t, outcome.Reason, "text/html")
	assert.Contains(t, outcome.Reason, "Request Rejected")
	assert.Equal(t, 1, outcome.Attempts)
	assert.NoFileExists(t, dest)
}

func TestDownload_GzipEncodedBody(t *testing.T) {
	payload := []byte(strings.Repeat("PK archive bytes ", 2000))
	var compressed bytes.Buffer
	zw := gzip.NewWriter(&compressed)
	_, err := zw.Write(payload)
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	client := &scriptedClient{steps: []func(*http.Request) (*http.Response, error){
		func(req *http.Request) (*http.Response, error) {
			resp, _ := respond(http.StatusOK, "application/zip", compressed.Bytes())(req)
			resp.Header.Set("Content-Encoding", "gzip")
			return resp, nil
		},
	}}
	repo, _ := newScriptedRepo(client)
	dest := filepath.Join(t.TempDir(), testID.FileName())

	outcome := repo.Download(context.Background(), testID, dest)

	require.True(t, outcome.OK(), outcome.Reason)
	written, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, payload, written)
}

func TestDownload_UnsupportedEncodingIsPermanent(t *testing.T) {
	client := &scriptedClient{steps: []func(*http.Request) (*http.Response, error){
		func(req *http.Request) (*http.Response, error) {
			resp, _ := respond(http.StatusOK, "application/zip", []byte("x"))(req)
			resp.Header.Set("Content-Encoding", "br")
			return resp, nil
		},
	}}
	repo, _ := newScriptedRepo(client)

	outcome := repo.Download(context.Background(), testID, filepath.Join(t.TempDir(), testID.FileName()))

	assert.Equal(t, entity.OutcomePermanentFailure, outcome.Kind)
	assert.Equal(t, 1, outcome.Attempts)
}

// brokenReader delivers some bytes and then fails, like a dropped connection.
type brokenReader struct {
	sent bool
}

func (b *brokenReader) Read(p []byte) (int, error) {
	if !b.sent {
		b.sent = true
		return copy(p, "partial"), nil
	}
	return 0, io.ErrUnexpectedEOF
}

func TestDownload_BrokenStreamLeavesNoPartialFile(t *testing.T) {
	broken := func(req *http.Request) (*http.Response, error) {
		header := make(http.Header)
		header.Set("Content-Type", "application/zip")
		return &http.Response{
			StatusCode:    http.StatusOK,
			Header:        header,
			Body:          io.NopCloser(&brokenReader{}),
			ContentLength: 1 << 20,
			Request:       req,
		}, nil
	}
	client := &scriptedClient{steps: []func(*http.Request) (*http.Response, error){broken, broken, broken}}
	repo, sleeps := newScriptedRepo(client)
	dest := filepath.Join(t.TempDir(), testID.FileName())

	outcome := repo.Download(context.Background(), testID, dest)

	assert.Equal(t, entity.OutcomeTransientFailure, outcome.Kind)
	assert.Equal(t, 3, outcome.Attempts)
	assert.Empty(t, *sleeps)
	assert.NoFileExists(t, dest)
	assertNoPartFile(t, dest)
}

func TestDownload_IdleTimeoutIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/zip")
		w.Header().Set("Content-Length", "4096")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("PK"))
		w.(http.Flusher).Flush()
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer server.Close()

	settings := testSettings(server.URL)
	settings.DownloadTimeout = 100 * time.Millisecond
	repo := NewPortalRepositoryWithClient(settings, console.NewDiscard(), server.Client())
	dest := filepath.Join(t.TempDir(), testID.FileName())

	outcome := repo.Download(context.Background(), testID, dest)

	assert.Equal(t, entity.OutcomeTransientFailure, outcome.Kind)
	assert.Equal(t, 3, outcome.Attempts)
	assert.NoFileExists(t, dest)
	assertNoPartFile(t, dest)
}

func TestDownload_CancelledContextStopsRetrying(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	client := &scriptedClient{steps: []func(*http.Request) (*http.Response, error){
		func(*http.Request) (*http.Response, error) {
			cancel()
			return nil, context.Canceled
		},
	}}
	repo, _ := newScriptedRepo(client)

	outcome := repo.Download(ctx, testID, filepath.Join(t.TempDir(), testID.FileName()))

	assert.Equal(t, entity.OutcomeTransientFailure, outcome.Kind)
	assert.Equal(t, 1, outcome.Attempts)
	assert.ErrorIs(t, outcome.Err, context.Canceled)
}
