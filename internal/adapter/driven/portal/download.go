package portal

import (
	"compress/gzip"
	"compress/zlib"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/diillson/pep-fetcher-go/internal/domain/entity"
	"github.com/diillson/pep-fetcher-go/internal/shared/types"
)

var errUnsupportedEncoding = errors.New("unsupported content encoding")

type verdict int

const (
	verdictSuccess verdict = iota
	verdictForbidden
	verdictPermanent
	verdictTransient
)

// attemptResult is the outcome of a single GET.
type attemptResult struct {
	verdict verdict
	status  int
	bytes   int64
	reason  string
	err     error
}

// Download executa até MaxAttempts tentativas de GET.
//
// 403 is retried after a fixed ForbiddenBackoff; transport errors, timeouts and
// broken streams are retried immediately. 404, other HTTP errors and a
// non-archive content type end the loop at once.
func (r *PortalRepositoryImpl) Download(ctx context.Context, id entity.ArchiveIdentifier, dest string) entity.DownloadOutcome {
	url := id.URL(r.settings.BaseURL)
	maxAttempts := r.settings.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	outcome := entity.DownloadOutcome{URL: url, Path: dest}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		outcome.Attempts = attempt
		r.console.LogInfo("Attempt %d/%d: GET %s", attempt, maxAttempts, url)

		res := r.attempt(ctx, url, dest)
		outcome.StatusCode = res.status

		switch res.verdict {
		case verdictSuccess:
			outcome.Kind = entity.OutcomeSuccess
			outcome.Bytes = res.bytes
			r.console.LogSuccess("Download completed: %s (%.2f MB)", dest, float64(res.bytes)/(1024*1024))
			return outcome

		case verdictForbidden:
			r.console.LogWarning("Access temporarily blocked (403)")
			if attempt < maxAttempts {
				r.console.LogInfo("Waiting %s before retrying...", r.settings.ForbiddenBackoff)
				if err := r.sleep(ctx, r.settings.ForbiddenBackoff); err != nil {
					return transientOutcome(outcome, err.Error(), err)
				}
				continue
			}
			return permanentOutcome(outcome, "blocked", types.ErrBlocked)

		case verdictPermanent:
			r.console.LogError("Download failed: %s", res.reason)
			return permanentOutcome(outcome, res.reason, res.err)

		case verdictTransient:
			r.console.LogWarning("Attempt %d failed: %s", attempt, res.reason)
			if ctx.Err() != nil {
				return transientOutcome(outcome, ctx.Err().Error(), ctx.Err())
			}
		}
	}

	return transientOutcome(outcome, "exhausted retries", types.ErrExhaustedRetries)
}

func permanentOutcome(o entity.DownloadOutcome, reason string, err error) entity.DownloadOutcome {
	o.Kind = entity.OutcomePermanentFailure
	o.Reason = reason
	o.Err = err
	return o
}

func transientOutcome(o entity.DownloadOutcome, reason string, err error) entity.DownloadOutcome {
	o.Kind = entity.OutcomeTransientFailure
	o.Reason = reason
	o.Err = err
	return o
}

// attempt performs one GET. The request is cancelled if no progress is made for
// DownloadTimeout, whether waiting for headers or between body reads.
func (r *PortalRepositoryImpl) attempt(ctx context.Context, url, dest string) attemptResult {
	reqCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	timeout := r.settings.DownloadTimeout
	watchdog := time.AfterFunc(timeout, cancel)
	defer watchdog.Stop()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return attemptResult{verdict: verdictPermanent, reason: "build request: " + err.Error(), err: err}
	}
	req.Header = r.settings.Header()

	resp, err := r.client.Do(req)
	if err != nil {
		return attemptResult{verdict: verdictTransient, reason: describeTransportError(ctx, reqCtx, err), err: err}
	}
	defer resp.Body.Close()

	status := resp.StatusCode
	switch {
	case status == http.StatusForbidden:
		return attemptResult{verdict: verdictForbidden, status: status}
	case status == http.StatusNotFound:
		return attemptResult{verdict: verdictPermanent, status: status, reason: "not found",
			err: fmt.Errorf("%w: %s", types.ErrNotFound, url)}
	case status >= http.StatusBadRequest:
		return attemptResult{verdict: verdictPermanent, status: status, reason: fmt.Sprintf("http error %d", status),
			err: fmt.Errorf("%w: %s", types.ErrHTTPStatus, resp.Status)}
	}

	contentType := resp.Header.Get("Content-Type")
	if !isArchiveContentType(contentType) {
		reason := fmt.Sprintf("unexpected content type %q", contentType)
		if title := blockPageTitle(resp); title != "" {
			reason += fmt.Sprintf(" (page title: %q)", title)
		}
		return attemptResult{verdict: verdictPermanent, status: status, reason: reason,
			err: fmt.Errorf("%w: %s", types.ErrUnexpectedContentType, contentType)}
	}

	body, total, err := decodedBody(resp)
	if errors.Is(err, errUnsupportedEncoding) {
		return attemptResult{verdict: verdictPermanent, status: status, reason: err.Error(), err: err}
	}
	if err != nil {
		return attemptResult{verdict: verdictTransient, status: status, reason: "decode body: " + err.Error(), err: err}
	}

	if total > 0 {
		r.console.LogInfo("File size: %.2f MB", float64(total)/(1024*1024))
	}

	n, err := r.stream(body, total, dest, func() { watchdog.Reset(timeout) })
	if err != nil {
		return attemptResult{verdict: verdictTransient, status: status, bytes: n,
			reason: describeTransportError(ctx, reqCtx, err), err: err}
	}

	return attemptResult{verdict: verdictSuccess, status: status, bytes: n}
}

// stream copies body into dest in ChunkSize chunks through a ".part" file.
// The destination is only replaced once every byte is on disk.
func (r *PortalRepositoryImpl) stream(body io.Reader, total int64, dest string, onProgress func()) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return 0, fmt.Errorf("create download dir: %w", err)
	}

	tmpPath := dest + ".part"
	file, err := os.Create(tmpPath)
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}

	cleanupNeeded := true
	defer func() {
		file.Close()
		if cleanupNeeded {
			os.Remove(tmpPath)
		}
	}()

	progress := r.console.Transfer("Downloading "+filepath.Base(dest), total)
	defer progress.Stop()

	chunkSize := r.settings.ChunkSize
	if chunkSize <= 0 {
		chunkSize = types.DefaultChunkSize
	}
	buf := make([]byte, chunkSize)

	var written int64
	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			onProgress()
			if _, err := file.Write(buf[:n]); err != nil {
				return written, fmt.Errorf("write %s: %w", tmpPath, err)
			}
			written += int64(n)
			progress.Add(int64(n))
		}
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return written, fmt.Errorf("read body: %w", readErr)
		}
	}

	if err := file.Close(); err != nil {
		return written, fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return written, fmt.Errorf("rename temp file: %w", err)
	}

	cleanupNeeded = false
	return written, nil
}

// decodedBody undoes Content-Encoding. The browser header set sends its own
// Accept-Encoding, which turns off the transport's transparent gunzip. The
// declared length only describes decoded bytes when no encoding is applied.
func decodedBody(resp *http.Response) (io.Reader, int64, error) {
	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "", "identity":
		return resp.Body, resp.ContentLength, nil
	case "gzip", "x-gzip":
		zr, err := gzip.NewReader(resp.Body)
		return zr, -1, err
	case "deflate":
		zr, err := zlib.NewReader(resp.Body)
		return zr, -1, err
	default:
		return nil, -1, fmt.Errorf("%w %q", errUnsupportedEncoding, resp.Header.Get("Content-Encoding"))
	}
}

func describeTransportError(parent, reqCtx context.Context, err error) string {
	if parent.Err() == nil && reqCtx.Err() != nil {
		return "timeout: no data received in time"
	}
	var timeoutErr interface{ Timeout() bool }
	if errors.As(err, &timeoutErr) && timeoutErr.Timeout() {
		return "timeout: " + err.Error()
	}
	return err.Error()
}
