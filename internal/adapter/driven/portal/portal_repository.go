package portal

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/diillson/pep-fetcher-go/internal/domain/entity"
	"github.com/diillson/pep-fetcher-go/internal/domain/repository"
	"github.com/diillson/pep-fetcher-go/internal/shared/types"
)

// HTTPDoer is the slice of *http.Client the repository needs. Tests inject
// fakes to drive the retry state machine without a network.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// PortalRepositoryImpl implementa o PortalRepository sobre HTTP.
type PortalRepositoryImpl struct {
	client   HTTPDoer
	settings types.Settings
	console  types.ConsoleInterface
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewPortalRepository cria o repositório com um http.Client próprio.
func NewPortalRepository(settings types.Settings, console types.ConsoleInterface) repository.PortalRepository {
	return NewPortalRepositoryWithClient(settings, console, newHTTPClient(settings))
}

// NewPortalRepositoryWithClient cria o repositório com um cliente injetado.
func NewPortalRepositoryWithClient(settings types.Settings, console types.ConsoleInterface, client HTTPDoer) *PortalRepositoryImpl {
	return &PortalRepositoryImpl{
		client:   client,
		settings: settings,
		console:  console,
		sleep:    sleepContext,
	}
}

// newHTTPClient has no overall Timeout: downloads are bounded per read by the
// idle watchdog in attempt, probes by a context deadline.
func newHTTPClient(settings types.Settings) *http.Client {
	dialer := &net.Dialer{Timeout: settings.DownloadTimeout, KeepAlive: 30 * time.Second}
	return &http.Client{
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           dialer.DialContext,
			TLSHandshakeTimeout:   settings.DownloadTimeout,
			ResponseHeaderTimeout: settings.DownloadTimeout,
			MaxIdleConns:          4,
			IdleConnTimeout:       90 * time.Second,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
}

// Probe faz um HEAD na URL do arquivo. Any failure means "not present".
func (r *PortalRepositoryImpl) Probe(ctx context.Context, id entity.ArchiveIdentifier) bool {
	ctx, cancel := context.WithTimeout(ctx, r.settings.ProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, id.URL(r.settings.BaseURL), nil)
	if err != nil {
		return false
	}
	req.Header = r.settings.Header()

	resp, err := r.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false
	}
	if !isArchiveContentType(resp.Header.Get("Content-Type")) {
		return false
	}
	return declaredLength(resp) > 0
}

func isArchiveContentType(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "zip") || strings.Contains(ct, "octet-stream")
}

func declaredLength(resp *http.Response) int64 {
	if v := resp.Header.Get("Content-Length"); v != "" {
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			return n
		}
	}
	return resp.ContentLength
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
