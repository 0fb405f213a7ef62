package types

import (
	"net/http"
	"time"
)

const (
	DefaultBaseURL           = "https://dadosabertos-download.cgu.gov.br/PortalDaTransparencia/saida/pep"
	DefaultFileSuffix        = "PEP"
	DefaultFileExtension     = ".zip"
	DefaultDownloadDir       = "downloads"
	DefaultProbeTimeout      = 10 * time.Second
	DefaultDownloadTimeout   = 30 * time.Second
	DefaultMaxAttempts       = 3
	DefaultForbiddenBackoff  = 2 * time.Second
	DefaultMaxLookback       = 6
	DefaultFallbackMonthsAgo = 2
	DefaultChunkSize         = 8 * 1024
	DefaultProbeRate         = 2.0
)

// Config represents the application configuration that can be loaded from a file.
type Config struct {
	BaseURL                string            `json:"base_url" yaml:"base_url" toml:"base_url"`
	FileSuffix             string            `json:"file_suffix" yaml:"file_suffix" toml:"file_suffix"`
	DownloadDir            string            `json:"download_dir" yaml:"download_dir" toml:"download_dir"`
	ProbeTimeoutSeconds    int               `json:"probe_timeout_seconds" yaml:"probe_timeout_seconds" toml:"probe_timeout_seconds"`
	DownloadTimeoutSeconds int               `json:"download_timeout_seconds" yaml:"download_timeout_seconds" toml:"download_timeout_seconds"`
	MaxAttempts            int               `json:"max_attempts" yaml:"max_attempts" toml:"max_attempts"`
	ForbiddenBackoffMillis int               `json:"forbidden_backoff_ms" yaml:"forbidden_backoff_ms" toml:"forbidden_backoff_ms"`
	MaxLookback            int               `json:"max_lookback" yaml:"max_lookback" toml:"max_lookback"`
	FallbackMonthsAgo      *int              `json:"fallback_months_ago" yaml:"fallback_months_ago" toml:"fallback_months_ago"`
	DisableFallback        bool              `json:"disable_fallback" yaml:"disable_fallback" toml:"disable_fallback"`
	ProbeRate              float64           `json:"probe_rate" yaml:"probe_rate" toml:"probe_rate"`
	Headers                map[string]string `json:"headers" yaml:"headers" toml:"headers"`
	Mirror                 MirrorConfig      `json:"mirror" yaml:"mirror" toml:"mirror"`
	ReportName             string            `json:"report_name" yaml:"report_name" toml:"report_name"`
	ReportType             []string          `json:"report_type" yaml:"report_type" toml:"report_type"`
	Dir                    string            `json:"dir" yaml:"dir" toml:"dir"`
}

// MirrorConfig configura a cópia opcional do arquivo para um bucket S3.
type MirrorConfig struct {
	Bucket   string `json:"bucket" yaml:"bucket" toml:"bucket"`
	Prefix   string `json:"prefix" yaml:"prefix" toml:"prefix"`
	Region   string `json:"region" yaml:"region" toml:"region"`
	Endpoint string `json:"endpoint" yaml:"endpoint" toml:"endpoint"`
	Profile  string `json:"profile" yaml:"profile" toml:"profile"`
}

// Enabled reports whether a bucket was configured.
func (m MirrorConfig) Enabled() bool {
	return m.Bucket != ""
}

// Settings is the immutable runtime configuration shared by the resolver and
// the fetcher. Values are copied in and out; the header set is never exposed
// by reference.
type Settings struct {
	BaseURL           string
	FileSuffix        string
	FileExtension     string
	DownloadDir       string
	ProbeTimeout      time.Duration
	DownloadTimeout   time.Duration
	MaxAttempts       int
	ForbiddenBackoff  time.Duration
	MaxLookback       int
	FallbackMonthsAgo int
	DisableFallback   bool
	ChunkSize         int
	ProbeRate         float64
	Mirror            MirrorConfig

	headers map[string]string
}

// DefaultSettings returns the portal defaults, including a browser-like header set.
func DefaultSettings() Settings {
	return Settings{
		BaseURL:           DefaultBaseURL,
		FileSuffix:        DefaultFileSuffix,
		FileExtension:     DefaultFileExtension,
		DownloadDir:       DefaultDownloadDir,
		ProbeTimeout:      DefaultProbeTimeout,
		DownloadTimeout:   DefaultDownloadTimeout,
		MaxAttempts:       DefaultMaxAttempts,
		ForbiddenBackoff:  DefaultForbiddenBackoff,
		MaxLookback:       DefaultMaxLookback,
		FallbackMonthsAgo: DefaultFallbackMonthsAgo,
		ChunkSize:         DefaultChunkSize,
		ProbeRate:         DefaultProbeRate,
		headers:           BrowserHeaders(),
	}
}

// BrowserHeaders devolve o conjunto de cabeçalhos que imita um navegador comum.
// O portal rejeita requisições sem essa assinatura.
func BrowserHeaders() map[string]string {
	return map[string]string{
		"User-Agent":                "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/128.0.0.0 Safari/537.36",
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3;q=0.7",
		"Accept-Language":           "pt-BR,pt;q=0.9,en-US;q=0.8,en;q=0.7",
		"Accept-Encoding":           "gzip, deflate",
		"Connection":                "keep-alive",
		"Upgrade-Insecure-Requests": "1",
		"Sec-Fetch-Dest":            "document",
		"Sec-Fetch-Mode":            "navigate",
		"Sec-Fetch-Site":            "none",
		"Sec-Fetch-User":            "?1",
		"Sec-Ch-Ua":                 `"Chromium";v="128", "Not;A=Brand";v="24", "Google Chrome";v="128"`,
		"Sec-Ch-Ua-Mobile":          "?0",
		"Sec-Ch-Ua-Platform":        `"Windows"`,
	}
}

// Header returns a fresh copy of the request metadata.
func (s Settings) Header() http.Header {
	h := make(http.Header, len(s.headers))
	for k, v := range s.headers {
		h.Set(k, v)
	}
	return h
}

// WithHeaders returns a copy of s whose header set is the current one with
// overrides applied. An empty value removes the header.
func (s Settings) WithHeaders(overrides map[string]string) Settings {
	merged := make(map[string]string, len(s.headers)+len(overrides))
	for k, v := range s.headers {
		merged[http.CanonicalHeaderKey(k)] = v
	}
	for k, v := range overrides {
		key := http.CanonicalHeaderKey(k)
		if v == "" {
			delete(merged, key)
			continue
		}
		merged[key] = v
	}
	s.headers = merged
	return s
}

// Apply merges the non-zero values of a file configuration into s.
func (c Config) Apply(s Settings) Settings {
	if c.BaseURL != "" {
		s.BaseURL = c.BaseURL
	}
	if c.FileSuffix != "" {
		s.FileSuffix = c.FileSuffix
	}
	if c.DownloadDir != "" {
		s.DownloadDir = c.DownloadDir
	}
	if c.ProbeTimeoutSeconds > 0 {
		s.ProbeTimeout = time.Duration(c.ProbeTimeoutSeconds) * time.Second
	}
	if c.DownloadTimeoutSeconds > 0 {
		s.DownloadTimeout = time.Duration(c.DownloadTimeoutSeconds) * time.Second
	}
	if c.MaxAttempts > 0 {
		s.MaxAttempts = c.MaxAttempts
	}
	if c.ForbiddenBackoffMillis > 0 {
		s.ForbiddenBackoff = time.Duration(c.ForbiddenBackoffMillis) * time.Millisecond
	}
	if c.MaxLookback > 0 {
		s.MaxLookback = c.MaxLookback
	}
	if c.FallbackMonthsAgo != nil && *c.FallbackMonthsAgo >= 0 {
		s.FallbackMonthsAgo = *c.FallbackMonthsAgo
	}
	if c.DisableFallback {
		s.DisableFallback = true
	}
	if c.ProbeRate > 0 {
		s.ProbeRate = c.ProbeRate
	}
	if c.Mirror.Enabled() {
		s.Mirror = c.Mirror
	}
	if len(c.Headers) > 0 {
		s = s.WithHeaders(c.Headers)
	}
	return s
}
