package version

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsNewer(t *testing.T) {
	tests := []struct {
		latest, current string
		want            bool
	}{
		{"1.10.0", "1.9.0", true},
		{"1.9.0", "1.10.0", false},
		{"2.0.0", "1.99.3", true},
		{"1.2.3", "1.2.3", false},
		{"1.2.4", "1.2.3-dirty", true},
		{"1.2.3", "1.2.3-rc.1", true},
		{"not-a-version", "1.0.0", false},
		{"1.0.0", "", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsNewer(tt.latest, tt.current), "%s vs %s", tt.latest, tt.current)
	}
}

func TestReleaseChecker_Latest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"tag_name": "v1.10.0", "name": "pep-fetcher 1.10.0"}`))
	}))
	defer server.Close()

	latest, err := NewReleaseChecker(server.URL).Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1.10.0", latest)
	assert.True(t, IsNewer(latest, "1.9.2"))
}

func TestReleaseChecker_LatestFailsOnStatus(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	_, err := NewReleaseChecker(server.URL).Latest(context.Background())
	assert.ErrorContains(t, err, "404")
}

func TestFormatVersion(t *testing.T) {
	origVersion, origCommit, origBuild := Version, Commit, BuildTime
	defer func() { Version, Commit, BuildTime = origVersion, origCommit, origBuild }()

	Version, Commit, BuildTime = "1.2.3", "", ""
	assert.Equal(t, "1.2.3 (development)", FormatVersion())

	Commit = "abc1234"
	assert.Equal(t, "1.2.3 (commit: abc1234)", FormatVersion())

	BuildTime = "2025-10-01T12:00:00Z"
	assert.Equal(t, "1.2.3 (commit: abc1234, built at: 2025-10-01T12:00:00Z)", FormatVersion())
}
