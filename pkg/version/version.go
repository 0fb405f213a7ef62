package version

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/pterm/pterm"
)

// Preenchidos via -ldflags "-X .../pkg/version.Version=1.2.3" ou pelo build info.
var (
	Version   = "0.0.0-dev"
	Commit    = ""
	BuildTime = ""

	// ReleaseURL aponta para o endpoint "latest release" da API do GitHub.
	// Vazio desliga a verificação de atualização.
	ReleaseURL = ""
)

func init() {
	populateFromBuildInfo()
}

// populateFromBuildInfo usa as informações VCS embutidas pelo go build quando
// nenhuma versão foi definida por ldflags.
func populateFromBuildInfo() {
	if Version != "" && Version != "0.0.0-dev" {
		return
	}
	bi, ok := debug.ReadBuildInfo()
	if !ok || bi == nil {
		return
	}

	settings := make(map[string]string, len(bi.Settings))
	for _, s := range bi.Settings {
		settings[s.Key] = s.Value
	}

	if rev := settings["vcs.revision"]; Commit == "" && len(rev) >= 7 {
		Commit = rev[:7]
	}
	if t := settings["vcs.time"]; BuildTime == "" && t != "" {
		if ts, err := time.Parse(time.RFC3339, t); err == nil {
			BuildTime = ts.UTC().Format("2006-01-02T15:04:05Z")
		}
	}
	if tag := settings["vcs.tag"]; tag != "" {
		Version = strings.TrimPrefix(tag, "v")
		if strings.EqualFold(settings["vcs.modified"], "true") {
			Version += "-dirty"
		}
	}
}

// ReleaseChecker consulta a última release publicada.
type ReleaseChecker struct {
	URL    string
	Client *http.Client
}

// NewReleaseChecker creates a checker for url with a short timeout.
func NewReleaseChecker(url string) *ReleaseChecker {
	return &ReleaseChecker{URL: url, Client: &http.Client{Timeout: 3 * time.Second}}
}

// Latest returns the tag of the latest release, without the "v" prefix.
func (c *ReleaseChecker) Latest(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("release lookup returned %s", resp.Status)
	}

	var release struct {
		TagName string `json:"tag_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return "", fmt.Errorf("decode release: %w", err)
	}
	return strings.TrimPrefix(release.TagName, "v"), nil
}

// IsNewer reports whether latest is a higher semantic version than current.
// Unparseable versions never count as newer.
func IsNewer(latest, current string) bool {
	l, err := semver.NewVersion(latest)
	if err != nil {
		return false
	}
	c, err := semver.NewVersion(current)
	if err != nil {
		return false
	}
	return l.GreaterThan(c)
}

// CheckLatestVersion avisa quando existe uma release mais nova que currentVersion.
// Dev builds and an empty ReleaseURL skip the lookup.
func CheckLatestVersion(currentVersion string) {
	if ReleaseURL == "" || strings.HasSuffix(currentVersion, "-dev") {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	latest, err := NewReleaseChecker(ReleaseURL).Latest(ctx)
	if err != nil || !IsNewer(latest, currentVersion) {
		return
	}
	pterm.Warning.Printfln("A new version of PEP Fetcher is available: %s", latest)
	pterm.Info.Println("Please update using: go install github.com/diillson/pep-fetcher-go/cmd/pep-fetcher@latest")
}

// FormatVersion devolve a versão com commit e data de build, quando conhecidos.
func FormatVersion() string {
	ver := Version
	if ver == "" {
		ver = "0.0.0-dev"
	}
	switch {
	case Commit == "" && BuildTime == "":
		return ver + " (development)"
	case BuildTime != "":
		commit := Commit
		if commit == "" {
			commit = "development"
		}
		return fmt.Sprintf("%s (commit: %s, built at: %s)", ver, commit, BuildTime)
	default:
		return fmt.Sprintf("%s (commit: %s)", ver, Commit)
	}
}
