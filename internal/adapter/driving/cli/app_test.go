package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diillson/pep-fetcher-go/internal/adapter/driven/config"
	"github.com/diillson/pep-fetcher-go/internal/application/usecase"
	"github.com/diillson/pep-fetcher-go/internal/shared/types"
)

func noEnv(string) string { return "" }

func TestBuildSettings_Defaults(t *testing.T) {
	settings, err := BuildSettings(&types.CLIArgs{}, config.NewConfigRepository(), noEnv)
	require.NoError(t, err)

	assert.Equal(t, types.DefaultBaseURL, settings.BaseURL)
	assert.Equal(t, types.DefaultDownloadDir, settings.DownloadDir)
	assert.Equal(t, types.DefaultMaxAttempts, settings.MaxAttempts)
	assert.Equal(t, types.DefaultMaxLookback, settings.MaxLookback)
	assert.False(t, settings.Mirror.Enabled())
}

func TestBuildSettings_Layering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pep.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
base_url: https://file.test/pep
download_dir: /from/file
max_lookback: 9
report_name: from-file
report_type: [pdf]
`), 0644))

	env := map[string]string{"PEP_DOWNLOAD_DIR": "/from/env"}
	args := &types.CLIArgs{ConfigFile: path, MaxLookback: 3}

	settings, err := BuildSettings(args, config.NewConfigRepository(), func(k string) string { return env[k] })
	require.NoError(t, err)

	// file < env < flags
	assert.Equal(t, "https://file.test/pep", settings.BaseURL)
	assert.Equal(t, "/from/env", settings.DownloadDir)
	assert.Equal(t, 3, settings.MaxLookback)

	assert.Equal(t, "from-file", args.ReportName)
	assert.Equal(t, []string{"pdf"}, args.ReportType)
}

func TestBuildSettings_FlagsKeepReportOptions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pep.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"report_name": "from-file", "report_type": ["pdf"]}`), 0644))

	args := &types.CLIArgs{ConfigFile: path, ReportName: "from-flag", ReportType: []string{"csv"}, BaseURL: "https://flag.test"}
	settings, err := BuildSettings(args, config.NewConfigRepository(), noEnv)
	require.NoError(t, err)

	assert.Equal(t, "https://flag.test", settings.BaseURL)
	assert.Equal(t, "from-flag", args.ReportName)
	assert.Equal(t, []string{"csv"}, args.ReportType)
}

func TestBuildSettings_BadConfigFile(t *testing.T) {
	_, err := BuildSettings(&types.CLIArgs{ConfigFile: "missing.toml"}, config.NewConfigRepository(), noEnv)
	assert.Error(t, err)
}

func TestParseArgs(t *testing.T) {
	app := NewCLIApp("1.0.0", config.NewConfigRepository())
	require.NoError(t, app.rootCmd.ParseFlags([]string{
		"--fixed-month", "-m", "2025-07", "-o", "/tmp/pep", "-l", "4", "-q", "-y", "csv,json", "-n", "run",
	}))

	args, err := app.parseArgs()
	require.NoError(t, err)

	assert.True(t, args.FixedMonth)
	assert.Equal(t, "2025-07", args.Period)
	assert.Equal(t, "/tmp/pep", args.DownloadDir)
	assert.Equal(t, 4, args.MaxLookback)
	assert.True(t, args.Quiet)
	assert.Equal(t, []string{"csv", "json"}, args.ReportType)
	assert.Equal(t, "run", args.ReportName)
}

func TestExecute_PropagatesFactoryError(t *testing.T) {
	app := NewCLIApp("1.0.0", config.NewConfigRepository())
	app.SetUseCaseFactory(func(context.Context, types.Settings, types.ConsoleInterface) (*usecase.DownloadUseCase, error) {
		return nil, errors.New("mirror misconfigured")
	})
	app.rootCmd.SetArgs([]string{"--quiet"})

	assert.ErrorContains(t, app.Execute(), "mirror misconfigured")
}
