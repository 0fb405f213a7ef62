package cli

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/diillson/pep-fetcher-go/internal/adapter/driven/config"
	"github.com/diillson/pep-fetcher-go/internal/application/usecase"
	"github.com/diillson/pep-fetcher-go/internal/domain/repository"
	"github.com/diillson/pep-fetcher-go/internal/shared/types"
	"github.com/diillson/pep-fetcher-go/pkg/console"
	"github.com/diillson/pep-fetcher-go/pkg/version"
)

// UseCaseFactory builds the download use case once settings are known.
type UseCaseFactory func(ctx context.Context, settings types.Settings, console types.ConsoleInterface) (*usecase.DownloadUseCase, error)

// CLIApp represents the command-line interface application.
type CLIApp struct {
	rootCmd    *cobra.Command
	configRepo repository.ConfigRepository
	factory    UseCaseFactory
	version    string
}

// NewCLIApp cria uma nova aplicação CLI.
func NewCLIApp(versionStr string, configRepo repository.ConfigRepository) *CLIApp {
	app := &CLIApp{
		version:    versionStr,
		configRepo: configRepo,
	}

	rootCmd := &cobra.Command{
		Use:           "pep-fetcher",
		Short:         "Downloads the monthly PEP dataset from Portal da Transparência",
		Version:       version.FormatVersion(),
		RunE:          app.runCommand,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{printf "PEP Fetcher version: %s\n" .Version}}`)

	rootCmd.PersistentFlags().StringP("config-file", "C", "", "Path to a TOML, YAML, or JSON configuration file")
	rootCmd.PersistentFlags().BoolP("fixed-month", "f", false, "Use the fixed month logic (2 months ago) and skip automatic detection")
	rootCmd.PersistentFlags().StringP("period", "m", "", "Download a specific month (YYYY-MM), skipping detection")
	rootCmd.PersistentFlags().String("base-url", "", "Base URL of the portal download directory")
	rootCmd.PersistentFlags().StringP("download-dir", "o", "", "Directory where the archive is saved and extracted (default: downloads)")
	rootCmd.PersistentFlags().IntP("lookback", "l", 0, "How many months to probe backwards from the current month (default: 6)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress console output")
	rootCmd.PersistentFlags().StringP("report-name", "n", "", "Specify the base name for the run report file (without extension)")
	rootCmd.PersistentFlags().StringSliceP("report-type", "y", nil, "Specify report types: csv, json, pdf (default: json)")
	rootCmd.PersistentFlags().StringP("dir", "d", "", "Directory to save the report files (default: current directory)")

	app.rootCmd = rootCmd
	return app
}

// Execute runs the CLI application.
func (app *CLIApp) Execute() error {
	return app.rootCmd.Execute()
}

// SetUseCaseFactory sets how the download use case is built.
func (app *CLIApp) SetUseCaseFactory(factory UseCaseFactory) {
	app.factory = factory
}

// parseArgs parses command-line arguments into a CLIArgs struct.
func (app *CLIApp) parseArgs() (*types.CLIArgs, error) {
	flags := app.rootCmd.Flags()
	configFile, _ := flags.GetString("config-file")
	fixedMonth, _ := flags.GetBool("fixed-month")
	period, _ := flags.GetString("period")
	baseURL, _ := flags.GetString("base-url")
	downloadDir, _ := flags.GetString("download-dir")
	lookback, _ := flags.GetInt("lookback")
	quiet, _ := flags.GetBool("quiet")
	reportName, _ := flags.GetString("report-name")
	reportType, _ := flags.GetStringSlice("report-type")
	dir, _ := flags.GetString("dir")

	if dir != "" {
		absDir, err := filepath.Abs(dir)
		if err != nil {
			return nil, err
		}
		dir = absDir
	}

	return &types.CLIArgs{
		ConfigFile:  configFile,
		FixedMonth:  fixedMonth,
		Period:      period,
		BaseURL:     baseURL,
		DownloadDir: downloadDir,
		MaxLookback: lookback,
		Quiet:       quiet,
		ReportName:  reportName,
		ReportType:  reportType,
		Dir:         dir,
	}, nil
}

// BuildSettings layers defaults, the config file, PEP_* variables and flags,
// in that order. Report options from the file fill in flags left unset.
func BuildSettings(args *types.CLIArgs, configRepo repository.ConfigRepository, getenv func(string) string) (types.Settings, error) {
	settings := types.DefaultSettings()

	if args.ConfigFile != "" {
		fileCfg, err := configRepo.LoadConfigFile(args.ConfigFile)
		if err != nil {
			return types.Settings{}, err
		}
		settings = fileCfg.Apply(settings)

		if args.ReportName == "" {
			args.ReportName = fileCfg.ReportName
		}
		if len(args.ReportType) == 0 {
			args.ReportType = fileCfg.ReportType
		}
		if args.Dir == "" {
			args.Dir = fileCfg.Dir
		}
	}

	settings = config.ApplyEnvironment(settings, getenv)

	if args.BaseURL != "" {
		settings.BaseURL = args.BaseURL
	}
	if args.DownloadDir != "" {
		settings.DownloadDir = args.DownloadDir
	}
	if args.MaxLookback > 0 {
		settings.MaxLookback = args.MaxLookback
	}

	return settings, nil
}

// runCommand é o ponto de entrada principal para o comando CLI.
func (app *CLIApp) runCommand(cmd *cobra.Command, args []string) error {
	cliArgs, err := app.parseArgs()
	if err != nil {
		return err
	}

	var out types.ConsoleInterface = console.NewConsole()
	if cliArgs.Quiet {
		out = console.NewDiscard()
	} else {
		displayWelcomeBanner()
		go version.CheckLatestVersion(app.version)
	}

	settings, err := BuildSettings(cliArgs, app.configRepo, os.Getenv)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	downloadUseCase, err := app.factory(ctx, settings, out)
	if err != nil {
		return err
	}

	return downloadUseCase.RunDownload(ctx, cliArgs)
}
