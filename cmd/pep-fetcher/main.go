package main

import (
	"context"
	"fmt"
	"os"

	"github.com/diillson/pep-fetcher-go/internal/adapter/driven/archive"
	"github.com/diillson/pep-fetcher-go/internal/adapter/driven/aws"
	"github.com/diillson/pep-fetcher-go/internal/adapter/driven/config"
	"github.com/diillson/pep-fetcher-go/internal/adapter/driven/export"
	"github.com/diillson/pep-fetcher-go/internal/adapter/driven/portal"
	"github.com/diillson/pep-fetcher-go/internal/adapter/driving/cli"
	"github.com/diillson/pep-fetcher-go/internal/application/usecase"
	"github.com/diillson/pep-fetcher-go/internal/domain/repository"
	"github.com/diillson/pep-fetcher-go/internal/shared/types"
	"github.com/diillson/pep-fetcher-go/pkg/version"
)

func main() {
	// Inicializa o aplicativo CLI
	configRepo := config.NewConfigRepository()
	app := cli.NewCLIApp(version.Version, configRepo)

	// Os repositórios dependem das configurações finais, por isso são criados sob demanda
	app.SetUseCaseFactory(func(ctx context.Context, settings types.Settings, out types.ConsoleInterface) (*usecase.DownloadUseCase, error) {
		var mirrorRepo repository.MirrorRepository
		if settings.Mirror.Enabled() {
			repo, err := aws.NewMirrorRepository(ctx, settings.Mirror)
			if err != nil {
				return nil, fmt.Errorf("error configuring archive mirror: %w", err)
			}
			mirrorRepo = repo
		}

		return usecase.NewDownloadUseCase(
			settings,
			portal.NewPortalRepository(settings, out),
			archive.NewArchiveRepository(out),
			mirrorRepo,
			export.NewExportRepository(),
			out,
		), nil
	})

	// Executa o aplicativo
	if err := app.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
