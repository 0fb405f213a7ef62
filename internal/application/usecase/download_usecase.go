package usecase

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/diillson/pep-fetcher-go/internal/domain/entity"
	"github.com/diillson/pep-fetcher-go/internal/domain/repository"
	"github.com/diillson/pep-fetcher-go/internal/shared/types"
	"github.com/diillson/pep-fetcher-go/pkg/console"
)

// DownloadUseCase handles the resolve, fetch and extract flow.
type DownloadUseCase struct {
	settings    types.Settings
	portalRepo  repository.PortalRepository
	archiveRepo repository.ArchiveRepository
	mirrorRepo  repository.MirrorRepository
	exportRepo  repository.ExportRepository
	console     types.ConsoleInterface
	resolver    *PeriodResolver
	now         func() time.Time
}

// NewDownloadUseCase creates a new download use case. mirrorRepo may be nil.
func NewDownloadUseCase(
	settings types.Settings,
	portalRepo repository.PortalRepository,
	archiveRepo repository.ArchiveRepository,
	mirrorRepo repository.MirrorRepository,
	exportRepo repository.ExportRepository,
	console types.ConsoleInterface,
) *DownloadUseCase {
	return &DownloadUseCase{
		settings:    settings,
		portalRepo:  portalRepo,
		archiveRepo: archiveRepo,
		mirrorRepo:  mirrorRepo,
		exportRepo:  exportRepo,
		console:     console,
		resolver:    NewPeriodResolver(portalRepo, settings, console),
		now:         time.Now,
	}
}

// ResolvePeriod escolhe o período a partir do mês corrente.
func (uc *DownloadUseCase) ResolvePeriod(ctx context.Context, fixedMode bool) entity.Resolution {
	base := entity.PeriodFromTime(uc.now())
	if fixedMode {
		uc.console.LogInfo("Using fixed month logic (%d months ago)", uc.settings.FallbackMonthsAgo)
	} else {
		uc.console.LogInfo("Using automatic detection of the available month...")
	}
	return uc.resolver.ResolvePeriod(ctx, base, fixedMode)
}

// ArchiveFor returns the identifier and local path for a period.
func (uc *DownloadUseCase) ArchiveFor(period entity.ReportingPeriod) (entity.ArchiveIdentifier, string) {
	id := entity.NewArchiveIdentifier(period, uc.settings.FileSuffix, uc.settings.FileExtension)
	return id, filepath.Join(uc.settings.DownloadDir, id.FileName())
}

// FetchAndExtract downloads the period's archive and, only when that
// succeeded, extracts it. The extraction result is nil if nothing was
// downloaded.
func (uc *DownloadUseCase) FetchAndExtract(ctx context.Context, period entity.ReportingPeriod) (entity.DownloadOutcome, *entity.ExtractionResult) {
	id, dest := uc.ArchiveFor(period)
	uc.console.LogInfo("Downloading available data: %s", period.Label())
	uc.console.LogInfo("Target file: %s", id.FileName())

	outcome := uc.portalRepo.Download(ctx, id, dest)
	if !outcome.OK() {
		return outcome, nil
	}

	uc.console.LogInfo("Extracting archive...")
	extraction := uc.archiveRepo.Extract(dest)
	if !extraction.OK() {
		uc.console.LogError("Extraction failed: %s", extraction.Reason)
	}
	return outcome, &extraction
}

// RunDownload executa a funcionalidade principal: resolve, baixa, extrai,
// espelha e exporta o relatório. A non-nil error means the run failed.
func (uc *DownloadUseCase) RunDownload(ctx context.Context, args *types.CLIArgs) error {
	report := entity.RunReport{
		RunID:     uuid.NewString(),
		StartedAt: uc.now(),
	}

	resolution, err := uc.resolve(ctx, args)
	if err != nil {
		return err
	}
	report.Resolution = resolution

	runErr := uc.run(ctx, &report)
	report.FinishedAt = uc.now()

	uc.displaySummary(report)
	uc.exportReport(report, args)
	uc.narrate(report)

	return runErr
}

func (uc *DownloadUseCase) resolve(ctx context.Context, args *types.CLIArgs) (entity.Resolution, error) {
	if args.Period != "" {
		period, err := entity.ParsePeriod(args.Period)
		if err != nil {
			return entity.Resolution{}, err
		}
		uc.console.LogInfo("Using explicit month: %s", period.Label())
		return entity.Resolution{Period: period, Source: entity.ResolutionExplicit}, nil
	}
	return uc.ResolvePeriod(ctx, args.FixedMonth), nil
}

func (uc *DownloadUseCase) run(ctx context.Context, report *entity.RunReport) error {
	if !report.Resolution.Resolved() {
		report.Status = entity.RunUnresolved
		return types.ErrUnresolvedPeriod
	}

	id, _ := uc.ArchiveFor(report.Resolution.Period)
	report.Archive = id

	outcome, extraction := uc.FetchAndExtract(ctx, report.Resolution.Period)
	report.Download = &outcome
	report.Extraction = extraction

	if !outcome.OK() {
		report.Status = entity.RunDownloadFailed
		return fmt.Errorf("download failed (%s): %w", outcome.Reason, outcome.Err)
	}

	if extraction == nil || !extraction.OK() {
		report.Status = entity.RunExtractionFailed
		reason := "not attempted"
		var cause error = types.ErrArchiveMissing
		if extraction != nil {
			reason, cause = extraction.Reason, extraction.Err
		}
		return fmt.Errorf("extraction failed (%s): %w", reason, cause)
	}

	// Só espelha arquivos que extraíram sem erro
	if uc.mirrorRepo != nil {
		status := uc.console.Status("Mirroring archive...")
		mirror, err := uc.mirrorRepo.Mirror(ctx, outcome.Path, id)
		status.Stop()
		if err != nil {
			mirror.Error = err.Error()
			uc.console.LogWarning("Failed to mirror archive: %s", err)
		} else if mirror.Skipped {
			uc.console.LogInfo("Archive already mirrored at %s", mirror.Location)
		} else {
			uc.console.LogSuccess("Archive mirrored to %s", mirror.Location)
		}
		report.Mirror = &mirror
	}

	report.Status = entity.RunSuccess
	return nil
}

// narrate prints one of the terminal messages for the run.
func (uc *DownloadUseCase) narrate(report entity.RunReport) {
	switch report.Status {
	case entity.RunSuccess:
		uc.console.LogSuccess("Process finished: %s downloaded and extracted", report.Archive.FileName())
	case entity.RunUnresolved:
		uc.console.LogError("Process finished: could not resolve an available month after %d probes", report.Resolution.Probes)
	case entity.RunDownloadFailed:
		uc.console.LogError("Process finished: download of %s failed", report.Archive.FileName())
		if report.Download != nil && errors.Is(report.Download.Err, types.ErrNotFound) {
			uc.console.LogInfo("Check whether the month is correct or try another month")
		}
	case entity.RunExtractionFailed:
		uc.console.LogError("Process finished with partial failure: %s was downloaded but extraction failed", report.Archive.FileName())
	}
}

func (uc *DownloadUseCase) displaySummary(report entity.RunReport) {
	table := uc.console.CreateTable()
	table.AddColumn("Period")
	table.AddColumn("Source")
	table.AddColumn("Archive")
	table.AddColumn("Download")
	table.AddColumn("Extraction")
	table.AddColumn("Status")

	download, extraction := "-", "-"
	if d := report.Download; d != nil {
		download = fmt.Sprintf("%s (%d attempts)", d.Kind, d.Attempts)
	}
	if e := report.Extraction; e != nil {
		extraction = fmt.Sprintf("%s (%d entries)", e.Kind, len(e.Entries))
	}

	period := "-"
	if !report.Resolution.Period.IsZero() {
		period = report.Resolution.Period.Label()
	}

	table.AddRow(period, sourceCell(report.Resolution.Source), report.Archive.FileName(), download, extraction, statusCell(report.Status))
	uc.console.Println(table.Render())
}

func statusCell(status entity.RunStatus) string {
	switch status {
	case entity.RunSuccess:
		return console.BrightGreen(string(status))
	case entity.RunExtractionFailed:
		return console.BrightYellow(string(status))
	default:
		return console.BrightRed(string(status))
	}
}

func sourceCell(source entity.ResolutionSource) string {
	if source == entity.ResolutionFallback {
		return console.BrightYellow(string(source))
	}
	return console.BrightCyan(string(source))
}

func (uc *DownloadUseCase) exportReport(report entity.RunReport, args *types.CLIArgs) {
	if args.ReportName == "" || uc.exportRepo == nil {
		return
	}

	reportTypes := args.ReportType
	if len(reportTypes) == 0 {
		reportTypes = []string{"json"}
	}

	for _, reportType := range reportTypes {
		var (
			path string
			err  error
		)
		switch strings.ToLower(strings.TrimSpace(reportType)) {
		case "csv":
			path, err = uc.exportRepo.ExportRunReportToCSV(report, args.ReportName, args.Dir)
		case "json":
			path, err = uc.exportRepo.ExportRunReportToJSON(report, args.ReportName, args.Dir)
		case "pdf":
			path, err = uc.exportRepo.ExportRunReportToPDF(report, args.ReportName, args.Dir)
		default:
			uc.console.LogWarning("Unsupported report type: %s", reportType)
			continue
		}
		if err != nil {
			uc.console.LogError("Failed to export run report to %s: %s", strings.ToUpper(reportType), err)
			continue
		}
		uc.console.LogSuccess("Successfully exported run report to %s: %s", strings.ToUpper(reportType), path)
	}
}
