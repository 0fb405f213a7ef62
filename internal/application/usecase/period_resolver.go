package usecase

import (
	"context"
	"iter"

	"golang.org/x/time/rate"

	"github.com/diillson/pep-fetcher-go/internal/domain/entity"
	"github.com/diillson/pep-fetcher-go/internal/domain/repository"
	"github.com/diillson/pep-fetcher-go/internal/shared/types"
)

// PeriodResolver descobre o mês mais recente publicado no portal.
type PeriodResolver struct {
	portal   repository.PortalRepository
	settings types.Settings
	console  types.ConsoleInterface
	limiter  *rate.Limiter
}

// NewPeriodResolver creates a resolver whose probes are paced at
// settings.ProbeRate per second (unlimited when zero).
func NewPeriodResolver(portal repository.PortalRepository, settings types.Settings, console types.ConsoleInterface) *PeriodResolver {
	limit := rate.Inf
	if settings.ProbeRate > 0 {
		limit = rate.Limit(settings.ProbeRate)
	}
	return &PeriodResolver{
		portal:   portal,
		settings: settings,
		console:  console,
		limiter:  rate.NewLimiter(limit, 1),
	}
}

// Candidates yields (monthsAgo, period) for monthsAgo = 0..maxLookback-1,
// most recent first. Periods are computed only as they are consumed.
func Candidates(base entity.ReportingPeriod, maxLookback int) iter.Seq2[int, entity.ReportingPeriod] {
	return func(yield func(int, entity.ReportingPeriod) bool) {
		for monthsAgo := 0; monthsAgo < maxLookback; monthsAgo++ {
			if !yield(monthsAgo, base.MonthsAgo(monthsAgo)) {
				return
			}
		}
	}
}

// DetectMostRecentAvailable probes candidates from base backwards and returns
// the first one present on the portal, with the number of probes issued.
// ok is false when nothing was found; that is not an error.
func (r *PeriodResolver) DetectMostRecentAvailable(ctx context.Context, base entity.ReportingPeriod) (period entity.ReportingPeriod, probes int, ok bool) {
	r.console.LogInfo("Detecting the most recent available month...")

	for _, candidate := range Candidates(base, r.settings.MaxLookback) {
		if err := r.limiter.Wait(ctx); err != nil {
			return entity.ReportingPeriod{}, probes, false
		}

		id := entity.NewArchiveIdentifier(candidate, r.settings.FileSuffix, r.settings.FileExtension)
		r.console.LogInfo("Checking month: %s", candidate.Label())
		probes++

		if r.portal.Probe(ctx, id) {
			r.console.LogSuccess("Available month found: %s", candidate.Label())
			return candidate, probes, true
		}
	}

	r.console.LogWarning("No available month found in the last %d months", r.settings.MaxLookback)
	return entity.ReportingPeriod{}, probes, false
}

// FallbackPeriod is the fixed heuristic: FallbackMonthsAgo months before base.
func (r *PeriodResolver) FallbackPeriod(base entity.ReportingPeriod) entity.ReportingPeriod {
	return base.MonthsAgo(r.settings.FallbackMonthsAgo)
}

// ResolvePeriod escolhe o período a baixar. In fixed mode no probe is issued.
// When detection fails the fallback period is used unless it is disabled.
func (r *PeriodResolver) ResolvePeriod(ctx context.Context, base entity.ReportingPeriod, fixedMode bool) entity.Resolution {
	if fixedMode {
		return entity.Resolution{Period: r.FallbackPeriod(base), Source: entity.ResolutionFixed}
	}

	period, probes, ok := r.DetectMostRecentAvailable(ctx, base)
	if ok {
		return entity.Resolution{Period: period, Source: entity.ResolutionProbed, Probes: probes}
	}

	if r.settings.DisableFallback {
		return entity.Resolution{Source: entity.ResolutionUnresolved, Probes: probes}
	}

	fallback := r.FallbackPeriod(base)
	r.console.LogWarning("Falling back to the default month (%d months ago): %s", r.settings.FallbackMonthsAgo, fallback.Label())
	return entity.Resolution{Period: fallback, Source: entity.ResolutionFallback, Probes: probes}
}
