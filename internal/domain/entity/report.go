package entity

import "time"

// ResolutionSource records how the reporting period was chosen.
type ResolutionSource string

const (
	ResolutionProbed     ResolutionSource = "probed"
	ResolutionFallback   ResolutionSource = "fallback"
	ResolutionFixed      ResolutionSource = "fixed"
	ResolutionExplicit   ResolutionSource = "explicit"
	ResolutionUnresolved ResolutionSource = "unresolved"
)

// Resolution is the period handed to the fetcher plus its provenance.
type Resolution struct {
	Period ReportingPeriod  `json:"period"`
	Source ResolutionSource `json:"source"`
	Probes int              `json:"probes"`
}

// Resolved reports whether a period is available to fetch.
func (r Resolution) Resolved() bool {
	return r.Source != ResolutionUnresolved && !r.Period.IsZero()
}

// RunStatus is the terminal narration of a run.
type RunStatus string

const (
	RunSuccess          RunStatus = "success"
	RunUnresolved       RunStatus = "unresolved"
	RunDownloadFailed   RunStatus = "download_failed"
	RunExtractionFailed RunStatus = "extraction_failed"
)

// MirrorResult describes where the archive was copied, if anywhere.
type MirrorResult struct {
	Location string `json:"location"`
	Skipped  bool   `json:"skipped"`
	Error    string `json:"error,omitempty"`
}

// RunReport agrega tudo o que aconteceu em uma execução, para exportação.
type RunReport struct {
	RunID      string            `json:"run_id"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
	Resolution Resolution        `json:"resolution"`
	Archive    ArchiveIdentifier `json:"archive,omitempty"`
	Download   *DownloadOutcome  `json:"download,omitempty"`
	Extraction *ExtractionResult `json:"extraction,omitempty"`
	Mirror     *MirrorResult     `json:"mirror,omitempty"`
	Status     RunStatus         `json:"status"`
}
