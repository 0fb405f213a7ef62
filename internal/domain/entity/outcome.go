package entity

// OutcomeKind classifies a download attempt sequence.
type OutcomeKind string

const (
	OutcomeSuccess          OutcomeKind = "success"
	OutcomeTransientFailure OutcomeKind = "transient_failure"
	OutcomePermanentFailure OutcomeKind = "permanent_failure"
)

// DownloadOutcome é o resultado de Download: sucesso com bytes gravados ou
// falha transitória/permanente com motivo.
type DownloadOutcome struct {
	Kind       OutcomeKind `json:"kind"`
	Bytes      int64       `json:"bytes"`
	Reason     string      `json:"reason,omitempty"`
	Attempts   int         `json:"attempts"`
	StatusCode int         `json:"status_code,omitempty"`
	Path       string      `json:"path,omitempty"`
	URL        string      `json:"url"`
	Err        error       `json:"-"`
}

// OK reports whether the archive bytes are on disk.
func (o DownloadOutcome) OK() bool {
	return o.Kind == OutcomeSuccess
}

// ExtractionKind classifies an extraction.
type ExtractionKind string

const (
	ExtractionSuccess ExtractionKind = "success"
	ExtractionFailure ExtractionKind = "failure"
	ExtractionCorrupt ExtractionKind = "corrupt_archive"
)

// ExtractionResult lists the entries written on success. ExtractionCorrupt
// means the file was read but is not a usable zip; ExtractionFailure covers
// filesystem errors such as a missing file or a denied write.
type ExtractionResult struct {
	Kind    ExtractionKind `json:"kind"`
	Entries []string       `json:"entries,omitempty"`
	Dir     string         `json:"dir,omitempty"`
	Reason  string         `json:"reason,omitempty"`
	Err     error          `json:"-"`
}

// OK reports whether every entry was extracted.
func (r ExtractionResult) OK() bool {
	return r.Kind == ExtractionSuccess
}
