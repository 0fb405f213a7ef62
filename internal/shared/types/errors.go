package types

import "errors"

var (
	ErrUnresolvedPeriod      = errors.New("no available reporting period found")
	ErrNotFound              = errors.New("archive not found")
	ErrBlocked               = errors.New("access blocked by the portal")
	ErrHTTPStatus            = errors.New("unexpected http status")
	ErrUnexpectedContentType = errors.New("unexpected content type")
	ErrExhaustedRetries      = errors.New("exhausted retries")
	ErrCorruptArchive        = errors.New("corrupt archive")
	ErrArchiveMissing        = errors.New("archive file missing")
)
