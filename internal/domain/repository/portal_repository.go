package repository

import (
	"context"

	"github.com/diillson/pep-fetcher-go/internal/domain/entity"
)

// PortalRepository defines the interface for talking to the remote data portal.
type PortalRepository interface {
	// Probe reports whether the archive exists, without transferring its body.
	// It never fails: any error counts as "not present".
	Probe(ctx context.Context, id entity.ArchiveIdentifier) bool

	// Download streams the archive into dest with bounded retries.
	Download(ctx context.Context, id entity.ArchiveIdentifier, dest string) entity.DownloadOutcome
}

// ArchiveRepository expands downloaded archives.
type ArchiveRepository interface {
	Extract(archivePath string) entity.ExtractionResult
}

// MirrorRepository copies a downloaded archive to remote storage.
type MirrorRepository interface {
	Mirror(ctx context.Context, archivePath string, id entity.ArchiveIdentifier) (entity.MirrorResult, error)
}
