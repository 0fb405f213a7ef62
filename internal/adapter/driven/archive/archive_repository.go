package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/diillson/pep-fetcher-go/internal/domain/entity"
	"github.com/diillson/pep-fetcher-go/internal/domain/repository"
	"github.com/diillson/pep-fetcher-go/internal/shared/types"
)

// ArchiveRepositoryImpl implementa o ArchiveRepository para arquivos zip.
type ArchiveRepositoryImpl struct {
	console types.ConsoleInterface
}

// NewArchiveRepository cria uma nova implementação do ArchiveRepository.
func NewArchiveRepository(console types.ConsoleInterface) repository.ArchiveRepository {
	return &ArchiveRepositoryImpl{console: console}
}

// Extract expands archivePath into a sibling directory named after the archive
// without its extension. Running it twice over the same archive yields the
// same entries; existing files are overwritten.
func (r *ArchiveRepositoryImpl) Extract(archivePath string) entity.ExtractionResult {
	dir := strings.TrimSuffix(archivePath, filepath.Ext(archivePath))
	result := entity.ExtractionResult{Dir: dir}

	if _, err := os.Stat(archivePath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return failure(result, entity.ExtractionFailure, fmt.Errorf("%w: %s", types.ErrArchiveMissing, archivePath))
		}
		return failure(result, entity.ExtractionFailure, fmt.Errorf("stat archive: %w", err))
	}

	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		// ErrInsecurePath vem acompanhado de um reader válido
		if reader != nil {
			reader.Close()
		}
		if isCorrupt(err) {
			return failure(result, entity.ExtractionCorrupt, fmt.Errorf("%w: %v", types.ErrCorruptArchive, err))
		}
		return failure(result, entity.ExtractionFailure, fmt.Errorf("open archive: %w", err))
	}
	defer reader.Close()

	r.console.LogInfo("Files found in archive: %d", len(reader.File))

	if err := os.MkdirAll(dir, 0755); err != nil {
		return failure(result, entity.ExtractionFailure, fmt.Errorf("create extraction dir: %w", err))
	}

	entries := make([]string, 0, len(reader.File))
	for _, f := range reader.File {
		if err := extractFile(f, dir); err != nil {
			kind := entity.ExtractionFailure
			if isCorrupt(err) {
				kind = entity.ExtractionCorrupt
				err = fmt.Errorf("%w: %v", types.ErrCorruptArchive, err)
			}
			return failure(result, kind, err)
		}
		entries = append(entries, f.Name)
	}

	result.Kind = entity.ExtractionSuccess
	result.Entries = entries
	for _, name := range entries {
		r.console.Printf("  - %s\n", name)
	}
	r.console.LogSuccess("Files extracted to: %s", dir)
	return result
}

func failure(result entity.ExtractionResult, kind entity.ExtractionKind, err error) entity.ExtractionResult {
	result.Kind = kind
	result.Reason = err.Error()
	result.Err = err
	return result
}

var errUnsafePath = errors.New("entry escapes extraction directory")

func isCorrupt(err error) bool {
	return errors.Is(err, zip.ErrFormat) ||
		errors.Is(err, zip.ErrChecksum) ||
		errors.Is(err, zip.ErrAlgorithm) ||
		errors.Is(err, zip.ErrInsecurePath) ||
		errors.Is(err, errUnsafePath) ||
		errors.Is(err, io.ErrUnexpectedEOF)
}

func extractFile(f *zip.File, dir string) error {
	target, err := safeJoin(dir, f.Name)
	if err != nil {
		return err
	}

	if f.FileInfo().IsDir() {
		return os.MkdirAll(target, 0755)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("create dir for %s: %w", f.Name, err)
	}

	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("open entry %s: %w", f.Name, err)
	}
	defer src.Close()

	dst, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("create %s: %w", target, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("write entry %s: %w", f.Name, err)
	}
	return dst.Close()
}

// safeJoin rejects absolute names and names climbing out of dir.
func safeJoin(dir, name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", errUnsafePath, name)
	}
	return filepath.Join(dir, clean), nil
}
