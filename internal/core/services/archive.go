package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/klauspost/compress/zip"
)

const DefaultFetchConcurrency = 4

// ArchiveBuilder streams the photos of an album into a zip archive. Photos that
// cannot be fetched are logged and left out; they never fail the archive.
type ArchiveBuilder struct {
	deps        DependencyGateway
	concurrency int
	logger      *slog.Logger
}

func NewArchiveBuilder(deps DependencyGateway, concurrency int, logger *slog.Logger) *ArchiveBuilder {
	if concurrency <= 0 {
		concurrency = DefaultFetchConcurrency
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ArchiveBuilder{
		deps:        deps,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Build writes one entry per fetched photo to w, in photoIDs order, and returns
// the number of entries written.
func (b *ArchiveBuilder) Build(ctx context.Context, w io.Writer, owner string, photoIDs []string) (int, error) {
	zw := zip.NewWriter(w)
	written := 0
	used := make(map[string]bool, len(photoIDs))

	fetch := func(ctx context.Context, photoID string) ([]byte, error) {
		return b.deps.FetchPhotoBytes(ctx, owner, photoID)
	}
	emit := func(photoID string, data []byte, fetchErr error) error {
		if fetchErr != nil {
			b.logger.Warn("Could not retrieve photo, skipping archive entry", "owner", owner, "photo_id", photoID, "error", fetchErr)
			return nil
		}
		entry, err := zw.Create(uniqueEntryName(used, photoID))
		if err != nil {
			return fmt.Errorf("creating archive entry %s: %w", photoID, err)
		}
		if _, err := entry.Write(data); err != nil {
			return fmt.Errorf("writing archive entry %s: %w", photoID, err)
		}
		written++
		return nil
	}

	if err := fetchInOrder(ctx, photoIDs, b.concurrency, fetch, emit); err != nil {
		return written, err
	}
	if err := zw.Close(); err != nil {
		return written, fmt.Errorf("finishing archive: %w", err)
	}
	return written, nil
}

// ArchiveEntryName derives the file name of a photo inside an archive.
// Path separators are replaced so an id can never escape the archive root.
func ArchiveEntryName(photoID string) string {
	name := strings.NewReplacer("/", "_", "\\", "_").Replace(photoID)
	return name + ".jpg"
}

// uniqueEntryName suffixes _2, _3, ... when distinct ids map to the same entry name.
func uniqueEntryName(used map[string]bool, photoID string) string {
	name := ArchiveEntryName(photoID)
	base := strings.TrimSuffix(name, ".jpg")
	for n := 2; used[name]; n++ {
		name = fmt.Sprintf("%s_%d.jpg", base, n)
	}
	used[name] = true
	return name
}

// ArchiveFilename is the download name of an album archive.
func ArchiveFilename(albumID string) string {
	return fmt.Sprintf("album_%s.zip", albumID)
}
