package services

import (
	"context"
	"encoding/json"
	"log/slog"
)

// MetadataCollector gathers photo metadata with the same ordering and failure
// tolerance as ArchiveBuilder.
type MetadataCollector struct {
	deps        DependencyGateway
	concurrency int
	logger      *slog.Logger
}

func NewMetadataCollector(deps DependencyGateway, concurrency int, logger *slog.Logger) *MetadataCollector {
	if concurrency <= 0 {
		concurrency = DefaultFetchConcurrency
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MetadataCollector{
		deps:        deps,
		concurrency: concurrency,
		logger:      logger,
	}
}

func (c *MetadataCollector) Collect(ctx context.Context, owner string, photoIDs []string) ([]json.RawMessage, error) {
	records := make([]json.RawMessage, 0, len(photoIDs))

	fetch := func(ctx context.Context, photoID string) (json.RawMessage, error) {
		return c.deps.FetchPhotoMetadata(ctx, owner, photoID)
	}
	emit := func(photoID string, record json.RawMessage, err error) error {
		if err != nil {
			c.logger.Warn("Could not retrieve metadata for photo", "owner", owner, "photo_id", photoID, "error", err)
			return nil
		}
		records = append(records, record)
		return nil
	}

	if err := fetchInOrder(ctx, photoIDs, c.concurrency, fetch, emit); err != nil {
		return nil, err
	}
	return records, nil
}
