package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/albums-service/internal/core/domain"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100

	photographerService = "photographer"
	photoService        = "photo"
)

type CreateAlbumRequest struct {
	Title        string
	Description  string
	CoverPhotoID string
}

// AlbumService runs every album operation as a short linear pipeline:
// photographer check, photo check for photo-scoped operations, then the store.
// The first failing step ends the operation, so a failed dependency check never
// reaches the store.
type AlbumService struct {
	store    AlbumStore
	deps     DependencyGateway
	archives *ArchiveBuilder
	metadata *MetadataCollector
	logger   *slog.Logger
}

func NewAlbumService(
	store AlbumStore,
	deps DependencyGateway,
	archives *ArchiveBuilder,
	metadata *MetadataCollector,
	logger *slog.Logger,
) *AlbumService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AlbumService{
		store:    store,
		deps:     deps,
		archives: archives,
		metadata: metadata,
		logger:   logger,
	}
}

func (s *AlbumService) CreateAlbum(ctx context.Context, owner string, req CreateAlbumRequest) (*domain.Album, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidRequest)
	}
	if err := s.requirePhotographer(ctx, owner); err != nil {
		return nil, err
	}

	album, err := s.store.Create(ctx, owner, req.Title, req.Description, req.CoverPhotoID)
	if err != nil {
		return nil, s.internal("Error creating album", err, "owner", owner)
	}
	s.logger.Info("Album created", "owner", owner, "album_id", album.AlbumID)
	return album, nil
}

func (s *AlbumService) ListAlbums(ctx context.Context, owner string, offset, limit int) (domain.Page, error) {
	if offset < 0 {
		return domain.Page{}, fmt.Errorf("%w: offset must not be negative", ErrInvalidRequest)
	}
	if limit <= 0 || limit > MaxPageLimit {
		return domain.Page{}, fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidRequest, MaxPageLimit)
	}
	if err := s.requirePhotographer(ctx, owner); err != nil {
		return domain.Page{}, err
	}

	page, err := s.store.GetPage(ctx, owner, offset, limit)
	if err != nil {
		return domain.Page{}, s.internal("Error retrieving albums", err, "owner", owner)
	}
	return page, nil
}

func (s *AlbumService) GetAlbum(ctx context.Context, owner, albumID string) (*domain.Album, error) {
	if err := s.requirePhotographer(ctx, owner); err != nil {
		return nil, err
	}

	album, err := s.store.GetByID(ctx, owner, albumID)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrAlbumNotFound
	}
	if err != nil {
		return nil, s.internal("Error retrieving album", err, "owner", owner, "album_id", albumID)
	}
	return album, nil
}

// UpdateAlbum rejects an empty field set before any dependency or store call.
func (s *AlbumService) UpdateAlbum(ctx context.Context, owner, albumID string, fields domain.AlbumFields) (*domain.Album, error) {
	if fields.Empty() {
		return nil, ErrNoFieldsToUpdate
	}
	if err := s.requirePhotographer(ctx, owner); err != nil {
		return nil, err
	}

	album, err := s.store.Update(ctx, owner, albumID, fields)
	switch {
	case errors.Is(err, ErrNotFound):
		return nil, ErrAlbumNotFound
	case errors.Is(err, ErrNoFieldsToUpdate):
		return nil, ErrNoFieldsToUpdate
	case err != nil:
		return nil, s.internal("Error updating album", err, "owner", owner, "album_id", albumID)
	}
	return album, nil
}

func (s *AlbumService) DeleteAlbum(ctx context.Context, owner, albumID string) error {
	if err := s.requirePhotographer(ctx, owner); err != nil {
		return err
	}

	deleted, err := s.store.Delete(ctx, owner, albumID)
	if err != nil {
		return s.internal("Error deleting album", err, "owner", owner, "album_id", albumID)
	}
	if !deleted {
		return ErrAlbumNotFound
	}
	s.logger.Info("Album deleted", "owner", owner, "album_id", albumID)
	return nil
}

func (s *AlbumService) AddPhoto(ctx context.Context, owner, albumID, photoID string) (*domain.Album, error) {
	if photoID == "" {
		return nil, fmt.Errorf("%w: photo_id is required", ErrInvalidRequest)
	}
	if err := s.requirePhotographer(ctx, owner); err != nil {
		return nil, err
	}
	if err := s.requirePhoto(ctx, owner, photoID); err != nil {
		return nil, err
	}

	album, err := s.store.AddPhoto(ctx, owner, albumID, photoID)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrAlbumNotFound
	}
	if err != nil {
		return nil, s.internal("Error adding photo to album", err, "owner", owner, "album_id", albumID, "photo_id", photoID)
	}
	return album, nil
}

// RemovePhoto distinguishes a missing album (ErrAlbumOrPhotoNotFound) from a
// photo that was never a member (ErrPhotoNotInAlbum); the album is unchanged
// in both cases.
func (s *AlbumService) RemovePhoto(ctx context.Context, owner, albumID, photoID string) (*domain.Album, error) {
	if err := s.requirePhotographer(ctx, owner); err != nil {
		return nil, err
	}
	if err := s.requirePhoto(ctx, owner, photoID); err != nil {
		return nil, err
	}

	album, removed, err := s.store.RemovePhoto(ctx, owner, albumID, photoID)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrAlbumOrPhotoNotFound
	}
	if err != nil {
		return nil, s.internal("Error removing photo from album", err, "owner", owner, "album_id", albumID, "photo_id", photoID)
	}
	if !removed {
		return nil, ErrPhotoNotInAlbum
	}
	return album, nil
}

// ListPhotoMetadata returns the metadata of every photo in the album that the
// photo service could describe, in album order.
func (s *AlbumService) ListPhotoMetadata(ctx context.Context, owner, albumID string) ([]json.RawMessage, error) {
	photoIDs, err := s.photoIDs(ctx, owner, albumID)
	if err != nil {
		return nil, err
	}

	records, err := s.metadata.Collect(ctx, owner, photoIDs)
	if err != nil {
		return nil, s.internal("Error retrieving photos for album", err, "owner", owner, "album_id", albumID)
	}
	return records, nil
}

// Archive is a validated, not yet materialized album download.
type Archive struct {
	AlbumID  string
	Filename string
	PhotoIDs []string

	owner   string
	builder *ArchiveBuilder
}

func (a *Archive) Stream(ctx context.Context, w io.Writer) (int, error) {
	return a.builder.Build(ctx, w, a.owner, a.PhotoIDs)
}

// OpenArchive runs every check that can fail the request before any byte of
// the archive is produced.
func (s *AlbumService) OpenArchive(ctx context.Context, owner, albumID string) (*Archive, error) {
	photoIDs, err := s.photoIDs(ctx, owner, albumID)
	if err != nil {
		return nil, err
	}
	return &Archive{
		AlbumID:  albumID,
		Filename: ArchiveFilename(albumID),
		PhotoIDs: photoIDs,
		owner:    owner,
		builder:  s.archives,
	}, nil
}

func (s *AlbumService) photoIDs(ctx context.Context, owner, albumID string) ([]string, error) {
	if err := s.requirePhotographer(ctx, owner); err != nil {
		return nil, err
	}

	photoIDs, err := s.store.ListPhotoIDs(ctx, owner, albumID)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrAlbumEmptyOrNotFound
	}
	if err != nil {
		return nil, s.internal("Error retrieving photo ids", err, "owner", owner, "album_id", albumID)
	}
	if len(photoIDs) == 0 {
		return nil, ErrAlbumEmptyOrNotFound
	}
	return photoIDs, nil
}

func (s *AlbumService) requirePhotographer(ctx context.Context, owner string) error {
	res := s.deps.CheckPhotographer(ctx, owner)
	if err := checkOutcome(photographerService, res, ErrPhotographerNotFound); err != nil {
		s.logger.Warn("Photographer check failed", "owner", owner, "result", res.String())
		return err
	}
	return nil
}

func (s *AlbumService) requirePhoto(ctx context.Context, owner, photoID string) error {
	res := s.deps.CheckPhoto(ctx, owner, photoID)
	if err := checkOutcome(photoService, res, ErrPhotoNotFound); err != nil {
		s.logger.Warn("Photo check failed", "owner", owner, "photo_id", photoID, "result", res.String())
		return err
	}
	return nil
}

// checkOutcome is the decision table from a dependency check to an operation error.
func checkOutcome(service string, res CheckResult, notFound error) error {
	switch res {
	case Confirmed:
		return nil
	case NotFound:
		return notFound
	case TimedOut:
		return &DependencyError{Service: service, Err: ErrDependencyTimeout}
	default:
		return &DependencyError{Service: service, Err: ErrDependencyUnavailable}
	}
}

// internal logs the cause and hides it from the caller.
func (s *AlbumService) internal(msg string, err error, attrs ...any) error {
	s.logger.Error(msg, append(attrs, "error", err)...)
	return ErrInternal
}
