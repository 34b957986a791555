package services

import (
	"context"
	"errors"

	"github.com/albums-service/internal/core/domain"
)

// ErrNotFound is returned by AlbumStore implementations when no album matches
// the (owner, albumID) pair.
var ErrNotFound = errors.New("album record not found")

// AlbumStore persists albums. Every mutation is a single conditional write
// scoped to (owner, albumID) and is durable when the call returns.
type AlbumStore interface {
	Create(ctx context.Context, owner, title, description, coverPhotoID string) (*domain.Album, error)
	GetPage(ctx context.Context, owner string, offset, limit int) (domain.Page, error)
	GetByID(ctx context.Context, owner, albumID string) (*domain.Album, error)
	// Update returns ErrNoFieldsToUpdate when fields is empty.
	Update(ctx context.Context, owner, albumID string, fields domain.AlbumFields) (*domain.Album, error)
	Delete(ctx context.Context, owner, albumID string) (bool, error)
	// AddPhoto is a no-op returning the unchanged album when photoID is already a member.
	AddPhoto(ctx context.Context, owner, albumID, photoID string) (*domain.Album, error)
	// RemovePhoto reports whether photoID was a member; an absent photo is not an error.
	RemovePhoto(ctx context.Context, owner, albumID, photoID string) (*domain.Album, bool, error)
	ListPhotoIDs(ctx context.Context, owner, albumID string) ([]string, error)
}
