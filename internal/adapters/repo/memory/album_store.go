package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/albums-service/internal/core/domain"
	"github.com/albums-service/internal/core/services"
)

// AlbumStore keeps albums in process memory. The write lock makes each
// mutation an atomic conditional update on (owner, albumID).
type AlbumStore struct {
	mu     sync.RWMutex
	clock  services.Clock
	albums map[albumKey]*domain.Sequenced
	seq    uint64
}

func NewAlbumStore(clock services.Clock) *AlbumStore {
	if clock == nil {
		clock = services.RealClock{}
	}
	return &AlbumStore{
		clock:  clock,
		albums: make(map[albumKey]*domain.Sequenced),
	}
}

type albumKey struct {
	owner   string
	albumID string
}

func (s *AlbumStore) makeKey(owner, albumID string) albumKey {
	return albumKey{owner: owner, albumID: albumID}
}

func (s *AlbumStore) Create(ctx context.Context, owner, title, description, coverPhotoID string) (*domain.Album, error) {
	album := domain.Album{
		AlbumID:      uuid.NewString(),
		Owner:        owner,
		Title:        title,
		Description:  description,
		CoverPhotoID: coverPhotoID,
		CreatedAt:    s.clock.Now(),
		Photos:       []string{},
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	s.albums[s.makeKey(owner, album.AlbumID)] = &domain.Sequenced{Album: album, Seq: s.seq}

	created := album.Clone()
	return &created, nil
}

func (s *AlbumStore) GetPage(ctx context.Context, owner string, offset, limit int) (domain.Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var owned []domain.Sequenced
	for _, rec := range s.albums {
		if rec.Album.Owner == owner {
			owned = append(owned, *rec)
		}
	}
	domain.NewestFirst(owned)
	return domain.Window(owned, offset, limit), nil
}

func (s *AlbumStore) GetByID(ctx context.Context, owner, albumID string) (*domain.Album, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, exists := s.albums[s.makeKey(owner, albumID)]
	if !exists {
		return nil, services.ErrNotFound
	}
	album := rec.Album.Clone()
	return &album, nil
}

func (s *AlbumStore) Update(ctx context.Context, owner, albumID string, fields domain.AlbumFields) (*domain.Album, error) {
	if fields.Empty() {
		return nil, services.ErrNoFieldsToUpdate
	}
	return s.mutate(owner, albumID, func(a *domain.Album) bool {
		fields.ApplyTo(a)
		return true
	})
}

func (s *AlbumStore) Delete(ctx context.Context, owner, albumID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := s.makeKey(owner, albumID)
	if _, exists := s.albums[key]; !exists {
		return false, nil
	}
	delete(s.albums, key)
	return true, nil
}

func (s *AlbumStore) AddPhoto(ctx context.Context, owner, albumID, photoID string) (*domain.Album, error) {
	return s.mutate(owner, albumID, func(a *domain.Album) bool {
		return a.AddPhoto(photoID)
	})
}

func (s *AlbumStore) RemovePhoto(ctx context.Context, owner, albumID, photoID string) (*domain.Album, bool, error) {
	var removed bool
	album, err := s.mutate(owner, albumID, func(a *domain.Album) bool {
		removed = a.RemovePhoto(photoID)
		return removed
	})
	return album, removed, err
}

func (s *AlbumStore) ListPhotoIDs(ctx context.Context, owner, albumID string) ([]string, error) {
	album, err := s.GetByID(ctx, owner, albumID)
	if err != nil {
		return nil, err
	}
	return album.Photos, nil
}

func (s *AlbumStore) mutate(owner, albumID string, apply func(a *domain.Album) bool) (*domain.Album, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, exists := s.albums[s.makeKey(owner, albumID)]
	if !exists {
		return nil, services.ErrNotFound
	}

	album := rec.Album.Clone()
	if apply(&album) {
		rec.Album = album
	}
	out := album.Clone()
	return &out, nil
}
