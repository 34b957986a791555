package bolt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
	"github.com/google/uuid"

	"github.com/albums-service/internal/core/domain"
	"github.com/albums-service/internal/core/services"
)

var albumsBucket = []byte("albums")

// document is the stored form of an album. Seq comes from the bucket
// sequence and only breaks ordering ties.
type document struct {
	AlbumID      string    `json:"album_id"`
	Owner        string    `json:"owner"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	CoverPhotoID string    `json:"cover_photo_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	Photos       []string  `json:"photos"`
	Seq          uint64    `json:"seq"`
}

func (d document) album() domain.Album {
	photos := d.Photos
	if photos == nil {
		photos = []string{}
	}
	return domain.Album{
		AlbumID:      d.AlbumID,
		Owner:        d.Owner,
		Title:        d.Title,
		Description:  d.Description,
		CoverPhotoID: d.CoverPhotoID,
		CreatedAt:    d.CreatedAt,
		Photos:       photos,
	}
}

func (d *document) assign(a domain.Album) {
	d.Title = a.Title
	d.Description = a.Description
	d.CoverPhotoID = a.CoverPhotoID
	d.Photos = a.Photos
}

// AlbumStore keeps albums as JSON documents in a single Bolt bucket. Keys
// are owner and album id joined by a NUL byte, so one owner's albums are a
// contiguous key range. Every mutation runs in one read-write transaction.
type AlbumStore struct {
	db    *bbolt.DB
	clock services.Clock
}

// Open opens (creating if needed) the database file at path.
func Open(path string, clock services.Clock) (*AlbumStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt database: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(albumsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating albums bucket: %w", err)
	}
	if clock == nil {
		clock = services.RealClock{}
	}
	return &AlbumStore{db: db, clock: clock}, nil
}

// Close releases the file lock.
func (s *AlbumStore) Close() error {
	return s.db.Close()
}

func ownerPrefix(owner string) []byte {
	return []byte(owner + "\x00")
}

func albumKey(owner, albumID string) []byte {
	return append(ownerPrefix(owner), albumID...)
}

func (s *AlbumStore) Create(ctx context.Context, owner, title, description, coverPhotoID string) (*domain.Album, error) {
	doc := document{
		AlbumID:      uuid.NewString(),
		Owner:        owner,
		Title:        title,
		Description:  description,
		CoverPhotoID: coverPhotoID,
		CreatedAt:    s.clock.Now(),
		Photos:       []string{},
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(albumsBucket)
		seq, err := bucket.NextSequence()
		if err != nil {
			return err
		}
		doc.Seq = seq
		return put(bucket, doc)
	})
	if err != nil {
		return nil, err
	}

	album := doc.album()
	return &album, nil
}

func (s *AlbumStore) GetPage(ctx context.Context, owner string, offset, limit int) (domain.Page, error) {
	var owned []domain.Sequenced
	err := s.db.View(func(tx *bbolt.Tx) error {
		prefix := ownerPrefix(owner)
		c := tx.Bucket(albumsBucket).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var doc document
			if err := json.Unmarshal(v, &doc); err != nil {
				return fmt.Errorf("decoding album %q: %w", k, err)
			}
			if doc.Owner != owner {
				continue
			}
			owned = append(owned, domain.Sequenced{Album: doc.album(), Seq: doc.Seq})
		}
		return nil
	})
	if err != nil {
		return domain.Page{}, err
	}

	domain.NewestFirst(owned)
	return domain.Window(owned, offset, limit), nil
}

func (s *AlbumStore) GetByID(ctx context.Context, owner, albumID string) (*domain.Album, error) {
	var doc document
	err := s.db.View(func(tx *bbolt.Tx) error {
		return get(tx.Bucket(albumsBucket), owner, albumID, &doc)
	})
	if err != nil {
		return nil, err
	}
	album := doc.album()
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
	var deleted bool
	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(albumsBucket)
		var doc document
		err := get(bucket, owner, albumID, &doc)
		if errors.Is(err, services.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		deleted = true
		return bucket.Delete(albumKey(owner, albumID))
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
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

// mutate loads, changes and writes back one document inside a single
// transaction. The document is only rewritten when apply reports a change.
func (s *AlbumStore) mutate(owner, albumID string, apply func(a *domain.Album) bool) (*domain.Album, error) {
	var out domain.Album
	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(albumsBucket)
		var doc document
		if err := get(bucket, owner, albumID, &doc); err != nil {
			return err
		}
		album := doc.album()
		changed := apply(&album)
		out = album.Clone()
		if !changed {
			return nil
		}
		doc.assign(album)
		return put(bucket, doc)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func get(bucket *bbolt.Bucket, owner, albumID string, doc *document) error {
	raw := bucket.Get(albumKey(owner, albumID))
	if raw == nil {
		return services.ErrNotFound
	}
	if err := json.Unmarshal(raw, doc); err != nil {
		return fmt.Errorf("decoding album %s: %w", albumID, err)
	}
	if doc.Owner != owner {
		return services.ErrNotFound
	}
	return nil
}

func put(bucket *bbolt.Bucket, doc document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding album %s: %w", doc.AlbumID, err)
	}
	return bucket.Put(albumKey(doc.Owner, doc.AlbumID), raw)
}
