package domain

import (
	"sort"
	"time"
)

// Album is identified by (Owner, AlbumID). AlbumID is globally unique and,
// like Owner, never changes after creation.
type Album struct {
	AlbumID      string
	Owner        string
	Title        string
	Description  string
	CoverPhotoID string
	CreatedAt    time.Time
	Photos       []string
}

func (a Album) Clone() Album {
	photos := make([]string, len(a.Photos))
	copy(photos, a.Photos)
	a.Photos = photos
	return a
}

func (a Album) HasPhoto(photoID string) bool {
	for _, id := range a.Photos {
		if id == photoID {
			return true
		}
	}
	return false
}

// AddPhoto appends photoID unless it is already a member.
func (a *Album) AddPhoto(photoID string) bool {
	if a.HasPhoto(photoID) {
		return false
	}
	a.Photos = append(a.Photos, photoID)
	return true
}

func (a *Album) RemovePhoto(photoID string) bool {
	for i, id := range a.Photos {
		if id == photoID {
			a.Photos = append(a.Photos[:i:i], a.Photos[i+1:]...)
			return true
		}
	}
	return false
}

// AlbumFields is the set of mutable album attributes. A nil or empty value
// means the field was not supplied.
type AlbumFields struct {
	Title        *string
	Description  *string
	CoverPhotoID *string
}

func (f AlbumFields) Empty() bool {
	return !supplied(f.Title) && !supplied(f.Description) && !supplied(f.CoverPhotoID)
}

func (f AlbumFields) ApplyTo(a *Album) {
	if supplied(f.Title) {
		a.Title = *f.Title
	}
	if supplied(f.Description) {
		a.Description = *f.Description
	}
	if supplied(f.CoverPhotoID) {
		a.CoverPhotoID = *f.CoverPhotoID
	}
}

// Supplied reports the fields that carry a value, keyed by column name.
func (f AlbumFields) Supplied() map[string]string {
	out := make(map[string]string, 3)
	if supplied(f.Title) {
		out["title"] = *f.Title
	}
	if supplied(f.Description) {
		out["description"] = *f.Description
	}
	if supplied(f.CoverPhotoID) {
		out["cover_photo_id"] = *f.CoverPhotoID
	}
	return out
}

func supplied(v *string) bool {
	return v != nil && *v != ""
}

// Page is one window over an owner's albums.
type Page struct {
	Items   []Album
	HasMore bool
}

// HasMore reports whether records exist beyond the window [offset, offset+limit).
func HasMore(total, offset, limit int) bool {
	return total > offset+limit
}

// Sequenced pairs an album with the order in which it was stored.
type Sequenced struct {
	Album Album
	Seq   uint64
}

// NewestFirst orders albums by creation time descending. Albums created at the
// same instant keep their insertion order.
func NewestFirst(albums []Sequenced) {
	sort.SliceStable(albums, func(i, j int) bool {
		if !albums[i].Album.CreatedAt.Equal(albums[j].Album.CreatedAt) {
			return albums[i].Album.CreatedAt.After(albums[j].Album.CreatedAt)
		}
		return albums[i].Seq < albums[j].Seq
	})
}

// Window slices out [offset, offset+limit) and computes HasMore over the full set.
func Window(albums []Sequenced, offset, limit int) Page {
	page := Page{Items: []Album{}, HasMore: HasMore(len(albums), offset, limit)}
	if offset >= len(albums) {
		return page
	}
	end := offset + limit
	if end > len(albums) {
		end = len(albums)
	}
	for _, s := range albums[offset:end] {
		page.Items = append(page.Items, s.Album.Clone())
	}
	return page
}
