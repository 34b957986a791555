package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albums-service/internal/core/domain"
)

func TestHasMore(t *testing.T) {
	assert.True(t, domain.HasMore(2, 0, 1))
	assert.False(t, domain.HasMore(1, 0, 10))
	assert.False(t, domain.HasMore(4, 2, 2))
	assert.True(t, domain.HasMore(5, 2, 2))
}

func TestAlbum_PhotoMembershipIsUnique(t *testing.T) {
	var album domain.Album

	assert.True(t, album.AddPhoto("p1"))
	assert.False(t, album.AddPhoto("p1"))
	assert.True(t, album.AddPhoto("p2"))
	assert.Equal(t, []string{"p1", "p2"}, album.Photos)

	assert.False(t, album.RemovePhoto("missing"))
	assert.True(t, album.RemovePhoto("p1"))
	assert.Equal(t, []string{"p2"}, album.Photos)
}

func TestAlbum_CloneDoesNotSharePhotos(t *testing.T) {
	album := domain.Album{Photos: []string{"p1"}}
	clone := album.Clone()
	clone.AddPhoto("p2")

	assert.Equal(t, []string{"p1"}, album.Photos)
}

func TestAlbumFields(t *testing.T) {
	empty := ""
	title := "Holidays"

	assert.True(t, domain.AlbumFields{}.Empty())
	assert.True(t, domain.AlbumFields{Title: &empty, Description: &empty}.Empty())

	fields := domain.AlbumFields{Title: &title, Description: &empty}
	require.False(t, fields.Empty())
	assert.Equal(t, map[string]string{"title": "Holidays"}, fields.Supplied())

	album := domain.Album{Title: "old", Description: "kept"}
	fields.ApplyTo(&album)
	assert.Equal(t, "Holidays", album.Title)
	assert.Equal(t, "kept", album.Description)
}

func TestNewestFirstAndWindow(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	albums := []domain.Sequenced{
		{Album: domain.Album{AlbumID: "a", CreatedAt: base}, Seq: 1},
		{Album: domain.Album{AlbumID: "b", CreatedAt: base.Add(time.Hour)}, Seq: 2},
		{Album: domain.Album{AlbumID: "c", CreatedAt: base}, Seq: 3},
	}

	domain.NewestFirst(albums)

	var ids []string
	for _, a := range albums {
		ids = append(ids, a.Album.AlbumID)
	}
	assert.Equal(t, []string{"b", "a", "c"}, ids)

	page := domain.Window(albums, 1, 1)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "a", page.Items[0].AlbumID)
	assert.True(t, page.HasMore)

	page = domain.Window(albums, 5, 10)
	assert.Empty(t, page.Items)
	assert.NotNil(t, page.Items)
	assert.False(t, page.HasMore)
}
