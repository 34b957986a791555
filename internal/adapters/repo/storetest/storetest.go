// Package storetest holds the behaviour every AlbumStore backend must share.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albums-service/internal/core/domain"
	"github.com/albums-service/internal/core/services"
)

// Factory returns an empty store stamping creation times from clock.
type Factory func(t *testing.T, clock services.Clock) services.AlbumStore

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func ptr(s string) *string { return &s }

// Run exercises store against the shared contract. Each subtest gets a fresh store.
func Run(t *testing.T, newStore Factory) {
	setup := func(t *testing.T) (services.AlbumStore, *services.FakeClock) {
		clock := services.NewFakeClock(epoch)
		return newStore(t, clock), clock
	}
	ctx := context.Background()

	t.Run("create assigns id and empty photo list", func(t *testing.T) {
		store, _ := setup(t)

		album, err := store.Create(ctx, "ansel", "Yosemite", "valley", "p1")
		require.NoError(t, err)
		assert.NotEmpty(t, album.AlbumID)
		assert.Equal(t, "ansel", album.Owner)
		assert.Equal(t, "Yosemite", album.Title)
		assert.Equal(t, "valley", album.Description)
		assert.Equal(t, "p1", album.CoverPhotoID)
		assert.True(t, album.CreatedAt.Equal(epoch))
		assert.Empty(t, album.Photos)

		other, err := store.Create(ctx, "ansel", "Yosemite", "", "")
		require.NoError(t, err)
		assert.NotEqual(t, album.AlbumID, other.AlbumID)
	})

	t.Run("get is scoped to the owner", func(t *testing.T) {
		store, _ := setup(t)
		album, err := store.Create(ctx, "ansel", "Yosemite", "", "")
		require.NoError(t, err)

		got, err := store.GetByID(ctx, "ansel", album.AlbumID)
		require.NoError(t, err)
		assert.Equal(t, album.AlbumID, got.AlbumID)

		_, err = store.GetByID(ctx, "dorothea", album.AlbumID)
		assert.ErrorIs(t, err, services.ErrNotFound)

		_, err = store.GetByID(ctx, "ansel", "missing")
		assert.ErrorIs(t, err, services.ErrNotFound)
	})

	t.Run("page is newest first with insertion order on ties", func(t *testing.T) {
		store, clock := setup(t)
		var ids []string
		for i := 0; i < 3; i++ {
			a, err := store.Create(ctx, "ansel", fmt.Sprintf("album-%d", i), "", "")
			require.NoError(t, err)
			ids = append(ids, a.AlbumID)
			clock.Advance(time.Minute)
		}
		// two albums stamped at the same instant
		tieA, err := store.Create(ctx, "ansel", "tie-a", "", "")
		require.NoError(t, err)
		tieB, err := store.Create(ctx, "ansel", "tie-b", "", "")
		require.NoError(t, err)
		_, err = store.Create(ctx, "dorothea", "elsewhere", "", "")
		require.NoError(t, err)

		page, err := store.GetPage(ctx, "ansel", 0, 10)
		require.NoError(t, err)
		assert.False(t, page.HasMore)
		assert.Equal(t, []string{tieA.AlbumID, tieB.AlbumID, ids[2], ids[1], ids[0]}, albumIDs(page))
	})

	t.Run("page window and has_more", func(t *testing.T) {
		store, clock := setup(t)
		for i := 0; i < 25; i++ {
			_, err := store.Create(ctx, "ansel", fmt.Sprintf("album-%d", i), "", "")
			require.NoError(t, err)
			clock.Advance(time.Second)
		}

		page, err := store.GetPage(ctx, "ansel", 10, 10)
		require.NoError(t, err)
		assert.Len(t, page.Items, 10)
		assert.True(t, page.HasMore)
		assert.Equal(t, "album-14", page.Items[0].Title)

		page, err = store.GetPage(ctx, "ansel", 20, 10)
		require.NoError(t, err)
		assert.Len(t, page.Items, 5)
		assert.False(t, page.HasMore)

		page, err = store.GetPage(ctx, "ansel", 40, 10)
		require.NoError(t, err)
		assert.Empty(t, page.Items)
		assert.False(t, page.HasMore)

		page, err = store.GetPage(ctx, "nobody", 0, 10)
		require.NoError(t, err)
		assert.Empty(t, page.Items)
	})

	t.Run("update applies only supplied fields", func(t *testing.T) {
		store, _ := setup(t)
		album, err := store.Create(ctx, "ansel", "Yosemite", "valley", "p1")
		require.NoError(t, err)

		updated, err := store.Update(ctx, "ansel", album.AlbumID, domain.AlbumFields{Title: ptr("Half Dome"), Description: ptr("")})
		require.NoError(t, err)
		assert.Equal(t, "Half Dome", updated.Title)
		assert.Equal(t, "valley", updated.Description)
		assert.Equal(t, "p1", updated.CoverPhotoID)
		assert.True(t, updated.CreatedAt.Equal(album.CreatedAt))

		got, err := store.GetByID(ctx, "ansel", album.AlbumID)
		require.NoError(t, err)
		assert.Equal(t, "Half Dome", got.Title)

		_, err = store.Update(ctx, "ansel", album.AlbumID, domain.AlbumFields{})
		assert.ErrorIs(t, err, services.ErrNoFieldsToUpdate)

		_, err = store.Update(ctx, "ansel", "missing", domain.AlbumFields{Title: ptr("x")})
		assert.ErrorIs(t, err, services.ErrNotFound)
	})

	t.Run("delete reports whether a record went away", func(t *testing.T) {
		store, _ := setup(t)
		album, err := store.Create(ctx, "ansel", "Yosemite", "", "")
		require.NoError(t, err)

		deleted, err := store.Delete(ctx, "dorothea", album.AlbumID)
		require.NoError(t, err)
		assert.False(t, deleted)

		deleted, err = store.Delete(ctx, "ansel", album.AlbumID)
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = store.Delete(ctx, "ansel", album.AlbumID)
		require.NoError(t, err)
		assert.False(t, deleted)

		_, err = store.GetByID(ctx, "ansel", album.AlbumID)
		assert.ErrorIs(t, err, services.ErrNotFound)
	})

	t.Run("add photo is idempotent and keeps order", func(t *testing.T) {
		store, _ := setup(t)
		album, err := store.Create(ctx, "ansel", "Yosemite", "", "")
		require.NoError(t, err)

		for _, id := range []string{"p2", "p1", "p2", "p3"} {
			_, err = store.AddPhoto(ctx, "ansel", album.AlbumID, id)
			require.NoError(t, err)
		}

		ids, err := store.ListPhotoIDs(ctx, "ansel", album.AlbumID)
		require.NoError(t, err)
		assert.Equal(t, []string{"p2", "p1", "p3"}, ids)

		_, err = store.AddPhoto(ctx, "ansel", "missing", "p1")
		assert.ErrorIs(t, err, services.ErrNotFound)
	})

	t.Run("remove photo tells absent album from absent member", func(t *testing.T) {
		store, _ := setup(t)
		album, err := store.Create(ctx, "ansel", "Yosemite", "", "")
		require.NoError(t, err)
		_, err = store.AddPhoto(ctx, "ansel", album.AlbumID, "p1")
		require.NoError(t, err)
		_, err = store.AddPhoto(ctx, "ansel", album.AlbumID, "p2")
		require.NoError(t, err)

		updated, removed, err := store.RemovePhoto(ctx, "ansel", album.AlbumID, "p1")
		require.NoError(t, err)
		assert.True(t, removed)
		assert.Equal(t, []string{"p2"}, updated.Photos)

		_, removed, err = store.RemovePhoto(ctx, "ansel", album.AlbumID, "p1")
		require.NoError(t, err)
		assert.False(t, removed)

		_, _, err = store.RemovePhoto(ctx, "ansel", "missing", "p2")
		assert.ErrorIs(t, err, services.ErrNotFound)

		ids, err := store.ListPhotoIDs(ctx, "ansel", album.AlbumID)
		require.NoError(t, err)
		assert.Equal(t, []string{"p2"}, ids)
	})

	t.Run("list photo ids of unknown album", func(t *testing.T) {
		store, _ := setup(t)
		_, err := store.ListPhotoIDs(ctx, "ansel", "missing")
		assert.ErrorIs(t, err, services.ErrNotFound)
	})

	t.Run("concurrent adds are not lost", func(t *testing.T) {
		store, _ := setup(t)
		album, err := store.Create(ctx, "ansel", "Yosemite", "", "")
		require.NoError(t, err)

		var wg sync.WaitGroup
		errs := make(chan error, 16)
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				if _, err := store.AddPhoto(ctx, "ansel", album.AlbumID, fmt.Sprintf("p%d", i)); err != nil {
					errs <- err
				}
			}(i)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		ids, err := store.ListPhotoIDs(ctx, "ansel", album.AlbumID)
		require.NoError(t, err)
		assert.Len(t, ids, 16)
	})
}

func albumIDs(page domain.Page) []string {
	ids := make([]string, 0, len(page.Items))
	for _, a := range page.Items {
		ids = append(ids, a.AlbumID)
	}
	return ids
}
