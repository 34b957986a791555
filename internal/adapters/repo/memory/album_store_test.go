package memory_test

import (
	"testing"

	"github.com/albums-service/internal/adapters/repo/memory"
	"github.com/albums-service/internal/adapters/repo/storetest"
	"github.com/albums-service/internal/core/services"
)

func TestAlbumStore_Contract(t *testing.T) {
	storetest.Run(t, func(t *testing.T, clock services.Clock) services.AlbumStore {
		return memory.NewAlbumStore(clock)
	})
}
