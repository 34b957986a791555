package services_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/albums-service/internal/adapters/repo/memory"
	"github.com/albums-service/internal/core/domain"
	"github.com/albums-service/internal/core/services"
)

var testEpoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeGateway answers checks from fixed tables. Unknown names are NotFound.
type fakeGateway struct {
	mu            sync.Mutex
	photographers map[string]services.CheckResult
	photos        map[string]services.CheckResult
	bytes         map[string][]byte
	metadata      map[string]json.RawMessage
	checks        int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		photographers: map[string]services.CheckResult{"ansel": services.Confirmed},
		photos:        map[string]services.CheckResult{},
		bytes:         map[string][]byte{},
		metadata:      map[string]json.RawMessage{},
	}
}

func (g *fakeGateway) withPhoto(id string, data string) *fakeGateway {
	g.photos[id] = services.Confirmed
	g.bytes[id] = []byte(data)
	g.metadata[id] = json.RawMessage(fmt.Sprintf(`{"photo_id":%q}`, id))
	return g
}

func (g *fakeGateway) CheckPhotographer(ctx context.Context, name string) services.CheckResult {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.checks++
	if res, ok := g.photographers[name]; ok {
		return res
	}
	return services.NotFound
}

func (g *fakeGateway) CheckPhoto(ctx context.Context, owner, photoID string) services.CheckResult {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.checks++
	if res, ok := g.photos[photoID]; ok {
		return res
	}
	return services.NotFound
}

func (g *fakeGateway) FetchPhotoBytes(ctx context.Context, owner, photoID string) ([]byte, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if data, ok := g.bytes[photoID]; ok {
		return data, nil
	}
	return nil, fmt.Errorf("%w: %s", services.ErrFetchFailed, photoID)
}

func (g *fakeGateway) FetchPhotoMetadata(ctx context.Context, owner, photoID string) (json.RawMessage, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if meta, ok := g.metadata[photoID]; ok {
		return meta, nil
	}
	return nil, fmt.Errorf("%w: %s", services.ErrFetchFailed, photoID)
}

func (g *fakeGateway) checkCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.checks
}

// countingStore records how often the orchestrator reached the store.
type countingStore struct {
	services.AlbumStore
	calls atomic.Int32
	fail  error
}

func newCountingStore() *countingStore {
	return &countingStore{AlbumStore: memory.NewAlbumStore(services.NewFakeClock(testEpoch))}
}

func (s *countingStore) hit() error {
	s.calls.Add(1)
	return s.fail
}

func (s *countingStore) Create(ctx context.Context, owner, title, description, coverPhotoID string) (*domain.Album, error) {
	if err := s.hit(); err != nil {
		return nil, err
	}
	return s.AlbumStore.Create(ctx, owner, title, description, coverPhotoID)
}

func (s *countingStore) GetPage(ctx context.Context, owner string, offset, limit int) (domain.Page, error) {
	if err := s.hit(); err != nil {
		return domain.Page{}, err
	}
	return s.AlbumStore.GetPage(ctx, owner, offset, limit)
}

func (s *countingStore) GetByID(ctx context.Context, owner, albumID string) (*domain.Album, error) {
	if err := s.hit(); err != nil {
		return nil, err
	}
	return s.AlbumStore.GetByID(ctx, owner, albumID)
}

func (s *countingStore) Update(ctx context.Context, owner, albumID string, fields domain.AlbumFields) (*domain.Album, error) {
	if err := s.hit(); err != nil {
		return nil, err
	}
	return s.AlbumStore.Update(ctx, owner, albumID, fields)
}

func (s *countingStore) Delete(ctx context.Context, owner, albumID string) (bool, error) {
	if err := s.hit(); err != nil {
		return false, err
	}
	return s.AlbumStore.Delete(ctx, owner, albumID)
}

func (s *countingStore) AddPhoto(ctx context.Context, owner, albumID, photoID string) (*domain.Album, error) {
	if err := s.hit(); err != nil {
		return nil, err
	}
	return s.AlbumStore.AddPhoto(ctx, owner, albumID, photoID)
}

func (s *countingStore) RemovePhoto(ctx context.Context, owner, albumID, photoID string) (*domain.Album, bool, error) {
	if err := s.hit(); err != nil {
		return nil, false, err
	}
	return s.AlbumStore.RemovePhoto(ctx, owner, albumID, photoID)
}

func (s *countingStore) ListPhotoIDs(ctx context.Context, owner, albumID string) ([]string, error) {
	if err := s.hit(); err != nil {
		return nil, err
	}
	return s.AlbumStore.ListPhotoIDs(ctx, owner, albumID)
}

func newService(store services.AlbumStore, deps services.DependencyGateway) *services.AlbumService {
	logger := discardLogger()
	return services.NewAlbumService(
		store,
		deps,
		services.NewArchiveBuilder(deps, 2, logger),
		services.NewMetadataCollector(deps, 2, logger),
		logger,
	)
}
