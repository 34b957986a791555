package albums_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albums-service/internal/adapters/http/albums"
	"github.com/albums-service/internal/adapters/repo/memory"
	"github.com/albums-service/internal/core/services"
)

type stubGateway struct {
	mu           sync.Mutex
	photographer services.CheckResult
	photos       map[string]string
}

func (g *stubGateway) setPhotographer(res services.CheckResult) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.photographer = res
}

func (g *stubGateway) CheckPhotographer(ctx context.Context, name string) services.CheckResult {
	g.mu.Lock()
	defer g.mu.Unlock()
	if name != "ansel" {
		return services.NotFound
	}
	return g.photographer
}

func (g *stubGateway) CheckPhoto(ctx context.Context, owner, photoID string) services.CheckResult {
	if photoID == "slow" {
		return services.TimedOut
	}
	if _, ok := g.photos[photoID]; ok {
		return services.Confirmed
	}
	return services.NotFound
}

func (g *stubGateway) FetchPhotoBytes(ctx context.Context, owner, photoID string) ([]byte, error) {
	if data, ok := g.photos[photoID]; ok && data != "" {
		return []byte(data), nil
	}
	return nil, services.ErrFetchFailed
}

func (g *stubGateway) FetchPhotoMetadata(ctx context.Context, owner, photoID string) (json.RawMessage, error) {
	if data, ok := g.photos[photoID]; ok && data != "" {
		return json.RawMessage(fmt.Sprintf(`{"photo_id":%q}`, photoID)), nil
	}
	return nil, services.ErrFetchFailed
}

type harness struct {
	srv  *httptest.Server
	deps *stubGateway
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	deps := &stubGateway{
		photographer: services.Confirmed,
		// an empty body marks a photo that exists but cannot be fetched
		photos: map[string]string{"p1": "one", "p2": "", "p3": "three"},
	}
	clock := services.NewFakeClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	svc := services.NewAlbumService(
		memory.NewAlbumStore(clock),
		deps,
		services.NewArchiveBuilder(deps, 2, logger),
		services.NewMetadataCollector(deps, 2, logger),
		logger,
	)
	srv := httptest.NewServer(albums.NewRouter(svc, logger))
	t.Cleanup(srv.Close)
	return &harness{srv: srv, deps: deps}
}

func (h *harness) do(t *testing.T, method, path, body string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, h.srv.URL+path, reader)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func (h *harness) createAlbum(t *testing.T, title string) string {
	t.Helper()
	resp := h.do(t, http.MethodPost, "/photographers/ansel/albums", fmt.Sprintf(`{"title":%q}`, title))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode(t, resp)["album_id"].(string)
}

func TestCreateAlbum(t *testing.T) {
	h := newHarness(t)

	resp := h.do(t, http.MethodPost, "/photographers/ansel/albums", `{"title":"Yosemite","description":"valley"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, "ansel", body["display_name"])
	assert.Equal(t, "Yosemite", body["title"])
	assert.Equal(t, "valley", body["description"])
	assert.Nil(t, body["cover_photo_id"])
	assert.Equal(t, "2024-03-01T12:00:00Z", body["created_at"])
	assert.Equal(t, []any{}, body["photos"])

	resp = h.do(t, http.MethodPost, "/photographers/ansel/albums", `{"title":""}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = h.do(t, http.MethodPost, "/photographers/ansel/albums", `not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = h.do(t, http.MethodPost, "/photographers/nobody/albums", `{"title":"x"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Photographer Not Found", decode(t, resp)["detail"])
}

func TestDependencyFailuresMapToGatewayStatuses(t *testing.T) {
	h := newHarness(t)

	h.deps.setPhotographer(services.Unavailable)
	resp := h.do(t, http.MethodGet, "/photographers/ansel/albums", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "Photographer Service Unavailable", decode(t, resp)["detail"])

	h.deps.setPhotographer(services.TimedOut)
	resp = h.do(t, http.MethodGet, "/photographers/ansel/albums", "")
	assert.Equal(t, http.StatusGatewayTimeout, resp.StatusCode)
	assert.Equal(t, "Photographer Service Timeout", decode(t, resp)["detail"])
}

func TestPhotoCheckTimeoutIsGatewayTimeout(t *testing.T) {
	h := newHarness(t)
	id := h.createAlbum(t, "Yosemite")
	photos := "/photographers/ansel/albums/" + id + "/photos"

	resp := h.do(t, http.MethodPost, photos, `{"photo_id":"slow"}`)
	assert.Equal(t, http.StatusGatewayTimeout, resp.StatusCode)
	assert.Equal(t, "Photo Service Timeout", decode(t, resp)["detail"])

	resp = h.do(t, http.MethodDelete, photos+"/slow", "")
	assert.Equal(t, http.StatusGatewayTimeout, resp.StatusCode)
	assert.Equal(t, "Photo Service Timeout", decode(t, resp)["detail"])
}

func TestOversizedBodyIsRejected(t *testing.T) {
	h := newHarness(t)
	huge := fmt.Sprintf(`{"title":%q}`, strings.Repeat("x", 128<<10))

	resp := h.do(t, http.MethodPost, "/photographers/ansel/albums", huge)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	assert.Equal(t, "request body too large", decode(t, resp)["detail"])

	id := h.createAlbum(t, "Yosemite")
	resp = h.do(t, http.MethodPut, "/photographers/ansel/albums/"+id, huge)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)

	resp = h.do(t, http.MethodPost, "/photographers/ansel/albums/"+id+"/photos",
		fmt.Sprintf(`{"photo_id":%q}`, strings.Repeat("p", 128<<10)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)

	resp = h.do(t, http.MethodGet, "/photographers/ansel/albums/"+id, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Yosemite", decode(t, resp)["title"])
}

func TestListAlbums(t *testing.T) {
	h := newHarness(t)

	resp := h.do(t, http.MethodGet, "/photographers/ansel/albums", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	for i := 0; i < 12; i++ {
		h.createAlbum(t, fmt.Sprintf("album-%d", i))
	}

	resp = h.do(t, http.MethodGet, "/photographers/ansel/albums", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode(t, resp)
	assert.Len(t, body["items"], 10)
	assert.Equal(t, true, body["has_more"])

	resp = h.do(t, http.MethodGet, "/photographers/ansel/albums?offset=10&limit=5", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = decode(t, resp)
	assert.Len(t, body["items"], 2)
	assert.Equal(t, false, body["has_more"])

	for _, q := range []string{"offset=-1", "limit=0", "limit=101", "limit=abc", "offset=x"} {
		resp = h.do(t, http.MethodGet, "/photographers/ansel/albums?"+q, "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, q)
	}
}

func TestAlbumLifecycle(t *testing.T) {
	h := newHarness(t)
	id := h.createAlbum(t, "Yosemite")
	base := "/photographers/ansel/albums/" + id

	resp := h.do(t, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, id, decode(t, resp)["album_id"])

	resp = h.do(t, http.MethodPut, base, `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "At least one field must be updated", decode(t, resp)["detail"])

	resp = h.do(t, http.MethodPut, base, `{"cover_photo_id":"p1"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, "p1", body["cover_photo_id"])
	assert.Equal(t, "Yosemite", body["title"])

	resp = h.do(t, http.MethodDelete, base, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Album successfully deleted", decode(t, resp)["message"])

	resp = h.do(t, http.MethodGet, base, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Album Not Found", decode(t, resp)["detail"])

	resp = h.do(t, http.MethodDelete, base, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPhotoMembership(t *testing.T) {
	h := newHarness(t)
	id := h.createAlbum(t, "Yosemite")
	photos := "/photographers/ansel/albums/" + id + "/photos"

	resp := h.do(t, http.MethodGet, photos, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Album Not Found or No Photos in Album", decode(t, resp)["detail"])

	resp = h.do(t, http.MethodPost, photos, `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = h.do(t, http.MethodPost, photos, `{"photo_id":"ghost"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Photo Not Found", decode(t, resp)["detail"])

	for _, p := range []string{"p1", "p1", "p2", "p3"} {
		resp = h.do(t, http.MethodPost, photos, fmt.Sprintf(`{"photo_id":%q}`, p))
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}
	assert.Equal(t, []any{"p1", "p2", "p3"}, decode(t, resp)["photos"])

	resp = h.do(t, http.MethodGet, photos, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode(t, resp)["photos"], 2)

	resp = h.do(t, http.MethodDelete, photos+"/p1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []any{"p2", "p3"}, decode(t, resp)["photos"])

	resp = h.do(t, http.MethodDelete, photos+"/p1", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Photo Not Present in Album", decode(t, resp)["detail"])

	resp = h.do(t, http.MethodDelete, "/photographers/ansel/albums/missing/photos/p1", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Album Not Found or Photo Not Present", decode(t, resp)["detail"])
}

func TestPhotosArchive(t *testing.T) {
	h := newHarness(t)
	id := h.createAlbum(t, "Yosemite")
	base := "/photographers/ansel/albums/" + id

	resp := h.do(t, http.MethodGet, base+"/photos-archive", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	for _, p := range []string{"p1", "p2", "p3"} {
		resp = h.do(t, http.MethodPost, base+"/photos", fmt.Sprintf(`{"photo_id":%q}`, p))
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp = h.do(t, http.MethodGet, base+"/photos-archive", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/zip", resp.Header.Get("Content-Type"))
	assert.Equal(t, "attachment; filename=album_"+id+".zip", resp.Header.Get("Content-Disposition"))

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)
	assert.Equal(t, "p1.jpg", zr.File[0].Name)
	assert.Equal(t, "p3.jpg", zr.File[1].Name)
}

func TestHealthcheck(t *testing.T) {
	h := newHarness(t)
	resp := h.do(t, http.MethodGet, "/healthcheck", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "OK", string(body))
}
