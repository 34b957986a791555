package albums

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/albums-service/internal/core/services"
)

// NewRouter mounts every album endpoint plus the health check.
func NewRouter(service *services.AlbumService, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	mux.Handle("POST /photographers/{owner}/albums", NewCreateAlbumHandler(service))
	mux.Handle("GET /photographers/{owner}/albums", NewListAlbumsHandler(service))
	mux.Handle("GET /photographers/{owner}/albums/{albumID}", NewGetAlbumHandler(service))
	mux.Handle("PUT /photographers/{owner}/albums/{albumID}", NewUpdateAlbumHandler(service))
	mux.Handle("DELETE /photographers/{owner}/albums/{albumID}", NewDeleteAlbumHandler(service))
	mux.Handle("POST /photographers/{owner}/albums/{albumID}/photos", NewAddPhotoHandler(service))
	mux.Handle("GET /photographers/{owner}/albums/{albumID}/photos", NewListPhotosHandler(service))
	mux.Handle("DELETE /photographers/{owner}/albums/{albumID}/photos/{photoID}", NewRemovePhotoHandler(service))
	mux.Handle("GET /photographers/{owner}/albums/{albumID}/photos-archive", NewArchiveHandler(service, logger))
	mux.HandleFunc("GET /healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.Error("Unable to write healthcheck", "err", err)
		}
	})

	return logRequests(logger, mux)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func logRequests(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Debug("Request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
