package albums

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/albums-service/internal/core/services"
)

// ArchiveHandler streams an album as a zip. Once the first byte is written the
// status is fixed at 200; later failures are only logged.
type ArchiveHandler struct {
	service *services.AlbumService
	logger  *slog.Logger
}

func NewArchiveHandler(service *services.AlbumService, logger *slog.Logger) *ArchiveHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ArchiveHandler{service: service, logger: logger}
}

func (h *ArchiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	owner, albumID := r.PathValue("owner"), r.PathValue("albumID")

	archive, err := h.service.OpenArchive(r.Context(), owner, albumID)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", archive.Filename))
	w.WriteHeader(http.StatusOK)

	n, err := archive.Stream(r.Context(), w)
	if err != nil {
		h.logger.Error("Archive stream aborted", "owner", owner, "album_id", albumID, "entries", n, "error", err)
		return
	}
	h.logger.Info("Archive delivered", "owner", owner, "album_id", albumID, "entries", n, "photos", len(archive.PhotoIDs))
}
