package albums

import (
	"net/http"

	"github.com/albums-service/internal/core/services"
)

type GetAlbumHandler struct {
	service *services.AlbumService
}

func NewGetAlbumHandler(service *services.AlbumService) *GetAlbumHandler {
	return &GetAlbumHandler{service: service}
}

func (h *GetAlbumHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	album, err := h.service.GetAlbum(r.Context(), r.PathValue("owner"), r.PathValue("albumID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAlbumResponse(*album))
}

type UpdateAlbumHandler struct {
	service *services.AlbumService
}

func NewUpdateAlbumHandler(service *services.AlbumService) *UpdateAlbumHandler {
	return &UpdateAlbumHandler{service: service}
}

func (h *UpdateAlbumHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req updateAlbumRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	album, err := h.service.UpdateAlbum(r.Context(), r.PathValue("owner"), r.PathValue("albumID"), req.fields())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAlbumResponse(*album))
}

type DeleteAlbumHandler struct {
	service *services.AlbumService
}

func NewDeleteAlbumHandler(service *services.AlbumService) *DeleteAlbumHandler {
	return &DeleteAlbumHandler{service: service}
}

func (h *DeleteAlbumHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteAlbum(r.Context(), r.PathValue("owner"), r.PathValue("albumID")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Album successfully deleted"})
}
