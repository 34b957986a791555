package albums

import (
	"net/http"

	"github.com/albums-service/internal/core/services"
)

type AddPhotoHandler struct {
	service *services.AlbumService
}

func NewAddPhotoHandler(service *services.AlbumService) *AddPhotoHandler {
	return &AddPhotoHandler{service: service}
}

func (h *AddPhotoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req addPhotoRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	album, err := h.service.AddPhoto(r.Context(), r.PathValue("owner"), r.PathValue("albumID"), req.PhotoID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAlbumResponse(*album))
}

type RemovePhotoHandler struct {
	service *services.AlbumService
}

func NewRemovePhotoHandler(service *services.AlbumService) *RemovePhotoHandler {
	return &RemovePhotoHandler{service: service}
}

func (h *RemovePhotoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	album, err := h.service.RemovePhoto(r.Context(), r.PathValue("owner"), r.PathValue("albumID"), r.PathValue("photoID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAlbumResponse(*album))
}

type ListPhotosHandler struct {
	service *services.AlbumService
}

func NewListPhotosHandler(service *services.AlbumService) *ListPhotosHandler {
	return &ListPhotosHandler{service: service}
}

func (h *ListPhotosHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.ListPhotoMetadata(r.Context(), r.PathValue("owner"), r.PathValue("albumID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, photosResponse{Photos: records})
}
