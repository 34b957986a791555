package albums

import (
	"net/http"
	"strconv"

	"github.com/albums-service/internal/core/services"
)

type CreateAlbumHandler struct {
	service *services.AlbumService
}

func NewCreateAlbumHandler(service *services.AlbumService) *CreateAlbumHandler {
	return &CreateAlbumHandler{service: service}
}

func (h *CreateAlbumHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req createAlbumRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	album, err := h.service.CreateAlbum(r.Context(), r.PathValue("owner"), services.CreateAlbumRequest{
		Title:        req.Title,
		Description:  deref(req.Description),
		CoverPhotoID: deref(req.CoverPhotoID),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toAlbumResponse(*album))
}

type ListAlbumsHandler struct {
	service *services.AlbumService
}

func NewListAlbumsHandler(service *services.AlbumService) *ListAlbumsHandler {
	return &ListAlbumsHandler{service: service}
}

func (h *ListAlbumsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		writeBadRequest(w, "offset must be an integer")
		return
	}
	limit, err := queryInt(r, "limit", services.DefaultPageLimit)
	if err != nil {
		writeBadRequest(w, "limit must be an integer")
		return
	}

	page, err := h.service.ListAlbums(r.Context(), r.PathValue("owner"), offset, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	if len(page.Items) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	resp := albumPageResponse{
		Items:   make([]albumResponse, 0, len(page.Items)),
		HasMore: page.HasMore,
	}
	for _, a := range page.Items {
		resp.Items = append(resp.Items, toAlbumResponse(a))
	}
	writeJSON(w, http.StatusOK, resp)
}

func queryInt(r *http.Request, key string, defaultVal int) (int, error) {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal, nil
	}
	return strconv.Atoi(val)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
