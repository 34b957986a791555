package albums

import (
	"encoding/json"
	"time"

	"github.com/albums-service/internal/core/domain"
)

type albumResponse struct {
	AlbumID      string   `json:"album_id"`
	DisplayName  string   `json:"display_name"`
	Title        string   `json:"title"`
	Description  *string  `json:"description"`
	CoverPhotoID *string  `json:"cover_photo_id"`
	CreatedAt    string   `json:"created_at"`
	Photos       []string `json:"photos"`
}

func toAlbumResponse(a domain.Album) albumResponse {
	photos := a.Photos
	if photos == nil {
		photos = []string{}
	}
	return albumResponse{
		AlbumID:      a.AlbumID,
		DisplayName:  a.Owner,
		Title:        a.Title,
		Description:  optional(a.Description),
		CoverPhotoID: optional(a.CoverPhotoID),
		CreatedAt:    a.CreatedAt.UTC().Format(time.RFC3339),
		Photos:       photos,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

type albumPageResponse struct {
	Items   []albumResponse `json:"items"`
	HasMore bool            `json:"has_more"`
}

type createAlbumRequest struct {
	Title        string  `json:"title"`
	Description  *string `json:"description"`
	CoverPhotoID *string `json:"cover_photo_id"`
}

type updateAlbumRequest struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	CoverPhotoID *string `json:"cover_photo_id"`
}

func (r updateAlbumRequest) fields() domain.AlbumFields {
	return domain.AlbumFields{
		Title:        r.Title,
		Description:  r.Description,
		CoverPhotoID: r.CoverPhotoID,
	}
}

type addPhotoRequest struct {
	PhotoID string `json:"photo_id"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type photosResponse struct {
	Photos []json.RawMessage `json:"photos"`
}
