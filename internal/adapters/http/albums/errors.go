package albums

import (
	"errors"
	"net/http"
	"strings"

	"github.com/albums-service/internal/core/services"
)

// statusFor is the single decision table from an operation error to the
// status code and detail message returned to the client.
func statusFor(err error) (int, string) {
	var depErr *services.DependencyError
	switch {
	case errors.As(err, &depErr) && errors.Is(err, services.ErrDependencyTimeout):
		return http.StatusGatewayTimeout, serviceName(depErr.Service) + " Service Timeout"
	case errors.As(err, &depErr):
		return http.StatusServiceUnavailable, serviceName(depErr.Service) + " Service Unavailable"
	case errors.Is(err, services.ErrPhotographerNotFound):
		return http.StatusNotFound, "Photographer Not Found"
	case errors.Is(err, services.ErrPhotoNotFound):
		return http.StatusNotFound, "Photo Not Found"
	case errors.Is(err, services.ErrAlbumNotFound):
		return http.StatusNotFound, "Album Not Found"
	case errors.Is(err, services.ErrPhotoNotInAlbum):
		return http.StatusNotFound, "Photo Not Present in Album"
	case errors.Is(err, services.ErrAlbumOrPhotoNotFound):
		return http.StatusNotFound, "Album Not Found or Photo Not Present"
	case errors.Is(err, services.ErrAlbumEmptyOrNotFound):
		return http.StatusNotFound, "Album Not Found or No Photos in Album"
	case errors.Is(err, services.ErrNoFieldsToUpdate):
		return http.StatusBadRequest, "At least one field must be updated"
	case errors.Is(err, services.ErrInvalidRequest):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, "Internal Server Error"
	}
}

func serviceName(service string) string {
	if service == "" {
		return "Dependency"
	}
	return strings.ToUpper(service[:1]) + service[1:]
}
