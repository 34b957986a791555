package services

import (
	"errors"
	"fmt"
)

var (
	ErrPhotographerNotFound  = errors.New("photographer not found")
	ErrPhotoNotFound         = errors.New("photo not found")
	ErrAlbumNotFound         = errors.New("album not found")
	ErrAlbumOrPhotoNotFound  = errors.New("album not found or photo not present")
	ErrPhotoNotInAlbum       = fmt.Errorf("%w: photo not in album", ErrAlbumOrPhotoNotFound)
	ErrAlbumEmptyOrNotFound  = errors.New("album not found or no photos in album")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrDependencyTimeout     = errors.New("dependency timeout")
	ErrNoFieldsToUpdate      = errors.New("at least one field must be updated")
	ErrInvalidRequest        = errors.New("invalid request")
	ErrInternal              = errors.New("internal error")
)

// DependencyError records which dependent service failed a check and how.
// It unwraps to ErrDependencyUnavailable or ErrDependencyTimeout.
type DependencyError struct {
	Service string
	Err     error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s service: %v", e.Service, e.Err)
}

func (e *DependencyError) Unwrap() error {
	return e.Err
}
