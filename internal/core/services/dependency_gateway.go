package services

import (
	"context"
	"encoding/json"
	"errors"
)

// CheckResult is the normalized outcome of one existence check against a
// dependent service. Results are never cached or retried.
type CheckResult int

const (
	Confirmed CheckResult = iota
	NotFound
	Unavailable
	TimedOut
)

func (r CheckResult) String() string {
	switch r {
	case Confirmed:
		return "confirmed"
	case NotFound:
		return "not_found"
	case Unavailable:
		return "unavailable"
	case TimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

var ErrFetchFailed = errors.New("photo fetch failed")

// DependencyGateway talks to the photographer directory and the photo store.
// Implementations bound every call with a timeout and never panic or retry.
type DependencyGateway interface {
	CheckPhotographer(ctx context.Context, name string) CheckResult
	CheckPhoto(ctx context.Context, owner, photoID string) CheckResult
	FetchPhotoBytes(ctx context.Context, owner, photoID string) ([]byte, error)
	FetchPhotoMetadata(ctx context.Context, owner, photoID string) (json.RawMessage, error)
}
