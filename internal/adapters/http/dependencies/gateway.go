package dependencies

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/albums-service/internal/core/services"
)

const (
	DefaultTimeout       = 5 * time.Second
	DefaultMaxPhotoBytes = 50 << 20

	drainLimit = 64 << 10
)

type Config struct {
	PhotographerURL string
	PhotoURL        string
	// Timeout bounds each outbound call, body included.
	Timeout       time.Duration
	MaxPhotoBytes int64
}

// HTTPGateway implements services.DependencyGateway against the photographer
// and photo services. It never retries.
type HTTPGateway struct {
	cfg        Config
	httpClient *http.Client
}

func NewHTTPGateway(cfg Config, client *http.Client) *HTTPGateway {
	if client == nil {
		client = http.DefaultClient
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxPhotoBytes <= 0 {
		cfg.MaxPhotoBytes = DefaultMaxPhotoBytes
	}
	return &HTTPGateway{cfg: cfg, httpClient: client}
}

func (g *HTTPGateway) photographerURL(name string) string {
	return fmt.Sprintf("%s/photographer/%s", g.cfg.PhotographerURL, url.PathEscape(name))
}

func (g *HTTPGateway) photoURL(owner, photoID string) string {
	return fmt.Sprintf("%s/photo/%s/%s", g.cfg.PhotoURL, url.PathEscape(owner), url.PathEscape(photoID))
}

func (g *HTTPGateway) CheckPhotographer(ctx context.Context, name string) services.CheckResult {
	return g.check(ctx, g.photographerURL(name))
}

func (g *HTTPGateway) CheckPhoto(ctx context.Context, owner, photoID string) services.CheckResult {
	return g.check(ctx, g.photoURL(owner, photoID))
}

func (g *HTTPGateway) FetchPhotoBytes(ctx context.Context, owner, photoID string) ([]byte, error) {
	return g.fetch(ctx, g.photoURL(owner, photoID), g.cfg.MaxPhotoBytes)
}

func (g *HTTPGateway) FetchPhotoMetadata(ctx context.Context, owner, photoID string) (json.RawMessage, error) {
	body, err := g.fetch(ctx, g.photoURL(owner, photoID)+"/attributes", g.cfg.MaxPhotoBytes)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: metadata for %s is not valid JSON", services.ErrFetchFailed, photoID)
	}
	return json.RawMessage(body), nil
}

func (g *HTTPGateway) check(ctx context.Context, target string) services.CheckResult {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	resp, err := g.get(ctx, target)
	if err != nil {
		if isTimeout(err) {
			return services.TimedOut
		}
		return services.Unavailable
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, drainLimit))

	return classify(resp.StatusCode)
}

// classify maps a dependency status code onto a check result.
func classify(status int) services.CheckResult {
	switch {
	case status >= 200 && status < 300:
		return services.Confirmed
	case status == http.StatusNotFound:
		return services.NotFound
	default:
		return services.Unavailable
	}
}

func (g *HTTPGateway) fetch(ctx context.Context, target string, limit int64) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	resp, err := g.get(ctx, target)
	if err != nil {
		return nil, fetchError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, drainLimit))
		return nil, fmt.Errorf("%w: unexpected status code: %d", services.ErrFetchFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fetchError(fmt.Errorf("reading body: %w", err))
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", services.ErrFetchFailed, limit)
	}
	return body, nil
}

func (g *HTTPGateway) get(ctx context.Context, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("making request: %w", err)
	}
	return resp, nil
}

func fetchError(err error) error {
	if isTimeout(err) {
		return fmt.Errorf("%w: %w: %w", services.ErrFetchFailed, services.ErrDependencyTimeout, err)
	}
	return fmt.Errorf("%w: %w", services.ErrFetchFailed, err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
