package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	DefaultEndpoint = "https://nominatim.openstreetmap.org/search"
	DefaultTimeout  = 10 * time.Second

	defaultUserAgent = "crimemap-geo/1.0"
)

// Coordinate is one resolved geographic position.
type Coordinate struct {
	Lat float64
	Lon float64
}

// Geocoder resolves a free-form place name to a coordinate. Implementations
// return ok=false for unresolvable names and may swallow transient errors
// the same way; only context cancellation is surfaced as an error.
type Geocoder interface {
	Geocode(ctx context.Context, name string) (Coordinate, bool, error)
}

// NominatimOptions configures the Nominatim-backed geocoder.
type NominatimOptions struct {
	Endpoint   string
	UserAgent  string
	Timeout    time.Duration
	HTTPClient *http.Client

	// RequestsPerSecond throttles outbound lookups through a shared token
	// bucket. The public Nominatim instance allows roughly one request per
	// second.
	RequestsPerSecond float64
}

// Nominatim geocodes through the Nominatim search API. All callers share
// one blocking rate limiter, so the same instance stays safe under a future
// concurrent pipeline.
type Nominatim struct {
	endpoint  string
	userAgent string
	timeout   time.Duration
	client    *http.Client
	limiter   *rate.Limiter
	logger    zerolog.Logger
}

func NewNominatim(logger zerolog.Logger, opts NominatimOptions) *Nominatim {
	endpoint := strings.TrimSpace(opts.Endpoint)
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	userAgent := strings.TrimSpace(opts.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}

	return &Nominatim{
		endpoint:  endpoint,
		userAgent: userAgent,
		timeout:   timeout,
		client:    client,
		limiter:   rate.NewLimiter(rate.Limit(rps), 1),
		logger:    logger,
	}
}

type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Geocode resolves one place name. Lookup failures other than context
// cancellation degrade to "not found" so that a flaky upstream drops single
// items instead of aborting runs.
func (n *Nominatim) Geocode(ctx context.Context, name string) (Coordinate, bool, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return Coordinate{}, false, nil
	}

	if err := n.limiter.Wait(ctx); err != nil {
		return Coordinate{}, false, err
	}

	reqCtx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	query := url.Values{}
	query.Set("q", trimmed)
	query.Set("format", "json")
	query.Set("limit", "1")

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, n.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return Coordinate{}, false, fmt.Errorf("build geocode request: %w", err)
	}
	req.Header.Set("User-Agent", n.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return Coordinate{}, false, ctx.Err()
		}
		n.logger.Debug().Err(err).Str("name", trimmed).Msg("geocode lookup failed")
		return Coordinate{}, false, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		n.logger.Debug().Int("status", resp.StatusCode).Str("name", trimmed).Msg("geocode lookup rejected")
		return Coordinate{}, false, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		n.logger.Debug().Err(err).Str("name", trimmed).Msg("geocode response read failed")
		return Coordinate{}, false, nil
	}

	var results []nominatimResult
	if err := json.Unmarshal(body, &results); err != nil || len(results) == 0 {
		return Coordinate{}, false, nil
	}

	lat, latErr := strconv.ParseFloat(results[0].Lat, 64)
	lon, lonErr := strconv.ParseFloat(results[0].Lon, 64)
	if latErr != nil || lonErr != nil {
		return Coordinate{}, false, nil
	}

	return Coordinate{Lat: lat, Lon: lon}, true, nil
}
