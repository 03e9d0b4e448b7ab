package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/supercivilian/supercivilian/internal/core/domain"
	"github.com/supercivilian/supercivilian/internal/pkg/metrics"
	"github.com/supercivilian/supercivilian/internal/pkg/telemetry"
)

// maxPhotoBytes caps proxied photo bodies.
const maxPhotoBytes = 10 << 20

// Config configures the places client.
type Config struct {
	APIKey     string
	PlacesURL  string
	GeocodeURL string
	Language   string
	Components string
	Timeout    time.Duration
}

// Client implements ports.PlacesProvider against the Google Maps Platform
// web services.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// New creates a new places client.
func New(cfg Config) *Client {
	if cfg.PlacesURL == "" {
		cfg.PlacesURL = "https://maps.googleapis.com/maps/api/place"
	}
	if cfg.GeocodeURL == "" {
		cfg.GeocodeURL = "https://maps.googleapis.com/maps/api/geocode/json"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{cfg: cfg, httpClient: &http.Client{Timeout: cfg.Timeout}}
}

// envelope carries the status field every JSON endpoint returns.
type envelope struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
}

func (e envelope) err() error {
	switch e.Status {
	case "OK":
		return nil
	case "ZERO_RESULTS":
		return domain.ErrZeroResults
	case "NOT_FOUND":
		return domain.ErrNotFound
	default:
		return fmt.Errorf("%w: status %s: %s", domain.ErrUpstreamUnavailable, e.Status, e.ErrorMessage)
	}
}

// Autocomplete returns predictions for a partial place name.
func (c *Client) Autocomplete(ctx context.Context, query string) ([]domain.AutocompletePrediction, error) {
	params := url.Values{}
	params.Set("input", query)
	c.localize(params)
	if c.cfg.Components != "" {
		params.Set("components", c.cfg.Components)
	}

	var resp struct {
		envelope
		Predictions []struct {
			PlaceID     string   `json:"place_id"`
			Description string   `json:"description"`
			Types       []string `json:"types"`
		} `json:"predictions"`
	}
	if err := c.getJSON(ctx, "autocomplete", c.cfg.PlacesURL+"/autocomplete/json", params, &resp); err != nil {
		return nil, err
	}
	if err := resp.err(); err != nil {
		return nil, err
	}

	out := make([]domain.AutocompletePrediction, len(resp.Predictions))
	for i, p := range resp.Predictions {
		out[i] = domain.AutocompletePrediction{PlaceID: p.PlaceID, Description: p.Description, Types: p.Types}
	}
	return out, nil
}

// Details returns a single place by id.
func (c *Client) Details(ctx context.Context, placeID string) (*domain.PlaceDetails, error) {
	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", "place_id,name,url,formatted_address,website")
	c.localize(params)

	var resp struct {
		envelope
		Result struct {
			PlaceID          string `json:"place_id"`
			Name             string `json:"name"`
			URL              string `json:"url"`
			FormattedAddress string `json:"formatted_address"`
			Website          string `json:"website"`
		} `json:"result"`
	}
	if err := c.getJSON(ctx, "details", c.cfg.PlacesURL+"/details/json", params, &resp); err != nil {
		return nil, err
	}
	if err := resp.err(); err != nil {
		return nil, err
	}

	d := &domain.PlaceDetails{
		ID:               resp.Result.PlaceID,
		Name:             resp.Result.Name,
		URL:              resp.Result.URL,
		FormattedAddress: resp.Result.FormattedAddress,
	}
	if d.ID == "" {
		d.ID = placeID
	}
	if resp.Result.Website != "" {
		w := resp.Result.Website
		d.Website = &w
	}
	return d, nil
}

// ReverseGeocode returns addresses at a point.
func (c *Client) ReverseGeocode(ctx context.Context, p domain.GeoPoint) ([]domain.GeocodeResult, error) {
	params := url.Values{}
	params.Set("latlng", strconv.FormatFloat(p.Latitude, 'f', -1, 64)+","+strconv.FormatFloat(p.Longitude, 'f', -1, 64))
	c.localize(params)

	var resp struct {
		envelope
		Results []struct {
			PlaceID          string   `json:"place_id"`
			FormattedAddress string   `json:"formatted_address"`
			Types            []string `json:"types"`
		} `json:"results"`
	}
	if err := c.getJSON(ctx, "reverse_geocode", c.cfg.GeocodeURL, params, &resp); err != nil {
		return nil, err
	}
	if err := resp.err(); err != nil {
		return nil, err
	}

	out := make([]domain.GeocodeResult, len(resp.Results))
	for i, r := range resp.Results {
		out[i] = domain.GeocodeResult{PlaceID: r.PlaceID, FormattedAddress: r.FormattedAddress, Types: r.Types}
	}
	return out, nil
}

// Photo downloads a place photo. The upstream answers with a redirect to
// the image, which the HTTP client follows.
func (c *Client) Photo(ctx context.Context, reference string, maxWidth int) (*domain.Photo, error) {
	params := url.Values{}
	params.Set("photo_reference", reference)
	params.Set("maxwidth", strconv.Itoa(maxWidth))

	resp, err := c.do(ctx, "photo", c.cfg.PlacesURL+"/photo", params)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusBadRequest {
		return nil, domain.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: photo status %d", domain.ErrUpstreamUnavailable, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPhotoBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read photo: %v", domain.ErrUpstreamUnavailable, err)
	}
	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = http.DetectContentType(data)
	}
	return &domain.Photo{ContentType: ct, Data: data}, nil
}

func (c *Client) localize(params url.Values) {
	if c.cfg.Language != "" {
		params.Set("language", c.cfg.Language)
	}
}

func (c *Client) getJSON(ctx context.Context, op, endpoint string, params url.Values, dst any) error {
	resp, err := c.do(ctx, op, endpoint, params)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s status %d: %s", domain.ErrUpstreamUnavailable, op, resp.StatusCode, body)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: decode %s: %v", domain.ErrUpstreamUnavailable, op, err)
	}
	return nil
}

// do sends a GET with the API key appended. The caller closes the body.
func (c *Client) do(ctx context.Context, op, endpoint string, params url.Values) (*http.Response, error) {
	ctx, span := telemetry.Tracer("google").Start(ctx, "google."+op)
	defer span.End()
	span.SetAttributes(attribute.String("http.url.path", endpoint))

	params.Set("key", c.cfg.APIKey)

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveUpstream("google", op, "error", start)
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrUpstreamUnavailable, op, redact(err))
	}
	outcome := "ok"
	if resp.StatusCode >= 400 {
		outcome = "error"
	}
	metrics.ObserveUpstream("google", op, outcome, start)
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	return resp, nil
}

// redact strips the request URL, which carries the API key, from
// transport errors.
func redact(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return fmt.Errorf("%s: %w", ue.Op, ue.Err)
	}
	return err
}
