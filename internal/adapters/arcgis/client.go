package arcgis

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

// DefaultBaseURL is the public shelter feature layer query endpoint.
const DefaultBaseURL = "https://services-eu1.arcgis.com/HE4WRthd9CIPj0R8/ArcGIS/rest/services/schrony_csv/FeatureServer/0/query"

// Client implements ports.ShelterFetcher against an ArcGIS feature layer.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client. A zero timeout selects 10 seconds.
func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FetchNear returns the shelters within radiusMeters of p, in upstream
// ObjectID order.
func (c *Client) FetchNear(ctx context.Context, p domain.GeoPoint, radiusMeters int) ([]domain.Shelter, error) {
	params := url.Values{}
	params.Set("where", "1=1")
	params.Set("geometryType", "esriGeometryPoint")
	params.Set("spatialRel", "esriSpatialRelIntersects")
	params.Set("geometry", p.String())
	params.Set("inSR", "4326")
	params.Set("distance", strconv.Itoa(radiusMeters))
	params.Set("units", "esriSRUnit_Meter")
	params.Set("outFields", "*")
	params.Set("returnGeometry", "true")
	params.Set("orderByFields", "ObjectID ASC")
	params.Set("resultType", "standard")
	params.Set("multipatchOption", "xyFootprint")
	params.Set("f", "pjson")

	ctx, span := telemetry.Tracer("arcgis").Start(ctx, "arcgis.FetchNear")
	defer span.End()
	span.SetAttributes(
		attribute.Float64("geo.longitude", p.Longitude),
		attribute.Float64("geo.latitude", p.Latitude),
		attribute.Int("geo.radius_m", radiusMeters),
	)

	features, err := c.query(ctx, "fetch_near", params)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	shelters := make([]domain.Shelter, 0, len(features))
	for _, f := range features {
		s, err := f.toShelter()
		if err != nil {
			span.AddEvent("skipped feature", traceErr(err))
			continue
		}
		shelters = append(shelters, s)
	}
	span.SetAttributes(attribute.Int("shelters.count", len(shelters)))
	return shelters, nil
}

// FetchOne returns the shelter with the given ObjectID. Ids that are not
// integers cannot match and return domain.ErrNotFound without a request.
func (c *Client) FetchOne(ctx context.Context, id string) (*domain.Shelter, error) {
	oid, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	params := url.Values{}
	params.Set("where", "ObjectID = "+strconv.FormatInt(oid, 10))
	params.Set("outFields", "*")
	params.Set("returnGeometry", "true")
	params.Set("f", "pjson")

	ctx, span := telemetry.Tracer("arcgis").Start(ctx, "arcgis.FetchOne")
	defer span.End()
	span.SetAttributes(attribute.Int64("shelter.id", oid))

	features, err := c.query(ctx, "fetch_one", params)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if len(features) == 0 {
		return nil, domain.ErrNotFound
	}

	s, err := features[0].toShelter()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	return &s, nil
}

type queryResponse struct {
	Features *[]feature `json:"features"`
	Error    *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) query(ctx context.Context, op string, params url.Values) ([]feature, error) {
	start := time.Now()
	outcome := "error"
	defer func() { metrics.ObserveUpstream("arcgis", op, outcome, start) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrUpstreamUnavailable, resp.StatusCode, body)
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	var payload queryResponse
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", domain.ErrUpstreamUnavailable, err)
	}
	if payload.Features == nil {
		if payload.Error != nil {
			return nil, fmt.Errorf("%w: arcgis error %d: %s", domain.ErrUpstreamUnavailable, payload.Error.Code, payload.Error.Message)
		}
		return nil, fmt.Errorf("%w: response has no features", domain.ErrUpstreamUnavailable)
	}

	outcome = "ok"
	return *payload.Features, nil
}

var errMissingField = errors.New("missing required attribute")
