package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"ambulance-dispatch-service/internal/domain"
	"ambulance-dispatch-service/internal/platform/obs"
)

type osrmResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Routes  []struct {
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
		Duration float64 `json:"duration"`
		Distance float64 `json:"distance"`
	} `json:"routes"`
}

// OSRMProvider queries an OSRM server (/route/v1/driving) for a GeoJSON route.
type OSRMProvider struct {
	*client
	baseURL string
}

func NewOSRMProvider(baseURL string, opts ClientOptions) *OSRMProvider {
	return &OSRMProvider{
		client:  newClient("osrm", opts),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (o *OSRMProvider) FetchRoute(
	ctx context.Context,
	origin domain.Coordinates,
	destination domain.Coordinates,
) (_ domain.Route, err error) {
	defer obs.Time(ctx, o.log, "osrm.FetchRoute")(&err)

	endpoint := fmt.Sprintf("%s/route/v1/driving/%s;%s", o.baseURL, lonLat(origin), lonLat(destination))

	body, err := o.doWithRetry(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := o.newRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("overview", "full")
		q.Set("geometries", "geojson")
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return domain.Route{}, fmt.Errorf("osrm route request: %w", err)
	}

	route, err := decodeOSRM(body)
	if err != nil {
		obs.ProviderRequests.WithLabelValues(o.name, "invalid").Inc()
		return domain.Route{}, fmt.Errorf("osrm: %w", err)
	}

	obs.ProviderRequests.WithLabelValues(o.name, "ok").Inc()
	return route, nil
}

func decodeOSRM(body []byte) (domain.Route, error) {
	var decoded osrmResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return domain.Route{}, invalidf("decode response: %v", err)
	}

	if decoded.Code != "Ok" {
		return domain.Route{}, invalidf("status %q: %s", decoded.Code, decoded.Message)
	}
	if len(decoded.Routes) == 0 {
		return domain.Route{}, invalidf("no routes")
	}

	r := decoded.Routes[0]
	points := make([]domain.Coordinates, 0, len(r.Geometry.Coordinates))
	for i, c := range r.Geometry.Coordinates {
		if len(c) < 2 {
			return domain.Route{}, invalidf("coordinate %d has %d components", i, len(c))
		}
		// GeoJSON order is [lon, lat].
		points = append(points, domain.Coordinates{Lat: c[1], Lon: c[0]})
	}

	route := domain.Route{
		Points:      points,
		DurationMin: r.Duration / 60,
		DistanceKm:  r.Distance / 1000,
	}
	if err := validateRoute(route); err != nil {
		return domain.Route{}, err
	}
	return route, nil
}

func lonLat(c domain.Coordinates) string {
	return strconv.FormatFloat(c.Lon, 'f', 6, 64) + "," + strconv.FormatFloat(c.Lat, 'f', 6, 64)
}

func latLon(c domain.Coordinates) string {
	return strconv.FormatFloat(c.Lat, 'f', 6, 64) + "," + strconv.FormatFloat(c.Lon, 'f', 6, 64)
}
