package routing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"ambulance-dispatch-service/internal/domain"
	"ambulance-dispatch-service/internal/platform/obs"

	"github.com/twpayne/go-polyline"
)

type graphHopperResponse struct {
	Message string `json:"message"`
	Paths   []struct {
		Distance float64 `json:"distance"`
		Time     float64 `json:"time"`
		Points   string  `json:"points"`
	} `json:"paths"`
}

// GraphHopperProvider queries the GraphHopper routing API (/route).
type GraphHopperProvider struct {
	*client
	apiKey  string
	baseURL string
	profile string
}

func NewGraphHopperProvider(apiKey, baseURL string, opts ClientOptions) (*GraphHopperProvider, error) {
	if apiKey == "" {
		return nil, errors.New("GraphHopper api key is empty")
	}

	return &GraphHopperProvider{
		client:  newClient("graphhopper", opts),
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		profile: "car",
	}, nil
}

func (g *GraphHopperProvider) FetchRoute(
	ctx context.Context,
	origin domain.Coordinates,
	destination domain.Coordinates,
) (_ domain.Route, err error) {
	defer obs.Time(ctx, g.log, "graphhopper.FetchRoute")(&err)

	endpoint := g.baseURL + "/route"

	body, err := g.doWithRetry(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := g.newRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Add("point", latLon(origin))
		q.Add("point", latLon(destination))
		q.Set("profile", g.profile)
		q.Set("points_encoded", "true")
		q.Set("key", g.apiKey)
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return domain.Route{}, fmt.Errorf("graphhopper route request: %w", err)
	}

	route, err := decodeGraphHopper(body)
	if err != nil {
		obs.ProviderRequests.WithLabelValues(g.name, "invalid").Inc()
		return domain.Route{}, fmt.Errorf("graphhopper: %w", err)
	}

	obs.ProviderRequests.WithLabelValues(g.name, "ok").Inc()
	return route, nil
}

func decodeGraphHopper(body []byte) (domain.Route, error) {
	var decoded graphHopperResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return domain.Route{}, invalidf("decode response: %v", err)
	}

	if decoded.Message != "" {
		return domain.Route{}, invalidf("message %q", decoded.Message)
	}
	if len(decoded.Paths) == 0 {
		return domain.Route{}, invalidf("no paths")
	}

	p := decoded.Paths[0]
	points, err := decodePolyline(p.Points)
	if err != nil {
		return domain.Route{}, err
	}

	route := domain.Route{
		Points:      points,
		DurationMin: p.Time / 60000,
		DistanceKm:  p.Distance / 1000,
	}
	if err := validateRoute(route); err != nil {
		return domain.Route{}, err
	}
	return route, nil
}

// decodePolyline decodes a precision-5 encoded polyline into coordinates.
func decodePolyline(encoded string) ([]domain.Coordinates, error) {
	if encoded == "" {
		return nil, invalidf("empty geometry")
	}

	coords, rest, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, invalidf("decode polyline: %v", err)
	}
	if len(rest) != 0 {
		return nil, invalidf("trailing polyline bytes: %d", len(rest))
	}

	points := make([]domain.Coordinates, 0, len(coords))
	for _, c := range coords {
		points = append(points, domain.Coordinates{Lat: c[0], Lon: c[1]})
	}
	return points, nil
}
