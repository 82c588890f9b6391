package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"ambulance-dispatch-service/internal/domain"
	"ambulance-dispatch-service/internal/platform/obs"
)

type directionsRequest struct {
	Coordinates [][]float64 `json:"coordinates"`
}

type directionsResponse struct {
	Error  json.RawMessage `json:"error"`
	Routes []struct {
		Summary struct {
			Distance float64 `json:"distance"`
			Duration float64 `json:"duration"`
		} `json:"summary"`
		Geometry string `json:"geometry"`
	} `json:"routes"`
}

// ORSProvider implements RouteProvider using the OpenRouteService directions API.
// Geometry is returned as an encoded polyline.
type ORSProvider struct {
	*client
	apiKey  string
	baseURL string
	profile string
}

func NewORSProvider(apiKey, baseURL string, opts ClientOptions) (*ORSProvider, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}

	return &ORSProvider{
		client:  newClient("ors", opts),
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		profile: "driving-car",
	}, nil
}

func (o *ORSProvider) FetchRoute(
	ctx context.Context,
	origin domain.Coordinates,
	destination domain.Coordinates,
) (_ domain.Route, err error) {
	defer obs.Time(ctx, o.log, "ors.FetchRoute")(&err)

	endpoint := fmt.Sprintf("%s/v2/directions/%s", o.baseURL, o.profile)

	payload, err := json.Marshal(directionsRequest{
		Coordinates: [][]float64{origin.CoordsToList(), destination.CoordsToList()},
	})
	if err != nil {
		return domain.Route{}, fmt.Errorf("marshal directions request: %w", err)
	}

	body, err := o.doWithRetry(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := o.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", o.apiKey)
		return req, nil
	})
	if err != nil {
		return domain.Route{}, fmt.Errorf("ors directions request: %w", err)
	}

	route, err := decodeORS(body)
	if err != nil {
		obs.ProviderRequests.WithLabelValues(o.name, "invalid").Inc()
		return domain.Route{}, fmt.Errorf("ors: %w", err)
	}

	obs.ProviderRequests.WithLabelValues(o.name, "ok").Inc()
	return route, nil
}

func decodeORS(body []byte) (domain.Route, error) {
	var decoded directionsResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return domain.Route{}, invalidf("decode response: %v", err)
	}

	if len(decoded.Error) > 0 && string(decoded.Error) != "null" {
		return domain.Route{}, invalidf("error %s", decoded.Error)
	}
	if len(decoded.Routes) == 0 {
		return domain.Route{}, invalidf("no routes")
	}

	r := decoded.Routes[0]
	points, err := decodePolyline(r.Geometry)
	if err != nil {
		return domain.Route{}, err
	}

	route := domain.Route{
		Points:      points,
		DurationMin: r.Summary.Duration / 60,
		DistanceKm:  r.Summary.Distance / 1000,
	}
	if err := validateRoute(route); err != nil {
		return domain.Route{}, err
	}
	return route, nil
}
