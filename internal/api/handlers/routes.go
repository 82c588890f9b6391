package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"ambulance-dispatch-service/internal/adapters/routing"
	"ambulance-dispatch-service/internal/api/dto"
	"ambulance-dispatch-service/internal/domain"
	"ambulance-dispatch-service/internal/ports"

	"github.com/go-playground/validator/v10"
	"github.com/julienschmidt/httprouter"
	"github.com/twpayne/go-polyline"
	"go.uber.org/zap"
)

// RouteHandler fetches a single route through the cache and provider chain.
type RouteHandler struct {
	Provider ports.RouteProvider
	Cache    ports.RouteCache
	Log      *zap.Logger

	validate *validator.Validate
}

func NewRouteHandler(provider ports.RouteProvider, cache ports.RouteCache, log *zap.Logger) *RouteHandler {
	return &RouteHandler{Provider: provider, Cache: cache, Log: log, validate: validator.New()}
}

func (h *RouteHandler) Get(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	req, err := parseRouteRequest(r)
	if err != nil {
		writeError(h.Log, w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(h.Log, w, r, http.StatusBadRequest, fmt.Sprintf("validation error: %v", err))
		return
	}

	origin := domain.Coordinates{Lat: req.OriginLat, Lon: req.OriginLon}
	destination := domain.Coordinates{Lat: req.DestinationLat, Lon: req.DestinationLon}

	cached := false
	var route domain.Route
	if h.Cache != nil {
		route, cached = h.Cache.Lookup(origin, destination)
	}

	if !cached {
		route, err = h.Provider.FetchRoute(r.Context(), origin, destination)
		if err != nil {
			h.Log.Warn("fetch route failed", zap.Error(err))
			if errors.Is(err, routing.ErrNoRoute) {
				writeError(h.Log, w, r, http.StatusBadGateway, "no routing provider returned a valid route")
				return
			}
			writeError(h.Log, w, r, http.StatusInternalServerError, "internal server error")
			return
		}
		if h.Cache != nil {
			h.Cache.Store(origin, destination, route)
		}
	}

	coords := make([][]float64, 0, len(route.Points))
	for _, p := range route.Points {
		coords = append(coords, []float64{p.Lat, p.Lon})
	}

	writeJSON(h.Log, w, r, http.StatusOK, dto.RouteResponse{
		Points:      dto.Coordinates(route.Points),
		Polyline:    string(polyline.EncodeCoords(coords)),
		DurationMin: route.DurationMin,
		DistanceKm:  route.DistanceKm,
		Cached:      cached,
	})
}

func parseRouteRequest(r *http.Request) (dto.RouteRequest, error) {
	q := r.URL.Query()
	var req dto.RouteRequest

	fields := []struct {
		name string
		dst  *float64
	}{
		{"origin_lat", &req.OriginLat},
		{"origin_lon", &req.OriginLon},
		{"destination_lat", &req.DestinationLat},
		{"destination_lon", &req.DestinationLon},
	}
	for _, f := range fields {
		v, err := strconv.ParseFloat(q.Get(f.name), 64)
		if err != nil {
			return req, fmt.Errorf("%s is required and must be a valid float", f.name)
		}
		*f.dst = v
	}
	return req, nil
}
