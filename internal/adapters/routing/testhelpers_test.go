package routing

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"ambulance-dispatch-service/internal/domain"

	"github.com/twpayne/go-polyline"
)

var (
	origin      = domain.Coordinates{Lat: 2.4448, Lon: -76.6147}
	destination = domain.Coordinates{Lat: 2.441981, Lon: -76.612537}
)

func fastPolicy(attempts int) RetryPolicy {
	return RetryPolicy{
		Attempts:    attempts,
		BackoffBase: time.Millisecond,
		TimeoutBase: time.Second,
		TimeoutStep: time.Second,
	}
}

// samplePoints returns n points on a line between origin and destination.
func samplePoints(n int) []domain.Coordinates {
	pts := make([]domain.Coordinates, n)
	for i := range pts {
		f := float64(i) / float64(n-1)
		pts[i] = domain.Coordinates{
			Lat: origin.Lat + (destination.Lat-origin.Lat)*f,
			Lon: origin.Lon + (destination.Lon-origin.Lon)*f,
		}
	}
	return pts
}

func osrmBody(n int, durationSec float64) string {
	coords := make([][]float64, 0, n)
	for _, p := range samplePoints(n) {
		coords = append(coords, []float64{p.Lon, p.Lat})
	}
	b, _ := json.Marshal(map[string]any{
		"code": "Ok",
		"routes": []any{map[string]any{
			"geometry": map[string]any{"type": "LineString", "coordinates": coords},
			"duration": durationSec,
			"distance": 1500.0,
		}},
	})
	return string(b)
}

func encoded(n int) string {
	coords := make([][]float64, 0, n)
	for _, p := range samplePoints(n) {
		coords = append(coords, []float64{p.Lat, p.Lon})
	}
	return string(polyline.EncodeCoords(coords))
}

func writeBody(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprint(w, body)
}
