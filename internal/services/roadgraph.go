package services

import (
	"container/heap"
	"fmt"
	"math"

	"ambulance-dispatch-service/internal/domain"

	"github.com/golang/geo/s2"
)

const earthRadiusKm = 6371.0

// DefaultCoincideEpsilon is the coordinate difference, in degrees, below
// which a waypoint is treated as the same place as a route endpoint.
const DefaultCoincideEpsilon = 1e-6

type graphEdge struct {
	to       string
	weightKm float64
}

// roadGraph is a directed weighted graph rebuilt for every solve.
type roadGraph struct {
	nodes map[string]domain.Coordinates
	adj   map[string][]graphEdge
}

func newRoadGraph() *roadGraph {
	return &roadGraph{
		nodes: make(map[string]domain.Coordinates),
		adj:   make(map[string][]graphEdge),
	}
}

func (g *roadGraph) addNode(id string, c domain.Coordinates) { g.nodes[id] = c }

func (g *roadGraph) addEdge(from, to string, weightKm float64) {
	g.adj[from] = append(g.adj[from], graphEdge{to: to, weightKm: weightKm})
}

// RoadSolution is the refined path for one committed candidate.
type RoadSolution struct {
	TotalDistanceKm      float64
	Path                 []domain.Coordinates
	EstimatedDurationMin float64
	// Fallback is set when the search did not yield more than two points
	// and Path was rebuilt from the provider polyline.
	Fallback bool
}

// RoadGraphSolver re-derives a graph from a provider polyline and runs
// Dijkstra from the unit to the facility.
type RoadGraphSolver struct {
	CoincideEpsilon  float64
	FallbackSpeedKmh float64
}

func NewRoadGraphSolver(epsilon, fallbackSpeedKmh float64) *RoadGraphSolver {
	if epsilon <= 0 {
		epsilon = DefaultCoincideEpsilon
	}
	if fallbackSpeedKmh <= 0 {
		fallbackSpeedKmh = 60
	}
	return &RoadGraphSolver{CoincideEpsilon: epsilon, FallbackSpeedKmh: fallbackSpeedKmh}
}

func (s *RoadGraphSolver) BuildAndSolve(
	polyline []domain.Coordinates,
	unitID string,
	facilityName string,
	start domain.Coordinates,
	end domain.Coordinates,
	routeDistanceKm float64,
) RoadSolution {
	startID := "unit:" + unitID
	endID := "facility:" + facilityName

	g := newRoadGraph()
	g.addNode(startID, start)
	g.addNode(endID, end)

	prev := startID
	intermediates := 0
	for i, p := range polyline {
		if p.Near(start, s.CoincideEpsilon) || p.Near(end, s.CoincideEpsilon) {
			continue
		}
		id := fmt.Sprintf("wp:%d", i)
		g.addNode(id, p)
		g.addEdge(prev, id, greatCircleKm(g.nodes[prev], p))
		prev = id
		intermediates++
	}

	if intermediates == 0 {
		w := routeDistanceKm
		if w <= 0 {
			w = pathLengthKm(append(append([]domain.Coordinates{start}, polyline...), end))
		}
		g.addEdge(startID, endID, w)
	} else {
		g.addEdge(prev, endID, greatCircleKm(g.nodes[prev], end))
	}

	ids, total, ok := g.shortestPath(startID, endID)

	path := make([]domain.Coordinates, 0, len(ids))
	for _, id := range ids {
		path = append(path, g.nodes[id])
	}

	sol := RoadSolution{Path: path, TotalDistanceKm: total}
	if !ok || len(path) <= 2 {
		sol.Fallback = true
		sol.Path = fallbackPath(start, polyline, end, s.CoincideEpsilon)
		if !ok {
			sol.TotalDistanceKm = pathLengthKm(sol.Path)
		}
	}
	sol.EstimatedDurationMin = sol.TotalDistanceKm / s.FallbackSpeedKmh * 60
	return sol
}

// fallbackPath is start + every polyline point + end, with consecutive
// coincident points collapsed.
func fallbackPath(start domain.Coordinates, polyline []domain.Coordinates, end domain.Coordinates, eps float64) []domain.Coordinates {
	out := make([]domain.Coordinates, 0, len(polyline)+2)
	add := func(c domain.Coordinates) {
		if n := len(out); n > 0 && out[n-1].Near(c, eps) {
			return
		}
		out = append(out, c)
	}
	add(start)
	for _, p := range polyline {
		add(p)
	}
	add(end)
	return out
}

// shortestPath runs Dijkstra and stops once the target is settled.
func (g *roadGraph) shortestPath(from, to string) ([]string, float64, bool) {
	dist := map[string]float64{from: 0}
	prev := make(map[string]string)
	visited := make(map[string]bool)

	pq := &distQueue{{id: from, dist: 0}}
	for pq.Len() > 0 {
		cur := heap.Pop(pq).(distItem)
		if visited[cur.id] {
			continue
		}
		visited[cur.id] = true
		if cur.id == to {
			break
		}

		for _, e := range g.adj[cur.id] {
			nd := cur.dist + e.weightKm
			if d, ok := dist[e.to]; !ok || nd < d {
				dist[e.to] = nd
				prev[e.to] = cur.id
				heap.Push(pq, distItem{id: e.to, dist: nd})
			}
		}
	}

	if !visited[to] {
		return nil, 0, false
	}

	var ids []string
	for id := to; ; id = prev[id] {
		ids = append(ids, id)
		if id == from {
			break
		}
	}
	for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
		ids[i], ids[j] = ids[j], ids[i]
	}
	return ids, dist[to], true
}

type distItem struct {
	id   string
	dist float64
}

type distQueue []distItem

func (q distQueue) Len() int           { return len(q) }
func (q distQueue) Less(i, j int) bool { return q[i].dist < q[j].dist }
func (q distQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *distQueue) Push(x any)        { *q = append(*q, x.(distItem)) }
func (q *distQueue) Pop() any {
	old := *q
	it := old[len(old)-1]
	*q = old[:len(old)-1]
	return it
}

func greatCircleKm(a, b domain.Coordinates) float64 {
	return s2.LatLngFromDegrees(a.Lat, a.Lon).Distance(s2.LatLngFromDegrees(b.Lat, b.Lon)).Radians() * earthRadiusKm
}

func pathLengthKm(pts []domain.Coordinates) float64 {
	total := 0.0
	for i := 1; i < len(pts); i++ {
		total += greatCircleKm(pts[i-1], pts[i])
	}
	if math.IsNaN(total) {
		return 0
	}
	return total
}
