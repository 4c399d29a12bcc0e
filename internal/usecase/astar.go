package usecase

import (
	"container/heap"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/ngs-io/voyage-router/internal/adapter/blockedzone"
	"github.com/ngs-io/voyage-router/internal/domain"
)

// AStarRequest is a RouteRequest plus the fuel-cost lattice A*'s own
// parameters.
type AStarRequest struct {
	RouteRequest
	GridResolution    float64 // degrees, clamped to [0.1, 2]
	AvoidBlockedZones bool
}

func (r AStarRequest) resolveGridResolution() float64 {
	res := r.GridResolution
	if res <= 0 {
		res = 0.5
	}
	if res < 0.1 {
		res = 0.1
	}
	if res > 2 {
		res = 2
	}
	return res
}

type latticeNode struct {
	row, col int
}

func (u *RoutingUseCase) latticeCoord(n latticeNode, res float64) domain.Coordinate {
	lat := float64(n.row) * res
	lon := domain.NormalizeLon(float64(n.col) * res)
	return domain.Coordinate{Lat: lat, Lon: lon}
}

func (u *RoutingUseCase) latticeNodeOf(p domain.Coordinate, res float64) latticeNode {
	return latticeNode{
		row: int(math.Round(p.Lat / res)),
		col: int(math.Round(domain.NormalizeLon(p.Lon) / res)),
	}
}

func (u *RoutingUseCase) latticeNodeValid(n latticeNode, res float64, avoidShallow bool, minDepth float64, avoidBlocked bool) bool {
	p := u.latticeCoord(n, res)
	if p.Lat < -90 || p.Lat > 90 {
		return false
	}
	if u.land.IsLand(p) {
		return false
	}
	if avoidShallow && u.bathy.Depth(p) < minDepth {
		return false
	}
	if avoidBlocked && blockedzone.IsInBlockedZone(p) {
		return false
	}
	return true
}

func (u *RoutingUseCase) latticeNeighbors(n latticeNode, res float64) []latticeNode {
	maxRow := int(math.Round(90 / res))
	out := make([]latticeNode, 0, 8)
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			row := n.row + dr
			if row < -maxRow || row > maxRow {
				continue
			}
			out = append(out, latticeNode{row: row, col: n.col + dc})
		}
	}
	return out
}

type astarOpenItem struct {
	node  latticeNode
	f, g  float64
	index int
}

type astarOpenHeap []*astarOpenItem

func (h astarOpenHeap) Len() int           { return len(h) }
func (h astarOpenHeap) Less(i, j int) bool { return h[i].f < h[j].f }
func (h astarOpenHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index, h[j].index = i, j
}
func (h *astarOpenHeap) Push(x interface{}) {
	item := x.(*astarOpenItem)
	item.index = len(*h)
	*h = append(*h, item)
}
func (h *astarOpenHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

func latticeKey(n latticeNode) int64 { return int64(n.row)<<32 | int64(uint32(n.col)) }

// fuelHeuristic is the admissible lower bound used by RunAStar: the
// remaining great-circle distance at the vessel's fastest attainable
// speed, costed at its base (unscaled) fuel rate.
func fuelHeuristic(v domain.Vessel, from, to domain.Coordinate) float64 {
	maxSpeed := v.MaxSpeed
	if maxSpeed <= 0 {
		maxSpeed = v.ServiceSpeed
	}
	remainingNM := domain.GreatCircleDistance(from, to)
	baseFuelRate := v.FuelConsumptionRate / 24.0
	return (remainingNM / maxSpeed) * baseFuelRate
}

// RunAStar plans a route on a configurable-resolution lat/lon lattice,
// costed by fuel consumption (via C7, optionally weather-adjusted)
// rather than raw distance. On exhausting its iteration cap it reports
// failure in the result rather than returning a Go error, per the
// SearchExhausted contract.
func (u *RoutingUseCase) RunAStar(req AStarRequest) (domain.RouteResult, error) {
	v, err := req.resolveVessel()
	if err != nil {
		return domain.RouteResult{}, err
	}

	res := req.resolveGridResolution()
	minDepth := req.resolveMinDepth(v)

	startNode := u.latticeNodeOf(req.Start, res)
	endNode := u.latticeNodeOf(req.End, res)

	maxIterations := getEnvInt("ASTAR_MAX_ITERATIONS", 200000)

	gScore := map[int64]float64{latticeKey(startNode): 0}
	parent := map[int64]latticeNode{}
	closed := map[int64]bool{}

	h := &astarOpenHeap{}
	heap.Init(h)
	heap.Push(h, &astarOpenItem{node: startNode, f: fuelHeuristic(v, req.Start, req.End), g: 0})

	iterations := 0
	var reached bool

	for h.Len() > 0 {
		iterations++
		if iterations > maxIterations {
			return domain.RouteResult{
				Success: false,
				Planner: domain.PlannerAStar,
				Message: fmt.Sprintf("A* search exhausted after %d iterations", iterations),
			}, nil
		}

		current := heap.Pop(h).(*astarOpenItem)
		if closed[latticeKey(current.node)] {
			continue
		}
		closed[latticeKey(current.node)] = true

		if current.node == endNode {
			reached = true
			break
		}

		currentCoord := u.latticeCoord(current.node, res)
		var weatherSample *domain.WeatherSample
		if req.WeatherEnabled {
			s := u.weather.FetchCombined(currentCoord.Lat, currentCoord.Lon, time.Now())
			weatherSample = &s
		}
		for _, next := range u.latticeNeighbors(current.node, res) {
			if closed[latticeKey(next)] {
				continue
			}
			if !u.latticeNodeValid(next, res, req.AvoidShallowWater, minDepth, req.AvoidBlockedZones) {
				continue
			}
			nextCoord := u.latticeCoord(next, res)
			segmentFuel := domain.ComputeSegmentCost(v, domain.GreatCircleDistance(currentCoord, nextCoord), v.ServiceSpeed, domain.Bearing(currentCoord, nextCoord), weatherSample).FuelConsumedT
			tentativeG := current.g + segmentFuel
			if existing, ok := gScore[latticeKey(next)]; ok && tentativeG >= existing {
				continue
			}
			gScore[latticeKey(next)] = tentativeG
			parent[latticeKey(next)] = current.node
			f := tentativeG + fuelHeuristic(v, nextCoord, req.End)
			heap.Push(h, &astarOpenItem{node: next, f: f, g: tentativeG})
		}
	}

	if !reached {
		return domain.RouteResult{
			Success: false,
			Planner: domain.PlannerAStar,
			Message: fmt.Sprintf("A* search exhausted after %d iterations", iterations),
		}, nil
	}

	var nodes []latticeNode
	cur := endNode
	for {
		nodes = append([]latticeNode{cur}, nodes...)
		if cur == startNode {
			break
		}
		cur = parent[latticeKey(cur)]
	}

	waypoints := make([]domain.Coordinate, len(nodes))
	for i, n := range nodes {
		waypoints[i] = u.latticeCoord(n, res)
	}
	waypoints[0] = req.Start
	waypoints[len(waypoints)-1] = req.End

	result := u.priceRoute(domain.PlannerAStar, v, waypoints, req.WeatherEnabled, nil)
	result.Success = true
	result.Iterations = iterations
	return result, nil
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}
