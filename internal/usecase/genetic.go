package usecase

import (
	"runtime"
	"sort"

	"github.com/alitto/pond"

	"github.com/ngs-io/voyage-router/internal/domain"
)

// GeneticRequest is a RouteRequest plus the genetic optimizer's own
// configuration.
type GeneticRequest struct {
	RouteRequest
	PopulationSize    int
	Generations       int
	MutationRate      float64
	CrossoverRate     float64
	EliteCount        int
	NumWaypoints      int
	AvoidBlockedZones bool
}

func (r GeneticRequest) withDefaults() GeneticRequest {
	if r.PopulationSize < 5 {
		r.PopulationSize = 20
	}
	if r.PopulationSize > 100 {
		r.PopulationSize = 100
	}
	if r.Generations < 5 {
		r.Generations = 15
	}
	if r.Generations > 50 {
		r.Generations = 50
	}
	if r.MutationRate <= 0 {
		r.MutationRate = 0.1
	}
	if r.CrossoverRate <= 0 {
		r.CrossoverRate = 0.8
	}
	if r.EliteCount <= 0 {
		r.EliteCount = 2
	}
	if r.NumWaypoints <= 0 {
		r.NumWaypoints = 5
	}
	return r
}

// chromosome is a candidate route encoded as its interior waypoints; the
// start and end points are fixed and not part of the gene sequence.
type chromosome struct {
	genes []domain.Coordinate

	fitness        float64
	totalFuel      float64
	totalCO2       float64
	totalDistance  float64
	totalDuration  float64
	landPenalty    float64
	shallowPenalty float64
}

func (u *RoutingUseCase) decodePath(start, end domain.Coordinate, genes []domain.Coordinate) []domain.Coordinate {
	path := make([]domain.Coordinate, 0, len(genes)+2)
	path = append(path, start)
	path = append(path, genes...)
	path = append(path, end)
	return path
}

// generateCandidateGene proposes an interior waypoint near fraction fi of
// the way from start to end, biased along the start->end bearing with
// jitter, rejecting candidates that are on land, under-depth, or whose
// bounding segments cross land.
func (u *RoutingUseCase) generateCandidateGene(start, end, prev domain.Coordinate, isLast bool, totalDist, baseBearing, fi float64, minDepth float64, avoidShallow bool) domain.Coordinate {
	const maxAttempts = 30
	for attempt := 0; attempt < maxAttempts; attempt++ {
		jitterDist := 0.7 + u.random().Float64()*0.6
		jitterBearing := -30 + u.random().Float64()*60
		candidate := domain.Destination(start, totalDist*fi*jitterDist, baseBearing+jitterBearing)

		if !u.pointValid(candidate, minDepth, avoidShallow) {
			continue
		}
		if u.land.SegmentCrossesLandSampled(prev, candidate, 15) {
			continue
		}
		if isLast && u.land.SegmentCrossesLandSampled(candidate, end, 15) {
			continue
		}
		return candidate
	}
	return domain.Destination(start, totalDist*fi, baseBearing)
}

func (u *RoutingUseCase) pointValid(p domain.Coordinate, minDepth float64, avoidShallow bool) bool {
	if p.Lat < -90 || p.Lat > 90 {
		return false
	}
	if u.land.IsLand(p) {
		return false
	}
	if avoidShallow && u.bathy.Depth(p) < minDepth {
		return false
	}
	return true
}

func (u *RoutingUseCase) segmentValid(p1, p2 domain.Coordinate, minDepth float64, avoidShallow bool) bool {
	if u.land.SegmentCrossesLand(p1, p2) {
		return false
	}
	if avoidShallow {
		for _, pt := range domain.SampleGreatCircle(p1, p2, 10) {
			if u.bathy.Depth(pt) < minDepth {
				return false
			}
		}
	}
	return true
}

func (u *RoutingUseCase) initChromosome(req GeneticRequest, v domain.Vessel, minDepth float64) chromosome {
	totalDist := domain.GreatCircleDistance(req.Start, req.End)
	baseBearing := domain.Bearing(req.Start, req.End)

	genes := make([]domain.Coordinate, req.NumWaypoints)
	prev := req.Start
	for i := 0; i < req.NumWaypoints; i++ {
		fi := float64(i+1) / float64(req.NumWaypoints+1)
		isLast := i == req.NumWaypoints-1
		gene := u.generateCandidateGene(req.Start, req.End, prev, isLast, totalDist, baseBearing, fi, minDepth, req.AvoidShallowWater)
		genes[i] = gene
		prev = gene
	}
	return chromosome{genes: genes}
}

// evaluate prices every segment of the decoded path and accumulates the
// land-crossing and shallow-water penalties described by the fitness
// function.
func (u *RoutingUseCase) evaluate(req GeneticRequest, v domain.Vessel, minDepth float64, c *chromosome) {
	path := u.decodePath(req.Start, req.End, c.genes)

	var totalFuel, totalCO2, totalDistance, totalDuration float64
	var landPenalty, shallowPenalty float64

	for i := 0; i+1 < len(path); i++ {
		p1, p2 := path[i], path[i+1]
		seg := u.buildSegment(v, p1, p2, req.WeatherEnabled)
		totalFuel += seg.Cost.FuelConsumedT
		totalCO2 += seg.Cost.CO2EmittedT
		totalDistance += seg.Distance
		totalDuration += seg.Cost.DurationH

		if u.land.SegmentCrossesLand(p1, p2) || blockedZoneBlocksSegment(req.AvoidBlockedZones, p1, p2) {
			landPenalty += 1000
		}

		if req.AvoidShallowWater {
			subDraftCount := 0
			for _, pt := range domain.SampleGreatCircle(p1, p2, 10) {
				depth := u.bathy.Depth(pt)
				if depth == 0 {
					subDraftCount++
					continue
				}
				if depth < minDepth {
					shallowPenalty += 10 * (minDepth - depth)
				}
			}
			if subDraftCount > 0 {
				landPenalty += 500 * float64(subDraftCount)
			}
		}
	}

	baseFitness := 1000 / (totalFuel + 1)
	penaltyFactor := 1 - (landPenalty+shallowPenalty)/1000
	if penaltyFactor < 0.001 {
		penaltyFactor = 0.001
	}

	c.totalFuel = totalFuel
	c.totalCO2 = totalCO2
	c.totalDistance = totalDistance
	c.totalDuration = totalDuration
	c.landPenalty = landPenalty
	c.shallowPenalty = shallowPenalty
	c.fitness = baseFitness * penaltyFactor
}

// evaluatePopulation prices every chromosome's segments in parallel on a
// bounded worker pool, mirroring the concurrent-conversion fan-out
// pattern used for batch GSF processing.
func (u *RoutingUseCase) evaluatePopulation(req GeneticRequest, v domain.Vessel, minDepth float64, population []chromosome) {
	concurrency := runtime.NumCPU() * 2
	if concurrency > len(population) {
		concurrency = len(population)
	}
	if concurrency < 1 {
		concurrency = 1
	}

	pool := pond.New(concurrency, 0, pond.MinWorkers(concurrency))
	for i := range population {
		i := i
		pool.Submit(func() {
			u.evaluate(req, v, minDepth, &population[i])
		})
	}
	pool.StopAndWait()
}

func (u *RoutingUseCase) tournamentSelect(population []chromosome) chromosome {
	best := population[u.random().Intn(len(population))]
	for i := 0; i < 2; i++ {
		cand := population[u.random().Intn(len(population))]
		if cand.fitness > best.fitness {
			best = cand
		}
	}
	return best
}

func (u *RoutingUseCase) crossover(req GeneticRequest, v domain.Vessel, minDepth float64, parent1, parent2 chromosome) chromosome {
	n := len(parent1.genes)
	if n < 2 {
		return chromosome{genes: append([]domain.Coordinate{}, parent1.genes...)}
	}

	for attempt := 0; attempt < 5; attempt++ {
		split := 1 + u.random().Intn(n-1)
		genes := make([]domain.Coordinate, n)
		copy(genes[:split], parent1.genes[:split])
		copy(genes[split:], parent2.genes[split:])

		prev := req.Start
		if split > 0 {
			prev = genes[split-1]
		}
		next := req.End
		if split < n {
			next = genes[split]
		}
		if !u.land.SegmentCrossesLandSampled(prev, next, 10) {
			return chromosome{genes: genes}
		}
	}
	return chromosome{genes: append([]domain.Coordinate{}, parent1.genes...)}
}

func (u *RoutingUseCase) mutate(req GeneticRequest, v domain.Vessel, minDepth float64, c chromosome) chromosome {
	genes := append([]domain.Coordinate{}, c.genes...)
	idx := u.random().Intn(len(genes))

	prev := req.Start
	if idx > 0 {
		prev = genes[idx-1]
	}
	next := req.End
	if idx+1 < len(genes) {
		next = genes[idx+1]
	}

	totalDist := domain.GreatCircleDistance(req.Start, req.End)
	baseBearing := domain.Bearing(req.Start, req.End)
	fi := float64(idx+1) / float64(len(genes)+1)

	for attempt := 0; attempt < 30; attempt++ {
		jitterDist := 0.7 + u.random().Float64()*0.6
		jitterBearing := -30 + u.random().Float64()*60
		candidate := domain.Destination(req.Start, totalDist*fi*jitterDist, baseBearing+jitterBearing)

		if !u.pointValid(candidate, minDepth, req.AvoidShallowWater) {
			continue
		}
		if u.land.SegmentCrossesLandSampled(prev, candidate, 10) || u.land.SegmentCrossesLandSampled(candidate, next, 10) {
			continue
		}
		genes[idx] = candidate
		return chromosome{genes: genes}
	}
	return c
}

// findSeaValidPath returns the waypoints to insert between p1 and p2 so
// the path clears land and, when required, depth; it returns none if the
// segment is already valid. It first tries single perpendicular offsets
// from the segment midpoint (accepted only if both halves are valid), then
// a coarse 7x7 grid search around the midpoint whose first sea-valid point
// is kept and whose two halves are repaired recursively (so several
// waypoints may be inserted), and finally falls back to the raw midpoint.
// Points from the grid search and the midpoint fallback do not guarantee
// valid segments once depthBudget runs out.
func (u *RoutingUseCase) findSeaValidPath(p1, p2 domain.Coordinate, minDepth float64, avoidShallow bool, depthBudget int) []domain.Coordinate {
	if u.segmentValid(p1, p2, minDepth, avoidShallow) {
		return nil
	}
	midpoint := domain.InterpolateGC(p1, p2, 0.5)
	if depthBudget <= 0 {
		return []domain.Coordinate{midpoint}
	}

	length := domain.GreatCircleDistance(p1, p2)
	bearingBase := domain.Bearing(p1, p2)
	perpAngles := []float64{45, -45, 90, -90, 135, -135}

	for step := 1; step <= 14; step++ {
		frac := float64(step) * 0.05
		for _, perp := range perpAngles {
			candidate := domain.Destination(midpoint, length*frac, bearingBase+perp)
			if !u.pointValid(candidate, minDepth, avoidShallow) {
				continue
			}
			if u.segmentValid(p1, candidate, minDepth, avoidShallow) && u.segmentValid(candidate, p2, minDepth, avoidShallow) {
				return []domain.Coordinate{candidate}
			}
		}
	}

	for dLat := -3; dLat <= 3; dLat++ {
		for dLon := -3; dLon <= 3; dLon++ {
			lat := midpoint.Lat + float64(dLat)
			if lat < -90 || lat > 90 {
				continue
			}
			candidate := domain.Coordinate{Lat: lat, Lon: domain.NormalizeLon(midpoint.Lon + float64(dLon))}
			if !u.pointValid(candidate, minDepth, avoidShallow) {
				continue
			}
			left := u.findSeaValidPath(p1, candidate, minDepth, avoidShallow, depthBudget-1)
			right := u.findSeaValidPath(candidate, p2, minDepth, avoidShallow, depthBudget-1)
			out := append([]domain.Coordinate{}, left...)
			out = append(out, candidate)
			out = append(out, right...)
			return out
		}
	}

	return []domain.Coordinate{midpoint}
}

func (u *RoutingUseCase) repairPath(path []domain.Coordinate, minDepth float64, avoidShallow bool) []domain.Coordinate {
	repaired := []domain.Coordinate{path[0]}
	for i := 0; i+1 < len(path); i++ {
		inserted := u.findSeaValidPath(path[i], path[i+1], minDepth, avoidShallow, 4)
		repaired = append(repaired, inserted...)
		repaired = append(repaired, path[i+1])
	}
	return repaired
}

// RunGenetic evolves a population of candidate waypoint chains toward
// minimal fuel burn subject to land and (optionally) shallow-water and
// blocked-zone penalties, then repairs any residual invalid segment in
// the best path found.
func (u *RoutingUseCase) RunGenetic(req GeneticRequest) (domain.RouteResult, error) {
	req = req.withDefaults()
	v, err := req.resolveVessel()
	if err != nil {
		return domain.RouteResult{}, err
	}
	minDepth := req.resolveMinDepth(v)

	population := make([]chromosome, req.PopulationSize)
	for i := range population {
		population[i] = u.initChromosome(req, v, minDepth)
	}

	for gen := 0; gen < req.Generations; gen++ {
		u.evaluatePopulation(req, v, minDepth, population)

		sort.SliceStable(population, func(i, j int) bool {
			return population[i].fitness > population[j].fitness
		})

		next := make([]chromosome, 0, len(population))
		next = append(next, population[:req.EliteCount]...)

		for len(next) < len(population) {
			parent1 := u.tournamentSelect(population)
			var child chromosome
			if u.random().Float64() < req.CrossoverRate {
				parent2 := u.tournamentSelect(population)
				child = u.crossover(req, v, minDepth, parent1, parent2)
			} else {
				child = chromosome{genes: append([]domain.Coordinate{}, parent1.genes...)}
			}
			if u.random().Float64() < req.MutationRate {
				child = u.mutate(req, v, minDepth, child)
			}
			next = append(next, child)
		}
		population = next
	}

	u.evaluatePopulation(req, v, minDepth, population)
	sort.SliceStable(population, func(i, j int) bool {
		return population[i].fitness > population[j].fitness
	})
	best := population[0]

	path := u.decodePath(req.Start, req.End, best.genes)
	path = u.repairPath(path, minDepth, req.AvoidShallowWater)

	result := u.priceRoute(domain.PlannerGenetic, v, path, req.WeatherEnabled, nil)
	result.Success = true
	result.Generations = req.Generations
	result.BestFitness = best.fitness
	return result, nil
}
