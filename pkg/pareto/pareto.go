package pareto

import (
	"fmt"
	"math"
	"sort"

	"github.com/tradewinds-ai/evoengine-go/internal/constants"
	"github.com/tradewinds-ai/evoengine-go/internal/types"
	"github.com/tradewinds-ai/evoengine-go/pkg/engine"
	"github.com/tradewinds-ai/evoengine-go/pkg/genome"
)

// Direction states whether an objective is to be maximized or minimized
type Direction string

const (
	Maximize Direction = constants.DirectionMaximize
	Minimize Direction = constants.DirectionMinimize
)

// Objective names one optimization target and its direction
type Objective struct {
	Name      string
	Direction Direction
}

// ObjectivesFromConfig converts configured objectives, validating
// directions
func ObjectivesFromConfig(configs []types.ObjectiveConfig) ([]Objective, error) {
	if len(configs) < 2 {
		return nil, fmt.Errorf("multi-objective runs need at least 2 objectives, got %d", len(configs))
	}
	objectives := make([]Objective, len(configs))
	seen := make(map[string]bool, len(configs))
	for i, c := range configs {
		d := Direction(c.Direction)
		if d != Maximize && d != Minimize {
			return nil, fmt.Errorf("objective %q has unknown direction %q", c.Name, c.Direction)
		}
		if c.Name == "" || seen[c.Name] {
			return nil, fmt.Errorf("objective names must be unique and non-empty")
		}
		seen[c.Name] = true
		objectives[i] = Objective{Name: c.Name, Direction: d}
	}
	return objectives, nil
}

// vectorFor normalizes a genome's objective map into a larger-is-better
// vector in objective order. Minimized objectives are negated.
func vectorFor(objectives []Objective, scores map[string]float64) ([]float64, error) {
	vec := make([]float64, len(objectives))
	for i, obj := range objectives {
		v, ok := scores[obj.Name]
		if !ok {
			return nil, fmt.Errorf("objective %q missing from oracle result", obj.Name)
		}
		if obj.Direction == Minimize {
			v = -v
		}
		vec[i] = v
	}
	return vec, nil
}

// dominatesVec reports whether a dominates b over larger-is-better
// vectors: a is at least as good everywhere and strictly better somewhere.
// Equal vectors dominate neither, keeping the relation a strict partial
// order.
func dominatesVec(a, b []float64) bool {
	better := false
	for i := range a {
		if a[i] < b[i] {
			return false
		}
		if a[i] > b[i] {
			better = true
		}
	}
	return better
}

// Dominates reports whether genome a dominates genome b on the given
// objectives. Both genomes must carry scored objective vectors.
func Dominates(a, b *genome.Genome, objectives []Objective) (bool, error) {
	va, err := vectorFor(objectives, a.Objectives)
	if err != nil {
		return false, err
	}
	vb, err := vectorFor(objectives, b.Objectives)
	if err != nil {
		return false, err
	}
	return dominatesVec(va, vb), nil
}

// ranked pairs a genome with its normalized vector, front rank and
// crowding distance for one sorting pass. Fronts carry no identity across
// generations; everything here is recomputed from scratch each time.
type ranked struct {
	genome   *genome.Genome
	vector   []float64
	rank     int
	crowding float64
}

// buildRanked wraps scored genomes for sorting
func buildRanked(population []*genome.Genome, objectives []Objective) ([]*ranked, error) {
	items := make([]*ranked, len(population))
	for i, g := range population {
		vec, err := vectorFor(objectives, g.Objectives)
		if err != nil {
			return nil, fmt.Errorf("genome %s: %w", g.ID, err)
		}
		items[i] = &ranked{genome: g, vector: vec}
	}
	return items, nil
}

// sortFronts partitions the population into non-dominated fronts using
// fast non-dominated sort. Front 0 is dominated by nobody, front 1 only by
// front 0 members, and so on. The fronts must cover the population
// exactly; anything else is a fatal invariant violation.
func sortFronts(items []*ranked) ([][]*ranked, error) {
	dominationCount := make(map[*ranked]int, len(items))
	dominatedSet := make(map[*ranked][]*ranked, len(items))

	var current []*ranked
	for _, p := range items {
		for _, q := range items {
			if p == q {
				continue
			}
			if dominatesVec(p.vector, q.vector) {
				dominatedSet[p] = append(dominatedSet[p], q)
			} else if dominatesVec(q.vector, p.vector) {
				dominationCount[p]++
			}
		}
		if dominationCount[p] == 0 {
			p.rank = 0
			current = append(current, p)
		}
	}

	var fronts [][]*ranked
	covered := 0
	for len(current) > 0 {
		fronts = append(fronts, current)
		covered += len(current)

		var next []*ranked
		for _, p := range current {
			for _, q := range dominatedSet[p] {
				dominationCount[q]--
				if dominationCount[q] == 0 {
					q.rank = len(fronts)
					next = append(next, q)
				}
			}
		}
		current = next
	}

	if covered != len(items) {
		return nil, &engine.InvariantError{
			Reason: fmt.Sprintf("non-dominated sort covered %d of %d genomes", covered, len(items)),
		}
	}
	return fronts, nil
}

// crowding assigns crowding distances within one front. Boundary genomes
// on any objective get infinite distance; interior genomes accumulate the
// normalized gap between their neighbors per objective.
func crowding(front []*ranked) {
	for _, item := range front {
		item.crowding = 0
	}
	if len(front) < 2 {
		for _, item := range front {
			item.crowding = math.Inf(1)
		}
		return
	}

	numObjectives := len(front[0].vector)
	order := make([]*ranked, len(front))
	copy(order, front)

	for m := 0; m < numObjectives; m++ {
		m := m
		sort.SliceStable(order, func(i, j int) bool {
			return order[i].vector[m] < order[j].vector[m]
		})

		order[0].crowding = math.Inf(1)
		order[len(order)-1].crowding = math.Inf(1)

		span := order[len(order)-1].vector[m] - order[0].vector[m]
		if span == 0 {
			continue
		}
		for i := 1; i < len(order)-1; i++ {
			order[i].crowding += (order[i+1].vector[m] - order[i-1].vector[m]) / span
		}
	}
}

// SortFronts partitions a scored population into ranked fronts of
// genomes, front 0 first
func SortFronts(population []*genome.Genome, objectives []Objective) ([][]*genome.Genome, error) {
	items, err := buildRanked(population, objectives)
	if err != nil {
		return nil, err
	}
	fronts, err := sortFronts(items)
	if err != nil {
		return nil, err
	}

	result := make([][]*genome.Genome, len(fronts))
	for i, front := range fronts {
		result[i] = make([]*genome.Genome, len(front))
		for j, item := range front {
			result[i][j] = item.genome
		}
	}
	return result, nil
}

// CrowdingDistances computes crowding distance per genome id within one
// front
func CrowdingDistances(front []*genome.Genome, objectives []Objective) (map[string]float64, error) {
	items, err := buildRanked(front, objectives)
	if err != nil {
		return nil, err
	}
	crowding(items)

	distances := make(map[string]float64, len(items))
	for _, item := range items {
		distances[item.genome.ID] = item.crowding
	}
	return distances, nil
}

// hypervolumeProxy is the bounding-box volume of front 0 in normalized
// objective space. It is not a true hypervolume but moves in the same
// direction as front spread, which is enough for convergence monitoring.
func hypervolumeProxy(front []*ranked) float64 {
	if len(front) < 2 {
		return 0
	}
	volume := 1.0
	for m := range front[0].vector {
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, item := range front {
			if item.vector[m] < lo {
				lo = item.vector[m]
			}
			if item.vector[m] > hi {
				hi = item.vector[m]
			}
		}
		volume *= hi - lo
	}
	return volume
}
