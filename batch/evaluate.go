package batch

import (
	"context"

	"github.com/brandonshearin/distvec/distvec"
	"github.com/brandonshearin/distvec/pipeline"
)

// Result summarizes one simulated run.
type Result struct {
	RunID  string `yaml:"run_id"`
	Seed   int64  `yaml:"seed"`
	Nodes  int    `yaml:"nodes"`
	Rounds int    `yaml:"rounds"`

	// ReachablePairs counts ordered pairs (a, b), a != b, connected in
	// the network.
	ReachablePairs int `yaml:"reachable_pairs"`

	// KnownPairs counts ordered pairs for which a's agent knows a path.
	KnownPairs int `yaml:"known_pairs"`

	// OptimalPairs counts known pairs whose cost matches the true
	// shortest distance.
	OptimalPairs int `yaml:"optimal_pairs"`
}

// Optimal reports whether every reachable pair got a path of optimal cost.
func (r Result) Optimal() bool {
	return r.OptimalPairs == r.ReachablePairs
}

// allPairs returns the exact shortest distances between all nodes of the
// matrix (Floyd-Warshall).
func allPairs(costs *distvec.CostMatrix) [][]distvec.Cost {
	n := costs.Size()
	dist := make([][]distvec.Cost, n)
	for i := range dist {
		dist[i] = make([]distvec.Cost, n)
		for j := range dist[i] {
			dist[i][j] = costs.CostBetween(distvec.NodeID(i), distvec.NodeID(j))
		}
	}

	for k := 0; k < n; k++ {
		for i := 0; i < n; i++ {
			if !dist[i][k].IsFinite() {
				continue
			}
			for j := 0; j < n; j++ {
				if via := dist[i][k].Add(dist[k][j]); via < dist[i][j] {
					dist[i][j] = via
				}
			}
		}
	}
	return dist
}

// evaluator compares the trees computed by the agents against the exact
// all-pairs optimum.
type evaluator struct{}

func (evaluator) Process(_ context.Context, p pipeline.Payload) (pipeline.Payload, error) {
	payload := p.(*runPayload)
	res := Result{
		RunID:  payload.RunID.String(),
		Seed:   payload.Seed,
		Nodes:  payload.Costs.Size(),
		Rounds: payload.Rounds,
	}

	opt := allPairs(payload.Costs)
	for src := range opt {
		tree := payload.Paths[distvec.NodeID(src)]
		for dst, best := range opt[src] {
			if src == dst || !best.IsFinite() {
				continue
			}
			res.ReachablePairs++

			p, known := tree[distvec.NodeID(dst)]
			if !known {
				continue
			}
			res.KnownPairs++
			if p.Cost == best {
				res.OptimalPairs++
			}
		}
	}

	payload.Result = res
	return payload, nil
}
