package batch

import (
	"context"
	"sync"

	"github.com/brandonshearin/distvec/distvec"
	"github.com/brandonshearin/distvec/pipeline"
	"github.com/brandonshearin/distvec/topology"
	"github.com/google/uuid"
)

var payloadPool = sync.Pool{
	New: func() interface{} { return new(runPayload) },
}

// runPayload travels through the batch pipeline. The simulate stage fills
// in the network and the computed trees, the evaluate stage the result.
type runPayload struct {
	RunID uuid.UUID
	Seed  int64

	Topology topology.Topology
	Costs    *distvec.CostMatrix
	Paths    map[distvec.NodeID]map[distvec.NodeID]distvec.Path
	Rounds   int

	Result Result
}

// MarkAsProcessed implements pipeline.Payload.
func (p *runPayload) MarkAsProcessed() {
	*p = runPayload{}
	payloadPool.Put(p)
}

// seedSource emits one payload per seed in [first, first+runs).
type seedSource struct {
	next, end int64
	cur       *runPayload
	err       error
}

func (s *seedSource) Next(ctx context.Context) bool {
	if s.err = ctx.Err(); s.err != nil || s.next == s.end {
		return false
	}

	s.cur = payloadPool.Get().(*runPayload)
	s.cur.RunID = uuid.New()
	s.cur.Seed = s.next
	s.next++
	return true
}

func (s *seedSource) Payload() pipeline.Payload { return s.cur }
func (s *seedSource) Error() error              { return s.err }

// collectingSink copies the result out of every payload that reaches it.
type collectingSink struct {
	results []Result
	onDone  func(Result)
}

func (s *collectingSink) Consume(_ context.Context, p pipeline.Payload) error {
	res := p.(*runPayload).Result
	s.results = append(s.results, res)
	if s.onDone != nil {
		s.onDone(res)
	}
	return nil
}
