package bspgraph

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/brandonshearin/distvec/bspgraph/message"
	"golang.org/x/xerrors"
)

var (
	// ErrInvalidMessageDestination is returned by calls to SendMessage when
	// the destination cannot be resolved to a vertex of the graph.
	ErrInvalidMessageDestination = xerrors.New("invalid message destination")
)

// Vertex represents a vertex in the Graph. Every vertex owns two message
// queues: one holding the messages for the current superstep and one
// collecting the messages for the next superstep.
type Vertex struct {
	id       string
	value    interface{}
	active   bool
	msgQueue [2]message.Queue
}

// ID returns the Vertex ID.
func (v *Vertex) ID() string { return v.id }

// Value returns the value associated with this vertex.
func (v *Vertex) Value() interface{} { return v.value }

// SetValue sets the value associated with this vertex.
func (v *Vertex) SetValue(val interface{}) { v.value = val }

// Freeze marks the vertex as inactive. Inactive vertices will not be
// processed in the following supersteps unless they receive a message in
// which case they will be re-activated.
func (v *Vertex) Freeze() { v.active = false }

// Graph implements a parallel graph processor based on the concepts
// described in the Pregel paper.
type Graph struct {
	superstep int

	aggregators map[string]Aggregator
	vertices    map[string]*Vertex
	computeFn   ComputeFunc

	queueFactory message.QueueFactory

	wg              sync.WaitGroup
	vertexCh        chan *Vertex
	errCh           chan error
	stepCompletedCh chan struct{}
	activeInStep    int64
	pendingInStep   int64
}

// NewGraph creates a new Graph instance using the specified configuration.
// It is important for callers to invoke Close() on the returned graph
// instance when they are done using it.
func NewGraph(cfg GraphConfig) (*Graph, error) {
	if err := cfg.validate(); err != nil {
		return nil, xerrors.Errorf("graph config validation failed: %w", err)
	}

	g := &Graph{
		computeFn:    cfg.ComputeFn,
		queueFactory: cfg.QueueFactory,
		aggregators:  make(map[string]Aggregator),
		vertices:     make(map[string]*Vertex),
	}
	g.startWorkers(cfg.ComputeWorkers)

	return g, nil
}

// Close releases any resources associated with the graph.
func (g *Graph) Close() error {
	close(g.vertexCh)
	g.wg.Wait()

	return g.Reset()
}

// Reset the state of the graph by removing any existing vertices or
// aggregators and resetting the superstep counter.
func (g *Graph) Reset() error {
	g.superstep = 0
	for _, v := range g.vertices {
		for i := 0; i < 2; i++ {
			if err := v.msgQueue[i].Close(); err != nil {
				return xerrors.Errorf("closing message queue #%d for vertex %v: %w", i, v.ID(), err)
			}
		}
	}
	g.vertices = make(map[string]*Vertex)
	g.aggregators = make(map[string]Aggregator)
	return nil
}

// AddVertex inserts a new vertex with the specified id and initial value
// into the graph. If the vertex already exists, AddVertex will just
// overwrite its value with the provided initValue.
func (g *Graph) AddVertex(id string, initValue interface{}) {
	v := g.vertices[id]
	if v == nil {
		v = &Vertex{
			id: id,
			msgQueue: [2]message.Queue{
				g.queueFactory(),
				g.queueFactory(),
			},
			active: true,
		}
		g.vertices[id] = v
	}
	v.SetValue(initValue)
}

// Vertex returns the vertex with the given id or nil.
func (g *Graph) Vertex(id string) *Vertex { return g.vertices[id] }

// Vertices returns the IDs of all vertices in sorted order.
func (g *Graph) Vertices() []string {
	ids := make([]string, 0, len(g.vertices))
	for id := range g.vertices {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Superstep returns the current superstep value.
func (g *Graph) Superstep() int { return g.superstep }

// RegisterAggregator adds an aggregator with the specified name into the
// graph.
func (g *Graph) RegisterAggregator(name string, aggr Aggregator) {
	g.aggregators[name] = aggr
}

// Aggregator returns the aggregator with the specified name or nil.
func (g *Graph) Aggregator(name string) Aggregator {
	return g.aggregators[name]
}

// Aggregators returns a map of all currently registered aggregators where
// the key is the aggregator's name.
func (g *Graph) Aggregators() map[string]Aggregator { return g.aggregators }

// SendMessage queues msg for dstID. The message becomes visible to the
// destination in the next superstep. SendMessage may be called
// concurrently from compute functions.
func (g *Graph) SendMessage(dstID string, msg message.Message) error {
	dstVert := g.vertices[dstID]
	if dstVert == nil {
		return xerrors.Errorf("message cannot be delivered to %q: %w", dstID, ErrInvalidMessageDestination)
	}

	queueIndex := (g.superstep + 1) % 2
	return dstVert.msgQueue[queueIndex].Enqueue(msg)
}

// startWorkers allocates the required channels and spins up numWorkers to
// execute each superstep.
func (g *Graph) startWorkers(numWorkers int) {
	g.vertexCh = make(chan *Vertex)
	g.errCh = make(chan error, 1)
	g.stepCompletedCh = make(chan struct{})

	g.wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go g.stepWorker()
	}
}

// step executes the next superstep and returns back the number of vertices
// that were processed either because they were still active or because
// they received a message.
func (g *Graph) step() (activeInStep int, err error) {
	g.activeInStep, g.pendingInStep = 0, int64(len(g.vertices))
	if g.pendingInStep == 0 {
		return 0, nil
	}

	for _, v := range g.vertices {
		g.vertexCh <- v
	}

	// Block until the worker pool has processed every vertex.
	<-g.stepCompletedCh

	select {
	case err = <-g.errCh:
	default:
	}

	return int(g.activeInStep), err
}

// stepWorker polls vertexCh for incoming vertices and executes the
// configured ComputeFunc for each one. The worker automatically exits when
// vertexCh gets closed.
func (g *Graph) stepWorker() {
	for v := range g.vertexCh {
		buffer := g.superstep % 2
		if v.active || v.msgQueue[buffer].PendingMessages() {
			_ = atomic.AddInt64(&g.activeInStep, 1)
			v.active = true
			if err := g.computeFn(g, v, v.msgQueue[buffer].Messages()); err != nil {
				tryEmitError(g.errCh, xerrors.Errorf("running compute function for vertex %q failed: %w", v.ID(), err))
			} else if err := v.msgQueue[buffer].DiscardMessages(); err != nil {
				tryEmitError(g.errCh, xerrors.Errorf("discarding unprocessed messages for vertex %q failed: %w", v.ID(), err))
			}
		}
		if atomic.AddInt64(&g.pendingInStep, -1) == 0 {
			g.stepCompletedCh <- struct{}{}
		}
	}
	g.wg.Done()
}

func tryEmitError(errCh chan<- error, err error) {
	select {
	case errCh <- err:
	default: // channel already contains another error
	}
}
