package bspgraph

import (
	"github.com/brandonshearin/distvec/bspgraph/message"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/xerrors"
)

// Aggregator is implemented by types that provide concurrent-safe
// aggregation primitives (counters, min/max)
type Aggregator interface {
	// Type returns the type of this aggregator
	Type() string

	// Set the aggregator to the specified value
	Set(val interface{})

	// Get the current aggregator value
	Get() interface{}

	// Aggregate updates the aggregator's value based on the provided value
	Aggregate(val interface{})

	// Delta returns the change in the aggregator's value
	// since the last call to Delta
	Delta() interface{}
}

// ComputeFunc is a function that a graph instance invokes on each vertex when
// executing a superstep. msgIt yields the messages sent to v during the
// previous superstep.
type ComputeFunc func(g *Graph, v *Vertex, msgIt message.Iterator) error

// GraphConfig encapsulates the configuration options for creating graphs.
type GraphConfig struct {
	// QueueFactory is used by the graph to create message queue instances
	// for each vertex that is added to the graph. If not specified, the
	// default in-memory queue will be used instead.
	QueueFactory message.QueueFactory

	// ComputeFn is the compute function that will be invoked for each graph
	// vertex when executing a superstep. A valid ComputeFunc instance is
	// required for the config to be valid.
	ComputeFn ComputeFunc

	// ComputeWorkers specifies the number of workers to use for invoking the
	// registered ComputeFunc when executing each superstep. If not
	// specified, a single worker will be used.
	ComputeWorkers int
}

// validate checks whether a GraphConfig instance contains valid values and
// fills in defaults for the optional ones.
func (g *GraphConfig) validate() error {
	var err error
	if g.QueueFactory == nil {
		g.QueueFactory = message.NewInMemoryQueue
	}
	if g.ComputeWorkers <= 0 {
		g.ComputeWorkers = 1
	}

	if g.ComputeFn == nil {
		err = multierror.Append(err, xerrors.New("compute function not specified"))
	}

	return err
}
