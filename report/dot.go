package report

import (
	"strconv"

	"github.com/awalterschulze/gographviz"
	"github.com/brandonshearin/distvec/distvec"
	"github.com/brandonshearin/distvec/topology"
	"golang.org/x/xerrors"
)

const (
	graphName       = "network"
	colorRoot       = "#3b82f6"
	colorFirstHop   = "#ef4444"
	colorUnused     = "#9ca3af"
	colorUnreached  = "#f3f4f6"
	colorReachedBox = "#dbeafe"
)

// NetworkDOT renders topo as an undirected Graphviz graph whose links are
// labelled with their cost. If root is not nil, the node it runs on and
// the links it uses as first hops are highlighted, and nodes root has no
// path to are greyed out.
func NetworkDOT(topo topology.Topology, costs *distvec.CostMatrix, root Source) (string, error) {
	graph := gographviz.NewGraph()
	if err := graph.SetName(graphName); err != nil {
		return "", xerrors.Errorf("build dot graph: %w", err)
	}
	if err := graph.SetDir(false); err != nil {
		return "", xerrors.Errorf("build dot graph: %w", err)
	}
	for attr, val := range map[string]string{"rankdir": "LR", "nodesep": "0.5", "center": "true"} {
		if err := graph.AddAttr(graphName, attr, val); err != nil {
			return "", xerrors.Errorf("build dot graph: %w", err)
		}
	}

	var (
		paths     map[distvec.NodeID]distvec.Path
		firstHops = make(map[distvec.NodeID]bool)
	)
	if root != nil {
		paths = root.ShortestPaths()
		for dst, p := range paths {
			if dst != root.ID() {
				firstHops[p.Predecessor] = true
			}
		}
	}

	for i := 0; i < topo.NodeCount(); i++ {
		id := topo.IDOf(i)
		if err := graph.AddNode(graphName, nodeName(id), nodeAttrs(id, root, paths)); err != nil {
			return "", xerrors.Errorf("add node %d: %w", id, err)
		}
	}

	drawn := make(map[[2]distvec.NodeID]bool)
	for i := 0; i < topo.NodeCount(); i++ {
		a := topo.IDOf(i)
		for _, b := range topo.NeighborsOf(a) {
			key := [2]distvec.NodeID{a, b}
			if b < a {
				key = [2]distvec.NodeID{b, a}
			}
			if drawn[key] {
				continue
			}
			drawn[key] = true
			attrs := map[string]string{
				"label": strconv.Quote(costs.CostBetween(a, b).String()),
				"color": strconv.Quote(colorUnused),
			}
			if root != nil && ((a == root.ID() && firstHops[b]) || (b == root.ID() && firstHops[a])) {
				attrs["color"] = strconv.Quote(colorFirstHop)
				attrs["penwidth"] = "2"
			}
			if err := graph.AddEdge(nodeName(a), nodeName(b), false, attrs); err != nil {
				return "", xerrors.Errorf("add link %d-%d: %w", a, b, err)
			}
		}
	}

	return graph.String(), nil
}

func nodeName(id distvec.NodeID) string { return strconv.FormatInt(int64(id), 10) }

func nodeAttrs(id distvec.NodeID, root Source, paths map[distvec.NodeID]distvec.Path) map[string]string {
	attrs := map[string]string{
		"shape": "circle",
		"style": "filled",
	}
	switch {
	case root == nil:
		attrs["fillcolor"] = strconv.Quote(colorReachedBox)
	case id == root.ID():
		attrs["fillcolor"] = strconv.Quote(colorRoot)
		attrs["penwidth"] = "2"
	default:
		fill := colorUnreached
		if p, ok := paths[id]; ok {
			fill = colorReachedBox
			attrs["tooltip"] = strconv.Quote("cost " + p.Cost.String() + " via " + nodeName(p.Predecessor))
		}
		attrs["fillcolor"] = strconv.Quote(fill)
	}
	return attrs
}
