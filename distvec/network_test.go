package distvec_test

import (
	"github.com/brandonshearin/distvec/distvec"
	"github.com/brandonshearin/distvec/topology"
	"github.com/google/go-cmp/cmp"
	"golang.org/x/xerrors"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(NetworkTestSuite))

type NetworkTestSuite struct{}

func (s *NetworkTestSuite) TestTriangle(c *gc.C) {
	costs, err := distvec.NewCostMatrix(3, map[[2]distvec.NodeID]distvec.Cost{
		{0, 1}: 2,
		{1, 2}: 3,
		{0, 2}: 10,
	})
	c.Assert(err, gc.IsNil)

	n, err := distvec.NewNetwork(topology.FullMesh(3), costs, nil)
	c.Assert(err, gc.IsNil)
	c.Assert(n.Run(3), gc.IsNil)
	c.Assert(n.Round(), gc.Equals, 3)

	a, ok := n.Agent(0)
	c.Assert(ok, gc.Equals, true)
	exp := map[distvec.NodeID]distvec.Path{
		0: {Destination: 0, Predecessor: 0, Cost: 0},
		1: {Destination: 1, Predecessor: 1, Cost: 2},
		2: {Destination: 2, Predecessor: 1, Cost: 5},
	}
	if diff := cmp.Diff(exp, a.ShortestPaths()); diff != "" {
		c.Fatalf("unexpected paths for node 0 (-want +got):\n%s", diff)
	}

	cNode, _ := n.Agent(2)
	p, ok := cNode.PathTo(0)
	c.Assert(ok, gc.Equals, true)
	c.Assert(p, gc.Equals, distvec.Path{Destination: 0, Predecessor: 1, Cost: 5})
}

func (s *NetworkTestSuite) TestIsolatedNode(c *gc.C) {
	g := topology.NewGraphWithNodes(3)
	c.Assert(g.AddLink(0, 1), gc.IsNil)
	costs, err := distvec.NewCostAssigner(5).Assign(g)
	c.Assert(err, gc.IsNil)

	n, err := distvec.NewNetwork(g, costs, nil)
	c.Assert(err, gc.IsNil)
	c.Assert(n.Run(6), gc.IsNil)

	isolated, _ := n.Agent(2)
	c.Assert(isolated.Edges(), gc.HasLen, 0)
	c.Assert(isolated.ShortestPaths(), gc.DeepEquals, map[distvec.NodeID]distvec.Path{
		2: {Destination: 2, Predecessor: 2, Cost: 0},
	})

	other, _ := n.Agent(0)
	_, ok := other.PathTo(2)
	c.Assert(ok, gc.Equals, false)
}

func (s *NetworkTestSuite) TestKnowledgeStopsAtTwoHops(c *gc.C) {
	// 0 - 1 - 2 - 3: the single broadcast round teaches node 0 about the
	// links of node 1 only.
	g := topology.NewGraphWithNodes(4)
	c.Assert(g.AddLink(0, 1), gc.IsNil)
	c.Assert(g.AddLink(1, 2), gc.IsNil)
	c.Assert(g.AddLink(2, 3), gc.IsNil)
	costs, err := distvec.NewCostAssigner(11).Assign(g)
	c.Assert(err, gc.IsNil)

	n, err := distvec.NewNetwork(g, costs, nil)
	c.Assert(err, gc.IsNil)
	c.Assert(n.Run(10), gc.IsNil)

	a, _ := n.Agent(0)
	p, ok := a.PathTo(2)
	c.Assert(ok, gc.Equals, true)
	c.Assert(p.Predecessor, gc.Equals, distvec.NodeID(1))
	c.Assert(p.Cost, gc.Equals, costs.CostBetween(0, 1)+costs.CostBetween(1, 2))

	_, ok = a.PathTo(3)
	c.Assert(ok, gc.Equals, false)
}

func (s *NetworkTestSuite) TestComputeIsDeterministic(c *gc.C) {
	g, err := topology.KOut(30, 2, 3)
	c.Assert(err, gc.IsNil)
	costs, err := distvec.NewCostAssigner(3).Assign(g)
	c.Assert(err, gc.IsNil)

	run := func() map[distvec.NodeID]map[distvec.NodeID]distvec.Path {
		n, err := distvec.NewNetwork(g, costs, nil)
		c.Assert(err, gc.IsNil)
		c.Assert(n.Run(5), gc.IsNil)
		out := make(map[distvec.NodeID]map[distvec.NodeID]distvec.Path)
		for _, a := range n.Agents() {
			out[a.ID()] = a.ShortestPaths()
		}
		return out
	}

	first := run()
	if diff := cmp.Diff(first, run()); diff != "" {
		c.Fatalf("repeated runs disagree (-first +second):\n%s", diff)
	}
}

func (s *NetworkTestSuite) TestRejectsMismatchedCostMatrix(c *gc.C) {
	costs, err := distvec.NewCostMatrix(2, nil)
	c.Assert(err, gc.IsNil)

	_, err = distvec.NewNetwork(topology.Ring(4), costs, nil)
	c.Assert(xerrors.Is(err, topology.ErrMalformed), gc.Equals, true)
}

func (s *NetworkTestSuite) TestLocalChannel(c *gc.C) {
	costs, err := distvec.NewCostMatrix(2, map[[2]distvec.NodeID]distvec.Cost{{0, 1}: 1})
	c.Assert(err, gc.IsNil)

	ch := distvec.NewLocalChannel()
	a, err := distvec.NewAgent(distvec.AgentConfig{ID: 1, Neighbors: []distvec.NodeID{0}, Costs: costs, Channel: ch})
	c.Assert(err, gc.IsNil)
	ch.Register(a)

	edges := []distvec.Edge{{Source: 0, Destination: 1, Cost: 1}}
	c.Assert(ch.Broadcast(0, []distvec.NodeID{1}, edges), gc.IsNil)
	edges[0].Cost = 99
	c.Assert(a.Edges(), gc.HasLen, 0, gc.Commentf("nothing is delivered before Flush"))
	c.Assert(ch.Pending(), gc.Equals, 1)

	c.Assert(ch.Flush(), gc.Equals, 1)
	c.Assert(a.Edges(), gc.DeepEquals, []distvec.Edge{{Source: 0, Destination: 1, Cost: 1}})
	c.Assert(ch.Pending(), gc.Equals, 0)

	err = ch.Broadcast(1, []distvec.NodeID{0, 1}, edges)
	c.Assert(xerrors.Is(err, distvec.ErrUnknownPeer), gc.Equals, true)
	c.Assert(ch.Pending(), gc.Equals, 0, gc.Commentf("a failed broadcast must not queue partial deliveries"))
}
