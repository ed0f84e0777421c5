package distvec_test

import (
	"bytes"
	"testing"

	"github.com/brandonshearin/distvec/distvec"
	"github.com/brandonshearin/distvec/topology"
	"golang.org/x/xerrors"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(CostTestSuite))

func Test(t *testing.T) { gc.TestingT(t) }

type CostTestSuite struct{}

func (s *CostTestSuite) TestAssignProducesSymmetricMatrix(c *gc.C) {
	topo, err := topology.KOut(25, 2, 7)
	c.Assert(err, gc.IsNil)

	m, err := distvec.NewCostAssigner(1).Assign(topo)
	c.Assert(err, gc.IsNil)
	c.Assert(m.Size(), gc.Equals, 25)

	for i := 0; i < m.Size(); i++ {
		a := distvec.NodeID(i)
		c.Assert(m.CostBetween(a, a), gc.Equals, distvec.Cost(0))

		neighbors := make(map[distvec.NodeID]bool)
		for _, n := range topo.NeighborsOf(a) {
			neighbors[n] = true
		}
		for j := 0; j < m.Size(); j++ {
			b := distvec.NodeID(j)
			c.Assert(m.CostBetween(a, b), gc.Equals, m.CostBetween(b, a), gc.Commentf("(%d,%d)", a, b))
			if a == b {
				continue
			}
			cost := m.CostBetween(a, b)
			c.Assert(cost.IsFinite(), gc.Equals, neighbors[b], gc.Commentf("(%d,%d) finite iff adjacent", a, b))
			if cost.IsFinite() {
				c.Assert(cost >= 1 && cost <= distvec.DefaultMaxCost, gc.Equals, true, gc.Commentf("cost %v out of range", cost))
			}
		}
	}
}

func (s *CostTestSuite) TestAssignIsDeterministicForSeed(c *gc.C) {
	topo := topology.FullMesh(12)
	m1, err := distvec.NewCostAssigner(99).Assign(topo)
	c.Assert(err, gc.IsNil)
	m2, err := distvec.NewCostAssigner(99).Assign(topo)
	c.Assert(err, gc.IsNil)
	c.Assert(m1, gc.DeepEquals, m2)

	m3, err := distvec.NewCostAssigner(100).Assign(topo)
	c.Assert(err, gc.IsNil)
	c.Assert(m1, gc.Not(gc.DeepEquals), m3)
}

func (s *CostTestSuite) TestAssignHonoursOneSidedLinks(c *gc.C) {
	g := topology.NewGraphWithNodes(3)
	c.Assert(g.AddArc(2, 0), gc.IsNil)

	m, err := distvec.NewCostAssigner(3).Assign(g)
	c.Assert(err, gc.IsNil)
	c.Assert(m.Adjacent(0, 2), gc.Equals, true)
	c.Assert(m.CostBetween(0, 2), gc.Equals, m.CostBetween(2, 0))
	c.Assert(m.Adjacent(0, 1), gc.Equals, false)
}

func (s *CostTestSuite) TestAssignRejectsMalformedTopology(c *gc.C) {
	g := topology.NewGraph()
	g.AddNode(0)
	g.AddNode(4)
	c.Assert(g.AddLink(0, 4), gc.IsNil)

	_, err := distvec.NewCostAssigner(1).Assign(g)
	c.Assert(err, gc.NotNil)
	c.Assert(xerrors.Is(err, topology.ErrMalformed), gc.Equals, true)
}

func (s *CostTestSuite) TestCostAddSaturates(c *gc.C) {
	c.Assert(distvec.Cost(3).Add(4), gc.Equals, distvec.Cost(7))
	c.Assert(distvec.Infinity.Add(1), gc.Equals, distvec.Infinity)
	c.Assert(distvec.Cost(1).Add(distvec.Infinity), gc.Equals, distvec.Infinity)
	c.Assert((distvec.Infinity - 1).Add(5), gc.Equals, distvec.Infinity)
	c.Assert(distvec.Infinity.String(), gc.Equals, "inf")
}

func (s *CostTestSuite) TestCostBetweenOutOfRange(c *gc.C) {
	m, err := distvec.NewCostMatrix(2, map[[2]distvec.NodeID]distvec.Cost{{0, 1}: 4})
	c.Assert(err, gc.IsNil)
	c.Assert(m.CostBetween(0, 5), gc.Equals, distvec.Infinity)
	c.Assert(m.CostBetween(-1, 0), gc.Equals, distvec.Infinity)

	_, err = distvec.NewCostMatrix(2, map[[2]distvec.NodeID]distvec.Cost{{0, 1}: 0})
	c.Assert(xerrors.Is(err, topology.ErrMalformed), gc.Equals, true)
}

func (s *CostTestSuite) TestDump(c *gc.C) {
	m, err := distvec.NewCostMatrix(3, map[[2]distvec.NodeID]distvec.Cost{{0, 1}: 7})
	c.Assert(err, gc.IsNil)

	var buf bytes.Buffer
	c.Assert(m.Dump(&buf), gc.IsNil)
	exp := "\n      (  0) (  1) (  2) " +
		"\n(  0)     0     7     X \n" +
		"\n(  1)     7     0     X \n" +
		"\n(  2)     X     X     0 \n"
	c.Assert(buf.String(), gc.Equals, exp)
}
