package distvec_test

import (
	"github.com/brandonshearin/distvec/distvec"
	"github.com/brandonshearin/distvec/distvec/mocks"
	"github.com/golang/mock/gomock"
	"golang.org/x/xerrors"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(AgentTestSuite))

type AgentTestSuite struct {
	costs *distvec.CostMatrix
}

func (s *AgentTestSuite) SetUpTest(c *gc.C) {
	// 0 -2- 1 -3- 2 and 0 -10- 2
	costs, err := distvec.NewCostMatrix(4, map[[2]distvec.NodeID]distvec.Cost{
		{0, 1}: 2,
		{1, 2}: 3,
		{0, 2}: 10,
	})
	c.Assert(err, gc.IsNil)
	s.costs = costs
}

func (s *AgentTestSuite) newAgent(c *gc.C, ch distvec.BroadcastChannel, id distvec.NodeID, neighbors ...distvec.NodeID) *distvec.Agent {
	a, err := distvec.NewAgent(distvec.AgentConfig{
		ID:        id,
		Neighbors: neighbors,
		Costs:     s.costs,
		Channel:   ch,
	})
	c.Assert(err, gc.IsNil)
	return a
}

func (s *AgentTestSuite) TestInvalidConfig(c *gc.C) {
	_, err := distvec.NewAgent(distvec.AgentConfig{ID: 1})
	c.Assert(err, gc.NotNil)
	c.Assert(xerrors.Is(err, distvec.ErrInvalidAgentConfig), gc.Equals, true)
	c.Assert(err, gc.ErrorMatches, "(?s).*cost matrix not specified.*")
	c.Assert(err, gc.ErrorMatches, "(?s).*broadcast channel not specified.*")
}

func (s *AgentTestSuite) TestInitAddsOneEdgePerNeighbor(c *gc.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()
	ch := mocks.NewMockBroadcastChannel(ctrl)

	a := s.newAgent(c, ch, 0, 1, 2, 1)
	c.Assert(a.Phase(), gc.Equals, distvec.PhaseInit)
	c.Assert(a.Step(1), gc.IsNil)
	c.Assert(a.Phase(), gc.Equals, distvec.PhaseBroadcast)

	c.Assert(a.Edges(), gc.DeepEquals, []distvec.Edge{
		{Source: 0, Destination: 1, Cost: 2},
		{Source: 0, Destination: 2, Cost: 10},
	})
	c.Assert(a.ShortestPaths(), gc.HasLen, 0, gc.Commentf("no paths before the first COMPUTE"))
}

func (s *AgentTestSuite) TestInitFailsWithoutCost(c *gc.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()

	a := s.newAgent(c, mocks.NewMockBroadcastChannel(ctrl), 0, 1, 3)
	err := a.Step(1)
	c.Assert(xerrors.Is(err, distvec.ErrMissingCost), gc.Equals, true)
	c.Assert(a.Phase(), gc.Equals, distvec.PhaseInit)
}

func (s *AgentTestSuite) TestBroadcastSendsSnapshotToEveryNeighbor(c *gc.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()
	ch := mocks.NewMockBroadcastChannel(ctrl)

	a := s.newAgent(c, ch, 1, 0, 2)
	c.Assert(a.Step(1), gc.IsNil)

	ch.EXPECT().Broadcast(
		distvec.NodeID(1),
		[]distvec.NodeID{0, 2},
		[]distvec.Edge{
			{Source: 1, Destination: 0, Cost: 2},
			{Source: 1, Destination: 2, Cost: 3},
		},
	).Return(nil).Times(1)
	c.Assert(a.Step(2), gc.IsNil)
	c.Assert(a.Phase(), gc.Equals, distvec.PhaseCompute)

	// Later rounds only compute; the mock fails the test on any further
	// broadcast.
	for round := 3; round < 6; round++ {
		c.Assert(a.Step(round), gc.IsNil)
	}
}

func (s *AgentTestSuite) TestBroadcastError(c *gc.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()
	ch := mocks.NewMockBroadcastChannel(ctrl)

	a := s.newAgent(c, ch, 1, 0)
	c.Assert(a.Step(1), gc.IsNil)

	ch.EXPECT().Broadcast(gomock.Any(), gomock.Any(), gomock.Any()).Return(xerrors.New("link down"))
	err := a.Step(2)
	c.Assert(err, gc.ErrorMatches, ".*link down.*")
	c.Assert(a.Phase(), gc.Equals, distvec.PhaseBroadcast)
}

func (s *AgentTestSuite) TestIsolatedAgentNeverBroadcasts(c *gc.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()

	a := s.newAgent(c, mocks.NewMockBroadcastChannel(ctrl), 3)
	for round := 1; round <= 5; round++ {
		c.Assert(a.Step(round), gc.IsNil)
	}
	c.Assert(a.ShortestPaths(), gc.DeepEquals, map[distvec.NodeID]distvec.Path{
		3: {Destination: 3, Predecessor: 3, Cost: 0},
	})
}

func (s *AgentTestSuite) TestReceiveIsIdempotentAndKeepsFirstCost(c *gc.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()

	a := s.newAgent(c, mocks.NewMockBroadcastChannel(ctrl), 0, 1)
	c.Assert(a.Step(1), gc.IsNil)

	batch := []distvec.Edge{
		{Source: 1, Destination: 0, Cost: 2},
		{Source: 1, Destination: 2, Cost: 3},
	}
	c.Assert(a.Receive(batch), gc.Equals, 2)
	once := a.Edges()
	c.Assert(a.Receive(batch), gc.Equals, 0)
	c.Assert(a.Edges(), gc.DeepEquals, once)

	c.Assert(a.Receive([]distvec.Edge{{Source: 1, Destination: 2, Cost: 1}}), gc.Equals, 0)
	c.Assert(a.Receive([]distvec.Edge{{Source: 0, Destination: 1, Cost: 19}}), gc.Equals, 0)
	c.Assert(a.Edges(), gc.DeepEquals, once, gc.Commentf("duplicates must never overwrite a known cost"))
}

func (s *AgentTestSuite) TestComputePrefersCheaperIndirectPath(c *gc.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()
	ch := mocks.NewMockBroadcastChannel(ctrl)
	ch.EXPECT().Broadcast(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	a := s.newAgent(c, ch, 0, 1, 2)
	c.Assert(a.Step(1), gc.IsNil)
	c.Assert(a.Step(2), gc.IsNil)
	a.Receive([]distvec.Edge{
		{Source: 1, Destination: 0, Cost: 2},
		{Source: 1, Destination: 2, Cost: 3},
	})
	a.Receive([]distvec.Edge{
		{Source: 2, Destination: 0, Cost: 10},
		{Source: 2, Destination: 1, Cost: 3},
	})
	c.Assert(a.Step(3), gc.IsNil)

	p, ok := a.PathTo(2)
	c.Assert(ok, gc.Equals, true)
	c.Assert(p, gc.Equals, distvec.Path{Destination: 2, Predecessor: 1, Cost: 5})

	p, ok = a.PathTo(1)
	c.Assert(ok, gc.Equals, true)
	c.Assert(p, gc.Equals, distvec.Path{Destination: 1, Predecessor: 1, Cost: 2})

	c.Assert(a.Relaxations() > 0, gc.Equals, true)
	c.Assert(a.Step(4), gc.IsNil)
	c.Assert(a.Relaxations(), gc.Equals, 0, gc.Commentf("nothing new was learned since the last round"))

	_, ok = a.PathTo(3)
	c.Assert(ok, gc.Equals, false)
}

func (s *AgentTestSuite) TestSelfPathInvariant(c *gc.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()
	ch := mocks.NewMockBroadcastChannel(ctrl)
	ch.EXPECT().Broadcast(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	a := s.newAgent(c, ch, 2, 0, 1)
	c.Assert(a.Step(1), gc.IsNil)
	c.Assert(a.Step(2), gc.IsNil)
	a.Receive([]distvec.Edge{{Source: 0, Destination: 2, Cost: 10}, {Source: 0, Destination: 1, Cost: 2}})

	for round := 3; round < 8; round++ {
		c.Assert(a.Step(round), gc.IsNil)
		p, ok := a.PathTo(2)
		c.Assert(ok, gc.Equals, true)
		c.Assert(p, gc.Equals, distvec.Path{Destination: 2, Predecessor: 2, Cost: 0}, gc.Commentf("round %d", round))
	}
}

func (s *AgentTestSuite) TestStringers(c *gc.C) {
	c.Assert(distvec.Edge{Source: 1, Destination: 2, Cost: 3}.String(), gc.Equals, "[1, 2, 3]")
	c.Assert(distvec.Path{Destination: 4, Predecessor: 1, Cost: 9}.String(), gc.Equals, "[4->1, 9]")
	c.Assert(distvec.PhaseCompute.String(), gc.Equals, "COMPUTE")

	e1 := distvec.Edge{Source: 1, Destination: 2, Cost: 3}
	e2 := distvec.Edge{Source: 1, Destination: 2, Cost: 8}
	c.Assert(e1.Equal(e2), gc.Equals, true)
	c.Assert(distvec.Path{Destination: 4, Cost: 1}.Equal(distvec.Path{Destination: 4, Cost: 2}), gc.Equals, true)
}
