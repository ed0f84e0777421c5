package message

import (
	"testing"

	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(InMemoryQueueTestSuite))

func Test(t *testing.T) { gc.TestingT(t) }

type InMemoryQueueTestSuite struct{}

type msg struct{ id int }

func (msg) Type() string { return "msg" }

func (s *InMemoryQueueTestSuite) TestEnqueueDequeue(c *gc.C) {
	q := NewInMemoryQueue()
	c.Assert(q.PendingMessages(), gc.Equals, false)

	for i := 0; i < 3; i++ {
		c.Assert(q.Enqueue(msg{id: i}), gc.IsNil)
	}
	c.Assert(q.PendingMessages(), gc.Equals, true)

	var got []int
	it := q.Messages()
	for it.Next() {
		got = append(got, it.Message().(msg).id)
	}
	c.Assert(it.Error(), gc.IsNil)
	c.Assert(got, gc.DeepEquals, []int{2, 1, 0})
	c.Assert(q.PendingMessages(), gc.Equals, false)
	c.Assert(q.Close(), gc.IsNil)
}

func (s *InMemoryQueueTestSuite) TestDiscard(c *gc.C) {
	q := NewInMemoryQueue()
	c.Assert(q.Enqueue(msg{id: 1}), gc.IsNil)
	c.Assert(q.DiscardMessages(), gc.IsNil)
	c.Assert(q.PendingMessages(), gc.Equals, false)
	c.Assert(q.Messages().Next(), gc.Equals, false)
}
