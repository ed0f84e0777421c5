package pipeline

import (
	"context"
	"fmt"
	"sync"
)

type sourceStub struct {
	index int
	data  []Payload
	err   error
}

func (s *sourceStub) Next(context.Context) bool {
	if s.err != nil || s.index == len(s.data) {
		return false
	}
	s.index++
	return true
}

func (s *sourceStub) Payload() Payload { return s.data[s.index-1] }
func (s *sourceStub) Error() error     { return s.err }

type sinkStub struct {
	mu   sync.Mutex
	data []Payload
	err  error
}

func (s *sinkStub) Consume(_ context.Context, p Payload) error {
	s.mu.Lock()
	s.data = append(s.data, p)
	s.mu.Unlock()
	return s.err
}

type stringPayload struct {
	mu        sync.Mutex
	processed bool
	val       string
}

func (s *stringPayload) MarkAsProcessed() {
	s.mu.Lock()
	s.processed = true
	s.mu.Unlock()
}

func (s *stringPayload) String() string { return s.val }

func stringPayloads(n int) []Payload {
	out := make([]Payload, n)
	for i := range out {
		out[i] = &stringPayload{val: fmt.Sprint(i)}
	}
	return out
}
