package aggregator

import "sync/atomic"

// IntAccumulator sums int values. It is safe for concurrent use.
type IntAccumulator struct {
	prevSum int64
	curSum  int64
}

// Type implements bspgraph.Aggregator.
func (a *IntAccumulator) Type() string {
	return "IntAccumulator"
}

// Get returns the current sum.
func (a *IntAccumulator) Get() interface{} {
	return int(atomic.LoadInt64(&a.curSum))
}

// Set replaces the sum with val, which must be an int. The delta baseline
// is reset as well. Set must not race with Aggregate.
func (a *IntAccumulator) Set(val interface{}) {
	v := int64(val.(int))
	atomic.StoreInt64(&a.prevSum, v)
	atomic.StoreInt64(&a.curSum, v)
}

// Aggregate adds val, which must be an int, to the sum.
func (a *IntAccumulator) Aggregate(val interface{}) {
	_ = atomic.AddInt64(&a.curSum, int64(val.(int)))
}

// Delta returns how much the sum changed since the previous call to Delta
// or Set.
func (a *IntAccumulator) Delta() interface{} {
	for {
		curSum := atomic.LoadInt64(&a.curSum)
		prevSum := atomic.LoadInt64(&a.prevSum)
		if atomic.CompareAndSwapInt64(&a.prevSum, prevSum, curSum) {
			return int(curSum - prevSum)
		}
	}
}
