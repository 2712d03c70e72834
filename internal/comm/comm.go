// Package comm provides an in-process stand-in for the MPI-style
// communicator the file context & section engine is built against (see
// §6 of the specification: "comm, mpirank, mpisize"). Every rank in a
// simulated run is a goroutine holding its own *Communicator, all sharing
// one *group; collective calls rendezvous across every rank before any of
// them returns, the same bulk-synchronous contract a real communicator
// gives the engine.
package comm

import (
	"sync"

	"golang.org/x/sync/errgroup"
)

// Communicator is one rank's handle onto a shared group of P ranks.
type Communicator struct {
	g    *group
	rank int
}

// NewGroup creates size Communicators that are all collectively bound
// together: a call to a collective method on any one of them blocks until
// the matching call has been made on all of them.
func NewGroup(size int) []*Communicator {
	if size <= 0 {
		panic("comm: group size must be positive")
	}
	g := &group{size: size, values: make([]any, size)}
	g.cond = sync.NewCond(&g.mu)
	comms := make([]*Communicator, size)
	for r := range comms {
		comms[r] = &Communicator{g: g, rank: r}
	}
	return comms
}

// Rank returns this communicator's rank, 0 <= Rank() < Size().
func (c *Communicator) Rank() int { return c.rank }

// Size returns the number of ranks in the group.
func (c *Communicator) Size() int { return c.g.size }

// group implements a reusable generation-counted barrier: every rank
// contributes a value, the last arrival folds them all into a shared
// result, and every rank (including the last) retrieves that result before
// the barrier resets for its next use.
type group struct {
	size int

	mu      sync.Mutex
	cond    *sync.Cond
	seq     int
	arrived int
	values  []any
	result  any
}

func (g *group) collective(rank int, value any, fold func(values []any) any) any {
	g.mu.Lock()
	mySeq := g.seq
	g.values[rank] = value
	g.arrived++
	if g.arrived == g.size {
		g.result = fold(g.values)
		g.arrived = 0
		g.values = make([]any, g.size)
		g.seq++
		g.cond.Broadcast()
	} else {
		for g.seq == mySeq {
			g.cond.Wait()
		}
	}
	result := g.result
	g.mu.Unlock()
	return result
}

// BroadcastBytes broadcasts data from root to every rank in the group.
// Every rank must call BroadcastBytes the same number of times in the same
// order; only the value passed by root is used.
func (c *Communicator) BroadcastBytes(root int, data []byte) []byte {
	type payload struct {
		root int
		data []byte
	}
	result := c.g.collective(c.rank, payload{root, data}, func(values []any) any {
		return values[root].(payload).data
	})
	return result.([]byte)
}

// broadcastPayload is the generic carrier BroadcastValue folds over: every
// rank contributes one, only root's v survives the fold.
type broadcastPayload[T any] struct {
	root int
	v    T
}

// BroadcastValue broadcasts an arbitrary value from root to every rank in
// the group. Every rank must call BroadcastValue the same number of times
// in the same order; only the value root passes is used. This is the
// general form BroadcastBytes and BroadcastInt specialize.
func BroadcastValue[T any](c *Communicator, root int, v T) T {
	result := c.g.collective(c.rank, broadcastPayload[T]{root, v}, func(values []any) any {
		return values[root].(broadcastPayload[T]).v
	})
	return result.(T)
}

// BroadcastInt broadcasts an int from root to every rank.
func (c *Communicator) BroadcastInt(root int, v int64) int64 {
	type payload struct {
		root int
		v    int64
	}
	result := c.g.collective(c.rank, payload{root, v}, func(values []any) any {
		return values[root].(payload).v
	})
	return result.(int64)
}

// ORReduce logical-OR-reduces flag across every rank, returning the same
// result to all of them. Used for the count-error agreement step
// described in §5 (error reduction discipline): every rank
// must agree before cursor advancement commits.
func (c *Communicator) ORReduce(flag bool) bool {
	result := c.g.collective(c.rank, flag, func(values []any) any {
		out := false
		for _, v := range values {
			if v.(bool) {
				out = true
				break
			}
		}
		return out
	})
	return result.(bool)
}

// Barrier blocks until every rank in the group has called Barrier.
func (c *Communicator) Barrier() {
	c.g.collective(c.rank, struct{}{}, func(values []any) any { return struct{}{} })
}

// RunOnAll drives fn concurrently on every communicator in comms, the way a
// test harness simulates P ranks entering a collective operation at once. It mirrors the fan-out pattern the teacher's
// internal/batch package uses for concurrent package builds, here applied
// to concurrent ranks instead of concurrent build jobs.
func RunOnAll(comms []*Communicator, fn func(c *Communicator) error) error {
	var eg errgroup.Group
	for _, c := range comms {
		c := c
		eg.Go(func() error { return fn(c) })
	}
	return eg.Wait()
}
