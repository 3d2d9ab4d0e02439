package apiclient

import "sync"

// Sequencer hands out increasing tickets per logical operation so that a
// response resolving after a newer request of the same operation can be
// recognised and dropped.
type Sequencer struct {
	mu     sync.Mutex
	latest map[string]uint64
}

func NewSequencer() *Sequencer {
	return &Sequencer{latest: make(map[string]uint64)}
}

type Ticket struct {
	seq *Sequencer
	op  string
	n   uint64
}

func (s *Sequencer) Begin(op string) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest[op]++
	return Ticket{seq: s, op: op, n: s.latest[op]}
}

// Current reports whether no newer ticket has been issued for the operation.
func (t Ticket) Current() bool {
	t.seq.mu.Lock()
	defer t.seq.mu.Unlock()
	return t.seq.latest[t.op] == t.n
}

// Guard turns a result that lost the race into a stale failure.
func Guard[T any](t Ticket, r Result[T]) Result[T] {
	if t.Current() {
		return r
	}
	return Fail[T](staleError())
}
