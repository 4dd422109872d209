package spinner

import "sync"

// settleSignal is the completion event of one transition. Only the first Fire
// counts; later calls report false and change nothing.
type settleSignal struct {
	once sync.Once
	ch   chan struct{}
}

func newSettleSignal() *settleSignal {
	return &settleSignal{ch: make(chan struct{})}
}

// Fire closes the signal and reports whether this call did it
func (s *settleSignal) Fire() bool {
	fired := false
	s.once.Do(func() {
		close(s.ch)
		fired = true
	})
	return fired
}

// Done is closed once the signal has fired
func (s *settleSignal) Done() <-chan struct{} {
	return s.ch
}
