package trading

import (
	"sync"
	"time"
)

// Subscription is one caller's registered interest in one symbol's live
// data. Many subscriptions multiplex over one underlying stream; within one
// handle, updates arrive in the order the backend produced them.
type Subscription struct {
	symbol  string
	created time.Time
	engine  *streamEngine

	mx      sync.Mutex
	closed  bool
	err     error
	updates chan Update
}

func (s *Subscription) Symbol() string {
	return s.symbol
}

func (s *Subscription) Created() time.Time {
	return s.created
}

// Updates is the delivery channel. It is closed after Unsubscribe or after a
// terminal stream failure; in the latter case Err reports the failure.
func (s *Subscription) Updates() <-chan Update {
	return s.updates
}

// Err returns the terminal stream error, if any. Meaningful once Updates is
// closed.
func (s *Subscription) Err() error {
	s.mx.Lock()
	defer s.mx.Unlock()
	return s.err
}

// Unsubscribe releases the interest. Safe to call more than once and safe
// concurrently with an in-flight delivery: the delivery either completes or
// is dropped cleanly.
func (s *Subscription) Unsubscribe() {
	if !s.shutdown(nil) {
		return
	}
	s.engine.deregister(s)
}

// deliver hands one update to the subscriber without ever blocking the
// engine: when the buffer is full the update is dropped and counted.
func (s *Subscription) deliver(u Update) {
	s.mx.Lock()
	defer s.mx.Unlock()
	if s.closed {
		return
	}

	select {
	case s.updates <- u:
		// ok
	default:
		// The caller stopped draining; blocking here would stall delivery
		// to every other handle on the stream.
		droppedUpdates.WithLabelValues(s.engine.backend).Inc()
	}
}

// shutdown closes the handle at most once and reports whether this call did
// the closing.
func (s *Subscription) shutdown(err error) bool {
	s.mx.Lock()
	defer s.mx.Unlock()
	if s.closed {
		return false
	}
	s.closed = true
	s.err = err
	close(s.updates)
	return true
}
