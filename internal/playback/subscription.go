package playback

import "time"

const eventBufferSize = 16

// Subscription provides event channels for a subscriber.
//
// States carries the full snapshot on every change. Positions carries the
// ticker-cadence position stream. Sends never block: a slow subscriber
// misses intermediate values but always converges on the next one.
type Subscription struct {
	States    <-chan State
	Positions <-chan time.Duration
	Errors    <-chan ErrorEvent
	Done      <-chan struct{}

	// Internal write channels
	stateCh    chan State
	positionCh chan time.Duration
	errorCh    chan ErrorEvent
	doneCh     chan struct{}
}

// newSubscription creates a new subscription with buffered channels.
func newSubscription() *Subscription {
	s := &Subscription{
		stateCh:    make(chan State, eventBufferSize),
		positionCh: make(chan time.Duration, eventBufferSize),
		errorCh:    make(chan ErrorEvent, eventBufferSize),
		doneCh:     make(chan struct{}),
	}
	s.States = s.stateCh
	s.Positions = s.positionCh
	s.Errors = s.errorCh
	s.Done = s.doneCh
	return s
}

// close signals subscribers to stop by closing doneCh.
func (s *Subscription) close() {
	close(s.doneCh)
}

// sendState sends a state snapshot (non-blocking).
func (s *Subscription) sendState(e State) {
	select {
	case s.stateCh <- e:
	default:
		// Drop if buffer full
	}
}

// sendPosition sends a position sample (non-blocking).
func (s *Subscription) sendPosition(pos time.Duration) {
	select {
	case s.positionCh <- pos:
	default:
	}
}

// sendError sends an error event (non-blocking).
func (s *Subscription) sendError(e ErrorEvent) {
	select {
	case s.errorCh <- e:
	default:
	}
}
