package playback

const eventBufferSize = 16

// Subscription provides event channels for a subscriber. Sends are
// non-blocking; a slow subscriber loses events rather than stalling the
// engine.
type Subscription struct {
	TrackChanged <-chan TrackChange
	StateChanged <-chan StateChange
	Error        <-chan ErrorEvent
	Done         <-chan struct{}

	trackCh chan TrackChange
	stateCh chan StateChange
	errorCh chan ErrorEvent
	doneCh  chan struct{}
}

func newSubscription() *Subscription {
	s := &Subscription{
		trackCh: make(chan TrackChange, eventBufferSize),
		stateCh: make(chan StateChange, eventBufferSize),
		errorCh: make(chan ErrorEvent, eventBufferSize),
		doneCh:  make(chan struct{}),
	}
	s.TrackChanged = s.trackCh
	s.StateChanged = s.stateCh
	s.Error = s.errorCh
	s.Done = s.doneCh
	return s
}

func (s *Subscription) close() {
	close(s.doneCh)
}

func (s *Subscription) sendTrack(e TrackChange) {
	select {
	case s.trackCh <- e:
	default:
	}
}

func (s *Subscription) sendState(e StateChange) {
	select {
	case s.stateCh <- e:
	default:
	}
}

func (s *Subscription) sendError(e ErrorEvent) {
	select {
	case s.errorCh <- e:
	default:
	}
}
