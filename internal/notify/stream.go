package notify

import (
	"sync"

	"github.com/google/uuid"
)

// Stream is one live connection's outbound queue.
type Stream struct {
	id     uint64
	userID uuid.UUID
	frames chan Frame
	done   chan struct{}

	mu         sync.Mutex
	closed     bool
	reason     CloseReason
	onComplete []func(CloseReason)
}

func newStream(id uint64, userID uuid.UUID, buffer int) *Stream {
	return &Stream{
		id:     id,
		userID: userID,
		frames: make(chan Frame, buffer),
		done:   make(chan struct{}),
	}
}

func (s *Stream) ID() uint64 { return s.id }

func (s *Stream) UserID() uuid.UUID { return s.userID }

// Frames yields queued frames in send order.
func (s *Stream) Frames() <-chan Frame { return s.frames }

// Done is closed when the stream terminates.
func (s *Stream) Done() <-chan struct{} { return s.done }

// Reason is empty until the stream terminates.
func (s *Stream) Reason() CloseReason {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reason
}

// OnComplete registers fn to run once when the stream terminates. If it
// already has, fn runs immediately.
func (s *Stream) OnComplete(fn func(CloseReason)) {
	s.mu.Lock()
	if s.closed {
		reason := s.reason
		s.mu.Unlock()
		fn(reason)
		return
	}
	s.onComplete = append(s.onComplete, fn)
	s.mu.Unlock()
}

// finish marks the stream terminated and runs callbacks. It reports whether
// this call was the one that closed it.
func (s *Stream) finish(reason CloseReason) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	s.closed = true
	s.reason = reason
	callbacks := s.onComplete
	s.onComplete = nil
	close(s.done)
	s.mu.Unlock()

	for _, fn := range callbacks {
		fn(reason)
	}
	return true
}
