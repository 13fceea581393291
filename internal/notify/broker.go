// Package notify keeps one live push stream per user and delivers
// notifications to it.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dukerupert/mercato/internal/domain"
	"github.com/dukerupert/mercato/internal/telemetry"
	"github.com/google/uuid"
)

// Frame event names.
const (
	EventConnected    = "connected"
	EventNotification = "notification"
)

// Default broker settings.
const (
	DefaultIdleTimeout = 30 * time.Minute
	DefaultBufferSize  = 64
)

// Frame is one server-push message.
type Frame struct {
	Event string
	Data  any
}

// CloseReason records why a stream ended.
type CloseReason string

const (
	ReasonReplaced   CloseReason = "replaced"
	ReasonClientGone CloseReason = "client_gone"
	ReasonIdle       CloseReason = "idle_timeout"
	ReasonTransport  CloseReason = "transport_error"
	ReasonOverflow   CloseReason = "overflow"
	ReasonClosed     CloseReason = "closed"
	ReasonShutdown   CloseReason = "shutdown"
)

// Config controls stream buffering and idle expiry.
type Config struct {
	IdleTimeout time.Duration
	BufferSize  int
}

// Broker is the per-user stream registry. Every read-modify-write of a
// user's slot happens under mu.
type Broker struct {
	mu      sync.Mutex
	streams map[uuid.UUID]*Stream

	idleTimeout time.Duration
	bufferSize  int
	nextID      atomic.Uint64
	logger      *slog.Logger
}

var _ domain.NotificationPusher = (*Broker)(nil)

func NewBroker(cfg Config, logger *slog.Logger) *Broker {
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultBufferSize
	}
	return &Broker{
		streams:     make(map[uuid.UUID]*Stream),
		idleTimeout: cfg.IdleTimeout,
		bufferSize:  cfg.BufferSize,
		logger:      logger,
	}
}

// Open registers a new stream for userID, replacing and terminating any
// previous one. The stream's first frame is a connected event.
func (b *Broker) Open(userID uuid.UUID) *Stream {
	s := newStream(b.nextID.Add(1), userID, b.bufferSize)
	s.frames <- Frame{Event: EventConnected, Data: "Connected to notification stream"}

	b.mu.Lock()
	prev := b.streams[userID]
	b.streams[userID] = s
	if prev == nil {
		b.setGauge()
	}
	b.mu.Unlock()

	if prev != nil {
		b.finish(prev, ReasonReplaced)
	}

	b.logger.Debug("notification stream opened", "user_id", userID, "stream_id", s.id, "replaced", prev != nil)
	return s
}

// Send queues n on the user's live stream. It never blocks: with no stream
// registered it returns false, and a full buffer closes the stream.
func (b *Broker) Send(userID uuid.UUID, n domain.Notification) bool {
	b.mu.Lock()
	s, ok := b.streams[userID]
	if !ok {
		b.mu.Unlock()
		b.countDrop("offline")
		return false
	}

	select {
	case s.frames <- Frame{Event: EventNotification, Data: n}:
		b.mu.Unlock()
		return true
	default:
		delete(b.streams, userID)
		b.setGauge()
		b.mu.Unlock()
		b.countDrop("overflow")
		b.logger.Warn("notification stream overflowed", "user_id", userID, "stream_id", s.id)
		b.finish(s, ReasonOverflow)
		return false
	}
}

// Close terminates the user's current stream, if any.
func (b *Broker) Close(userID uuid.UUID) {
	b.mu.Lock()
	s, ok := b.streams[userID]
	if ok {
		delete(b.streams, userID)
		b.setGauge()
	}
	b.mu.Unlock()

	if ok {
		b.finish(s, ReasonClosed)
	}
}

// CloseAll terminates every stream. Used on shutdown.
func (b *Broker) CloseAll() {
	b.mu.Lock()
	all := b.streams
	b.streams = make(map[uuid.UUID]*Stream)
	b.setGauge()
	b.mu.Unlock()

	for _, s := range all {
		b.finish(s, ReasonShutdown)
	}
}

// Active returns the number of registered streams.
func (b *Broker) Active() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.streams)
}

// release removes s if it is still the user's registered stream, then
// finishes it. A replaced stream never evicts its successor.
func (b *Broker) release(s *Stream, reason CloseReason) {
	b.mu.Lock()
	if cur, ok := b.streams[s.userID]; ok && cur == s {
		delete(b.streams, s.userID)
		b.setGauge()
	}
	b.mu.Unlock()

	b.finish(s, reason)
}

func (b *Broker) finish(s *Stream, reason CloseReason) {
	if s.finish(reason) && telemetry.Business != nil {
		telemetry.Business.ConnectionsClosed.WithLabelValues(string(reason)).Inc()
	}
}

// setGauge must be called with mu held.
func (b *Broker) setGauge() {
	if telemetry.Business != nil {
		telemetry.Business.LiveConnections.Set(float64(len(b.streams)))
	}
}

func (b *Broker) countDrop(reason string) {
	if telemetry.Business != nil {
		telemetry.Business.PushesDropped.WithLabelValues(reason).Inc()
	}
}

// Serve writes the stream's frames with write until the stream is closed,
// ctx ends, the idle timeout passes without a frame, or write fails. It
// always leaves the stream closed and unregistered, and returns the reason.
func (b *Broker) Serve(ctx context.Context, s *Stream, write func(Frame) error) CloseReason {
	idle := time.NewTimer(b.idleTimeout)
	defer idle.Stop()

	for {
		select {
		case <-s.done:
			return s.Reason()
		case <-ctx.Done():
			b.release(s, ReasonClientGone)
			return s.Reason()
		case <-idle.C:
			b.release(s, ReasonIdle)
			return s.Reason()
		case f := <-s.frames:
			if err := write(f); err != nil {
				b.logger.Debug("notification stream write failed", "user_id", s.userID, "stream_id", s.id, "error", err)
				b.release(s, ReasonTransport)
				return s.Reason()
			}
			if f.Event == EventNotification && telemetry.Business != nil {
				telemetry.Business.PushesDelivered.Inc()
			}
			if !idle.Stop() {
				select {
				case <-idle.C:
				default:
				}
			}
			idle.Reset(b.idleTimeout)
		}
	}
}
