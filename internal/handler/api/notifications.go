package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dukerupert/mercato/internal/domain"
	"github.com/dukerupert/mercato/internal/handler"
	"github.com/dukerupert/mercato/internal/middleware"
	"github.com/dukerupert/mercato/internal/notify"
)

// NotificationHandler serves the notification inbox and the live stream.
type NotificationHandler struct {
	notifications domain.NotificationService
	broker        *notify.Broker
}

func NewNotificationHandler(notifications domain.NotificationService, broker *notify.Broker) *NotificationHandler {
	return &NotificationHandler{
		notifications: notifications,
		broker:        broker,
	}
}

// Stream handles GET /api/notifications/stream as server-sent events.
// A second connection for the same user terminates the first.
func (h *NotificationHandler) Stream(w http.ResponseWriter, r *http.Request) {
	userID := domain.RequireUserID(r.Context())
	logger := middleware.GetLogger(r.Context())
	rc := http.NewResponseController(w)

	// Streams are exempt from the server's WriteTimeout.
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		handler.ErrorResponse(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		logger.Warn("notification stream cannot flush", "error", err)
		return
	}

	stream := h.broker.Open(userID)
	reason := h.broker.Serve(r.Context(), stream, func(f notify.Frame) error {
		if err := writeEvent(w, f); err != nil {
			return err
		}
		return rc.Flush()
	})

	logger.Debug("notification stream ended", "stream_id", stream.ID(), "reason", reason)
}

func writeEvent(w http.ResponseWriter, f notify.Frame) error {
	data, err := json.Marshal(f.Data)
	if err != nil {
		return fmt.Errorf("encode %s frame: %w", f.Event, err)
	}

	var buf bytes.Buffer
	buf.WriteString("event: ")
	buf.WriteString(f.Event)
	buf.WriteString("\ndata: ")
	buf.Write(data)
	buf.WriteString("\n\n")

	_, err = w.Write(buf.Bytes())
	return err
}

// List handles GET /api/notifications
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.notifications.List(r.Context(), domain.RequireUserID(r.Context()))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, map[string]any{"notifications": items})
}

// UnreadCount handles GET /api/notifications/unread-count
func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.notifications.UnreadCount(r.Context(), domain.RequireUserID(r.Context()))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, map[string]int64{"count": count})
}

// MarkRead handles POST /api/notifications/{id}/read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := handler.PathUUID(r, "id")
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if err := h.notifications.MarkRead(r.Context(), domain.RequireUserID(r.Context()), id); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MarkAllRead handles POST /api/notifications/read-all
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	updated, err := h.notifications.MarkAllRead(r.Context(), domain.RequireUserID(r.Context()))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, map[string]int64{"updated": updated})
}

// Delete handles DELETE /api/notifications/{id}
func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := handler.PathUUID(r, "id")
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if err := h.notifications.Delete(r.Context(), domain.RequireUserID(r.Context()), id); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
