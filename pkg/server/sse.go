package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// handleNotificationStream pushes a user's notifications as server-sent events
// for as long as the client stays connected
func (s *Server) handleNotificationStream(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	ctx := r.Context()

	if _, err := s.store.GetVolunteer(ctx, userID); err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	messages, unsubscribe, err := s.hub.Subscribe(ctx, userID)
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "notifications unavailable", err)
		return
	}
	defer unsubscribe()

	rc := http.NewResponseController(w)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	fmt.Fprint(w, ": connected\n\n")
	if err := rc.Flush(); err != nil {
		s.logger.Warn("Streaming not supported", zap.Error(err))
		return
	}

	s.logger.Debug("Notification stream opened", zap.String("user_id", userID))
	defer s.logger.Debug("Notification stream closed", zap.String("user_id", userID))

	heartbeat := time.NewTicker(s.heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			data, err := json.Marshal(msg)
			if err != nil {
				s.logger.Warn("Failed to encode notification", zap.String("id", msg.ID), zap.Error(err))
				continue
			}
			fmt.Fprintf(w, "id: %s\nevent: notification\ndata: %s\n\n", msg.ID, data)
			if err := rc.Flush(); err != nil {
				return
			}
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}
