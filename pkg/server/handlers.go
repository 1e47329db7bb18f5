package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jakechorley/volunteer-hub/pkg/core/services"
	"github.com/jakechorley/volunteer-hub/pkg/db"
)

const (
	defaultNotificationLimit = 50
	maxNotificationLimit     = 200
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status":     "healthy",
		"autoAccept": s.approver != nil,
	})
}

func (s *Server) handleEligibility(w http.ResponseWriter, r *http.Request) {
	shiftID := chi.URLParam(r, "shiftId")
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		respondError(w, http.StatusBadRequest, "userId is required", nil)
		return
	}

	result, err := services.CheckEligibility(r.Context(), s.store, s.evaluator, userID, shiftID)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

type signUpRequest struct {
	UserID string `json:"userId"`
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	shiftID := chi.URLParam(r, "shiftId")

	var req signUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.UserID == "" {
		respondError(w, http.StatusBadRequest, "userId is required", nil)
		return
	}

	result, err := services.SignUp(r.Context(), s.store, s.approver, s.logger, s.now(), req.UserID, shiftID)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, result)
}

type signupResponse struct {
	ID             string `json:"id"`
	UserID         string `json:"userId"`
	ShiftID        string `json:"shiftId"`
	Status         string `json:"status"`
	PreviousStatus string `json:"previousStatus,omitempty"`
}

func (s *Server) handleCancelSignup(w http.ResponseWriter, r *http.Request) {
	signupID := chi.URLParam(r, "signupId")

	signup, err := services.CancelSignup(r.Context(), s.store, s.logger, s.now(), signupID)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, signupResponse{
		ID:             signup.ID,
		UserID:         signup.UserID,
		ShiftID:        signup.ShiftID,
		Status:         string(signup.Status),
		PreviousStatus: string(signup.PreviousStatus),
	})
}

type notificationResponse struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	ShiftID   string     `json:"shiftId,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
}

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	limit := defaultNotificationLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer", nil)
			return
		}
		limit = min(n, maxNotificationLimit)
	}

	if _, err := s.store.GetVolunteer(r.Context(), userID); err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	notifications, err := s.store.GetNotifications(r.Context(), userID, limit)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"notifications": toNotificationResponses(notifications),
	})
}

func toNotificationResponses(notifications []db.Notification) []notificationResponse {
	out := make([]notificationResponse, 0, len(notifications))
	for _, n := range notifications {
		out = append(out, notificationResponse{
			ID:        n.ID,
			Title:     n.Title,
			Body:      n.Body,
			ShiftID:   n.ShiftID,
			CreatedAt: n.CreatedAt,
			ReadAt:    n.ReadAt,
		})
	}
	return out
}
