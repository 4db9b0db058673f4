package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"blog-platform/internal/analytics"
	"blog-platform/internal/models"
	"blog-platform/pkg/logger"
)

type EventHandlers struct {
	analytics *analytics.Service
}

func NewEventHandlers(analyticsService *analytics.Service) *EventHandlers {
	return &EventHandlers{
		analytics: analyticsService,
	}
}

func (h *EventHandlers) TrackEvent(w http.ResponseWriter, r *http.Request) {
	var req models.TrackEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	session, err := h.analytics.Track(r.Context(), &req)
	if errors.Is(err, analytics.ErrPostNotFound) || errors.Is(err, analytics.ErrInvalidAction) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		logger.Error("Error tracking event: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(models.TrackEventResponse{Session: session})
}

func (h *EventHandlers) TotalViews(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, 4)
	if err != nil {
		http.Error(w, "invalid path", http.StatusBadRequest)
		return
	}

	views, err := h.analytics.TotalViews(r.Context(), postID)
	if h.writeStatsError(w, "total views", err) {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{"views": views})
}

func (h *EventHandlers) DailyViews(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, 4)
	if err != nil {
		http.Error(w, "invalid path", http.StatusBadRequest)
		return
	}

	daily, err := h.analytics.DailyViews(r.Context(), postID)
	if h.writeStatsError(w, "daily views", err) {
		return
	}
	if daily == nil {
		daily = []models.DailyViews{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(daily)
}

func (h *EventHandlers) DailyDurations(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, 4)
	if err != nil {
		http.Error(w, "invalid path", http.StatusBadRequest)
		return
	}

	daily, err := h.analytics.DailyDurations(r.Context(), postID)
	if h.writeStatsError(w, "daily durations", err) {
		return
	}
	if daily == nil {
		daily = []models.DailyDuration{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(daily)
}

func (h *EventHandlers) writeStatsError(w http.ResponseWriter, what string, err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, analytics.ErrPostNotFound) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return true
	}
	logger.Error("Error fetching %s: %v", what, err)
	http.Error(w, "internal server error", http.StatusInternalServerError)
	return true
}
