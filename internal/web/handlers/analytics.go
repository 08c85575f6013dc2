package handlers

import (
	"net/http"

	"github.com/kozaktomas/bioguard/internal/analytics"
	"github.com/kozaktomas/bioguard/internal/profile"
)

// AnalyticsHandler serves population statistics over enrolled profiles.
type AnalyticsHandler struct {
	store *profile.Store
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(store *profile.Store) *AnalyticsHandler {
	return &AnalyticsHandler{store: store}
}

// Get returns the current population summary.
func (h *AnalyticsHandler) Get(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, analytics.Summarize(h.store.List()))
}
