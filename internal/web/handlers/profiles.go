package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/bioguard/internal/profile"
)

// ProfilesHandler exposes the enrolled profile records.
type ProfilesHandler struct {
	store *profile.Store
}

// NewProfilesHandler creates a new profiles handler
func NewProfilesHandler(store *profile.Store) *ProfilesHandler {
	return &ProfilesHandler{store: store}
}

// withoutPhoto strips the stored capture so list responses stay small. The
// image is served by the Photo endpoint instead.
func withoutPhoto(p profile.Profile) profile.Profile {
	p.Photo = nil
	return p
}

// ListResponse represents the profile list response
type ListResponse struct {
	Profiles []profile.Profile `json:"profiles"`
	Total    int               `json:"total"`
}

// List returns all profiles in enrollment order. An optional q parameter
// filters by name, department or id, ignoring case and diacritics.
func (h *ProfilesHandler) List(w http.ResponseWriter, r *http.Request) {
	profiles := h.store.List()
	total := len(profiles)

	if q := r.URL.Query().Get("q"); q != "" {
		profiles = profile.Filter(profiles, q)
	}

	out := make([]profile.Profile, len(profiles))
	for i, p := range profiles {
		out[i] = withoutPhoto(p)
	}

	respondJSON(w, http.StatusOK, ListResponse{Profiles: out, Total: total})
}

// Get returns a single profile without its photo.
func (h *ProfilesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, err := h.store.Get(id)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			respondError(w, http.StatusNotFound, "profile not found")
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, withoutPhoto(*p))
}

// Photo serves the enrollment capture of a profile.
func (h *ProfilesHandler) Photo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, err := h.store.Get(id)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			respondError(w, http.StatusNotFound, "profile not found")
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if len(p.Photo) == 0 {
		respondError(w, http.StatusNotFound, "profile has no photo")
		return
	}

	w.Header().Set("Content-Type", http.DetectContentType(p.Photo))
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(p.Photo)
}

// Delete removes a profile from the store.
func (h *ProfilesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := h.store.Get(id); err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			respondError(w, http.StatusNotFound, "profile not found")
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := h.store.Remove(id); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Export streams the profile records as a download. The format query
// parameter selects json (default) or csv. The JSON export is full
// fidelity, photos included, so it can serve as a backup of the store;
// photos=false drops them for a lighter file. CSV is flat and never
// carries photos.
func (h *ProfilesHandler) Export(w http.ResponseWriter, r *http.Request) {
	profiles := h.store.List()

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}

	var (
		data        []byte
		err         error
		contentType string
	)
	switch format {
	case "json":
		if r.URL.Query().Get("photos") == "false" {
			for i := range profiles {
				profiles[i].Photo = nil
			}
		}
		data, err = profile.ExportJSON(profiles)
		contentType = "application/json"
	case "csv":
		data, err = profile.ExportCSV(profiles)
		contentType = "text/csv; charset=utf-8"
	default:
		respondError(w, http.StatusBadRequest, fmt.Sprintf("unknown export format '%s'", format))
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=bioguard_profiles.%s", format))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
