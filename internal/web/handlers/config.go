package handlers

import (
	"net/http"

	"github.com/kozaktomas/bioguard/internal/config"
	"github.com/kozaktomas/bioguard/internal/oracle"
	"github.com/kozaktomas/bioguard/internal/profile"
)

// ConfigHandler exposes the non-secret parts of the server configuration
// that the frontend needs to render forms.
type ConfigHandler struct {
	config *config.Config
	oracle *oracle.Client
}

// NewConfigHandler creates a new config handler
func NewConfigHandler(cfg *config.Config, client *oracle.Client) *ConfigHandler {
	return &ConfigHandler{
		config: cfg,
		oracle: client,
	}
}

// ConfigResponse represents the config response
type ConfigResponse struct {
	Departments  []string              `json:"departments"`
	AccessLevels []profile.AccessLevel `json:"access_levels"`
	Provider     string                `json:"provider"`
	Usage        *oracle.Usage         `json:"usage"`
}

// Get returns form options and the active oracle provider.
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, ConfigResponse{
		Departments: h.config.Defaults.Departments,
		AccessLevels: []profile.AccessLevel{
			profile.AccessStandard,
			profile.AccessRestricted,
			profile.AccessAdministrator,
		},
		Provider: h.oracle.ProviderName(),
		Usage:    h.oracle.Usage(),
	})
}
