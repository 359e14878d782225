package config

import (
	"net/http"

	"corpval/pkg/api/response"
	"corpval/pkg/config"
)

// Handler exposes the running engine configuration. It is read-only:
// settings change through config.yaml or CORPVAL_ env vars and a restart.
type Handler struct {
	cfg *config.Config
}

// NewHandler creates a new config handler
func NewHandler(cfg *config.Config) *Handler {
	return &Handler{cfg: cfg}
}

func (h *Handler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.cfg)
}
