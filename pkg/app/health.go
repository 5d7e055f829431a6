package app

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/matej-podzemny/hotdesk-helper/pkg/config"
	httputil "github.com/matej-podzemny/hotdesk-helper/pkg/http"
)

// HealthHandler answers liveness and readiness probes. The gateway holds no
// connections worth probing; readiness means configuration loaded and the
// server is accepting requests.
type HealthHandler struct {
	cfg *config.Config
}

func NewHealthHandler(cfg *config.Config) *HealthHandler {
	return &HealthHandler{cfg: cfg}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"upstream": h.cfg.APIBase,
	}); err != nil {
		h.cfg.Log.Error("failed to write JSON response", "handler", "Health", "operation", "WriteJSON", "error", err)
	}
}

func (h *HealthHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/health", h.Health)
	router.GET("/ready", h.Health)
}
