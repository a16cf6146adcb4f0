package httpapi

import (
	"context"
	"net/http"

	"github.com/fd1az/nodepulse/business/system/domain"
	"github.com/fd1az/nodepulse/internal/logger"
	"github.com/fd1az/nodepulse/internal/web"
)

// SystemService samples the host.
type SystemService interface {
	Metrics(ctx context.Context) (domain.SystemMetrics, error)
}

// Handler serves /systemMetrics.
type Handler struct {
	svc    SystemService
	logger logger.LoggerInterface
}

func NewHandler(svc SystemService, log logger.LoggerInterface) *Handler {
	return &Handler{svc: svc, logger: log}
}

// Register mounts the routes.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /systemMetrics", h.systemMetrics)
}

func (h *Handler) systemMetrics(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.Metrics(r.Context())
	if err != nil {
		h.logger.Error(r.Context(), "system metrics failed", "error", err)
		web.RespondError(w, err)
		return
	}
	web.Respond(w, http.StatusOK, NewSystemMetrics(m))
}
