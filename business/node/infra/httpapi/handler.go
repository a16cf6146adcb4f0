// Package httpapi exposes node health over HTTP.
package httpapi

import (
	"context"
	"net/http"

	"github.com/fd1az/nodepulse/business/node/domain"
	"github.com/fd1az/nodepulse/internal/logger"
	"github.com/fd1az/nodepulse/internal/web"
)

// NodeService is the node surface used by the handlers.
type NodeService interface {
	HealthSnapshot(ctx context.Context) domain.HealthSnapshot
	ReconfigurePrimary(ctx context.Context, url string) (domain.NodeConnection, error)
	ConnectionStatus() domain.ConnectionStatus
}

// SnapshotSource publishes snapshots for streaming.
type SnapshotSource interface {
	Subscribe(buffer int) (<-chan domain.HealthSnapshot, func())
	Latest() (domain.HealthSnapshot, bool)
}

// Handler serves the node endpoints.
type Handler struct {
	svc        NodeService
	source     SnapshotSource
	corsOrigin string
	logger     logger.LoggerInterface
}

// NewHandler creates a Handler. source may be nil, which disables /ws.
func NewHandler(svc NodeService, source SnapshotSource, corsOrigin string, log logger.LoggerInterface) *Handler {
	return &Handler{
		svc:        svc,
		source:     source,
		corsOrigin: corsOrigin,
		logger:     log,
	}
}

// Register mounts the routes.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /generalMetrics", h.generalMetrics)
	mux.HandleFunc("GET /connections", h.getConnections)
	mux.HandleFunc("POST /connections", h.postConnections)
	if h.source != nil {
		mux.HandleFunc("GET /ws", h.stream)
	}
}

func (h *Handler) generalMetrics(w http.ResponseWriter, r *http.Request) {
	snap := h.svc.HealthSnapshot(r.Context())
	web.Respond(w, http.StatusOK, NewGeneralMetrics(snap))
}

func (h *Handler) getConnections(w http.ResponseWriter, r *http.Request) {
	web.Respond(w, http.StatusOK, NewConnections(h.svc.ConnectionStatus()))
}

func (h *Handler) postConnections(w http.ResponseWriter, r *http.Request) {
	var req ConnectionsRequest
	if err := web.Decode(w, r, &req); err != nil {
		web.RespondError(w, err)
		return
	}

	conn, err := h.svc.ReconfigurePrimary(r.Context(), req.Node)
	if err != nil {
		h.logger.Warn(r.Context(), "reconfigure rejected", "node", req.Node, "error", err)
		web.RespondError(w, err)
		return
	}

	web.Respond(w, http.StatusOK, ConnectionsResult{NodeError: !conn.Reachable()})
}
