package handler

import (
	"context"
	"encoding/json"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/itchan-dev/boardstore/backend/internal/service"
	"github.com/itchan-dev/boardstore/shared/api"
	"github.com/itchan-dev/boardstore/shared/config"
	internal_errors "github.com/itchan-dev/boardstore/shared/errors"
	"github.com/itchan-dev/boardstore/shared/logger"
	"github.com/itchan-dev/boardstore/shared/utils"
)

// HealthChecker reports whether the storage backend is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	thread service.ThreadService
	reply  service.ReplyService
	cfg    *config.Config
	health HealthChecker
}

func New(thread service.ThreadService, reply service.ReplyService, cfg *config.Config, health HealthChecker) *Handler {
	return &Handler{thread: thread, reply: reply, cfg: cfg, health: health}
}

// writeJSON encodes v before touching the response so a marshalling
// failure can still be reported with a proper status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logger.Log.Error("failed to encode response", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func writeText(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(text))
}

// writeServiceError answers validation failures with 400 and anything else
// with 500 and the route's generic message.
func writeServiceError(w http.ResponseWriter, r *http.Request, message string, err error) {
	if internal_errors.Is[*internal_errors.ValidationError](err) {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	logger.Log.Error(message, "error", err, "request_id", chimw.GetReqID(r.Context()))
	writeJSON(w, http.StatusInternalServerError, api.ErrorResponse{Error: message})
}
