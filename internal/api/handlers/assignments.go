package handlers

import (
	"context"
	"net/http"

	"ambulance-dispatch-service/internal/api/dto"
	"ambulance-dispatch-service/internal/domain"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// CycleRunner is the part of the dispatcher the API depends on.
type CycleRunner interface {
	Latest() *domain.Assignment
	RunOnce(ctx context.Context) (*domain.Assignment, error)
	Facilities() []domain.Facility
}

// AssignmentHandler exposes the latest cycle and lets clients trigger a new one.
type AssignmentHandler struct {
	Runner CycleRunner
	Log    *zap.Logger
}

func (h *AssignmentHandler) Latest(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	a := h.Runner.Latest()
	if a == nil {
		writeError(h.Log, w, r, http.StatusNotFound, "no assignment cycle has run yet")
		return
	}
	writeJSON(h.Log, w, r, http.StatusOK, dto.NewAssignmentResponse(a))
}

func (h *AssignmentHandler) RunCycle(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	a, err := h.Runner.RunOnce(r.Context())
	if err != nil {
		h.Log.Error("run cycle failed", zap.Error(err))
		writeError(h.Log, w, r, http.StatusServiceUnavailable, "assignment cycle did not run")
		return
	}
	writeJSON(h.Log, w, r, http.StatusOK, dto.NewAssignmentResponse(a))
}
