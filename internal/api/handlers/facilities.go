package handlers

import (
	"net/http"

	"ambulance-dispatch-service/internal/api/dto"

	"github.com/julienschmidt/httprouter"
)

// Facilities lists every facility with its last refreshed state.
func (h *AssignmentHandler) Facilities(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeJSON(h.Log, w, r, http.StatusOK, dto.NewFacilitiesResponse(h.Runner.Facilities()))
}
