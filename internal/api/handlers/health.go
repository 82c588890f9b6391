package handlers

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// Health provides a minimal liveness check endpoint.
func Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeJSON(nil, w, r, http.StatusOK, map[string]string{"status": "ok"})
}
