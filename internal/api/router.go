package api

import (
	"net/http"

	"ambulance-dispatch-service/internal/api/handlers"
	"ambulance-dispatch-service/internal/platform/obs"
	"ambulance-dispatch-service/internal/ports"

	"github.com/julienschmidt/httprouter"
	"github.com/justinas/alice"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(
	runner handlers.CycleRunner,
	provider ports.RouteProvider,
	cache ports.RouteCache,
	log *zap.Logger,
) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}

	router := httprouter.New()

	assignments := &handlers.AssignmentHandler{Runner: runner, Log: log}
	routes := handlers.NewRouteHandler(provider, cache, log)

	router.GET("/health", instrument("/health", handlers.Health))
	router.GET("/assignments", instrument("/assignments", assignments.Latest))
	router.POST("/cycles", instrument("/cycles", assignments.RunCycle))
	router.GET("/facilities", instrument("/facilities", assignments.Facilities))
	router.GET("/routes", instrument("/routes", routes.Get))
	router.Handler(http.MethodGet, "/metrics", promhttp.HandlerFor(obs.Registry, promhttp.HandlerOpts{}))

	return alice.New(recoverPanic(log), requestID, loggingMiddleware(log)).Then(router)
}
