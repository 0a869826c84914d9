package restapi

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

type handlerFunc func(w http.ResponseWriter, r *http.Request)

func (api *RestAPI) protect(finalHandler handlerFunc) http.Handler {
	var handler http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if api.Application.RequestHasInvalidAPIKey(r) {
			api.invalidAPIKeyResponse(w, r)
			return
		}
		finalHandler(w, r)
	})

	handler = api.rateLimiter(handler)
	return NewRequestLoggingMiddleware(api.Logger)(handler)
}

// Router assembles the public API surface.
func (api *RestAPI) Router() http.Handler {
	router := httprouter.New()

	router.Handler(http.MethodPost, "/api/v1/routes/eta", api.protect(api.etaHandler))
	router.Handler(http.MethodGet, "/api/v1/routes/:id/vehicles", api.protect(api.vehiclesForRouteHandler))
	router.Handler(http.MethodGet, "/api/v1/vehicles/live", api.protect(api.liveVehiclesHandler))
	router.Handler(http.MethodGet, "/api/v1/current-time", api.protect(api.currentTimeHandler))

	return router
}
