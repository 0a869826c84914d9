package restapi

import (
	"errors"
	"net/http"

	"pulse.busmetro.org/internal/fleet"
	"pulse.busmetro.org/internal/models"
	"pulse.busmetro.org/internal/utils"
)

// vehiclesForRouteHandler lists the live fleet snapshot for one route.
func (api *RestAPI) vehiclesForRouteHandler(w http.ResponseWriter, r *http.Request) {
	routeID := utils.ExtractIDFromParams(r, "id")

	if err := utils.ValidateID(routeID); err != nil {
		api.validationErrorResponse(w, r, map[string][]string{
			"id": {err.Error()},
		})
		return
	}

	api.sendSnapshot(w, r, fleet.Filter{RouteID: routeID})
}

// liveVehiclesHandler lists the live fleet snapshot for a city or bounding
// box, or for the whole fleet when no filter is given.
func (api *RestAPI) liveVehiclesHandler(w http.ResponseWriter, r *http.Request) {
	filter := fleet.Filter{
		City: r.URL.Query().Get("city"),
	}

	if boundsParam := r.URL.Query().Get("bounds"); boundsParam != "" {
		bounds, err := utils.ParseBounds(boundsParam)
		if err != nil {
			api.validationErrorResponse(w, r, map[string][]string{
				"bounds": {err.Error()},
			})
			return
		}
		filter.Bounds = &bounds
	}

	api.sendSnapshot(w, r, filter)
}

func (api *RestAPI) sendSnapshot(w http.ResponseWriter, r *http.Request, filter fleet.Filter) {
	snapshots, err := api.Fleet.Snapshot(r.Context(), filter)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			api.sendNotFound(w, r)
			return
		}
		api.serverErrorResponse(w, r, err)
		return
	}

	if api.Metrics != nil {
		api.Metrics.SnapshotRequests.Inc()
		api.Metrics.SnapshotVehicles.Observe(float64(len(snapshots)))
	}
	api.sendResponse(w, r, models.NewListResponse(snapshots, false))
}
