package restapi

import (
	"net/http"
	"time"

	"pulse.busmetro.org/internal/models"
)

func (api *RestAPI) currentTimeHandler(w http.ResponseWriter, r *http.Request) {
	api.sendResponse(w, r, models.NewEntryResponse(models.NewCurrentTimeModel(time.Now())))
}
