package restapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"pulse.busmetro.org/internal/eta"
	"pulse.busmetro.org/internal/logging"
	"pulse.busmetro.org/internal/models"
)

// etaHandler computes bounded arrival estimates for one journey request.
func (api *RestAPI) etaHandler(w http.ResponseWriter, r *http.Request) {
	defer logging.SafeCloseWithLogging(r.Body, api.Logger, "eta request body")

	var req eta.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.validationErrorResponse(w, r, map[string][]string{
			"body": {"request body must be valid JSON"},
		})
		return
	}

	if err := api.validate.Struct(&req); err != nil {
		api.validationErrorResponse(w, r, fieldErrorsFromValidator(err))
		return
	}

	start := time.Now()
	result, err := api.ETA.ComputeETA(r.Context(), req)
	if api.Metrics != nil {
		api.Metrics.ComputeDuration.Observe(time.Since(start).Seconds())
	}

	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			api.countETAFailure("not_found")
			api.sendNotFound(w, r)
		case errors.Is(err, models.ErrInvalidSegment):
			api.countETAFailure("invalid_segment")
			api.invalidSegmentResponse(w, r, err)
		default:
			api.countETAFailure("internal")
			api.serverErrorResponse(w, r, err)
		}
		return
	}

	if api.Metrics != nil {
		api.Metrics.ETAComputations.Inc()
	}
	api.sendResponse(w, r, models.NewEntryResponse(result))
}

func (api *RestAPI) countETAFailure(reason string) {
	if api.Metrics != nil {
		api.Metrics.ETAFailures.WithLabelValues(reason).Inc()
	}
}

// fieldErrorsFromValidator flattens validator errors into the per-field
// error map used by validation responses.
func fieldErrorsFromValidator(err error) map[string][]string {
	fieldErrors := make(map[string][]string)

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		fieldErrors["request"] = []string{err.Error()}
		return fieldErrors
	}

	for _, fe := range validationErrors {
		field := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]
		switch fe.Tag() {
		case "required":
			fieldErrors[field] = append(fieldErrors[field], "is required")
		case "max":
			fieldErrors[field] = append(fieldErrors[field], "too long (max "+fe.Param()+" characters)")
		default:
			fieldErrors[field] = append(fieldErrors[field], "is invalid")
		}
	}
	return fieldErrors
}
