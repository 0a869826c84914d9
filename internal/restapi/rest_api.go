package restapi

import (
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"pulse.busmetro.org/internal/app"
)

type RestAPI struct {
	*app.Application
	validate    *validator.Validate
	rateLimiter func(http.Handler) http.Handler
}

// NewRestAPI creates a new RestAPI instance with initialized validator and rate limiter
func NewRestAPI(app *app.Application) *RestAPI {
	validate := validator.New()
	// Report validation errors under the wire field names, not the Go ones.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &RestAPI{
		Application: app,
		validate:    validate,
		rateLimiter: NewRateLimitMiddleware(app.Config.RateLimit, time.Second),
	}
}
