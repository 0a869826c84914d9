package utils

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"pulse.busmetro.org/internal/models"
)

// Allow alphanumeric, underscore, hyphen, dot - common in transit IDs
var validIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// ValidateID validates that an ID is safe and within reasonable limits
func ValidateID(id string) error {
	if id == "" {
		return errors.New("id cannot be empty")
	}

	if len(id) > 100 {
		return errors.New("id too long (max 100 characters)")
	}

	if !validIDPattern.MatchString(id) {
		return errors.New("id contains invalid characters")
	}

	return nil
}

// ValidateLatitude validates latitude values
func ValidateLatitude(lat float64) error {
	if lat < -90.0 || lat > 90.0 {
		return errors.New("latitude must be between -90 and 90")
	}
	return nil
}

// ValidateLongitude validates longitude values
func ValidateLongitude(lon float64) error {
	if lon < -180.0 || lon > 180.0 {
		return errors.New("longitude must be between -180 and 180")
	}
	return nil
}

// ParseBounds parses a "lat1,lon1,lat2,lon2" query value into a normalized
// bounding box whose min corner is south-west of its max corner.
func ParseBounds(value string) (models.BoundingBox, error) {
	parts := strings.Split(value, ",")
	if len(parts) != 4 {
		return models.BoundingBox{}, errors.New("bounds must be lat1,lon1,lat2,lon2")
	}

	coords := make([]float64, 4)
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return models.BoundingBox{}, fmt.Errorf("invalid bounds coordinate %q", part)
		}
		coords[i] = f
	}

	box := models.BoundingBox{
		MinLat: min(coords[0], coords[2]),
		MaxLat: max(coords[0], coords[2]),
		MinLon: min(coords[1], coords[3]),
		MaxLon: max(coords[1], coords[3]),
	}

	if err := ValidateLatitude(box.MinLat); err != nil {
		return models.BoundingBox{}, err
	}
	if err := ValidateLatitude(box.MaxLat); err != nil {
		return models.BoundingBox{}, err
	}
	if err := ValidateLongitude(box.MinLon); err != nil {
		return models.BoundingBox{}, err
	}
	if err := ValidateLongitude(box.MaxLon); err != nil {
		return models.BoundingBox{}, err
	}

	return box, nil
}
