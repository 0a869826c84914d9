package refdata

import (
	"testing"
	"time"

	"github.com/jamespfennell/gtfs"
	"github.com/stretchr/testify/assert"

	"pulse.busmetro.org/internal/models"
)

func TestDayMaskFromService(t *testing.T) {
	weekdays := dayMaskFromService(&gtfs.Service{
		Monday: true, Tuesday: true, Wednesday: true, Thursday: true, Friday: true,
	})
	assert.True(t, weekdays.Active(time.Monday))
	assert.True(t, weekdays.Active(time.Friday))
	assert.False(t, weekdays.Active(time.Saturday))
	assert.False(t, weekdays.Active(time.Sunday))

	assert.Equal(t, models.EveryDay, dayMaskFromService(&gtfs.Service{
		Monday: true, Tuesday: true, Wednesday: true, Thursday: true,
		Friday: true, Saturday: true, Sunday: true,
	}))
	assert.Equal(t, models.DayMask(0), dayMaskFromService(&gtfs.Service{}))
}

func TestClockFromOffset(t *testing.T) {
	clock := clockFromOffset(9*time.Hour + 30*time.Minute)
	assert.Equal(t, 9, clock.Hour())
	assert.Equal(t, 30, clock.Minute())

	assert.True(t, clockFromOffset(10*time.Hour).After(clockFromOffset(9*time.Hour)))
}
