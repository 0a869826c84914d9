package models

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tenStopRoute() Route {
	stops := make([]Stop, 10)
	for i := range stops {
		stops[i] = NewStop(fmt.Sprintf("stop-%d", i), "route-1", fmt.Sprintf("Stop %d", i), i, Location{})
	}
	return NewRoute("route-1", "Blue Line", "bengaluru", 30, stops)
}

func TestStopByID(t *testing.T) {
	route := tenStopRoute()

	stop := route.StopByID("stop-4")
	require.NotNil(t, stop)
	assert.Equal(t, 4, stop.Index)

	assert.Nil(t, route.StopByID("stop-99"))
}

func TestDistancePerStop(t *testing.T) {
	route := tenStopRoute()
	assert.InDelta(t, 3.0, route.DistancePerStop(), 1e-9)

	empty := NewRoute("route-2", "Empty", "bengaluru", 10, nil)
	assert.Zero(t, empty.DistancePerStop())
}

func TestStopsAfter(t *testing.T) {
	route := tenStopRoute()

	next := route.StopsAfter(6, 3)
	require.Len(t, next, 3)
	assert.Equal(t, 7, next[0].Index)
	assert.Equal(t, 9, next[2].Index)

	tail := route.StopsAfter(8, 3)
	require.Len(t, tail, 1)
	assert.Equal(t, 9, tail[0].Index)

	assert.Empty(t, route.StopsAfter(9, 3))
}
