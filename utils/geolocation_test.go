package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceKm(t *testing.T) {
	assert.InDelta(t, 0, DistanceKm(40.7128, -74.0060, 40.7128, -74.0060), 1e-9)

	// Manhattan to Brooklyn Bridge Park, roughly 2 km
	d := DistanceKm(40.7128, -74.0060, 40.7003, -73.9967)
	assert.InDelta(t, 1.6, d, 0.3)

	// One degree of latitude is about 111 km
	assert.InDelta(t, 111.2, DistanceKm(0, 0, 1, 0), 0.5)
}
