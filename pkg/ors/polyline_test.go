package ors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePolyline(t *testing.T) {
	t.Parallel()

	// Reference string from the polyline algorithm documentation.
	line, err := DecodePolyline("_p~iF~ps|U_ulLnnqC_mqNvxq`@")
	require.NoError(t, err)

	coords := line.Coords()
	require.Len(t, coords, 3)

	// X is longitude, Y latitude.
	assert.InDelta(t, -120.2, coords[0].X(), 1e-5)
	assert.InDelta(t, 38.5, coords[0].Y(), 1e-5)
	assert.InDelta(t, -120.95, coords[1].X(), 1e-5)
	assert.InDelta(t, 40.7, coords[1].Y(), 1e-5)
	assert.InDelta(t, -126.453, coords[2].X(), 1e-5)
	assert.InDelta(t, 43.252, coords[2].Y(), 1e-5)
}

func TestDecodePolylineErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		encoded string
	}{
		{"empty", ""},
		{"single point", "_p~iF~ps|U"},
		{"truncated", "_p~iF"},
		{"invalid byte", "_p~iF~ps|U "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := DecodePolyline(tt.encoded)
			assert.Error(t, err)
		})
	}
}
