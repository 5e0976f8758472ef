package ors

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// DecodePolyline decodes an encoded polyline string (precision 1e-5, the
// ORS default) into an XY LineString of lon/lat coordinates.
func DecodePolyline(encoded string) (*geom.LineString, error) {
	var coords []float64
	var lat, lon int64

	i := 0
	for i < len(encoded) {
		dLat, n, err := decodeVarint(encoded[i:])
		if err != nil {
			return nil, err
		}
		i += n
		lat += dLat

		dLon, n, err := decodeVarint(encoded[i:])
		if err != nil {
			return nil, eris.Wrap(err, "ors: polyline truncated at longitude")
		}
		i += n
		lon += dLon

		coords = append(coords, float64(lon)/1e5, float64(lat)/1e5)
	}

	if len(coords) < 4 {
		return nil, eris.Errorf("ors: polyline has %d points, need at least 2", len(coords)/2)
	}
	return geom.NewLineStringFlat(geom.XY, coords), nil
}

// decodeVarint reads one zigzag-encoded value and returns it with the
// number of bytes consumed.
func decodeVarint(s string) (int64, int, error) {
	var result int64
	var shift uint
	for i := 0; i < len(s); i++ {
		b := int64(s[i]) - 63
		if b < 0 {
			return 0, 0, eris.Errorf("ors: invalid polyline byte %q", s[i])
		}
		result |= (b & 0x1f) << shift
		if b < 0x20 {
			if result&1 != 0 {
				return ^(result >> 1), i + 1, nil
			}
			return result >> 1, i + 1, nil
		}
		shift += 5
	}
	return 0, 0, eris.New("ors: truncated polyline varint")
}
