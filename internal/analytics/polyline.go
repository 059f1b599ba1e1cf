package analytics

import "errors"

// ErrTruncatedPolyline is returned when the encoded input ends in the
// middle of a 5-bit group sequence.
var ErrTruncatedPolyline = errors.New("truncated polyline encoding")

// LatLng is one decoded coordinate pair in degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// DecodePolyline decodes the standard encoded polyline format used by the
// Strava summary polylines into coordinate pairs.
//
// Each value is a zig-zag encoded delta split into 5-bit groups, every
// group offset by 63 and flagged with 0x20 while more groups follow.
// Deltas accumulate into running lat/lng integers scaled by 1e-5.
//
// An empty string decodes to an empty slice. A string that ends inside a
// group returns the pairs decoded so far along with ErrTruncatedPolyline.
func DecodePolyline(encoded string) ([]LatLng, error) {
	points := make([]LatLng, 0, len(encoded)/4)
	var lat, lng int64

	i := 0
	next := func() (int64, error) {
		var result int64
		var shift uint
		for {
			if i >= len(encoded) {
				return 0, ErrTruncatedPolyline
			}
			b := int64(encoded[i]) - 63
			i++
			result |= (b & 0x1f) << shift
			shift += 5
			if b < 0x20 {
				break
			}
		}
		// undo zig-zag
		if result&1 != 0 {
			return ^(result >> 1), nil
		}
		return result >> 1, nil
	}

	for i < len(encoded) {
		dLat, err := next()
		if err != nil {
			return points, err
		}
		dLng, err := next()
		if err != nil {
			return points, err
		}
		lat += dLat
		lng += dLng
		points = append(points, LatLng{
			Lat: float64(lat) * 1e-5,
			Lng: float64(lng) * 1e-5,
		})
	}

	return points, nil
}
