package route

// DecodePolyline decodes an encoded-polyline string (the overview_polyline
// format returned by the directions provider) into coordinate points.
// Malformed trailing input yields the points decoded so far.
func DecodePolyline(encoded string) []LatLng {
	var points []LatLng
	var lat, lng int
	index := 0

	for index < len(encoded) {
		dlat, next, ok := decodeChunk(encoded, index)
		if !ok {
			break
		}
		lat += dlat
		index = next

		dlng, next, ok := decodeChunk(encoded, index)
		if !ok {
			break
		}
		lng += dlng
		index = next

		points = append(points, LatLng{Lat: float64(lat) / 1e5, Lng: float64(lng) / 1e5})
	}
	return points
}

// decodeChunk reads one varint-encoded signed delta starting at index.
func decodeChunk(encoded string, index int) (delta, next int, ok bool) {
	var result, shift int
	for {
		if index >= len(encoded) {
			return 0, index, false
		}
		b := int(encoded[index]) - 63
		index++
		result |= (b & 0x1f) << shift
		shift += 5
		if b < 0x20 {
			break
		}
	}
	delta = result >> 1
	if result&1 != 0 {
		delta = ^delta
	}
	return delta, index, true
}
