package route

import "math"

const (
	// earthRadiusKm is the mean radius of Earth in kilometers.
	earthRadiusKm = 6371.0

	// averageSpeedKmph is the assumed average city driving speed, used only
	// by the offline Estimate fallback when no routing provider is reachable.
	averageSpeedKmph = 30.0
)

// HaversineKm returns the great-circle distance between two points in
// kilometers.
func HaversineKm(a, b LatLng) float64 {
	dLat := degToRad(b.Lat - a.Lat)
	dLng := degToRad(b.Lng - a.Lng)

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)

	h := sinLat*sinLat +
		math.Cos(degToRad(a.Lat))*math.Cos(degToRad(b.Lat))*sinLng*sinLng

	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

func degToRad(deg float64) float64 {
	return deg * (math.Pi / 180.0)
}
