package geo

import (
	"math"
	"strconv"
	"strings"
)

const earthRadiusKm = 6371.0

// ValidCoordinates reports whether lat/lng are finite and inside the WGS84 range
func ValidCoordinates(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// ParseCoordinates parses a lat/lng pair given as strings. ok is false when
// either value is missing, not a number, or out of range.
func ParseCoordinates(latRaw, lngRaw string) (lat, lng float64, ok bool) {
	latRaw, lngRaw = strings.TrimSpace(latRaw), strings.TrimSpace(lngRaw)
	if latRaw == "" || lngRaw == "" {
		return 0, 0, false
	}
	lat, err := strconv.ParseFloat(latRaw, 64)
	if err != nil {
		return 0, 0, false
	}
	lng, err = strconv.ParseFloat(lngRaw, 64)
	if err != nil {
		return 0, 0, false
	}
	if !ValidCoordinates(lat, lng) {
		return 0, 0, false
	}
	return lat, lng, true
}

// KmToMeters converts a radius in kilometers to meters
func KmToMeters(km float64) float64 {
	return km * 1000
}

// HaversineKm returns the great-circle distance between two points in km
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
