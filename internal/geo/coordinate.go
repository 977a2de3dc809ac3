// Package geo turns free-form location input into canonical coordinates and
// talks to the optional geocoding collaborator.
package geo

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"changemakers/pkg/types"
)

// Placeholder is the map default shown before a publisher picks a location.
// An initiative can never be stored at this exact point.
var Placeholder = types.Coordinate{Lat: -1.2921, Lng: 36.8219}

const placeholderTolerance = 1e-9

var componentReg = regexp.MustCompile(`^([+-]?\d+(?:\.\d+)?)\s*°?\s*([NSEWnsew])?$`)

type component struct {
	value      float64
	hemisphere byte
}

// Parse accepts "lat, lng" or "lat° H, lng° H" with H one of N, S, E, W and
// returns nil, false for anything malformed or out of range.
func Parse(text string) (*types.Coordinate, bool) {
	parts := strings.Split(strings.TrimSpace(text), ",")
	if len(parts) != 2 {
		return nil, false
	}

	first, ok := parseComponent(parts[0])
	if !ok {
		return nil, false
	}

	second, ok := parseComponent(parts[1])
	if !ok {
		return nil, false
	}

	// "36.82° E, 1.29° S" names its axes, so honour them.
	if isLongitudeHemisphere(first.hemisphere) && isLatitudeHemisphere(second.hemisphere) {
		first, second = second, first
	}

	if isLongitudeHemisphere(first.hemisphere) || isLatitudeHemisphere(second.hemisphere) {
		return nil, false
	}

	coord := types.Coordinate{
		Lat: applyHemisphere(first),
		Lng: applyHemisphere(second),
	}

	if !InRange(coord) {
		return nil, false
	}

	return &coord, true
}

func parseComponent(raw string) (component, bool) {
	match := componentReg.FindStringSubmatch(strings.TrimSpace(raw))
	if match == nil {
		return component{}, false
	}

	value, err := strconv.ParseFloat(match[1], 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return component{}, false
	}

	c := component{value: value}
	if match[2] != "" {
		c.hemisphere = strings.ToUpper(match[2])[0]
	}

	return c, true
}

func applyHemisphere(c component) float64 {
	switch c.hemisphere {
	case 'S', 'W':
		return -math.Abs(c.value)
	case 'N', 'E':
		return math.Abs(c.value)
	}
	return c.value
}

func isLatitudeHemisphere(h byte) bool {
	return h == 'N' || h == 'S'
}

func isLongitudeHemisphere(h byte) bool {
	return h == 'E' || h == 'W'
}

func InRange(c types.Coordinate) bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lng) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

func IsPlaceholder(c types.Coordinate) bool {
	return math.Abs(c.Lat-Placeholder.Lat) < placeholderTolerance &&
		math.Abs(c.Lng-Placeholder.Lng) < placeholderTolerance
}

// Validate rejects a missing, out of range, or placeholder coordinate.
func Validate(c *types.Coordinate) error {
	if c == nil {
		return types.NewValidationError("coordinate", "location is required")
	}

	if !InRange(*c) {
		return types.NewValidationError("coordinate", "latitude must be within [-90, 90] and longitude within [-180, 180]")
	}

	if IsPlaceholder(*c) {
		return types.NewValidationError("coordinate", "pick the initiative's location on the map")
	}

	return nil
}

// ValidateGeofence checks every vertex of an optional boundary polygon.
func ValidateGeofence(points []types.Coordinate) error {
	if len(points) == 0 {
		return nil
	}

	if len(points) < 3 {
		return types.NewValidationError("geofence", "a boundary needs at least three points")
	}

	for _, p := range points {
		if !InRange(p) {
			return types.NewValidationError("geofence", "boundary point out of range")
		}
	}

	return nil
}
