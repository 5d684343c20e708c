package coord

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidCoordinate is returned by Validate for NaN, infinite or
// out-of-range input. The transforms themselves never return it.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Validate checks that lat is within [-90, 90] and lng within [-180, 180].
func Validate(lat, lng float64) error {
	switch {
	case math.IsNaN(lat) || math.IsInf(lat, 0):
		return fmt.Errorf("%w: latitude %v", ErrInvalidCoordinate, lat)
	case math.IsNaN(lng) || math.IsInf(lng, 0):
		return fmt.Errorf("%w: longitude %v", ErrInvalidCoordinate, lng)
	case lat < -90 || lat > 90:
		return fmt.Errorf("%w: latitude %v outside [-90, 90]", ErrInvalidCoordinate, lat)
	case lng < -180 || lng > 180:
		return fmt.Errorf("%w: longitude %v outside [-180, 180]", ErrInvalidCoordinate, lng)
	}
	return nil
}
