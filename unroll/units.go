package unroll

import (
	"math"

	"github.com/DragonGamesStudios/Geo-AID/value"
)

// unitFor maps a numeric literal's unit suffix to the scale factor that
// converts it to this module's canonical unit (centimeters for distance,
// radians for angle) and the dimension it carries.
func unitFor(unit string) (factor float64, dim value.Dimension, ok bool) {
	switch unit {
	case "cm":
		return 1, value.Distance(), true
	case "mm":
		return 0.1, value.Distance(), true
	case "m":
		return 100, value.Distance(), true
	case "deg":
		return math.Pi / 180, value.Angle(), true
	case "rad":
		return 1, value.Angle(), true
	default:
		return 0, value.Dimension{}, false
	}
}
