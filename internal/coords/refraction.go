package coords

import (
	"math"

	"github.com/soniakeys/meeus/v3/refraction"
	"github.com/soniakeys/unit"

	"github.com/star/skycore/internal/angle"
)

// RefractionAngle returns atmospheric refraction in radians at altitude
// alt (radians) for standard pressure and temperature. With apparent set,
// alt is an observed altitude and Bennett's formula is used; otherwise alt
// is geometric and Saemundsson's formula is used. Altitudes below the
// horizon are clamped near -2 degrees, where both formulas diverge.
func RefractionAngle(alt float64, apparent bool) float64 {
	if apparent {
		h := math.Max(alt, -1.7*angle.RadPerDeg)
		return refraction.Bennett(unit.Angle(h)).Rad()
	}
	h := math.Max(alt, -1.9*angle.RadPerDeg)
	return refraction.Saemundsson(unit.Angle(h)).Rad()
}
