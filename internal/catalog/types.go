package catalog

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoEphemeris is returned when a solar-system object is computed
	// with a Coordinates that has no ephemeris attached.
	ErrNoEphemeris = errors.New("no ephemeris available")

	// ErrUnknownType is returned for unrecognized two-letter type codes.
	ErrUnknownType = errors.New("unknown object type")
)

// Type classifies an Object.
type Type int

const (
	TypeNonexistent Type = iota
	TypePlanet
	TypeMoon
	TypeAsteroid
	TypeComet
	TypeSatellite
	TypeSpacecraft
	TypeStar
	TypeDoubleStar
	TypeVariableStar
	TypeDoubleVariableStar
	TypeOpenCluster
	TypeGlobularCluster
	TypeBrightNebula
	TypeDarkNebula
	TypePlanetaryNebula
	TypeGalaxy
	TypeConstellation
	TypeAsterism
)

var typeCodes = [...]string{
	TypeNonexistent:        "NO",
	TypePlanet:             "PL",
	TypeMoon:               "MN",
	TypeAsteroid:           "AS",
	TypeComet:              "CM",
	TypeSatellite:          "ST",
	TypeSpacecraft:         "SC",
	TypeStar:               "SS",
	TypeDoubleStar:         "DS",
	TypeVariableStar:       "VS",
	TypeDoubleVariableStar: "DV",
	TypeOpenCluster:        "OC",
	TypeGlobularCluster:    "GC",
	TypeBrightNebula:       "BN",
	TypeDarkNebula:         "DN",
	TypePlanetaryNebula:    "PN",
	TypeGalaxy:             "GX",
	TypeConstellation:      "CN",
	TypeAsterism:           "AM",
}

var typeNames = [...]string{
	TypeNonexistent:        "nonexistent",
	TypePlanet:             "planet",
	TypeMoon:               "moon",
	TypeAsteroid:           "asteroid",
	TypeComet:              "comet",
	TypeSatellite:          "satellite",
	TypeSpacecraft:         "spacecraft",
	TypeStar:               "star",
	TypeDoubleStar:         "double star",
	TypeVariableStar:       "variable star",
	TypeDoubleVariableStar: "double variable star",
	TypeOpenCluster:        "open cluster",
	TypeGlobularCluster:    "globular cluster",
	TypeBrightNebula:       "bright nebula",
	TypeDarkNebula:         "dark nebula",
	TypePlanetaryNebula:    "planetary nebula",
	TypeGalaxy:             "galaxy",
	TypeConstellation:      "constellation",
	TypeAsterism:           "asterism",
}

// Code returns the two-letter code used in CSV catalogs.
func (t Type) Code() string {
	if t < 0 || int(t) >= len(typeCodes) {
		return typeCodes[TypeNonexistent]
	}
	return typeCodes[t]
}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return typeNames[TypeNonexistent]
	}
	return typeNames[t]
}

// TypeFromCode parses a two-letter type code.
func TypeFromCode(code string) (Type, error) {
	code = strings.TrimSpace(code)
	for t, c := range typeCodes {
		if c == code && Type(t) != TypeNonexistent {
			return Type(t), nil
		}
	}
	return TypeNonexistent, fmt.Errorf("%w: %q", ErrUnknownType, code)
}

// IsSolarSystem reports planets, moons, asteroids and comets.
func (t Type) IsSolarSystem() bool { return t >= TypePlanet && t <= TypeComet }

// IsStar reports the four stellar types.
func (t Type) IsStar() bool { return t >= TypeStar && t <= TypeDoubleVariableStar }

// IsDeepSky reports clusters, nebulae and galaxies.
func (t Type) IsDeepSky() bool { return t >= TypeOpenCluster && t <= TypeGalaxy }

// IsConstellation reports constellations and asterisms.
func (t Type) IsConstellation() bool { return t == TypeConstellation || t == TypeAsterism }

// HasDoubleData reports the types that carry a DoubleStar block.
func (t Type) HasDoubleData() bool { return t == TypeDoubleStar || t == TypeDoubleVariableStar }

// HasVariableData reports the types that carry a VariableStar block.
func (t Type) HasVariableData() bool { return t == TypeVariableStar || t == TypeDoubleVariableStar }
