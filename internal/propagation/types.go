package propagation

import (
	"time"

	"github.com/star/skycore/internal/vecmat"
)

// Keyframe holds the positions of all satellites at a single point in time.
type Keyframe struct {
	Timestamp  time.Time
	Satellites []Snapshot
}

// Snapshot is one satellite's state at a keyframe time, with its
// sub-satellite point and, when a site is configured, its look angles.
type Snapshot struct {
	NORADID int
	Name    string
	Time    time.Time
	State   TEME

	Longitude float64 // radians, east positive
	Latitude  float64 // radians, geodetic
	Altitude  float64 // km above the WGS84 ellipsoid

	HasLook   bool
	Azimuth   float64 // radians east of north
	Elevation float64 // radians, unrefracted
	Range     float64 // km
}

// PropConfig holds propagation configuration.
type PropConfig struct {
	Workers int           // worker pool size; below 1 means one worker
	Step    time.Duration // keyframe interval
	Horizon time.Duration // time covered after the start keyframe

	// Site, when set, is the observer (east longitude and geodetic
	// latitude in radians, height in km) for snapshot look angles.
	Site *vecmat.Spherical
}
