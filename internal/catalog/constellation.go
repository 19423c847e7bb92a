package catalog

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/star/skycore/internal/angle"
	"github.com/star/skycore/internal/vecmat"
)

// Constellation holds the center and size of a constellation or asterism.
// Its names are the full name, the abbreviation and the genitive, in that
// order.
type Constellation struct {
	RA, Dec float64 // center, radians J2000
	Area    float64 // steradians; NaN when unknown
	Rank    int     // by area, 1 for the largest; 0 when unknown
}

// NewConstellation returns a constellation or asterism pointing at its
// center.
func NewConstellation(t Type, c Constellation, names []string) *Object {
	o := newObject(t, names, nil)
	o.Constellation = &c
	o.Direction = c.center()
	return o
}

func (c *Constellation) center() vecmat.Vector {
	return vecmat.Spherical{Lon: c.RA, Lat: c.Dec, Rad: 1}.Vector()
}

// Abbreviation returns the second name of a constellation, which is its
// IAU abbreviation in catalogs this package writes.
func (o *Object) Abbreviation() string {
	if o.Constellation == nil {
		return ""
	}
	return o.Name(1)
}

// iauAbbreviations lists the 88 constellations in index order.
var iauAbbreviations = [...]string{
	"And", "Ant", "Aps", "Aql", "Aqr", "Ara", "Ari", "Aur", "Boo", "Cae",
	"Cam", "Cap", "Car", "Cas", "Cen", "Cep", "Cet", "Cha", "Cir", "CMa",
	"CMi", "Cnc", "Col", "Com", "CrA", "CrB", "Crt", "Cru", "Crv", "CVn",
	"Cyg", "Del", "Dor", "Dra", "Equ", "Eri", "For", "Gem", "Gru", "Her",
	"Hor", "Hya", "Hyi", "Ind", "Lac", "Leo", "Lep", "Lib", "LMi", "Lup",
	"Lyn", "Lyr", "Men", "Mic", "Mon", "Mus", "Nor", "Oct", "Oph", "Ori",
	"Pav", "Peg", "Per", "Phe", "Pic", "PsA", "Psc", "Pup", "Pyx", "Ret",
	"Scl", "Sco", "Sct", "Ser", "Sex", "Sge", "Sgr", "Tau", "Tel", "TrA",
	"Tri", "Tuc", "UMa", "UMi", "Vel", "Vir", "Vol", "Vul",
}

// AbbreviationToIndex returns the index, 1 to 88, of an IAU constellation
// abbreviation matched without regard to case, or 0 if it is unknown.
func AbbreviationToIndex(abbr string) int {
	abbr = strings.TrimSpace(abbr)
	for i, a := range iauAbbreviations {
		if strings.EqualFold(a, abbr) {
			return i + 1
		}
	}
	return 0
}

// IndexToAbbreviation is the inverse of AbbreviationToIndex. It returns ""
// outside 1 to 88.
func IndexToAbbreviation(i int) string {
	if i < 1 || i > len(iauAbbreviations) {
		return ""
	}
	return iauAbbreviations[i-1]
}

// FindConstellation returns the constellation or asterism whose
// abbreviation matches abbr without regard to case, or nil.
func (a *Array) FindConstellation(abbr string) *Object {
	for _, o := range a.objects {
		if o.Constellation != nil && strings.EqualFold(o.Abbreviation(), abbr) {
			return o
		}
	}
	return nil
}

const (
	constellationFields = 5 // type through rank
	sqDegPerSr          = angle.DegPerRad * angle.DegPerRad
)

// parseConstellationRecord reads type, RA hours, Dec degrees, area in
// square degrees and rank, followed by names. Constellations must carry a
// known IAU abbreviation as their second name.
func parseConstellationRecord(t Type, fields []string) (*Object, error) {
	if len(fields) < constellationFields {
		return nil, fmt.Errorf("%d fields, want at least %d", len(fields), constellationFields)
	}
	nan := math.NaN()
	p := &fieldParser{fields: fields}
	c := Constellation{
		RA:   angle.FromHours(p.float(1, "RA", nan)).Rad(),
		Dec:  p.float(2, "dec", nan) * angle.RadPerDeg,
		Area: p.float(3, "area", nan) / sqDegPerSr,
	}
	if s := p.get(4); s != "" {
		rank, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("rank %q: %w", s, err)
		}
		c.Rank = rank
	}
	if p.err != nil {
		return nil, p.err
	}
	if math.IsNaN(c.RA) || math.IsNaN(c.Dec) || math.Abs(c.Dec) > angle.HalfPi {
		return nil, fmt.Errorf("center %q, %q out of range", fields[1], fields[2])
	}

	var names []string
	for _, f := range fields[constellationFields:] {
		if f != "" {
			names = append(names, f)
		}
	}
	if t == TypeConstellation {
		if len(names) < 2 || AbbreviationToIndex(names[1]) == 0 {
			return nil, fmt.Errorf("constellation %v has no IAU abbreviation", names)
		}
	}
	return NewConstellation(t, c, names), nil
}

func constellationRecord(o *Object) []string {
	c := o.Constellation
	rank := ""
	if c.Rank > 0 {
		rank = strconv.Itoa(c.Rank)
	}
	return []string{
		o.Type.Code(),
		formatFloat(angle.Mod2Pi(c.RA), angle.HourPerRad),
		formatFloat(c.Dec, angle.DegPerRad),
		formatFloat(c.Area, sqDegPerSr),
		rank,
	}
}
