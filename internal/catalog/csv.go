package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/star/skycore/internal/angle"
	"github.com/star/skycore/internal/coords"
	"github.com/star/skycore/internal/ephem"
	"github.com/star/skycore/internal/metrics"
)

const (
	planetFields   = 13 // type through id
	starFields     = 10 // type through spectrum
	deepSkyFields  = 13 // plus major, minor, PA
	starBlock      = 5  // double or variable star columns
	kmThresholdAU  = 1000
	kindCSV        = "csv"
	mmUnknownValue = 0
)

// ImportCSVFile opens path and imports it with ImportCSV.
func (a *Array) ImportCSVFile(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening catalog: %w", err)
	}
	defer f.Close()

	n, err := a.ImportCSV(f)
	if err != nil {
		return n, fmt.Errorf("reading %s: %w", path, err)
	}
	a.logger.Info("catalog imported", "path", path, "objects", n, "skipped", a.Skipped())
	return n, nil
}

// ImportCSV appends the objects in a solar-system or star catalog and
// returns how many it added. Blank lines and lines starting with '#' are
// ignored. Records that do not parse are logged and counted in Skipped;
// only read errors are returned.
func (a *Array) ImportCSV(r io.Reader) (int, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	count := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			a.skip(kindCSV, perr.Line, err)
			continue
		}
		if err != nil {
			return count, err
		}
		line, _ := cr.FieldPos(0)

		fields := make([]string, len(rec))
		for i, f := range rec {
			fields[i] = strings.TrimSpace(f)
		}
		t, err := TypeFromCode(fields[0])
		if err != nil {
			a.skip(kindCSV, line, err)
			continue
		}

		var obj *Object
		switch {
		case t.IsSolarSystem():
			obj, err = parsePlanetRecord(t, fields)
		case t.IsStar() || t.IsDeepSky():
			obj, err = parseStarRecord(t, fields)
		case t.IsConstellation():
			obj, err = parseConstellationRecord(t, fields)
		default:
			err = fmt.Errorf("type %s has no CSV layout", t.Code())
		}
		if err != nil {
			a.skip(t.Code(), line, err)
			continue
		}
		a.Append(obj)
		metrics.RecordCatalogRecord(t.Code(), metrics.ResultOK)
		count++
	}
	return count, nil
}

func (a *Array) skip(kind string, line int, err error) {
	a.skipped++
	a.logger.Warn("skipping catalog record", "line", line, "error", err)
	metrics.RecordCatalogRecord(kind, metrics.ResultSkipped)
}

// fieldParser collects the first conversion error so record parsers can
// read every column before checking once.
type fieldParser struct {
	fields []string
	err    error
}

func (p *fieldParser) get(i int) string {
	if i < len(p.fields) {
		return p.fields[i]
	}
	return ""
}

// float returns column i, or unknown when the column is empty.
func (p *fieldParser) float(i int, name string, unknown float64) float64 {
	s := p.get(i)
	if s == "" {
		return unknown
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("%s %q: %w", name, s, err)
	}
	if err != nil {
		return unknown
	}
	return v
}

// splitNames sorts trailing columns into identifiers and names.
func splitNames(fields []string) (names []string, idents []Identifier) {
	for _, f := range fields {
		if f == "" {
			continue
		}
		if id, ok := ParseIdentifier(f); ok {
			idents = append(idents, id)
			continue
		}
		names = append(names, f)
	}
	return names, idents
}

func parsePlanetRecord(t Type, fields []string) (*Object, error) {
	if len(fields) < planetFields {
		return nil, fmt.Errorf("%d fields, want at least %d", len(fields), planetFields)
	}
	inf := math.Inf(1)
	p := &fieldParser{fields: fields}
	orb := ephem.Orbit{
		Q:  p.float(1, "q", inf),
		E:  p.float(2, "e", inf),
		I:  p.float(3, "i", inf) * angle.RadPerDeg,
		W:  p.float(4, "w", inf) * angle.RadPerDeg,
		N:  p.float(5, "n", inf) * angle.RadPerDeg,
		M:  p.float(6, "m", inf) * angle.RadPerDeg,
		MM: p.float(7, "mm", mmUnknownValue) * angle.RadPerDeg,
		T:  p.float(8, "t", inf),
	}
	pl := Planet{
		Orbit:  orb,
		H:      p.float(9, "H", inf),
		G:      p.float(10, "G", inf),
		Radius: p.float(11, "radius", inf),
	}
	id := p.float(12, "id", 0)
	if p.err != nil {
		return nil, p.err
	}
	if id != math.Trunc(id) || id < 0 {
		return nil, fmt.Errorf("id %v is not a JPL number", id)
	}
	pl.ID = int(id)
	if pl.Orbit.Q > kmThresholdAU && !math.IsInf(pl.Orbit.Q, 0) {
		pl.Orbit.Q /= coords.KmPerAU
	}
	if t == TypeMoon && pl.ID/100 < ephem.Mercury {
		return nil, fmt.Errorf("moon id %d has no primary", pl.ID)
	}
	names, idents := splitNames(fields[planetFields:])
	return NewPlanet(t, pl, names, idents), nil
}

// starRecordFields returns the column where identifiers and names start.
// Double and variable stars each add a block after the spectrum; a double
// variable star has the double block first.
func starRecordFields(t Type) int {
	switch {
	case t.IsDeepSky():
		return deepSkyFields
	case t == TypeDoubleVariableStar:
		return starFields + 2*starBlock
	case t.HasDoubleData(), t.HasVariableData():
		return starFields + starBlock
	}
	return starFields
}

func parseStarRecord(t Type, fields []string) (*Object, error) {
	want := starRecordFields(t)
	if len(fields) < want {
		return nil, fmt.Errorf("%d fields, want at least %d", len(fields), want)
	}

	ra, err := angle.ParseHMS(fields[1])
	if err != nil {
		return nil, fmt.Errorf("RA %q: %w", fields[1], err)
	}
	dec, err := angle.ParseDMS(fields[2])
	if err != nil {
		return nil, fmt.Errorf("dec %q: %w", fields[2], err)
	}

	nan, inf := math.NaN(), math.Inf(1)
	p := &fieldParser{fields: fields}
	s := Star{
		RA:        ra.Angle().Rad(),
		Dec:       dec.Angle().Rad(),
		PMRA:      p.float(3, "pmRA", nan) * 15 * angle.RadPerArcsec,
		PMDec:     p.float(4, "pmDec", nan) * angle.RadPerArcsec,
		VMag:      p.float(5, "Vmag", inf),
		BMag:      p.float(6, "Bmag", inf),
		Parsecs:   p.float(7, "dist", inf),
		RadVel:    p.float(8, "radvel", nan),
		Spectrum:  fields[9],
		MajorAxis: nan,
		MinorAxis: nan,
		PA:        nan,
	}
	if t.IsDeepSky() {
		s.MajorAxis = p.float(10, "major", nan) * angle.RadPerArcmin
		s.MinorAxis = p.float(11, "minor", nan) * angle.RadPerArcmin
		s.PA = p.float(12, "PA", nan) * angle.RadPerDeg
	}
	col := starFields
	if t.HasDoubleData() {
		s.Double = &DoubleStar{
			Components: p.get(col),
			DeltaMag:   p.float(col+1, "delta mag", inf),
			Sep:        p.float(col+2, "separation", nan) * angle.RadPerArcsec,
			PA:         p.float(col+3, "position angle", nan) * angle.RadPerDeg,
			PAEpoch:    p.float(col+4, "PA epoch", nan),
		}
		col += starBlock
	}
	if t.HasVariableData() {
		s.Variable = &VariableStar{
			VarType: p.get(col),
			MinMag:  p.float(col+1, "min mag", inf),
			MaxMag:  p.float(col+2, "max mag", inf),
			Period:  p.float(col+3, "period", nan),
			Epoch:   p.float(col+4, "epoch", nan),
		}
	}
	if p.err != nil {
		return nil, p.err
	}
	if math.Abs(s.Dec) > angle.HalfPi {
		return nil, fmt.Errorf("dec %q out of range", fields[2])
	}
	names, idents := splitNames(fields[want:])
	return NewStar(t, s, names, idents), nil
}

// ExportCSV writes every star, deep-sky, solar-system and constellation
// object in the layouts ImportCSV reads and returns how many it wrote.
// Satellites are written by tle.Write instead.
func (a *Array) ExportCSV(w io.Writer) (int, error) {
	cw := csv.NewWriter(w)
	count := 0
	for _, o := range a.objects {
		var rec []string
		switch {
		case o.Planet != nil:
			rec = planetRecord(o)
		case o.Star != nil:
			rec = starRecord(o)
		case o.Constellation != nil:
			rec = constellationRecord(o)
		default:
			continue
		}
		for _, id := range o.Identifiers {
			if id.Catalog != CatJPL {
				rec = append(rec, id.String())
			}
		}
		rec = append(rec, o.Names...)
		if err := cw.Write(rec); err != nil {
			return count, err
		}
		count++
	}
	cw.Flush()
	return count, cw.Error()
}

// formatFloat writes v with scale applied, or "" when v is unknown.
func formatFloat(v, scale float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return strconv.FormatFloat(v*scale, 'g', -1, 64)
}

func planetRecord(o *Object) []string {
	p := o.Planet
	orb := p.Orbit
	mm := ""
	if orb.MM != 0 {
		mm = formatFloat(orb.MM, angle.DegPerRad)
	}
	return []string{
		o.Type.Code(),
		formatFloat(orb.Q, 1),
		formatFloat(orb.E, 1),
		formatFloat(orb.I, angle.DegPerRad),
		formatFloat(orb.W, angle.DegPerRad),
		formatFloat(orb.N, angle.DegPerRad),
		formatFloat(orb.M, angle.DegPerRad),
		mm,
		formatFloat(orb.T, 1),
		formatFloat(p.H, 1),
		formatFloat(p.G, 1),
		formatFloat(p.Radius, 1),
		strconv.Itoa(p.ID),
	}
}

func starRecord(o *Object) []string {
	s := o.Star
	rec := []string{
		o.Type.Code(),
		angle.Angle(s.RA).HMS().String(),
		angle.Angle(s.Dec).DMS().String(),
		formatFloat(s.PMRA, 1/(15*angle.RadPerArcsec)),
		formatFloat(s.PMDec, angle.ArcsecPerRad),
		formatFloat(s.VMag, 1),
		formatFloat(s.BMag, 1),
		formatFloat(s.Parsecs, 1),
		formatFloat(s.RadVel, 1),
		s.Spectrum,
	}
	if o.Type.IsDeepSky() {
		rec = append(rec,
			formatFloat(s.MajorAxis, 60*angle.DegPerRad),
			formatFloat(s.MinorAxis, 60*angle.DegPerRad),
			formatFloat(s.PA, angle.DegPerRad),
		)
	}
	if o.Type.HasDoubleData() {
		d := s.Double
		if d == nil {
			d = &DoubleStar{DeltaMag: math.Inf(1), Sep: math.NaN(), PA: math.NaN(), PAEpoch: math.NaN()}
		}
		rec = append(rec,
			d.Components,
			formatFloat(d.DeltaMag, 1),
			formatFloat(d.Sep, angle.ArcsecPerRad),
			formatFloat(d.PA, angle.DegPerRad),
			formatFloat(d.PAEpoch, 1),
		)
	}
	if o.Type.HasVariableData() {
		v := s.Variable
		if v == nil {
			v = &VariableStar{MinMag: math.Inf(1), MaxMag: math.Inf(1), Period: math.NaN(), Epoch: math.NaN()}
		}
		rec = append(rec,
			v.VarType,
			formatFloat(v.MinMag, 1),
			formatFloat(v.MaxMag, 1),
			formatFloat(v.Period, 1),
			formatFloat(v.Epoch, 1),
		)
	}
	return rec
}
