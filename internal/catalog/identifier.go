package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

// Catalog names a numbering scheme for astronomical objects.
type Catalog int

const (
	CatUnknown Catalog = 0
	CatJPL     Catalog = 1 // JPL NAIF planet and moon numbers
	CatAst     Catalog = 2 // numbered asteroids
	CatCom     Catalog = 3 // numbered periodic comets
	CatNORAD   Catalog = 4 // NORAD satellite catalog

	CatHR  Catalog = 13 // Yale Bright Star
	CatHD  Catalog = 15 // Henry Draper
	CatSAO Catalog = 16 // Smithsonian Astrophysical Observatory
	CatHIP Catalog = 20 // Hipparcos

	CatMessier  Catalog = 30
	CatCaldwell Catalog = 31
	CatNGC      Catalog = 32
	CatIC       Catalog = 33
	CatMel      Catalog = 34 // Melotte open clusters
	CatSh2      Catalog = 35 // Sharpless bright nebulae
	CatLBN      Catalog = 36 // Lynds bright nebulae
	CatLDN      Catalog = 37 // Lynds dark nebulae
	CatPGC      Catalog = 40
	CatUGC      Catalog = 41
	CatUGCA     Catalog = 42
)

var catalogPrefix = map[Catalog]string{
	CatJPL:      "JPL",
	CatNORAD:    "NORAD",
	CatHR:       "HR",
	CatHD:       "HD",
	CatSAO:      "SAO",
	CatHIP:      "HIP",
	CatMessier:  "M",
	CatCaldwell: "C",
	CatNGC:      "NGC",
	CatIC:       "IC",
	CatMel:      "Mel",
	CatSh2:      "Sh2",
	CatLBN:      "LBN",
	CatLDN:      "LDN",
	CatPGC:      "PGC",
	CatUGC:      "UGC",
	CatUGCA:     "UGCA",
}

// prefixOrder lists prefixes longest first so "UGCA" is tried before "UGC"
// and "Mel" before "M".
var prefixOrder = []Catalog{
	CatNORAD, CatUGCA,
	CatJPL, CatSAO, CatHIP, CatNGC, CatMel, CatSh2, CatLBN, CatLDN, CatPGC, CatUGC,
	CatHR, CatHD, CatIC,
	CatMessier, CatCaldwell,
}

func (c Catalog) String() string {
	switch c {
	case CatAst:
		return "AST"
	case CatCom:
		return "COM"
	}
	if p, ok := catalogPrefix[c]; ok {
		return p
	}
	return "unknown"
}

// Identifier is an object's number in one catalog. NGC and IC numbers are
// stored times ten, with a component letter A-I in the units digit.
// The zero Identifier means "none"; JPL 0 is the Sun.
type Identifier struct {
	Catalog Catalog
	Number  int64
}

// IsZero reports whether id is the null identifier.
func (id Identifier) IsZero() bool { return id.Catalog == CatUnknown }

// String formats id the way it is written in catalogs: "HR 2491",
// "NGC 2451A", "(433)" for asteroids and "1P" for comets.
func (id Identifier) String() string {
	switch id.Catalog {
	case CatUnknown:
		return ""
	case CatAst:
		return fmt.Sprintf("(%d)", id.Number)
	case CatCom:
		return fmt.Sprintf("%dP", id.Number)
	case CatNGC, CatIC:
		s := catalogPrefix[id.Catalog] + " " + strconv.FormatInt(id.Number/10, 10)
		if ext := id.Number % 10; ext > 0 {
			s += string(rune('A' + ext - 1))
		}
		return s
	}
	return catalogPrefix[id.Catalog] + " " + strconv.FormatInt(id.Number, 10)
}

// ParseIdentifier recognizes a catalog designation. ok is false when s is
// not one; CSV importers then treat the field as a name. Matching is case
// sensitive, so "M31" is Messier 31 and "m31" is not.
func ParseIdentifier(s string) (id Identifier, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Identifier{}, false
	}

	// (433) Eros style asteroid numbers and 1P style comets.
	if strings.HasPrefix(s, "(") {
		if end := strings.IndexByte(s, ')'); end > 1 {
			if n, err := strconv.ParseInt(s[1:end], 10, 64); err == nil && n > 0 && strings.TrimSpace(s[end+1:]) == "" {
				return Identifier{CatAst, n}, true
			}
		}
		return Identifier{}, false
	}
	if strings.HasSuffix(s, "P") {
		if n, err := strconv.ParseInt(s[:len(s)-1], 10, 64); err == nil && n > 0 {
			return Identifier{CatCom, n}, true
		}
	}

	for _, cat := range prefixOrder {
		p := catalogPrefix[cat]
		if !strings.HasPrefix(s, p) {
			continue
		}
		rest := strings.TrimSpace(s[len(p):])
		if rest == "" || rest[0] < '0' || rest[0] > '9' {
			continue
		}
		n, ok := parseCatalogNumber(cat, rest)
		if ok {
			return Identifier{cat, n}, true
		}
	}
	return Identifier{}, false
}

func parseCatalogNumber(cat Catalog, s string) (int64, bool) {
	if cat == CatNGC || cat == CatIC {
		var ext int64
		if last := s[len(s)-1]; last >= 'A' && last <= 'I' {
			ext = int64(last-'A') + 1
			s = s[:len(s)-1]
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil || n <= 0 || n > 7840 {
			return 0, false
		}
		return n*10 + ext, true
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 || (n == 0 && cat != CatJPL) {
		return 0, false
	}
	switch cat {
	case CatMessier:
		return n, n <= 110
	case CatCaldwell:
		return n, n <= 109
	}
	return n, true
}
