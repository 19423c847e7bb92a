package main

import (
	"fmt"
	"strings"

	"github.com/star/skycore/internal/catalog"
	"github.com/star/skycore/internal/ephem"
)

// majorBodies are always available by name, catalog or not.
var majorBodies = []struct {
	name string
	typ  catalog.Type
	id   int
}{
	{"Sun", catalog.TypePlanet, ephem.Sun},
	{"Moon", catalog.TypeMoon, catalog.LunaID},
	{"Mercury", catalog.TypePlanet, ephem.Mercury},
	{"Venus", catalog.TypePlanet, ephem.Venus},
	{"Mars", catalog.TypePlanet, ephem.Mars},
	{"Jupiter", catalog.TypePlanet, ephem.Jupiter},
	{"Saturn", catalog.TypePlanet, ephem.Saturn},
	{"Uranus", catalog.TypePlanet, ephem.Uranus},
	{"Neptune", catalog.TypePlanet, ephem.Neptune},
	{"Pluto", catalog.TypePlanet, ephem.Pluto},
}

func majorBody(name string) *catalog.Object {
	for _, b := range majorBodies {
		if strings.EqualFold(b.name, name) {
			return catalog.NewPlanet(b.typ, catalog.Planet{ID: b.id}, []string{b.name}, nil)
		}
	}
	return nil
}

// loadCatalogs imports the given CSV files, or the configured ones when
// paths is empty.
func (a *app) loadCatalogs(paths []string) (*catalog.Array, error) {
	if len(paths) == 0 {
		paths = a.cfg.Paths.Catalogs
	}
	arr := catalog.NewArray(a.logger)
	for _, p := range paths {
		if _, err := arr.ImportCSVFile(p); err != nil {
			return nil, err
		}
	}
	return arr, nil
}

// lookup finds name in arr by name or identifier, then among the major
// bodies.
func lookup(arr *catalog.Array, name string) (*catalog.Object, error) {
	if o := arr.FindByName(name); o != nil {
		return o, nil
	}
	if o := majorBody(name); o != nil {
		return o, nil
	}
	return nil, fmt.Errorf("object %q not found", name)
}
