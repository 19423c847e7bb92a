package catalog

import (
	"log/slog"
	"strings"
)

// Array is an ordered collection of objects with the importers that fill
// it. Like Object, it is not safe for concurrent use.
type Array struct {
	objects []*Object
	skipped int
	logger  *slog.Logger
}

// NewArray returns an empty array that logs skipped records to logger.
func NewArray(logger *slog.Logger) *Array {
	if logger == nil {
		logger = slog.Default()
	}
	return &Array{logger: logger}
}

// Append adds objects to the end of the array.
func (a *Array) Append(objs ...*Object) {
	a.objects = append(a.objects, objs...)
}

// Len returns the number of objects.
func (a *Array) Len() int { return len(a.objects) }

// Get returns the i-th object, or nil when i is out of range.
func (a *Array) Get(i int) *Object {
	if i < 0 || i >= len(a.objects) {
		return nil
	}
	return a.objects[i]
}

// Objects returns the backing slice. Callers must not append to it.
func (a *Array) Objects() []*Object { return a.objects }

// Skipped returns how many records the importers have rejected so far.
func (a *Array) Skipped() int { return a.skipped }

// Find returns the first object carrying id, or nil.
func (a *Array) Find(id Identifier) *Object {
	if id.IsZero() {
		return nil
	}
	for _, o := range a.objects {
		for _, have := range o.Identifiers {
			if have == id {
				return o
			}
		}
	}
	return nil
}

// FindByName returns the first object with a name equal to name, ignoring
// case. A name that parses as an identifier is also tried with Find.
func (a *Array) FindByName(name string) *Object {
	name = strings.TrimSpace(name)
	for _, o := range a.objects {
		for _, n := range o.Names {
			if strings.EqualFold(n, name) {
				return o
			}
		}
	}
	if id, ok := ParseIdentifier(name); ok {
		return a.Find(id)
	}
	return nil
}

// OfType returns the objects of type t in array order.
func (a *Array) OfType(t Type) []*Object {
	var out []*Object
	for _, o := range a.objects {
		if o.Type == t {
			out = append(out, o)
		}
	}
	return out
}
