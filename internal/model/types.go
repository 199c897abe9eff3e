// Package model defines the configuration data model shared by every
// confmerge component: packages, sections, options and lists, plus the
// records a merge transaction produces (conflicts, changes, service
// operations).
package model

import "github.com/google/uuid"

// Value is a scalar configuration value. No type coercion is performed
// anywhere in the engine; every comparison is string equality unless a
// component explicitly canonicalizes first (see internal/dedup).
type Value string

// Section is a typed, named or anonymous bundle of options and lists.
//
// Name is empty for anonymous sections. Anonymous sections are assigned
// a per-load identifier (anonID) used only to let components within a
// single transaction refer to "this section" unambiguously; anonID is
// never serialized and is never compared across two different loads.
// Across loads, anonymous sections are matched by Type plus their
// ordinal position among sections of that type within their Package
// (see Package.Ordinal / Package.SectionAtOrdinal).
type Section struct {
	Name    string
	Type    string
	Options map[string]Value
	Lists   map[string][]Value

	anonID string
}

// NewSection constructs a Section, assigning a fresh anonymous identifier
// if name is empty.
func NewSection(name, typ string) *Section {
	s := &Section{
		Name:    name,
		Type:    typ,
		Options: make(map[string]Value),
		Lists:   make(map[string][]Value),
	}
	if name == "" {
		s.anonID = uuid.NewString()
	}
	return s
}

// IsAnonymous reports whether the section has no explicit name.
func (s *Section) IsAnonymous() bool {
	return s.Name == ""
}

// AnonID returns the section's per-load anonymous identifier. It is the
// empty string for named sections and must never be persisted or
// compared against a Section from a different load.
func (s *Section) AnonID() string {
	return s.anonID
}

// HasOption reports whether the section defines an option with the given
// name (regardless of whether a list of the same name also exists).
func (s *Section) HasOption(name string) bool {
	_, ok := s.Options[name]
	return ok
}

// HasList reports whether the section defines a list with the given name.
func (s *Section) HasList(name string) bool {
	_, ok := s.Lists[name]
	return ok
}

// Clone returns a deep copy of the section, safe to mutate independently
// of the original. Used by the Merge Engine to snapshot sections before
// reconciling them and by the Orchestrator's pre-transaction snapshot.
func (s *Section) Clone() *Section {
	clone := &Section{
		Name:    s.Name,
		Type:    s.Type,
		Options: make(map[string]Value, len(s.Options)),
		Lists:   make(map[string][]Value, len(s.Lists)),
		anonID:  s.anonID,
	}
	for k, v := range s.Options {
		clone.Options[k] = v
	}
	for k, v := range s.Lists {
		cp := make([]Value, len(v))
		copy(cp, v)
		clone.Lists[k] = cp
	}
	return clone
}

// Package is a named, ordered collection of sections. Section order is
// significant and preserved on commit.
type Package struct {
	Name     string
	Sections []*Section
}

// NewPackage constructs an empty Package.
func NewPackage(name string) *Package {
	return &Package{Name: name}
}

// Ordinal returns the zero-based position of target among all sections of
// the same Type within this package, counted in section order. It
// returns -1 if target is not a member of this package's Sections slice.
func (p *Package) Ordinal(target *Section) int {
	ordinal := 0
	for _, s := range p.Sections {
		if s == target {
			return ordinal
		}
		if s.Type == target.Type {
			ordinal++
		}
	}
	return -1
}

// SectionAtOrdinal returns the ordinal-th section of the given type
// within the package (zero-based, in section order), or nil if none
// exists.
func (p *Package) SectionAtOrdinal(typ string, ordinal int) *Section {
	count := 0
	for _, s := range p.Sections {
		if s.Type != typ {
			continue
		}
		if count == ordinal {
			return s
		}
		count++
	}
	return nil
}

// FindMatch locates the section in p that corresponds to other, per the
// data model's matching rule: named sections match by Name+Type; for an
// anonymous other, sourceOrdinal must be other's ordinal position within
// its own (foreign) package, and the match is by Type+ordinal within p.
// It returns nil if no match exists.
func (p *Package) FindMatch(other *Section, sourceOrdinal int) *Section {
	if !other.IsAnonymous() {
		for _, s := range p.Sections {
			if s.Name == other.Name && s.Type == other.Type {
				return s
			}
		}
		return nil
	}
	return p.SectionAtOrdinal(other.Type, sourceOrdinal)
}

// AddSection appends a section to the package, preserving order.
func (p *Package) AddSection(s *Section) {
	p.Sections = append(p.Sections, s)
}

// RemoveSection removes the section matching target (located the same
// way FindMatch resolves a match) and reports whether it removed one.
func (p *Package) RemoveSection(target *Section, targetOrdinal int) bool {
	match := p.FindMatch(target, targetOrdinal)
	if match == nil {
		return false
	}
	for i, s := range p.Sections {
		if s == match {
			p.Sections = append(p.Sections[:i], p.Sections[i+1:]...)
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the package and all of its sections.
func (p *Package) Clone() *Package {
	clone := &Package{Name: p.Name, Sections: make([]*Section, len(p.Sections))}
	for i, s := range p.Sections {
		clone.Sections[i] = s.Clone()
	}
	return clone
}

// ConfigTree is the full unit the engine loads, merges and writes: every
// package known to the device, keyed by package name.
type ConfigTree map[string]*Package

// Clone returns a deep copy of the tree, used to take the Orchestrator's
// pre-transaction snapshot.
func (t ConfigTree) Clone() ConfigTree {
	clone := make(ConfigTree, len(t))
	for name, pkg := range t {
		clone[name] = pkg.Clone()
	}
	return clone
}
