package store

import "confmerge/internal/model"

// yamlDocument is the on-disk shape of one package file: an ordered list
// of sections, each carrying its options and lists as plain maps. This
// is a deliberate simplification of the real on-disk UCI format, which
// the core treats as an external black box (see package store's doc
// comment); YAMLStore stands in for that black box with a format this
// corpus actually has a library for.
type yamlDocument struct {
	Sections []yamlSection `yaml:"sections"`
}

type yamlSection struct {
	Name    string              `yaml:"name,omitempty"`
	Type    string              `yaml:"type"`
	Options map[string]string   `yaml:"options,omitempty"`
	Lists   map[string][]string `yaml:"lists,omitempty"`
}

func toYAMLDocument(pkg *model.Package) yamlDocument {
	doc := yamlDocument{Sections: make([]yamlSection, 0, len(pkg.Sections))}
	for _, s := range pkg.Sections {
		ys := yamlSection{Name: s.Name, Type: s.Type}
		if len(s.Options) > 0 {
			ys.Options = make(map[string]string, len(s.Options))
			for k, v := range s.Options {
				ys.Options[k] = string(v)
			}
		}
		if len(s.Lists) > 0 {
			ys.Lists = make(map[string][]string, len(s.Lists))
			for k, list := range s.Lists {
				strs := make([]string, len(list))
				for i, v := range list {
					strs[i] = string(v)
				}
				ys.Lists[k] = strs
			}
		}
		doc.Sections = append(doc.Sections, ys)
	}
	return doc
}

func fromYAMLDocument(pkgName string, doc yamlDocument) *model.Package {
	pkg := model.NewPackage(pkgName)
	for _, ys := range doc.Sections {
		s := model.NewSection(ys.Name, ys.Type)
		for k, v := range ys.Options {
			s.Options[k] = model.Value(v)
		}
		for k, list := range ys.Lists {
			values := make([]model.Value, len(list))
			for i, v := range list {
				values[i] = model.Value(v)
			}
			s.Lists[k] = values
		}
		pkg.AddSection(s)
	}
	return pkg
}
