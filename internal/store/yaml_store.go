package store

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"confmerge/internal/model"

	"confmerge/pkg/logging"

	"gopkg.in/yaml.v3"
)

const subsystem = "Store"

// YAMLStore is a Store backed by one YAML file per package in a
// directory, committed atomically via a temp-file-then-rename.
type YAMLStore struct {
	mu         sync.RWMutex
	configPath string
}

// NewYAMLStore constructs a YAMLStore rooted at configPath, creating the
// directory if it does not already exist.
func NewYAMLStore(configPath string) (*YAMLStore, error) {
	if err := os.MkdirAll(configPath, 0o755); err != nil {
		return nil, model.NewError(model.CategoryUnrecoverable, "create config directory", err)
	}
	return &YAMLStore{configPath: configPath}, nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9_.-]+`)

// sanitizeFilename replaces characters unsafe for a filename with
// underscores and collapses consecutive underscores, mirroring the
// teacher's entity-filename sanitization so package names containing
// unusual characters never escape the config directory.
func sanitizeFilename(name string) string {
	sanitized := unsafeFilenameChars.ReplaceAllString(name, "_")
	for strings.Contains(sanitized, "__") {
		sanitized = strings.ReplaceAll(sanitized, "__", "_")
	}
	return strings.Trim(sanitized, "_")
}

func (s *YAMLStore) pathFor(pkgName string) string {
	return filepath.Join(s.configPath, sanitizeFilename(pkgName)+".yaml")
}

func (s *YAMLStore) Load(pkgName string) (*model.Package, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadLocked(pkgName)
}

func (s *YAMLStore) loadLocked(pkgName string) (*model.Package, error) {
	path := s.pathFor(pkgName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return model.NewPackage(pkgName), nil
	}
	if err != nil {
		return nil, model.NewPackageError(model.CategoryParse, pkgName, "read config file", err)
	}

	var doc yamlDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, model.NewPackageError(model.CategoryParse, pkgName, "parse config file", err)
	}
	return fromYAMLDocument(pkgName, doc), nil
}

func (s *YAMLStore) ListPackages() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		found, err := filepath.Glob(filepath.Join(s.configPath, pattern))
		if err != nil {
			return nil, model.NewError(model.CategoryUnrecoverable, "list config files", err)
		}
		matches = append(matches, found...)
	}

	names := make([]string, 0, len(matches))
	for _, m := range matches {
		base := filepath.Base(m)
		names = append(names, strings.TrimSuffix(strings.TrimSuffix(base, ".yaml"), ".yml"))
	}
	return names, nil
}

func (s *YAMLStore) Commit(pkgName string, tree *model.Package) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commitLocked(pkgName, tree)
}

func (s *YAMLStore) commitLocked(pkgName string, tree *model.Package) error {
	doc := toYAMLDocument(tree)
	data, err := yaml.Marshal(doc)
	if err != nil {
		return model.NewPackageError(model.CategoryCommitFailure, pkgName, "marshal config", err)
	}

	path := s.pathFor(pkgName)
	tmp, err := os.CreateTemp(s.configPath, sanitizeFilename(pkgName)+".*.tmp")
	if err != nil {
		return model.NewPackageError(model.CategoryCommitFailure, pkgName, "create temp file", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return model.NewPackageError(model.CategoryCommitFailure, pkgName, "write temp file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return model.NewPackageError(model.CategoryCommitFailure, pkgName, "close temp file", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return model.NewPackageError(model.CategoryCommitFailure, pkgName, "rename temp file into place", err)
	}

	logging.Debug(subsystem, "committed package %s (%d sections)", pkgName, len(tree.Sections))
	return nil
}

func (s *YAMLStore) DeleteSection(pkgName string, target *model.Section, ordinal int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pkg, err := s.loadLocked(pkgName)
	if err != nil {
		return err
	}
	if !pkg.RemoveSection(target, ordinal) {
		return nil
	}
	return s.commitLocked(pkgName, pkg)
}

func (s *YAMLStore) Snapshot(pkgNames []string) (map[string]*model.Package, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make(map[string]*model.Package, len(pkgNames))
	for _, name := range pkgNames {
		pkg, err := s.loadLocked(name)
		if err != nil {
			return nil, err
		}
		snapshot[name] = pkg.Clone()
	}
	return snapshot, nil
}

func (s *YAMLStore) Restore(snapshot map[string]*model.Package) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for name, pkg := range snapshot {
		if err := s.commitLocked(name, pkg); err != nil {
			return model.NewPackageError(model.CategoryUnrecoverable, name, "restore snapshot", err)
		}
	}
	return nil
}
