// Package storage implements the file-backed document store.
//
// Documents are flat YAML files partitioned by family and sub-type: prompt
// templates under prompts/builtin/<category>/ and prompts/custom/, specs
// under specs/<template>/. One file per document, named by its id. Every
// listing re-reads the full collection from disk; there is no cache, so
// every read reflects the latest on-disk state at call time.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fastkit/fastkit/internal/errors"
	"github.com/fastkit/fastkit/internal/models"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	promptsDir = "prompts"
	builtinDir = "builtin"
	customDir  = "custom"
	specsDir   = "specs"
	fileExt    = ".yaml"
)

// BuiltinCategories are the pre-seeded prompt partitions
var BuiltinCategories = []string{
	"code_generation",
	"refactoring",
	"testing",
	"debugging",
	"documentation",
}

// Store handles all file system operations for prompt templates and specs
type Store struct {
	rootPath string
	log      *zap.SugaredLogger
}

// NewStore creates a store rooted at the given library directory. The path is
// injected by the caller; the store never consults the environment itself.
func NewStore(rootPath string, log *zap.SugaredLogger) (*Store, error) {
	if rootPath == "" {
		return nil, fmt.Errorf("storage root path is required")
	}
	return &Store{rootPath: rootPath, log: log}, nil
}

// BaseDir returns the library root
func (s *Store) BaseDir() string {
	return s.rootPath
}

// InitLayout idempotently creates every known partition directory
func (s *Store) InitLayout() error {
	dirs := []string{
		s.rootPath,
		filepath.Join(s.rootPath, promptsDir, customDir),
	}
	for _, category := range BuiltinCategories {
		dirs = append(dirs, filepath.Join(s.rootPath, promptsDir, builtinDir, category))
	}
	for _, tmpl := range models.SpecTemplates {
		dirs = append(dirs, filepath.Join(s.rootPath, specsDir, specPartition(tmpl)))
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.StorageError(fmt.Sprintf("create directory %s", dir), err)
		}
	}
	return nil
}

// SavePrompt serializes the full template and writes it to its partition.
// Overwrites unconditionally; there is no concurrency check or partial merge.
func (s *Store) SavePrompt(p *models.PromptTemplate) error {
	if p.FilePath == "" {
		p.FilePath = filepath.Join(promptsDir, customDir, p.ID+fileExt)
	}
	return s.writeFile(p.FilePath, p)
}

// SaveBuiltinPrompt writes a template to its builtin category partition
func (s *Store) SaveBuiltinPrompt(p *models.PromptTemplate) error {
	p.FilePath = filepath.Join(promptsDir, builtinDir, p.Category, p.ID+fileExt)
	return s.writeFile(p.FilePath, p)
}

// LoadPrompt finds a template by id. Builtin ids carry no partition hint, so
// resolution scans the prompt family; cost is bounded by the family size.
func (s *Store) LoadPrompt(id string) (*models.PromptTemplate, error) {
	// The common case for user-created templates is a direct path hit. A
	// file that exists at the hit but fails to parse is reported as corrupt;
	// falling through to the scan would mislabel it NotFound.
	customPath := filepath.Join(promptsDir, customDir, id+fileExt)
	p, err := s.readPrompt(customPath)
	if err == nil {
		return p, nil
	}
	if !os.IsNotExist(err) {
		return nil, err
	}

	prompts, err := s.ListPrompts()
	if err != nil {
		return nil, err
	}
	for _, p := range prompts {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, errors.NotFoundError("Prompt", id)
}

// ListPrompts deserializes every template across both prompt partitions.
// A malformed file is skipped with a logged anomaly, never collection-fatal.
func (s *Store) ListPrompts() ([]*models.PromptTemplate, error) {
	var prompts []*models.PromptTemplate

	root := filepath.Join(s.rootPath, promptsDir)
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if info.IsDir() || !strings.HasSuffix(path, fileExt) {
			return nil
		}

		relPath, _ := filepath.Rel(s.rootPath, path)
		prompt, err := s.readPrompt(relPath)
		if err != nil {
			s.warnCorrupt(relPath, err)
			return nil
		}
		prompts = append(prompts, prompt)
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		return nil, errors.StorageError("list prompts", err)
	}

	return prompts, nil
}

// SaveSpec serializes the full spec and writes it to the partition derived
// from its template type. Overwrites unconditionally.
func (s *Store) SaveSpec(spec *models.Spec) error {
	spec.FilePath = filepath.Join(specsDir, specPartition(spec.Metadata.Template), spec.Metadata.SpecID+fileExt)
	return s.writeFile(spec.FilePath, spec)
}

// LoadSpec finds a spec by id with one existence probe per partition,
// independent of collection size.
func (s *Store) LoadSpec(id string) (*models.Spec, error) {
	for _, tmpl := range models.SpecTemplates {
		relPath := filepath.Join(specsDir, specPartition(tmpl), id+fileExt)
		if _, err := os.Stat(filepath.Join(s.rootPath, relPath)); err != nil {
			continue
		}
		spec, err := s.readSpec(relPath)
		if err != nil {
			return nil, err
		}
		return spec, nil
	}
	return nil, errors.NotFoundError("Spec", id)
}

// ListSpecs deserializes every spec across all template partitions.
// A malformed file is skipped with a logged anomaly, never collection-fatal.
func (s *Store) ListSpecs() ([]*models.Spec, error) {
	var specs []*models.Spec

	for _, tmpl := range models.SpecTemplates {
		dir := filepath.Join(s.rootPath, specsDir, specPartition(tmpl))
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, errors.StorageError("list specs", err)
		}

		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileExt) {
				continue
			}
			relPath := filepath.Join(specsDir, specPartition(tmpl), entry.Name())
			spec, err := s.readSpec(relPath)
			if err != nil {
				s.warnCorrupt(relPath, err)
				continue
			}
			specs = append(specs, spec)
		}
	}

	return specs, nil
}

// Helper functions

// specPartition maps a template type to its on-disk directory name
func specPartition(tmpl models.SpecTemplate) string {
	switch tmpl {
	case models.SpecUserStory:
		return "user_stories"
	case models.SpecAPISpec:
		return "api_specs"
	default:
		return string(tmpl)
	}
}

func (s *Store) readPrompt(relPath string) (*models.PromptTemplate, error) {
	data, err := os.ReadFile(filepath.Join(s.rootPath, relPath))
	if err != nil {
		return nil, err
	}

	var prompt models.PromptTemplate
	if err := yaml.Unmarshal(data, &prompt); err != nil {
		return nil, errors.CorruptFileError(relPath, err)
	}
	prompt.FilePath = relPath
	return &prompt, nil
}

func (s *Store) readSpec(relPath string) (*models.Spec, error) {
	data, err := os.ReadFile(filepath.Join(s.rootPath, relPath))
	if err != nil {
		return nil, err
	}

	var spec models.Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, errors.CorruptFileError(relPath, err)
	}
	spec.FilePath = relPath
	return &spec, nil
}

func (s *Store) writeFile(relPath string, doc interface{}) error {
	fullPath := filepath.Join(s.rootPath, relPath)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return errors.StorageError("create directory", err)
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return errors.StorageError("serialize document", err)
	}

	if err := os.WriteFile(fullPath, data, 0644); err != nil {
		return errors.StorageError(fmt.Sprintf("write %s", relPath), err)
	}
	return nil
}

func (s *Store) warnCorrupt(relPath string, err error) {
	if s.log != nil {
		s.log.Warnw("skipping malformed document", "path", relPath, "error", err)
	}
}
