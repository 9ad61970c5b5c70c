package persona

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"gopkg.in/yaml.v3"

	"github.com/shadowlink/afterlife/pkg/logger"
)

// Store loads persona YAML files from a base directory and caches parsed
// configs. The cache is owned by the store instance; there is no package
// level state, so tests and the composition root control its lifetime.
// Loaded configs are immutable; concurrent loads of the same id may race
// but the last write wins over identical values, which is harmless.
type Store struct {
	dir   string
	cache *lru.Cache[string, *Config]
}

const defaultCacheSize = 64

// NewStore builds a store over dir. cacheSize <= 0 picks the default.
func NewStore(dir string, cacheSize int) (*Store, error) {
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	cache, err := lru.New[string, *Config](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create persona cache: %w", err)
	}
	return &Store{dir: dir, cache: cache}, nil
}

// Dir returns the base directory personas are loaded from.
func (s *Store) Dir() string {
	return s.dir
}

// Load returns the persona for id, from cache when possible.
func (s *Store) Load(id string) (*Config, error) {
	if cfg, ok := s.cache.Get(id); ok {
		return cfg, nil
	}

	path, err := s.resolvePath(id)
	if err != nil {
		return nil, err
	}

	cfg, err := parseFile(path)
	if err != nil {
		return nil, fmt.Errorf("load persona %q: %w", id, err)
	}

	s.cache.Add(id, cfg)
	logger.InfoCF("persona", "Loaded persona", map[string]interface{}{"id": id})
	return cfg, nil
}

// Reload bypasses and refreshes the cache entry for id.
func (s *Store) Reload(id string) (*Config, error) {
	s.cache.Remove(id)
	return s.Load(id)
}

// ClearCache evicts every cached persona.
func (s *Store) ClearCache() {
	s.cache.Purge()
	logger.DebugC("persona", "Persona cache cleared")
}

// ListAvailable returns the sorted persona ids present on disk.
func (s *Store) ListAvailable() []string {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		logger.WarnCF("persona", "Personas directory unreadable", map[string]interface{}{
			"dir":   s.dir,
			"error": err.Error(),
		})
		return nil
	}

	var ids []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := filepath.Ext(name)
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ext))
	}
	sort.Strings(ids)
	return ids
}

// Preload warms the cache for the given ids, skipping ones that fail.
func (s *Store) Preload(ids ...string) {
	for _, id := range ids {
		if _, err := s.Load(id); err != nil {
			logger.WarnCF("persona", "Failed to preload persona", map[string]interface{}{
				"id":    id,
				"error": err.Error(),
			})
		}
	}
}

// Save writes cfg to its YAML file under the store directory and refreshes
// the cache entry, so a subsequent Load round-trips the same values.
func (s *Store) Save(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal persona %q: %w", cfg.ID, err)
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create personas dir: %w", err)
	}

	path := filepath.Join(s.dir, cfg.ID+".yaml")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write persona %q: %w", cfg.ID, err)
	}

	s.cache.Remove(cfg.ID)
	return nil
}

func (s *Store) resolvePath(id string) (string, error) {
	for _, ext := range []string{".yaml", ".yml"} {
		path := filepath.Join(s.dir, id+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", &NotFoundError{ID: id, Available: s.ListAvailable()}
}

// fileConfig mirrors Config with pointer sections, so a file missing its
// boundaries: or qa: block fails validation instead of decoding to zero
// values.
type fileConfig struct {
	ID          string      `yaml:"id"`
	DisplayName string      `yaml:"display_name"`
	Style       Style       `yaml:"style"`
	Boundaries  *Boundaries `yaml:"boundaries"`
	Memory      Memory      `yaml:"memory"`
	QA          *QA         `yaml:"qa"`
	TTSVoice    string      `yaml:"tts_voice"`
}

func parseFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw fileConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid persona YAML: %w", err)
	}
	if raw.Boundaries == nil {
		return nil, &ValidationError{Field: "boundaries"}
	}
	if raw.QA == nil {
		return nil, &ValidationError{Field: "qa"}
	}

	cfg := Config{
		ID:          raw.ID,
		DisplayName: raw.DisplayName,
		Style:       raw.Style,
		Boundaries:  *raw.Boundaries,
		Memory:      raw.Memory,
		QA:          *raw.QA,
		TTSVoice:    raw.TTSVoice,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
