package fs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/bft-labs/ytcontrol/internal/config"
)

// ConfigFileRepository implements ports.ConfigRepository using a TOML file.
type ConfigFileRepository struct {
	mu   sync.Mutex
	path string
}

// NewConfigFileRepository creates a repository for the TOML file at path.
func NewConfigFileRepository(path string) *ConfigFileRepository {
	return &ConfigFileRepository{path: path}
}

// Load reads the configuration file.
// Returns an empty FileConfig and nil error if the file does not exist.
func (r *ConfigFileRepository) Load(ctx context.Context) (config.FileConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load()
}

func (r *ConfigFileRepository) load() (config.FileConfig, error) {
	fc, err := config.LoadFileConfig(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return config.FileConfig{}, nil
		}
		return config.FileConfig{}, err
	}
	return fc, nil
}

// Save writes the module settings atomically (write to temp file, then rename).
// Process-level keys already in the file are kept.
func (r *ConfigFileRepository) Save(ctx context.Context, cfg config.ModuleConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, err := r.load()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(r.path), 0o700); err != nil {
		return err
	}

	data, err := toml.Marshal(config.MergeModule(current, cfg))
	if err != nil {
		return err
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}

	return os.Rename(tmp, r.path)
}

// Path returns the full path to the config file.
func (r *ConfigFileRepository) Path() string {
	return r.path
}
