package config

import (
	"bytes"
	"fmt"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/vigil/internal/config/loader"
)

// Loader builds a Config from its sources.
type Loader struct {
	file *loader.TOMLLoader
	env  *loader.EnvLoader
}

// NewLoader creates a loader reading path (may be empty) and VIGIL_*
// environment variables.
func NewLoader(path string) *Loader {
	return &Loader{
		file: loader.NewTOMLLoader(path),
		env:  loader.NewEnvLoader(EnvPrefix),
	}
}

// NewLoaderWith creates a loader from explicit sources. Either may be nil.
func NewLoaderWith(file *loader.TOMLLoader, env *loader.EnvLoader) *Loader {
	return &Loader{file: file, env: env}
}

// Path returns the config file path, or "".
func (l *Loader) Path() string {
	if l.file == nil {
		return ""
	}
	return l.file.Path()
}

// Load layers defaults, the file and the environment, then validates.
func (l *Loader) Load() (Config, error) {
	merged := make(map[string]any)
	for _, src := range l.sources() {
		m, err := src.Load()
		if err != nil {
			return Config{}, err
		}
		merged = loader.DeepMerge(merged, m)
	}

	cfg, err := decode(merged)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load is shorthand for NewLoader(path).Load().
func Load(path string) (Config, error) {
	return NewLoader(path).Load()
}

func (l *Loader) sources() []loader.Loader {
	var srcs []loader.Loader
	if l.file != nil {
		srcs = append(srcs, l.file)
	}
	if l.env != nil {
		srcs = append(srcs, l.env)
	}
	return srcs
}

// decode applies a merged map over the defaults. Unknown keys are errors.
func decode(m map[string]any) (Config, error) {
	cfg := Default()
	if len(m) == 0 {
		return cfg, nil
	}

	data, err := toml.Marshal(m)
	if err != nil {
		return Config{}, fmt.Errorf("encoding merged config: %w", err)
	}

	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return cfg, nil
}
