package core

import (
	"fmt"
	"os"
	"path/filepath"

	uber_config "go.uber.org/config"
	"go.uber.org/fx"
)

// ConfigModule provides the layered YAML configuration.
var ConfigModule = fx.Options(
	fx.Provide(NewConfig),
)

const (
	_configDirEnv     = "RUNES_CONFIG_DIR"
	_defaultConfigDir = "src/runes/config"
	_metaFile         = "meta.yaml"
)

// Config wraps a provider so it can be named in the fx graph.
type Config struct {
	provider uber_config.Provider
}

func (c Config) Get(path string) uber_config.Value {
	return c.provider.Get(path)
}

func (c Config) Name() string {
	return "config"
}

// NewConfig loads configuration from the directory named by RUNES_CONFIG_DIR,
// defaulting to src/runes/config relative to the working directory. meta.yaml
// lists the files in merge order; files that are absent are skipped so
// override layers stay optional. Values support ${ENV} expansion.
func NewConfig() (uber_config.Provider, error) {
	dir := os.Getenv(_configDirEnv)
	if dir == "" {
		dir = _defaultConfigDir
	}

	meta, err := uber_config.NewYAML(
		uber_config.File(filepath.Join(dir, _metaFile)),
		uber_config.Expand(os.LookupEnv),
	)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", _metaFile, err)
	}
	var files []string
	if err := meta.Get("files").Populate(&files); err != nil {
		return nil, fmt.Errorf("reading files list from %s: %w", _metaFile, err)
	}

	var options []uber_config.YAMLOption
	for _, file := range files {
		path := filepath.Join(dir, file)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		options = append(options, uber_config.File(path))
	}
	if len(options) == 0 {
		return nil, fmt.Errorf("no configuration files found in %s", dir)
	}
	options = append(options, uber_config.Expand(os.LookupEnv))

	provider, err := uber_config.NewYAML(options...)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	return Config{provider: provider}, nil
}
