package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/turtacn/ninchi/pkg/errors"
)

// envPrefix is the environment variable prefix used by all settings.
const envPrefix = "NINCHI"

// Config file names tried in each search directory, in order.
const (
	projectConfigName = "ninchi.yaml"
	userConfigName    = "config.yaml"
)

// Sentinel errors returned (wrapped) by Load.
var (
	ErrConfigFileNotFound = errors.New(errors.CodeConfig, "config file not found")
	ErrConfigParseError   = errors.New(errors.CodeConfig, "config file could not be parsed")
	ErrConfigValidation   = errors.New(errors.CodeConfig, "config validation failed")
)

// LoadOption customises a Load call.
type LoadOption func(*loadOptions)

type loadOptions struct {
	configPath  string
	searchPaths []string
	overrides   map[string]interface{}
}

// WithConfigPath loads exactly the named file.  A missing file is an error.
func WithConfigPath(path string) LoadOption {
	return func(o *loadOptions) { o.configPath = path }
}

// WithSearchPaths replaces the default search directories.  Each directory is
// searched for ninchi.yaml, then config.yaml; the first hit wins.  Finding no
// file is not an error.
func WithSearchPaths(dirs ...string) LoadOption {
	return func(o *loadOptions) { o.searchPaths = dirs }
}

// WithOverrides sets keys (dotted viper paths) on top of file and env values.
// The CLI uses it for flags such as --log-level.
func WithOverrides(values map[string]interface{}) LoadOption {
	return func(o *loadOptions) { o.overrides = values }
}

// DefaultSearchPaths returns the working directory followed by ~/.ninchi.
func DefaultSearchPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".ninchi"))
	}
	return paths
}

// newViper builds a pre-configured Viper instance: YAML file type, NINCHI_
// env prefix, automatic env binding, and a key replacer that maps "." → "_"
// so that "batch.concurrency" resolves to "NINCHI_BATCH_CONCURRENCY".
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setViperDefaults(v)
	return v
}

// setViperDefaults registers every key so AutomaticEnv can resolve it during
// Unmarshal even when no file mentions it.
func setViperDefaults(v *viper.Viper) {
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)
	v.SetDefault("log.output", DefaultLogOutput)
	v.SetDefault("canonicalization.max_iteration_factor", DefaultMaxIterationFactor)
	v.SetDefault("canonicalization.weighted_connectivity_index", false)
	v.SetDefault("batch.concurrency", DefaultBatchConcurrency)
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.namespace", DefaultMetricsNamespace)
	v.SetDefault("metrics.textfile_path", "")
	v.SetDefault("output.format", DefaultOutputFormat)
}

// Load resolves the configuration file (explicit path, else the search
// paths), merges NINCHI_* environment overrides and explicit overrides,
// applies defaults for unset fields, and validates the result.
func Load(opts ...LoadOption) (*Config, error) {
	o := &loadOptions{}
	for _, opt := range opts {
		opt(o)
	}

	v := newViper()

	path := o.configPath
	if path == "" {
		searchPaths := o.searchPaths
		if searchPaths == nil {
			searchPaths = DefaultSearchPaths()
		}
		path = findConfigFile(searchPaths)
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrConfigFileNotFound, path, err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrConfigParseError, path, err)
		}
	}

	for k, val := range o.overrides {
		v.Set(k, val)
	}

	return unmarshalAndFinalize(v)
}

func findConfigFile(dirs []string) string {
	for _, dir := range dirs {
		for _, name := range []string{projectConfigName, userConfigName} {
			candidate := filepath.Join(dir, name)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate
			}
		}
	}
	return ""
}

// unmarshalAndFinalize unmarshals viper state into a Config struct, applies
// defaults, and validates the result.
func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParseError, err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigValidation, err)
	}
	return cfg, nil
}

// IsNotFound reports whether err came from a missing explicit config file.
func IsNotFound(err error) bool {
	return stderrors.Is(err, ErrConfigFileNotFound)
}
