// Package config loads annotator settings from a YAML file, a .env file and
// ECG_ANNOTATOR_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// AppName names the config file and the per-user config directory
	AppName   = "ecg-annotator"
	envPrefix = "ECG_ANNOTATOR"
)

// Config holds every setting of the annotator
type Config struct {
	DataDir    string           `mapstructure:"data_dir" yaml:"data_dir"`
	Store      StoreConfig      `mapstructure:"store" yaml:"store"`
	Scan       ScanConfig       `mapstructure:"scan" yaml:"scan"`
	Navigation NavigationConfig `mapstructure:"navigation" yaml:"navigation"`
	Display    DisplayConfig    `mapstructure:"display" yaml:"display"`
	Logging    LoggingConfig    `mapstructure:"logging" yaml:"logging"`

	source string
}

// StoreConfig locates the label store
type StoreConfig struct {
	Path   string `mapstructure:"path" yaml:"path"`     // relative paths resolve against the data directory
	Format string `mapstructure:"format" yaml:"format"` // empty selects by extension
}

// ScanConfig controls image discovery
type ScanConfig struct {
	Extensions []string `mapstructure:"extensions" yaml:"extensions"`
}

// NavigationConfig holds browsing defaults
type NavigationConfig struct {
	UnlabeledOnly bool `mapstructure:"unlabeled_only" yaml:"unlabeled_only"`
	Autosave      bool `mapstructure:"autosave" yaml:"autosave"`
}

// DisplayConfig controls previews
type DisplayConfig struct {
	MaxSize  int           `mapstructure:"max_size" yaml:"max_size"`
	Rotate   bool          `mapstructure:"rotate" yaml:"rotate"`
	CacheTTL time.Duration `mapstructure:"cache_ttl" yaml:"cache_ttl"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	JSON  bool   `mapstructure:"json" yaml:"json"`
	File  string `mapstructure:"file" yaml:"file"`
}

// LoadOptions selects where settings come from
type LoadOptions struct {
	// ConfigFile is an explicit config path; it must exist when set
	ConfigFile string
	// SearchPaths replaces the default config search locations
	SearchPaths []string
	// EnvFile is loaded into the environment before reading variables. Missing
	// files are ignored. Defaults to ".env".
	EnvFile string
	// Flags maps config keys to command line flags. A flag that was set on the
	// command line overrides every other source.
	Flags map[string]*pflag.Flag
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", "")
	v.SetDefault("store.path", "annotations.csv")
	v.SetDefault("store.format", "")
	v.SetDefault("scan.extensions", []string{".jpg", ".jpeg", ".png", ".bmp", ".tif", ".tiff", ".webp"})
	v.SetDefault("navigation.unlabeled_only", false)
	v.SetDefault("navigation.autosave", true)
	v.SetDefault("display.max_size", 500)
	v.SetDefault("display.rotate", true)
	v.SetDefault("display.cache_ttl", 10*time.Minute)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.json", false)
	v.SetDefault("logging.file", "")
}

// Default returns the built-in settings
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// defaults always decode
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Load reads settings. Precedence from lowest to highest: defaults, config file,
// environment (including the .env file), command line flags.
func Load(opts LoadOptions) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, flag := range opts.Flags {
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, fmt.Errorf("bind flag %s: %w", flag.Name, err)
		}
	}

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName(AppName)
		v.SetConfigType("yaml")
		paths := opts.SearchPaths
		if len(paths) == 0 {
			paths = defaultSearchPaths()
		}
		for _, p := range paths {
			v.AddConfigPath(p)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.source = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func defaultSearchPaths() []string {
	paths := []string{"."}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, AppName))
	}
	return paths
}

// DefaultFilePath is where SaveFile writes when no config file was read
func DefaultFilePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate user config directory: %w", err)
	}
	return filepath.Join(dir, AppName, AppName+".yaml"), nil
}

// Source returns the config file that was read, or "" when none was found
func (c *Config) Source() string { return c.source }

// StorePath returns the label store location. Relative store paths are resolved
// against the data directory.
func (c *Config) StorePath() string {
	if filepath.IsAbs(c.Store.Path) || c.DataDir == "" {
		return c.Store.Path
	}
	return filepath.Join(c.DataDir, c.Store.Path)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Store.Path) == "" {
		errs = append(errs, errors.New("store path is required"))
	}
	switch strings.ToLower(c.Store.Format) {
	case "", "csv", "tsv", "json", "yaml", "yml":
	default:
		errs = append(errs, fmt.Errorf("unsupported store format %q", c.Store.Format))
	}
	if len(c.Scan.Extensions) == 0 {
		errs = append(errs, errors.New("at least one image extension is required"))
	}
	if c.Display.MaxSize <= 0 {
		errs = append(errs, errors.New("display max size must be positive"))
	}
	if c.Display.CacheTTL < 0 {
		errs = append(errs, errors.New("display cache ttl cannot be negative"))
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("invalid log level %q", c.Logging.Level))
	}

	return errors.Join(errs...)
}

// SaveFile writes the configuration as YAML
func (c *Config) SaveFile(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	c.source = path
	return nil
}
