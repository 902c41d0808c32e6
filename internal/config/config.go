package config

import (
	"bytes"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"strconv"

	"github.com/vango-dev/vtree/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "vtree.json"

	// DefaultPort is the default preview server port.
	DefaultPort = 3000

	// DefaultHost is the default preview server host.
	DefaultHost = "localhost"

	// DefaultWrapperTag wraps a text root when it is mounted.
	DefaultWrapperTag = "span"

	// DefaultNamespace prefixes every exported metric.
	DefaultNamespace = "vtree"

	// DefaultBoltPath is the snapshot database used by the bolt driver.
	DefaultBoltPath = "vtree.db"

	// DefaultS3Prefix is the key prefix used by the s3 driver.
	DefaultS3Prefix = "trees/"
)

// Snapshot drivers.
const (
	DriverNone   = ""
	DriverMemory = "memory"
	DriverBolt   = "bolt"
	DriverS3     = "s3"
)

// Config represents the complete vtree.json configuration.
type Config struct {
	// Render controls how trees are mounted.
	Render RenderConfig `json:"render"`

	// Log configures the structured logger.
	Log LogConfig `json:"log"`

	// Metrics configures the Prometheus collectors.
	Metrics MetricsConfig `json:"metrics"`

	// Preview configures the preview server.
	Preview PreviewConfig `json:"preview"`

	// Snapshot selects where stored trees are persisted.
	Snapshot SnapshotConfig `json:"snapshot"`

	configPath string
}

// RenderConfig contains mount settings.
type RenderConfig struct {
	// WrapperTag is the element a text or comment root is mounted inside.
	WrapperTag string `json:"wrapperTag,omitempty"`

	// Pretty indents rendered HTML.
	Pretty bool `json:"pretty,omitempty"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	// Level is one of debug, info, warn or error.
	Level string `json:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty"`
}

// MetricsConfig contains metrics settings.
type MetricsConfig struct {
	Namespace string `json:"namespace,omitempty"`
}

// PreviewConfig contains preview server settings.
type PreviewConfig struct {
	Host string `json:"host,omitempty"`
	Port int    `json:"port,omitempty"`
}

// SnapshotConfig contains snapshot store settings.
type SnapshotConfig struct {
	// Driver is "", memory, bolt or s3. The empty driver disables snapshots.
	Driver string `json:"driver,omitempty"`

	// Path is the bolt database file.
	Path string `json:"path,omitempty"`

	// Bucket, Prefix, Region and Endpoint configure the s3 driver.
	Bucket   string `json:"bucket,omitempty"`
	Prefix   string `json:"prefix,omitempty"`
	Region   string `json:"region,omitempty"`
	Endpoint string `json:"endpoint,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads vtree.json from dir. A missing file yields the defaults.
func Load(dir string) (*Config, error) {
	if !Exists(dir) {
		return New(), nil
	}
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("E120").
			WithDetail("Cannot read " + path).
			Wrap(err)
	}

	cfg := &Config{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, errors.New("E120").
			WithDetail("Failed to parse " + path + ": " + err.Error()).
			WithSuggestion("Check that vtree.json is valid JSON and uses only known keys")
	}

	cfg.configPath = path
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("E120").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.New("E120").Wrap(err)
	}
	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

func (c *Config) applyDefaults() {
	if c.Render.WrapperTag == "" {
		c.Render.WrapperTag = DefaultWrapperTag
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Preview.Host == "" {
		c.Preview.Host = DefaultHost
	}
	if c.Preview.Port == 0 {
		c.Preview.Port = DefaultPort
	}
	switch c.Snapshot.Driver {
	case DriverBolt:
		if c.Snapshot.Path == "" {
			c.Snapshot.Path = DefaultBoltPath
		}
	case DriverS3:
		if c.Snapshot.Prefix == "" {
			c.Snapshot.Prefix = DefaultS3Prefix
		}
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Preview.Port < 0 || c.Preview.Port > 65535 {
		return errors.New("E122").
			WithDetail("preview.port must be between 0 and 65535")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.Errorf("E122", "log.level %q", c.Log.Level).
			WithSuggestion("Use debug, info, warn or error")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.Errorf("E122", "log.format %q", c.Log.Format).
			WithSuggestion("Use text or json")
	}
	switch c.Snapshot.Driver {
	case DriverNone, DriverMemory, DriverBolt:
	case DriverS3:
		if c.Snapshot.Bucket == "" {
			return errors.Errorf("E121", "snapshot.bucket").
				WithDetail("The s3 snapshot driver needs a bucket")
		}
		if c.Snapshot.Region == "" {
			return errors.Errorf("E121", "snapshot.region").
				WithDetail("The s3 snapshot driver needs a region")
		}
	default:
		return errors.Errorf("E122", "snapshot.driver %q", c.Snapshot.Driver).
			WithSuggestion("Use memory, bolt or s3, or leave it empty to disable snapshots")
	}
	return nil
}

// PreviewAddress returns the listen address of the preview server.
func (c *Config) PreviewAddress() string {
	return net.JoinHostPort(c.Preview.Host, strconv.Itoa(c.Preview.Port))
}

// SnapshotPath returns the bolt database path, resolved against the config
// directory when relative.
func (c *Config) SnapshotPath() string {
	path := c.Snapshot.Path
	if path == "" {
		path = DefaultBoltPath
	}
	if filepath.IsAbs(path) || c.Dir() == "" {
		return path
	}
	return filepath.Join(c.Dir(), path)
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindProjectRoot walks up from startDir to the nearest directory holding
// vtree.json. It returns startDir itself when none is found.
func FindProjectRoot(startDir string) (string, error) {
	start, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}
	for dir := start; ; {
		if Exists(dir) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return start, nil
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working directory
// or its nearest ancestor holding vtree.json.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}
	return Load(root)
}
