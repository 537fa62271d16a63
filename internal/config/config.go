package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ligustah/picsum/internal/job"
)

// Validation errors.
var (
	ErrNoWorkers        = errors.New("threads must be at least 1")
	ErrInvalidDimension = errors.New("width and height must be positive")
)

// Error is a configuration problem. The run never starts when one occurs.
type Error struct {
	Field string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("config: %s: %v", e.Field, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Config defines configuration for a picsum run.
type Config struct {
	Width   uint16
	Height  uint16
	Count   uint16
	Threads uint8

	// Dir is the base directory. Empty means <home>/Downloads.
	Dir string

	// Bucket is an optional gocloud bucket URL. When set, images are
	// written to the bucket instead of Dir.
	Bucket string

	// BaseURL is the image endpoint root.
	BaseURL string

	// Timeout bounds each request. Zero disables it.
	Timeout time.Duration

	Verbose bool
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Width:   1920,
		Height:  1080,
		Count:   50,
		Threads: 4,
		BaseURL: job.DefaultBaseURL,
		Timeout: 60 * time.Second,
	}
}

// Dimension returns the configured image size.
func (c Config) Dimension() job.Dimension {
	return job.Dimension{Width: c.Width, Height: c.Height}
}

// yamlConfig uses pointers so an explicit zero in the file is kept.
type yamlConfig struct {
	Width   *uint16 `yaml:"width"`
	Height  *uint16 `yaml:"height"`
	Count   *uint16 `yaml:"count"`
	Threads *uint8  `yaml:"threads"`
	Dir     *string `yaml:"dir"`
	Bucket  *string `yaml:"bucket"`
	BaseURL *string `yaml:"base_url"`
	Timeout *string `yaml:"timeout"`
	Verbose *bool   `yaml:"verbose"`
}

// LoadFromFile loads configuration from a YAML file on top of the defaults.
func LoadFromFile(path string) (Config, error) {
	cfg := Default()
	if err := cfg.ApplyFile(path); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyFile overrides c with the values present in a YAML file.
func (c *Config) ApplyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return &Error{Field: "file", Err: fmt.Errorf("parse %s: %w", path, err)}
	}

	o := Override{
		Width:   yc.Width,
		Height:  yc.Height,
		Count:   yc.Count,
		Threads: yc.Threads,
		Dir:     yc.Dir,
		Bucket:  yc.Bucket,
		BaseURL: yc.BaseURL,
		Verbose: yc.Verbose,
	}
	if yc.Timeout != nil {
		d, err := time.ParseDuration(*yc.Timeout)
		if err != nil {
			return &Error{Field: "timeout", Err: err}
		}
		o.Timeout = &d
	}

	*c = c.Merge(o)
	return nil
}

// Override holds the fields a configuration layer sets explicitly. Nil
// fields leave the underlying value alone, so an explicit zero such as
// count 0 still takes effect.
type Override struct {
	Width   *uint16
	Height  *uint16
	Count   *uint16
	Threads *uint8
	Dir     *string
	Bucket  *string
	BaseURL *string
	Timeout *time.Duration
	Verbose *bool
}

// Merge merges override values into c, returning a new Config.
// Nil fields in override are ignored.
func (c Config) Merge(override Override) Config {
	if override.Width != nil {
		c.Width = *override.Width
	}
	if override.Height != nil {
		c.Height = *override.Height
	}
	if override.Count != nil {
		c.Count = *override.Count
	}
	if override.Threads != nil {
		c.Threads = *override.Threads
	}
	if override.Dir != nil {
		c.Dir = *override.Dir
	}
	if override.Bucket != nil {
		c.Bucket = *override.Bucket
	}
	if override.BaseURL != nil {
		c.BaseURL = *override.BaseURL
	}
	if override.Timeout != nil {
		c.Timeout = *override.Timeout
	}
	if override.Verbose != nil {
		c.Verbose = *override.Verbose
	}
	return c
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the PICSUM_ prefix.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("PICSUM_WIDTH"); v != "" {
		n, err := ParseUint16(v)
		if err != nil {
			return &Error{Field: "PICSUM_WIDTH", Err: err}
		}
		c.Width = n
	}
	if v := os.Getenv("PICSUM_HEIGHT"); v != "" {
		n, err := ParseUint16(v)
		if err != nil {
			return &Error{Field: "PICSUM_HEIGHT", Err: err}
		}
		c.Height = n
	}
	if v := os.Getenv("PICSUM_COUNT"); v != "" {
		n, err := ParseUint16(v)
		if err != nil {
			return &Error{Field: "PICSUM_COUNT", Err: err}
		}
		c.Count = n
	}
	if v := os.Getenv("PICSUM_THREADS"); v != "" {
		n, err := ParseUint8(v)
		if err != nil {
			return &Error{Field: "PICSUM_THREADS", Err: err}
		}
		c.Threads = n
	}
	if v := os.Getenv("PICSUM_DIR"); v != "" {
		c.Dir = v
	}
	if v := os.Getenv("PICSUM_BUCKET"); v != "" {
		c.Bucket = v
	}
	if v := os.Getenv("PICSUM_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("PICSUM_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return &Error{Field: "PICSUM_TIMEOUT", Err: err}
		}
		c.Timeout = d
	}
	if v := os.Getenv("PICSUM_VERBOSE"); v != "" {
		c.Verbose = v == "true" || v == "1"
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Threads == 0 {
		return &Error{Field: "threads", Err: ErrNoWorkers}
	}
	if c.Width == 0 || c.Height == 0 {
		return &Error{Field: "dimension", Err: ErrInvalidDimension}
	}
	if c.BaseURL == "" {
		return &Error{Field: "base_url", Err: errors.New("must not be empty")}
	}
	if c.Timeout < 0 {
		return &Error{Field: "timeout", Err: errors.New("must not be negative")}
	}
	return nil
}

// ParseUint16 parses a decimal number that must fit in 16 bits.
func ParseUint16(s string) (uint16, error) {
	n, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, numError(err)
	}
	return uint16(n), nil
}

// ParseUint8 parses a decimal number that must fit in 8 bits.
func ParseUint8(s string) (uint8, error) {
	n, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, numError(err)
	}
	return uint8(n), nil
}

func numError(err error) error {
	var ne *strconv.NumError
	if errors.As(err, &ne) {
		if errors.Is(ne.Err, strconv.ErrRange) {
			return fmt.Errorf("%q is out of range", ne.Num)
		}
		return fmt.Errorf("%q is not a valid number", ne.Num)
	}
	return err
}
