package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Error is a configuration problem. The server must not start with one.
type Error struct {
	Source string // file path, "environment" or "validation"
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("config: %s: %v", e.Source, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Load resolves the configuration from path (optional) and the process
// environment, then validates it.
func Load(path string) (*Config, error) {
	return LoadWith(path, env.ToMap(os.Environ()))
}

// LoadWith is Load with an explicit environment. A nil environ skips
// environment overrides entirely.
func LoadWith(path string, environ map[string]string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, &Error{Source: path, Err: err}
		}
	}
	if environ != nil {
		if err := cfg.mergeEnv(environ); err != nil {
			return nil, &Error{Source: "environment", Err: err}
		}
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// mergeEnv applies every CABLECLUB_<KEY> variable present in environ.
// Unset variables leave the file or default value in place.
func (c *Config) mergeEnv(environ map[string]string) error {
	return env.ParseWithOptions(c, env.Options{
		Prefix:      EnvPrefix,
		Environment: environ,
	})
}

// YAML renders the configuration in file form.
func (c *Config) YAML() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
