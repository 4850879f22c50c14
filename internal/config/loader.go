// Package config provides layered configuration loading for beaver.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	maxConfigFileSize = 1024 * 1024 // 1MB

	// DirEnv overrides the default configuration directory.
	DirEnv = "BEAVER_CONFIG"

	// DefaultEnvPrefix is the prefix environment overrides must carry.
	DefaultEnvPrefix = "BEAVER"

	// DefaultEnvSeparator separates the prefix, sections and keys of an
	// environment override.
	DefaultEnvSeparator = "__"
)

// configFiles are tried in order; the first one found is loaded.
var configFiles = []struct {
	name   string
	parser koanf.Parser
}{
	{"config.yaml", yaml.Parser()},
	{"config.yml", yaml.Parser()},
	{"config.toml", TOMLParser()},
}

// Options controls where Load reads from.
type Options struct {
	// Dir holds config.yaml or config.toml. Empty means DefaultDir().
	Dir string
	// EnvPrefix selects environment overrides. Empty means DefaultEnvPrefix.
	EnvPrefix string
	// EnvSeparator splits override names into key paths. Empty means
	// DefaultEnvSeparator.
	EnvSeparator string
}

// DefaultDir returns $BEAVER_CONFIG when set, otherwise the etc directory
// next to the running executable.
func DefaultDir() string {
	if dir := os.Getenv(DirEnv); dir != "" {
		return dir
	}
	exe, err := os.Executable()
	if err != nil {
		return "etc"
	}
	return filepath.Join(filepath.Dir(exe), "etc")
}

// Load reads the configuration file from the directory, then overrides it
// with environment variables.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (BEAVER__LOGGING__ALL_LOGGER__DEFAULT_LEVEL, etc.)
//  2. config.yaml, config.yml or config.toml in Options.Dir
//
// A missing configuration file is not an error; File() then returns "".
//
// # Environment Variable Mapping
//
// The prefix and the first separator are stripped, the rest is lower-cased
// and every separator becomes a key delimiter:
//
//	BEAVER__LOGGING__FORMAT -> logging.format
//	BEAVER__LOGGING__CONSOLE_APPENDER__WRITE_LEVEL -> logging.console_appender.write_level
//
// Variables carrying the prefix but no section are ignored.
func Load(opts Options) (*Config, error) {
	opts = opts.withDefaults()
	k := koanf.New(".")
	cfg := &Config{k: k}

	for _, candidate := range configFiles {
		path := filepath.Join(opts.Dir, candidate.name)
		content, err := readConfigFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if err := k.Load(rawbytes.Provider(content), candidate.parser); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
		cfg.file = path
		break
	}

	if err := loadEnv(k, opts.EnvPrefix, opts.EnvSeparator); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse builds a Config from in-memory content. format is "yaml" or "toml".
func Parse(content []byte, format string) (*Config, error) {
	var parser koanf.Parser
	switch strings.ToLower(format) {
	case "yaml", "yml":
		parser = yaml.Parser()
	case "toml":
		parser = TOMLParser()
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(content), parser); err != nil {
		return nil, fmt.Errorf("failed to parse %s config: %w", format, err)
	}
	return &Config{k: k}, nil
}

func (o Options) withDefaults() Options {
	if o.Dir == "" {
		o.Dir = DefaultDir()
	}
	if o.EnvPrefix == "" {
		o.EnvPrefix = DefaultEnvPrefix
	}
	if o.EnvSeparator == "" {
		o.EnvSeparator = DefaultEnvSeparator
	}
	return o
}

// readConfigFile opens the file once and checks its size on the open
// descriptor before reading it.
func readConfigFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("config path %s is a directory", path)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return content, nil
}

func loadEnv(k *koanf.Koanf, prefix, sep string) error {
	full := prefix + sep
	err := k.Load(env.Provider(full, ".", func(s string) string {
		rest := strings.TrimPrefix(s, full)
		if !strings.Contains(rest, sep) {
			return ""
		}
		return strings.ReplaceAll(strings.ToLower(rest), strings.ToLower(sep), ".")
	}), nil)
	if err != nil {
		return fmt.Errorf("failed to load environment variables: %w", err)
	}
	return nil
}
