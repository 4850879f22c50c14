// internal/logging/config.go
package logging

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fyrsmithlabs/beaver/internal/config"
)

// Section is the configuration section the logging config is read from.
const Section = "logging"

const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Config is the complete logging configuration: the logger registry,
// any number of file appenders and at most one console appender.
// It is validated once at startup and never modified afterwards.
type Config struct {
	AllLogger       Registry               `koanf:"all_logger"`
	FileAppenders   []FileAppenderConfig   `koanf:"file_appenders"`
	ConsoleAppender *ConsoleAppenderConfig `koanf:"console_appender"`
	Pipe            PipeConfig             `koanf:"pipe"`
	Format          string                 `koanf:"format"`
}

// LoggerConfig binds a logger name to a target and a minimum level.
// Identity is the whole value, so the same name may appear with
// different targets or levels.
type LoggerConfig struct {
	Name   string `koanf:"name"`
	Target string `koanf:"target"`
	Level  Level  `koanf:"level"`
}

func (l LoggerConfig) String() string {
	return fmt.Sprintf("{name:%q target:%q level:%s}", l.Name, l.Target, l.Level)
}

// Registry is the declared set of loggers. The default logger, which has
// an empty target and catches every event no named target claims, is
// synthesized from DefaultName and DefaultLevel.
type Registry struct {
	Loggers      []LoggerConfig `koanf:"loggers"`
	DefaultName  string         `koanf:"default_name"`
	DefaultLevel Level          `koanf:"default_level"`
}

// Descriptors returns the declared loggers followed by the default logger.
func (r *Registry) Descriptors() []LoggerConfig {
	all := make([]LoggerConfig, 0, len(r.Loggers)+1)
	all = append(all, r.Loggers...)
	return append(all, LoggerConfig{Name: r.DefaultName, Level: r.DefaultLevel})
}

// Names returns the set of every declared logger name, default included.
func (r *Registry) Names() map[string]struct{} {
	names := make(map[string]struct{}, len(r.Loggers)+1)
	for _, l := range r.Descriptors() {
		names[l.Name] = struct{}{}
	}
	return names
}

// Lookup returns every descriptor declared under name, in declaration order.
func (r *Registry) Lookup(name string) []LoggerConfig {
	var found []LoggerConfig
	for _, l := range r.Descriptors() {
		if l.Name == name {
			found = append(found, l)
		}
	}
	return found
}

// AppenderConfig holds what every appender declares.
type AppenderConfig struct {
	Enable      bool     `koanf:"enable"`
	WriteLevel  Level    `koanf:"write_level"`
	LoggerNames []string `koanf:"logger_names"`
}

// FileAppenderConfig declares a rotating file sink.
type FileAppenderConfig struct {
	AppenderConfig `koanf:",squash"`

	FileDir      string `koanf:"file_dir"`
	FileName     string `koanf:"file_name"`
	FileMaxSize  int64  `koanf:"file_max_size"`
	FileMaxCount int    `koanf:"file_max_count"`
}

// FullPath is the file the appender writes. No two file appenders may
// share one.
func (f *FileAppenderConfig) FullPath() string {
	return filepath.Join(f.FileDir, f.FileName)
}

func (f *FileAppenderConfig) label() string {
	return "file:" + f.FullPath()
}

// EnsureDir creates the appender's directory when it does not exist.
func (f *FileAppenderConfig) EnsureDir() error {
	return os.MkdirAll(f.FileDir, 0o755)
}

// ConsoleAppenderConfig declares the standard output sink.
type ConsoleAppenderConfig struct {
	AppenderConfig `koanf:",squash"`
}

const consoleLabel = "console"

// DefaultLogDir is the logs directory next to the running executable,
// falling back to ./logs.
func DefaultLogDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "./logs"
	}
	return filepath.Join(filepath.Dir(exe), "logs")
}

// Load reads and validates the logging section. Unknown keys are rejected.
// Validation may create log directories.
func Load(src *config.Config) (*Config, error) {
	if !src.Has(Section) {
		return nil, &ConfigError{Section: Section, Err: ErrSectionMissing}
	}

	cfg := &Config{}
	if src.Has(Section + ".console_appender") {
		// console appenders are enabled unless they say otherwise
		cfg.ConsoleAppender = &ConsoleAppenderConfig{AppenderConfig{Enable: true}}
	}
	if err := src.Unmarshal(Section, cfg, true); err != nil {
		return nil, &ConfigError{Section: Section, Err: err}
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	for i := range c.FileAppenders {
		if c.FileAppenders[i].FileDir == "" {
			c.FileAppenders[i].FileDir = DefaultLogDir()
		}
	}
	if c.Format == "" {
		c.Format = FormatJSON
	}
	c.Pipe = c.Pipe.withDefaults()
}

// Validate checks the registry, then the appenders against it, stopping
// at the first violation. Directories of file appenders are created here.
func (c *Config) Validate() error {
	if err := c.checkFields(); err != nil {
		return &ConfigError{Section: Section, Err: err}
	}
	if err := ValidateRegistry(&c.AllLogger); err != nil {
		return err
	}
	return ValidateAppenders(c.FileAppenders, c.ConsoleAppender, &c.AllLogger)
}

func (c *Config) checkFields() error {
	if strings.TrimSpace(c.AllLogger.DefaultName) == "" {
		return errors.New("all_logger.default_name must not be empty")
	}
	for i, l := range c.AllLogger.Loggers {
		if strings.TrimSpace(l.Name) == "" {
			return fmt.Errorf("all_logger.loggers[%d].name must not be empty", i)
		}
		if strings.TrimSpace(l.Target) == "" {
			return fmt.Errorf("all_logger.loggers[%d].target must not be empty", i)
		}
	}
	for i, f := range c.FileAppenders {
		if strings.TrimSpace(f.FileName) == "" {
			return fmt.Errorf("file_appenders[%d].file_name must not be empty", i)
		}
		if f.FileMaxSize < 0 || f.FileMaxCount < 0 {
			return fmt.Errorf("file_appenders[%d] rotation limits must not be negative", i)
		}
	}
	if c.Format != FormatJSON && c.Format != FormatConsole {
		return fmt.Errorf("format must be '%s' or '%s', got %q", FormatJSON, FormatConsole, c.Format)
	}
	return c.Pipe.validate()
}

// ValidateRegistry fails on the first logger that repeats an earlier one
// exactly.
func ValidateRegistry(r *Registry) error {
	seen := make(map[LoggerConfig]struct{}, len(r.Loggers)+1)
	for _, l := range r.Descriptors() {
		if _, dup := seen[l]; dup {
			return &DuplicateLoggerError{Logger: l}
		}
		seen[l] = struct{}{}
	}
	return nil
}

// ValidateAppenders checks that every subscribed logger name is declared,
// that no two file appenders share a path, and then creates the
// directory of each file appender.
func ValidateAppenders(files []FileAppenderConfig, console *ConsoleAppenderConfig, r *Registry) error {
	names := r.Names()
	for i := range files {
		if err := checkNames(files[i].LoggerNames, names, files[i].label()); err != nil {
			return err
		}
	}
	if console != nil {
		if err := checkNames(console.LoggerNames, names, consoleLabel); err != nil {
			return err
		}
	}

	paths := make(map[string]struct{}, len(files))
	for i := range files {
		path := files[i].FullPath()
		if _, dup := paths[path]; dup {
			return &DuplicatePathError{Path: path}
		}
		paths[path] = struct{}{}
	}

	for i := range files {
		if err := files[i].EnsureDir(); err != nil {
			return &SinkError{Appender: files[i].label(), Err: fmt.Errorf("create log directory: %w", err)}
		}
	}
	return nil
}

func checkNames(subscribed []string, declared map[string]struct{}, appender string) error {
	for _, name := range subscribed {
		if _, ok := declared[name]; !ok {
			return &UnknownLoggerError{Name: name, Appender: appender}
		}
	}
	return nil
}
