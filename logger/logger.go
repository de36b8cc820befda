package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type (
	// LogConfiguration is the logger configuration, loadable from a YAML
	// file via LoadConfiguration.
	LogConfiguration struct {
		Level      string `yaml:"defaultLevel"`
		Format     string `yaml:"format"` // "text" or "json"
		OutputPath string `yaml:"outputPath"`
		ShowSource bool   `yaml:"showSource"`

		writer io.Writer
	}
)

// New creates a logger based on the configuration. Zero value configuration
// builds an INFO level text logger to stderr.
func New(cfg *LogConfiguration) (*slog.Logger, error) {
	if cfg == nil {
		cfg = &LogConfiguration{}
	}
	h, err := cfg.handler()
	if err != nil {
		return nil, fmt.Errorf("creating logger handler: %w", err)
	}
	return slog.New(h), nil
}

// LoadConfiguration reads logger configuration from a YAML file.
func LoadConfiguration(fileName string) (*LogConfiguration, error) {
	buf, err := os.ReadFile(filepath.Clean(fileName))
	if err != nil {
		return nil, fmt.Errorf("reading logger config file: %w", err)
	}
	cfg := &LogConfiguration{}
	if err := yaml.Unmarshal(buf, cfg); err != nil {
		return nil, fmt.Errorf("parsing logger config file: %w", err)
	}
	return cfg, nil
}

func (cfg *LogConfiguration) handler() (slog.Handler, error) {
	w := cfg.writer
	if w == nil {
		switch cfg.OutputPath {
		case "", "stderr":
			w = os.Stderr
		case "stdout":
			w = os.Stdout
		default:
			file, err := os.OpenFile(filepath.Clean(cfg.OutputPath), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
			if err != nil {
				return nil, fmt.Errorf("opening log file: %w", err)
			}
			w = file
		}
	}

	opts := &slog.HandlerOptions{
		AddSource: cfg.ShowSource,
		Level:     cfg.logLevel(),
	}
	switch strings.ToLower(cfg.Format) {
	case "", "text":
		return slog.NewTextHandler(w, opts), nil
	case "json":
		return slog.NewJSONHandler(w, opts), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
}

func (cfg *LogConfiguration) logLevel() slog.Level {
	switch strings.ToLower(cfg.Level) {
	case "warning":
		return slog.LevelWarn
	default:
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(cfg.Level)); err != nil {
			return slog.LevelInfo
		}
		return lvl
	}
}
