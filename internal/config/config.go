// Package config provides the configuration structures for the greeting
// generator CLI and the queue worker daemon.
package config

import (
	"fmt"
	"os"

	"github.com/book-expert/configurator"
	"github.com/book-expert/logger"
	"github.com/pelletier/go-toml/v2"

	"github.com/pbxkit/greetgen/internal/core"
	"github.com/pbxkit/greetgen/internal/greeting"
)

// Built-in defaults, applied when neither a flag nor a config file supplies a
// value.
const (
	DefaultOutputDir  = "wav_output_3cx"
	DefaultVoice      = "Joanna"
	DefaultFFmpegPath = "ffmpeg"
)

// Options carries the fully resolved settings for one CLI run. There is no
// hidden process-wide state: the orchestrator receives everything through
// this struct.
type Options struct {
	InputFile  string
	FirstName  string
	LastName   string
	Template   string
	OutputDir  string
	Voice      string
	FFmpegPath string
}

// BatchMode reports whether the options select batch (input file) mode.
func (o Options) BatchMode() bool {
	return o.InputFile != ""
}

// Validate enforces the mutually-exclusive input mode rule: exactly one of
// the input file or the first/last name pair must be supplied. Violations are
// configuration errors surfaced before any entry processing begins.
func (o Options) Validate() error {
	batch := o.InputFile != ""
	first := o.FirstName != ""
	last := o.LastName != ""

	if first != last {
		return fmt.Errorf(
			"%w: both first and last name are required for single-user mode",
			core.ErrConfiguration,
		)
	}

	single := first && last

	if batch && single {
		return fmt.Errorf(
			"%w: input file and name pair are mutually exclusive",
			core.ErrConfiguration,
		)
	}

	if !batch && !single {
		return fmt.Errorf(
			"%w: either an input file or a first/last name pair is required",
			core.ErrConfiguration,
		)
	}

	return nil
}

// GeneratorConfig holds the tunable generation settings.
type GeneratorConfig struct {
	GreetingTemplate string `toml:"greeting_template"`
	OutputDir        string `toml:"output_dir"`
	Voice            string `toml:"voice"`
}

// TranscoderConfig holds the external transcoder settings.
type TranscoderConfig struct {
	FFmpegPath string `toml:"ffmpeg_path"`
}

// FileConfig is the optional TOML file the CLI accepts to override the
// built-in defaults. Explicit flags still win over file values.
type FileConfig struct {
	Generator  GeneratorConfig  `toml:"generator"`
	Transcoder TranscoderConfig `toml:"transcoder"`
}

// LoadFile reads and parses a CLI override file.
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var fileConfig FileConfig

	unmarshalErr := toml.Unmarshal(data, &fileConfig)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, unmarshalErr)
	}

	return &fileConfig, nil
}

// Resolve fills empty Options fields from the file config (when present) and
// then from the built-in defaults. Flag-supplied values are never overridden.
func Resolve(flags Options, file *FileConfig) Options {
	resolved := flags

	if file != nil {
		resolved.Template = firstNonEmpty(resolved.Template, file.Generator.GreetingTemplate)
		resolved.OutputDir = firstNonEmpty(resolved.OutputDir, file.Generator.OutputDir)
		resolved.Voice = firstNonEmpty(resolved.Voice, file.Generator.Voice)
		resolved.FFmpegPath = firstNonEmpty(resolved.FFmpegPath, file.Transcoder.FFmpegPath)
	}

	resolved.Template = firstNonEmpty(resolved.Template, greeting.DefaultTemplate)
	resolved.OutputDir = firstNonEmpty(resolved.OutputDir, DefaultOutputDir)
	resolved.Voice = firstNonEmpty(resolved.Voice, DefaultVoice)
	resolved.FFmpegPath = firstNonEmpty(resolved.FFmpegPath, DefaultFFmpegPath)

	return resolved
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}

	return ""
}

// NATSConfig holds the queue worker's NATS settings.
type NATSConfig struct {
	URL                     string `toml:"url"`
	GreetingJobSubject      string `toml:"greeting_job_subject"`
	PromptCreatedSubject    string `toml:"prompt_created_subject"`
	PromptObjectStoreBucket string `toml:"prompt_object_store_bucket"`
}

// PathsConfig holds the worker daemon's file path settings.
type PathsConfig struct {
	BaseLogsDir string `toml:"base_logs_dir"`
}

// ServiceConfig is the root configuration for the worker daemon.
type ServiceConfig struct {
	NATS       NATSConfig       `toml:"nats"`
	Generator  GeneratorConfig  `toml:"generator"`
	Transcoder TranscoderConfig `toml:"transcoder"`
	Paths      PathsConfig      `toml:"paths"`
}

// LoadService loads the worker daemon configuration through the central
// configurator.
func LoadService(log *logger.Logger) (*ServiceConfig, error) {
	var cfg ServiceConfig

	err := configurator.Load(&cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration from configurator: %w", err)
	}

	return &cfg, nil
}
