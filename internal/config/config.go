// Package config loads orgdrill settings from defaults, a YAML file, the
// environment and command-line flags, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const (
	// EnvPrefix marks environment variables read as configuration.
	EnvPrefix = "ORGDRILL_"
	// DefaultFile is read when --config is not given and the file exists.
	DefaultFile = "orgdrill.yaml"
)

// Keys are the key bindings offered by the terminal display.
type Keys struct {
	Reveal  []string `koanf:"reveal" validate:"min=1,dive,required"`
	Skip    []string `koanf:"skip" validate:"min=1,dive,required"`
	Quit    []string `koanf:"quit" validate:"min=1,dive,required"`
	Success []string `koanf:"success" validate:"min=1,dive,required"`
	Failure []string `koanf:"failure" validate:"min=1,dive,required"`
}

// Config is the full configuration of a run.
type Config struct {
	Root           string        `koanf:"root" validate:"required"`
	DB             string        `koanf:"db" validate:"required"`
	ExerciseType   string        `koanf:"exercise_type" validate:"required"`
	DefinitionType string        `koanf:"definition_type" validate:"required,nefield=ExerciseType"`
	Locator        string        `koanf:"locator" validate:"oneof=rg walk"`
	RipgrepPath    string        `koanf:"rg_path" validate:"required_if=Locator rg"`
	Extensions     []string      `koanf:"extensions" validate:"min=1,dive,required"`
	GitURL         string        `koanf:"git_url"`
	Sync           bool          `koanf:"sync"`
	KeepGoing      bool          `koanf:"keep_going"`
	Plain          bool          `koanf:"plain"`
	EmptyDelay     time.Duration `koanf:"empty_delay" validate:"gte=0"`
	LogLevel       string        `koanf:"log_level" validate:"oneof=debug info warn error"`
	LogFormat      string        `koanf:"log_format" validate:"oneof=text json"`
	LogFile        string        `koanf:"log_file"`
	Keys           Keys          `koanf:"keys"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Root:        ".",
		DB:          "orgdrill.db",
		Locator:     "rg",
		RipgrepPath: "rg",
		Extensions:  []string{".org"},
		EmptyDelay:  1500 * time.Millisecond,
		LogLevel:    "info",
		LogFormat:   "text",
		Keys: Keys{
			Reveal:  []string{"space", "r"},
			Skip:    []string{"s"},
			Quit:    []string{"q", "esc"},
			Success: []string{"y", "1"},
			Failure: []string{"n", "2"},
		},
	}
}

// RegisterFlags adds the configuration flags to fs. Flag names use hyphens
// where config keys use underscores.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("config", "", "Path to a YAML config file (default "+DefaultFile+" if present)")
	fs.String("root", d.Root, "Directory searched for documents")
	fs.String("db", d.DB, "Path to the SQLite ratings database")
	fs.String("exercise-type", "", "TYPE property value marking exercises")
	fs.String("definition-type", "", "TYPE property value marking definitions")
	fs.String("locator", d.Locator, "File locator: rg or walk")
	fs.String("rg-path", d.RipgrepPath, "Path to the ripgrep executable")
	fs.StringSlice("extensions", d.Extensions, "Document file extensions")
	fs.String("git-url", "", "Notes repository cloned or pulled into --root")
	fs.Bool("sync", false, "Sync --git-url before reviewing")
	fs.Bool("keep-going", false, "Report malformed files and continue instead of stopping")
	fs.Bool("plain", false, "Use the line display instead of the full-screen one")
	fs.Duration("empty-delay", d.EmptyDelay, "How long to show the nothing-due notice")
	fs.String("log-level", d.LogLevel, "Log level: debug, info, warn, error")
	fs.String("log-format", d.LogFormat, "Log format: text or json")
	fs.String("log-file", "", "Write logs to this file")
}

// Load builds the configuration. flags may be nil.
func Load(flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	path, explicit := configPath(flags)
	if _, err := os.Stat(path); explicit || !errors.Is(err, fs.ErrNotExist) {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		// ORGDRILL_KEYS__REVEAL -> keys.reveal
		return strings.ReplaceAll(key, "__", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	if flags != nil {
		err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if f.Name == "config" {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil)
		if err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// Slices are decoded into empty fields and defaulted afterwards so a
	// shorter configured list never keeps trailing default entries.
	cfg := Default()
	cfg.Extensions = nil
	cfg.Keys = Keys{}
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.fillSlices()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration and names every offending field.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	err := v.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func (c *Config) fillSlices() {
	d := Default()
	fill := func(dst *[]string, def []string) {
		if len(*dst) == 0 {
			*dst = def
		}
	}
	fill(&c.Extensions, d.Extensions)
	fill(&c.Keys.Reveal, d.Keys.Reveal)
	fill(&c.Keys.Skip, d.Keys.Skip)
	fill(&c.Keys.Quit, d.Keys.Quit)
	fill(&c.Keys.Success, d.Keys.Success)
	fill(&c.Keys.Failure, d.Keys.Failure)
}

func configPath(flags *pflag.FlagSet) (string, bool) {
	if flags != nil {
		if p, err := flags.GetString("config"); err == nil && p != "" {
			return p, true
		}
	}
	if p := os.Getenv(EnvPrefix + "CONFIG"); p != "" {
		return p, true
	}
	return DefaultFile, false
}
