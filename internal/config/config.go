// Package config loads kanjisheet settings from flags, the environment and
// an optional YAML file.
//
// Precedence, lowest first: flag defaults, the --config file, KANJISHEET_*
// environment variables, flags given on the command line.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const (
	// EnvPrefix prefixes environment overrides, e.g. KANJISHEET_DAYS=3.
	EnvPrefix = "KANJISHEET_"

	// DefaultProfile is the profile Anki creates on first start.
	DefaultProfile = "User 1"

	collectionFile = "collection.anki2"
	mediaDir       = "collection.media"
)

// Config holds the settings of one run.
type Config struct {
	Name         string `koanf:"name" validate:"required"`
	AnkiRoot     string `koanf:"anki_root" validate:"required"`
	Days         int    `koanf:"days" validate:"gte=1"`
	All          bool   `koanf:"all"`
	Forgotten    bool   `koanf:"forgotten"`
	Output       string `koanf:"output" validate:"required"`
	Template     string `koanf:"template" validate:"omitempty,file"`
	MissingMedia string `koanf:"missing_media" validate:"oneof=abort skip"`
	MediaRepo    string `koanf:"media_repo"`
	CacheDir     string `koanf:"cache_dir" validate:"required_with=MediaRepo"`
	Open         bool   `koanf:"open"`
	Verbose      bool   `koanf:"verbose"`
}

// ProfileDir is the Anki profile folder.
func (c *Config) ProfileDir() string {
	return filepath.Join(c.AnkiRoot, c.Name)
}

// CollectionPath is the profile's SQLite collection.
func (c *Config) CollectionPath() string {
	return filepath.Join(c.ProfileDir(), collectionFile)
}

// MediaDir is the profile's media folder.
func (c *Config) MediaDir() string {
	return filepath.Join(c.ProfileDir(), mediaDir)
}

// NewFlagSet declares the command line flags with their defaults.
func NewFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SortFlags = false

	fs.StringP("name", "n", DefaultProfile, "The Anki profile name.")
	fs.IntP("days", "d", 1, "The number of days to go back. The first day is 16 hours.")
	fs.BoolP("forgotten", "f", false, "Only use cards that were answered Again.")
	fs.StringP("output", "o", "worksheet.html", "The HTML file to write to.")
	fs.Bool("all", false, "Use every kanji note, ignoring review history.")
	fs.String("anki-root", DefaultAnkiRoot(), "The directory holding the Anki profiles.")
	fs.String("template", "", "A worksheet template to use instead of the built-in one.")
	fs.String("missing-media", "abort", "What to do when a stroke diagram file is missing: abort or skip.")
	fs.String("media-repo", "", "Git URL of a stroke diagram repository searched after the profile media.")
	fs.String("cache-dir", DefaultCacheDir(), "Where the media repository is checked out.")
	fs.Bool("open", true, "Open the worksheet when it has been written.")
	fs.BoolP("verbose", "v", false, "Log debug output.")
	fs.StringP("config", "c", "", "A YAML config file.")
	return fs
}

// Load parses args and merges every configuration source. It returns
// pflag.ErrHelp when help was requested.
func Load(args []string) (*Config, error) {
	fs := NewFlagSet("kanjisheet")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	k := koanf.New(".")

	if path, _ := fs.GetString("config"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	// Unchanged flags only fill keys that no other source has set.
	if err := k.Load(posflag.ProviderWithFlag(fs, ".", k, func(f *pflag.Flag) (string, interface{}) {
		return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(fs, f)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load flags: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("koanf"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the config for values the run cannot work with.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid config: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_with":
		return fmt.Sprintf("%s is required", fe.Field())
	case "gte":
		return fmt.Sprintf("%s must be at least %s, got %v", fe.Field(), fe.Param(), fe.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", fe.Field(), fe.Param(), fe.Value())
	case "file":
		return fmt.Sprintf("%s %q is not a file", fe.Field(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	}
}
