// Package config loads the YAML settings file read by the command line tool.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	musictext "github.com/cbegin/musictext-go"
	"github.com/cbegin/musictext-go/internal/logging"
	"github.com/cbegin/musictext-go/internal/notation"
)

// Config mirrors the settings file. Unset pointer fields leave the library
// default in place.
type Config struct {
	Parser  Parser  `yaml:"parser"`
	Spatial Spatial `yaml:"spatial"`
	Rhythm  Rhythm  `yaml:"rhythm"`
	Logging Logging `yaml:"logging"`
}

type Parser struct {
	ExpandCompact    *bool  `yaml:"expand_compact"`
	DefaultSystem    string `yaml:"default_system"`
	NormalizeUnicode *bool  `yaml:"normalize_unicode"`
}

type Spatial struct {
	MaxOctave *int `yaml:"max_octave"`
}

type Rhythm struct {
	BeatSpan   string `yaml:"beat_span"`
	TonicItems *bool  `yaml:"tonic_items"`
}

type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Defaults returns the settings used when no file is given.
func Defaults() Config {
	return Config{
		Rhythm:  Rhythm{BeatSpan: "1/4"},
		Logging: Logging{Level: "info", Format: "text"},
	}
}

// Load parses a settings file from raw bytes, or from path when raw is
// empty. Unknown keys are rejected.
func Load(path string, raw []byte) (Config, error) {
	var cfg Config
	var r io.Reader
	switch {
	case len(raw) > 0:
		r = bytes.NewReader(raw)
	case path != "":
		f, err := os.Open(path)
		if err != nil {
			return cfg, err
		}
		defer f.Close()
		r = f
	default:
		return cfg, errors.New("no config source provided")
	}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return Config{}, nil
		}
		return cfg, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Merge overlays over onto base. Empty strings and nil pointers do not
// override.
func Merge(base, over Config) Config {
	out := base
	if over.Parser.ExpandCompact != nil {
		out.Parser.ExpandCompact = over.Parser.ExpandCompact
	}
	if s := strings.TrimSpace(over.Parser.DefaultSystem); s != "" {
		out.Parser.DefaultSystem = s
	}
	if over.Parser.NormalizeUnicode != nil {
		out.Parser.NormalizeUnicode = over.Parser.NormalizeUnicode
	}
	if over.Spatial.MaxOctave != nil {
		out.Spatial.MaxOctave = over.Spatial.MaxOctave
	}
	if s := strings.TrimSpace(over.Rhythm.BeatSpan); s != "" {
		out.Rhythm.BeatSpan = s
	}
	if over.Rhythm.TonicItems != nil {
		out.Rhythm.TonicItems = over.Rhythm.TonicItems
	}
	if s := strings.TrimSpace(over.Logging.Level); s != "" {
		out.Logging.Level = s
	}
	if s := strings.TrimSpace(over.Logging.Format); s != "" {
		out.Logging.Format = s
	}
	return out
}

// Validate checks values that the decoder cannot.
func Validate(cfg Config) error {
	if cfg.Parser.DefaultSystem != "" {
		if _, err := notation.ParseSystem(cfg.Parser.DefaultSystem); err != nil {
			return fmt.Errorf("config: parser.default_system: %w", err)
		}
	}
	if cfg.Spatial.MaxOctave != nil && *cfg.Spatial.MaxOctave < 0 {
		return errors.New("config: spatial.max_octave must be >= 0")
	}
	if cfg.Rhythm.BeatSpan != "" {
		f, err := notation.ParseFraction(cfg.Rhythm.BeatSpan)
		if err != nil {
			return fmt.Errorf("config: rhythm.beat_span: %w", err)
		}
		if f.Sign() <= 0 {
			return errors.New("config: rhythm.beat_span must be > 0")
		}
	}
	if _, err := logging.ParseLevel(cfg.Logging.Level); err != nil {
		return fmt.Errorf("config: logging.level: %w", err)
	}
	if _, err := logging.ParseFormat(cfg.Logging.Format); err != nil {
		return fmt.Errorf("config: logging.format: %w", err)
	}
	return nil
}

// Logger builds the logger described by the logging section.
func (c Config) Logger(w io.Writer) (*slog.Logger, error) {
	level, err := logging.ParseLevel(c.Logging.Level)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(c.Logging.Format)
	if err != nil {
		return nil, err
	}
	return logging.New(w, level, format), nil
}

// Options converts the settings into pipeline options.
func (c Config) Options() ([]musictext.Option, error) {
	if err := Validate(c); err != nil {
		return nil, err
	}
	var opts []musictext.Option
	if c.Parser.ExpandCompact != nil {
		opts = append(opts, musictext.WithCompactExpansion(*c.Parser.ExpandCompact))
	}
	if c.Parser.DefaultSystem != "" {
		sys, _ := notation.ParseSystem(c.Parser.DefaultSystem)
		opts = append(opts, musictext.WithDefaultSystem(sys))
	}
	if c.Parser.NormalizeUnicode != nil {
		opts = append(opts, musictext.WithUnicodeNormalization(*c.Parser.NormalizeUnicode))
	}
	if c.Spatial.MaxOctave != nil {
		opts = append(opts, musictext.WithMaxOctave(*c.Spatial.MaxOctave))
	}
	if c.Rhythm.BeatSpan != "" {
		f, _ := notation.ParseFraction(c.Rhythm.BeatSpan)
		opts = append(opts, musictext.WithBeatSpan(f))
	}
	if c.Rhythm.TonicItems != nil {
		opts = append(opts, musictext.WithTonicItems(*c.Rhythm.TonicItems))
	}
	return opts, nil
}
