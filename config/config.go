// Package config loads settings for the flatcsv command and HTTP server.
//
// Values are resolved in this order, later sources overriding earlier ones:
// built-in defaults, an optional YAML file, an optional .env file and
// FLATCSV_* environment variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/reoring/flatcsv"
	"github.com/reoring/flatcsv/source"
)

// EnvPrefix is prepended to every environment variable name read by Load.
const EnvPrefix = "FLATCSV_"

// Config represents the complete application configuration.
type Config struct {
	Convert ConvertConfig `yaml:"convert"`
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
}

// ConvertConfig mirrors flatcsv.Options in file-friendly form.
type ConvertConfig struct {
	Delimiter           string `yaml:"delimiter"`  // one character, or "tab"
	Separator           string `yaml:"separator"`  // joins nested keys
	ValueKey            string `yaml:"value_key"`  // column for wrapped scalars
	Numbers             string `yaml:"numbers"`    // canonical | literal
	Arrays              string `yaml:"arrays"`     // first | cross
	NonObject           string `yaml:"non_object"` // wrap | skip
	KeepEnvelope        bool   `yaml:"keep_envelope"`
	RejectDuplicateKeys bool   `yaml:"reject_duplicate_keys"`
	MaxDepth            int    `yaml:"max_depth"`
	MaxBytes            int64  `yaml:"max_bytes"`
	Lang                string `yaml:"lang"`
	Driver              string `yaml:"driver"` // encoding/json | go-json
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	GinMode         string        `yaml:"gin_mode"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Convert: ConvertConfig{
			Delimiter: string(flatcsv.DefaultDelimiter),
			Separator: flatcsv.DefaultSeparator,
			ValueKey:  flatcsv.DefaultValueKey,
			Numbers:   "canonical",
			Arrays:    "first",
			NonObject: "wrap",
			MaxDepth:  512,
			MaxBytes:  10 << 20,
			Lang:      "en",
		},
		Server: ServerConfig{
			Addr:            ":8080",
			GinMode:         "release",
			ReadTimeout:     15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty) and the process environment, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := cfg.decodeYAML(data); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// LoadDotEnv loads variables from the given .env files (".env" when none are
// named) into the process environment. Missing files are ignored; variables
// already set are kept.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

func (c *Config) decodeYAML(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyEnv overrides fields from FLATCSV_* variables found through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	var errs []error
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}
	boolean := func(name string, dst *bool) {
		if v, ok := lookup(EnvPrefix + name); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = b
		}
	}
	integer := func(name string, dst *int64) {
		if v, ok := lookup(EnvPrefix + name); ok {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = n
		}
	}
	duration := func(name string, dst *time.Duration) {
		if v, ok := lookup(EnvPrefix + name); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = d
		}
	}

	str("DELIMITER", &c.Convert.Delimiter)
	str("SEPARATOR", &c.Convert.Separator)
	str("VALUE_KEY", &c.Convert.ValueKey)
	str("NUMBERS", &c.Convert.Numbers)
	str("ARRAYS", &c.Convert.Arrays)
	str("NON_OBJECT", &c.Convert.NonObject)
	boolean("KEEP_ENVELOPE", &c.Convert.KeepEnvelope)
	boolean("REJECT_DUPLICATE_KEYS", &c.Convert.RejectDuplicateKeys)
	depth := int64(c.Convert.MaxDepth)
	integer("MAX_DEPTH", &depth)
	c.Convert.MaxDepth = int(depth)
	integer("MAX_BYTES", &c.Convert.MaxBytes)
	str("LANG", &c.Convert.Lang)
	str("DRIVER", &c.Convert.Driver)

	str("ADDR", &c.Server.Addr)
	str("GIN_MODE", &c.Server.GinMode)
	duration("READ_TIMEOUT", &c.Server.ReadTimeout)
	duration("SHUTDOWN_TIMEOUT", &c.Server.ShutdownTimeout)

	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
	return errors.Join(errs...)
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	if _, err := parseDelimiter(c.Convert.Delimiter); err != nil {
		errs = append(errs, err)
	}
	if c.Convert.Separator == "" {
		errs = append(errs, errors.New("convert.separator must not be empty"))
	}
	if _, err := parseNumbers(c.Convert.Numbers); err != nil {
		errs = append(errs, err)
	}
	if _, err := parseArrays(c.Convert.Arrays); err != nil {
		errs = append(errs, err)
	}
	if _, err := parseNonObject(c.Convert.NonObject); err != nil {
		errs = append(errs, err)
	}
	if c.Convert.MaxDepth < 0 {
		errs = append(errs, errors.New("convert.max_depth must be >= 0"))
	}
	if c.Convert.MaxBytes < 0 {
		errs = append(errs, errors.New("convert.max_bytes must be >= 0"))
	}
	if _, err := source.Lookup(c.Convert.Driver); err != nil {
		errs = append(errs, fmt.Errorf("convert.driver: %w", err))
	}
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	switch c.Server.GinMode {
	case "debug", "release", "test":
	default:
		errs = append(errs, fmt.Errorf("server.gin_mode: unknown mode %q", c.Server.GinMode))
	}
	if c.Server.ShutdownTimeout < 0 || c.Server.ReadTimeout < 0 {
		errs = append(errs, errors.New("server timeouts must be >= 0"))
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// Options projects the conversion settings onto flatcsv.Options.
func (c *Config) Options() (flatcsv.Options, error) {
	if err := c.Validate(); err != nil {
		return flatcsv.Options{}, err
	}
	cc := c.Convert
	delim, _ := parseDelimiter(cc.Delimiter)
	numbers, _ := parseNumbers(cc.Numbers)
	arrays, _ := parseArrays(cc.Arrays)
	nonObject, _ := parseNonObject(cc.NonObject)
	driver, _ := source.Lookup(cc.Driver)

	opt := flatcsv.Options{
		Delimiter:    delim,
		Separator:    cc.Separator,
		ValueKey:     cc.ValueKey,
		NumberMode:   numbers,
		Arrays:       arrays,
		NonObject:    nonObject,
		KeepEnvelope: cc.KeepEnvelope,
		MaxDepth:     cc.MaxDepth,
		MaxBytes:     cc.MaxBytes,
		Lang:         cc.Lang,
		Driver:       driver,
	}
	if cc.RejectDuplicateKeys {
		opt.Strictness.OnDuplicateKey = flatcsv.Error
	}
	return opt, nil
}

// Logger builds the slog.Logger described by c.Log, writing to w.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	hopts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, hopts))
	}
	return slog.New(slog.NewTextHandler(w, hopts))
}

func parseDelimiter(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "":
		return flatcsv.DefaultDelimiter, nil
	case "tab", `\t`:
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if size != len(s) || !flatcsv.ValidDelimiter(r) {
		return 0, fmt.Errorf("convert.delimiter: %q is not a single usable character", s)
	}
	return r, nil
}

func parseNumbers(s string) (flatcsv.NumberMode, error) {
	switch s {
	case "", "canonical":
		return flatcsv.NumberCanonical, nil
	case "literal":
		return flatcsv.NumberLiteral, nil
	}
	return 0, fmt.Errorf("convert.numbers: unknown mode %q", s)
}

func parseArrays(s string) (flatcsv.ArrayPolicy, error) {
	switch s {
	case "", "first":
		return flatcsv.ArrayFirst, nil
	case "cross":
		return flatcsv.ArrayCrossProduct, nil
	}
	return 0, fmt.Errorf("convert.arrays: unknown policy %q", s)
}

func parseNonObject(s string) (flatcsv.NonObjectPolicy, error) {
	switch s {
	case "", "wrap":
		return flatcsv.NonObjectWrap, nil
	case "skip":
		return flatcsv.NonObjectSkip, nil
	}
	return 0, fmt.Errorf("convert.non_object: unknown policy %q", s)
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return l, nil
}
