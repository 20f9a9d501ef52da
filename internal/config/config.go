// Package config loads the settings of the projector command from a CUE or
// YAML file.
//
// Both formats are checked against the same embedded CUE schema, so a typo'd
// log level or a malformed item id is rejected with a position where the
// format provides one. Missing fields take the values of Default.
package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"

	"github.com/roach88/projector/internal/todo"
)

//go:embed schema.cue
var schemaSource []byte

// Defaults for fields a config file leaves out.
const (
	DefaultLogLevel = "info"
	DefaultJournal  = "projector.db"
	DefaultTitle    = "Todo"
)

// Config is the projector configuration.
type Config struct {
	LogLevel string `json:"log_level,omitempty" yaml:"log_level,omitempty"`
	// Journal is the path of the SQLite dispatch log.
	Journal string `json:"journal,omitempty" yaml:"journal,omitempty"`
	// Session resumes an existing journal session; empty starts a new one.
	Session string `json:"session,omitempty" yaml:"session,omitempty"`
	// Title and Items form the initial list.
	Title string      `json:"title,omitempty" yaml:"title,omitempty"`
	Items []todo.Item `json:"items,omitempty" yaml:"items,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		LogLevel: DefaultLogLevel,
		Journal:  DefaultJournal,
		Title:    DefaultTitle,
	}
}

// ValidationError reports a config value the schema rejects.
type ValidationError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *ValidationError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Load reads the config file at path. The format follows the extension:
// .cue, or .yaml/.yml. An empty path yields Default().
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg *Config
	switch ext := filepath.Ext(path); ext {
	case ".cue":
		cfg, err = parseCUE(path, data)
	case ".yaml", ".yml":
		cfg, err = parseYAML(data)
	default:
		return nil, fmt.Errorf("unsupported config format %q (want .cue, .yaml or .yml)", ext)
	}
	if err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	if err := cfg.checkItems(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseCUE(path string, data []byte) (*Config, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err, cue.Value{})
	}

	v, err := validate(ctx, v)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

func parseYAML(data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	ctx := cuecontext.New()
	if _, err := validate(ctx, ctx.Encode(cfg)); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate unifies v with the #Config schema and requires a concrete result.
func validate(ctx *cue.Context, v cue.Value) (cue.Value, error) {
	schema := ctx.CompileBytes(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("invalid embedded schema: %w", err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Config")).Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return cue.Value{}, formatCUEError(err, v)
	}
	return unified, nil
}

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.Journal == "" {
		c.Journal = DefaultJournal
	}
	if c.Title == "" {
		c.Title = DefaultTitle
	}
}

func (c *Config) checkItems() error {
	seen := make(map[string]bool, len(c.Items))
	for i, it := range c.Items {
		if seen[it.ID] {
			return &ValidationError{
				Field:   fmt.Sprintf("items[%d].id", i),
				Message: fmt.Sprintf("duplicate id %q", it.ID),
			}
		}
		seen[it.ID] = true
	}
	return nil
}

// Level returns the slog level named by LogLevel, or Info when it names none.
func (c *Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// InitialState returns the list the store starts from.
func (c *Config) InitialState() todo.State {
	return todo.NewState(c.Title, c.Items...)
}

// formatCUEError turns the first CUE error into a ValidationError. The
// position is that of the offending field in source when it has one, else
// the first valid position the errors carry (errors from disjunctions carry
// none).
func formatCUEError(err error, source cue.Value) error {
	if err == nil {
		return nil
	}

	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &ValidationError{Field: "cue", Message: err.Error()}
	}

	first := errs[0]
	format, args := first.Msg()
	ve := &ValidationError{Field: "cue", Message: fmt.Sprintf(format, args...)}

	path := fieldPath(first.Path())
	if len(path) > 0 {
		ve.Field = strings.Join(path, ".")
	}

	if len(path) > 0 && source.Exists() {
		ve.Pos = source.LookupPath(selectorPath(path)).Pos()
	}
	if !ve.Pos.IsValid() {
		ve.Pos = first.Position()
	}
	for _, e := range errs {
		if ve.Pos.IsValid() {
			break
		}
		for _, p := range cueerrors.Positions(e) {
			if p.IsValid() {
				ve.Pos = p
				break
			}
		}
	}
	return ve
}

// fieldPath drops the schema definitions ("#Config") from an error path,
// leaving the path of the field in the config file.
func fieldPath(path []string) []string {
	out := make([]string, 0, len(path))
	for _, p := range path {
		if strings.HasPrefix(p, "#") {
			continue
		}
		out = append(out, p)
	}
	return out
}

func selectorPath(path []string) cue.Path {
	sels := make([]cue.Selector, len(path))
	for i, p := range path {
		if n, err := strconv.Atoi(p); err == nil {
			sels[i] = cue.Index(n)
			continue
		}
		sels[i] = cue.Str(p)
	}
	return cue.MakePath(sels...)
}
