// Package config loads storefront settings.
//
// Settings come from an optional YAML file, then environment overrides.
// The merged document is checked against an embedded CUE schema that also
// supplies every default, so a missing file yields a complete Config.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaSource string

// Environment variables that override file settings.
const (
	EnvAPIURL   = "STOREFRONT_API_URL"
	EnvDB       = "STOREFRONT_DB"
	EnvLogLevel = "STOREFRONT_LOG_LEVEL"
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
)

// Config is the full, defaulted configuration.
type Config struct {
	API     API     `json:"api"`
	Storage Storage `json:"storage"`
	Cart    Cart    `json:"cart"`
	Log     Log     `json:"log"`
}

// API configures the backend client.
type API struct {
	BaseURL string `json:"base_url"`
	Timeout string `json:"timeout"`

	// CallTimeout is Timeout parsed.
	CallTimeout time.Duration `json:"-"`
}

// Storage configures where the cart and the submission journal live.
// Path empty means the default location for the backend.
type Storage struct {
	Backend string `json:"backend"`
	Path    string `json:"path"`
	Slot    string `json:"slot"`
}

// Cart configures the cart store.
type Cart struct {
	StrictQuantities bool `json:"strict_quantities"`
}

// Log configures the logger.
type Log struct {
	Level string `json:"level"`
}

// Loader reads configuration. The zero value reads the real environment.
type Loader struct {
	// Getenv looks up environment overrides. Defaults to os.Getenv.
	Getenv func(string) string
}

// Default returns the configuration used when no file or override is given.
func Default() Config {
	cfg, err := Loader{Getenv: func(string) string { return "" }}.Parse(nil)
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults invalid: %v", err))
	}
	return cfg
}

// Load reads the YAML file at path. An empty path skips the file.
func Load(path string) (Config, error) {
	return Loader{}.Load(path)
}

// Load reads the YAML file at path. An empty path skips the file; a
// non-empty path that does not exist is an error.
func (l Loader) Load(path string) (Config, error) {
	var data []byte
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		data = b
	}
	cfg, err := l.Parse(data)
	if err != nil && path != "" {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, err
}

// Parse builds a Config from YAML bytes. Empty input means all defaults.
func (l Loader) Parse(data []byte) (Config, error) {
	doc := map[string]any{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Config{}, fmt.Errorf("parse config yaml: %w", err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	l.applyEnv(doc)

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Config{}, fmt.Errorf("compile config schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))
	if err := checkKnown(def, doc, ""); err != nil {
		return Config{}, err
	}

	value := def.Unify(ctx.Encode(doc))
	if err := value.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	var cfg Config
	if err := value.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	timeout, err := time.ParseDuration(cfg.API.Timeout)
	if err != nil {
		return Config{}, fmt.Errorf("invalid config: api.timeout: %w", err)
	}
	if timeout <= 0 {
		return Config{}, errors.New("invalid config: api.timeout must be positive")
	}
	cfg.API.CallTimeout = timeout
	return cfg, nil
}

func (l Loader) applyEnv(doc map[string]any) {
	getenv := l.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := getenv(EnvAPIURL); v != "" {
		section(doc, "api")["base_url"] = v
	}
	if v := getenv(EnvDB); v != "" {
		section(doc, "storage")["path"] = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		section(doc, "log")["level"] = v
	}
}

// checkKnown rejects keys the schema does not declare.
func checkKnown(def cue.Value, doc map[string]any, prefix string) error {
	for key, v := range doc {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		field := def.LookupPath(cue.MakePath(cue.Str(key)))
		if !field.Exists() {
			return fmt.Errorf("invalid config: unknown key %q", path)
		}
		if sub, ok := v.(map[string]any); ok {
			if err := checkKnown(field, sub, path); err != nil {
				return err
			}
		}
	}
	return nil
}

// section returns doc[name] as a map, creating or replacing it as needed.
func section(doc map[string]any, name string) map[string]any {
	if m, ok := doc[name].(map[string]any); ok {
		return m
	}
	m := map[string]any{}
	doc[name] = m
	return m
}
