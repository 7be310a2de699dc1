package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	toml "github.com/pelletier/go-toml/v2"

	"plan-cli/internal/inline"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "plan.sqlite"
	appDirName            = "plan"

	DefaultMaxLevel    = 4
	DefaultIndentWidth = 2
	DefaultDebounceMS  = 750
)

// Keymap binds TUI actions to keys. Each value is a comma separated list of
// key names as reported by bubbletea ("ctrl+c", "alt+enter", ...).
type Keymap struct {
	Quit        string `toml:"quit"`
	Save        string `toml:"save"`
	Reload      string `toml:"reload"`
	Copy        string `toml:"copy"`
	Cut         string `toml:"cut"`
	Paste       string `toml:"paste"`
	SelectAll   string `toml:"select_all"`
	Description string `toml:"description"`
	Tag         string `toml:"tag"`
	Date        string `toml:"date"`
	Bold        string `toml:"bold"`
	Italic      string `toml:"italic"`
	Underline   string `toml:"underline"`
	Strike      string `toml:"strike"`
}

// Keys splits a binding into key names.
func Keys(binding string) []string {
	var out []string
	for _, k := range strings.Split(binding, ",") {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

type Config struct {
	DBPath             string       `toml:"db_path"`
	MaxLevel           int          `toml:"max_level"`
	IndentWidth        int          `toml:"indent_width"`
	AutosaveDebounceMS int          `toml:"autosave_debounce_ms"`
	LogFile            string       `toml:"log_file"`
	LogLevel           string       `toml:"log_level"`
	Tags               []inline.Tag `toml:"tags"`
	Keys               Keymap       `toml:"keys"`
}

func (c Config) AutosaveDebounce() time.Duration {
	return time.Duration(c.AutosaveDebounceMS) * time.Millisecond
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.DBPath, validation.Required),
		validation.Field(&c.MaxLevel, validation.Required, validation.Min(1), validation.Max(16)),
		validation.Field(&c.IndentWidth, validation.Required, validation.Min(1), validation.Max(8)),
		validation.Field(&c.AutosaveDebounceMS, validation.Min(0), validation.Max(60000)),
		validation.Field(&c.LogLevel, validation.In("", "debug", "info", "warn", "error")),
	); err != nil {
		return err
	}
	seen := map[string]bool{}
	for i := range c.Tags {
		t := &c.Tags[i]
		if err := validation.ValidateStruct(t,
			validation.Field(&t.ID, validation.Required),
			validation.Field(&t.Name, validation.Required),
		); err != nil {
			return fmt.Errorf("tags[%d]: %w", i, err)
		}
		if seen[t.ID] {
			return fmt.Errorf("tags[%d]: duplicate id %q", i, t.ID)
		}
		seen[t.ID] = true
	}
	return c.Keys.Validate()
}

func (k *Keymap) Validate() error {
	return validation.ValidateStruct(k,
		validation.Field(&k.Quit, validation.Required),
		validation.Field(&k.Save, validation.Required),
	)
}

// DefaultPath is the config file location under the user config dir.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appDirName, DefaultConfigFileName), nil
}

// LoadOrCreate reads path, writing the defaults there first when the file
// does not exist. A relative db_path is resolved against the config dir.
func LoadOrCreate(path string) (Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return resolve(path, cfg)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	// A file that exists owns its tag catalog, even when it is empty.
	cfg.Tags = nil
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBName
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return resolve(path, cfg)
}

func resolve(path string, cfg Config) (Config, error) {
	if !filepath.IsAbs(cfg.DBPath) {
		cfg.DBPath = filepath.Join(filepath.Dir(path), cfg.DBPath)
	}
	return cfg, nil
}

func write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Encode renders cfg as TOML.
func Encode(cfg Config) ([]byte, error) { return toml.Marshal(cfg) }

func Default() Config {
	return Config{
		DBPath:             DefaultDBName,
		MaxLevel:           DefaultMaxLevel,
		IndentWidth:        DefaultIndentWidth,
		AutosaveDebounceMS: DefaultDebounceMS,
		LogLevel:           "info",
		Tags: []inline.Tag{
			{ID: "work", Name: "work", Emoji: "💼"},
			{ID: "home", Name: "home", Emoji: "🏠"},
		},
		Keys: Keymap{
			Quit:        "ctrl+c,ctrl+q",
			Save:        "ctrl+s",
			Reload:      "ctrl+r",
			Copy:        "ctrl+y",
			Cut:         "ctrl+x",
			Paste:       "ctrl+v",
			SelectAll:   "ctrl+a",
			Description: "alt+enter,shift+enter",
			Tag:         "ctrl+t",
			Date:        "ctrl+d",
			Bold:        "alt+b",
			Italic:      "alt+i",
			Underline:   "alt+u",
			Strike:      "alt+s",
		},
	}
}
