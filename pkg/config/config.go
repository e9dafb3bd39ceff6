// Package config handles loading and saving techtips configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/techtips/config.yaml
//
// Precedence is decided by the caller: command-line flags override
// environment variables, which override this file, which overrides
// DefaultConfig.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const appName = "techtips"

// ContentConfig says where instructions come from.
type ContentConfig struct {
	Path  string `yaml:"path,omitempty"`  // JSON, YAML or SQLite content file
	Watch bool   `yaml:"watch,omitempty"` // Reload the content file when it changes
}

// UIConfig holds UI preference settings.
type UIConfig struct {
	Mode           string `yaml:"mode,omitempty" validate:"omitempty,oneof=auto grouped flat"`
	GridColumns    int    `yaml:"grid_columns,omitempty" validate:"min=1,max=6"`
	WordWrap       int    `yaml:"word_wrap,omitempty" validate:"min=0"` // 0 = terminal width
	ShowBackground *bool  `yaml:"show_background,omitempty"`
}

// StylesConfig is the lookup table from category name to tile color.
// Colors are hex strings such as "#3B82F6".
type StylesConfig struct {
	Default    string            `yaml:"default,omitempty" validate:"omitempty,hexcolor"`
	Categories map[string]string `yaml:"categories,omitempty" validate:"dive,keys,required,endkeys,hexcolor"`
}

// Config is the top-level configuration for techtips.
type Config struct {
	Content ContentConfig `yaml:"content,omitempty"`
	UI      UIConfig      `yaml:"ui,omitempty"`
	Styles  StylesConfig  `yaml:"styles,omitempty"`
}

// Default palette, one color per bundled category.
const (
	ColorBlue   = "#3B82F6"
	ColorGreen  = "#22C55E"
	ColorOrange = "#F97316"
	ColorPurple = "#A855F7"
	ColorRed    = "#EF4444"
	ColorGray   = "#6B7280"
)

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		UI: UIConfig{
			Mode:        "auto",
			GridColumns: 2,
		},
		Styles: StylesConfig{
			Default: ColorGray,
			Categories: map[string]string{
				"Email & Outlook":    ColorBlue,
				"Printing":           ColorGreen,
				"Password & Login":   ColorOrange,
				"Microsoft 365":      ColorPurple,
				"Networking & Wi-Fi": ColorRed,
			},
		},
	}
}

// ConfigDir returns the XDG config directory for techtips.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName)
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(expandHome(path))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parsing config: %w", err)
	}

	// Partial styles tables extend the defaults rather than replace them
	defaults := DefaultConfig().Styles.Categories
	if cfg.Styles.Categories == nil {
		cfg.Styles.Categories = defaults
	}
	for name, color := range defaults {
		if _, ok := cfg.Styles.Categories[name]; !ok {
			cfg.Styles.Categories[name] = color
		}
	}
	if cfg.UI.GridColumns == 0 {
		cfg.UI.GridColumns = 2
	}

	cfg.Content.Path = expandHome(cfg.Content.Path)

	if err := cfg.Validate(); err != nil {
		return DefaultConfig(), err
	}
	return cfg, nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field values. The error names every offending field.
func (c Config) Validate() error {
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
		msgs = append(msgs, fmt.Sprintf("%s: %q fails %s", fe.Namespace(), fmt.Sprint(fe.Value()), fe.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// CategoryColor returns the tile color for a category, falling back to
// the default style.
func (c Config) CategoryColor(category string) string {
	if color, ok := c.Styles.Categories[category]; ok && color != "" {
		return color
	}
	if c.Styles.Default != "" {
		return c.Styles.Default
	}
	return ColorGray
}

// ShowBackground reports whether the background asset key is displayed.
// Defaults to true.
func (c Config) ShowBackground() bool {
	return c.UI.ShowBackground == nil || *c.UI.ShowBackground
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
