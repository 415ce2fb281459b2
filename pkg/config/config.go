package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"dayplan/pkg/api"
	"dayplan/pkg/datenorm"
	"dayplan/pkg/keymaps"
)

// EnvPrefix prefixes environment overrides, e.g. DAYPLAN_BASE_URL.
const EnvPrefix = "DAYPLAN"

// Config holds the application configuration
type Config struct {
	BaseURL        string            `mapstructure:"base_url" json:"base_url"`
	Database       string            `mapstructure:"database" json:"database"`
	DisplayOffset  string            `mapstructure:"display_offset" json:"display_offset"`
	TokenSource    string            `mapstructure:"token_source" json:"token_source"`
	RequestTimeout time.Duration     `mapstructure:"request_timeout" json:"request_timeout"`
	KeyMap         map[string]string `mapstructure:"keymap" json:"keymap"`
	StylesFile     string            `mapstructure:"styles_file" json:"styles_file"`
	LogFile        string            `mapstructure:"log_file" json:"log_file"`
}

// Styles holds the application colors and styling information
type Styles struct {
	// UI element colors
	BorderColor string `mapstructure:"border_color" json:"border_color"`
	AccentColor string `mapstructure:"accent_color" json:"accent_color"`

	// Text colors
	NormalTextColor   string `mapstructure:"normal_text_color" json:"normal_text_color"`
	SelectedTextColor string `mapstructure:"selected_text_color" json:"selected_text_color"`
	SelectedBgColor   string `mapstructure:"selected_bg_color" json:"selected_bg_color"`
	ErrorColor        string `mapstructure:"error_color" json:"error_color"`

	// Entry colors
	CategoryColor string `mapstructure:"category_color" json:"category_color"`
	DoneColor     string `mapstructure:"done_color" json:"done_color"`
	OverdueColor  string `mapstructure:"overdue_color" json:"overdue_color"`
}

// DefaultStyles match the built-in palette.
func DefaultStyles() Styles {
	return Styles{
		BorderColor:       "240",
		AccentColor:       "205",
		NormalTextColor:   "86",
		SelectedTextColor: "229",
		SelectedBgColor:   "57",
		ErrorColor:        "9",
		CategoryColor:     "2",
		DoneColor:         "242",
		OverdueColor:      "208",
	}
}

// Dir returns the configuration directory, ~/.config/dayplan.
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "dayplan"), nil
}

// Defaults returns the configuration used when no file exists yet.
func Defaults() (Config, error) {
	configDir, err := Dir()
	if err != nil {
		return Config{}, err
	}
	return Config{
		BaseURL:        api.DefaultBaseURL,
		Database:       filepath.Join(configDir, "session.db"),
		DisplayOffset:  datenorm.FormatOffset(datenorm.DefaultOffset),
		TokenSource:    string(api.TokenFromBody),
		RequestTimeout: 15 * time.Second,
		KeyMap:         keymaps.GetDefaultKeyMappings(),
		StylesFile:     filepath.Join(configDir, "styles.json"),
	}, nil
}

// Load loads the configuration from configPath (or the default location),
// writing a default file on first run. Environment variables prefixed with
// DAYPLAN_ override file values.
func Load(configPath string) (Config, Styles, error) {
	defaults, err := Defaults()
	if err != nil {
		return Config{}, Styles{}, err
	}

	v := viper.New()
	v.SetConfigType("json")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("base_url", defaults.BaseURL)
	v.SetDefault("database", defaults.Database)
	v.SetDefault("display_offset", defaults.DisplayOffset)
	v.SetDefault("token_source", defaults.TokenSource)
	v.SetDefault("request_timeout", defaults.RequestTimeout.String())
	v.SetDefault("keymap", defaults.KeyMap)
	v.SetDefault("styles_file", defaults.StylesFile)
	v.SetDefault("log_file", "")

	if configPath == "" {
		configDir, err := Dir()
		if err != nil {
			return Config{}, Styles{}, err
		}
		configPath = filepath.Join(configDir, "config.json")
	}
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return Config{}, Styles{}, fmt.Errorf("reading config %s: %w", configPath, err)
		}
		// First run: write the defaults so the user has a file to edit.
		if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
			return Config{}, Styles{}, err
		}
		if err := v.WriteConfigAs(configPath); err != nil {
			return Config{}, Styles{}, fmt.Errorf("writing default config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, Styles{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, Styles{}, err
	}

	styles, err := loadStyles(cfg.StylesFile)
	if err != nil {
		return cfg, styles, fmt.Errorf("error loading styles: %w", err)
	}

	return cfg, styles, nil
}

// Validate checks the values that are parsed later.
func (c Config) Validate() error {
	if _, err := c.Normalizer(); err != nil {
		return fmt.Errorf("display_offset: %w", err)
	}
	if _, err := api.ParseTokenStrategy(c.TokenSource); err != nil {
		return fmt.Errorf("token_source: %w", err)
	}
	return nil
}

// Offset parses DisplayOffset.
func (c Config) Offset() (time.Duration, error) {
	return datenorm.ParseOffset(c.DisplayOffset)
}

// Normalizer builds the date normalizer for DisplayOffset.
func (c Config) Normalizer() (datenorm.Normalizer, error) {
	off, err := c.Offset()
	if err != nil {
		return datenorm.Normalizer{}, err
	}
	return datenorm.New(off)
}

// Strategy parses TokenSource.
func (c Config) Strategy() api.TokenStrategy {
	s, err := api.ParseTokenStrategy(c.TokenSource)
	if err != nil {
		return api.TokenFromBody
	}
	return s
}

// loadStyles loads the application styles from the specified path
func loadStyles(stylesPath string) (Styles, error) {
	defaultStyles := DefaultStyles()
	if stylesPath == "" {
		return defaultStyles, nil
	}

	v := viper.New()
	v.SetConfigFile(stylesPath)
	v.SetConfigType("json")
	setStyleDefaults(v, defaultStyles)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return defaultStyles, err
		}
		if err := os.MkdirAll(filepath.Dir(stylesPath), 0o755); err != nil {
			return defaultStyles, err
		}
		if err := v.WriteConfigAs(stylesPath); err != nil {
			return defaultStyles, err
		}
		return defaultStyles, nil
	}

	var loaded Styles
	if err := v.Unmarshal(&loaded); err != nil {
		return defaultStyles, err
	}
	return loaded, nil
}

func setStyleDefaults(v *viper.Viper, s Styles) {
	v.SetDefault("border_color", s.BorderColor)
	v.SetDefault("accent_color", s.AccentColor)
	v.SetDefault("normal_text_color", s.NormalTextColor)
	v.SetDefault("selected_text_color", s.SelectedTextColor)
	v.SetDefault("selected_bg_color", s.SelectedBgColor)
	v.SetDefault("error_color", s.ErrorColor)
	v.SetDefault("category_color", s.CategoryColor)
	v.SetDefault("done_color", s.DoneColor)
	v.SetDefault("overdue_color", s.OverdueColor)
}
