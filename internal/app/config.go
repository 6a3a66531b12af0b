package app

import (
	"encoding/json"
	"io"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/storage"
)

const (
	configFileName = "settings.json"

	ThemeLight = "light"
	ThemeDark  = "dark"

	ReportText = "txt"
	ReportXLSX = "xlsx"

	// DefaultJournalName is created in app storage when no journal path is set
	DefaultJournalName = "history.db"
)

type RuleConfig struct {
	Name       string   `json:"name"`
	Extensions []string `json:"extensions"`
}

type Config struct {
	Theme          string          `json:"theme"`
	Enabled        map[string]bool `json:"enabled_categories"`
	CustomRules    []RuleConfig    `json:"custom_rules"`
	IgnorePatterns string          `json:"ignore_patterns"`
	JournalPath    string          `json:"journal_path"`
	ReportFormat   string          `json:"report_format"`
	Debug          bool            `json:"debug"`
}

// LoadConfig loads configuration from app storage
func LoadConfig(a fyne.App, logger *Logger) *Config {
	config := DefaultConfig()

	// Get config URI from app's storage root
	rootURI := a.Storage().RootURI()
	configURI, err := storage.Child(rootURI, configFileName)
	if err != nil {
		logger.Info("Error creating config URI: %v. Using defaults.", err)
		return config
	}

	exists, err := storage.Exists(configURI)
	if err != nil {
		logger.Info("Error checking config existence: %v. Using defaults.", err)
		return config
	}

	if !exists {
		logger.Info("No config file found. Creating with defaults.")
		SaveConfig(a, config, logger)
		return config
	}

	rc, err := storage.Reader(configURI)
	if err != nil {
		logger.Info("Error opening config file: %v. Using defaults.", err)
		return config
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		logger.Info("Error reading config file: %v. Using defaults.", err)
		return config
	}

	parsed, err := ParseConfig(data)
	if err != nil {
		logger.Info("Error parsing config JSON: %v. Using defaults.", err)
		return config
	}

	logger.Info("Configuration loaded successfully.")
	return parsed
}

// SaveConfig saves configuration to app storage
func SaveConfig(a fyne.App, config *Config, logger *Logger) {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		logger.Info("Error marshaling config: %v", err)
		return
	}

	rootURI := a.Storage().RootURI()
	configURI, err := storage.Child(rootURI, configFileName)
	if err != nil {
		logger.Info("Error creating config URI for saving: %v", err)
		return
	}

	// Write config file (creates if doesn't exist)
	wc, err := storage.Writer(configURI)
	if err != nil {
		logger.Info("Error opening config file for writing: %v", err)
		return
	}
	defer wc.Close()

	if _, err := wc.Write(data); err != nil {
		logger.Info("Error writing config file: %v", err)
		return
	}

	logger.Info("Configuration saved.")
}

// LoadConfigFile reads settings from a plain file, as the command line tool
// does. A missing file yields the defaults.
func LoadConfigFile(path string, logger *Logger) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		logger.Debug("No config file at %s. Using defaults.", path)
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, err
	}
	return ParseConfig(data)
}

// ParseConfig decodes settings on top of the defaults, so keys missing from
// data keep their default value.
func ParseConfig(data []byte) (*Config, error) {
	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, err
	}
	if config.Theme != ThemeDark {
		config.Theme = ThemeLight
	}
	if config.ReportFormat != ReportXLSX {
		config.ReportFormat = ReportText
	}
	if config.Enabled == nil {
		config.Enabled = AllEnabled()
	}
	return config, nil
}

func DefaultConfig() *Config {
	return &Config{
		Theme:   ThemeLight,
		Enabled: AllEnabled(),
		CustomRules: []RuleConfig{
			{Name: "Compressed", Extensions: []string{".zip", ".rar"}},
			{Name: "Python_Files", Extensions: []string{".py"}},
		},
		IgnorePatterns: DefaultIgnorePatterns,
		ReportFormat:   ReportText,
	}
}

// BuildRuleSet turns the configured custom rules into a rule set. Invalid
// rules are logged and left out.
func (c *Config) BuildRuleSet(logger *Logger) *RuleSet {
	rules := NewRuleSet()
	for _, rc := range c.CustomRules {
		if err := rules.AddRule(rc.Name, rc.Extensions); err != nil {
			logger.Warn("Skipping custom rule %q: %v", rc.Name, err)
		}
	}
	return rules
}

// StoreRules replaces the configured custom rules with those of rules.
func (c *Config) StoreRules(rules *RuleSet) {
	c.CustomRules = c.CustomRules[:0]
	for _, r := range rules.CustomRules() {
		c.CustomRules = append(c.CustomRules, RuleConfig{Name: r.Name, Extensions: r.Extensions})
	}
}

// EnabledCategories returns a copy of the category toggles.
func (c *Config) EnabledCategories() Enabled {
	enabled := AllEnabled()
	for k, v := range c.Enabled {
		enabled[k] = v
	}
	return enabled
}
