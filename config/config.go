package config

// Config represents the complete SCQL configuration
type Config struct {
	BaseDir string        `yaml:"-"` // Directory containing config file, for resolving relative paths
	Catalog CatalogConfig `yaml:"catalog"`
	REPL    REPLConfig    `yaml:"repl"`
	Logging LoggingConfig `yaml:"logging"`
}

// CatalogConfig says where data sources come from besides the built-ins
type CatalogConfig struct {
	Builtins bool     `yaml:"builtins"` // Register mnist_images, mnist_labels, iris_data
	Files    []string `yaml:"files"`    // YAML catalog files
	SQLite   string   `yaml:"sqlite"`   // SQLite catalog database
	Database string   `yaml:"database"` // postgres://, mysql:// or sqlite: catalog, read-only
	Watch    bool     `yaml:"watch"`    // Reload YAML catalogs when they change (REPL only)
}

// REPLConfig holds interactive shell settings
type REPLConfig struct {
	History string `yaml:"history"` // History file, "" disables history
	Prompt  string `yaml:"prompt"`
	Width   int    `yaml:"width"` // Wrap width for help text
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
	Output string `yaml:"output"` // stderr, stdout, or a file path
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Catalog: CatalogConfig{
			Builtins: true,
		},
		REPL: REPLConfig{
			History: "~/.scql_history",
			Prompt:  "scql> ",
			Width:   80,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}
