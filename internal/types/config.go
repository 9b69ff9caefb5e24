package types

// Config represents the complete bridge configuration
type Config struct {
	Bridge  BridgeConfig  `yaml:"bridge"`
	Logging LoggingConfig `yaml:"logging"`
}

// BridgeConfig contains the key handling settings of the bridge
type BridgeConfig struct {
	// SigningContext is mixed into every signature transcript.
	SigningContext string `yaml:"signing_context"`
	// AllowMockRNG enables the deterministic signing entry point. Tests only.
	AllowMockRNG bool `yaml:"allow_mock_rng"`
	// SS58Prefix selects the network used when printing addresses.
	SS58Prefix uint16 `yaml:"ss58_prefix"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level         string `yaml:"level"`
	Format        string `yaml:"format"`
	ConsoleOutput bool   `yaml:"console_output"`
	ConsoleColor  bool   `yaml:"console_color"`
	FileOutput    bool   `yaml:"file_output"`
	FileName      string `yaml:"file_name"`
	FileMaxSize   string `yaml:"file_max_size"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Bridge: BridgeConfig{
			SigningContext: "substrate",
			AllowMockRNG:   false,
			SS58Prefix:     42,
		},
		Logging: LoggingConfig{
			Level:         "info",
			Format:        "json",
			ConsoleOutput: true,
		},
	}
}
