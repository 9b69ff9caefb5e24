// Command sr25519-tool generates, inspects, derives, signs and verifies sr25519
// keys the same way the bridge library does.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"sr25519-bridge/internal/config"
	"sr25519-bridge/internal/logger"
	"sr25519-bridge/internal/types"
)

const configKey = "config"

var configFlag = &cli.StringFlag{
	Name:    "config",
	Aliases: []string{"c"},
	Usage:   "path to a YAML configuration file (created with defaults if missing)",
	EnvVars: []string{"SR25519_BRIDGE_CONFIG"},
}

func main() {
	if err := newApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "sr25519-tool",
		Usage:     "sr25519 key utility",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags:     []cli.Flag{configFlag},
		Before:    setup,
		Commands: []*cli.Command{
			generateCommand,
			inspectCommand,
			deriveCommand,
			signCommand,
			verifyCommand,
		},
	}
}

// setup loads the configuration and initializes the logger before any command
// runs.
func setup(cCtx *cli.Context) error {
	cfg := types.DefaultConfig()
	// Utilities only log errors unless a config file says otherwise.
	cfg.Logging.Level = "error"
	cfg.Logging.Format = "text"

	if path := cCtx.String(configFlag.Name); path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	logCfg := logger.FromLoggingConfig(cfg.Logging)
	if logCfg.ConsoleOutput {
		logCfg.Output = cCtx.App.ErrWriter
	}
	if err := logger.Init(logCfg); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if cCtx.App.Metadata == nil {
		cCtx.App.Metadata = make(map[string]interface{})
	}
	cCtx.App.Metadata[configKey] = cfg
	return nil
}

func configFrom(cCtx *cli.Context) *types.Config {
	if cfg, ok := cCtx.App.Metadata[configKey].(*types.Config); ok {
		return cfg
	}
	return types.DefaultConfig()
}
