// Bleradar continuously discovers nearby Bluetooth Low Energy peripherals.
//
// Each adapter repeatedly scans for a dwell period, merges what it heard into
// one record per device, names the vendor and services from reference
// tables, ranks the devices by signal strength and publishes the result as
// a snapshot to the terminal, a file, an MQTT broker or an HTTP/WebSocket
// endpoint.
//
// Usage:
//
//	bleradar [command] [flags]
//
// Running without a command starts scanning ("bleradar run").
// See 'bleradar --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/bleradar/internal/config"
	"github.com/muurk/bleradar/internal/logging"
	"github.com/muurk/bleradar/internal/version"
)

func main() {
	err := rootCmd.Execute()
	logging.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Global flags and the configuration they select
var (
	cfgPath  string
	logLevel string
	cfg      *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "bleradar",
	Short: "Bluetooth Low Energy device discovery",
	Long: `Continuously discover nearby Bluetooth Low Energy peripherals.

Every scan cycle produces a snapshot: one record per device with its name,
vendor, signal strength and advertised services, strongest signal first.
Snapshots can be printed, written to a file, retained on an MQTT broker or
served over HTTP and WebSocket.

If no command is specified, scanning starts with the configured settings.`,
	Version:           version.Version,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	RunE:              runRun,
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Configuration file (default is the per-user config path)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides "+logging.LogLevelEnvVar)

	addRunFlags(rootCmd)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(lookupCmd)
	rootCmd.AddCommand(peersCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the configuration file and sets up logging before any
// command runs.
func loadConfig(cmd *cobra.Command, args []string) error {
	if cfgPath == "" {
		path, err := config.GetConfigPath()
		if err != nil {
			return fmt.Errorf("failed to get config path: %w", err)
		}
		cfgPath = path
	}

	loaded, found, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	cfg = loaded

	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if err := logging.Initialize(cfg.LogLevel); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	logging.LogConfigLoaded(cfgPath, found)
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		info := version.Get()
		fmt.Printf("bleradar %s (commit: %s)\n", info.Version, info.Commit)
		if info.BuildTime != "" {
			fmt.Printf("built:    %s\n", info.BuildTime)
		}
		fmt.Printf("go:       %s %s\n", info.GoVersion, info.Platform)
	},
}
