package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/handiism/quilt-installer/internal/config"
	"github.com/handiism/quilt-installer/internal/logging"
)

const envPrefix = "QUILT_"

var (
	configPath string
	logLevel   string
	logFile    string
	verbose    bool

	settings *config.Settings

	rootCmd = &cobra.Command{
		Use:   "quilt-installer",
		Short: "Install Quilt Loader for Minecraft clients and servers",
		Long: "quilt-installer resolves a Minecraft version and a Quilt Loader version, then installs\n" +
			"a launcher profile into a game directory or a standalone server into a directory.\n\n" +
			"For interactive mode, use: quilt-installer-tui",
		SilenceUsage:      true,
		PersistentPreRunE: loadSettings,
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath(), "settings file (YAML or JSON)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: panic, fatal, error, warn, info, debug or trace (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "log path, or console for stderr (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "show per-file progress")

	rootCmd.AddCommand(clientCmd, serverCmd, listCmd)
}

// loadSettings reads the settings file, then applies flags on top.
func loadSettings(cmd *cobra.Command, _ []string) error {
	SetFlagsFromEnvVars(cmd.Root())
	SetFlagsFromEnvVars(cmd)

	var err error
	settings, err = config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config %s: %w", configPath, err)
	}

	if logLevel != "" {
		settings.LogLevel = logLevel
	}
	if logFile != "" {
		settings.LogFile = logFile
	}
	if err := logging.InitLog(settings.LogLevel, settings.LogFile); err != nil {
		return err
	}

	log.Debugf("settings loaded from %s", configPath)
	return nil
}

// SetFlagsFromEnvVars reads and updates flag values from environment
// variables with prefix QUILT_. Flags set on the command line win.
func SetFlagsFromEnvVars(cmd *cobra.Command) {
	apply := func(flags *pflag.FlagSet) {
		flags.VisitAll(func(f *pflag.Flag) {
			if f.Changed {
				return
			}
			envVar := FlagNameToEnvVar(f.Name, envPrefix)
			if value, present := os.LookupEnv(envVar); present {
				if err := flags.Set(f.Name, value); err != nil {
					log.Infof("unable to configure flag %s using variable %s, err: %v", f.Name, envVar, err)
				}
			}
		})
	}
	apply(cmd.PersistentFlags())
	apply(cmd.Flags())
}

// FlagNameToEnvVar converts a flag name to an environment variable name,
// e.g. install-dir with prefix QUILT_ becomes QUILT_INSTALL_DIR.
func FlagNameToEnvVar(cmdFlag string, prefix string) string {
	parsed := strings.ReplaceAll(cmdFlag, "-", "_")
	upper := strings.ToUpper(parsed)
	return prefix + upper
}

// SetupCloseHandler cancels ctx on SIGINT or SIGTERM.
func SetupCloseHandler(ctx context.Context, cancel context.CancelFunc) {
	termCh := make(chan os.Signal, 1)
	signal.Notify(termCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-ctx.Done():
		case <-termCh:
			fmt.Fprintln(os.Stderr, "\nInterrupted, cancelling...")
			cancel()
		}
	}()
}
