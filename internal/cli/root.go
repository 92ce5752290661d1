// internal/cli/root.go
package voi

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mwiater/voi/internal/appconfig"
	"github.com/mwiater/voi/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile       string
	currentConfig *appconfig.Config
)

// boolKeys and valueKeys are the persistent settings shared by flags, the
// config file and viper.
var (
	boolKeys  = []string{"debug", "jsonMode", "forceSimulation"}
	valueKeys = []string{"samples", "seed", "gridPoints", "attemptMultiplier", "rejectionAdvisory", "logFile"}
)

var rootCmd = &cobra.Command{
	Use:           "voi",
	Short:         "Value-of-information calculator for A/B test decisions",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// 1) Load config (file or defaults)
		configPath, err := ensureConfigLoaded()
		if err != nil {
			return err
		}

		// 2) If user did NOT set a flag, copy the config value into the flag so
		//    both pflags and viper reflect the same, final value.
		for _, name := range boolKeys {
			if !cmd.Flags().Changed(name) {
				_ = cmd.Flags().Set(name, strconv.FormatBool(viper.GetBool(name)))
			}
		}

		// 3) Materialize the merged configuration (flags > config > defaults).
		cfg := appconfig.Default()
		if err := viper.Unmarshal(&cfg); err != nil {
			return fmt.Errorf("unmarshal config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		cfg.ConfigPath = configPath
		currentConfig = &cfg

		if err := logging.Init(cfg.LogFilePath()); err != nil {
			return err
		}
		if cfg.ConfigPath != "" {
			logging.LogEvent("command=%s config=%s", cmd.CommandPath(), cfg.ConfigPath)
		} else {
			logging.LogEvent("command=%s config=defaults", cmd.CommandPath())
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return logging.Close()
	},
}

// Execute runs the root command; an interrupt cancels in-flight work.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.AddGroup(
		&cobra.Group{ID: calculationsGroup, Title: "Calculations:"},
		&cobra.Group{ID: toolsGroup, Title: "Tools:"},
	)

	defaults := appconfig.Default()
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", appconfig.DefaultConfigPath, "config file (e.g., config/config.json)")

	flags.Bool("debug", false, "dump parsed scenarios and enable debug logging")
	flags.Bool("jsonMode", false, "print results as JSON")
	flags.Bool("forceSimulation", false, "use Monte Carlo EVSI even for normal priors")
	flags.Int("samples", defaults.Samples, "accepted Monte Carlo samples per simulation")
	flags.Uint64("seed", 0, "random seed (0 derives one from the clock)")
	flags.Int("gridPoints", defaults.GridPoints, "grid resolution of the non-normal posterior mean")
	flags.Int("attemptMultiplier", defaults.AttemptMultiplier, "attempt cap as a multiple of the requested samples")
	flags.Float64("rejectionAdvisory", defaults.RejectionAdvisory, "rejection rate above which results carry an advisory")
	flags.String("logFile", "", "log file path (default voi.log)")

	// Bind flags to Viper keys (flags override config)
	for _, key := range append(append([]string(nil), boolKeys...), valueKeys...) {
		_ = viper.BindPFlag(key, flags.Lookup(key))
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

// ensureConfigLoaded reads the config and sets safe defaults. It returns the
// path of the file read, or "" when running on defaults.
func ensureConfigLoaded() (string, error) {
	defaults := appconfig.Default()
	viper.SetDefault("debug", false)
	viper.SetDefault("jsonMode", false)
	viper.SetDefault("forceSimulation", false)
	viper.SetDefault("samples", defaults.Samples)
	viper.SetDefault("seed", 0)
	viper.SetDefault("gridPoints", defaults.GridPoints)
	viper.SetDefault("attemptMultiplier", defaults.AttemptMultiplier)
	viper.SetDefault("rejectionAdvisory", defaults.RejectionAdvisory)

	// A JSON config is decoded and validated on its own first so a bad file
	// is reported against its path rather than after the flag merge.
	if strings.EqualFold(filepath.Ext(cfgFile), ".json") {
		path := cfgFile
		if path == appconfig.DefaultConfigPath {
			path = ""
		}
		if _, err := appconfig.Load(path); err != nil {
			return "", err
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return "", nil
		}
		if os.IsNotExist(err) && cfgFile == appconfig.DefaultConfigPath {
			// The default path is optional.
			return "", nil
		}
		return "", fmt.Errorf("failed to load config: %w", err)
	}
	return viper.ConfigFileUsed(), nil
}

// getConfig returns the merged configuration, falling back to defaults when
// the pre-run hook has not executed.
func getConfig() appconfig.Config {
	if currentConfig == nil {
		return appconfig.Default()
	}
	return *currentConfig
}

// Helper accessors (reflect merged Viper state)
func DebugEnabled() bool    { return viper.GetBool("debug") }
func JSONModeEnabled() bool { return viper.GetBool("jsonMode") }
