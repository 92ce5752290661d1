package appconfig

import (
	"fmt"
	"io"
)

// ShowConfig prints the current configuration summary.
func ShowConfig(out io.Writer, file string, cfg Config) {
	if file == "" {
		fmt.Fprintln(out, "No config file loaded (using defaults).")
	} else {
		fmt.Fprintf(out, "Config file: %s\n\n", file)
	}

	seed := "derived from clock"
	if cfg.Seed != 0 {
		seed = fmt.Sprint(cfg.Seed)
	}
	fmt.Fprintln(out, "Current configuration:")
	fmt.Fprintf(out, "  Samples:            %d\n", cfg.Samples)
	fmt.Fprintf(out, "  Seed:               %s\n", seed)
	fmt.Fprintf(out, "  Grid Points:        %d\n", cfg.GridPoints)
	fmt.Fprintf(out, "  Attempt Multiplier: %d\n", cfg.AttemptMultiplier)
	fmt.Fprintf(out, "  Rejection Advisory: %.0f%%\n", cfg.RejectionAdvisory*100)
	fmt.Fprintf(out, "  Force Simulation:   %v\n", cfg.ForceSimulation)
	fmt.Fprintf(out, "  JSON Mode:          %v\n", cfg.JSONMode)
	fmt.Fprintf(out, "  Debug:              %v\n", cfg.Debug)
	fmt.Fprintf(out, "  Log File:           %s\n", cfg.LogFilePath())
}
