package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tiersim/tiersim/sim"
	"github.com/tiersim/tiersim/sim/datacenter"
	"github.com/tiersim/tiersim/sim/trace"
)

var (
	// CLI flags for the run command
	profileName       string  // Built-in or --config profile to run
	configPath        string  // Optional profiles YAML replacing the built-in set
	recordLimit       int     // Number of records to use when set
	simulationHorizon float64 // Last simulated second processed by the engine
	stepSize          float64 // Seconds between engine clock ticks
	samplingInterval  float64 // Utilization sampling cadence when set
	costRate          float64 // Cost per second of execution when set
	metricsFile       string  // Prometheus text dump destination
	traceLevel        string  // Assignment trace verbosity (none, decisions)
	logLevel          string  // Log verbosity level
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "tiersim",
	Short: "Tiered VM workload allocation simulator",
}

// runCmd executes one profile using parameters from CLI flags and environment
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation profile",
	Run: func(cmd *cobra.Command, args []string) {
		env, err := loadEnv()
		if err != nil {
			logrus.Fatalf("Invalid environment: %v", err)
		}
		applyEnv(cmd, env)

		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		set, err := loadProfileSet(configPath)
		if err != nil {
			logrus.Fatalf("Failed to load profiles: %v", err)
		}
		profile, err := set.Get(profileName)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		applyOverrides(cmd, profile)

		if !trace.IsValidTraceLevel(traceLevel) {
			logrus.Fatalf("Unknown trace level %q; valid: none, decisions", traceLevel)
		}
		opts := sim.RunOptions{TraceLevel: trace.TraceLevel(traceLevel)}
		if metricsFile != "" {
			opts.Exporter = sim.NewExporter(nil)
		}

		engine := datacenter.Factory(datacenter.Config{Step: stepSize, Horizon: simulationHorizon})
		report, err := sim.Run(profile, engine, opts)
		if err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}

		if err := writeReport(os.Stdout, report); err != nil {
			logrus.Fatalf("Failed to write report: %v", err)
		}
		if opts.Exporter != nil {
			if err := writeMetricsFile(metricsFile, opts.Exporter); err != nil {
				logrus.Fatalf("Failed to write metrics: %v", err)
			}
			logrus.Infof("Metrics written to %s", metricsFile)
		}

		logrus.Info("Simulation complete.")
	},
}

// profilesCmd lists the available profiles
var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List available simulation profiles",
	Run: func(cmd *cobra.Command, args []string) {
		set, err := loadProfileSet(configPath)
		if err != nil {
			logrus.Fatalf("Failed to load profiles: %v", err)
		}
		if err := writeProfiles(cmd.OutOrStdout(), set); err != nil {
			logrus.Fatalf("Failed to list profiles: %v", err)
		}
	},
}

// applyOverrides copies explicitly set flags onto the profile.
// Flags left at their defaults never overwrite profile values.
func applyOverrides(cmd *cobra.Command, p *sim.Profile) {
	if cmd.Flags().Changed("records") {
		p.RecordLimit = recordLimit
	}
	if cmd.Flags().Changed("sampling-interval") {
		p.SamplingInterval = samplingInterval
	}
	if cmd.Flags().Changed("cost-rate") {
		p.CostRate = costRate
	}
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Profiles YAML file (default: built-in profiles)")

	runCmd.Flags().StringVar(&profileName, "profile", "", "Profile to run (default: the set's default profile)")
	runCmd.Flags().IntVar(&recordLimit, "records", 0, "Number of records to simulate (0 = all)")
	runCmd.Flags().Float64Var(&simulationHorizon, "horizon", datacenter.DefaultHorizon, "Simulation horizon (in seconds)")
	runCmd.Flags().Float64Var(&stepSize, "step", datacenter.DefaultStep, "Engine clock step (in seconds)")
	runCmd.Flags().Float64Var(&samplingInterval, "sampling-interval", 0, "Utilization sampling interval (in seconds)")
	runCmd.Flags().Float64Var(&costRate, "cost-rate", 0, "Cost per second of execution")
	runCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write Prometheus text metrics to this file")
	runCmd.Flags().StringVar(&traceLevel, "trace-level", string(trace.TraceLevelNone), "Assignment trace level (none, decisions); decisions adds an assignment summary to the report")
	runCmd.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(profilesCmd)
}
