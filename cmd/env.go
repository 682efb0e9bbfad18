package cmd

import (
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"
)

// envPrefix namespaces every environment override, e.g. TIERSIM_PROFILE.
const envPrefix = "TIERSIM"

// EnvConfig holds run settings read from the environment. An explicitly set
// command-line flag always wins over its environment variable.
type EnvConfig struct {
	LogLevel         string  `envconfig:"LOG_LEVEL"`
	Profile          string  `envconfig:"PROFILE"`
	Config           string  `envconfig:"CONFIG"`
	SamplingInterval float64 `envconfig:"SAMPLING_INTERVAL"`
	CostRate         float64 `envconfig:"COST_RATE"`
	MetricsFile      string  `envconfig:"METRICS_FILE"`
}

func loadEnv() (*EnvConfig, error) {
	cfg := new(EnvConfig)
	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv fills flags the user did not set from env. Numeric overrides are marked
// as changed so that applyOverrides forwards them to the profile.
func applyEnv(cmd *cobra.Command, env *EnvConfig) {
	flags := cmd.Flags()
	setString := func(name, value string) {
		if value != "" && !flags.Changed(name) {
			_ = flags.Set(name, value)
		}
	}
	setString("log", env.LogLevel)
	setString("profile", env.Profile)
	setString("config", env.Config)
	setString("metrics-file", env.MetricsFile)

	if env.SamplingInterval > 0 && !flags.Changed("sampling-interval") {
		_ = flags.Set("sampling-interval", formatFloat(env.SamplingInterval))
	}
	if env.CostRate > 0 && !flags.Changed("cost-rate") {
		_ = flags.Set("cost-rate", formatFloat(env.CostRate))
	}
}
