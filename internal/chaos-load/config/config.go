// Package config loads a LoadTestConfig from an optional YAML profile, CLI
// flags and SRE_-prefixed environment variables through viper, the same way
// pkg/cli.initConfig layers the root command's own config. See Load for the
// precedence between the three sources.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/neogan/sre-toolkit/internal/chaos-load/model"
)

// Load reads an optional YAML profile at path (skipped when empty), binds
// cmd's flags and SRE_-prefixed environment variables, and returns the
// resulting LoadTestConfig. Precedence is viper's: a flag set on the command
// line wins over an environment variable, which wins over the profile, which
// wins over a flag's default value. Headers, Body and FormFields are not
// mapstructure-mapped (see model.LoadTestConfig) and must be set by the
// caller after Load returns.
func Load(path string, cmd *cobra.Command) (*model.LoadTestConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("SRE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading load-test profile %s: %w", path, err)
		}
	}

	if cmd != nil {
		// Flags are named with dashes (CLI convention); LoadTestConfig's
		// mapstructure tags use underscores. Bind each flag under its
		// underscored key so viper.Unmarshal actually sees it.
		var bindErr error
		cmd.Flags().VisitAll(func(f *pflag.Flag) {
			if bindErr != nil {
				return
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			bindErr = v.BindPFlag(key, f)
		})
		if bindErr != nil {
			return nil, fmt.Errorf("binding flags: %w", bindErr)
		}
	}

	var cfg model.LoadTestConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding load-test config: %w", err)
	}

	return &cfg, nil
}
