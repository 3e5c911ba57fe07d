package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"rxclaims/internal/config"
)

type rootOptions struct {
	configFile string
	envFile    string
	verbose    bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "rxclaims",
		Short: "Pharmacy claims analytics",
		Long: `rxclaims reads pharmacy claims, the pharmacy directory and claim reverts,
stages pharmacy claims incrementally and writes per-drug metrics, the cheapest
chains per drug and the most prescribed quantities.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (JSON or YAML); default ./config.{json,yaml}")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before RXCLAIMS_* variables")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logs")

	cmd.AddCommand(newRunCommand(opts))
	cmd.AddCommand(newValidateCommand(opts))
	return cmd
}

// flagKeys maps CLI flags to config keys. Flags win over env and file.
var flagKeys = map[string]string{
	"claims":          "sources.claims.path",
	"pharmacies":      "sources.pharmacies.path",
	"reverts":         "sources.reverts.path",
	"incremental":     "staging.incremental",
	"staging-dir":     "staging.dir",
	"results-dir":     "results.dir",
	"results-format":  "results.format",
	"metrics-backend": "metrics.backend",
	"verbose":         "verbose",
}

// loadConfig builds the pipeline config from defaults, the config file, the
// environment and the flags of cmd.
func loadConfig(cmd *cobra.Command, opts *rootOptions) (*config.Pipeline, *viper.Viper, error) {
	v := config.NewViper(opts.configFile, opts.envFile)
	for name, key := range flagKeys {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return nil, nil, fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	p, err := config.Decode(v)
	if err != nil {
		return nil, nil, err
	}
	if v.GetBool("verbose") {
		p.Log.Level = "debug"
	}
	return p, v, nil
}

// printIssues writes one line per issue and reports whether any is an error.
func printIssues(w io.Writer, issues []config.Issue) bool {
	for _, iss := range issues {
		fmt.Fprintf(w, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	return config.HasErrors(issues)
}
