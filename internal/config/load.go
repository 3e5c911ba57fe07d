package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by the loader, e.g.
// RXCLAIMS_STAGING_INCREMENTAL=true.
const EnvPrefix = "RXCLAIMS"

// NewViper returns a viper instance with defaults, env binding and the config
// file location applied. Callers may bind CLI flags onto it before Decode.
//
// When configFile is empty, config.{json,yaml} is searched in the working
// directory and ./config; a missing file is not an error. envFiles are loaded
// with godotenv before env binding, later files overriding earlier ones.
func NewViper(configFile string, envFiles ...string) *viper.Viper {
	loadEnv(envFiles...)

	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("config/")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, Defaults())
	return v
}

// Decode reads the config file (if any) and unmarshals v into a Pipeline.
func Decode(v *viper.Viper) (*Pipeline, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var p Pipeline
	if err := v.Unmarshal(&p); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	for _, src := range []*Source{&p.Sources.Claims, &p.Sources.Pharmacies, &p.Sources.Reverts} {
		if src.Options == nil {
			src.Options = Options{}
		}
	}
	return &p, nil
}

// Load is NewViper followed by Decode.
func Load(configFile string, envFiles ...string) (*Pipeline, error) {
	return Decode(NewViper(configFile, envFiles...))
}

// setDefaults registers every leaf of d so AutomaticEnv can resolve the
// matching RXCLAIMS_* variable even when no config file sets the key.
func setDefaults(v *viper.Viper, d Pipeline) {
	v.SetDefault("job", d.Job)

	for name, src := range map[string]Source{
		"claims":     d.Sources.Claims,
		"pharmacies": d.Sources.Pharmacies,
		"reverts":    d.Sources.Reverts,
	} {
		v.SetDefault("sources."+name+".path", src.Path)
		v.SetDefault("sources."+name+".format", src.Format)
	}

	v.SetDefault("staging.dir", d.Staging.Dir)
	v.SetDefault("staging.incremental", d.Staging.Incremental)
	v.SetDefault("staging.workers", d.Staging.Workers)

	v.SetDefault("transform.top_chains", d.Transform.TopChains)
	v.SetDefault("transform.top_quantity", d.Transform.TopQuantity)
	v.SetDefault("transform.round", d.Transform.Round)
	v.SetDefault("transform.precision", d.Transform.Precision)
	v.SetDefault("transform.dedup_reverts", d.Transform.DedupReverts)

	v.SetDefault("results.dir", d.Results.Dir)
	v.SetDefault("results.format", d.Results.Format)
	v.SetDefault("results.storage.kind", d.Results.Storage.Kind)
	v.SetDefault("results.storage.dsn", d.Results.Storage.DSN)
	v.SetDefault("results.storage.table_prefix", d.Results.Storage.TablePrefix)

	v.SetDefault("metrics.backend", d.Metrics.Backend)
	v.SetDefault("metrics.pushgateway_url", d.Metrics.PushgatewayURL)
	v.SetDefault("metrics.datadog_addr", d.Metrics.DatadogAddr)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.output", d.Log.Output)
	v.SetDefault("log.development", d.Log.Development)
}

func loadEnv(files ...string) {
	var existing []string
	for _, f := range files {
		if f == "" {
			continue
		}
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) > 0 {
		_ = godotenv.Overload(existing...)
	}
}
