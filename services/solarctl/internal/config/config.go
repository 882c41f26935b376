package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/02loveslollipop/solar-potential-dashboard/services/api/loader"
)

const (
	defaultOutputDir      = "data"
	defaultRequestTimeout = 60 * time.Second
)

// Config holds runtime configuration for solarctl.
type Config struct {
	SourcesFile       string        `mapstructure:"sources_file" yaml:"sources_file"`
	BeninURL          string        `mapstructure:"benin_url" yaml:"benin_url"`
	SierraLeoneURL    string        `mapstructure:"sierra_leone_url" yaml:"sierra_leone_url"`
	TogoURL           string        `mapstructure:"togo_url" yaml:"togo_url"`
	OutputDir         string        `mapstructure:"output_dir" yaml:"output_dir"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
	S3Endpoint        string        `mapstructure:"s3_endpoint" yaml:"s3_endpoint"`
	S3Region          string        `mapstructure:"s3_region" yaml:"s3_region"`
	S3AccessKeyID     string        `mapstructure:"s3_access_key_id" yaml:"s3_access_key_id"`
	S3SecretAccessKey string        `mapstructure:"s3_secret_access_key" yaml:"s3_secret_access_key"`
}

// Load reads configuration from defaults, an optional YAML file and SOLAR_*
// environment variables. Precedence: env > config file > defaults.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SOLAR")
	v.AutomaticEnv()

	// Every key needs a default so AutomaticEnv can see it during Unmarshal.
	v.SetDefault("sources_file", "")
	v.SetDefault("benin_url", loader.DefaultBeninURL)
	v.SetDefault("sierra_leone_url", loader.DefaultSierraLeoneURL)
	v.SetDefault("togo_url", loader.DefaultTogoURL)
	v.SetDefault("output_dir", defaultOutputDir)
	v.SetDefault("request_timeout", defaultRequestTimeout)
	v.SetDefault("s3_endpoint", "")
	v.SetDefault("s3_region", "")
	v.SetDefault("s3_access_key_id", "")
	v.SetDefault("s3_secret_access_key", "")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.RequestTimeout <= 0 {
		return nil, fmt.Errorf("invalid request_timeout: %s", c.RequestTimeout)
	}
	return &c, nil
}

// Sources resolves the datasets to load: the manifest when one is set,
// otherwise the three per-country locations.
func (c *Config) Sources() ([]loader.Source, error) {
	if c.SourcesFile != "" {
		return loader.ReadManifest(c.SourcesFile)
	}
	sources := loader.DefaultSources()
	sources[0].Location = c.BeninURL
	sources[1].Location = c.SierraLeoneURL
	sources[2].Location = c.TogoURL
	return sources, nil
}

// S3 returns the object storage settings for s3:// sources.
func (c *Config) S3() loader.S3Config {
	s3 := loader.S3Config{
		Endpoint:        c.S3Endpoint,
		Region:          c.S3Region,
		AccessKeyID:     c.S3AccessKeyID,
		SecretAccessKey: c.S3SecretAccessKey,
	}
	s3.ApplyDefaults()
	return s3
}
