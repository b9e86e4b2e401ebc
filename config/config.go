// Package config loads the harness configuration from environment
// variables, an optional YAML file, and defaults.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// MongoSettings are the document store connection parameters.
type MongoSettings struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
}

// HBaseSettings are the wide-column store connection parameters.
type HBaseSettings struct {
	Quorum       string `mapstructure:"quorum"`
	Table        string `mapstructure:"table"`
	ColumnFamily string `mapstructure:"column_family"`
}

// Config is the full configuration surface of the harness.
type Config struct {
	Mongo MongoSettings `mapstructure:"mongo"`
	HBase HBaseSettings `mapstructure:"hbase"`

	DataDir    string `mapstructure:"data_dir"`
	ResultsDir string `mapstructure:"results_dir"`
	Iterations int    `mapstructure:"iterations"`
	Warmup     int    `mapstructure:"warmup"`
	BatchSize  int    `mapstructure:"batch_size"`
}

// Load reads configuration with precedence: explicit config file, then
// STORBENCH_-prefixed environment variables, then defaults. A missing
// default config file is not an error.
func Load(cfgFile string) (*Config, error) {
	// .env files are a convenience for local runs; absence is fine.
	_ = godotenv.Load()

	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName("storbench")
	}

	v.SetEnvPrefix("STORBENCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("mongo.host", "localhost")
	v.SetDefault("mongo.port", 27017)
	v.SetDefault("mongo.database", "benchmark")
	v.SetDefault("mongo.collection", "data")
	v.SetDefault("hbase.quorum", "localhost")
	v.SetDefault("hbase.table", "benchmark")
	v.SetDefault("hbase.column_family", "cf")
	v.SetDefault("data_dir", "./data")
	v.SetDefault("results_dir", "./results")
	v.SetDefault("iterations", 100)
	v.SetDefault("warmup", 10)
	v.SetDefault("batch_size", 5000)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Iterations < 1 {
		return nil, fmt.Errorf("iterations must be at least 1, got %d", cfg.Iterations)
	}

	if cfg.Warmup < 0 {
		return nil, fmt.Errorf("warmup must not be negative, got %d", cfg.Warmup)
	}

	if cfg.BatchSize < 1 {
		return nil, fmt.Errorf("batch_size must be at least 1, got %d", cfg.BatchSize)
	}

	return &cfg, nil
}
