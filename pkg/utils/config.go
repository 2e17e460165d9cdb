package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	cfgKeyMongoURI     = "mongo_uri"
	cfgKeyDBName       = "db_name"
	cfgKeyHTTPAddr     = "http_addr"
	cfgKeyReportPath   = "report_path"
	cfgKeyQueryTimeout = "query_timeout"
	cfgKeyLogLevel     = "log_level"
)

type Config struct {
	MongoURI     string
	DBName       string
	HTTPAddr     string
	ReportPath   string
	QueryTimeout time.Duration
	LogLevel     string
}

// LoadConfig reads animehub.yaml (or the file at path) and applies
// ANIMEHUB_* environment overrides. A missing config file is not an error.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	v.SetDefault(cfgKeyMongoURI, "mongodb://localhost:27017/")
	v.SetDefault(cfgKeyDBName, "animeDB")
	v.SetDefault(cfgKeyHTTPAddr, ":8080")
	v.SetDefault(cfgKeyReportPath, "queries_performance.csv")
	v.SetDefault(cfgKeyQueryTimeout, 30*time.Second)
	v.SetDefault(cfgKeyLogLevel, "info")

	v.SetEnvPrefix("ANIMEHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("animehub")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := Config{
		MongoURI:     v.GetString(cfgKeyMongoURI),
		DBName:       v.GetString(cfgKeyDBName),
		HTTPAddr:     v.GetString(cfgKeyHTTPAddr),
		ReportPath:   v.GetString(cfgKeyReportPath),
		QueryTimeout: v.GetDuration(cfgKeyQueryTimeout),
		LogLevel:     v.GetString(cfgKeyLogLevel),
	}
	if cfg.QueryTimeout <= 0 {
		// bad or zero values fall back to the default
		cfg.QueryTimeout = 30 * time.Second
	}
	return cfg, nil
}
