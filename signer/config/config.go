package config

import (
	"fmt"
	"time"
)

const (
	KeySourceFile    = "file"
	KeySourceLevelDB = "leveldb"
)

type HttpApiConfig struct {
	ListenAddr   string        `mapstructure:"listen_addr"`
	Debug        bool          `mapstructure:"debug"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type Config struct {
	HttpApiConfig *HttpApiConfig `mapstructure:"http_api_config"`

	SharePath     string `mapstructure:"share"`
	KeySource     string `mapstructure:"key_source"`
	KeyStoreDBDSN string `mapstructure:"key_store_dbdsn"`
	KeyName       string `mapstructure:"key_name"`
	LogLevel      string `mapstructure:"log_level"`
}

func Default() *Config {
	return &Config{
		HttpApiConfig: &HttpApiConfig{
			ListenAddr:   "127.0.0.1:3000",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		KeySource:     KeySourceFile,
		KeyStoreDBDSN: "./frost_key_store",
	}
}

func (c *Config) Validate() error {
	if c.HttpApiConfig == nil || c.HttpApiConfig.ListenAddr == "" {
		return fmt.Errorf("listen_addr is required")
	}
	switch c.KeySource {
	case KeySourceFile:
		if c.SharePath == "" {
			return fmt.Errorf("share is required for key_source=%s", KeySourceFile)
		}
	case KeySourceLevelDB:
		if c.KeyName == "" || c.KeyStoreDBDSN == "" {
			return fmt.Errorf("key_name and key_store_dbdsn are required for key_source=%s", KeySourceLevelDB)
		}
	default:
		return fmt.Errorf("unknown key_source %q", c.KeySource)
	}
	return nil
}
