package run

import (
	"fmt"

	"github.com/relex/client-logger/base"
	"github.com/relex/client-logger/base/bconfig"
	"github.com/relex/client-logger/storage"
	"github.com/relex/client-logger/util"
)

// Config defines the root of client-logger CLI config file
type Config struct {
	Logger    bconfig.LoggerConfig `yaml:"logger"`
	LineLevel string               `yaml:"lineLevel"` // level of logs shipped from input lines, default "info"
}

func init() {
	storage.Register()
}

// LoadConfigFile loads config from the path and verifies it
func LoadConfigFile(filepath string) (*Config, error) {
	cref := &Config{}
	if err := util.UnmarshalYamlFile(filepath, cref); err != nil {
		return nil, err
	}
	if err := cref.Logger.VerifyConfig(); err != nil {
		return nil, fmt.Errorf("logger%w", err)
	}
	if _, err := cref.ParseLineLevel(); err != nil {
		return nil, fmt.Errorf("lineLevel: %w", err)
	}
	return cref, nil
}

// ParseLineLevel returns the level of shipped lines
func (cfg *Config) ParseLineLevel() (base.LogLevel, error) {
	if cfg.LineLevel == "" {
		return base.LevelInfo, nil
	}
	return base.ParseLogLevel(cfg.LineLevel)
}
