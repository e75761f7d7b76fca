package bconfig

import (
	"fmt"
	"time"

	"github.com/c2h5oh/datasize"
	"github.com/gobwas/glob"
	"github.com/relex/client-logger/base"
	"github.com/relex/client-logger/defs"
)

// LoggerConfig is the configuration of one logger instance, including its server delivery pipeline
type LoggerConfig struct {
	AccessToken string         `yaml:"accessToken"` // bearer token, may be set later
	URL         string         `yaml:"url"`         // full URL to POST logs to
	AppName     string         `yaml:"appName"`     // also the topic of traces
	AppVersion  string         `yaml:"appVersion"`
	Origin      base.OriginApp `yaml:"origin"` // parent app this logger logs on behalf of

	InitializeServerLogging  *bool `yaml:"initializeServerLogging"` // default true
	UseUniqueLogUploader     bool  `yaml:"useUniqueLogUploader"`
	StartServerLoggingPaused bool  `yaml:"startServerLoggingPaused"`

	LogLevel           string            `yaml:"logLevel"`           // min level sent to server, default "info"
	UploadDebounceTime time.Duration     `yaml:"uploadDebounceTime"` // default 4s
	MaxLogSize         datasize.ByteSize `yaml:"maxLogSize"`         // max size of one request's traces
	DebugMode          bool              `yaml:"debugMode"`
	Stringify          bool              `yaml:"stringify"` // print details as JSON in secondary logger

	Compress      bool              `yaml:"compress"`
	CustomHeaders map[string]string `yaml:"customHeaders"`
	ServerExclude []string          `yaml:"serverExclude"` // glob patterns of messages never sent to server

	Storage RequestStoreConfigHolder `yaml:"storage"`
}

// ServerLoggingEnabled returns whether a server delivery pipeline should be created
func (cfg *LoggerConfig) ServerLoggingEnabled() bool {
	return cfg.InitializeServerLogging == nil || *cfg.InitializeServerLogging
}

// DebounceOrDefault returns the upload debounce interval
func (cfg *LoggerConfig) DebounceOrDefault() time.Duration {
	if cfg.UploadDebounceTime <= 0 {
		return defs.DefaultUploadDebounce
	}
	return cfg.UploadDebounceTime
}

// MaxLogSizeOrDefault returns the max size in bytes of traces in one request
func (cfg *LoggerConfig) MaxLogSizeOrDefault() int {
	if cfg.MaxLogSize == 0 {
		return defs.MaxLogSize
	}
	return int(cfg.MaxLogSize.Bytes())
}

// AppInfo returns the identity of the application as sent in requests
func (cfg *LoggerConfig) AppInfo() base.AppInfo {
	return base.AppInfo{
		AppID:      cfg.AppName,
		AppVersion: cfg.AppVersion,
	}
}

// CompileServerExclude compiles the server exclusion patterns
func (cfg *LoggerConfig) CompileServerExclude() ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(cfg.ServerExclude))
	for i, pattern := range cfg.ServerExclude {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, NewConfigError(fmt.Sprintf("serverExclude[%d]", i), "invalid pattern '%s': %s", pattern, err.Error())
		}
		globs = append(globs, g)
	}
	return globs, nil
}

// VerifyServerConfig checks the properties required to deliver logs to server
func (cfg *LoggerConfig) VerifyServerConfig() error {
	if cfg.URL == "" {
		return NewConfigError("url", "lacking necessary config option to set up server logging")
	}
	if cfg.AppVersion == "" {
		return NewConfigError("appVersion", "lacking necessary config option to set up server logging")
	}
	return nil
}

// VerifyConfig checks the whole configuration
//
// Server-related properties are only required if server logging is enabled. Invalid log levels are not errors here,
// they fall back to "info" in the logger.
func (cfg *LoggerConfig) VerifyConfig() error {
	if cfg.ServerLoggingEnabled() {
		if err := cfg.VerifyServerConfig(); err != nil {
			return err
		}
	}
	if cfg.UploadDebounceTime < 0 {
		return NewConfigError("uploadDebounceTime", "cannot be negative: %s", cfg.UploadDebounceTime)
	}
	if cfg.MaxLogSize != 0 && cfg.MaxLogSize < datasize.KB {
		return NewConfigError("maxLogSize", "too small: %s", cfg.MaxLogSize.HR())
	}
	if _, err := cfg.CompileServerExclude(); err != nil {
		return err
	}
	if cfg.Storage.Value != nil {
		if err := cfg.Storage.Value.VerifyConfig(); err != nil {
			return fmt.Errorf(".storage: %w", err)
		}
	}
	return nil
}
