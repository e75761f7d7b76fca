package bconfig

import (
	"github.com/relex/client-logger/base"
	"github.com/relex/gotils/logger"
)

// RequestStoreConfig provides an interface for the configuration of RequestStore(s)
//
// All the implementations should support YAML unmarshalling
type RequestStoreConfig interface {
	BaseConfig

	NewStore(parentLogger logger.Logger) (base.RequestStore, error)

	VerifyConfig() error
}

// RequestStoreConfigHolder holds RequestStoreConfig
type RequestStoreConfigHolder = ConfigHolder[RequestStoreConfig]

// RequestStoreConfigCreatorTable defines the table of constructors for RequestStoreConfig implementations
type RequestStoreConfigCreatorTable = ConfigCreatorTable[RequestStoreConfig]
