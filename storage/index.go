// Package storage registers the list of all RequestStore implementations
package storage

import (
	"github.com/relex/client-logger/base/bconfig"
	"github.com/relex/client-logger/storage/sfile"
	"github.com/relex/client-logger/storage/smemory"
	"github.com/relex/client-logger/storage/sredis"
)

func init() {
	bconfig.RegisterConfigConstructors(bconfig.RequestStoreConfigCreatorTable{
		"file":   func() bconfig.RequestStoreConfig { return &sfile.Config{} },
		"memory": func() bconfig.RequestStoreConfig { return &smemory.Config{} },
		"redis":  func() bconfig.RequestStoreConfig { return &sredis.Config{} },
	})
}

// Register registers all store config types
func Register() {
	// trigger init()
}
