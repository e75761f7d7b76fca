package serverlog

import (
	"github.com/relex/client-logger/base"
	"github.com/relex/client-logger/output/uploader"
	"github.com/relex/client-logger/util/clock"
)

// LocalLogFunc writes a diagnostic to the local channel only, never back to the server
type LocalLogFunc func(level base.LogLevel, message string, details interface{})

// Options contains the runtime collaborators of a ServerLogger, all optional
type Options struct {
	Registry      *uploader.Registry // shared uploaders; a private registry is built from config if nil
	Store         base.RequestStore  // saved requests of a private registry; from config or in-memory if nil
	Clock         clock.Clock
	Online        func() bool
	MetricFactory *base.MetricFactory
	ClientID      string
	Local         LocalLogFunc
	OnFatal       func(status int) // called after delivery is halted by 401, 403 or 404
	OnError       func(err error)  // called for every failed batch
}
