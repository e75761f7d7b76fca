package clientlog

import (
	"github.com/relex/client-logger/base"
	"github.com/relex/client-logger/output/uploader"
	"github.com/relex/client-logger/util/clock"
)

// MessageOptions controls where a single log call goes
type MessageOptions struct {
	SkipServer           bool // never send to server
	SkipSecondaryLogger  bool // never print locally
	SkipDefaultFormatter bool // no "[appName] " prefix
}

// MessageOption modifies MessageOptions of one log call
type MessageOption func(opts *MessageOptions)

// SkipServer keeps the message local
func SkipServer() MessageOption {
	return func(opts *MessageOptions) { opts.SkipServer = true }
}

// SkipSecondaryLogger sends the message to server only
func SkipSecondaryLogger() MessageOption {
	return func(opts *MessageOptions) { opts.SkipSecondaryLogger = true }
}

// SkipDefaultFormatter leaves the message without the app name prefix
func SkipDefaultFormatter() MessageOption {
	return func(opts *MessageOptions) { opts.SkipDefaultFormatter = true }
}

// Options contains the runtime collaborators of a Logger, all optional
type Options struct {
	Secondary     SecondaryLogger // local output; wraps the parent logger if nil
	Formatters    []Formatter     // run in order before the default formatter
	Registry      *uploader.Registry
	Store         base.RequestStore
	Clock         clock.Clock
	Online        func() bool
	MetricFactory *base.MetricFactory
}
