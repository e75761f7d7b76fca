package uploader

import (
	"github.com/puzpuzpuz/xsync"
	"github.com/relex/client-logger/defs"
	"github.com/relex/gotils/logger"
	"golang.org/x/exp/slices"
)

// Registry shares one Uploader per destination URL among all loggers of an application
//
// It should be created once by the application and passed to every logger which may share uploaders
type Registry struct {
	logger      logger.Logger
	newUploader func(url string) *Uploader
	uploaders   *xsync.MapOf[*Uploader]
}

// NewRegistry creates a Registry which builds missing uploaders with the given constructor
func NewRegistry(parentLogger logger.Logger, newUploader func(url string) *Uploader) *Registry {
	return &Registry{
		logger:      parentLogger.WithField(defs.LabelComponent, "UploaderRegistry"),
		newUploader: newUploader,
		uploaders:   xsync.NewMapOf[*Uploader](),
	}
}

// GetOrCreate returns the shared Uploader of the URL, creating it on first use
func (registry *Registry) GetOrCreate(url string) *Uploader {
	if existing, ok := registry.uploaders.Load(url); ok {
		return existing
	}
	created := registry.newUploader(url)
	actual, loaded := registry.uploaders.LoadOrStore(url, created)
	if !loaded {
		registry.logger.Infof("created uploader for %s", url)
	}
	return actual
}

// NewPrivate creates an Uploader of the URL which is not shared nor remembered
func (registry *Registry) NewPrivate(url string) *Uploader {
	registry.logger.Infof("created private uploader for %s", url)
	return registry.newUploader(url)
}

// URLs returns the sorted list of URLs with shared uploaders
func (registry *Registry) URLs() []string {
	var urls []string
	registry.uploaders.Range(func(url string, _ *Uploader) bool {
		urls = append(urls, url)
		return true
	})
	slices.Sort(urls)
	return urls
}

// SendAllNow sends all queued requests of all shared uploaders instantly, see Uploader.SendAllNow
func (registry *Registry) SendAllNow() []<-chan error {
	var results []<-chan error
	for _, url := range registry.URLs() {
		if u, ok := registry.uploaders.Load(url); ok {
			results = append(results, u.SendAllNow()...)
		}
	}
	return results
}
