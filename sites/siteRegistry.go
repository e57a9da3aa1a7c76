package sites

import (
	"fmt"
	"sort"
	"sync"

	"comicscrape/downloader"
)

// Factory builds a site plugin for one run.
type Factory func(opts downloader.SiteOptions) downloader.SitePlugin

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// init() is called automatically when the package is imported
// This registers every supported site with the registry
func init() {
	RegisterSite("diabolik", func(opts downloader.SiteOptions) downloader.SitePlugin {
		return NewDiabolikSite(opts)
	})

	// Add new sites here in the future:
	// RegisterSite("newsite", NewNewsiteSite)
}

// RegisterSite makes a site available under name.
func RegisterSite(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// New returns the plugin registered under name.
func New(name string, opts downloader.SiteOptions) (downloader.SitePlugin, error) {
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown site: %s (known: %v)", name, Names())
	}
	return factory(opts), nil
}

// Names lists the registered sites in alphabetical order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
