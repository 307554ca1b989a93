// Package provider declares the static metadata each Lasso provider ships for
// plugin discovery. A provider descriptor enumerates the package name, its
// version history, the hooks, operators, and transfers it contributes, and
// the connection types it serves. Descriptors are registered from the hook
// packages' init functions and consumed by the host's plugin loader through
// the catalog.
package provider

import (
	"sort"
	"sync"

	json "github.com/goccy/go-json"

	"github.com/lassohq/lasso/pkg/lassoerrors"
)

// ConnectionType binds a connection type string to the hook that serves it.
type ConnectionType struct {
	Hook string `json:"hook"`
	Type string `json:"connection-type"`
}

// Info is the static descriptor a provider package declares.
type Info struct {
	PackageName     string           `json:"package-name"`
	Name            string           `json:"name"`
	Description     string           `json:"description"`
	Versions        []string         `json:"versions"`
	Hooks           []string         `json:"hooks,omitempty"`
	Operators       []string         `json:"operators,omitempty"`
	Transfers       []string         `json:"transfers,omitempty"`
	ConnectionTypes []ConnectionType `json:"connection-types,omitempty"`
	Dependencies    []string         `json:"dependencies,omitempty"`
}

// Version returns the provider's current version (the head of Versions).
func (i *Info) Version() string {
	if len(i.Versions) == 0 {
		return ""
	}
	return i.Versions[0]
}

// Catalog holds registered provider descriptors.
type Catalog struct {
	providers map[string]*Info
	mu        sync.RWMutex
}

// NewCatalog creates an empty provider catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		providers: make(map[string]*Info),
	}
}

// Register adds a descriptor to the catalog.
func (c *Catalog) Register(info *Info) error {
	if info == nil || info.PackageName == "" {
		return lassoerrors.New(lassoerrors.ErrorTypeConfig, "provider package name is required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.providers[info.PackageName]; exists {
		return lassoerrors.Newf(lassoerrors.ErrorTypeConfig, "provider %s already registered", info.PackageName)
	}

	c.providers[info.PackageName] = info
	return nil
}

// Get retrieves a descriptor by package name.
func (c *Catalog) Get(packageName string) (*Info, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	info, exists := c.providers[packageName]
	if !exists {
		return nil, lassoerrors.Newf(lassoerrors.ErrorTypeNotFound, "provider %s not found", packageName)
	}
	return info, nil
}

// List returns all descriptors ordered by package name.
func (c *Catalog) List() []*Info {
	c.mu.RLock()
	defer c.mu.RUnlock()

	infos := make([]*Info, 0, len(c.providers))
	for _, info := range c.providers {
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].PackageName < infos[j].PackageName
	})
	return infos
}

// MarshalJSON renders the catalog as a JSON array of descriptors.
func (c *Catalog) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.List())
}

// Global catalog instance
var globalCatalog = NewCatalog()

// Register adds a descriptor to the global catalog.
func Register(info *Info) error {
	return globalCatalog.Register(info)
}

// Get retrieves a descriptor from the global catalog.
func Get(packageName string) (*Info, error) {
	return globalCatalog.Get(packageName)
}

// List returns all descriptors from the global catalog.
func List() []*Info {
	return globalCatalog.List()
}

// GetCatalog returns the global catalog instance.
func GetCatalog() *Catalog {
	return globalCatalog
}
