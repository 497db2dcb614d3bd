package sqldb

import (
	"slices"
	"sync"
)

// DSNBuilder translates the remainder of a connection URL (see SplitURL)
// plus credentials into the driver's data source name.
type DSNBuilder func(rest string, conf *Conf) (string, error)

// Dialect binds a db type to a database/sql driver.
// It is registered with Register and looked up by Provider.Connect.
type Dialect struct {
	Type       string // oracle, mysql, pgsql, sqlite
	DriverName string // name the driver registered with database/sql
	BuildDSN   DSNBuilder
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Dialect{}
)

func Register(d Dialect) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[d.Type] = d
}

func Lookup(dbType string) (Dialect, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	d, ok := registry[dbType]
	return d, ok
}

// Types returns registered db types, sorted
func Types() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	types := make([]string, 0, len(registry))
	for t := range registry {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}
