package drm

import (
	"sort"
	"sync"

	"musicdl/enums"
)

type SessionID []byte

// Key is one key container of a parsed license.
type Key struct {
	ID   []byte
	Key  []byte
	Type enums.KeyType
}

// KeySystem is a license-protocol implementation bound to one device
// credential. a session must be closed once opened.
type KeySystem interface {
	Open() (SessionID, error)
	Challenge(session SessionID, protectionHeader []byte) ([]byte, error)
	Parse(session SessionID, license []byte) ([]Key, error)
	Close(session SessionID) error
}

// KeySystemFactory builds a KeySystem from a provisioned device credential.
type KeySystemFactory func(credential []byte) (KeySystem, error)

var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]KeySystemFactory)
)

// Register makes a key-system implementation available by name.
// it panics if the name is registered twice or factory is nil.
func Register(name string, factory KeySystemFactory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	if factory == nil {
		panic("drm: Register factory is nil")
	}
	if _, dup := factories[name]; dup {
		panic("drm: Register called twice for key system " + name)
	}
	factories[name] = factory
}

// DefaultFactory returns the first registered implementation by name,
// or nil when none is linked in.
func DefaultFactory() KeySystemFactory {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	if len(names) == 0 {
		return nil
	}
	sort.Strings(names)
	return factories[names[0]]
}
