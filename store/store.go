// Package store persists the reader state blob under a fixed key.
//
// Three backends share the Store interface: Badger (default on-disk),
// SQLite, and Memory (tests and ephemeral sessions).
package store

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// ErrNotFound is returned by Load when nothing is stored under the key.
var ErrNotFound = errors.New("store: key not found")

// Store is a key/value blob store. Save replaces the whole value atomically.
type Store interface {
	Load(key string) ([]byte, error)
	Save(key string, data []byte) error
	Close() error
}

// Driver names accepted by Open.
const (
	DriverBadger = "badger"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Open creates the backend named by driver at path.
func Open(driver, path string, logger *logrus.Logger) (Store, error) {
	switch strings.ToLower(driver) {
	case DriverBadger, "":
		return OpenBadger(BadgerConfig{Path: path, Logger: logger})
	case DriverSQLite:
		return OpenSQLite(path)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("store: unknown driver %q", driver)
	}
}

// Memory is an in-process Store.
type Memory struct {
	mu   sync.Mutex
	data map[string][]byte
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Load(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *Memory) Save(key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), data...)
	return nil
}

func (m *Memory) Close() error { return nil }
