package store

import (
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"
)

// BadgerConfig configures a Badger store.
type BadgerConfig struct {
	// Path is the database directory. It is created if missing.
	Path string

	// InMemory keeps the database in RAM; Path is ignored.
	InMemory bool

	Logger *logrus.Logger
}

// Badger stores blobs in a badger key/value database.
type Badger struct {
	db  *badger.DB
	log *logrus.Logger
}

// OpenBadger opens (or creates) the database described by cfg.
func OpenBadger(cfg BadgerConfig) (*Badger, error) {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, errors.New("store: badger path is empty")
		}
		if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
			return nil, fmt.Errorf("store: create badger dir: %w", err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts.Logger = nil
	opts.SyncWrites = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("store: open badger: %w", err)
	}
	return &Badger{db: db, log: cfg.Logger}, nil
}

func (b *Badger) Load(key string) ([]byte, error) {
	var value []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: read key %s: %w", key, err)
	}
	return value, nil
}

func (b *Badger) Save(key string, data []byte) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
	if err != nil {
		return fmt.Errorf("store: write key %s: %w", key, err)
	}
	b.log.WithField("key", key).WithField("bytes", len(data)).Debug("state written to badger")
	return nil
}

// Close flushes and closes the database. Value log garbage collection is
// attempted first; ErrNoRewrite only means there was nothing to reclaim.
func (b *Badger) Close() error {
	if err := b.db.RunValueLogGC(0.5); err != nil && !errors.Is(err, badger.ErrNoRewrite) && !errors.Is(err, badger.ErrGCInMemoryMode) {
		b.log.WithError(err).Debug("badger value log gc skipped")
	}
	return b.db.Close()
}
