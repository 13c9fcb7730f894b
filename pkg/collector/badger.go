package collector

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/badger/v4"
)

const defaultEventTTL = 7 * 24 * time.Hour

// Key layout:
//
//	evt:[timestamp (8 bytes)][id_hash (8 bytes)] -> StoredEvent JSON
//	res:<fingerprint>                            -> empty
//
// Timestamp-first keys keep events time-ordered so Recent is a reverse
// prefix scan.
var (
	eventPrefix    = []byte("evt:")
	resolvedPrefix = []byte("res:")
)

// BadgerStore persists events to BadgerDB with a TTL.
type BadgerStore struct {
	db  *badger.DB
	ttl time.Duration
}

// BadgerConfig configures the on-disk store.
type BadgerConfig struct {
	Path string
	TTL  time.Duration // event retention, default 7 days
}

func NewBadgerStore(cfg BadgerConfig) (*BadgerStore, error) {
	if cfg.TTL <= 0 {
		cfg.TTL = defaultEventTTL
	}

	opts := badger.DefaultOptions(cfg.Path)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger store: %w", err)
	}

	return &BadgerStore{db: db, ttl: cfg.TTL}, nil
}

func (s *BadgerStore) Append(ctx context.Context, events []StoredEvent) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	return s.db.Update(func(txn *badger.Txn) error {
		for _, ev := range events {
			value, err := json.Marshal(ev)
			if err != nil {
				return fmt.Errorf("encode stored event %s: %w", ev.ID, err)
			}
			entry := badger.NewEntry(eventKey(ev), value).WithTTL(s.ttl)
			if err := txn.SetEntry(entry); err != nil {
				return fmt.Errorf("store event %s: %w", ev.ID, err)
			}
		}
		return nil
	})
}

func (s *BadgerStore) Recent(ctx context.Context, limit int) ([]StoredEvent, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if limit <= 0 {
		limit = 100
	}

	var out []StoredEvent
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = eventPrefix
		it := txn.NewIterator(opts)
		defer it.Close()

		// Seek past the last possible event key, then walk backwards.
		seek := append(append([]byte{}, eventPrefix...), 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff)
		for it.Seek(seek); it.Valid() && len(out) < limit; it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var ev StoredEvent
				if err := json.Unmarshal(val, &ev); err != nil {
					return fmt.Errorf("decode stored event: %w", err)
				}
				out = append(out, ev)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return out, err
}

func (s *BadgerStore) MarkResolved(ctx context.Context, fingerprint string) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	key := append(append([]byte{}, resolvedPrefix...), fingerprint...)
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(key, nil).WithTTL(s.ttl))
	})
}

func (s *BadgerStore) Resolved(ctx context.Context, fingerprint string) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	key := append(append([]byte{}, resolvedPrefix...), fingerprint...)
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func eventKey(ev StoredEvent) []byte {
	key := make([]byte, 0, len(eventPrefix)+16)
	key = append(key, eventPrefix...)

	var suffix [16]byte
	binary.BigEndian.PutUint64(suffix[0:8], uint64(ev.Received.UnixNano()))
	binary.BigEndian.PutUint64(suffix[8:16], xxhash.Sum64String(ev.ID))
	return append(key, suffix[:]...)
}
