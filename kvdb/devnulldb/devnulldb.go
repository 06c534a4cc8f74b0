// Package devnulldb is a key-value store which discards every write.
package devnulldb

import (
	"github.com/jpipkit/jpip-base/kvdb"
)

// Database reads as empty and accepts any write.
type Database struct{}

var _ kvdb.DropableStore = (*Database)(nil)

// New returns the store.
func New() *Database {
	return &Database{}
}

// Close does nothing.
func (db *Database) Close() error {
	return nil
}

// Drop does nothing.
func (db *Database) Drop() {}

// Has is always false.
func (db *Database) Has(key []byte) (bool, error) {
	return false, nil
}

// Get returns nil value and nil error, as for any missing key.
func (db *Database) Get(key []byte) ([]byte, error) {
	return nil, nil
}

// Put discards the pair.
func (db *Database) Put(key []byte, value []byte) error {
	return nil
}

// Delete does nothing.
func (db *Database) Delete(key []byte) error {
	return nil
}

// NewBatch creates a batch discarding its writes.
func (db *Database) NewBatch() kvdb.Batch {
	return &batch{}
}

// NewIterator returns an exhausted iterator.
func (db *Database) NewIterator(prefix []byte, start []byte) kvdb.Iterator {
	return &iterator{}
}

// Stat returns an empty stat.
func (db *Database) Stat(property string) (string, error) {
	return "", nil
}

// Compact does nothing.
func (db *Database) Compact(start []byte, limit []byte) error {
	return nil
}

type batch struct {
	size int
}

func (b *batch) Put(key, value []byte) error {
	b.size += len(key) + len(value)
	return nil
}

func (b *batch) Delete(key []byte) error {
	b.size += len(key)
	return nil
}

func (b *batch) ValueSize() int {
	return b.size
}

func (b *batch) Write() error {
	return nil
}

func (b *batch) Reset() {
	b.size = 0
}

// Replay has nothing to replay.
func (b *batch) Replay(w kvdb.Writer) error {
	return nil
}

type iterator struct{}

func (it *iterator) Next() bool    { return false }
func (it *iterator) Error() error  { return nil }
func (it *iterator) Key() []byte   { return nil }
func (it *iterator) Value() []byte { return nil }
func (it *iterator) Release()      {}
