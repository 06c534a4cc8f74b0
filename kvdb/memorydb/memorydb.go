// Package memorydb implements the key-value database layer based on memory maps.
package memorydb

import (
	"github.com/jpipkit/jpip-base/kvdb"
	"github.com/jpipkit/jpip-base/kvdb/devnulldb"
	"github.com/jpipkit/jpip-base/kvdb/flushable"
)

// Database is an ephemeral key-value store. Apart from basic data storage
// functionality it also supports batch writes and iterating over the keyspace in
// binary-alphabetical order.
type Database struct {
	kvdb.DropableStore
}

// New returns a wrapped map with all the required database interface methods
// implemented.
func New() *Database {
	return &Database{
		DropableStore: flushable.Wrap(devnulldb.New()),
	}
}

// Len is the number of stored keys.
func (db *Database) Len() int {
	it := db.NewIterator(nil, nil)
	defer it.Release()

	n := 0
	for it.Next() {
		n++
	}
	return n
}
