// Package flushable stages writes in memory on top of a store, the store
// only sees them on Flush, all at once.
package flushable

import (
	"bytes"
	"errors"
	"strings"
	"sync"

	rbt "github.com/emirpasic/gods/trees/redblacktree"
	"github.com/ethereum/go-ethereum/common"

	"github.com/jpipkit/jpip-base/kvdb"
)

var errClosed = errors.New("database closed")

// Flushable is a kvdb.Store wrapper around any Store.
// On reading, it looks in the staged writes first, then in the parent.
// On writing, it writes only in memory. Flush writes the staged pairs into
// the parent through one batch.
type Flushable struct {
	underlying kvdb.Store

	lock     sync.RWMutex
	modified *rbt.Tree // string(key) -> []byte, deleted keys hold nil
	size     int
}

var _ kvdb.DropableStore = (*Flushable)(nil)

// Wrap underlying db. Writes won't reach it until Flush is called.
func Wrap(parent kvdb.Store) *Flushable {
	if parent == nil {
		panic("nil parent")
	}
	return &Flushable{
		underlying: parent,
		modified:   rbt.NewWithStringComparator(),
	}
}

// Put stages the pair.
func (w *Flushable) Put(key []byte, value []byte) error {
	if value == nil || key == nil {
		return errors.New("flushable: key or value is nil")
	}
	w.lock.Lock()
	defer w.lock.Unlock()

	if w.modified == nil {
		return errClosed
	}
	w.put(key, value)
	return nil
}

func (w *Flushable) put(key []byte, value []byte) {
	w.modified.Put(string(key), common.CopyBytes(value))
	w.size += len(key) + len(value)
}

// Delete stages the key removal.
func (w *Flushable) Delete(key []byte) error {
	w.lock.Lock()
	defer w.lock.Unlock()

	if w.modified == nil {
		return errClosed
	}
	w.delete(key)
	return nil
}

func (w *Flushable) delete(key []byte) {
	w.modified.Put(string(key), nil)
	w.size += len(key)
}

// Has checks the staged writes first, then the parent.
func (w *Flushable) Has(key []byte) (bool, error) {
	w.lock.RLock()
	defer w.lock.RUnlock()

	if w.modified == nil {
		return false, errClosed
	}
	if val, ok := w.modified.Get(string(key)); ok {
		return val != nil, nil
	}
	return w.underlying.Has(key)
}

// Get checks the staged writes first, then the parent.
func (w *Flushable) Get(key []byte) ([]byte, error) {
	w.lock.RLock()
	defer w.lock.RUnlock()

	if w.modified == nil {
		return nil, errClosed
	}
	if val, ok := w.modified.Get(string(key)); ok {
		if val == nil {
			return nil, nil
		}
		return common.CopyBytes(val.([]byte)), nil
	}
	return w.underlying.Get(key)
}

func (w *Flushable) dropNotFlushed() {
	w.modified.Clear()
	w.size = 0
}

// NotFlushedSize is the size of the staged keys and values.
func (w *Flushable) NotFlushedSize() int {
	w.lock.RLock()
	defer w.lock.RUnlock()

	return w.size
}

// Flush writes the staged pairs into the parent through one batch.
func (w *Flushable) Flush() error {
	w.lock.Lock()
	defer w.lock.Unlock()

	if w.modified == nil {
		return errClosed
	}
	batch := w.underlying.NewBatch()
	for it := w.modified.Iterator(); it.Next(); {
		var err error
		if it.Value() == nil {
			err = batch.Delete([]byte(it.Key().(string)))
		} else {
			err = batch.Put([]byte(it.Key().(string)), it.Value().([]byte))
		}
		if err != nil {
			return err
		}
	}
	if err := batch.Write(); err != nil {
		return err
	}
	w.dropNotFlushed()
	return nil
}

// Close drops the staged writes and closes the parent.
func (w *Flushable) Close() error {
	w.lock.Lock()
	defer w.lock.Unlock()

	if w.modified == nil {
		return errClosed
	}
	w.dropNotFlushed()
	w.modified = nil
	return w.underlying.Close()
}

// Drop whole database, the parent too if it is dropable.
func (w *Flushable) Drop() {
	w.lock.RLock()
	defer w.lock.RUnlock()

	if w.modified != nil {
		panic("close db first")
	}
	if parent, ok := w.underlying.(kvdb.Droper); ok {
		parent.Drop()
	}
}

// Stat returns a particular internal stat of the parent.
func (w *Flushable) Stat(property string) (string, error) {
	return w.underlying.Stat(property)
}

// Compact flattens the parent for the given key range.
func (w *Flushable) Compact(start []byte, limit []byte) error {
	return w.underlying.Compact(start, limit)
}

/*
 * Iterator
 */

type pair struct {
	key, val []byte
}

// iterator merges a copy of the staged pairs with the parent iterator,
// staged pairs win.
type iterator struct {
	staged []pair
	parent kvdb.Iterator

	parentOk bool
	key, val []byte
	done     bool
}

// NewIterator creates a binary-alphabetical iterator over a subset
// of database content with a particular key prefix, starting at a particular
// initial key (or after, if it does not exist).
// Writes staged after the call are not seen.
func (w *Flushable) NewIterator(prefix []byte, start []byte) kvdb.Iterator {
	w.lock.RLock()
	defer w.lock.RUnlock()

	it := &iterator{}
	if w.modified == nil {
		it.parent = &errIterator{errClosed}
		return it
	}
	pref := string(prefix)
	from := pref + string(start)
	for tit := w.modified.Iterator(); tit.Next(); {
		key := tit.Key().(string)
		if key < from {
			continue
		}
		if !strings.HasPrefix(key, pref) {
			break
		}
		var val []byte
		if tit.Value() != nil {
			val = tit.Value().([]byte)
		}
		it.staged = append(it.staged, pair{[]byte(key), val})
	}
	it.parent = w.underlying.NewIterator(prefix, start)
	it.parentOk = it.parent.Next()
	return it
}

// Next moves to the next live pair.
func (it *iterator) Next() bool {
	for !it.done {
		switch {
		case len(it.staged) == 0 && !it.parentOk:
			it.done = true
			it.key, it.val = nil, nil
			return false
		case len(it.staged) != 0 && (!it.parentOk || bytes.Compare(it.staged[0].key, it.parent.Key()) <= 0):
			p := it.staged[0]
			it.staged = it.staged[1:]
			if it.parentOk && bytes.Equal(p.key, it.parent.Key()) {
				it.parentOk = it.parent.Next()
			}
			if p.val == nil {
				// deleted
				continue
			}
			it.key, it.val = p.key, p.val
			return true
		default:
			// the parent may reuse its buffers
			it.key = common.CopyBytes(it.parent.Key())
			it.val = common.CopyBytes(it.parent.Value())
			it.parentOk = it.parent.Next()
			return true
		}
	}
	return false
}

// Error returns the error of the parent iterator.
func (it *iterator) Error() error {
	return it.parent.Error()
}

// Key returns the key of the current pair, or nil if done.
func (it *iterator) Key() []byte {
	return it.key
}

// Value returns the value of the current pair, or nil if done.
func (it *iterator) Value() []byte {
	return it.val
}

// Release releases the parent iterator.
func (it *iterator) Release() {
	it.parent.Release()
	it.staged, it.key, it.val = nil, nil, nil
	it.done = true
}

type errIterator struct {
	err error
}

func (it *errIterator) Next() bool    { return false }
func (it *errIterator) Error() error  { return it.err }
func (it *errIterator) Key() []byte   { return nil }
func (it *errIterator) Value() []byte { return nil }
func (it *errIterator) Release()      {}

/*
 * Batch
 */

// NewBatch creates a batch staging its writes on Write.
func (w *Flushable) NewBatch() kvdb.Batch {
	return &batch{db: w}
}

type kv struct {
	k, v []byte
}

type batch struct {
	db     *Flushable
	writes []kv
	size   int
}

// Put adds "add key-value pair" operation into batch.
func (b *batch) Put(key, value []byte) error {
	b.writes = append(b.writes, kv{common.CopyBytes(key), common.CopyBytes(value)})
	b.size += len(value) + len(key)
	return nil
}

// Delete adds "remove key" operation into batch.
func (b *batch) Delete(key []byte) error {
	b.writes = append(b.writes, kv{common.CopyBytes(key), nil})
	b.size += len(key)
	return nil
}

// Write stages the batch.
func (b *batch) Write() error {
	b.db.lock.Lock()
	defer b.db.lock.Unlock()

	if b.db.modified == nil {
		return errClosed
	}
	for _, kv := range b.writes {
		if kv.v == nil {
			b.db.delete(kv.k)
		} else {
			b.db.put(kv.k, kv.v)
		}
	}
	return nil
}

// ValueSize returns key-values sizes sum.
func (b *batch) ValueSize() int {
	return b.size
}

// Reset cleans whole batch.
func (b *batch) Reset() {
	b.writes = b.writes[:0]
	b.size = 0
}

// Replay replays the batch contents.
func (b *batch) Replay(w kvdb.Writer) error {
	for _, kv := range b.writes {
		if kv.v == nil {
			if err := w.Delete(kv.k); err != nil {
				return err
			}
			continue
		}
		if err := w.Put(kv.k, kv.v); err != nil {
			return err
		}
	}
	return nil
}
