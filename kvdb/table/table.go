// Package table splits one store into prefixed tables, one per kind of
// record.
package table

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/jpipkit/jpip-base/kvdb"
)

// Table wraps the underlying DB, so all the table's data is stored with a prefix in underlying DB
type Table struct {
	prefix     []byte
	underlying kvdb.Store
}

var _ kvdb.Store = (*Table)(nil)

// prefixed key (prefix + key)
func prefixed(key, prefix []byte) []byte {
	prefixedKey := make([]byte, 0, len(prefix)+len(key))
	prefixedKey = append(prefixedKey, prefix...)
	prefixedKey = append(prefixedKey, key...)
	return prefixedKey
}

func noPrefix(key, prefix []byte) []byte {
	if len(key) < len(prefix) {
		return key
	}
	return key[len(prefix):]
}

// New table of db. Prefixes of tables sharing one db must not be prefixes of each other.
func New(db kvdb.Store, prefix []byte) *Table {
	return &Table{
		prefix:     prefix,
		underlying: db,
	}
}

// NewTable nests a table.
func (t *Table) NewTable(prefix []byte) *Table {
	return New(t, prefix)
}

// Close is a no-op, the underlying db is closed by its owner.
func (t *Table) Close() error {
	return kvdb.ErrUnsupportedOp
}

func (t *Table) Has(key []byte) (bool, error) {
	return t.underlying.Has(prefixed(key, t.prefix))
}

func (t *Table) Get(key []byte) ([]byte, error) {
	return t.underlying.Get(prefixed(key, t.prefix))
}

func (t *Table) Put(key []byte, value []byte) error {
	return t.underlying.Put(prefixed(key, t.prefix), value)
}

func (t *Table) Delete(key []byte) error {
	return t.underlying.Delete(prefixed(key, t.prefix))
}

func (t *Table) NewBatch() kvdb.Batch {
	return &batch{t.underlying.NewBatch(), t.prefix}
}

func (t *Table) NewIterator(itPrefix []byte, start []byte) kvdb.Iterator {
	return &iterator{t.underlying.NewIterator(prefixed(itPrefix, t.prefix), start), t.prefix}
}

func (t *Table) Stat(property string) (string, error) {
	return t.underlying.Stat(property)
}

func incPrefix(prefix []byte) []byte {
	if len(prefix) == 0 {
		return nil
	}
	endBn := new(big.Int).SetBytes(prefix)
	endBn.Add(endBn, common.Big1)
	if len(endBn.Bytes()) > len(prefix) {
		// overflow
		return nil
	}
	res := make([]byte, len(prefix)-len(endBn.Bytes()), len(prefix))
	return append(res, endBn.Bytes()...)
}

func (t *Table) Compact(start []byte, limit []byte) error {
	end := prefixed(limit, t.prefix)
	if limit == nil {
		end = incPrefix(t.prefix)
	}
	return t.underlying.Compact(prefixed(start, t.prefix), end)
}

// Clear deletes every record of the table. Keys are collected before
// deleting, iterators of some stores don't survive writes.
func (t *Table) Clear() error {
	it := t.NewIterator(nil, nil)
	var keys [][]byte
	for it.Next() {
		keys = append(keys, common.CopyBytes(it.Key()))
	}
	err := it.Error()
	it.Release()
	if err != nil {
		return err
	}

	b := t.NewBatch()
	for _, key := range keys {
		if err := b.Delete(key); err != nil {
			return err
		}
		if b.ValueSize() > kvdb.IdealBatchSize {
			if err := b.Write(); err != nil {
				return err
			}
			b.Reset()
		}
	}
	return b.Write()
}

/*
 * Batch
 */

type batch struct {
	batch  kvdb.Batch
	prefix []byte
}

func (b *batch) Put(key, value []byte) error {
	return b.batch.Put(prefixed(key, b.prefix), value)
}

func (b *batch) Delete(key []byte) error {
	return b.batch.Delete(prefixed(key, b.prefix))
}

func (b *batch) ValueSize() int {
	return b.batch.ValueSize()
}

func (b *batch) Write() error {
	return b.batch.Write()
}

func (b *batch) Reset() {
	b.batch.Reset()
}

func (b *batch) Replay(w kvdb.Writer) error {
	return b.batch.Replay(&replayer{w, b.prefix})
}

/*
 * Replayer
 */

type replayer struct {
	writer kvdb.Writer
	prefix []byte
}

func (r *replayer) Put(key, value []byte) error {
	return r.writer.Put(noPrefix(key, r.prefix), value)
}

func (r *replayer) Delete(key []byte) error {
	return r.writer.Delete(noPrefix(key, r.prefix))
}

/*
 * Iterator
 */

type iterator struct {
	it     kvdb.Iterator
	prefix []byte
}

func (it *iterator) Next() bool {
	return it.it.Next()
}

func (it *iterator) Error() error {
	return it.it.Error()
}

func (it *iterator) Key() []byte {
	return noPrefix(it.it.Key(), it.prefix)
}

func (it *iterator) Value() []byte {
	return it.it.Value()
}

func (it *iterator) Release() {
	it.it.Release()
	*it = iterator{}
}
