package datacache

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/jpipkit/jpip-base/common/bigendian"
	"github.com/jpipkit/jpip-base/databin"
	"github.com/jpipkit/jpip-base/kvdb"
	"github.com/jpipkit/jpip-base/kvdb/flushable"
	"github.com/jpipkit/jpip-base/kvdb/table"
)

// binRecord is the stored form of one data-bin.
type binRecord struct {
	Complete bool
	Data     []byte
	// Layers and Lengths are the checkpoint table, precincts only.
	Layers  []uint32
	Lengths []uint32
}

type snapshotTables struct {
	MainHeader  *table.Table `table:"m"`
	TileHeaders *table.Table `table:"t"`
	Precincts   *table.Table `table:"p"`
	Metadata    *table.Table `table:"d"`
}

func openTables(db kvdb.Store) (*snapshotTables, error) {
	t := &snapshotTables{}
	if err := table.MigrateTables(t, db); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *snapshotTables) all() []*table.Table {
	return []*table.Table{t.MainHeader, t.TileHeaders, t.Precincts, t.Metadata}
}

func record(b *databin.Bin) binRecord {
	return binRecord{
		Complete: b.Complete(),
		Data:     b.Bytes(),
	}
}

func precinctRecord(p *databin.Precinct) binRecord {
	r := record(&p.Bin)
	for _, cp := range p.Checkpoints() {
		r.Layers = append(r.Layers, cp.Layer)
		r.Lengths = append(r.Lengths, cp.Length)
	}
	return r
}

func (r *binRecord) checkpoints() ([]databin.Checkpoint, error) {
	if len(r.Layers) != len(r.Lengths) {
		return nil, errors.Errorf("checkpoint table of %d layers and %d lengths", len(r.Layers), len(r.Lengths))
	}
	cps := make([]databin.Checkpoint, len(r.Layers))
	for i := range cps {
		cps[i] = databin.Checkpoint{Layer: r.Layers[i], Length: r.Lengths[i]}
	}
	return cps, nil
}

// batchWriter puts records into a table, writing every IdealBatchSize bytes.
type batchWriter struct {
	batch kvdb.Batch
	count int
}

func (w *batchWriter) put(id uint64, r binRecord) error {
	buf, err := rlp.EncodeToBytes(&r)
	if err != nil {
		return err
	}
	if err := w.batch.Put(bigendian.Uint64ToBytes(id), buf); err != nil {
		return err
	}
	w.count++
	if w.batch.ValueSize() > kvdb.IdealBatchSize {
		return w.flush()
	}
	return nil
}

func (w *batchWriter) flush() error {
	if err := w.batch.Write(); err != nil {
		return err
	}
	w.batch.Reset()
	return nil
}

// SaveSnapshot replaces the snapshot in db with the cache content: every
// data-bin's bytes, completeness flag and layer checkpoints. The records are
// staged in memory and written to db through one batch, a failed save leaves
// the previous snapshot in place.
func (c *Cache) SaveSnapshot(db kvdb.Store) error {
	staged := flushable.Wrap(db)
	tables, err := openTables(staged)
	if err != nil {
		return err
	}
	for _, t := range tables.all() {
		if err := t.Clear(); err != nil {
			return errors.Wrap(err, "clear snapshot")
		}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	total := 0
	save := func(t *table.Table, ids []uint64, rec func(id uint64) binRecord) error {
		w := &batchWriter{batch: t.NewBatch()}
		for _, id := range ids {
			if err := w.put(id, rec(id)); err != nil {
				return err
			}
		}
		total += w.count
		return w.flush()
	}

	err = save(tables.MainHeader, c.mainHeaderIDs(), func(uint64) binRecord {
		return lockedRecord(c.mainHeader)
	})
	if err != nil {
		return errors.Wrap(err, "main header")
	}
	err = save(tables.TileHeaders, sortedIDs(c.tileHeaders), func(id uint64) binRecord {
		return lockedRecord(c.tileHeaders[id])
	})
	if err != nil {
		return errors.Wrap(err, "tile headers")
	}
	err = save(tables.Precincts, c.precinctIDs(), func(id uint64) binRecord {
		p := c.precincts[id]
		p.Lock()
		defer p.Unlock()
		return precinctRecord(p)
	})
	if err != nil {
		return errors.Wrap(err, "precincts")
	}
	err = save(tables.Metadata, sortedIDs(c.metadata), func(id uint64) binRecord {
		return lockedRecord(c.metadata[id])
	})
	if err != nil {
		return errors.Wrap(err, "metadata")
	}

	size := staged.NotFlushedSize()
	if err := staged.Flush(); err != nil {
		return errors.Wrap(err, "flush snapshot")
	}
	c.log.Info("Saved cache snapshot", "bins", total, "size", size)
	return nil
}

func (c *Cache) mainHeaderIDs() []uint64 {
	c.mainHeader.Lock()
	defer c.mainHeader.Unlock()
	if c.mainHeader.Len() == 0 && !c.mainHeader.Complete() {
		return nil
	}
	return []uint64{0}
}

func lockedRecord(b *databin.Bin) binRecord {
	b.Lock()
	defer b.Unlock()
	return record(b)
}

func sortedIDs(bins map[uint64]*databin.Bin) []uint64 {
	ids := make([]uint64, 0, len(bins))
	for id := range bins {
		ids = append(ids, id)
	}
	sortIDs(ids)
	return ids
}

// loadTable decodes every record of a table.
func loadTable(t *table.Table, fn func(id uint64, r *binRecord) error) error {
	it := t.NewIterator(nil, nil)
	defer it.Release()

	for it.Next() {
		id, err := bigendian.ParseUint64(it.Key())
		if err != nil {
			return err
		}
		r := &binRecord{}
		if err := rlp.DecodeBytes(it.Value(), r); err != nil {
			return errors.Wrapf(err, "bin %d", id)
		}
		if err := fn(id, r); err != nil {
			return errors.Wrapf(err, "bin %d", id)
		}
	}
	return it.Error()
}

// LoadSnapshot replaces the cache content with the snapshot in db.
// The cache is left unchanged if the snapshot can't be decoded.
func (c *Cache) LoadSnapshot(db kvdb.Store) error {
	tables, err := openTables(db)
	if err != nil {
		return err
	}

	mainHeader := databin.NewBin(databin.ID{Class: databin.ClassMainHeader})
	tileHeaders := make(map[uint64]*databin.Bin)
	precincts := make(map[uint64]*databin.Precinct)
	metadata := make(map[uint64]*databin.Bin)

	err = loadTable(tables.MainHeader, func(id uint64, r *binRecord) error {
		if id != 0 {
			return errors.New("main header id is not 0")
		}
		mainHeader.Restore(r.Data, r.Complete)
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "main header")
	}
	err = loadTable(tables.TileHeaders, loadBin(tileHeaders, databin.ClassTileHeader))
	if err != nil {
		return errors.Wrap(err, "tile headers")
	}
	err = loadTable(tables.Precincts, func(id uint64, r *binRecord) error {
		cps, err := r.checkpoints()
		if err != nil {
			return err
		}
		p := databin.NewPrecinct(id)
		if err := p.Restore(r.Data, r.Complete, cps); err != nil {
			return err
		}
		precincts[id] = p
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "precincts")
	}
	err = loadTable(tables.Metadata, loadBin(metadata, databin.ClassMetadata))
	if err != nil {
		return errors.Wrap(err, "metadata")
	}

	c.mu.Lock()
	c.clear()
	c.mainHeader.Lock()
	c.mainHeader.Restore(mainHeader.Bytes(), mainHeader.Complete())
	c.mainHeader.Unlock()
	for id, b := range tileHeaders {
		c.tileHeaders[id] = b
	}
	for id, b := range metadata {
		c.metadata[id] = b
	}
	for id, p := range precincts {
		c.precincts[id] = p
	}
	c.evict.Reset()
	for _, id := range c.precinctIDs() {
		c.evict.Touch(id, c.precincts[id].Len())
	}
	c.mu.Unlock()

	c.log.Info("Loaded cache snapshot", "precincts", len(precincts), "tile_headers", len(tileHeaders), "metadata", len(metadata))
	c.Manage()
	return nil
}

func loadBin(bins map[uint64]*databin.Bin, class databin.Class) func(id uint64, r *binRecord) error {
	return func(id uint64, r *binRecord) error {
		b := databin.NewBin(databin.ID{Class: class, InClassID: id})
		b.Restore(r.Data, r.Complete)
		bins[id] = b
		return nil
	}
}
