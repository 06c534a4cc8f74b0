package datacache

import (
	"io"
	"sync"

	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"

	"github.com/jpipkit/jpip-base/utils/datasemaphore"
	"github.com/jpipkit/jpip-base/utils/workers"
	"github.com/jpipkit/jpip-base/wire"
)

// ErrBusy is returned by Submit when the in-flight budget stays exhausted.
var ErrBusy = errors.New("ingest pipeline is busy")

// Ingester stores decoded messages, Cache is one.
type Ingester interface {
	Ingest(msg *wire.Message) error
}

// Pipeline ingests messages on worker goroutines. Messages of
// one data-bin are ingested by one worker in submission order, so segments
// of a bin arrive as they were sent.
type Pipeline struct {
	dst Ingester
	cfg PipelineConfig

	workers  *workers.Workers
	inflight *datasemaphore.DataSemaphore
	pending  sync.WaitGroup

	errMu sync.Mutex
	err   error

	quit chan struct{}
	wg   sync.WaitGroup

	log log.Logger
}

// NewPipeline starts the pipeline workers ingesting into dst.
func NewPipeline(dst Ingester, cfg PipelineConfig) *Pipeline {
	p := &Pipeline{
		dst:  dst,
		cfg:  cfg,
		quit: make(chan struct{}),
		log:  log.New("module", "ingest-pipeline"),
	}
	p.inflight = datasemaphore.New(cfg.MaxInflight, func(received, processing, releasing datasemaphore.Metric) {
		p.log.Warn("Inflight messages release underflow", "processing", processing.Num, "releasing", releasing.Num)
	})
	p.workers = workers.New(&p.wg, p.quit, cfg.Workers, cfg.QueueSize)
	p.workers.Start()
	return p
}

func shardKey(msg *wire.Message) uint64 {
	return msg.InClassID<<4 | uint64(msg.Class.Base())
}

func (p *Pipeline) weight(msg *wire.Message) datasemaphore.Metric {
	w := datasemaphore.Metric{Num: 1, Size: uint64(len(msg.Body))}
	if w.Size > p.cfg.MaxInflight.Size {
		// a body larger than the whole budget waits for an idle pipeline
		w.Size = p.cfg.MaxInflight.Size
	}
	return w
}

// Submit queues a message for ingestion. End-of-response messages are
// dropped. Ingest errors are reported by Flush.
func (p *Pipeline) Submit(msg *wire.Message) error {
	if msg.EOR {
		return nil
	}
	w := p.weight(msg)
	if !p.inflight.Acquire(w, p.cfg.AcquireTimeout) {
		inflight := p.inflight.Processing()
		p.log.Warn("Ingest pipeline is busy", "bin", msg.ID(), "inflight", inflight.Num, "bytes", inflight.Size, "queued", p.workers.TasksCount())
		return errors.Wrap(ErrBusy, msg.ID().String())
	}
	p.pending.Add(1)
	err := p.workers.Enqueue(shardKey(msg), func() {
		defer p.pending.Done()
		defer p.inflight.Release(w)
		if err := p.dst.Ingest(msg); err != nil {
			p.setErr(err)
		}
	})
	if err != nil {
		p.inflight.Release(w)
		p.pending.Done()
		return err
	}
	return nil
}

func (p *Pipeline) setErr(err error) {
	p.errMu.Lock()
	defer p.errMu.Unlock()

	if p.err == nil {
		p.err = err
	} else {
		p.log.Debug("Dropped subsequent ingest error", "err", err)
	}
}

// Flush waits until every submitted message is ingested and returns the
// first ingest error since the previous Flush.
func (p *Pipeline) Flush() error {
	p.pending.Wait()

	p.errMu.Lock()
	defer p.errMu.Unlock()
	err := p.err
	p.err = nil
	return err
}

// Feed submits the messages of one response until its end, then flushes.
// A source exhausted at a message boundary ends the response too.
func (p *Pipeline) Feed(dec *wire.Decoder) error {
	for {
		msg, err := dec.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			p.Flush()
			return err
		}
		if msg.EOR {
			break
		}
		if err := p.Submit(msg); err != nil {
			p.Flush()
			return err
		}
	}
	return p.Flush()
}

// Stop waits for the queued messages and stops the workers.
func (p *Pipeline) Stop() error {
	err := p.Flush()
	close(p.quit)
	p.inflight.Terminate()
	p.wg.Wait()
	return err
}
