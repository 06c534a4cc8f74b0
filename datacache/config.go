package datacache

import (
	"time"

	"github.com/jpipkit/jpip-base/eviction"
	"github.com/jpipkit/jpip-base/utils/cachescale"
	"github.com/jpipkit/jpip-base/utils/datasemaphore"
)

// PipelineConfig sizes the concurrent ingest pipeline.
type PipelineConfig struct {
	// Workers is the number of ingest goroutines.
	Workers int
	// QueueSize is the number of messages queued per worker.
	QueueSize int
	// MaxInflight bounds the messages accepted but not yet ingested.
	MaxInflight datasemaphore.Metric
	// AcquireTimeout is how long Submit waits for room in MaxInflight.
	AcquireTimeout time.Duration
}

// Config of the data-bin cache.
type Config struct {
	Eviction eviction.Policy
	// MaxBytes is the precinct byte budget the eviction policy enforces.
	MaxBytes uint64

	Pipeline PipelineConfig
}

// DefaultConfig returns the default cache config, sizes scaled by scale.
func DefaultConfig(scale cachescale.Func) Config {
	return Config{
		Eviction: eviction.LRU,
		MaxBytes: scale.U64(128 * 1024 * 1024),
		Pipeline: PipelineConfig{
			Workers:   4,
			QueueSize: 256,
			MaxInflight: datasemaphore.Metric{
				Num:  scale.U64(10000),
				Size: scale.U64(32 * 1024 * 1024),
			},
			AcquireTimeout: 10 * time.Second,
		},
	}
}

// LiteConfig returns the config for tests.
func LiteConfig() Config {
	return Config{
		Eviction: eviction.LRU,
		MaxBytes: 64 * 1024,
		Pipeline: PipelineConfig{
			Workers:   2,
			QueueSize: 16,
			MaxInflight: datasemaphore.Metric{
				Num:  100,
				Size: 1024 * 1024,
			},
			AcquireTimeout: time.Second,
		},
	}
}
