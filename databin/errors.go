package databin

import (
	"github.com/pkg/errors"

	"github.com/jpipkit/jpip-base/stream"
)

var (
	// ErrLayerRegression is returned when a layer checkpoint claims fewer bytes
	// than an already known lower layer.
	ErrLayerRegression = errors.WithMessage(stream.ErrLogic, "layer checkpoint regression")
	// ErrCheckpointRange is returned when a checkpoint length does not fit 32 bits.
	ErrCheckpointRange = errors.WithMessage(stream.ErrLogic, "layer checkpoint out of range")
)
