package wire

import "github.com/pkg/errors"

var (
	// ErrProtocol is the root of every malformed-input error. A protocol error
	// is fatal to the response being decoded.
	ErrProtocol = errors.New("jpip protocol error")

	ErrVBASOverflow       = errors.WithMessage(ErrProtocol, "VBAS longer than 9 bytes")
	ErrUnknownClass       = errors.WithMessage(ErrProtocol, "unknown data-bin class")
	ErrBadHeader          = errors.WithMessage(ErrProtocol, "reserved bin-id indicator")
	ErrAfterEndOfResponse = errors.WithMessage(ErrProtocol, "message after end of response")

	// ErrVBASRange is returned by the encoder for values the wire cannot carry.
	ErrVBASRange = errors.New("value out of VBAS range")
)
