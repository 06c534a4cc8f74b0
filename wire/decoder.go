package wire

import (
	"bufio"
	"bytes"
	"io"

	"github.com/pkg/errors"

	"github.com/jpipkit/jpip-base/databin"
)

// Source is what the decoder consumes. Any io.Reader is adapted with a bufio.Reader.
type Source interface {
	io.Reader
	io.ByteReader
}

// Decoder reads the messages of one response. The class and CSn of the last
// message are kept across calls, messages may omit them.
// Not safe for concurrent use.
type Decoder struct {
	src Source

	lastClass databin.Class
	lastCSn   uint64
	eor       bool
}

// NewDecoder creates a decoder in the initial state (class 0, CSn 0).
func NewDecoder(r io.Reader) *Decoder {
	src, ok := r.(Source)
	if !ok {
		src = bufio.NewReader(r)
	}
	return &Decoder{src: src}
}

// Next decodes exactly one message.
// It returns io.EOF if the source ends on a message boundary.
func (d *Decoder) Next() (*Message, error) {
	if d.eor {
		return nil, ErrAfterEndOfResponse
	}
	hdr, err := d.src.ReadByte()
	if err != nil {
		return nil, err
	}
	if hdr == endOfResponse {
		d.eor = true
		return &Message{EOR: true}, nil
	}

	msg := &Message{
		Last:  hdr&hdrLast != 0,
		Class: d.lastClass,
		CSn:   d.lastCSn,
	}
	indicator := (hdr & hdrIndicator) >> indicatorShift
	if indicator == 0 {
		return nil, errors.Wrapf(ErrBadHeader, "header 0x%02x", hdr)
	}

	msg.InClassID, err = d.readInClassID(hdr)
	if err != nil {
		return nil, err
	}
	if indicator >= idClass {
		class, err := d.vbas("class")
		if err != nil {
			return nil, err
		}
		if class > uint64(databin.MaxClass) {
			return nil, errors.Wrapf(ErrUnknownClass, "class %d", class)
		}
		msg.Class = databin.Class(class)
	}
	if indicator == idClassCSn {
		if msg.CSn, err = d.vbas("CSn"); err != nil {
			return nil, err
		}
	}
	if msg.Offset, err = d.vbas("offset"); err != nil {
		return nil, err
	}
	length, err := d.vbas("length")
	if err != nil {
		return nil, err
	}
	if msg.Class.HasAux() {
		if msg.Aux, err = d.vbas("aux"); err != nil {
			return nil, err
		}
	}
	if msg.Body, err = d.body(length); err != nil {
		return nil, err
	}

	d.lastClass = msg.Class
	d.lastCSn = msg.CSn
	return msg, nil
}

// Reset drops the decoder state to start a new response over src.
func (d *Decoder) Reset(r io.Reader) {
	*d = *NewDecoder(r)
}

func (d *Decoder) readInClassID(hdr byte) (uint64, error) {
	id := uint64(hdr & hdrNibble)
	more := hdr&hdrMore != 0
	for n := 1; more; n++ {
		if n == maxIDBytes {
			return 0, errors.Wrap(ErrVBASOverflow, "in-class id")
		}
		b, err := d.src.ReadByte()
		if err != nil {
			return 0, unexpected(err, "in-class id")
		}
		id = id<<7 | uint64(b&vbasMask)
		more = b&vbasMore != 0
	}
	return id, nil
}

func (d *Decoder) vbas(field string) (uint64, error) {
	v, err := ReadVBAS(d.src)
	if err != nil {
		if errors.Is(err, ErrProtocol) {
			return 0, errors.Wrap(err, field)
		}
		return 0, unexpected(err, field)
	}
	return v, nil
}

func (d *Decoder) body(length uint64) ([]byte, error) {
	if length == 0 {
		return nil, nil
	}
	// the buffer grows with what actually arrives, a forged length cannot exhaust memory
	var buf bytes.Buffer
	if _, err := io.CopyN(&buf, d.src, int64(length)); err != nil {
		return nil, unexpected(err, "body")
	}
	return buf.Bytes(), nil
}

// unexpected maps end of input inside a message to io.ErrUnexpectedEOF.
func unexpected(err error, field string) error {
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return errors.Wrap(err, field)
}
