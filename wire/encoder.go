package wire

import (
	"io"

	"github.com/pkg/errors"

	"github.com/jpipkit/jpip-base/databin"
)

// Encoder writes a response. Like the decoder it remembers the class and CSn
// of the previous message and emits the shortest header form.
type Encoder struct {
	w   io.Writer
	buf []byte

	lastClass databin.Class
	lastCSn   uint64
}

// NewEncoder creates an encoder in the initial state (class 0, CSn 0).
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// WriteMessage writes one data-bin message.
func (e *Encoder) WriteMessage(m *Message) error {
	buf, err := e.appendMessage(e.buf[:0], m)
	e.buf = buf
	if err != nil {
		return err
	}
	if _, err := e.w.Write(buf); err != nil {
		return err
	}
	e.lastClass, e.lastCSn = m.Class, m.CSn
	return nil
}

// WriteEndOfResponse writes the single zero byte closing the response.
func (e *Encoder) WriteEndOfResponse() error {
	_, err := e.w.Write([]byte{endOfResponse})
	return err
}

func (e *Encoder) appendMessage(dst []byte, m *Message) ([]byte, error) {
	if !m.Class.Valid() {
		return dst, errors.Wrapf(ErrUnknownClass, "class %d", m.Class)
	}
	if m.InClassID > MaxInClassID {
		return dst, errors.Wrapf(ErrVBASRange, "in-class id %d", m.InClassID)
	}

	indicator := byte(idOnly)
	switch {
	case m.CSn != e.lastCSn:
		indicator = idClassCSn
	case m.Class != e.lastClass:
		indicator = idClass
	}

	// 4 value bits in the header byte, 7 in every continuation byte
	extra := 0
	for m.InClassID>>(nibbleBits+7*uint(extra)) != 0 {
		extra++
	}
	hdr := indicator<<indicatorShift | byte(m.InClassID>>(7*uint(extra)))&hdrNibble
	if m.Last {
		hdr |= hdrLast
	}
	if extra > 0 {
		hdr |= hdrMore
	}
	dst = append(dst, hdr)
	for i := extra - 1; i >= 0; i-- {
		b := byte(m.InClassID>>(7*uint(i))) & vbasMask
		if i > 0 {
			b |= vbasMore
		}
		dst = append(dst, b)
	}

	fields := make([]uint64, 0, 5)
	if indicator >= idClass {
		fields = append(fields, uint64(m.Class))
	}
	if indicator == idClassCSn {
		fields = append(fields, m.CSn)
	}
	fields = append(fields, m.Offset, uint64(len(m.Body)))
	if m.Class.HasAux() {
		fields = append(fields, m.Aux)
	}
	var err error
	for _, v := range fields {
		if dst, err = AppendVBAS(dst, v); err != nil {
			return dst, err
		}
	}
	return append(dst, m.Body...), nil
}
