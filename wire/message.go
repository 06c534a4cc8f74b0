// Package wire implements the JPIP data-bin message stream framing
// (ISO/IEC 15444-9 Annex A): message headers with VBAS fields, bodies and the
// End-Of-Response marker.
package wire

import (
	"fmt"

	"github.com/jpipkit/jpip-base/databin"
)

const (
	endOfResponse = 0x00

	hdrMore      = 0x80
	hdrIndicator = 0x60
	hdrLast      = 0x10
	hdrNibble    = 0x0f

	indicatorShift = 5
)

// bin-id indicator values
const (
	idOnly     = 1 // class and CSn reused from the previous message
	idClass    = 2 // class follows, CSn reused
	idClassCSn = 3 // class and CSn follow
)

const (
	maxIDBytes = 9
	nibbleBits = 4
	// MaxInClassID is the greatest in-class id a 9-byte bin-id carries.
	MaxInClassID = 1<<(nibbleBits+7*(maxIDBytes-1)) - 1
)

// Message is one decoded data-bin message. A Message with EOR set carries no
// other fields.
type Message struct {
	EOR bool

	Class     databin.Class
	InClassID uint64
	CSn       uint64
	Offset    uint64
	// Last is set if the body ends the data-bin.
	Last bool
	// Aux is present for odd classes only. For extended precincts it is the
	// number of quality layers completed by the body end.
	Aux  uint64
	Body []byte
}

// ID is the data-bin the message belongs to.
func (m *Message) ID() databin.ID {
	return databin.ID{Class: m.Class, InClassID: m.InClassID}
}

// End is the absolute offset right past the body.
func (m *Message) End() uint64 {
	return m.Offset + uint64(len(m.Body))
}

func (m *Message) String() string {
	if m.EOR {
		return "EOR"
	}
	return fmt.Sprintf("%s cs=%d [%d+%d] last=%v aux=%d", m.ID(), m.CSn, m.Offset, len(m.Body), m.Last, m.Aux)
}
