package wire

import (
	"bytes"
	"io"
	"testing"

	"github.com/pkg/errors"
	"github.com/status-im/keycard-go/hexutils"
	"github.com/stretchr/testify/require"

	"github.com/jpipkit/jpip-base/databin"
)

func TestDecoderShortHeader(t *testing.T) {
	require := require.New(t)

	d := NewDecoder(bytes.NewReader(hexutils.HexToBytes("230502AABB")))
	msg, err := d.Next()
	require.NoError(err)
	require.Equal(&Message{
		Class:     databin.ClassPrecinct,
		InClassID: 3,
		Offset:    5,
		Body:      []byte{0xAA, 0xBB},
	}, msg)

	_, err = d.Next()
	require.Equal(io.EOF, err)
}

func TestDecoderEndOfResponse(t *testing.T) {
	require := require.New(t)

	d := NewDecoder(bytes.NewReader([]byte{0x00, 0x23, 0x05, 0x00}))
	msg, err := d.Next()
	require.NoError(err)
	require.True(msg.EOR)

	for i := 0; i < 2; i++ {
		_, err = d.Next()
		require.True(errors.Is(err, ErrAfterEndOfResponse))
		require.True(errors.Is(err, ErrProtocol))
	}
}

func TestDecoderState(t *testing.T) {
	require := require.New(t)

	input := hexutils.HexToBytes(
		// ext precinct 1, class and CSn, offset 0, 2 bytes, aux 1
		"61" + "01" + "07" + "00" + "02" + "01" + "0102" +
			// same class and CSn, in-class id 0x85, last byte
			"B1" + "05" + "02" + "01" + "03" + "03" +
			// main header, class only
			"50" + "06" + "00" + "01" + "FF")

	d := NewDecoder(bytes.NewReader(input))

	msg, err := d.Next()
	require.NoError(err)
	require.Equal(&Message{
		Class:     databin.ClassExtPrecinct,
		InClassID: 1,
		CSn:       7,
		Aux:       1,
		Body:      []byte{1, 2},
	}, msg)

	msg, err = d.Next()
	require.NoError(err)
	require.Equal(&Message{
		Class:     databin.ClassExtPrecinct,
		InClassID: 0x85,
		CSn:       7,
		Offset:    2,
		Last:      true,
		Aux:       3,
		Body:      []byte{3},
	}, msg)

	msg, err = d.Next()
	require.NoError(err)
	require.Equal(&Message{
		Class: databin.ClassMainHeader,
		CSn:   7,
		Last:  true,
		Body:  []byte{0xFF},
	}, msg)
}

func TestDecoderErrors(t *testing.T) {
	for name, tc := range map[string]struct {
		hex string
		err error
	}{
		"reserved indicator":   {"13", ErrBadHeader},
		"unknown class":        {"4109000100", ErrUnknownClass},
		"in-class id too long": {"A08080808080808080", ErrVBASOverflow},
		"offset too long":      {"2080808080808080808000", ErrVBASOverflow},
		"eof in id":            {"A0", io.ErrUnexpectedEOF},
		"eof in length":        {"2305", io.ErrUnexpectedEOF},
		"eof in aux":           {"410100" + "01", io.ErrUnexpectedEOF},
		"eof in body":          {"230503AABB", io.ErrUnexpectedEOF},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := NewDecoder(bytes.NewReader(hexutils.HexToBytes(tc.hex))).Next()
			require.Error(t, err)
			require.True(t, errors.Is(err, tc.err), err.Error())
		})
	}
}

func TestEncoderRoundTrip(t *testing.T) {
	require := require.New(t)

	msgs := []*Message{
		{Class: databin.ClassMainHeader, Body: []byte("main"), Last: true},
		{Class: databin.ClassExtPrecinct, InClassID: 17, Offset: 0, Aux: 2, Body: []byte{1, 2, 3}},
		{Class: databin.ClassExtPrecinct, InClassID: 17, Offset: 3, Aux: 4, Body: []byte{4}},
		{Class: databin.ClassExtPrecinct, InClassID: MaxInClassID, CSn: 1, Offset: 1 << 40, Body: []byte{5}},
		{Class: databin.ClassTileHeader, CSn: 1, Body: []byte{6, 7}, Last: true},
		{Class: databin.ClassMetadata, InClassID: 0x10, CSn: 1},
	}

	var buf bytes.Buffer
	e := NewEncoder(&buf)
	for _, m := range msgs {
		require.NoError(e.WriteMessage(m))
	}
	require.NoError(e.WriteEndOfResponse())

	d := NewDecoder(&buf)
	for _, m := range msgs {
		got, err := d.Next()
		require.NoError(err)
		require.Equal(m, got)
	}
	got, err := d.Next()
	require.NoError(err)
	require.True(got.EOR)
}

func TestEncoderShortestHeader(t *testing.T) {
	require := require.New(t)

	var buf bytes.Buffer
	e := NewEncoder(&buf)
	require.NoError(e.WriteMessage(&Message{InClassID: 3, Offset: 5, Body: []byte{0xAA, 0xBB}}))
	require.Equal(hexutils.HexToBytes("230502AABB"), buf.Bytes())

	err := e.WriteMessage(&Message{Class: 9})
	require.True(errors.Is(err, ErrUnknownClass))
	err = e.WriteMessage(&Message{InClassID: MaxInClassID + 1})
	require.True(errors.Is(err, ErrVBASRange))
}
