package dcmio_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackermd/dcmslide/dcmerr"
	"github.com/hackermd/dcmslide/dcmio"
	"github.com/hackermd/dcmslide/tag"
	"github.com/hackermd/dcmslide/vr"
)

func TestHeaderDecoder_ReadElementHeader_ExplicitShortLength(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, binary.Write(buf, binary.LittleEndian, uint16(0x0010)))
	require.NoError(t, binary.Write(buf, binary.LittleEndian, uint16(0x0010)))
	buf.WriteString("PN")
	require.NoError(t, binary.Write(buf, binary.LittleEndian, uint16(8)))

	r := dcmio.NewReader(bytes.NewReader(buf.Bytes()), binary.LittleEndian)
	hd := dcmio.NewHeaderDecoder(r)

	eh, err := hd.ReadElementHeader(dcmio.Explicit)
	require.NoError(t, err)
	assert.True(t, eh.Tag.Equals(tag.New(0x0010, 0x0010)))
	assert.Equal(t, vr.PersonName, eh.VR)
	assert.Equal(t, uint32(8), eh.Length)
}

func TestHeaderDecoder_ReadElementHeader_ExplicitLongLength(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, binary.Write(buf, binary.LittleEndian, uint16(0x7FE0)))
	require.NoError(t, binary.Write(buf, binary.LittleEndian, uint16(0x0010)))
	buf.WriteString("OB")
	require.NoError(t, binary.Write(buf, binary.LittleEndian, uint16(0))) // reserved
	require.NoError(t, binary.Write(buf, binary.LittleEndian, dcmio.UndefinedLength))

	r := dcmio.NewReader(bytes.NewReader(buf.Bytes()), binary.LittleEndian)
	hd := dcmio.NewHeaderDecoder(r)

	eh, err := hd.ReadElementHeader(dcmio.Explicit)
	require.NoError(t, err)
	assert.True(t, eh.Tag.Equals(tag.PixelDataTag))
	assert.Equal(t, vr.OtherByte, eh.VR)
	assert.Equal(t, dcmio.UndefinedLength, eh.Length)
}

func TestHeaderDecoder_ReadElementHeader_ReservedNonZeroFails(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, binary.Write(buf, binary.LittleEndian, uint16(0x7FE0)))
	require.NoError(t, binary.Write(buf, binary.LittleEndian, uint16(0x0010)))
	buf.WriteString("OB")
	require.NoError(t, binary.Write(buf, binary.LittleEndian, uint16(0x1234))) // reserved, non-zero
	require.NoError(t, binary.Write(buf, binary.LittleEndian, uint32(0)))

	r := dcmio.NewReader(bytes.NewReader(buf.Bytes()), binary.LittleEndian)
	hd := dcmio.NewHeaderDecoder(r)

	_, err := hd.ReadElementHeader(dcmio.Explicit)
	require.Error(t, err)
	assert.ErrorIs(t, err, dcmerr.ErrReservedNonZero)
}

func TestHeaderDecoder_ReadElementHeader_UnknownVRFramedLongLength(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, binary.Write(buf, binary.LittleEndian, uint16(0x0009)))
	require.NoError(t, binary.Write(buf, binary.LittleEndian, uint16(0x0001)))
	buf.WriteString("XX")
	require.NoError(t, binary.Write(buf, binary.LittleEndian, uint16(0))) // reserved
	require.NoError(t, binary.Write(buf, binary.LittleEndian, uint32(4)))
	buf.Write([]byte{1, 2, 3, 4})

	r := dcmio.NewReader(bytes.NewReader(buf.Bytes()), binary.LittleEndian)
	hd := dcmio.NewHeaderDecoder(r)

	eh, err := hd.ReadElementHeader(dcmio.Explicit)
	require.NoError(t, err)
	assert.Equal(t, vr.Invalid, eh.VR)
	assert.Equal(t, "XX", eh.RawVR)
	assert.Equal(t, uint32(4), eh.Length)

	// The length field was consumed, so the reader sits on the value bytes.
	pos, err := r.Tell()
	require.NoError(t, err)
	assert.Equal(t, int64(12), pos)
}

func TestHeaderDecoder_ReadElementHeader_Implicit(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, binary.Write(buf, binary.LittleEndian, uint16(0x0028)))
	require.NoError(t, binary.Write(buf, binary.LittleEndian, uint16(0x0010)))
	require.NoError(t, binary.Write(buf, binary.LittleEndian, uint32(2)))

	r := dcmio.NewReader(bytes.NewReader(buf.Bytes()), binary.LittleEndian)
	hd := dcmio.NewHeaderDecoder(r)

	eh, err := hd.ReadElementHeader(dcmio.Implicit)
	require.NoError(t, err)
	assert.True(t, eh.Tag.Equals(tag.Rows))
	assert.Equal(t, vr.UnsignedShort, eh.VR)
	assert.Equal(t, uint32(2), eh.Length)
}

func TestHeaderDecoder_ReadItemHeader(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, binary.Write(buf, binary.LittleEndian, uint16(0xFFFE)))
	require.NoError(t, binary.Write(buf, binary.LittleEndian, uint16(0xE000)))
	require.NoError(t, binary.Write(buf, binary.LittleEndian, uint32(100)))

	r := dcmio.NewReader(bytes.NewReader(buf.Bytes()), binary.LittleEndian)
	hd := dcmio.NewHeaderDecoder(r)

	ih, err := hd.ReadItemHeader()
	require.NoError(t, err)
	assert.True(t, ih.Tag.Equals(tag.ItemTag))
	assert.Equal(t, uint32(100), ih.Length)
}

func TestHeaderDecoder_ReadItemHeader_InvalidTagFails(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, binary.Write(buf, binary.LittleEndian, uint16(0x0010)))
	require.NoError(t, binary.Write(buf, binary.LittleEndian, uint16(0x0010)))
	require.NoError(t, binary.Write(buf, binary.LittleEndian, uint32(0)))

	r := dcmio.NewReader(bytes.NewReader(buf.Bytes()), binary.LittleEndian)
	hd := dcmio.NewHeaderDecoder(r)

	_, err := hd.ReadItemHeader()
	require.Error(t, err)
	assert.ErrorIs(t, err, dcmerr.ErrInvalidItemTag)
}
