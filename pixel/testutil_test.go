package pixel_test

import (
	"bytes"
	"encoding/binary"

	"github.com/hackermd/dcmslide/tag"
)

// fileBuilder assembles a Part 10 byte stream by hand, the same way the
// dataset-reader tests do, scaled to fixtures with a Pixel Data element.
type fileBuilder struct {
	buf bytes.Buffer
}

func newFileBuilder() *fileBuilder {
	return &fileBuilder{}
}

func (b *fileBuilder) writePreambleAndMagic() *fileBuilder {
	b.buf.Write(make([]byte, 128))
	b.buf.WriteString("DICM")
	return b
}

func (b *fileBuilder) writeTag(t tag.Tag) {
	_ = binary.Write(&b.buf, binary.LittleEndian, t.Group)
	_ = binary.Write(&b.buf, binary.LittleEndian, t.Element)
}

func (b *fileBuilder) writeExplicitShort(t tag.Tag, vrStr string, value []byte) *fileBuilder {
	b.writeTag(t)
	b.buf.WriteString(vrStr)
	_ = binary.Write(&b.buf, binary.LittleEndian, uint16(len(value)))
	b.buf.Write(value)
	return b
}

func (b *fileBuilder) writeExplicitLong(t tag.Tag, vrStr string, length uint32, value []byte) *fileBuilder {
	b.writeTag(t)
	b.buf.WriteString(vrStr)
	_ = binary.Write(&b.buf, binary.LittleEndian, uint16(0))
	_ = binary.Write(&b.buf, binary.LittleEndian, length)
	b.buf.Write(value)
	return b
}

func (b *fileBuilder) writeItemHeader(t tag.Tag, length uint32) *fileBuilder {
	b.writeTag(t)
	_ = binary.Write(&b.buf, binary.LittleEndian, length)
	return b
}

func (b *fileBuilder) writeRaw(data []byte) *fileBuilder {
	b.buf.Write(data)
	return b
}

func (b *fileBuilder) writeUint16(v uint16) *fileBuilder {
	_ = binary.Write(&b.buf, binary.LittleEndian, v)
	return b
}

func (b *fileBuilder) writeUint32(v uint32) *fileBuilder {
	_ = binary.Write(&b.buf, binary.LittleEndian, v)
	return b
}

// writeFileMeta writes a minimal File Meta group declaring transferSyntaxUID.
func (b *fileBuilder) writeFileMeta(transferSyntaxUID string) *fileBuilder {
	var body bytes.Buffer
	tmp := &fileBuilder{buf: body}
	tmp.writeExplicitShort(tag.New(0x0002, 0x0002), "UI", padUI("1.2.840.10008.5.1.4.1.1.7"))
	tmp.writeExplicitShort(tag.New(0x0002, 0x0003), "UI", padUI("1.2.3.4.5.6.7.8.9"))
	tmp.writeExplicitShort(tag.New(0x0002, 0x0010), "UI", padUI(transferSyntaxUID))

	b.writeExplicitShort(tag.New(0x0002, 0x0000), "UL", uint32Bytes(uint32(tmp.buf.Len())))
	b.buf.Write(tmp.buf.Bytes())
	return b
}

// writeImagePixelModule writes the Image Pixel module attributes a
// PixelDescription needs, using the given geometry and photometric
// interpretation, plus Number of Frames only when numFrames > 1.
func (b *fileBuilder) writeImagePixelModule(rows, columns, samplesPerPixel, bitsAllocated uint16, photometric string, numFrames int) *fileBuilder {
	b.writeExplicitShort(tag.SamplesPerPixel, "US", uint16Bytes(samplesPerPixel))
	b.writeExplicitShort(tag.PhotometricInterpretation, "CS", padEven(photometric))
	b.writeExplicitShort(tag.Rows, "US", uint16Bytes(rows))
	b.writeExplicitShort(tag.Columns, "US", uint16Bytes(columns))
	if numFrames > 1 {
		nf := []byte(itoa(numFrames))
		b.writeExplicitShort(tag.NumberOfFrames, "IS", padEven(string(nf)))
	}
	b.writeExplicitShort(tag.BitsAllocated, "US", uint16Bytes(bitsAllocated))
	b.writeExplicitShort(tag.BitsStored, "US", uint16Bytes(bitsAllocated))
	b.writeExplicitShort(tag.HighBit, "US", uint16Bytes(bitsAllocated-1))
	b.writeExplicitShort(tag.PixelRepresentation, "US", uint16Bytes(0))
	return b
}

func (b *fileBuilder) bytes() []byte {
	return b.buf.Bytes()
}

func padUI(s string) []byte {
	if len(s)%2 != 0 {
		return append([]byte(s), 0x00)
	}
	return []byte(s)
}

func padEven(s string) []byte {
	if len(s)%2 != 0 {
		return append([]byte(s), ' ')
	}
	return []byte(s)
}

func uint32Bytes(v uint32) []byte {
	out := make([]byte, 4)
	binary.LittleEndian.PutUint32(out, v)
	return out
}

func uint16Bytes(v uint16) []byte {
	out := make([]byte, 2)
	binary.LittleEndian.PutUint16(out, v)
	return out
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	if neg {
		digits = append([]byte{'-'}, digits...)
	}
	return string(digits)
}
