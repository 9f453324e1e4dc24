package dcmfile_test

import (
	"bytes"
	"encoding/binary"

	"github.com/hackermd/dcmslide/tag"
)

// fileBuilder assembles a Part 10 byte stream by hand with encoding/binary,
// element by element, so each test controls the exact on-wire framing it
// exercises.
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

// writeExplicitShort appends an Explicit VR element using the 2-byte
// length field class (short-length VRs).
func (b *fileBuilder) writeExplicitShort(t tag.Tag, vrStr string, value []byte) *fileBuilder {
	b.writeTag(t)
	b.buf.WriteString(vrStr)
	_ = binary.Write(&b.buf, binary.LittleEndian, uint16(len(value)))
	b.buf.Write(value)
	return b
}

// writeExplicitLong appends an Explicit VR element using the 4-byte
// length field class (long-length VRs: OB, OW, SQ, UN, ...).
func (b *fileBuilder) writeExplicitLong(t tag.Tag, vrStr string, length uint32, value []byte) *fileBuilder {
	b.writeTag(t)
	b.buf.WriteString(vrStr)
	_ = binary.Write(&b.buf, binary.LittleEndian, uint16(0)) // reserved
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

// writeFileMeta writes a minimal File Meta group: Group Length, SOP Class
// UID, SOP Instance UID, and Transfer Syntax UID, with the group length
// computed from the elements that follow it.
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

func (b *fileBuilder) bytes() []byte {
	return b.buf.Bytes()
}

func padUI(s string) []byte {
	if len(s)%2 != 0 {
		return append([]byte(s), 0x00)
	}
	return []byte(s)
}

func uint32Bytes(v uint32) []byte {
	out := make([]byte, 4)
	binary.LittleEndian.PutUint32(out, v)
	return out
}
