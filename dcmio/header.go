package dcmio

import (
	"fmt"

	"github.com/hackermd/dcmslide/dcmerr"
	"github.com/hackermd/dcmslide/tag"
	"github.com/hackermd/dcmslide/vr"
)

// Mode selects whether the Header Decoder expects an on-wire VR (Explicit)
// or must resolve it from the dictionary (Implicit).
type Mode int

const (
	Implicit Mode = iota
	Explicit
)

// ElementHeader is the decoded (tag, VR, length) triple that precedes every
// data element's value. RawVR is the two-character code as read off the
// wire in explicit mode; when VR is vr.Invalid it names the unrecognized
// code for the value decoder's error.
type ElementHeader struct {
	Tag    tag.Tag
	VR     vr.VR
	RawVR  string
	Length uint32
}

// ItemHeader is the decoded (tag, length) pair that precedes every Sequence
// Item and the sentinel Item/Item-Delimitation/Sequence-Delimitation tags.
type ItemHeader struct {
	Tag    tag.Tag
	Length uint32
}

// UndefinedLength is the sentinel 0xFFFFFFFF length marking a Sequence,
// Item, or (for private encapsulated pixel data) an OB/OW element whose
// content is delimited by a terminating tag instead of a byte count.
const UndefinedLength uint32 = 0xFFFFFFFF

// HeaderDecoder reads Element and Item headers from a Reader, honoring the
// explicit/implicit mode and the VR-to-length-field-width table.
type HeaderDecoder struct {
	r *Reader
}

// NewHeaderDecoder creates a HeaderDecoder over r.
func NewHeaderDecoder(r *Reader) *HeaderDecoder {
	return &HeaderDecoder{r: r}
}

// ReadTag reads a tag as two consecutive 16-bit little-endian words.
func (d *HeaderDecoder) ReadTag() (tag.Tag, error) {
	group, err := d.r.ReadUint16()
	if err != nil {
		return tag.Tag{}, fmt.Errorf("%w: reading tag group", err)
	}
	element, err := d.r.ReadUint16()
	if err != nil {
		return tag.Tag{}, fmt.Errorf("%w: reading tag element", err)
	}
	return tag.New(group, element), nil
}

// ReadElementHeader reads a full Element Header under the given mode. The
// sentinel tags (ITEM, ITEM_DELIM, SQ_DELIM) never reach this path; callers
// that might encounter them (the Sequence Walker) read via ReadItemHeader
// or PeekUint32 first.
func (d *HeaderDecoder) ReadElementHeader(mode Mode) (ElementHeader, error) {
	t, err := d.ReadTag()
	if err != nil {
		return ElementHeader{}, err
	}

	if mode == Implicit {
		length, err := d.r.ReadUint32()
		if err != nil {
			return ElementHeader{}, fmt.Errorf("%w: reading length for tag %s", err, t)
		}
		return ElementHeader{Tag: t, VR: tag.LookupVR(t), Length: length}, nil
	}

	vrBytes, err := d.r.ReadBytes(2)
	if err != nil {
		return ElementHeader{}, fmt.Errorf("%w: reading VR for tag %s", err, t)
	}
	vrStr := string(vrBytes)
	// An unrecognized code parses to vr.Invalid and is framed long-length,
	// so its length field is still consumed and the stream stays in sync;
	// the value decoder rejects it as ErrUnknownVR.
	v, _ := vr.Parse(vrStr)

	var length uint32
	if v == vr.Invalid || v.UsesExplicitLength32() {
		reserved, err := d.r.ReadUint16()
		if err != nil {
			return ElementHeader{}, fmt.Errorf("%w: reading reserved bytes for tag %s", err, t)
		}
		if reserved != 0x0000 {
			return ElementHeader{}, fmt.Errorf("%w: tag %s VR %q", dcmerr.ErrReservedNonZero, t, vrStr)
		}
		length, err = d.r.ReadUint32()
		if err != nil {
			return ElementHeader{}, fmt.Errorf("%w: reading 32-bit length for tag %s", err, t)
		}
	} else {
		length16, err := d.r.ReadUint16()
		if err != nil {
			return ElementHeader{}, fmt.Errorf("%w: reading 16-bit length for tag %s", err, t)
		}
		length = uint32(length16)
	}

	return ElementHeader{Tag: t, VR: v, RawVR: vrStr, Length: length}, nil
}

// ReadItemHeader reads a tag + u32 length pair, failing ErrInvalidItemTag
// unless the tag is one of ITEM, ITEM_DELIM, or SQ_DELIM.
func (d *HeaderDecoder) ReadItemHeader() (ItemHeader, error) {
	t, err := d.ReadTag()
	if err != nil {
		return ItemHeader{}, err
	}
	if !t.Equals(tag.ItemTag) && !t.Equals(tag.ItemDelimitationTag) && !t.Equals(tag.SequenceDelimitationTag) {
		return ItemHeader{}, fmt.Errorf("%w: %s", dcmerr.ErrInvalidItemTag, t)
	}
	length, err := d.r.ReadUint32()
	if err != nil {
		return ItemHeader{}, fmt.Errorf("%w: reading item length for %s", err, t)
	}
	return ItemHeader{Tag: t, Length: length}, nil
}
