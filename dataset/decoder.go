package dataset

import (
	"fmt"
	"strings"

	"github.com/hackermd/dcmslide/dcmerr"
	"github.com/hackermd/dcmslide/dcmio"
	"github.com/hackermd/dcmslide/element"
	"github.com/hackermd/dcmslide/tag"
	"github.com/hackermd/dcmslide/value"
	"github.com/hackermd/dcmslide/vr"
)

// singleValuedVRs are the character-string VRs that are contractually
// single-valued at the DICOM layer; a decoded backslash in their buffer is
// a framing error rather than a second value.
var singleValuedVRs = map[vr.VR]bool{
	vr.ShortText:                   true,
	vr.LongText:                    true,
	vr.UniversalResourceIdentifier: true,
	vr.UnlimitedText:               true,
}

// Decoder walks a byte stream into Elements, recursing through nested
// Sequences as needed. It borrows a dcmio.Reader for the duration of a
// parse; a Decoder is not safe for concurrent use.
type Decoder struct {
	r  *dcmio.Reader
	hd *dcmio.HeaderDecoder
}

// NewDecoder creates a Decoder over r.
func NewDecoder(r *dcmio.Reader) *Decoder {
	return &Decoder{r: r, hd: dcmio.NewHeaderDecoder(r)}
}

// Reader returns the byte reader this Decoder draws from, so callers that
// frame a region around a sequence of DecodeElement calls (the File Meta
// Reader and Dataset Reader) can use its position control directly.
func (d *Decoder) Reader() *dcmio.Reader {
	return d.r
}

// HeaderDecoder returns the header decoder this Decoder draws from, for
// callers that need to peek a header's tag before deciding whether to
// commit to decoding its value.
func (d *Decoder) HeaderDecoder() *dcmio.HeaderDecoder {
	return d.hd
}

// DecodeElement reads one Element Header and its value under mode.
func (d *Decoder) DecodeElement(mode dcmio.Mode) (*element.Element, error) {
	eh, err := d.hd.ReadElementHeader(mode)
	if err != nil {
		return nil, err
	}
	val, err := d.decodeValue(eh, mode)
	if err != nil {
		return nil, err
	}
	return element.NewElement(eh.Tag, eh.VR, val)
}

// DecodeValueForHeader decodes the value that follows an Element Header
// already read by the caller. File Meta Reader and Dataset Reader both need
// to inspect a header's tag (to decide whether it still belongs to the
// region they're reading) before committing to decode its value, so they
// read the header themselves and hand it back in here instead of calling
// DecodeElement.
func (d *Decoder) DecodeValueForHeader(eh dcmio.ElementHeader, mode dcmio.Mode) (value.Value, error) {
	return d.decodeValue(eh, mode)
}

func (d *Decoder) decodeValue(eh dcmio.ElementHeader, mode dcmio.Mode) (value.Value, error) {
	switch {
	case eh.VR == vr.Invalid:
		// Only reachable in explicit mode; the dictionary substitutes UN
		// for unknown tags in implicit mode.
		return nil, fmt.Errorf("%w: %q for tag %s", dcmerr.ErrUnknownVR, eh.RawVR, eh.Tag)
	case eh.VR == vr.SequenceOfItems:
		return d.decodeSequence(eh.Length, mode)
	case eh.VR == vr.AttributeTag:
		return d.decodeAttributeTagValue(eh)
	case eh.VR.IsStringType():
		return d.decodeStringValue(eh)
	case eh.VR.IsFixedWidthNumeric():
		return d.decodeNumericValue(eh)
	default:
		return d.decodeBytesValue(eh)
	}
}

func isASCIISpace(b byte) bool {
	return b == ' ' || (b >= '\t' && b <= '\r')
}

// decodeStringValue implements the character-string VR contract: split on
// backslash, strip one trailing whitespace byte (except for UI, which
// preserves its NUL pad verbatim), and enforce single-valuedness for
// ST/LT/UR/UT.
func (d *Decoder) decodeStringValue(eh dcmio.ElementHeader) (value.Value, error) {
	raw, err := d.r.ReadBytes(int(eh.Length))
	if err != nil {
		return nil, err
	}

	if len(raw) > 0 && eh.VR != vr.UniqueIdentifier && isASCIISpace(raw[len(raw)-1]) {
		raw = raw[:len(raw)-1]
	}

	parts := strings.Split(string(raw), "\\")

	if singleValuedVRs[eh.VR] && len(parts) > 1 {
		return nil, fmt.Errorf("%w: tag %s VR %s has %d parts", dcmerr.ErrUnexpectedVM, eh.Tag, eh.VR, len(parts))
	}

	sv, err := value.NewStringValue(eh.VR, parts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dcmerr.ErrElementConstructionFailed, err)
	}
	return sv, nil
}

// decodeNumericValue implements the fixed-width numeric VR contract: FD, FL,
// SS, SL, SV, US, UL, UV decode length/element_size little-endian values.
func (d *Decoder) decodeNumericValue(eh dcmio.ElementHeader) (value.Value, error) {
	size := eh.VR.FixedElementSize()
	if int(eh.Length)%size != 0 {
		return nil, fmt.Errorf("%w: tag %s VR %s length %d not a multiple of %d",
			dcmerr.ErrMalformedLength, eh.Tag, eh.VR, eh.Length, size)
	}
	count := int(eh.Length) / size

	if eh.VR == vr.FloatingPointSingle || eh.VR == vr.FloatingPointDouble {
		values := make([]float64, count)
		for i := 0; i < count; i++ {
			if eh.VR == vr.FloatingPointSingle {
				v, err := d.r.ReadFloat32()
				if err != nil {
					return nil, err
				}
				values[i] = float64(v)
			} else {
				v, err := d.r.ReadFloat64()
				if err != nil {
					return nil, err
				}
				values[i] = v
			}
		}
		fv, err := value.NewFloatValue(eh.VR, values)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", dcmerr.ErrElementConstructionFailed, err)
		}
		return fv, nil
	}

	values := make([]int64, count)
	for i := 0; i < count; i++ {
		var v int64
		var err error
		switch eh.VR {
		case vr.SignedShort:
			var x int16
			x, err = d.r.ReadInt16()
			v = int64(x)
		case vr.UnsignedShort:
			var x uint16
			x, err = d.r.ReadUint16()
			v = int64(x)
		case vr.SignedLong:
			var x int32
			x, err = d.r.ReadInt32()
			v = int64(x)
		case vr.UnsignedLong:
			var x uint32
			x, err = d.r.ReadUint32()
			v = int64(x)
		case vr.SignedVeryLong:
			v, err = d.r.ReadInt64()
		case vr.UnsignedVeryLong:
			var x uint64
			x, err = d.r.ReadUint64()
			v = int64(x)
		}
		if err != nil {
			return nil, err
		}
		values[i] = v
	}

	iv, err := value.NewIntValue(eh.VR, values)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dcmerr.ErrElementConstructionFailed, err)
	}
	return iv, nil
}

// decodeAttributeTagValue decodes AT: each value is a (group, element) pair
// packed the same way tag.Tag.Uint32 packs a Tag. value.IntValue already
// models AT and its on-wire shape is a 4-byte fixed width like UL, so it is
// decoded here rather than falling through to the opaque-bytes path.
func (d *Decoder) decodeAttributeTagValue(eh dcmio.ElementHeader) (value.Value, error) {
	if eh.Length%4 != 0 {
		return nil, fmt.Errorf("%w: tag %s VR AT length %d not a multiple of 4",
			dcmerr.ErrMalformedLength, eh.Tag, eh.Length)
	}
	count := int(eh.Length) / 4
	values := make([]int64, count)
	for i := 0; i < count; i++ {
		group, err := d.r.ReadUint16()
		if err != nil {
			return nil, err
		}
		elem, err := d.r.ReadUint16()
		if err != nil {
			return nil, err
		}
		values[i] = int64(uint32(group)<<16 | uint32(elem))
	}
	iv, err := value.NewIntValue(vr.AttributeTag, values)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dcmerr.ErrElementConstructionFailed, err)
	}
	return iv, nil
}

// decodeBytesValue implements the opaque VR contract: OB, OD, OF, OL, OV,
// OW, UN carry length raw bytes verbatim. UC is handled by
// decodeStringValue instead, since value.NewStringValue is the only
// constructor the value package offers for it.
func (d *Decoder) decodeBytesValue(eh dcmio.ElementHeader) (value.Value, error) {
	if eh.Length == dcmio.UndefinedLength {
		return nil, fmt.Errorf("%w: undefined length for non-sequence VR %s at tag %s",
			dcmerr.ErrMalformedLength, eh.VR, eh.Tag)
	}
	data, err := d.r.ReadBytes(int(eh.Length))
	if err != nil {
		return nil, err
	}
	bv, err := value.NewBytesValue(eh.VR, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dcmerr.ErrElementConstructionFailed, err)
	}
	return bv, nil
}

// decodeSequence implements the Sequence Walker: it iterates Items inside a
// Sequence, handling both defined-length (byte budget tracked via the
// reader's running position) and undefined-length (Sequence-Delimitation
// terminated) framing, and each Item's own defined/undefined-length body.
func (d *Decoder) decodeSequence(length uint32, mode dcmio.Mode) (*SequenceValue, error) {
	undefined := length == dcmio.UndefinedLength
	startOffset, err := d.r.Tell()
	if err != nil {
		return nil, err
	}

	items := make([]*Item, 0)

	for {
		ih, err := d.hd.ReadItemHeader()
		if err != nil {
			return nil, err
		}
		if ih.Tag.Equals(tag.SequenceDelimitationTag) {
			break
		}
		if !ih.Tag.Equals(tag.ItemTag) {
			return nil, fmt.Errorf("%w: %s", dcmerr.ErrExpectedItem, ih.Tag)
		}

		item, err := d.decodeItem(ih.Length, mode)
		if err != nil {
			return nil, err
		}
		items = append(items, item)

		if !undefined {
			consumed, err := d.r.Tell()
			if err != nil {
				return nil, err
			}
			delta := consumed - startOffset
			if delta == int64(length) {
				break
			}
			if delta > int64(length) {
				return nil, fmt.Errorf("%w: sequence consumed %d of declared %d bytes", dcmerr.ErrLengthOverflow, delta, length)
			}
		}
	}

	return NewSequenceValue(items), nil
}

// decodeItem builds one Sequence Item's Dataset, honoring its own
// defined/undefined-length framing and probing for Item-Delimitation via a
// 4-byte lookahead that never leaves the stream displaced on a miss.
func (d *Decoder) decodeItem(itemLength uint32, mode dcmio.Mode) (*Item, error) {
	itemUndefined := itemLength == dcmio.UndefinedLength
	itemStart, err := d.r.Tell()
	if err != nil {
		return nil, err
	}

	item := NewDataSet()

	for {
		if itemUndefined {
			isDelim, err := d.peekIsItemDelimiter()
			if err != nil {
				return nil, err
			}
			if isDelim {
				if _, err := d.hd.ReadItemHeader(); err != nil {
					return nil, err
				}
				break
			}
		}

		elem, err := d.DecodeElement(mode)
		if err != nil {
			return nil, err
		}
		if err := item.Add(elem); err != nil {
			return nil, err
		}

		if !itemUndefined {
			consumed, err := d.r.Tell()
			if err != nil {
				return nil, err
			}
			delta := consumed - itemStart
			if delta == int64(itemLength) {
				break
			}
			if delta > int64(itemLength) {
				return nil, fmt.Errorf("%w: item consumed %d of declared %d bytes", dcmerr.ErrLengthOverflow, delta, itemLength)
			}
		}
	}

	return item, nil
}

// peekIsItemDelimiter reports whether the next 4 bytes decode as the
// Item-Delimitation tag, without advancing the stream.
func (d *Decoder) peekIsItemDelimiter() (bool, error) {
	raw, err := d.r.PeekUint32()
	if err != nil {
		return false, err
	}
	group := uint16(raw & 0xFFFF)
	elementNum := uint16(raw >> 16)
	return group == tag.ItemDelimitationTag.Group && elementNum == tag.ItemDelimitationTag.Element, nil
}
