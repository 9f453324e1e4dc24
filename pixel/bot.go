package pixel

import (
	"encoding/binary"
	"fmt"

	"github.com/hackermd/dcmslide/dataset"
	"github.com/hackermd/dcmslide/dcmerr"
	"github.com/hackermd/dcmslide/dcmfile"
	"github.com/hackermd/dcmslide/tag"
	"github.com/hackermd/dcmslide/uid"
	"github.com/hackermd/dcmslide/value"
)

// BOT is the Basic Offset Table: one byte offset per frame. Each offset
// identifies the start of that frame's Frame Item header (encapsulated
// transfer syntaxes) or its first pixel byte (native transfer syntaxes),
// measured from the first byte following the BOT Item. offsets[0] is
// always 0.
type BOT struct {
	NumFrames uint32   `validate:"gt=0"`
	Offsets   []uint64 `validate:"required"`
}

// newBOT wraps construction so every reader/builder path returns a table
// that satisfies the struct's invariants.
func newBOT(numFrames int, offsets []uint64) (*BOT, error) {
	bot := &BOT{NumFrames: uint32(numFrames), Offsets: offsets}
	if err := validate.Struct(bot); err != nil {
		return nil, fmt.Errorf("%w: %v", dcmerr.ErrMalformedBOT, err)
	}
	return bot, nil
}

// ReadBOT reads the Basic Offset Table an encapsulated transfer syntax
// stores inline in the first Item following the Pixel Data element, or
// decodes it from the Extended Offset Table attribute if the inline table
// is empty. It does not scan Frame Items itself; if it returns a false
// second value, no table is present on disk and BuildBOT must be called
// instead.
//
// ReadMetadata must already have run so h.PixelDataOffset is set. ReadBOT
// does not check the transfer syntax: on a native Pixel Data element it
// reads the first pixel bytes as an Item header and returns an error.
func ReadBOT(h *dcmfile.Handle, metadata *dataset.DataSet) (*BOT, bool, error) {
	pixelDataOffset, hasPixelData := h.PixelDataOffset()
	if !hasPixelData {
		return nil, false, fmt.Errorf("%w: dataset has no pixel data element", dcmerr.ErrMalformedBOT)
	}
	numFrames, err := NumberOfFrames(metadata)
	if err != nil {
		return nil, false, err
	}

	r := h.Decoder().Reader()
	hd := h.Decoder().HeaderDecoder()

	if err := r.SeekAbs(pixelDataOffset); err != nil {
		return nil, false, err
	}

	eh, err := hd.ReadElementHeader(h.Mode())
	if err != nil {
		return nil, false, err
	}
	if !eh.Tag.IsPixelDataFamily() {
		return nil, false, fmt.Errorf("%w: tag %s is not a pixel-data element", dcmerr.ErrMalformedBOT, eh.Tag)
	}

	botItem, err := hd.ReadItemHeader()
	if err != nil {
		return nil, false, err
	}
	if !botItem.Tag.Equals(tag.ItemTag) {
		return nil, false, fmt.Errorf("%w: expected ITEM, got %s", dcmerr.ErrExpectedItem, botItem.Tag)
	}

	if botItem.Length > 0 {
		if botItem.Length%4 != 0 {
			return nil, false, fmt.Errorf("%w: BOT item length %d not a multiple of 4", dcmerr.ErrMalformedBOT, botItem.Length)
		}
		count := int(botItem.Length / 4)
		if count != numFrames {
			return nil, false, fmt.Errorf("%w: BOT has %d entries for %d frames", dcmerr.ErrMalformedBOT, count, numFrames)
		}
		offsets := make([]uint64, count)
		for i := 0; i < count; i++ {
			raw, err := r.ReadUint32()
			if err != nil {
				return nil, false, err
			}
			if raw == tag.ItemTag.Uint32() {
				return nil, false, fmt.Errorf("%w: offset %d equals the ITEM sentinel value", dcmerr.ErrMalformedBOT, i)
			}
			offsets[i] = uint64(raw)
		}
		bot, err := newBOT(numFrames, offsets)
		if err != nil {
			return nil, false, err
		}
		return bot, true, nil
	}

	eotElem, err := metadata.Get(tag.ExtendedOffsetTable)
	if err != nil {
		return nil, false, nil
	}
	eotBytes, ok := eotElem.Value().(*value.BytesValue)
	if !ok {
		return nil, false, fmt.Errorf("%w: Extended Offset Table value has unexpected type %T", dcmerr.ErrMalformedBOT, eotElem.Value())
	}
	raw := eotBytes.Bytes()
	if len(raw)%8 != 0 {
		return nil, false, fmt.Errorf("%w: Extended Offset Table length %d not a multiple of 8", dcmerr.ErrMalformedBOT, len(raw))
	}
	count := len(raw) / 8
	if count != numFrames {
		return nil, false, fmt.Errorf("%w: Extended Offset Table has %d entries for %d frames", dcmerr.ErrMalformedBOT, count, numFrames)
	}
	offsets := make([]uint64, count)
	for i := 0; i < count; i++ {
		offsets[i] = binary.LittleEndian.Uint64(raw[i*8 : (i+1)*8])
	}
	bot, err := newBOT(numFrames, offsets)
	if err != nil {
		return nil, false, err
	}
	return bot, true, nil
}

// BuildBOT synthesizes a Basic Offset Table. For encapsulated transfer
// syntaxes it scans Frame Items directly, recording each one's own header
// start; call this only after ReadBOT reports no table was present on
// disk. For native transfer syntaxes (which carry no Item framing at all)
// it computes offsets arithmetically from the pixel description.
func BuildBOT(h *dcmfile.Handle, metadata *dataset.DataSet, transferSyntaxUID string) (*BOT, error) {
	numFrames, err := NumberOfFrames(metadata)
	if err != nil {
		return nil, err
	}

	if !uid.IsEncapsulated(transferSyntaxUID) {
		desc, err := ExtractPixelDescription(metadata)
		if err != nil {
			return nil, err
		}
		frameSize := desc.BytesPerFrame()
		offsets := make([]uint64, numFrames)
		for i := 0; i < numFrames; i++ {
			offsets[i] = uint64(int64(i) * frameSize)
		}
		return newBOT(numFrames, offsets)
	}

	pixelDataOffset, hasPixelData := h.PixelDataOffset()
	if !hasPixelData {
		return nil, fmt.Errorf("%w: dataset has no pixel data element", dcmerr.ErrMalformedBOT)
	}

	r := h.Decoder().Reader()
	hd := h.Decoder().HeaderDecoder()

	if err := r.SeekAbs(pixelDataOffset); err != nil {
		return nil, err
	}
	eh, err := hd.ReadElementHeader(h.Mode())
	if err != nil {
		return nil, err
	}
	if !eh.Tag.IsPixelDataFamily() {
		return nil, fmt.Errorf("%w: tag %s is not a pixel-data element", dcmerr.ErrMalformedBOT, eh.Tag)
	}

	botItem, err := hd.ReadItemHeader()
	if err != nil {
		return nil, err
	}
	if !botItem.Tag.Equals(tag.ItemTag) {
		return nil, fmt.Errorf("%w: expected ITEM, got %s", dcmerr.ErrExpectedItem, botItem.Tag)
	}
	if botItem.Length > 0 {
		if err := r.SeekRel(int64(botItem.Length)); err != nil {
			return nil, err
		}
	}

	firstFrameByteOffset, err := r.Tell()
	if err != nil {
		return nil, err
	}

	offsets := make([]uint64, 0, numFrames)
	for {
		itemStart, err := r.Tell()
		if err != nil {
			return nil, err
		}
		ih, err := hd.ReadItemHeader()
		if err != nil {
			return nil, err
		}
		if ih.Tag.Equals(tag.SequenceDelimitationTag) {
			break
		}
		if !ih.Tag.Equals(tag.ItemTag) {
			return nil, fmt.Errorf("%w: expected ITEM, got %s", dcmerr.ErrExpectedItem, ih.Tag)
		}
		offsets = append(offsets, uint64(itemStart-firstFrameByteOffset))
		if err := r.SeekRel(int64(ih.Length)); err != nil {
			return nil, err
		}
	}

	if len(offsets) != numFrames {
		return nil, fmt.Errorf("%w: found %d Frame Items, expected %d", dcmerr.ErrFrameCountMismatch, len(offsets), numFrames)
	}

	return newBOT(numFrames, offsets)
}
