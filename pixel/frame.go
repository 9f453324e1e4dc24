package pixel

import (
	"fmt"

	"github.com/hackermd/dcmslide/dataset"
	"github.com/hackermd/dcmslide/dcmerr"
	"github.com/hackermd/dcmslide/dcmfile"
	"github.com/hackermd/dcmslide/tag"
	"github.com/hackermd/dcmslide/uid"
)

// Frame is a single frame's encoded bytes plus a copy of the pixel
// description fields needed to interpret them. Value is exactly what the
// file stores for this frame: for an encapsulated transfer syntax that is
// still-compressed data, never decoded pixels.
type Frame struct {
	Number int
	Value  []byte
	Length int
	PixelDescription
	TransferSyntaxUID string
}

// ReadFrame seeks to the given 1-based frame's bytes and returns them
// uninterpreted. ReadMetadata and either ReadBOT or BuildBOT must already
// have populated bot.
func ReadFrame(h *dcmfile.Handle, metadata *dataset.DataSet, bot *BOT, transferSyntaxUID string, number int) (*Frame, error) {
	if number <= 0 {
		return nil, fmt.Errorf("%w: frame numbers are 1-based, got %d", dcmerr.ErrBadFrameIndex, number)
	}
	if number > len(bot.Offsets) {
		return nil, fmt.Errorf("%w: frame %d requested, BOT has %d offsets", dcmerr.ErrBadFrameIndex, number, len(bot.Offsets))
	}

	desc, err := ExtractPixelDescription(metadata)
	if err != nil {
		return nil, err
	}

	pixelDataOffset, hasPixelData := h.PixelDataOffset()
	if !hasPixelData {
		return nil, fmt.Errorf("%w: dataset has no pixel data element", dcmerr.ErrBadFrameIndex)
	}

	r := h.Decoder().Reader()
	hd := h.Decoder().HeaderDecoder()
	f := bot.Offsets[number-1]

	var frameBytes []byte

	if uid.IsEncapsulated(transferSyntaxUID) {
		if err := r.SeekAbs(pixelDataOffset); err != nil {
			return nil, err
		}
		eh, err := hd.ReadElementHeader(h.Mode())
		if err != nil {
			return nil, err
		}
		if !eh.Tag.IsPixelDataFamily() {
			return nil, fmt.Errorf("%w: tag %s is not a pixel-data element", dcmerr.ErrBadFrameIndex, eh.Tag)
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
		if err := r.SeekAbs(firstFrameByteOffset + int64(f)); err != nil {
			return nil, err
		}

		ih, err := hd.ReadItemHeader()
		if err != nil {
			return nil, err
		}
		if !ih.Tag.Equals(tag.ItemTag) {
			return nil, fmt.Errorf("%w: expected ITEM at frame %d, got %s", dcmerr.ErrExpectedItem, number, ih.Tag)
		}
		frameBytes, err = r.ReadBytes(int(ih.Length))
		if err != nil {
			return nil, err
		}
	} else {
		if err := r.SeekAbs(pixelDataOffset); err != nil {
			return nil, err
		}
		eh, err := hd.ReadElementHeader(h.Mode())
		if err != nil {
			return nil, err
		}
		if !eh.Tag.IsPixelDataFamily() {
			return nil, fmt.Errorf("%w: tag %s is not a pixel-data element", dcmerr.ErrBadFrameIndex, eh.Tag)
		}

		firstPixelByteOffset, err := r.Tell()
		if err != nil {
			return nil, err
		}
		if err := r.SeekAbs(firstPixelByteOffset + int64(f)); err != nil {
			return nil, err
		}

		frameBytes, err = r.ReadBytes(int(desc.BytesPerFrame()))
		if err != nil {
			return nil, err
		}
	}

	return &Frame{
		Number:            number,
		Value:             frameBytes,
		Length:            len(frameBytes),
		PixelDescription:  *desc,
		TransferSyntaxUID: transferSyntaxUID,
	}, nil
}
