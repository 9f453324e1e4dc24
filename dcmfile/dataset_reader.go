package dcmfile

import (
	"bytes"
	"compress/flate"
	"fmt"
	"io"

	"github.com/hackermd/dcmslide/dataset"
	"github.com/hackermd/dcmslide/dcmerr"
	"github.com/hackermd/dcmslide/dcmio"
	"github.com/hackermd/dcmslide/tag"
	"github.com/hackermd/dcmslide/uid"
)

// ReadMetadata reads the main dataset that follows File Meta Information,
// stopping before any Pixel Data it finds rather than decoding pixel bytes
// as an element value. ReadFileMeta is called first if it has not been
// already.
//
// The scan stops at the first of:
//   - end of stream
//   - a Trailing Padding element (FFFC,FFFC)
//   - a pixel-data-family element (7FE0,0010 / 7FE0,0008 / 7FE0,0009); the
//     stream is rewound to the start of its header and the offset recorded
//     for the frame locator
//   - an element whose group is 0x0002, which cannot legally appear after
//     File Meta Information ends
//
// ReadMetadata also resolves the VR mode the rest of the file uses (Implicit
// VR Little Endian iff the declared Transfer Syntax UID says so) and, for
// Deflated Explicit VR Little Endian, inflates the remainder of the stream
// into memory so later Seek calls (the Basic Offset Table reader, the frame
// extractor) keep working the same way they do over a plain file.
func (h *Handle) ReadMetadata() (*dataset.DataSet, error) {
	if h.metadata != nil {
		return h.metadata, nil
	}
	if h.meta == nil {
		if _, err := h.ReadFileMeta(); err != nil {
			return nil, err
		}
	}

	r := h.decoder.Reader()
	hd := h.decoder.HeaderDecoder()

	if err := r.SeekAbs(h.headerEndOffset); err != nil {
		return nil, err
	}

	mode := dcmio.Explicit
	switch h.transferSyntaxUID {
	case uid.ImplicitVRLittleEndian.String():
		mode = dcmio.Implicit
	case uid.DeflatedExplicitVRLittleEndian.String():
		inflated, err := io.ReadAll(flate.NewReader(r.Raw()))
		if err != nil {
			return nil, fmt.Errorf("%w: inflating deflated dataset: %v", dcmerr.ErrUnexpectedEOF, err)
		}
		r.WrapReader(bytes.NewReader(inflated))
		mode = dcmio.Explicit
	}
	h.mode = mode

	ds := dataset.NewDataSet()

	for {
		atEOF, err := r.AtEOF()
		if err != nil {
			return nil, err
		}
		if atEOF {
			break
		}

		posBeforeHeader, err := r.Tell()
		if err != nil {
			return nil, err
		}

		eh, err := hd.ReadElementHeader(mode)
		if err != nil {
			return nil, err
		}

		if eh.Tag.Equals(tag.TrailingPaddingTag) {
			break
		}
		if eh.Tag.IsPixelDataFamily() {
			if err := r.SeekAbs(posBeforeHeader); err != nil {
				return nil, err
			}
			h.pixelDataOffset = posBeforeHeader
			h.hasPixelDataTag = true
			break
		}
		if eh.Tag.IsMetaElement() {
			return nil, fmt.Errorf("%w: %s found after File Meta Information", dcmerr.ErrUnexpectedFileMetaGroup, eh.Tag)
		}

		val, err := h.decoder.DecodeValueForHeader(eh, mode)
		if err != nil {
			return nil, err
		}
		elem, err := newElement(eh, val)
		if err != nil {
			return nil, err
		}
		if err := ds.Add(elem); err != nil {
			return nil, err
		}
	}

	h.metadata = ds
	return ds, nil
}
