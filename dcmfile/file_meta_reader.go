package dcmfile

import (
	"fmt"
	"strings"

	"github.com/hackermd/dcmslide/dataset"
	"github.com/hackermd/dcmslide/dcmerr"
	"github.com/hackermd/dcmslide/dcmio"
	"github.com/hackermd/dcmslide/tag"
	"github.com/hackermd/dcmslide/value"
)

const preambleSize = 128

var dicmMagic = [4]byte{'D', 'I', 'C', 'M'}

// ReadFileMeta reads the 128-byte preamble, the "DICM" magic, and the File
// Meta group (always Explicit VR Little Endian regardless of the main
// dataset's declared Transfer Syntax). It caches the resulting dataset, the
// Transfer Syntax UID, and the header-end offset on the Handle.
//
// Calling ReadFileMeta again on a Handle that already has a cached meta
// dataset returns the cached result without touching the stream.
func (h *Handle) ReadFileMeta() (*dataset.DataSet, error) {
	if h.meta != nil {
		return h.meta, nil
	}

	r := h.decoder.Reader()
	hd := h.decoder.HeaderDecoder()

	if _, err := r.ReadBytes(preambleSize); err != nil {
		return nil, err
	}

	magic, err := r.ReadBytes(4)
	if err != nil {
		return nil, err
	}
	if magic[0] != dicmMagic[0] || magic[1] != dicmMagic[1] || magic[2] != dicmMagic[2] || magic[3] != dicmMagic[3] {
		return nil, fmt.Errorf("%w: got %q", dcmerr.ErrMissingMagic, magic)
	}

	meta := dataset.NewDataSet()

	groupLengthHeader, err := hd.ReadElementHeader(dcmio.Explicit)
	if err != nil {
		return nil, err
	}
	groupLengthVal, err := h.decoder.DecodeValueForHeader(groupLengthHeader, dcmio.Explicit)
	if err != nil {
		return nil, err
	}
	intVal, ok := groupLengthVal.(*value.IntValue)
	if !ok || len(intVal.Ints()) == 0 {
		return nil, fmt.Errorf("%w: File Meta Group Length element is not a single UL value", dcmerr.ErrMalformedLength)
	}
	remaining := intVal.Ints()[0]

	// The Group Length element is inserted like any other group-0x0002
	// element; its value is additionally the byte budget for the loop below.
	groupLengthElem, err := newElement(groupLengthHeader, groupLengthVal)
	if err != nil {
		return nil, err
	}
	if err := meta.Add(groupLengthElem); err != nil {
		return nil, err
	}

	for remaining > 0 {
		posBeforeHeader, err := r.Tell()
		if err != nil {
			return nil, err
		}

		eh, err := hd.ReadElementHeader(dcmio.Explicit)
		if err != nil {
			return nil, err
		}

		if !eh.Tag.IsMetaElement() {
			if serr := r.SeekAbs(posBeforeHeader); serr != nil {
				return nil, serr
			}
			break
		}

		val, err := h.decoder.DecodeValueForHeader(eh, dcmio.Explicit)
		if err != nil {
			return nil, err
		}
		elem, err := newElement(eh, val)
		if err != nil {
			return nil, err
		}
		if err := meta.Add(elem); err != nil {
			return nil, err
		}

		posAfter, err := r.Tell()
		if err != nil {
			return nil, err
		}
		remaining -= posAfter - posBeforeHeader
	}

	headerEndOffset, err := r.Tell()
	if err != nil {
		return nil, err
	}

	tsElem, err := meta.Get(tag.TransferSyntaxUID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dcmerr.ErrMissingTransferSyntax, err)
	}
	tsStr, ok := tsElem.Value().(*value.StringValue)
	if !ok || len(tsStr.Strings()) == 0 {
		return nil, fmt.Errorf("%w: Transfer Syntax UID element has no value", dcmerr.ErrMissingTransferSyntax)
	}

	// UI values keep their even-length NUL pad verbatim in the dataset; the
	// cached copy is the bare UID so mode inference and encapsulation
	// detection compare against the registry literals.
	h.meta = meta
	h.transferSyntaxUID = strings.TrimRight(tsStr.Strings()[0], "\x00")
	h.headerEndOffset = headerEndOffset

	h.logger.Debug("read file meta information", "transfer_syntax_uid", h.transferSyntaxUID, "elements", meta.Len())

	return h.meta, nil
}
