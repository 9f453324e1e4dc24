// Package dcmfile provides the Part 10 file-level reader: the File Meta
// Reader, the main Dataset Reader, and the Handle that caches what each of
// them produces across calls so later operations (Basic Offset Table
// reading, frame extraction) never have to re-derive it.
//
// DICOM Standard Reference:
// https://dicom.nema.org/medical/dicom/current/output/html/part10.html#sect_7
package dcmfile

import (
	"encoding/binary"
	"io"

	"github.com/charmbracelet/log"

	"github.com/hackermd/dcmslide/dataset"
	"github.com/hackermd/dcmslide/dcmio"
	"github.com/hackermd/dcmslide/element"
	"github.com/hackermd/dcmslide/value"
)

// newElement builds an Element from a header already read by the File Meta
// Reader or Dataset Reader and the value decoded for it.
func newElement(eh dcmio.ElementHeader, val value.Value) (*element.Element, error) {
	return element.NewElement(eh.Tag, eh.VR, val)
}

// Handle is the file-level reader state: the input stream, the cached File
// Meta dataset and Transfer Syntax UID, and the offsets recorded once the
// main dataset has been read past them.
//
// A Handle's public methods mutate the underlying stream's seek position
// and must not be called concurrently on the same Handle; independent
// Handles over independent streams may be used from independent goroutines.
type Handle struct {
	decoder *dataset.Decoder
	logger  *log.Logger

	meta              *dataset.DataSet
	metadata          *dataset.DataSet
	transferSyntaxUID string
	headerEndOffset   int64
	pixelDataOffset   int64
	hasPixelDataTag   bool
	mode              dcmio.Mode
}

// discardLogger is the Handle's default logging sink: the core package
// never calls log.SetDefault or otherwise touches global logger state, so a
// caller that never supplies a logger gets one that prints nothing.
var discardLogger = log.New(io.Discard)

// Open creates a Handle over input. File Meta and the main dataset are not
// read until ReadFileMeta / ReadMetadata is called. The Handle logs nothing
// until SetLogger is called.
func Open(input io.ReadSeeker) *Handle {
	r := dcmio.NewReader(input, binary.LittleEndian)
	return &Handle{decoder: dataset.NewDecoder(r), logger: discardLogger}
}

// SetLogger installs the sink Handle uses for its own debug logging. A nil
// logger restores the default discard sink. The caller owns the logger's
// level and output destination; Handle only ever calls Debug on it.
func (h *Handle) SetLogger(logger *log.Logger) {
	if logger == nil {
		logger = discardLogger
	}
	h.logger = logger
}

// TransferSyntaxUID returns the Transfer Syntax UID cached by ReadFileMeta.
// Calling before ReadFileMeta returns an empty string.
func (h *Handle) TransferSyntaxUID() string {
	return h.transferSyntaxUID
}

// HeaderEndOffset returns the absolute offset one past the last File Meta
// byte, cached by ReadFileMeta.
func (h *Handle) HeaderEndOffset() int64 {
	return h.headerEndOffset
}

// PixelDataOffset returns the absolute offset of the pixel-data element
// header's tag, and whether the Dataset Reader encountered one. Valid only
// after ReadMetadata.
func (h *Handle) PixelDataOffset() (int64, bool) {
	return h.pixelDataOffset, h.hasPixelDataTag
}

// Mode returns the VR mode ReadMetadata inferred for the main dataset.
// Valid only after ReadMetadata.
func (h *Handle) Mode() dcmio.Mode {
	return h.mode
}

// Decoder exposes the underlying element decoder for callers (the pixel
// frame locator) that need to read further elements or raw bytes at
// specific offsets after the main dataset has been read.
func (h *Handle) Decoder() *dataset.Decoder {
	return h.decoder
}
