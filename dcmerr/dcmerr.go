// Package dcmerr defines the closed set of error kinds the decoder can
// return. Every call site wraps one of these sentinels with fmt.Errorf's
// %w verb so callers can recover the kind with errors.Is while still
// getting a message that names the offending tag, offset, or value.
package dcmerr

import "errors"

// ErrUnexpectedEOF indicates a read could not be satisfied in full because
// the input stream ended early.
var ErrUnexpectedEOF = errors.New("unexpected end of stream")

// ErrMissingMagic indicates the 4 bytes following the 128-byte preamble are
// not the ASCII literal "DICM".
//
// DICOM Standard Reference:
// https://dicom.nema.org/medical/dicom/current/output/html/part10.html#sect_7.1
var ErrMissingMagic = errors.New("missing DICM magic after preamble")

// ErrMissingTransferSyntax indicates File Meta Information did not contain a
// Transfer Syntax UID element (0002,0010).
var ErrMissingTransferSyntax = errors.New("missing Transfer Syntax UID in File Meta Information")

// ErrInvalidTag indicates a 32-bit value failed tag validation.
var ErrInvalidTag = errors.New("invalid tag")

// ErrInvalidVR indicates a two-character VR code is not one of the 34
// standard DICOM VRs.
var ErrInvalidVR = errors.New("invalid VR")

// ErrReservedNonZero indicates the 2 reserved bytes following a long-length
// explicit VR were not 0x0000.
var ErrReservedNonZero = errors.New("reserved bytes after explicit VR are non-zero")

// ErrUnknownVR indicates an explicit-mode VR code did not match any known
// VR and the decoder is not in a context (implicit mode) that tolerates
// falling back to UN.
var ErrUnknownVR = errors.New("unknown VR")

// ErrInvalidItemTag indicates an Item Header's tag was not one of ITEM,
// ITEM_DELIM, or SQ_DELIM.
var ErrInvalidItemTag = errors.New("invalid item tag")

// ErrExpectedItem indicates the Sequence Walker read an Item Header whose
// tag was neither ITEM nor SQ_DELIM where an Item was required.
var ErrExpectedItem = errors.New("expected item tag")

// ErrLengthOverflow indicates a defined-length Sequence or Item's children
// consumed more bytes than the declared length.
var ErrLengthOverflow = errors.New("sequence or item length overflow")

// ErrMalformedLength indicates a fixed-width numeric element's length was
// not a whole multiple of its element size.
var ErrMalformedLength = errors.New("malformed length for fixed-width VR")

// ErrUnexpectedVM indicates a single-valued character-string VR (ST, LT,
// UR, UT) decoded to more than one part.
var ErrUnexpectedVM = errors.New("unexpected value multiplicity")

// ErrDuplicateTag indicates an element's tag was already present at the
// same dataset or item level.
var ErrDuplicateTag = errors.New("duplicate tag at this level")

// ErrUnexpectedFileMetaGroup indicates a group-0x0002 tag was encountered
// in the main dataset, outside File Meta Information.
var ErrUnexpectedFileMetaGroup = errors.New("unexpected file meta group in dataset")

// ErrBadFrameCount indicates Number of Frames (0028,0008) was not parseable
// as a base-10 integer, or was <= 0. An absent Number of Frames is not an
// error: it counts as a single frame.
var ErrBadFrameCount = errors.New("bad frame count")

// ErrBadFrameIndex indicates a requested frame index was 0 or exceeded the
// BOT's frame count.
var ErrBadFrameIndex = errors.New("bad frame index")

// ErrMalformedBOT indicates a Basic Offset Table entry equaled the raw
// 32-bit ITEM tag value, a corruption signature left by a reader that
// mis-parsed a fragment boundary as table entries.
var ErrMalformedBOT = errors.New("malformed basic offset table")

// ErrFrameCountMismatch indicates the number of Frame Items found while
// building a BOT did not equal the declared Number of Frames.
var ErrFrameCountMismatch = errors.New("frame count mismatch")

// ErrOutOfMemory indicates an allocation the decoder required (a length
// prefix implying an implausibly large buffer) could not be satisfied.
var ErrOutOfMemory = errors.New("out of memory")

// ErrElementConstructionFailed indicates the element constructor surface
// (element.NewElement) rejected a (tag, vr, value) triple, typically because the
// value's own VR did not match the element's declared VR.
var ErrElementConstructionFailed = errors.New("element construction failed")

// ErrCancelled indicates a caller-supplied context was cancelled mid-parse.
// Recovery requires discarding the file handle: its seek position is
// poisoned mid-element.
var ErrCancelled = errors.New("operation cancelled")
