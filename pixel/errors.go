package pixel

import (
	"fmt"

	"github.com/hackermd/dcmslide/dcmerr"
	"github.com/hackermd/dcmslide/tag"
)

// The pixel package reports failures through the same closed set of
// sentinel errors every other reader component uses, rather than inventing
// a parallel one; these aliases let call sites already inside pixel write
// pixel.ErrMalformedBOT instead of reaching into dcmerr directly.
var (
	ErrBadFrameCount      = dcmerr.ErrBadFrameCount
	ErrBadFrameIndex      = dcmerr.ErrBadFrameIndex
	ErrMalformedBOT       = dcmerr.ErrMalformedBOT
	ErrFrameCountMismatch = dcmerr.ErrFrameCountMismatch
)

// MissingAttributeError reports that a required Image Pixel module
// attribute is absent from the dataset being described.
type MissingAttributeError struct {
	AttributeName string
	Tag           tag.Tag
}

func (e *MissingAttributeError) Error() string {
	return fmt.Sprintf("%s: missing required attribute %s (%s)", dcmerr.ErrElementConstructionFailed, e.AttributeName, e.Tag)
}

func (e *MissingAttributeError) Unwrap() error {
	return dcmerr.ErrElementConstructionFailed
}
