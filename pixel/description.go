package pixel

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/hackermd/dcmslide/dataset"
	"github.com/hackermd/dcmslide/dcmerr"
	"github.com/hackermd/dcmslide/tag"
	"github.com/hackermd/dcmslide/value"
)

var validate = validator.New()

// PixelDescription is the subset of Image Pixel module attributes the
// offset-table builder and the frame extractor need to compute byte
// geometry. It carries no pixel bytes of its own; it is a copy of the
// handful of integers and one string that describe how to interpret
// whichever Pixel Data element the dataset declares.
type PixelDescription struct {
	Rows                      uint16 `validate:"gt=0"`
	Columns                   uint16 `validate:"gt=0"`
	SamplesPerPixel           uint16 `validate:"gt=0"`
	BitsAllocated             uint16 `validate:"gt=0"`
	BitsStored                uint16
	HighBit                   uint16
	PixelRepresentation       uint16
	PlanarConfiguration       uint16
	PhotometricInterpretation string `validate:"required"`
}

// BytesPerFrame returns the native (non-encapsulated) frame size in bytes:
// rows * columns * samples_per_pixel * (bits_allocated / 8).
func (d PixelDescription) BytesPerFrame() int64 {
	return int64(d.Rows) * int64(d.Columns) * int64(d.SamplesPerPixel) * int64(d.BitsAllocated/8)
}

// ExtractPixelDescription reads the Image Pixel module attributes the
// offset-table builder and frame extractor need off ds.
func ExtractPixelDescription(ds *dataset.DataSet) (*PixelDescription, error) {
	rows, err := getRequiredUint16(ds, tag.Rows, "Rows")
	if err != nil {
		return nil, err
	}
	columns, err := getRequiredUint16(ds, tag.Columns, "Columns")
	if err != nil {
		return nil, err
	}
	samplesPerPixel, err := getRequiredUint16(ds, tag.SamplesPerPixel, "SamplesPerPixel")
	if err != nil {
		return nil, err
	}
	bitsAllocated, err := getRequiredUint16(ds, tag.BitsAllocated, "BitsAllocated")
	if err != nil {
		return nil, err
	}
	bitsStored, err := getRequiredUint16(ds, tag.BitsStored, "BitsStored")
	if err != nil {
		return nil, err
	}
	highBit, err := getRequiredUint16(ds, tag.HighBit, "HighBit")
	if err != nil {
		return nil, err
	}
	pixelRepresentation, err := getRequiredUint16(ds, tag.PixelRepresentation, "PixelRepresentation")
	if err != nil {
		return nil, err
	}
	photometricInterpretation, err := getRequiredString(ds, tag.PhotometricInterpretation, "PhotometricInterpretation")
	if err != nil {
		return nil, err
	}
	planarConfiguration := getOptionalUint16(ds, tag.PlanarConfiguration, 0)

	desc := &PixelDescription{
		Rows:                      rows,
		Columns:                   columns,
		SamplesPerPixel:           samplesPerPixel,
		BitsAllocated:             bitsAllocated,
		BitsStored:                bitsStored,
		HighBit:                   highBit,
		PixelRepresentation:       pixelRepresentation,
		PlanarConfiguration:       planarConfiguration,
		PhotometricInterpretation: photometricInterpretation,
	}
	if err := validate.Struct(desc); err != nil {
		return nil, fmt.Errorf("%w: %v", dcmerr.ErrElementConstructionFailed, err)
	}
	return desc, nil
}

// NumberOfFrames reads tag (0028,0008), an Integer String parsed as base-10,
// defaulting to 1 when the attribute is absent (a dataset with no Number of
// Frames is necessarily single-frame). A present but non-positive value
// fails dcmerr.ErrBadFrameCount.
func NumberOfFrames(ds *dataset.DataSet) (int, error) {
	elem, err := ds.Get(tag.NumberOfFrames)
	if err != nil {
		return 1, nil
	}

	var n int
	switch v := elem.Value().(type) {
	case *value.StringValue:
		strs := v.Strings()
		if len(strs) == 0 {
			return 0, fmt.Errorf("%w: Number of Frames has no value", dcmerr.ErrBadFrameCount)
		}
		parsed, perr := strconv.Atoi(strings.TrimSpace(strs[0]))
		if perr != nil {
			return 0, fmt.Errorf("%w: %v", dcmerr.ErrBadFrameCount, perr)
		}
		n = parsed
	case *value.IntValue:
		ints := v.Ints()
		if len(ints) == 0 {
			return 0, fmt.Errorf("%w: Number of Frames has no value", dcmerr.ErrBadFrameCount)
		}
		n = int(ints[0])
	default:
		return 0, fmt.Errorf("%w: Number of Frames has unexpected value type %T", dcmerr.ErrBadFrameCount, elem.Value())
	}

	if n <= 0 {
		return 0, fmt.Errorf("%w: %d", dcmerr.ErrBadFrameCount, n)
	}
	return n, nil
}

func getRequiredUint16(ds *dataset.DataSet, t tag.Tag, name string) (uint16, error) {
	elem, err := ds.Get(t)
	if err != nil {
		return 0, &MissingAttributeError{AttributeName: name, Tag: t}
	}
	intVal, ok := elem.Value().(*value.IntValue)
	if !ok {
		return 0, fmt.Errorf("%w: %s value has unexpected type %T", dcmerr.ErrElementConstructionFailed, name, elem.Value())
	}
	ints := intVal.Ints()
	if len(ints) == 0 {
		return 0, fmt.Errorf("%w: %s has no value", dcmerr.ErrElementConstructionFailed, name)
	}
	v := ints[0]
	if v < 0 || v > 65535 {
		return 0, fmt.Errorf("%w: %s value %d out of uint16 range", dcmerr.ErrElementConstructionFailed, name, v)
	}
	return uint16(v), nil
}

func getOptionalUint16(ds *dataset.DataSet, t tag.Tag, def uint16) uint16 {
	elem, err := ds.Get(t)
	if err != nil {
		return def
	}
	intVal, ok := elem.Value().(*value.IntValue)
	if !ok {
		return def
	}
	ints := intVal.Ints()
	if len(ints) == 0 {
		return def
	}
	v := ints[0]
	if v < 0 || v > 65535 {
		return def
	}
	return uint16(v)
}

func getRequiredString(ds *dataset.DataSet, t tag.Tag, name string) (string, error) {
	elem, err := ds.Get(t)
	if err != nil {
		return "", &MissingAttributeError{AttributeName: name, Tag: t}
	}
	strVal, ok := elem.Value().(*value.StringValue)
	if !ok {
		return "", fmt.Errorf("%w: %s value has unexpected type %T", dcmerr.ErrElementConstructionFailed, name, elem.Value())
	}
	strs := strVal.Strings()
	if len(strs) == 0 {
		return "", fmt.Errorf("%w: %s has no value", dcmerr.ErrElementConstructionFailed, name)
	}
	return strs[0], nil
}
