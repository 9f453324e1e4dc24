// Package dataset provides the DICOM Data Set container plus the decoder
// that walks File Meta Information and main-dataset byte streams into it.
//
// DICOM Standard Reference:
// https://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_7.1
package dataset

import (
	"fmt"
	"strings"

	"github.com/hackermd/dcmslide/dcmerr"
	"github.com/hackermd/dcmslide/element"
	"github.com/hackermd/dcmslide/tag"
)

// DataSet is an insertion-ordered, per-tag-unique collection of Elements.
//
// Unlike a sorted-by-tag map, DataSet preserves the order elements were
// added in, since a Sequence Item is itself a Dataset and its element order
// on the wire is part of what a faithful decode must reproduce.
type DataSet struct {
	elements map[tag.Tag]*element.Element
	order    []tag.Tag
}

// Item is the container a Sequence holds one of per entry. An Item on the
// wire is itself a Dataset.
type Item = DataSet

// NewDataSet creates a new empty dataset.
func NewDataSet() *DataSet {
	return &DataSet{
		elements: make(map[tag.Tag]*element.Element),
	}
}

// Add inserts elem. Returns dcmerr.ErrDuplicateTag if an element with the
// same tag is already present at this level.
func (ds *DataSet) Add(elem *element.Element) error {
	if elem == nil {
		return fmt.Errorf("cannot add nil element")
	}
	if _, exists := ds.elements[elem.Tag()]; exists {
		return fmt.Errorf("%w: %s", dcmerr.ErrDuplicateTag, elem.Tag())
	}
	ds.elements[elem.Tag()] = elem
	ds.order = append(ds.order, elem.Tag())
	return nil
}

// Get retrieves an element by tag.
func (ds *DataSet) Get(t tag.Tag) (*element.Element, error) {
	elem, exists := ds.elements[t]
	if !exists {
		return nil, fmt.Errorf("element with tag %s not found", t)
	}
	return elem, nil
}

// GetByKeyword retrieves an element by its dictionary keyword or name.
func (ds *DataSet) GetByKeyword(keyword string) (*element.Element, error) {
	info, err := tag.FindByKeyword(keyword)
	if err != nil {
		return nil, fmt.Errorf("unknown keyword %q: %w", keyword, err)
	}
	return ds.Get(info.Tag)
}

// Contains reports whether an element with the given tag is present.
func (ds *DataSet) Contains(t tag.Tag) bool {
	_, exists := ds.elements[t]
	return exists
}

// Len returns the number of elements in the dataset.
func (ds *DataSet) Len() int {
	return len(ds.order)
}

// Elements returns the dataset's elements in insertion order. The returned
// slice is a copy.
func (ds *DataSet) Elements() []*element.Element {
	out := make([]*element.Element, len(ds.order))
	for i, t := range ds.order {
		out[i] = ds.elements[t]
	}
	return out
}

// Tags returns the dataset's tags in insertion order. The returned slice is
// a copy.
func (ds *DataSet) Tags() []tag.Tag {
	out := make([]tag.Tag, len(ds.order))
	copy(out, ds.order)
	return out
}

// String returns a human-readable multi-line rendering of the dataset.
func (ds *DataSet) String() string {
	var sb strings.Builder

	count := ds.Len()
	if count == 0 {
		return "DataSet with 0 elements"
	}
	if count == 1 {
		sb.WriteString("DataSet with 1 element:\n")
	} else {
		sb.WriteString(fmt.Sprintf("DataSet with %d elements:\n", count))
	}

	for _, elem := range ds.Elements() {
		sb.WriteString("  ")
		sb.WriteString(elem.String())
		sb.WriteString("\n")
	}

	return sb.String()
}

// FileMetaInformation returns a new DataSet containing only the elements
// whose tag belongs to the File Meta group (0x0002). Returns nil if none are
// present.
func (ds *DataSet) FileMetaInformation() *DataSet {
	fileMeta := NewDataSet()
	hasElements := false

	for _, t := range ds.order {
		if t.IsMetaElement() {
			_ = fileMeta.Add(ds.elements[t])
			hasElements = true
		}
	}

	if !hasElements {
		return nil
	}
	return fileMeta
}
