package dataset

import (
	"fmt"
	"strings"

	"github.com/hackermd/dcmslide/value"
	"github.com/hackermd/dcmslide/vr"
)

// SequenceValue is the Value implementation for VR = SQ: an ordered list of
// Items, each an independent Dataset. It lives in this package rather than
// in the value package because an Item is a Dataset, and Dataset must
// already import the element and value packages to hold ordinary elements —
// defining SequenceValue in value.go would close that import loop the other
// way. Element.ValueMultiplicity() recovers the item count through the
// anonymous Count() interface check documented there, so callers never need to
// import this package just to print a sequence element.
type SequenceValue struct {
	items []*Item
}

// NewSequenceValue creates a SequenceValue holding items in the order
// decoded from the wire. A nil slice is normalized to empty.
func NewSequenceValue(items []*Item) *SequenceValue {
	if items == nil {
		items = []*Item{}
	}
	return &SequenceValue{items: items}
}

// VR always returns vr.SequenceOfItems.
func (s *SequenceValue) VR() vr.VR {
	return vr.SequenceOfItems
}

// Items returns the sequence's items in order.
func (s *SequenceValue) Items() []*Item {
	return s.items
}

// Count returns the number of items, satisfying element.Element's sequence
// value-multiplicity probe.
func (s *SequenceValue) Count() int {
	return len(s.items)
}

// Bytes is unsupported for sequences: their wire encoding is a recursive
// structure of item and element headers, not a flat byte run, so re-encoding
// belongs to a writer, not this reader's Value type.
func (s *SequenceValue) Bytes() []byte {
	return nil
}

// String returns a human-readable summary of the sequence's items.
func (s *SequenceValue) String() string {
	if len(s.items) == 0 {
		return "(Sequence with 0 items)"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "(Sequence with %d item", len(s.items))
	if len(s.items) != 1 {
		sb.WriteString("s")
	}
	sb.WriteString(")")
	return sb.String()
}

// Equals compares item count and each item's elements for structural
// equality.
func (s *SequenceValue) Equals(other value.Value) bool {
	otherSeq, ok := other.(*SequenceValue)
	if !ok {
		return false
	}
	if len(s.items) != len(otherSeq.items) {
		return false
	}
	for i, item := range s.items {
		otherItem := otherSeq.items[i]
		if item.Len() != otherItem.Len() {
			return false
		}
		for _, t := range item.Tags() {
			elem, err := item.Get(t)
			if err != nil {
				return false
			}
			otherElem, err := otherItem.Get(t)
			if err != nil {
				return false
			}
			if !elem.Equals(otherElem) {
				return false
			}
		}
	}
	return true
}

var _ value.Value = (*SequenceValue)(nil)
