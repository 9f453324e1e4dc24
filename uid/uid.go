// Package uid provides DICOM Unique Identifier (UID) handling and validation.
//
// UIDs are used throughout DICOM to uniquely identify various entities including
// transfer syntaxes, SOP classes, and instances.
//
// DICOM Standard Reference:
// https://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_9
package uid

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"time"
)

// UID represents a DICOM Unique Identifier.
//
// UIDs are character strings composed of numeric components separated by periods (.).
// They follow the ISO 8824 object identifier format and must:
//   - Contain only digits (0-9) and periods (.)
//   - Not exceed 64 characters in length
//   - Not have leading or trailing periods
//   - Not have consecutive periods
//   - Not have leading zeros in components (except "0" by itself)
//
// DICOM Standard Reference:
// https://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_9.1
type UID struct {
	value string
}

// String returns the string representation of the UID.
func (u UID) String() string {
	return u.value
}

// Equals returns true if this UID equals the other UID.
func (u UID) Equals(other UID) bool {
	return u.value == other.value
}

// IsValid checks if a string is a valid DICOM UID.
//
// Validation rules per DICOM Part 5 Section 9.1:
//   - Maximum length of 64 characters
//   - Contains only digits and periods
//   - Does not start or end with a period
//   - Does not contain consecutive periods
//   - Components do not have leading zeros (except "0" by itself)
//
// DICOM Standard Reference:
// https://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_9.1
func IsValid(s string) bool {
	// Empty string is not valid
	if s == "" {
		return false
	}
	// Maximum length is 64 characters
	if len(s) > 64 {
		return false
	}
	// Must not start or end with a period
	if s[0] == '.' || s[len(s)-1] == '.' {
		return false
	}
	// Split into components
	components := strings.Split(s, ".")
	if len(components) < 2 {
		return false
	}

	for _, comp := range components {
		// Empty component (consecutive dots)
		if comp == "" {
			return false
		}
		// Check for leading zeros (except "0" by itself)
		if len(comp) > 1 && comp[0] == '0' {
			return false
		}
		// Check that all characters are digits
		for _, ch := range comp {
			if ch < '0' || ch > '9' {
				return false
			}
		}
	}
	return true
}

// Parse validates and creates a UID from a string.
//
// Returns an error if the string is not a valid DICOM UID.
//
// DICOM Standard Reference:
// https://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_9.1
func Parse(s string) (UID, error) {
	if !IsValid(s) {
		return UID{}, fmt.Errorf("invalid UID: %q", s)
	}
	return UID{value: s}, nil
}

// MustParse validates and creates a UID from a string, panicking on error.
// This should only be used for well-known UIDs that are guaranteed to be valid.
func MustParse(s string) UID {
	u, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return u
}

var (
	// ErrInvalidUID is returned when a UID string is invalid.
	ErrInvalidUID = errors.New("invalid UID")
)

// encapsulatedTransferSyntaxes holds the Transfer Syntax UIDs whose Pixel
// Data element is framed as a sequence of Items (one BOT, then one Item per
// frame) rather than a single contiguous byte block. Native transfer
// syntaxes (Implicit/Explicit VR Little/Big Endian, Deflated Explicit VR)
// are deliberately absent.
var encapsulatedTransferSyntaxes = map[string]bool{
	EncapsulatedUncompressedExplicitVRLittleEndian.String():               true,
	Mpeg2MainProfileMainLevel.String():                                    true,
	FragmentableMpeg2MainProfileMainLevel.String():                        true,
	Mpeg2MainProfileHighLevel.String():                                    true,
	FragmentableMpeg2MainProfileHighLevel.String():                        true,
	MPEG4AvcH264HighProfileLevel41.String():                               true,
	FragmentableMPEG4AvcH264HighProfileLevel41.String():                   true,
	MPEG4AvcH264BdCompatibleHighProfileLevel41.String():                   true,
	FragmentableMPEG4AvcH264BdCompatibleHighProfileLevel41.String():       true,
	MPEG4AvcH264HighProfileLevel42For2dVideo.String():                     true,
	FragmentableMPEG4AvcH264HighProfileLevel42For2dVideo.String():         true,
	MPEG4AvcH264HighProfileLevel42For3dVideo.String():                     true,
	FragmentableMPEG4AvcH264HighProfileLevel42For3dVideo.String():         true,
	MPEG4AvcH264StereoHighProfileLevel42.String():                         true,
	FragmentableMPEG4AvcH264StereoHighProfileLevel42.String():             true,
	HevcH265MainProfileLevel51.String():                                   true,
	HevcH265Main10ProfileLevel51.String():                                 true,
	JPEGXlLossless.String():                                               true,
	JPEGXlJPEGRecompression.String():                                      true,
	JPEGXl.String():                                                       true,
	HighThroughputJPEG2000ImageCompressionLosslessOnly.String():           true,
	HighThroughputJPEG2000WithRpclOptionsImageCompressionLosslessOnly.String(): true,
	HighThroughputJPEG2000ImageCompression.String():                       true,
	JPEGBaselineProcess1.String():                                         true,
	JPEGExtendedProcess2And4.String():                                     true,
	JPEGLosslessNonHierarchicalProcess14.String():                         true,
	JPEGLosslessNonHierarchicalFirstOrderPredictionProcess14SelectionValue1.String(): true,
	JPEGLsLosslessImageCompression.String():                               true,
	JPEGLsLossyNearLosslessImageCompression.String():                      true,
	JPEG2000ImageCompressionLosslessOnly.String():                         true,
	JPEG2000ImageCompression.String():                                     true,
	JPEG2000Part2MultiComponentImageCompressionLosslessOnly.String():      true,
	JPEG2000Part2MultiComponentImageCompression.String():                  true,
	RLELossless.String():                                                  true,
}

// IsEncapsulated reports whether the Transfer Syntax identified by uidStr
// frames its Pixel Data as Items (BOT + per-frame fragments) rather than a
// single contiguous native byte block. Unrecognized UIDs are treated as
// native, matching the decoder's conservative default when it cannot
// identify a compression scheme.
func IsEncapsulated(uidStr string) bool {
	return encapsulatedTransferSyntaxes[uidStr]
}

// Generate creates a new unique DICOM UID.
//
// This implementation uses a combination of:
//   - Organizational root: "1.2.826.0.1.3680043.10" (PixelMed reserved root)
//   - Unix timestamp in microseconds
//   - Random 32-bit value for uniqueness
//
// The generated UID follows DICOM UID rules and is guaranteed to be unique.
//
// DICOM Standard Reference:
// https://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_9.1
//
// Example:
//
//	studyUID := uid.Generate()
//	fmt.Println(studyUID) // e.g., "1.2.826.0.1.3680043.10.1234567890.12345"
func Generate() string {
	// Use PixelMed reserved root for generated UIDs
	// This is commonly used for DICOM implementations
	const orgRoot = "1.2.826.0.1.3680043.10"

	// Get current timestamp in microseconds
	timestamp := time.Now().UnixMicro()

	// Generate random 32-bit value for additional uniqueness
	var randomBytes [4]byte
	if _, err := rand.Read(randomBytes[:]); err != nil {
		// Fallback to timestamp-only if random fails
		return fmt.Sprintf("%s.%d", orgRoot, timestamp)
	}
	randomValue := binary.BigEndian.Uint32(randomBytes[:])

	// Construct UID: orgRoot.timestamp.random
	return fmt.Sprintf("%s.%d.%d", orgRoot, timestamp, randomValue)
}
