// Package pixel locates and extracts individual Pixel Data frames without
// decompressing or otherwise interpreting them.
//
// It implements the Basic Offset Table reader, the Basic Offset Table
// builder, and the frame extractor: given a file handle whose main dataset
// has already been read up to (but not through) its Pixel Data element, it
// reports each frame's encoded byte range and returns those bytes verbatim,
// for both encapsulated (compressed) and native transfer syntaxes.
//
// Decompression, pixel rendering, LUT application, and colorimetric
// correction are out of scope; a Frame's Value is exactly the encoded bytes
// the file stores for that frame.
package pixel
