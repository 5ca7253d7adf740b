// Package extractors provides the MIME-type registry for text
// extraction and helpers shared by the per-format extractor packages.
//
// Extractors convert a stored file into a single normalised UTF-8
// string. They are pure transforms: the source file is never modified
// or removed.
package extractors
