// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

// Face matching constants
const (
	// DefaultMatchThreshold is the Euclidean distance below which a face is
	// considered the same person. Lower values = stricter matching.
	DefaultMatchThreshold = 0.6

	// DefaultEmbeddingDim is the dimensionality produced by the dlib ResNet model.
	// The store does not enforce it, it is only used for reporting.
	DefaultEmbeddingDim = 128
)

// Processing constants
const (
	// DefaultTrainConcurrency is the number of parallel extractor calls during bootstrap training
	DefaultTrainConcurrency = 4

	// MaxImageSize is the maximum dimension (width or height) sent to the extractor
	MaxImageSize = 1600

	// MaxImagePixels caps width*height of an upload before it is decoded (40 megapixels)
	MaxImagePixels = 40_000_000

	// JPEGQuality is used when re-encoding prepared images
	JPEGQuality = 90
)
