// Package constants provides shared constants used across the codebase.
package constants

import "time"

// File upload constants
const (
	// MaxUploadSize is the maximum multipart upload size in bytes (32MB)
	MaxUploadSize = 32 << 20

	// ImageFormField is the multipart field carrying the uploaded photo
	ImageFormField = "image"
)

// Driver table constants
const (
	// DriversTable is the table holding driver records
	DriversTable = "drivers"
)

// Request timeout constants
const (
	// RequestTimeout bounds a single detect/train/recognize request
	RequestTimeout = 2 * time.Minute

	// TrainAllTimeout bounds a bulk training run started over HTTP
	TrainAllTimeout = 30 * time.Minute
)
