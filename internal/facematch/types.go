// Package facematch provides the nearest-neighbor face matching shared between CLI and web handlers.
package facematch

import "errors"

// ErrNoTrainedFaces is returned when matching is attempted against an empty gallery.
var ErrNoTrainedFaces = errors.New("no faces trained yet")

// Result describes the closest stored face for a query embedding.
type Result struct {
	Index      int     // Position of the best entry in the gallery
	DriverID   int64   // Driver of the best entry
	Name       string  // Display name of the best entry
	Distance   float64 // Euclidean distance to the best entry
	Matched    bool    // Distance is strictly below the threshold
	Confidence float64 // 1 - Distance; a display value, not a probability
}
