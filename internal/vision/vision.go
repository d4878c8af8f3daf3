// Package vision wraps face detection and embedding extraction behind a single interface.
package vision

import (
	"context"
	"errors"
)

// ErrInvalidImage is returned when the uploaded bytes cannot be decoded as an image.
var ErrInvalidImage = errors.New("invalid image")

// Face is one detected face with its embedding.
type Face struct {
	Embedding []float32
	Box       Box
	Score     float64
}

// Extractor detects faces in a JPEG and returns one embedding per face.
// An image without faces returns an empty slice and no error.
type Extractor interface {
	FaceEncodings(ctx context.Context, img []byte) ([]Face, error)
}
