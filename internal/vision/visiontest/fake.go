// Package visiontest provides an in-memory Extractor and test images.
package visiontest

import (
	"bytes"
	"context"
	"image"
	"image/color"
	_ "image/jpeg" // DecodeConfig of prepared images
	"image/png"
	"sync"

	"github.com/kozaktomas/face-auth/internal/constants"
	"github.com/kozaktomas/face-auth/internal/vision"
)

// Extractor returns canned faces keyed by the width of the image it receives.
// Widths survive PrepareImage as long as the image is below the resize limit,
// so tests can address uploads by their size.
type Extractor struct {
	mu        sync.Mutex
	responses map[int][]vision.Face
	errors    map[int]error
	calls     int

	Default    []vision.Face
	DefaultErr error
}

// New creates an empty fake extractor.
func New() *Extractor {
	return &Extractor{
		responses: make(map[int][]vision.Face),
		errors:    make(map[int]error),
	}
}

// On registers the faces returned for images of the given width.
func (e *Extractor) On(width int, faces ...vision.Face) *Extractor {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.responses[width] = faces
	return e
}

// Fail registers an error returned for images of the given width.
func (e *Extractor) Fail(width int, err error) *Extractor {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.errors[width] = err
	return e
}

// Calls returns how many times FaceEncodings was invoked.
func (e *Extractor) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

func (e *Extractor) FaceEncodings(ctx context.Context, img []byte) ([]vision.Face, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	width := -1
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(img)); err == nil {
		width = cfg.Width
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++

	if err, ok := e.errors[width]; ok {
		return nil, err
	}
	if faces, ok := e.responses[width]; ok {
		return faces, nil
	}
	return e.Default, e.DefaultErr
}

// Face builds a face with a dlib-sized embedding whose first component is v.
func Face(v float32) vision.Face {
	emb := make([]float32, constants.DefaultEmbeddingDim)
	emb[0] = v
	return vision.Face{Embedding: emb, Box: vision.Box{X: 1, Y: 1, W: 4, H: 4}, Score: 0.99}
}

// PNG returns a solid gray PNG of the given width and a fixed height of 8.
func PNG(width int) []byte {
	img := image.NewGray(image.Rect(0, 0, width, 8))
	for i := range img.Pix {
		img.Pix[i] = 128
	}
	img.Set(0, 0, color.Gray{Y: 255})

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
