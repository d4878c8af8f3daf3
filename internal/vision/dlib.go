//go:build dlib

package vision

import (
	"context"
	"fmt"
	"sync"

	face "github.com/Kagami/go-face"
)

// DlibExtractor runs dlib's HOG detector and ResNet encoder in-process.
type DlibExtractor struct {
	mu  sync.Mutex
	rec *face.Recognizer
}

// NewDlibExtractor loads the dlib models from modelsDir
// (shape_predictor_5_face_landmarks.dat, dlib_face_recognition_resnet_model_v1.dat).
func NewDlibExtractor(modelsDir string) (*DlibExtractor, error) {
	rec, err := face.NewRecognizer(modelsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load dlib models from %s: %w", modelsDir, err)
	}
	return &DlibExtractor{rec: rec}, nil
}

// FaceEncodings detects faces in a JPEG and returns their 128-d descriptors.
func (d *DlibExtractor) FaceEncodings(ctx context.Context, img []byte) ([]Face, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	found, err := d.rec.Recognize(img)
	d.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("dlib recognize: %w", err)
	}

	faces := make([]Face, 0, len(found))
	for _, f := range found {
		emb := make([]float32, len(f.Descriptor))
		copy(emb, f.Descriptor[:])
		faces = append(faces, Face{
			Embedding: emb,
			Box:       BoxFromRect(f.Rectangle),
			Score:     1,
		})
	}
	return faces, nil
}

// Close releases the native recognizer.
func (d *DlibExtractor) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.rec != nil {
		d.rec.Close()
		d.rec = nil
	}
	return nil
}
