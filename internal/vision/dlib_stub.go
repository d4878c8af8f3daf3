//go:build !dlib

package vision

import (
	"context"
	"errors"
)

// ErrDlibUnavailable is returned when the binary was built without the dlib tag.
var ErrDlibUnavailable = errors.New("dlib backend not compiled in (build with -tags dlib)")

// DlibExtractor is unavailable without the dlib build tag.
type DlibExtractor struct{}

// NewDlibExtractor always fails without the dlib build tag.
func NewDlibExtractor(string) (*DlibExtractor, error) {
	return nil, ErrDlibUnavailable
}

func (*DlibExtractor) FaceEncodings(context.Context, []byte) ([]Face, error) {
	return nil, ErrDlibUnavailable
}

func (*DlibExtractor) Close() error { return nil }
