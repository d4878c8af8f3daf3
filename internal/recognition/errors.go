package recognition

import (
	"errors"
	"net/http"
)

// Kind classifies a recognition failure.
type Kind int

const (
	KindInternal Kind = iota
	KindBadInput
	KindAmbiguousFaces
	KindNoFace
	KindNoTrainedFaces
	KindNoMatch
)

func (k Kind) String() string {
	switch k {
	case KindBadInput:
		return "bad_input"
	case KindAmbiguousFaces:
		return "ambiguous_faces"
	case KindNoFace:
		return "no_face"
	case KindNoTrainedFaces:
		return "no_trained_faces"
	case KindNoMatch:
		return "no_match"
	default:
		return "internal"
	}
}

// HTTPStatus maps the kind to its response status.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindBadInput, KindAmbiguousFaces, KindNoFace:
		return http.StatusBadRequest
	case KindNoTrainedFaces:
		return http.StatusNotFound
	case KindNoMatch:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Error is returned by every Service operation. Msg is safe to show to clients;
// Err carries the underlying cause for logs.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Client-facing messages.
const (
	MsgInvalidImage   = "Invalid image"
	MsgNoFaceTrain    = "No face detected in image"
	MsgMultipleFaces  = "Multiple faces detected. Please provide image with only one face"
	MsgNoFace         = "No face detected"
	MsgNoTrainedFaces = "No faces trained yet"
	MsgNotRecognized  = "Face not recognized"
	MsgInternal       = "Internal server error"
)

func newError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf returns the kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
