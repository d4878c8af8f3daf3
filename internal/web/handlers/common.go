package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/kozaktomas/face-auth/internal/constants"
	"github.com/kozaktomas/face-auth/internal/recognition"
)

// Client messages for upload failures.
const (
	errNoImage        = "No image provided"
	errInvalidRequest = "Request must be multipart/form-data with an image field"
	errImageTooLarge  = "Image too large"
)

// sanitizeForLog removes newlines and carriage returns to prevent log injection.
func sanitizeForLog(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps a recognition error to its status and client message.
// Internal details are never sent; the service has already logged them.
func respondServiceError(w http.ResponseWriter, err error) {
	var e *recognition.Error
	if errors.As(err, &e) {
		msg := e.Msg
		if e.Kind == recognition.KindInternal {
			msg = recognition.MsgInternal
		}
		respondError(w, e.Kind.HTTPStatus(), msg)
		return
	}
	respondError(w, http.StatusInternalServerError, recognition.MsgInternal)
}

// Upload failures, told apart so clients get a precise 4xx.
var (
	errMissingImage   = errors.New("missing image")
	errMalformedForm  = errors.New("malformed multipart form")
	errUploadTooLarge = errors.New("upload too large")
)

// readImage parses the multipart form and returns the bytes of the image part.
// The body is capped at MaxUploadSize before anything is parsed.
func readImage(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxUploadSize)
	if err := r.ParseMultipartForm(constants.MaxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, errUploadTooLarge
		}
		return nil, fmt.Errorf("%w: %w", errMalformedForm, err)
	}

	file, _, err := r.FormFile(constants.ImageFormField)
	if err != nil {
		return nil, errMissingImage
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	return data, nil
}

// formValue returns a trimmed multipart value and whether it was present and non-empty.
func formValue(r *http.Request, key string) (string, bool) {
	if r.MultipartForm == nil {
		return "", false
	}
	vals, ok := r.MultipartForm.Value[key]
	if !ok || len(vals) == 0 {
		return "", false
	}
	v := strings.TrimSpace(vals[0])
	return v, v != ""
}
