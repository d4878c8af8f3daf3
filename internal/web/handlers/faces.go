package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/kozaktomas/face-auth/internal/facematch"
	"github.com/kozaktomas/face-auth/internal/recognition"
	"github.com/kozaktomas/face-auth/internal/vision"
)

// FacesHandler handles detection, training and recognition uploads.
type FacesHandler struct {
	service *recognition.Service
	logger  *slog.Logger
}

// NewFacesHandler creates a new faces handler.
func NewFacesHandler(service *recognition.Service, logger *slog.Logger) *FacesHandler {
	return &FacesHandler{service: service, logger: logger}
}

// uploadedImage reads the image part or writes the error response and returns false.
func (h *FacesHandler) uploadedImage(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	data, err := readImage(w, r)
	switch {
	case err == nil:
		return data, true
	case errors.Is(err, errMissingImage):
		respondError(w, http.StatusBadRequest, errNoImage)
		return nil, false
	case errors.Is(err, errUploadTooLarge):
		respondError(w, http.StatusRequestEntityTooLarge, errImageTooLarge)
		return nil, false
	case errors.Is(err, errMalformedForm):
		h.logger.Debug("malformed upload", "error", err)
		respondError(w, http.StatusBadRequest, errInvalidRequest)
		return nil, false
	default:
		h.logger.Error("failed to read upload", "error", err)
		respondError(w, http.StatusBadRequest, recognition.MsgInvalidImage)
		return nil, false
	}
}

type detectResponse struct {
	Faces []vision.Box `json:"faces"`
	Count int          `json:"count"`
}

// Detect handles POST /detect_faces.
func (h *FacesHandler) Detect(w http.ResponseWriter, r *http.Request) {
	data, ok := h.uploadedImage(w, r)
	if !ok {
		return
	}

	boxes, err := h.service.Detect(r.Context(), data)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, detectResponse{Faces: boxes, Count: len(boxes)})
}

type trainResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	DriverID int64  `json:"driver_id"`
	Replaced bool   `json:"replaced"`
}

// Train handles POST /train_face.
func (h *FacesHandler) Train(w http.ResponseWriter, r *http.Request) {
	data, ok := h.uploadedImage(w, r)
	if !ok {
		return
	}

	rawID, ok := formValue(r, "driver_id")
	if !ok {
		respondError(w, http.StatusBadRequest, "driver_id required")
		return
	}
	name, ok := formValue(r, "name")
	if !ok {
		respondError(w, http.StatusBadRequest, "name required")
		return
	}
	driverID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "driver_id must be an integer")
		return
	}

	replaced, err := h.service.Train(r.Context(), data, driverID, name)
	if err != nil {
		h.logger.Info("training rejected", "driver_id", driverID, "name", sanitizeForLog(name), "error", err)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, trainResponse{
		Success:  true,
		Message:  fmt.Sprintf("Face registered for %s", facematch.CleanDisplayName(name)),
		DriverID: driverID,
		Replaced: replaced,
	})
}

type recognizeResponse struct {
	Success    bool    `json:"success"`
	DriverID   int64   `json:"driver_id"`
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
	Message    string  `json:"message"`
}

type notRecognizedResponse struct {
	Success      bool    `json:"success"`
	Error        string  `json:"error"`
	BestDistance float64 `json:"best_distance"`
}

// Recognize handles POST /recognize_face.
func (h *FacesHandler) Recognize(w http.ResponseWriter, r *http.Request) {
	data, ok := h.uploadedImage(w, r)
	if !ok {
		return
	}

	rec, err := h.service.Recognize(r.Context(), data)
	if recognition.KindOf(err) == recognition.KindNoMatch && rec != nil {
		respondJSON(w, http.StatusUnauthorized, notRecognizedResponse{
			Success:      false,
			Error:        recognition.MsgNotRecognized,
			BestDistance: rec.Distance,
		})
		return
	}
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, recognizeResponse{
		Success:    true,
		DriverID:   rec.DriverID,
		Name:       rec.Name,
		Confidence: rec.Confidence,
		Message:    fmt.Sprintf("Face recognized: %s", rec.Name),
	})
}
