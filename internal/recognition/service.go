// Package recognition sequences image decoding, face extraction, matching and training
// for both the HTTP API and the CLI.
package recognition

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kozaktomas/face-auth/internal/constants"
	"github.com/kozaktomas/face-auth/internal/database"
	"github.com/kozaktomas/face-auth/internal/facematch"
	"github.com/kozaktomas/face-auth/internal/facestore"
	"github.com/kozaktomas/face-auth/internal/trainer"
	"github.com/kozaktomas/face-auth/internal/vision"
)

// DriverSource opens the drivers table for a bulk training run.
type DriverSource func(ctx context.Context) (database.DriverReader, error)

// Options configures the service.
type Options struct {
	Threshold    float64
	MaxImageSize int
	Train        trainer.Options
	Logger       *slog.Logger
}

// Service owns the face store and the extractor.
type Service struct {
	store     *facestore.Store
	extractor vision.Extractor
	drivers   DriverSource
	opts      Options
	logger    *slog.Logger
}

// NewService creates a service. drivers may be nil when no drivers database is configured.
func NewService(store *facestore.Store, extractor vision.Extractor, drivers DriverSource, opts Options) *Service {
	if opts.Threshold <= 0 {
		opts.Threshold = constants.DefaultMatchThreshold
	}
	if opts.MaxImageSize <= 0 {
		opts.MaxImageSize = constants.MaxImageSize
	}
	if opts.Train.MaxImageSize <= 0 {
		opts.Train.MaxImageSize = opts.MaxImageSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		store:     store,
		extractor: extractor,
		drivers:   drivers,
		opts:      opts,
		logger:    logger,
	}
}

// Threshold returns the match threshold in use.
func (s *Service) Threshold() float64 {
	return s.opts.Threshold
}

// TrainedFaces returns the number of stored faces.
func (s *Service) TrainedFaces() int {
	return s.store.Size()
}

// Recognition is the outcome of Recognize.
type Recognition struct {
	DriverID   int64   `json:"driver_id"`
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
	Distance   float64 `json:"distance"`
	Matched    bool    `json:"matched"`
}

// Status lists what is currently trained.
type Status struct {
	TrainedFaces int      `json:"trained_faces"`
	DriverIDs    []int64  `json:"drivers"`
	Names        []string `json:"names"`
}

func (s *Service) prepare(data []byte) (*vision.Prepared, error) {
	img, err := vision.PrepareImage(data, s.opts.MaxImageSize)
	if err != nil {
		if errors.Is(err, vision.ErrInvalidImage) {
			return nil, newError(KindBadInput, MsgInvalidImage, err)
		}
		return nil, s.internal("prepare image", err)
	}
	return img, nil
}

func (s *Service) extract(ctx context.Context, img *vision.Prepared) ([]vision.Face, error) {
	faces, err := s.extractor.FaceEncodings(ctx, img.JPEG)
	if err != nil {
		return nil, s.internal("extract faces", err)
	}
	return faces, nil
}

func (s *Service) internal(op string, err error) *Error {
	s.logger.Error("recognition failed", "op", op, "error", err)
	return newError(KindInternal, MsgInternal, fmt.Errorf("%s: %w", op, err))
}

// Detect returns the bounding boxes of all faces, in original image pixels.
func (s *Service) Detect(ctx context.Context, data []byte) ([]vision.Box, error) {
	img, err := s.prepare(data)
	if err != nil {
		return nil, err
	}
	faces, err := s.extract(ctx, img)
	if err != nil {
		return nil, err
	}

	boxes := make([]vision.Box, 0, len(faces))
	for _, f := range faces {
		boxes = append(boxes, f.Box.Scale(img.Scale))
	}
	return boxes, nil
}

// Train registers the single face in the image for driverID.
// An existing entry for the driver is replaced; the result reports whether that happened.
func (s *Service) Train(ctx context.Context, data []byte, driverID int64, name string) (replaced bool, err error) {
	img, err := s.prepare(data)
	if err != nil {
		return false, err
	}
	faces, err := s.extract(ctx, img)
	if err != nil {
		return false, err
	}

	switch {
	case len(faces) == 0:
		return false, newError(KindNoFace, MsgNoFaceTrain, nil)
	case len(faces) > 1:
		return false, newError(KindAmbiguousFaces, MsgMultipleFaces, nil)
	}

	name = facematch.CleanDisplayName(name)
	replaced, err = s.store.Upsert(facestore.Record{
		Embedding: faces[0].Embedding,
		DriverID:  driverID,
		Name:      name,
	})
	if err != nil {
		return false, s.internal("save face", err)
	}

	s.logger.Info("face registered", "driver_id", driverID, "name", name, "replaced", replaced)
	return replaced, nil
}

// Recognize matches the first face in the image against the store.
// On KindNoMatch the returned Recognition is non-nil and carries the best distance.
func (s *Service) Recognize(ctx context.Context, data []byte) (*Recognition, error) {
	img, err := s.prepare(data)
	if err != nil {
		return nil, err
	}
	if s.store.Size() == 0 {
		return nil, newError(KindNoTrainedFaces, MsgNoTrainedFaces, facematch.ErrNoTrainedFaces)
	}

	faces, err := s.extract(ctx, img)
	if err != nil {
		return nil, err
	}
	if len(faces) == 0 {
		return nil, newError(KindNoFace, MsgNoFace, nil)
	}

	res, err := s.store.Match(faces[0].Embedding, s.opts.Threshold)
	if errors.Is(err, facematch.ErrNoTrainedFaces) {
		// reset between the size check and the match
		return nil, newError(KindNoTrainedFaces, MsgNoTrainedFaces, err)
	}
	if err != nil {
		return nil, s.internal("match", err)
	}

	rec := &Recognition{
		DriverID:   res.DriverID,
		Name:       res.Name,
		Confidence: res.Confidence,
		Distance:   res.Distance,
		Matched:    res.Matched,
	}
	if !res.Matched {
		s.logger.Info("face not recognized", "best_distance", res.Distance)
		return rec, newError(KindNoMatch, MsgNotRecognized, nil)
	}

	s.logger.Info("face recognized", "driver_id", res.DriverID, "name", res.Name, "distance", res.Distance)
	return rec, nil
}

// Status returns the trained drivers in store order.
func (s *Service) Status() Status {
	ids, names := s.store.Entries()
	if ids == nil {
		ids = []int64{}
	}
	if names == nil {
		names = []string{}
	}
	return Status{TrainedFaces: len(ids), DriverIDs: ids, Names: names}
}

// Reset removes every trained face.
func (s *Service) Reset() error {
	if err := s.store.Reset(); err != nil {
		return s.internal("reset", err)
	}
	s.logger.Info("all trained faces reset")
	return nil
}

// TrainAll runs the bootstrap trainer against the drivers table.
// A missing drivers database is logged and yields an empty report.
func (s *Service) TrainAll(ctx context.Context) (*trainer.Report, error) {
	return s.TrainAllWithProgress(ctx, nil)
}

// TrainAllWithProgress is TrainAll with a progress callback.
// If ctx ends mid-run the faces trained so far are kept and returned with the error.
func (s *Service) TrainAllWithProgress(ctx context.Context, progress func(done, total int)) (*trainer.Report, error) {
	empty := &trainer.Report{Rejected: map[string]int{}, DriverIDs: []int64{}, Total: s.store.Size()}
	if s.drivers == nil {
		s.logger.Warn("no drivers database configured, skipping training")
		return empty, nil
	}

	reader, err := s.drivers(ctx)
	if errors.Is(err, database.ErrDatabaseMissing) {
		s.logger.Warn("drivers database not found, skipping training", "error", err)
		return empty, nil
	}
	if err != nil {
		return nil, s.internal("open drivers database", err)
	}
	defer func() { _ = reader.Close() }()

	opts := s.opts.Train
	opts.Progress = progress
	report, err := trainer.New(s.store, reader, s.extractor, opts, s.logger).Run(ctx)
	if err != nil {
		// report is non-nil when the run was cut short after persisting what it had
		return report, s.internal("train all", err)
	}
	return report, nil
}
