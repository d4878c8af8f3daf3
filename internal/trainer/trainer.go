// Package trainer bulk-registers faces from the drivers table into the face store.
package trainer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kozaktomas/face-auth/internal/constants"
	"github.com/kozaktomas/face-auth/internal/database"
	"github.com/kozaktomas/face-auth/internal/facematch"
	"github.com/kozaktomas/face-auth/internal/facestore"
	"github.com/kozaktomas/face-auth/internal/vision"
)

// Rejection reasons reported per record.
const (
	ReasonNoFace         = "no_face"
	ReasonMultipleFaces  = "multiple_faces"
	ReasonMissingFile    = "missing_file"
	ReasonReadError      = "read_error"
	ReasonInvalidImage   = "invalid_image"
	ReasonExtractorError = "extractor_error"
)

// Options configures a training run.
type Options struct {
	ImageDir     string
	Concurrency  int
	MaxImageSize int
	// Progress is called after each candidate driver is processed (done of total).
	Progress func(done, total int)
}

// Report summarizes a training run.
type Report struct {
	RunID      string         `json:"run_id"`
	Candidates int            `json:"candidates"` // drivers with images not yet trained
	Processed  int            `json:"processed"`  // candidates handled before the run ended
	Trained    int            `json:"trained"`
	Skipped    int            `json:"skipped"` // already in the store
	Rejected   map[string]int `json:"rejected"`
	Total      int            `json:"total_trained_faces"`
	DriverIDs  []int64        `json:"driver_ids"` // newly trained
}

// Trainer registers every driver with a profile photo that is not yet in the store.
type Trainer struct {
	store     *facestore.Store
	drivers   database.DriverReader
	extractor vision.Extractor
	opts      Options
	logger    *slog.Logger
}

// New creates a trainer.
func New(store *facestore.Store, drivers database.DriverReader, extractor vision.Extractor, opts Options, logger *slog.Logger) *Trainer {
	if opts.Concurrency <= 0 {
		opts.Concurrency = constants.DefaultTrainConcurrency
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Trainer{
		store:     store,
		drivers:   drivers,
		extractor: extractor,
		opts:      opts,
		logger:    logger,
	}
}

// ImagePath resolves a stored image reference (e.g. "drivers/abc.jpg") inside the image directory.
// Only the base name is used, so references cannot escape the directory.
func ImagePath(imageDir, ref string) string {
	return filepath.Join(imageDir, filepath.Base(ref))
}

type outcome struct {
	done   bool
	record facestore.Record
	reason string // empty when accepted
}

// Run trains all drivers with images that are not yet in the store and persists once.
// Only a failure to list drivers or to persist aborts the run; bad records are skipped.
// When ctx ends early the faces extracted so far are still persisted, and the partial
// report is returned together with the context error.
func (t *Trainer) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		RunID:    uuid.NewString(),
		Rejected: make(map[string]int),
	}
	log := t.logger.With("run_id", report.RunID)

	all, err := t.drivers.ListWithImages(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list drivers: %w", err)
	}
	log.Info("found drivers with images", "count", len(all))

	var candidates []database.Driver
	for _, d := range all {
		if t.store.Has(d.ID) {
			report.Skipped++
			continue
		}
		candidates = append(candidates, d)
	}
	report.Candidates = len(candidates)

	outcomes := make([]outcome, len(candidates))
	progress := newCounter(len(candidates), t.opts.Progress)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.opts.Concurrency)
	for i, d := range candidates {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			outcomes[i] = t.process(gctx, log, d)
			progress.inc()
			return nil
		})
	}
	_ = g.Wait()

	var accepted []facestore.Record
	for _, o := range outcomes {
		if !o.done {
			continue
		}
		report.Processed++
		if o.reason != "" {
			report.Rejected[o.reason]++
			continue
		}
		accepted = append(accepted, o.record)
	}

	added, err := t.store.AddNew(accepted)
	if err != nil {
		return nil, err
	}
	report.Trained = len(added)
	report.DriverIDs = added
	if report.DriverIDs == nil {
		report.DriverIDs = []int64{}
	}
	report.Total = t.store.Size()

	log.Info("training finished",
		"trained", report.Trained,
		"skipped", report.Skipped,
		"rejected", report.Rejected,
		"total", report.Total)

	if err := ctx.Err(); err != nil {
		log.Warn("training interrupted", "processed", report.Processed, "candidates", report.Candidates)
		return report, fmt.Errorf("training cancelled after %d of %d drivers: %w", report.Processed, report.Candidates, err)
	}
	return report, nil
}

func (t *Trainer) process(ctx context.Context, log *slog.Logger, d database.Driver) outcome {
	log = log.With("driver_id", d.ID, "name", d.Name)
	reject := func(reason string, args ...any) outcome {
		log.Warn("skipping driver", append([]any{"reason", reason}, args...)...)
		return outcome{done: true, reason: reason}
	}

	path := ImagePath(t.opts.ImageDir, d.Image)
	data, err := os.ReadFile(path) //nolint:gosec // path is confined to the image directory
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return reject(ReasonMissingFile, "path", path)
		}
		return reject(ReasonReadError, "path", path, "error", err)
	}

	img, err := vision.PrepareImage(data, t.opts.MaxImageSize)
	if err != nil {
		return reject(ReasonInvalidImage, "path", path, "error", err)
	}

	faces, err := t.extractor.FaceEncodings(ctx, img.JPEG)
	if err != nil {
		if ctx.Err() != nil {
			// interrupted, not a verdict on this driver
			return outcome{}
		}
		return reject(ReasonExtractorError, "error", err)
	}
	switch {
	case len(faces) == 0:
		return reject(ReasonNoFace)
	case len(faces) > 1:
		return reject(ReasonMultipleFaces, "faces", len(faces))
	}

	log.Debug("face extracted")
	return outcome{done: true, record: facestore.Record{
		Embedding: faces[0].Embedding,
		DriverID:  d.ID,
		Name:      facematch.CleanDisplayName(d.Name),
	}}
}
