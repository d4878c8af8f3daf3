package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/kozaktomas/face-auth/internal/config"
	"github.com/kozaktomas/face-auth/internal/database"
	_ "github.com/kozaktomas/face-auth/internal/database/mariadb"
	_ "github.com/kozaktomas/face-auth/internal/database/postgres"
	_ "github.com/kozaktomas/face-auth/internal/database/sqlite"
	"github.com/kozaktomas/face-auth/internal/facestore"
	"github.com/kozaktomas/face-auth/internal/logging"
	"github.com/kozaktomas/face-auth/internal/recognition"
	"github.com/kozaktomas/face-auth/internal/trainer"
	"github.com/kozaktomas/face-auth/internal/vision"
)

// app holds everything a command needs, built from the loaded config.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	store     *facestore.Store
	extractor vision.Extractor
	service   *recognition.Service
	closer    io.Closer
}

// newApp loads config, the face store and the extractor.
// Overrides are applied to the loaded config before anything is built.
func newApp(overrides ...func(*config.Config)) (*app, error) {
	cfg := config.Load()
	for _, override := range overrides {
		override(cfg)
	}
	logger := logging.New(cfg.Log.Level, cfg.Log.Format)

	store := facestore.New(cfg.Store.Path, logger)
	loaded := store.Load()
	logger.Debug("face store loaded", "path", cfg.Store.Path, "faces", loaded)

	extractor, closer, err := newExtractor(&cfg.Embedding, logger)
	if err != nil {
		return nil, err
	}

	service := recognition.NewService(store, extractor, driverSource(&cfg.Drivers), recognition.Options{
		Threshold:    cfg.Match.Threshold,
		MaxImageSize: cfg.Match.MaxImageSize,
		Train: trainer.Options{
			ImageDir:    cfg.Drivers.ImageDir,
			Concurrency: cfg.Train.Concurrency,
		},
		Logger: logger,
	})

	return &app{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		extractor: extractor,
		service:   service,
		closer:    closer,
	}, nil
}

// Close releases the extractor.
func (a *app) Close() {
	if a.closer == nil {
		return
	}
	if err := a.closer.Close(); err != nil {
		a.logger.Warn("closing extractor", "error", err)
	}
}

func newExtractor(cfg *config.EmbeddingConfig, logger *slog.Logger) (vision.Extractor, io.Closer, error) {
	switch cfg.Backend {
	case "", "remote":
		client := vision.NewClient(cfg.URL, vision.ClientOptions{
			Timeout:    cfg.Timeout(),
			MaxRetries: cfg.MaxRetries,
			RPS:        cfg.RPS,
			Logger:     logger,
		})
		return client, nil, nil
	case "dlib":
		rec, err := vision.NewDlibExtractor(cfg.DlibModelsDir)
		if err != nil {
			return nil, nil, fmt.Errorf("initializing dlib extractor: %w", err)
		}
		return rec, rec, nil
	default:
		return nil, nil, fmt.Errorf("unknown face backend %q (expected remote or dlib)", cfg.Backend)
	}
}

func driverSource(cfg *config.DriversConfig) recognition.DriverSource {
	if cfg.DatabaseURL == "" {
		return nil
	}
	opts := database.PoolOptions{
		MaxOpenConns: cfg.MaxOpenConns,
		MaxIdleConns: cfg.MaxIdleConns,
	}
	return func(ctx context.Context) (database.DriverReader, error) {
		return database.Open(ctx, cfg.DatabaseURL, opts)
	}
}

// confirmAction prompts the user for y/n confirmation
func confirmAction(prompt string) bool {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	response, _ := reader.ReadString('\n')
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}

func outputJSON(data any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}
	return nil
}
