package facestore

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/renameio"
	"github.com/klauspost/compress/zstd"
)

const snapshotVersion = 1

// ErrCorruptSnapshot is returned when a snapshot file exists but cannot be decoded.
var ErrCorruptSnapshot = errors.New("corrupt face snapshot")

// snapshot is the on-disk layout: three index-aligned sequences.
type snapshot struct {
	Version    int
	Embeddings [][]float32
	Names      []string
	DriverIDs  []int64
}

func (s *snapshot) valid() bool {
	return len(s.Embeddings) == len(s.Names) && len(s.Names) == len(s.DriverIDs)
}

// writeSnapshot replaces the file at path with the encoded snapshot.
// The previous file stays intact until the rename succeeds.
func writeSnapshot(path string, snap *snapshot) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	t, err := renameio.TempFile(dir, path)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() { _ = t.Cleanup() }()

	if err := encodeSnapshot(t, snap); err != nil {
		return err
	}

	if err := t.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}

func encodeSnapshot(w io.Writer, snap *snapshot) error {
	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("failed to create compressor: %w", err)
	}

	if err := gob.NewEncoder(zw).Encode(snap); err != nil {
		_ = zw.Close()
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to flush compressor: %w", err)
	}
	return nil
}

// readSnapshot loads the file at path. A missing file returns os.ErrNotExist;
// anything undecodable returns ErrCorruptSnapshot.
func readSnapshot(path string) (*snapshot, error) {
	f, err := os.Open(path) //nolint:gosec // path is from trusted config
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return decodeSnapshot(f)
}

func decodeSnapshot(r io.Reader) (*snapshot, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptSnapshot, err)
	}
	defer zr.Close()

	var snap snapshot
	if err := gob.NewDecoder(zr).Decode(&snap); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptSnapshot, err)
	}
	if snap.Version != snapshotVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorruptSnapshot, snap.Version)
	}
	if !snap.valid() {
		return nil, fmt.Errorf("%w: sequence lengths differ (%d embeddings, %d names, %d ids)",
			ErrCorruptSnapshot, len(snap.Embeddings), len(snap.Names), len(snap.DriverIDs))
	}
	return &snap, nil
}
