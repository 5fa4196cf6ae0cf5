// Package blob persists the stage-1 intermediate coordinates of a layer as a
// compact binary file: a small header of point count and dimensionality,
// followed by a flat array of little-endian 32-bit floats. The coordinates
// are large, rectangular, and only ever read whole, so a binary blob beats a
// row store for this one artifact.
package blob

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"

	"github.com/cleitonmarx/symbiont-semantic-atlas/internal/domain"
	"github.com/cleitonmarx/symbiont/depend"
	"github.com/google/uuid"
)

var keySanitizer = regexp.MustCompile(`[^a-zA-Z0-9]`)

// FileCoordinateStore implements domain.CoordinateStore on a local directory.
type FileCoordinateStore struct {
	baseDir string
}

// NewFileCoordinateStore creates a store rooted at baseDir.
func NewFileCoordinateStore(baseDir string) FileCoordinateStore {
	return FileCoordinateStore{baseDir: baseDir}
}

// SaveCoordinates writes the full coordinate matrix for a layer. The file is
// written to a temporary name and renamed so readers never observe a partial
// blob.
func (s FileCoordinateStore) SaveCoordinates(ctx context.Context, layerID uuid.UUID, coords [][]float64) error {
	dim := 0
	if len(coords) > 0 {
		dim = len(coords[0])
	}

	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, int32(len(coords))); err != nil {
		return fmt.Errorf("encode coordinate header: %w", err)
	}
	if err := binary.Write(&buf, binary.LittleEndian, int32(dim)); err != nil {
		return fmt.Errorf("encode coordinate header: %w", err)
	}
	for _, row := range coords {
		if len(row) != dim {
			return domain.NewValidationErr(fmt.Sprintf("coordinate row length mismatch: expected %d, got %d", dim, len(row)))
		}
		for _, v := range row {
			if err := binary.Write(&buf, binary.LittleEndian, float32(v)); err != nil {
				return fmt.Errorf("encode coordinates: %w", err)
			}
		}
	}

	if err := os.MkdirAll(s.baseDir, 0o755); err != nil {
		return fmt.Errorf("create coordinate directory: %w", err)
	}

	path := s.path(layerID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write coordinate blob: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("publish coordinate blob: %w", err)
	}
	return nil
}

// LoadCoordinates reads the coordinate matrix back.
func (s FileCoordinateStore) LoadCoordinates(ctx context.Context, layerID uuid.UUID) ([][]float64, bool, error) {
	data, err := os.ReadFile(s.path(layerID))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read coordinate blob: %w", err)
	}

	reader := bytes.NewReader(data)
	var count, dim int32
	if err := binary.Read(reader, binary.LittleEndian, &count); err != nil {
		return nil, false, fmt.Errorf("decode coordinate header: %w", err)
	}
	if err := binary.Read(reader, binary.LittleEndian, &dim); err != nil {
		return nil, false, fmt.Errorf("decode coordinate header: %w", err)
	}
	if count < 0 || dim < 0 {
		return nil, false, fmt.Errorf("corrupt coordinate header: count=%d dim=%d", count, dim)
	}

	values := make([]float32, int(count)*int(dim))
	if err := binary.Read(reader, binary.LittleEndian, &values); err != nil {
		return nil, false, fmt.Errorf("decode coordinates: %w", err)
	}

	coords := make([][]float64, count)
	for i := range coords {
		row := make([]float64, dim)
		for j := range row {
			row[j] = float64(values[i*int(dim)+j])
		}
		coords[i] = row
	}
	return coords, true, nil
}

// DeleteCoordinates removes the blob for a layer. Missing blobs are not an error.
func (s FileCoordinateStore) DeleteCoordinates(ctx context.Context, layerID uuid.UUID) error {
	err := os.Remove(s.path(layerID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete coordinate blob: %w", err)
	}
	return nil
}

func (s FileCoordinateStore) path(layerID uuid.UUID) string {
	key := keySanitizer.ReplaceAllString(layerID.String(), "")
	return filepath.Join(s.baseDir, key+".coords")
}

// InitCoordinateStore initializes the FileCoordinateStore and registers it in
// the dependency container.
type InitCoordinateStore struct {
	Logger  *log.Logger `resolve:""`
	BaseDir string      `config:"COORDINATE_STORE_DIR" default:"data/coordinates"`
}

// Initialize registers the FileCoordinateStore in the dependency container.
func (i InitCoordinateStore) Initialize(ctx context.Context) (context.Context, error) {
	if err := os.MkdirAll(i.BaseDir, 0o755); err != nil {
		return ctx, fmt.Errorf("create coordinate directory: %w", err)
	}
	i.Logger.Printf("InitCoordinateStore: using %s", i.BaseDir)
	depend.Register[domain.CoordinateStore](NewFileCoordinateStore(i.BaseDir))
	return ctx, nil
}
