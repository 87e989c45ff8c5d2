package file

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/custodia-labs/acadrag/internal/core/domain"
	"github.com/custodia-labs/acadrag/internal/core/ports/driven"
	"github.com/custodia-labs/acadrag/internal/logger"
	"github.com/custodia-labs/acadrag/internal/vectorindex/flat"
)

const (
	currentFile = "CURRENT"
	vectorsFile = "vectors.bin"
	chunksFile  = "chunks.json"
)

// IndexStore persists each user's index as numbered generations.
type IndexStore struct {
	root string
}

var _ driven.IndexStore = (*IndexStore)(nil)

// NewIndexStore creates an index store rooted at dataDir.
func NewIndexStore(dataDir string) *IndexStore {
	return &IndexStore{root: dataDir}
}

func (s *IndexStore) indexDir(userID string) (string, error) {
	dir, err := userDir(s.root, userID)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "index"), nil
}

// currentGeneration returns the live generation number, or 0 when none exists.
func currentGeneration(indexDir string) (int, error) {
	raw, err := os.ReadFile(filepath.Join(indexDir, currentFile))
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	gen, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil || gen <= 0 {
		return 0, fmt.Errorf("%w: bad CURRENT %q", domain.ErrCorruptIndex, raw)
	}
	return gen, nil
}

func generationName(gen int) string {
	return fmt.Sprintf("%06d", gen)
}

// Load reads the generation named by CURRENT. If a concurrent Save
// replaces and prunes that generation mid-read, the read is retried
// against the new one.
func (s *IndexStore) Load(_ context.Context, userID string) (*domain.IndexData, error) {
	dir, err := s.indexDir(userID)
	if err != nil {
		return nil, err
	}

	const attempts = 5
	for i := 0; ; i++ {
		gen, err := currentGeneration(dir)
		if err != nil {
			return nil, fmt.Errorf("reading index pointer: %w", err)
		}
		if gen == 0 {
			return nil, domain.ErrNotFound
		}

		data, err := readGeneration(filepath.Join(dir, generationName(gen)))
		if err == nil || i == attempts-1 {
			return data, err
		}
		if now, perr := currentGeneration(dir); perr != nil || now == gen {
			return nil, err
		}
	}
}

func readGeneration(genDir string) (*domain.IndexData, error) {
	vf, err := os.Open(filepath.Join(genDir, vectorsFile))
	if err != nil {
		return nil, fmt.Errorf("%w: opening vectors: %v", domain.ErrCorruptIndex, err)
	}
	defer vf.Close()

	dim, vectors, err := flat.DecodeVectors(vf)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(filepath.Join(genDir, chunksFile))
	if err != nil {
		return nil, fmt.Errorf("%w: reading chunks: %v", domain.ErrCorruptIndex, err)
	}
	var chunks []string
	if err := json.Unmarshal(raw, &chunks); err != nil {
		return nil, fmt.Errorf("%w: decoding chunks: %v", domain.ErrCorruptIndex, err)
	}

	data := &domain.IndexData{Dimension: dim, Vectors: vectors, Chunks: chunks}
	if err := data.Validate(); err != nil {
		return nil, err
	}
	return data, nil
}

// Save writes a new generation and then switches CURRENT to it.
// Older generations are removed afterwards on a best-effort basis.
func (s *IndexStore) Save(_ context.Context, userID string, data *domain.IndexData) error {
	if data == nil {
		return domain.ErrInvalidInput
	}
	if err := data.Validate(); err != nil {
		return err
	}

	dir, err := s.indexDir(userID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}

	prev, err := currentGeneration(dir)
	if err != nil {
		return fmt.Errorf("reading index pointer: %w", err)
	}
	next := prev + 1

	if err := writeGeneration(dir, next, data); err != nil {
		return err
	}
	if err := replaceFile(filepath.Join(dir, currentFile), []byte(strconv.Itoa(next)+"\n")); err != nil {
		return fmt.Errorf("switching index pointer: %w", err)
	}

	pruneGenerations(dir, next)
	return nil
}

// writeGeneration fills a temp directory and renames it to the generation name.
func writeGeneration(dir string, gen int, data *domain.IndexData) error {
	tmp, err := os.MkdirTemp(dir, ".gen-*")
	if err != nil {
		return fmt.Errorf("creating generation: %w", err)
	}
	defer os.RemoveAll(tmp) // no-op after a successful rename

	var vbuf bytes.Buffer
	if err := flat.EncodeVectors(&vbuf, data.Dimension, data.Vectors); err != nil {
		return err
	}
	if err := writeFileSync(filepath.Join(tmp, vectorsFile), vbuf.Bytes()); err != nil {
		return fmt.Errorf("writing vectors: %w", err)
	}

	chunks := data.Chunks
	if chunks == nil {
		chunks = []string{}
	}
	cbuf, err := json.Marshal(chunks)
	if err != nil {
		return fmt.Errorf("encoding chunks: %w", err)
	}
	if err := writeFileSync(filepath.Join(tmp, chunksFile), cbuf); err != nil {
		return fmt.Errorf("writing chunks: %w", err)
	}
	if err := syncDir(tmp); err != nil {
		return err
	}

	final := filepath.Join(dir, generationName(gen))
	// A leftover from a crash between rename and the CURRENT switch is never live.
	if err := os.RemoveAll(final); err != nil {
		return fmt.Errorf("clearing stale generation: %w", err)
	}
	if err := os.Rename(tmp, final); err != nil {
		return fmt.Errorf("publishing generation: %w", err)
	}
	return syncDir(dir)
}

func pruneGenerations(dir string, keep int) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		name := e.Name()
		gen, err := strconv.Atoi(name)
		if (err == nil && gen != keep) || strings.HasPrefix(name, ".gen-") {
			if err := os.RemoveAll(filepath.Join(dir, name)); err != nil {
				logger.Debug("prune index generation %s: %v", name, err)
			}
		}
	}
}

// Delete removes the user's index directory.
func (s *IndexStore) Delete(_ context.Context, userID string) error {
	dir, err := s.indexDir(userID)
	if err != nil {
		return err
	}
	// Drop the pointer first so a partial removal reads as "no index".
	if err := os.Remove(filepath.Join(dir, currentFile)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("deleting index pointer: %w", err)
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("deleting index: %w", err)
	}
	return nil
}
