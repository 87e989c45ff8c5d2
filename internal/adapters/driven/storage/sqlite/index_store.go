package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/acadrag/internal/core/domain"
	"github.com/custodia-labs/acadrag/internal/core/ports/driven"
)

// indexStore implements driven.IndexStore.
type indexStore struct {
	store *Store
}

var _ driven.IndexStore = (*indexStore)(nil)

// Load reads a user's vectors and chunks in position order.
func (s *indexStore) Load(ctx context.Context, userID string) (*domain.IndexData, error) {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var dimension, count int
	err = tx.QueryRowContext(ctx,
		"SELECT dimension, vector_count FROM user_indexes WHERE user_id = ?", userID,
	).Scan(&dimension, &count)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading index header: %w", err)
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT position, content, embedding FROM index_entries
		WHERE user_id = ? ORDER BY position
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying index entries: %w", err)
	}
	defer rows.Close()

	data := &domain.IndexData{
		Dimension: dimension,
		Vectors:   make([][]float32, 0, count),
		Chunks:    make([]string, 0, count),
	}
	for rows.Next() {
		var position int
		var content string
		var blob []byte
		if err := rows.Scan(&position, &content, &blob); err != nil {
			return nil, fmt.Errorf("scanning index entry: %w", err)
		}
		if position != len(data.Vectors) {
			return nil, fmt.Errorf("%w: missing position %d", domain.ErrCorruptIndex, len(data.Vectors))
		}
		data.Vectors = append(data.Vectors, bytesToFloat32Slice(blob))
		data.Chunks = append(data.Chunks, content)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating index entries: %w", err)
	}

	if data.Len() != count {
		return nil, fmt.Errorf("%w: header says %d vectors, found %d", domain.ErrCorruptIndex, count, data.Len())
	}
	if err := data.Validate(); err != nil {
		return nil, err
	}
	return data, nil
}

// Save replaces the user's index in one transaction.
func (s *indexStore) Save(ctx context.Context, userID string, data *domain.IndexData) error {
	if data == nil {
		return domain.ErrInvalidInput
	}
	if err := data.Validate(); err != nil {
		return err
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM index_entries WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("clearing index entries: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO user_indexes (user_id, dimension, vector_count, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			dimension = excluded.dimension,
			vector_count = excluded.vector_count,
			updated_at = excluded.updated_at
	`, userID, data.Dimension, data.Len(), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("saving index header: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO index_entries (user_id, position, content, embedding) VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i, v := range data.Vectors {
		if _, err := stmt.ExecContext(ctx, userID, i, data.Chunks[i], float32SliceToBytes(v)); err != nil {
			return fmt.Errorf("saving index entry %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Delete removes the user's index; entries cascade.
func (s *indexStore) Delete(ctx context.Context, userID string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM user_indexes WHERE user_id = ?", userID)
	if err != nil {
		return fmt.Errorf("deleting index: %w", err)
	}
	return nil
}
