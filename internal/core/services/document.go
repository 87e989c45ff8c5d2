package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/acadrag/internal/core/domain"
	"github.com/custodia-labs/acadrag/internal/core/ports/driven"
	"github.com/custodia-labs/acadrag/internal/core/ports/driving"
	"github.com/custodia-labs/acadrag/internal/logger"
	"github.com/custodia-labs/acadrag/internal/normalisers"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService manages a user's uploaded documents.
type DocumentService struct {
	docs   driven.DocumentStore
	blobs  driven.BlobStore
	notes  driven.NotesStore
	ingest driving.IngestService
	policy domain.DeletePolicy

	// locks serialises uploads and deletes per user so a rebuild never
	// misses a document registered while it runs. It is separate from
	// the index lock held inside IngestService.
	locks *KeyedMutex
	now   func() time.Time
}

// NewDocumentService creates a new document service.
func NewDocumentService(
	docs driven.DocumentStore,
	blobs driven.BlobStore,
	notes driven.NotesStore,
	ingest driving.IngestService,
	policy domain.DeletePolicy,
) *DocumentService {
	if !policy.IsValid() {
		policy = domain.DeleteRetain
	}
	return &DocumentService{
		docs:   docs,
		blobs:  blobs,
		notes:  notes,
		ingest: ingest,
		policy: policy,
		locks:  NewKeyedMutex(),
		now:    time.Now,
	}
}

// Upload stores the file, registers it and ingests it. When registration
// or ingestion fails the stored file and registry entry are removed again,
// so a failed upload leaves nothing behind.
func (s *DocumentService) Upload(
	ctx context.Context,
	userID, filename string,
	data []byte,
) (*domain.Document, error) {
	if err := domain.ValidateUserID(userID); err != nil {
		return nil, err
	}
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return nil, fmt.Errorf("%w: empty filename", domain.ErrInvalidInput)
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	id := uuid.NewString()
	path, err := s.blobs.Save(ctx, userID, id+"_"+filename, data)
	if err != nil {
		return nil, fmt.Errorf("store %s: %w", filename, err)
	}

	mimeType := normalisers.DetectMIMEType(filename, data)
	doc := &domain.Document{
		ID:        id,
		UserID:    userID,
		Name:      filename,
		Path:      path,
		MIMEType:  mimeType,
		Size:      int64(len(data)),
		CreatedAt: s.now().UTC(),
	}
	if err := s.docs.SaveDocument(ctx, doc); err != nil {
		s.removeBlob(ctx, path)
		return nil, fmt.Errorf("register %s: %w", filename, err)
	}

	// ingestion commits the index last, so a failure here has not
	// touched the user's index
	raw := &domain.RawDocument{URI: filename, MIMEType: mimeType, Content: data}
	if _, err := s.ingest.Ingest(ctx, userID, raw); err != nil {
		if delErr := s.docs.DeleteDocument(ctx, userID, id); delErr != nil {
			logger.Warn("documents: unregistering %s failed: %v", id, delErr)
		}
		s.removeBlob(ctx, path)
		return nil, fmt.Errorf("ingest %s: %w", filename, err)
	}
	return doc, nil
}

func (s *DocumentService) removeBlob(ctx context.Context, path string) {
	if err := s.blobs.Delete(ctx, path); err != nil {
		logger.Warn("documents: cleanup of %s failed: %v", path, err)
	}
}

// List returns the user's documents, oldest first.
func (s *DocumentService) List(ctx context.Context, userID string) ([]domain.Document, error) {
	if err := domain.ValidateUserID(userID); err != nil {
		return nil, err
	}
	return s.docs.ListDocuments(ctx, userID)
}

// Delete removes the document's registry entry and stored file. Under the
// retain policy its chunks stay in the index; under rebuild the index is
// rebuilt from the remaining documents.
func (s *DocumentService) Delete(ctx context.Context, userID, documentID string) error {
	if err := domain.ValidateUserID(userID); err != nil {
		return err
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	doc, err := s.docs.GetDocument(ctx, userID, documentID)
	if err != nil {
		return err
	}
	if err := s.docs.DeleteDocument(ctx, userID, documentID); err != nil {
		return err
	}
	if err := s.blobs.Delete(ctx, doc.Path); err != nil {
		logger.Warn("documents: removing %s failed: %v", doc.Path, err)
	}

	if s.policy != domain.DeleteRebuild {
		return nil
	}
	return s.rebuild(ctx, userID)
}

func (s *DocumentService) rebuild(ctx context.Context, userID string) error {
	remaining, err := s.docs.ListDocuments(ctx, userID)
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}

	raws := make([]*domain.RawDocument, 0, len(remaining))
	for _, d := range remaining {
		data, err := s.blobs.Read(ctx, d.Path)
		if err != nil {
			return fmt.Errorf("read %s: %w", d.Name, err)
		}
		raws = append(raws, &domain.RawDocument{URI: d.Name, MIMEType: d.MIMEType, Content: data})
	}

	if _, err := s.ingest.Rebuild(ctx, userID, raws); err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}
	return nil
}

// Notes returns the user's accumulated notes.
func (s *DocumentService) Notes(ctx context.Context, userID string) (string, error) {
	if err := domain.ValidateUserID(userID); err != nil {
		return "", err
	}
	if s.notes == nil {
		return "", nil
	}
	return s.notes.Read(ctx, userID)
}
