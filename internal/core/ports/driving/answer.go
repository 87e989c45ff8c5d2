package driving

import (
	"context"

	"github.com/custodia-labs/acadrag/internal/core/domain"
)

// AnswerService answers questions from a user's indexed documents.
type AnswerService interface {
	// Ask retrieves the closest chunks and generates an answer.
	// Retrieval and generation failures degrade to a fallback Answer;
	// only invalid requests return an error.
	Ask(ctx context.Context, req domain.AskRequest) (*domain.Answer, error)
}
