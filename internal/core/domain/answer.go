package domain

// Fixed answer texts returned instead of generated text.
const (
	NoDocumentsAnswer = "No documents uploaded yet."
	FallbackAnswer    = "Model did not respond."
)

// AnswerStatus describes how an Answer was produced.
type AnswerStatus string

const (
	// AnswerGenerated means the generator produced the text.
	AnswerGenerated AnswerStatus = "ok"

	// AnswerNoDocuments means the user has nothing indexed.
	AnswerNoDocuments AnswerStatus = "no_documents"

	// AnswerFallback means retrieval or generation failed and
	// the fixed fallback text was returned.
	AnswerFallback AnswerStatus = "fallback"
)

// AskRequest is a question against one user's documents.
type AskRequest struct {
	UserID string
	Query  string

	// TopK is the number of chunks to retrieve. It is clamped
	// to [1, number of indexed chunks].
	TopK int

	// ContextCharLimit caps each retrieved chunk, in characters.
	// Zero or negative uses the configured default.
	ContextCharLimit int
}

// Answer is the result of a question, with provenance.
type Answer struct {
	Text string

	// Retrieved holds the truncated chunks given to the generator,
	// closest first.
	Retrieved []string

	Status AnswerStatus
}

// IngestResult summarises one ingestion.
type IngestResult struct {
	// Chunks is the number of chunks appended to the index.
	Chunks int

	// Total is the index size after the ingestion.
	Total int
}
