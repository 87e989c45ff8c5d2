package driven

// PromptStore provides access to prompt templates.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names.
const (
	// PromptAnswer frames retrieved notes and a question for the generator.
	// The template expects two %s placeholders: the notes, then the question.
	PromptAnswer = "answer"
)
