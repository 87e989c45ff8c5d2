package domain

// RawDocument represents uploaded bytes before normalisation.
type RawDocument struct {
	// URI is the original location or filename.
	URI string

	// MIMEType is the content type (e.g., "application/pdf").
	// Empty means the normaliser registry should detect it.
	MIMEType string

	// Content is the raw bytes.
	Content []byte
}
