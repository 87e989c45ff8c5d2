// Package normalisers provides implementations of the Normaliser interface.
// Each normaliser extracts text from a specific MIME type and runs it
// through Clean, so every ingested document reaches the chunker in the
// same canonical form.
//
// Normalisers are registered with a Registry at startup.
package normalisers
