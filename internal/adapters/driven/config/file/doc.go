// Package file keeps acadrag's settings and prompt templates on disk,
// under ~/.acadrag by default.
//
//   - ConfigStore: flat dotted keys in a TOML file, or YAML by extension
//   - PromptStore: editable answer prompt with an embedded fallback
package file
