// Package connectors provides document sources that feed the ingestion
// pipeline from outside the upload API.
package connectors
