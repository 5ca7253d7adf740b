// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): text extraction, chunking, embedding
// generation and chunk storage.
package driven
