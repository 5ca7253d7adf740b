// Package domain contains the core business entities of the vault pipeline:
// documents, chunks, search results and the error taxonomy.
// It has no dependencies on adapters or infrastructure.
package domain
