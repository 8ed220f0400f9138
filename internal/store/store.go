// Package store defines the backend-agnostic interface to the planner's
// document database.
package store

import (
	"context"

	"plannercheck/internal/field"
)

// Document is a single stored document: field name to value. Driver-specific
// values are normalized by the backend (identifiers become strings,
// timestamps become time.Time).
type Document = field.Record

// Filter is an equality filter: every key must match its value.
// A nil or empty Filter matches all documents.
type Filter map[string]any

// IDField is the implicit unique identifier field.
const IDField = "_id"

// Store defines read-only access to a document database.
// The auditors never import a driver directly.
type Store interface {
	// Ping checks that the server is reachable.
	Ping(ctx context.Context) error

	// CollectionNames returns all collection names in the database,
	// in server order.
	CollectionNames(ctx context.Context) ([]string, error)

	// Count returns the number of documents in collection matching filter.
	Count(ctx context.Context, collection string, filter Filter) (int64, error)

	// Find returns up to limit documents matching filter, in natural order.
	// limit <= 0 means no limit.
	Find(ctx context.Context, collection string, filter Filter, limit int64) ([]Document, error)

	// FindOne returns the first document matching filter.
	// found is false (with a nil error) when nothing matches.
	FindOne(ctx context.Context, collection string, filter Filter) (doc Document, found bool, err error)

	// Close releases the connection.
	Close(ctx context.Context) error
}
