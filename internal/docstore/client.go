package docstore

import (
	"context"
	"errors"
)

// Client is the minimal contract the record store needs from the hosted
// document database.
type Client interface {
	// Get fetches a single document by ID. Returns ErrNotFound when the
	// document does not exist.
	Get(ctx context.Context, collection, id string) (Document, error)
	// Set writes the given fields into a document, merging with any existing
	// fields. The document is created if absent.
	Set(ctx context.Context, collection, id string, data map[string]any) error
	// Query runs a filtered read against a collection. Ordered queries may
	// fail with ErrMissingIndex when the backing store has no composite index
	// for the filter/order combination.
	Query(ctx context.Context, collection string, q Query) ([]Document, error)
	Close() error
}

// Document is a single stored record.
type Document struct {
	ID   string
	Data map[string]any
}

// Filter is one field predicate of a query. Op uses the store's comparison
// syntax ("==", ">=", ...).
type Filter struct {
	Field string
	Op    string
	Value any
}

// Query describes a filtered, optionally ordered and limited read.
type Query struct {
	Filters    []Filter
	OrderBy    string
	Descending bool
	Limit      int
}

// Options configures a document store client.
type Options struct {
	ProjectID       string
	CredentialsFile string
}

var (
	// ErrNotFound indicates the requested document does not exist.
	ErrNotFound = errors.New("docstore: document not found")
	// ErrMissingIndex indicates an ordered query that the store cannot serve
	// without a composite index.
	ErrMissingIndex = errors.New("docstore: query requires an index")
	// ErrMissingProject indicates no project ID was configured.
	ErrMissingProject = errors.New("docstore: project ID is required")
)
