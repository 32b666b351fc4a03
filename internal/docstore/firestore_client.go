package docstore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// NewFirestoreClient connects to the hosted Firestore project backing the
// passport record collections.
func NewFirestoreClient(ctx context.Context, opts Options) (Client, error) {
	if opts.ProjectID == "" {
		return nil, ErrMissingProject
	}

	var clientOpts []option.ClientOption
	if opts.CredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(opts.CredentialsFile))
	}

	fs, err := firestore.NewClient(ctx, opts.ProjectID, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create firestore client: %w", err)
	}

	return &firestoreClient{fs: fs}, nil
}

type firestoreClient struct {
	fs *firestore.Client
}

func (c *firestoreClient) Get(ctx context.Context, collection, id string) (Document, error) {
	snap, err := c.fs.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		return Document{}, translateError(err)
	}
	return Document{ID: snap.Ref.ID, Data: snap.Data()}, nil
}

func (c *firestoreClient) Set(ctx context.Context, collection, id string, data map[string]any) error {
	_, err := c.fs.Collection(collection).Doc(id).Set(ctx, data, firestore.MergeAll)
	if err != nil {
		return translateError(err)
	}
	return nil
}

func (c *firestoreClient) Query(ctx context.Context, collection string, q Query) ([]Document, error) {
	fsq := c.fs.Collection(collection).Query
	for _, f := range q.Filters {
		fsq = fsq.Where(f.Field, f.Op, f.Value)
	}
	if q.OrderBy != "" {
		dir := firestore.Asc
		if q.Descending {
			dir = firestore.Desc
		}
		fsq = fsq.OrderBy(q.OrderBy, dir)
	}
	if q.Limit > 0 {
		fsq = fsq.Limit(q.Limit)
	}

	iter := fsq.Documents(ctx)
	defer iter.Stop()

	var docs []Document
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, translateError(err)
		}
		docs = append(docs, Document{ID: snap.Ref.ID, Data: snap.Data()})
	}
	return docs, nil
}

func (c *firestoreClient) Close() error {
	return c.fs.Close()
}

// translateError maps store errors onto the package sentinels so callers can
// branch without importing grpc codes. FailedPrecondition is how Firestore
// reports an ordered query with no composite index.
func translateError(err error) error {
	switch status.Code(err) {
	case codes.NotFound:
		return ErrNotFound
	case codes.FailedPrecondition:
		return fmt.Errorf("%w: %v", ErrMissingIndex, err)
	default:
		return err
	}
}
