// Package blobstore stores and retrieves raw asset bytes. Two backends
// implement the same interface: the content-addressed HTTP blob store used by
// public deployments, and an S3-compatible backend for self-hosted setups.
package blobstore

import "context"

// PutOptions tune one upload.
type PutOptions struct {
	// Epochs is how many storage epochs the blob is paid for (HTTP backend).
	Epochs      int
	ContentType string
}

// Store is the blob backend contract. Put returns the backend-assigned blob
// identifier. Delete must succeed for blobs that are immutable or already
// absent.
type Store interface {
	Put(ctx context.Context, data []byte, opts PutOptions) (string, error)
	Get(ctx context.Context, blobID string) ([]byte, error)
	// GetByObjectID retrieves a blob keyed by its ledger object id, for
	// backends that track that mapping. Others fall back to Get.
	GetByObjectID(ctx context.Context, objectID string) ([]byte, error)
	Delete(ctx context.Context, blobID string) error
}
