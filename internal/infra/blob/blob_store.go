// Package blob stores packaging images behind the BlobStore interface.
// Buckets are opened from a gocloud.dev URL so local disk and GCS are
// interchangeable.
package blob

import (
	"context"
	"log/slog"

	"canopy/config"
	"canopy/internal/domain/service"

	"github.com/pkg/errors"
	"go.uber.org/fx"
	"gocloud.dev/blob"

	// Bucket drivers registered by URL scheme.
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
)

type blobStore struct {
	bucket *blob.Bucket
	logger *slog.Logger
}

// StoreParams holds dependencies for BlobStore, injected by Fx
type StoreParams struct {
	fx.In

	Lc     fx.Lifecycle
	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

// NewBlobStore opens the bucket named in the blob config block
func NewBlobStore(params StoreParams) (service.BlobStore, error) {
	cfg := params.Config.Blob
	if cfg == nil || cfg.URL == "" {
		return nil, errors.New("blob URL is required")
	}

	bucket, err := blob.OpenBucket(params.Ctx, cfg.URL)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open bucket %s", cfg.URL)
	}

	params.Lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			params.Logger.Info("Closing blob bucket")

			return bucket.Close()
		},
	})

	params.Logger.Info("Blob bucket opened", slog.String("url", cfg.URL))

	return &blobStore{bucket: bucket, logger: params.Logger}, nil
}

// Put stores data under key with the given content type
func (s *blobStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	opts := &blob.WriterOptions{ContentType: contentType}
	if err := s.bucket.WriteAll(ctx, key, data, opts); err != nil {
		return errors.Wrapf(err, "failed to write blob %s", key)
	}

	return nil
}

// Get retrieves the data stored under key
func (s *blobStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.bucket.ReadAll(ctx, key)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read blob %s", key)
	}

	return data, nil
}

// Module provides the blob FX module
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(NewBlobStore),
)
