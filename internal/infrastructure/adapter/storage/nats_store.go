package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	errs "github.com/amirhossein-jamali/tts-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/tts-ledger/internal/domain/port/generation"
)

const natsScheme = "nats://"

// NatsObjectStore keeps artifacts in a JetStream object store bucket.
// Locations have the form nats://<bucket>/<key>.
type NatsObjectStore struct {
	bucket string
	store  jetstream.ObjectStore
}

var _ generation.ArtifactStore = (*NatsObjectStore)(nil)

// NewNatsObjectStore creates the bucket, or binds to it when it already exists
func NewNatsObjectStore(ctx context.Context, nc *nats.Conn, bucket string) (*NatsObjectStore, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("open jetstream: %w", err)
	}

	store, err := js.CreateObjectStore(ctx, jetstream.ObjectStoreConfig{
		Bucket:      bucket,
		Description: fmt.Sprintf("Generated audio for the %s bucket.", bucket),
		Storage:     jetstream.FileStorage,
		Replicas:    1,
	})
	if errors.Is(err, jetstream.ErrBucketExists) {
		store, err = js.ObjectStore(ctx, bucket)
		if err != nil {
			return nil, fmt.Errorf("bind object store bucket %q: %w", bucket, err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("create object store bucket %q: %w", bucket, err)
	}

	return &NatsObjectStore{bucket: bucket, store: store}, nil
}

// Save puts data under key
func (s *NatsObjectStore) Save(ctx context.Context, key string, data []byte) (string, error) {
	if _, err := s.store.PutBytes(ctx, key, data); err != nil {
		return "", fmt.Errorf("put object %q to bucket %q: %w", key, s.bucket, err)
	}
	return natsScheme + s.bucket + "/" + key, nil
}

// Load reads the object a location points at
func (s *NatsObjectStore) Load(ctx context.Context, location string) ([]byte, error) {
	key, ok := strings.CutPrefix(location, natsScheme+s.bucket+"/")
	if !ok || key == "" {
		return nil, fmt.Errorf("%w: %s", errs.ErrArtifactNotFound, location)
	}

	data, err := s.store.GetBytes(ctx, key)
	if errors.Is(err, jetstream.ErrObjectNotFound) {
		return nil, fmt.Errorf("%w: %s", errs.ErrArtifactNotFound, location)
	}
	if err != nil {
		return nil, fmt.Errorf("get object %q from bucket %q: %w", key, s.bucket, err)
	}
	return data, nil
}
