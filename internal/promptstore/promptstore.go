// Package promptstore provides a NATS JetStream-backed store for generated
// greeting prompts, used by the queue worker to deliver results.
package promptstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Store implements the core.PromptStore interface on a JetStream object
// store bucket. Keys are the derived prompt filenames; a repeated Put for the
// same key is last-write-wins, matching the CLI's overwrite policy.
type Store struct {
	jetstreamContext nats.JetStreamContext
	bucket           string
	store            nats.ObjectStore
}

// New creates the bucket if it does not exist yet, or binds to the existing
// one.
func New(jetstreamContext nats.JetStreamContext, bucketName string) (*Store, error) {
	store, err := jetstreamContext.CreateObjectStore(&nats.ObjectStoreConfig{
		Bucket:      bucketName,
		Description: fmt.Sprintf("Generated voicemail prompts (%s).", bucketName),
		Storage:     nats.FileStorage,
		Replicas:    1,
	})

	if err != nil {
		if errors.Is(err, jetstream.ErrBucketExists) {
			store, err = jetstreamContext.ObjectStore(bucketName)
			if err != nil {
				return nil, fmt.Errorf(
					"failed to bind to existing prompt bucket '%s': %w",
					bucketName,
					err,
				)
			}
		} else {
			return nil, fmt.Errorf(
				"failed to create prompt bucket '%s': %w",
				bucketName,
				err,
			)
		}
	}

	return &Store{
		jetstreamContext: jetstreamContext,
		bucket:           bucketName,
		store:            store,
	}, nil
}

// Put stores a prompt under its filename key.
func (s *Store) Put(_ context.Context, key string, data []byte) error {
	_, err := s.store.Put(&nats.ObjectMeta{Name: key}, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf(
			"failed to put prompt '%s' to bucket '%s': %w",
			key,
			s.bucket,
			err,
		)
	}

	return nil
}

// Get retrieves a prompt by its filename key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	obj, err := s.store.Get(key)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to get prompt '%s' from bucket '%s': %w",
			key,
			s.bucket,
			err,
		)
	}

	data, readErr := io.ReadAll(obj)
	closeErr := obj.Close()

	if readErr != nil {
		return nil, fmt.Errorf("failed to read prompt '%s': %w", key, readErr)
	}

	if closeErr != nil {
		return data, fmt.Errorf("failed to close prompt '%s': %w", key, closeErr)
	}

	return data, nil
}

// List returns the keys of all stored prompts, letting operators audit which
// names have been generated (and which duplicates were overwritten).
func (s *Store) List(_ context.Context) ([]string, error) {
	infos, err := s.store.List()
	if err != nil {
		if errors.Is(err, nats.ErrNoObjectsFound) {
			return nil, nil
		}

		return nil, fmt.Errorf(
			"failed to list prompts in bucket '%s': %w",
			s.bucket,
			err,
		)
	}

	keys := make([]string, 0, len(infos))
	for _, info := range infos {
		keys = append(keys, info.Name)
	}

	return keys, nil
}
