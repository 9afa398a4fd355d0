package store

import (
	"context"
	"errors"

	"firebase.google.com/go/v4/db"
)

// FirebaseStore adapts a Realtime Database client to the Store contract.
type FirebaseStore struct {
	client *db.Client
}

// NewFirebaseStore wraps client. The client carries its own database URL and
// credentials; the store adds no policy of its own.
func NewFirebaseStore(client *db.Client) (*FirebaseStore, error) {
	if client == nil {
		return nil, errors.New("store: database client is required")
	}
	return &FirebaseStore{client: client}, nil
}

// Get decodes the value at path into v.
func (s *FirebaseStore) Get(ctx context.Context, path string, v any) error {
	if err := s.client.NewRef(path).Get(ctx, v); err != nil {
		return wrapError("get", path, err)
	}
	return nil
}

// Push appends value under a database-assigned child key and returns the key.
func (s *FirebaseStore) Push(ctx context.Context, path string, value any) (string, error) {
	ref, err := s.client.NewRef(path).Push(ctx, value)
	if err != nil {
		return "", wrapError("push", path, err)
	}
	return ref.Key, nil
}

// Set replaces the value at path.
func (s *FirebaseStore) Set(ctx context.Context, path string, value any) error {
	if err := s.client.NewRef(path).Set(ctx, value); err != nil {
		return wrapError("set", path, err)
	}
	return nil
}

// Update merges fields into the value at path.
func (s *FirebaseStore) Update(ctx context.Context, path string, fields map[string]any) error {
	if err := s.client.NewRef(path).Update(ctx, fields); err != nil {
		return wrapError("update", path, err)
	}
	return nil
}

// Delete removes the value at path.
func (s *FirebaseStore) Delete(ctx context.Context, path string) error {
	if err := s.client.NewRef(path).Delete(ctx); err != nil {
		return wrapError("delete", path, err)
	}
	return nil
}
