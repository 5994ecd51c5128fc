// Package kvstore is the persistent string key/value store the credential and
// entry stores sit on. Keys are unique; Set is an upsert.
package kvstore

import "context"

// Pair is one key/value write.
type Pair struct {
	Key   string
	Value string
}

// Repository is a string→string store.
//
// Get reports ok=false (and no error) when the key is absent.
type Repository interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	// SetAll writes every pair or none of them.
	SetAll(ctx context.Context, pairs ...Pair) error
	Delete(ctx context.Context, key string) error
}
