// Package blobstore holds the key-value backends the exercise list is persisted to.
// Every backend stores opaque byte blobs under string keys and overwrites on Set.
package blobstore

import "errors"

var ErrNotFound = errors.New("blob not found")
