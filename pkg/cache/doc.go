// Package cache stores synthesized speech on disk.
//
// Entries are keyed by a hash of the canonical (sorted-key) JSON encoding of the
// normalized speech request, so equal requests always map to the same file no matter
// how the caller built them. Entries are never invalidated; Clear removes everything.
package cache
