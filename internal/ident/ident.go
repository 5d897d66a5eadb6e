// Package ident generates unique opaque string IDs for tabs, groups,
// and tags. IDs are random UUIDs, so they stay unique across saves and
// across imported collections.
package ident

import "github.com/google/uuid"

// New returns a fresh opaque ID.
func New() string {
	return uuid.NewString()
}
