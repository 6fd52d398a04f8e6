// Package util holds small internal helpers shared across TaskMesh packages.
package util

import (
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// NewID generates a new unique identifier for tasks.
//
// Uses UUID v4 format for guaranteed uniqueness across concurrent submissions
// without requiring coordination.
func NewID() string { return uuid.NewString() }

// NewLexicalID generates a ULID identifier. ULIDs sort lexically by creation
// time, which keeps task tables and log output readable when ids are used as
// sort keys.
func NewLexicalID() string { return ulid.Make().String() }
