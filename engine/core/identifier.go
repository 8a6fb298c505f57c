package core

import "github.com/google/uuid"

type Identifier = uuid.UUID

var InvalidIdentifier = uuid.Nil

// NewIdentifier returns a fresh random identifier.
func NewIdentifier() Identifier {
	return uuid.New()
}

// ShortIdentifier is the first 8 hex characters, used in logs and dumps.
func ShortIdentifier(id Identifier) string {
	return id.String()[:8]
}
