package models

import (
	"strings"

	"github.com/google/uuid"
)

// Actor is the caller identity supplied by the auth context.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

func (a Actor) Validate() error {
	if a.ID == uuid.Nil || !a.Role.Valid() {
		return ErrUnauthorized
	}
	return nil
}

// Metadata carries optional caller input for a transition.
type Metadata struct {
	Reason string
}

// ReasonPtr returns the trimmed reason or nil when blank.
func (m Metadata) ReasonPtr() *string {
	r := strings.TrimSpace(m.Reason)
	if r == "" {
		return nil
	}
	return &r
}
