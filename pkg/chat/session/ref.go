package session

import (
	"strings"

	"arogya-chat-be/internal/pkg/apperror"

	"github.com/google/uuid"
)

// Ref names the session an inbound message targets: either a new one or an existing id.
type Ref struct {
	id       uuid.UUID
	existing bool
}

func NewRef() Ref {
	return Ref{}
}

func ExistingRef(id uuid.UUID) Ref {
	return Ref{id: id, existing: true}
}

// ParseRef treats an empty string as a request for a new session.
func ParseRef(raw string) (Ref, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return NewRef(), nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return Ref{}, apperror.Validation("invalid chat id")
	}
	return ExistingRef(id), nil
}

// Existing reports the referenced id, if any.
func (r Ref) Existing() (uuid.UUID, bool) {
	return r.id, r.existing
}
