// Package ownership holds the single authorization predicate gating every
// mutation of an owned entity.
package ownership

import "errors"

// ErrForbidden indicates the requesting actor does not own the target entity.
var ErrForbidden = errors.New("actor is not the owner")

// Owned is any entity with a single owning user.
type Owned interface {
	OwnerID() string
}

// Authorize reports whether the actor may mutate the entity. Identity is
// compared by the string form of the owner reference. An absent entity is the
// repository's concern (ErrNotFound) and must be handled before this check.
func Authorize(entity Owned, actorID string) error {
	if actorID == "" || entity.OwnerID() != actorID {
		return ErrForbidden
	}
	return nil
}
