// Package access decides whether a viewer may resolve or modify an event.
package access

import (
	"evnt/internal/status"
	"evnt/models"
)

type Mode int

const (
	// Public resolves only events that are not private.
	Public Mode = iota
	// OwnerPrivate resolves only private events, and only for their owner.
	OwnerPrivate
	// Edit requires ownership.
	Edit
	// Delete requires ownership or the superuser role.
	Delete
)

func (m Mode) String() string {
	switch m {
	case Public:
		return "public"
	case OwnerPrivate:
		return "owner_private"
	case Edit:
		return "edit"
	case Delete:
		return "delete"
	}
	return "unknown"
}

type Decision int

const (
	Allow Decision = iota
	Forbidden
	NotFound
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Forbidden:
		return "forbidden"
	case NotFound:
		return "not_found"
	}
	return "unknown"
}

// Err maps a decision to the matching status error, nil when allowed.
func (d Decision) Err() error {
	switch d {
	case Allow:
		return nil
	case Forbidden:
		return status.ErrForbidden
	}
	return status.ErrNotFound
}

// CanAccess is the single authorization predicate for event reads and writes.
// A nil event is always NotFound.
func CanAccess(v models.Viewer, ev *models.Event, mode Mode) Decision {
	if ev == nil {
		return NotFound
	}

	switch mode {
	case Public:
		if ev.Private {
			return NotFound
		}
		return Allow
	case OwnerPrivate:
		if !ev.Private {
			return NotFound
		}
		if !ev.OwnedBy(v) {
			return Forbidden
		}
		return Allow
	case Edit:
		if !ev.OwnedBy(v) {
			return Forbidden
		}
		return Allow
	case Delete:
		if ev.OwnedBy(v) || v.Superuser {
			return Allow
		}
		return Forbidden
	}

	return Forbidden
}

// Visible reports whether ev belongs to the union view of v: every public
// event plus the private events v owns.
func Visible(v models.Viewer, ev *models.Event) bool {
	return ev != nil && (!ev.Private || ev.OwnedBy(v))
}
