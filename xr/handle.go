package xr

import (
	"errors"

	"github.com/google/uuid"
)

var (
	ErrInvalidHandle     = errors.New("xr: invalid handle")
	ErrSessionNotRunning = errors.New("xr: session not running")
	ErrActionsNotSynced  = errors.New("xr: input actions not synced")
	ErrPoseNotTracked    = errors.New("xr: pose not tracked")
)

// Instance is an opaque runtime instance handle.
type Instance struct {
	id      uuid.UUID
	runtime string
}

// NewInstance returns a fresh instance handle for the named runtime.
func NewInstance(runtime string) Instance {
	return Instance{id: uuid.New(), runtime: runtime}
}

// Valid reports whether i was created by NewInstance.
func (i Instance) Valid() bool { return i.id != uuid.Nil }

// Runtime returns the runtime name.
func (i Instance) Runtime() string { return i.runtime }

func (i Instance) String() string { return "instance/" + i.id.String() }

// Session is an opaque session handle bound to an Instance.
type Session struct {
	id       uuid.UUID
	instance uuid.UUID
}

// NewSession returns a session handle owned by inst.
func NewSession(inst Instance) (Session, error) {
	if !inst.Valid() {
		return Session{}, ErrInvalidHandle
	}
	return Session{id: uuid.New(), instance: inst.id}, nil
}

// Valid reports whether s was created by NewSession.
func (s Session) Valid() bool { return s.id != uuid.Nil }

// BelongsTo reports whether s was created from inst.
func (s Session) BelongsTo(inst Instance) bool {
	return s.Valid() && inst.Valid() && s.instance == inst.id
}

func (s Session) String() string { return "session/" + s.id.String() }

// Space is an opaque handle to a runtime reference or action space.
type Space struct {
	id uuid.UUID
}

func newSpace() Space { return Space{id: uuid.New()} }

// Valid reports whether sp refers to a created space.
func (sp Space) Valid() bool { return sp.id != uuid.Nil }
