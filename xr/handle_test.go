package xr

import (
	"errors"
	"testing"
)

func TestSessionBelongsTo(t *testing.T) {
	inst := NewInstance("test")
	other := NewInstance("test")
	sess, err := NewSession(inst)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if !sess.BelongsTo(inst) {
		t.Fatal("expected session to belong to its instance")
	}
	if sess.BelongsTo(other) {
		t.Fatal("session should not belong to another instance")
	}
	if _, err := NewSession(Instance{}); !errors.Is(err, ErrInvalidHandle) {
		t.Fatalf("expected ErrInvalidHandle, got %v", err)
	}
}

func TestInputContextGripSpaces(t *testing.T) {
	sess, _ := NewSession(NewInstance("test"))
	in, err := NewInputContext(sess, "gameplay", OculusTouchProfile)
	if err != nil {
		t.Fatalf("NewInputContext: %v", err)
	}
	l, r := in.GripSpace(HandLeft), in.GripSpace(HandRight)
	if !l.Valid() || !r.Valid() || l == r {
		t.Fatalf("expected two distinct grip spaces")
	}
	in.MarkSynced(7)
	if in.SyncedFrame() != 7 {
		t.Fatalf("SyncedFrame = %d, want 7", in.SyncedFrame())
	}
}
