package scene

import (
	"errors"
	"sort"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	ErrDeadEntity = errors.New("scene: entity is not alive")
	ErrSelfParent = errors.New("scene: entity cannot be its own parent")
	ErrCycle      = errors.New("scene: parenting would create a cycle")
)

type node struct {
	gen   uint32
	alive bool
	seq   uint64

	name string
	caps Capability
	role Role

	local  Transform
	global Transform

	parent   Entity
	children []Entity
}

// World stores scene entities and their hierarchy.
//
// A World is owned by a single tick loop and is not safe for concurrent use.
type World struct {
	nodes []node // index 0 is reserved
	free  []uint32
	seq   uint64
	live  int
}

// NewWorld creates an empty world.
func NewWorld() *World {
	return &World{nodes: make([]node, 1, 64)}
}

// Spawn creates an entity and records a creation event for it.
func (w *World) Spawn(b Bundle) Entity {
	var id uint32
	if n := len(w.free); n > 0 {
		id = w.free[n-1]
		w.free = w.free[:n-1]
	} else {
		w.nodes = append(w.nodes, node{})
		id = uint32(len(w.nodes) - 1)
	}
	w.seq++
	n := &w.nodes[id]
	n.gen++
	n.alive = true
	n.seq = w.seq
	n.name = b.Name
	n.caps = b.Caps
	n.role = b.Role
	n.local = b.Transform.normalized()
	n.global = n.local
	n.parent = Entity{}
	n.children = nil
	w.live++
	return Entity{ID: id, Gen: n.gen}
}

func (w *World) get(e Entity) *node {
	if e.ID == 0 || int(e.ID) >= len(w.nodes) {
		return nil
	}
	n := &w.nodes[e.ID]
	if !n.alive || n.gen != e.Gen {
		return nil
	}
	return n
}

// Alive reports whether e refers to a live entity.
func (w *World) Alive(e Entity) bool { return w.get(e) != nil }

// Len returns the number of live entities.
func (w *World) Len() int { return w.live }

// Seq returns the sequence number of the most recent spawn.
func (w *World) Seq() uint64 { return w.seq }

// Despawn removes e. Its children become parentless.
func (w *World) Despawn(e Entity) bool {
	n := w.get(e)
	if n == nil {
		return false
	}
	w.detach(e, n)
	for _, c := range n.children {
		if cn := w.get(c); cn != nil {
			cn.parent = Entity{}
		}
	}
	n.children = nil
	n.alive = false
	w.free = append(w.free, e.ID)
	w.live--
	return true
}

// DespawnRecursive removes e and all of its descendants.
func (w *World) DespawnRecursive(e Entity) bool {
	n := w.get(e)
	if n == nil {
		return false
	}
	children := append([]Entity(nil), n.children...)
	for _, c := range children {
		w.DespawnRecursive(c)
	}
	return w.Despawn(e)
}

// Name returns the debug name of e.
func (w *World) Name(e Entity) string {
	if n := w.get(e); n != nil {
		return n.name
	}
	return ""
}

// Caps returns the capability set of e.
func (w *World) Caps(e Entity) Capability {
	if n := w.get(e); n != nil {
		return n.caps
	}
	return 0
}

// Has reports whether e is alive and carries every bit of caps.
func (w *World) Has(e Entity, caps Capability) bool {
	n := w.get(e)
	return n != nil && n.caps.Has(caps)
}

// RoleOf returns the device role of e.
func (w *World) RoleOf(e Entity) Role {
	if n := w.get(e); n != nil {
		return n.role
	}
	return RoleNone
}

// Parent returns the parent of e, if any.
func (w *World) Parent(e Entity) (Entity, bool) {
	n := w.get(e)
	if n == nil || n.parent.IsZero() {
		return Entity{}, false
	}
	return n.parent, true
}

// Children returns a copy of e's children in insertion order.
func (w *World) Children(e Entity) []Entity {
	n := w.get(e)
	if n == nil || len(n.children) == 0 {
		return nil
	}
	return append([]Entity(nil), n.children...)
}

// AddChild makes child a child of parent, detaching it from any previous parent.
func (w *World) AddChild(parent, child Entity) error {
	pn := w.get(parent)
	cn := w.get(child)
	if pn == nil || cn == nil {
		return ErrDeadEntity
	}
	if parent == child {
		return ErrSelfParent
	}
	if cn.parent == parent {
		return nil
	}
	for a := pn.parent; !a.IsZero(); {
		if a == child {
			return ErrCycle
		}
		an := w.get(a)
		if an == nil {
			break
		}
		a = an.parent
	}
	w.detach(child, cn)
	cn.parent = parent
	pn.children = append(pn.children, child)
	return nil
}

func (w *World) detach(e Entity, n *node) {
	if n.parent.IsZero() {
		return
	}
	if pn := w.get(n.parent); pn != nil {
		for i, c := range pn.children {
			if c == e {
				pn.children = append(pn.children[:i], pn.children[i+1:]...)
				break
			}
		}
	}
	n.parent = Entity{}
}

// Transform returns the local transform of e.
func (w *World) Transform(e Entity) (Transform, bool) {
	n := w.get(e)
	if n == nil {
		return Transform{}, false
	}
	return n.local, true
}

// SetTransform replaces the local transform of e.
func (w *World) SetTransform(e Entity, t Transform) bool {
	n := w.get(e)
	if n == nil {
		return false
	}
	n.local = t.normalized()
	return true
}

// SetPose replaces translation and rotation of e in one write, keeping its scale.
func (w *World) SetPose(e Entity, translation r3.Vec, rotation quat.Number) bool {
	n := w.get(e)
	if n == nil {
		return false
	}
	n.local.Translation = translation
	n.local.Rotation = rotation
	return true
}

// GlobalTransform returns the world-space transform computed by the last
// PropagateTransforms call.
func (w *World) GlobalTransform(e Entity) (Transform, bool) {
	n := w.get(e)
	if n == nil {
		return Transform{}, false
	}
	return n.global, true
}

// Query returns all live entities carrying caps, ordered by spawn.
func (w *World) Query(caps Capability) []Entity {
	var out []entry
	for id := 1; id < len(w.nodes); id++ {
		n := &w.nodes[id]
		if !n.alive || !n.caps.Has(caps) {
			continue
		}
		out = append(out, entry{e: Entity{ID: uint32(id), Gen: n.gen}, seq: n.seq})
	}
	return sortEntries(out)
}

// WithRole returns all live entities with role r, ordered by spawn.
func (w *World) WithRole(r Role) []Entity {
	var out []entry
	for id := 1; id < len(w.nodes); id++ {
		n := &w.nodes[id]
		if !n.alive || n.role != r {
			continue
		}
		out = append(out, entry{e: Entity{ID: uint32(id), Gen: n.gen}, seq: n.seq})
	}
	return sortEntries(out)
}

// SpawnedSince returns live entities carrying caps spawned after seq, ordered by
// spawn, and the sequence to pass on the next call.
func (w *World) SpawnedSince(seq uint64, caps Capability) ([]Entity, uint64) {
	if seq >= w.seq {
		return nil, w.seq
	}
	var out []entry
	for id := 1; id < len(w.nodes); id++ {
		n := &w.nodes[id]
		if !n.alive || n.seq <= seq || !n.caps.Has(caps) {
			continue
		}
		out = append(out, entry{e: Entity{ID: uint32(id), Gen: n.gen}, seq: n.seq})
	}
	return sortEntries(out), w.seq
}

// PropagateTransforms recomputes global transforms from the roots down.
func (w *World) PropagateTransforms() {
	for id := 1; id < len(w.nodes); id++ {
		n := &w.nodes[id]
		if !n.alive || !n.parent.IsZero() {
			continue
		}
		n.global = n.local
		w.propagate(n)
	}
}

func (w *World) propagate(parent *node) {
	for _, c := range parent.children {
		cn := w.get(c)
		if cn == nil {
			continue
		}
		cn.global = parent.global.Mul(cn.local)
		w.propagate(cn)
	}
}

type entry struct {
	e   Entity
	seq uint64
}

func sortEntries(in []entry) []Entity {
	if len(in) == 0 {
		return nil
	}
	sort.Slice(in, func(i, j int) bool { return in[i].seq < in[j].seq })
	out := make([]Entity, len(in))
	for i := range in {
		out[i] = in[i].e
	}
	return out
}
