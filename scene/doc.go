// Package scene is the small entity store the tracking core writes into.
//
// Entities carry a capability bitset, an optional device Role, a local Transform and
// a parent link. Spawn order is recorded so systems can consume creation events with
// SpawnedSince. PropagateTransforms composes local transforms down the hierarchy.
//
// Math uses gonum: r3.Vec for positions and quat.Number for rotations.
package scene
