// Package tracking keeps scene entities in step with tracked XR devices.
//
// An Adopter parents every Trackable entity under the single TrackingRoot as soon as
// both exist. A Synchronizer runs once per frame: it copies the current frame state,
// samples a pose per device role, converts it to scene space and writes translation
// and rotation together. Failures are isolated per role; an entity whose update is
// skipped keeps its last pose.
package tracking
