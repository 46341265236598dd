// Package schedule is the cooperative tick loop systems run in.
//
// Each Tick runs the stages First, PreUpdate, Update, PostUpdate and Render in order;
// systems within a stage run in registration order. A system that panics is logged
// and disabled; the rest of the tick still runs.
package schedule
